package cpu

import (
	"fmt"
)

// Mode is a processor mode.
type Mode int

//go:generate go tool stringer -linecomment -type=Mode
const (
	MODE_KERNEL     = Mode(0) // kernel
	MODE_SUPERVISOR = Mode(1) // supervisor
	MODE_ILLEGAL    = Mode(2) // illegal
	MODE_USER       = Mode(3) // user
)

// Processor status word fields.
const (
	PSW_C   = uint16(0000001) // Carry
	PSW_V   = uint16(0000002) // Overflow
	PSW_Z   = uint16(0000004) // Zero
	PSW_N   = uint16(0000010) // Negative
	PSW_CC  = uint16(0000017) // Condition codes
	PSW_T   = uint16(0000020) // Trace trap
	PSW_IPL = uint16(0000340) // Interrupt priority level
	PSW_FPD = uint16(0000400) // First part done
	PSW_RS  = uint16(0004000) // Register set
	PSW_PM  = uint16(0030000) // Previous mode
	PSW_CM  = uint16(0140000) // Current mode

	PSW_V_IPL = 5
	PSW_V_RS  = 11
	PSW_V_PM  = 12
	PSW_V_CM  = 14
)

// PSW is an assembled processor status word.
type PSW uint16

// CM returns the current mode.
func (psw PSW) CM() Mode {
	return Mode((uint16(psw) & PSW_CM) >> PSW_V_CM)
}

// PM returns the previous mode.
func (psw PSW) PM() Mode {
	return Mode((uint16(psw) & PSW_PM) >> PSW_V_PM)
}

// RS returns the register set.
func (psw PSW) RS() int {
	return int((uint16(psw) & PSW_RS) >> PSW_V_RS)
}

// IPL returns the interrupt priority level.
func (psw PSW) IPL() int {
	return int((uint16(psw) & PSW_IPL) >> PSW_V_IPL)
}

// FPD returns the first part done flag.
func (psw PSW) FPD() bool {
	return (uint16(psw) & PSW_FPD) != 0
}

// T returns the trace flag.
func (psw PSW) T() bool {
	return (uint16(psw) & PSW_T) != 0
}

// CC returns the condition codes.
func (psw PSW) CC() CC {
	return MakeCC(uint16(psw))
}

func (psw PSW) String() string {
	var rs, fpd, t string
	if psw.RS() != 0 {
		rs = " rs"
	}
	if psw.FPD() {
		fpd = " fpd"
	}
	if psw.T() {
		t = " t"
	}
	return fmt.Sprintf("%06o[%v/%v ipl%d%v%v%v %v]",
		uint16(psw), psw.CM(), psw.PM(), psw.IPL(), rs, fpd, t, psw.CC())
}

// CC is the set of condition codes.
type CC struct {
	N bool // Negative
	Z bool // Zero
	V bool // Overflow
	C bool // Carry
}

// MakeCC extracts the condition codes from the low bits of word.
func MakeCC(word uint16) CC {
	return CC{
		N: (word & PSW_N) != 0,
		Z: (word & PSW_Z) != 0,
		V: (word & PSW_V) != 0,
		C: (word & PSW_C) != 0,
	}
}

// Word returns the condition codes as PSW bits.
func (cc CC) Word() (word uint16) {
	if cc.N {
		word |= PSW_N
	}
	if cc.Z {
		word |= PSW_Z
	}
	if cc.V {
		word |= PSW_V
	}
	if cc.C {
		word |= PSW_C
	}
	return
}

func (cc CC) String() string {
	text := []byte("nzvc")
	for n, set := range []bool{cc.N, cc.Z, cc.V, cc.C} {
		if set {
			text[n] -= 'a' - 'A'
		}
	}
	return string(text)
}
