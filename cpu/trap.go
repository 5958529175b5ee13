package cpu

import (
	"strings"
)

// TrapClass is a synchronous trap class, in priority order.
type TrapClass int

//go:generate go tool stringer -linecomment -type=TrapClass
const (
	TRAP_RED   = TrapClass(0)  // red
	TRAP_ODD   = TrapClass(1)  // odd
	TRAP_NXM   = TrapClass(2)  // nxm
	TRAP_MME   = TrapClass(3)  // mme
	TRAP_PAR   = TrapClass(4)  // par
	TRAP_PRV   = TrapClass(5)  // prv
	TRAP_ILL   = TrapClass(6)  // ill
	TRAP_BPT   = TrapClass(7)  // bpt
	TRAP_IOT   = TrapClass(8)  // iot
	TRAP_EMT   = TrapClass(9)  // emt
	TRAP_TRAP  = TrapClass(10) // trap
	TRAP_TRC   = TrapClass(11) // trc
	TRAP_YEL   = TrapClass(12) // yel
	TRAP_PWRFL = TrapClass(13) // pwrfl
	TRAP_FPE   = TrapClass(14) // fpe
	TRAP_INT   = TrapClass(15) // int
)

// Mask returns the trap mask of the class.
func (tc TrapClass) Mask() TrapMask {
	return TrapMask(1) << tc
}

// TrapMask is a set of trap classes.
type TrapMask uint32

// TRAP_ALL is the mask of all synchronous trap classes.
const TRAP_ALL = (TrapMask(1) << TRAP_INT) - 1

// Has returns true if the class is in the mask.
func (tm TrapMask) Has(tc TrapClass) bool {
	return (tm & tc.Mask()) != 0
}

// First returns the highest priority class in the mask.
func (tm TrapMask) First() (tc TrapClass, ok bool) {
	for tc = TRAP_RED; tc <= TRAP_INT; tc++ {
		if tm.Has(tc) {
			ok = true
			return
		}
	}
	return
}

func (tm TrapMask) String() string {
	var names []string
	for tc := TRAP_RED; tc <= TRAP_INT; tc++ {
		if tm.Has(tc) {
			names = append(names, tc.String())
		}
	}
	return strings.Join(names, "|")
}

// Trap vectors.
const (
	VEC_RED   = uint16(0004)
	VEC_ODD   = uint16(0004)
	VEC_NXM   = uint16(0004)
	VEC_MME   = uint16(0250)
	VEC_PAR   = uint16(0114)
	VEC_PRV   = uint16(0004)
	VEC_ILL   = uint16(0010)
	VEC_BPT   = uint16(0014)
	VEC_IOT   = uint16(0020)
	VEC_EMT   = uint16(0030)
	VEC_TRAP  = uint16(0034)
	VEC_TRC   = uint16(0014)
	VEC_YEL   = uint16(0004)
	VEC_PWRFL = uint16(0024)
	VEC_FPE   = uint16(0244)
	VEC_PIRQ  = uint16(0240)
	VEC_CSM   = uint16(0010)
)

var trapVector = [TRAP_INT + 1]uint16{
	VEC_RED, VEC_ODD, VEC_NXM, VEC_MME,
	VEC_PAR, VEC_PRV, VEC_ILL, VEC_BPT,
	VEC_IOT, VEC_EMT, VEC_TRAP, VEC_TRC,
	VEC_YEL, VEC_PWRFL, VEC_FPE, 0,
}

// Vector returns the fixed vector of a trap class.
func (tc TrapClass) Vector() uint16 {
	return trapVector[tc]
}

const (
	_mask_red   = TrapMask(1 << TRAP_RED)
	_mask_odd   = TrapMask(1 << TRAP_ODD)
	_mask_nxm   = TrapMask(1 << TRAP_NXM)
	_mask_mme   = TrapMask(1 << TRAP_MME)
	_mask_par   = TrapMask(1 << TRAP_PAR)
	_mask_yel   = TrapMask(1 << TRAP_YEL)
	_mask_trc   = TrapMask(1 << TRAP_TRC)
	_mask_int   = TrapMask(1 << TRAP_INT)
	_mask_fault = _mask_par | _mask_yel | _mask_trc
)

// Classes cleared when a trap class is taken. A class never clears a
// class of higher priority.
var trapClear = [TRAP_INT]TrapMask{
	_mask_red | _mask_odd | _mask_nxm | _mask_mme | _mask_fault,
	_mask_odd | _mask_nxm | _mask_mme | _mask_fault,
	_mask_nxm | _mask_mme | _mask_fault,
	_mask_mme | _mask_fault,
	_mask_fault,
	TRAP_PRV.Mask() | _mask_trc,
	TRAP_ILL.Mask() | _mask_trc,
	TRAP_BPT.Mask() | _mask_trc,
	TRAP_IOT.Mask() | _mask_trc,
	TRAP_EMT.Mask() | _mask_trc,
	TRAP_TRAP.Mask() | _mask_trc,
	_mask_trc,
	_mask_yel,
	TRAP_PWRFL.Mask(),
	TRAP_FPE.Mask(),
}

// Classes that record the vector in MMR2 on MMU trap models.
// The last entry is for interrupts.
var trapLoadMmr2 = [TRAP_INT + 1]bool{
	true, true, true, true,
	true, false, false, false,
	false, false, false, true,
	true, true, true, true,
}

// Abort is the unwind of an instruction or trap sequence.
// It is returned by every memory reference that faults, and is
// recovered by the instruction loop.
type Abort struct {
	Trap       TrapMask // Trap classes to request.
	Breakpoint bool     // Breakpoint abort; no trap is requested.
	Message    string   // Breakpoint match description.

	// Trap sequence state at the time of the abort.
	Vector uint16 // Vector being read, if non-zero.
	Push   bool   // Set if the fault occurred pushing the trap frame.
	Mode   Mode   // Mode of the stack being pushed.
}

func (ab *Abort) Error() string {
	if ab.Breakpoint {
		return f("abort: breakpoint %v", ab.Message)
	}
	if ab.Push {
		return f("abort: %v pushing %v stack", ab.Trap, ab.Mode)
	}
	if ab.Vector != 0 {
		return f("abort: %v reading vector %03o", ab.Trap, ab.Vector)
	}
	return f("abort: %v", ab.Trap)
}
