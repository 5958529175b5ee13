package cpu

import (
	"strings"
)

// BreakKind is a set of breakpoint classes.
type BreakKind uint8

const (
	BREAK_EXEC_VIRTUAL   = BreakKind(1 << iota) // E: instruction fetch, virtual PC
	BREAK_EXEC_PHYSICAL                         // P: instruction fetch, physical PC
	BREAK_READ_VIRTUAL                          // R: data read, virtual address
	BREAK_READ_PHYSICAL                         // S: data read, physical address
	BREAK_WRITE_VIRTUAL                         // W: data write, virtual address
	BREAK_WRITE_PHYSICAL                        // X: data write, physical address

	BREAK_VIRTUAL  = BREAK_EXEC_VIRTUAL | BREAK_READ_VIRTUAL | BREAK_WRITE_VIRTUAL
	BREAK_PHYSICAL = BREAK_EXEC_PHYSICAL | BREAK_READ_PHYSICAL | BREAK_WRITE_PHYSICAL
)

const _break_letters = "EPRSWX"

// ParseBreakKind parses a set of class letters, such as "RW".
func ParseBreakKind(text string) (kind BreakKind, ok bool) {
	for _, letter := range strings.ToUpper(text) {
		n := strings.IndexRune(_break_letters, letter)
		if n < 0 {
			kind = 0
			return
		}
		kind |= BreakKind(1 << n)
	}
	ok = kind != 0
	return
}

func (bk BreakKind) String() string {
	var text []byte
	for n := range len(_break_letters) {
		if (bk & BreakKind(1<<n)) != 0 {
			text = append(text, _break_letters[n])
		}
	}
	return string(text)
}

// Breakpoints is consulted before each fetch, read, and write.
// Virtual addresses are 16 bits; physical addresses are 22 bits.
type Breakpoints interface {
	// Test returns true, and a description, if a breakpoint of any of
	// the classes in kind is set at addr.
	Test(addr uint32, kind BreakKind) (message string, ok bool)
}

// testBreak checks both the virtual and physical breakpoints of a reference.
func (cpu *Cpu) testBreak(va VA, pa uint32, virtual BreakKind, physical BreakKind) (message string, ok bool) {
	if cpu.Breakpoints == nil {
		return
	}
	message, ok = cpu.Breakpoints.Test(uint32(va.Offset()), virtual)
	if ok {
		return
	}
	message, ok = cpu.Breakpoints.Test(pa, physical)
	return
}
