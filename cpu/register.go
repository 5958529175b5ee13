package cpu

// Registers is the general register file.
//
// R holds the live registers: R0-R5 of the active register set, the stack
// pointer of the current mode, and the PC. The bank entry for the active
// set, and the stack entry for the current mode, are stale until the next
// switch writes them back.
type Registers struct {
	R [8]uint16 // Live registers.

	bank  [2][6]uint16 // General register sets.
	stack [4]uint16    // Stack pointer per mode.
	set   int          // Active register set.
	mode  Mode         // Current mode.
}

const (
	REG_SP = 6
	REG_PC = 7
)

// SP returns the live stack pointer.
func (regs *Registers) SP() uint16 {
	return regs.R[REG_SP]
}

// PC returns the program counter.
func (regs *Registers) PC() uint16 {
	return regs.R[REG_PC]
}

// switchMode saves the live stack pointer for the old mode,
// and loads the stack pointer of the new mode.
func (regs *Registers) switchMode(mode Mode) {
	mode &= 3
	if mode == regs.mode {
		return
	}
	regs.stack[regs.mode] = regs.R[REG_SP]
	regs.R[REG_SP] = regs.stack[mode]
	regs.mode = mode
}

// switchRegisterSet saves the live R0-R5 into the old set,
// and loads the new set.
func (regs *Registers) switchRegisterSet(set int) {
	set &= 1
	if set == regs.set {
		return
	}
	copy(regs.bank[regs.set][:], regs.R[:6])
	copy(regs.R[:6], regs.bank[set][:])
	regs.set = set
}

// StackPointer returns the stack pointer of a mode.
func (regs *Registers) StackPointer(mode Mode) uint16 {
	mode &= 3
	if mode == regs.mode {
		return regs.R[REG_SP]
	}
	return regs.stack[mode]
}

// SetStackPointer sets the stack pointer of a mode.
func (regs *Registers) SetStackPointer(mode Mode, value uint16) {
	mode &= 3
	if mode == regs.mode {
		regs.R[REG_SP] = value
		return
	}
	regs.stack[mode] = value
}

// General returns register n (0-5) of a register set.
func (regs *Registers) General(set int, n int) uint16 {
	set &= 1
	if set == regs.set {
		return regs.R[n]
	}
	return regs.bank[set][n]
}

// SetGeneral sets register n (0-5) of a register set.
func (regs *Registers) SetGeneral(set int, n int, value uint16) {
	set &= 1
	if set == regs.set {
		regs.R[n] = value
		return
	}
	regs.bank[set][n] = value
}

// reset clears all registers, and selects kernel mode and set 0.
func (regs *Registers) reset() {
	*regs = Registers{}
}
