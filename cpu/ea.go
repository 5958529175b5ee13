package cpu

// Stack limit zones, relative to STKLIM.
const (
	STKL_R = uint16(0340) // Red zone
	STKL_Y = uint16(0400) // Yellow zone
)

// stackCheck checks a kernel stack pointer against the yellow zone.
func (cpu *Cpu) stackCheck(sp uint16) (err error) {
	if cpu.mode == MODE_KERNEL && uint32(sp) < uint32(cpu.stklim)+uint32(STKL_Y) {
		err = cpu.setStackTrap(sp)
	}
	return
}

// setStackTrap raises the yellow zone trap, or aborts with the red zone
// trap and an emergency stack at 4.
func (cpu *Cpu) setStackTrap(sp uint16) (err error) {
	switch {
	case cpu.Model.Has(FEATURE_STKLF):
		cpu.trapReq |= TRAP_YEL.Mask()
		cpu.setCPUERR(CPUERR_YEL)
	case cpu.Model.Has(FEATURE_STKLR):
		if uint32(sp) >= uint32(cpu.stklim)+uint32(STKL_R) {
			cpu.trapReq |= TRAP_YEL.Mask()
			cpu.setCPUERR(CPUERR_YEL)
			return
		}
		cpu.setCPUERR(CPUERR_RED)
		cpu.SetStackPointer(MODE_KERNEL, 4)
		err = cpu.abort(TRAP_RED.Mask())
	}
	return
}

// spaceOf returns the address space used with register reg.
func (cpu *Cpu) spaceOf(reg int) VA {
	if reg == REG_PC {
		return cpu.isenable
	}
	return cpu.dsenable
}

// geteaW computes the address of a word operand. spec must not be a
// register mode specifier.
func (cpu *Cpu) geteaW(spec int) (va VA, err error) {
	reg := spec & 07
	ds := cpu.spaceOf(reg)

	switch spec >> 3 {
	case 2: // (R)+
		adr := cpu.R[reg]
		cpu.R[reg] = adr + 2
		cpu.recordMod(020|uint16(reg), true)
		va = VA(adr) | ds
	case 3: // @(R)+
		adr := cpu.R[reg]
		cpu.R[reg] = adr + 2
		cpu.recordMod(020|uint16(reg), true)
		adr, err = cpu.readW(VA(adr) | ds)
		va = VA(adr) | cpu.dsenable
	case 4: // -(R)
		cpu.R[reg] -= 2
		adr := cpu.R[reg]
		cpu.recordMod(0360|uint16(reg), true)
		if reg == REG_SP {
			err = cpu.stackCheck(adr)
		}
		va = VA(adr) | ds
	case 5: // @-(R)
		cpu.R[reg] -= 2
		adr := cpu.R[reg]
		cpu.recordMod(0360|uint16(reg), true)
		if reg == REG_SP {
			err = cpu.stackCheck(adr)
			if err != nil {
				return
			}
		}
		adr, err = cpu.readW(VA(adr) | ds)
		va = VA(adr) | cpu.dsenable
	case 6: // d(R)
		var disp uint16
		disp, err = cpu.readW(VA(cpu.PC()) | cpu.isenable)
		if err != nil {
			return
		}
		cpu.R[REG_PC] += 2
		va = VA(cpu.R[reg]+disp) | cpu.dsenable
	case 7: // @d(R)
		var disp, adr uint16
		disp, err = cpu.readW(VA(cpu.PC()) | cpu.isenable)
		if err != nil {
			return
		}
		cpu.R[REG_PC] += 2
		adr, err = cpu.readW(VA(cpu.R[reg]+disp) | cpu.dsenable)
		va = VA(adr) | cpu.dsenable
	default: // (R)
		va = VA(cpu.R[reg]) | ds
	}

	return
}

// geteaB computes the address of a byte operand. Autoincrement and
// autodecrement step by one, except for SP and PC.
func (cpu *Cpu) geteaB(spec int) (va VA, err error) {
	reg := spec & 07
	ds := cpu.spaceOf(reg)

	delta := uint16(1)
	if reg >= REG_SP {
		delta = 2
	}

	switch spec >> 3 {
	case 2: // (R)+
		adr := cpu.R[reg]
		cpu.R[reg] = adr + delta
		cpu.recordMod(delta<<3|uint16(reg), reg != REG_PC)
		va = VA(adr) | ds
	case 4: // -(R)
		cpu.R[reg] -= delta
		adr := cpu.R[reg]
		cpu.recordMod(((-delta)&037)<<3|uint16(reg), true)
		if reg == REG_SP {
			err = cpu.stackCheck(adr)
		}
		va = VA(adr) | ds
	default:
		va, err = cpu.geteaW(spec)
	}

	return
}
