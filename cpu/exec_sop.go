package cpu

// execSpecial runs MARK, the previous space moves, SXT, CSM, and the
// interlocked memory operations.
func (cpu *Cpu) execSpecial(op int, spec int) (err error) {
	switch op {
	case 064: // MARK
		if !cpu.has(FEATURE_MARK) {
			cpu.trap(TRAP_ILL)
			return
		}
		top := cpu.PC() + uint16(spec)*2
		cpu.R[REG_PC] = cpu.R[5]
		var value uint16
		value, err = cpu.readW(VA(top) | cpu.dsenable)
		if err != nil {
			return
		}
		cpu.R[5] = value
		cpu.R[REG_SP] = top + 2
	case 065: // MFPI
		space := calcIS(cpu.pm)
		if cpu.mode == cpu.pm && cpu.mode == MODE_USER {
			space = cpu.calcDS(cpu.pm)
		}
		err = cpu.moveFromPrevious(spec, space)
	case 066: // MTPI
		err = cpu.moveToPrevious(spec, calcIS(cpu.pm))
	case 067: // SXT
		if !cpu.has(FEATURE_SXS) {
			cpu.trap(TRAP_ILL)
			return
		}
		var dst uint16
		if cpu.cc.N {
			dst = 0177777
		}
		cpu.cc.Z = !cpu.cc.N
		cpu.cc.V = false
		err = cpu.putOperand(spec, dst, WORD)
	case 070: // CSM
		if !cpu.has(FEATURE_CSM) || (cpu.mmr3&MMR3_CSM) == 0 || cpu.mode == MODE_KERNEL {
			cpu.trap(TRAP_ILL)
			return
		}
		err = cpu.callSupervisor(spec)
	case 072: // TSTSET
		if !cpu.has(FEATURE_TSWLK) || spec < 010 {
			cpu.trap(TRAP_ILL)
			return
		}
		var dst uint16
		dst, err = cpu.modify(spec, WORD)
		if err != nil {
			return
		}
		cpu.cc = ccLogic(WORD, dst, (dst&1) != 0)
		cpu.R[0] = dst
		err = cpu.pWriteW(dst|1, cpu.lastPA)
	case 073: // WRTLCK
		if !cpu.has(FEATURE_TSWLK) || spec < 010 {
			cpu.trap(TRAP_ILL)
			return
		}
		cpu.cc = ccLogic(WORD, cpu.R[0], cpu.cc.C)
		err = cpu.putOperand(spec, cpu.R[0], WORD)
	default:
		cpu.trap(TRAP_ILL)
	}

	return
}

// moveFromPrevious pushes a word from the previous mode's address space.
func (cpu *Cpu) moveFromPrevious(spec int, space VA) (err error) {
	if !cpu.has(FEATURE_MXPY) {
		cpu.trap(TRAP_ILL)
		return
	}

	var dst uint16
	switch {
	case spec == REG_SP && cpu.mode != cpu.pm:
		dst = cpu.StackPointer(cpu.pm)
	case spec < 010:
		dst = cpu.R[spec]
	default:
		var va VA
		va, err = cpu.geteaW(spec)
		if err != nil {
			return
		}
		dst, err = cpu.readW(VA(va.Offset()) | space)
		if err != nil {
			return
		}
	}

	cpu.cc = ccLogic(WORD, dst, cpu.cc.C)
	err = cpu.push(dst)
	return
}

// moveToPrevious pops a word into the previous mode's address space.
func (cpu *Cpu) moveToPrevious(spec int, space VA) (err error) {
	if !cpu.has(FEATURE_MXPY) {
		cpu.trap(TRAP_ILL)
		return
	}

	dst, err := cpu.readW(VA(cpu.SP()) | cpu.dsenable)
	if err != nil {
		return
	}
	cpu.cc = ccLogic(WORD, dst, cpu.cc.C)
	cpu.R[REG_SP] += 2
	cpu.recordMod(026, true)

	switch {
	case spec == REG_SP && cpu.mode != cpu.pm:
		cpu.SetStackPointer(cpu.pm, dst)
	case spec < 010:
		cpu.R[spec] = dst
	default:
		var va VA
		va, err = cpu.geteaW(spec)
		if err != nil {
			return
		}
		err = cpu.writeW(dst, VA(va.Offset())|space)
	}

	return
}

// callSupervisor enters supervisor mode through the vector at 010,
// leaving the PSW, PC, and operand on the supervisor data space stack.
func (cpu *Cpu) callSupervisor(spec int) (err error) {
	var dst uint16
	if spec < 010 {
		dst = cpu.R[spec]
	} else {
		var va VA
		va, err = cpu.geteaW(spec)
		if err != nil {
			return
		}
		dst, err = cpu.readW(va)
		if err != nil {
			return
		}
	}

	psw := cpu.getPSW() &^ PSW_CC
	sp := cpu.SP()
	space := cpu.calcDS(MODE_SUPERVISOR)
	for n, value := range []uint16{psw, cpu.PC(), dst} {
		err = cpu.writeW(value, VA(sp-uint16(n+1)*2)|space)
		if err != nil {
			return
		}
	}

	cpu.pm = cpu.mode
	cpu.switchMode(MODE_SUPERVISOR)
	cpu.R[REG_SP] = sp - 6
	cpu.cc = CC{}
	cpu.tbit = false
	cpu.calcSpaces()

	pc, err := cpu.readW(VA(VEC_CSM) | cpu.isenable)
	if err != nil {
		return
	}
	cpu.R[REG_PC] = pc
	return
}

// execGroup10 runs opcodes 100000-107777.
func (cpu *Cpu) execGroup10(ir uint16, spec int) (err error) {
	op := int(ir>>6) & 077
	switch op {
	case 000, 001, 002, 003: // BPL
		if !cpu.cc.N {
			cpu.branch(ir)
		}
	case 004, 005, 006, 007: // BMI
		if cpu.cc.N {
			cpu.branch(ir)
		}
	case 010, 011, 012, 013: // BHI
		if !cpu.cc.C && !cpu.cc.Z {
			cpu.branch(ir)
		}
	case 014, 015, 016, 017: // BLOS
		if cpu.cc.C || cpu.cc.Z {
			cpu.branch(ir)
		}
	case 020, 021, 022, 023: // BVC
		if !cpu.cc.V {
			cpu.branch(ir)
		}
	case 024, 025, 026, 027: // BVS
		if cpu.cc.V {
			cpu.branch(ir)
		}
	case 030, 031, 032, 033: // BCC
		if !cpu.cc.C {
			cpu.branch(ir)
		}
	case 034, 035, 036, 037: // BCS
		if cpu.cc.C {
			cpu.branch(ir)
		}
	case 040, 041, 042, 043: // EMT
		cpu.trap(TRAP_EMT)
	case 044, 045, 046, 047: // TRAP
		cpu.trap(TRAP_TRAP)
	case 050, 051, 052, 053, 054, 055, 056, 057, 060, 061, 062, 063:
		err = cpu.execSingle(op, spec, BYTE)
	case 064: // MTPS
		if !cpu.has(FEATURE_MXPS) {
			cpu.trap(TRAP_ILL)
			return
		}
		var dst uint16
		if spec < 010 {
			dst = cpu.R[spec]
		} else {
			dst, err = cpu.fetch(spec, BYTE)
			if err != nil {
				return
			}
		}
		if cpu.mode == MODE_KERNEL {
			cpu.ipl = PSW(dst).IPL()
			cpu.trapReq = cpu.calcInts(cpu.ipl, cpu.trapReq)
		}
		cpu.cc = MakeCC(dst)
	case 065: // MFPD
		err = cpu.moveFromPrevious(spec, cpu.calcDS(cpu.pm))
	case 066: // MTPD
		err = cpu.moveToPrevious(spec, cpu.calcDS(cpu.pm))
	case 067: // MFPS
		if !cpu.has(FEATURE_MXPS) {
			cpu.trap(TRAP_ILL)
			return
		}
		dst := cpu.getPSW() & 0377
		cpu.cc = ccLogic(BYTE, dst, cpu.cc.C)
		if spec < 010 {
			if (dst & 0200) != 0 {
				dst |= 0177400
			}
			cpu.R[spec] = dst
			return
		}
		err = cpu.putOperand(spec, dst, BYTE)
	default:
		cpu.trap(TRAP_ILL)
	}

	return
}
