package cpu

import (
	"log"
)

func (cpu *Cpu) trap(tc TrapClass) {
	cpu.trapReq |= tc.Mask()
}

func (cpu *Cpu) has(feat Feature) bool {
	return cpu.Model.Has(feat)
}

func (cpu *Cpu) option(opt Option) bool {
	return (cpu.Options & opt) != 0
}

// fetch reads a source operand.
func (cpu *Cpu) fetch(spec int, w Width) (value uint16, err error) {
	if spec < 010 {
		value = cpu.R[spec] & uint16(w)
		return
	}

	var va VA
	if w == BYTE {
		va, err = cpu.geteaB(spec)
		if err != nil {
			return
		}
		value, err = cpu.readB(va)
		return
	}

	va, err = cpu.geteaW(spec)
	if err != nil {
		return
	}
	value, err = cpu.readW(va)
	return
}

// modify reads a destination operand that will be written back by store.
func (cpu *Cpu) modify(spec int, w Width) (value uint16, err error) {
	if spec < 010 {
		value = cpu.R[spec] & uint16(w)
		return
	}

	var va VA
	if w == BYTE {
		va, err = cpu.geteaB(spec)
		if err != nil {
			return
		}
		value, err = cpu.readMB(va)
		return
	}

	va, err = cpu.geteaW(spec)
	if err != nil {
		return
	}
	value, err = cpu.readMW(va)
	return
}

// store writes back a destination operand read by modify. Memory
// operands are written to the physical address already translated.
func (cpu *Cpu) store(spec int, value uint16, w Width) (err error) {
	if spec < 010 {
		if w == BYTE {
			cpu.R[spec] = (cpu.R[spec] & 0177400) | (value & 0377)
		} else {
			cpu.R[spec] = value
		}
		return
	}

	if w == BYTE {
		err = cpu.pWriteB(value, cpu.lastPA)
	} else {
		err = cpu.pWriteW(value, cpu.lastPA)
	}
	return
}

// address computes the address of a memory operand.
func (cpu *Cpu) address(spec int, w Width) (va VA, err error) {
	if w == BYTE {
		va, err = cpu.geteaB(spec)
	} else {
		va, err = cpu.geteaW(spec)
	}
	return
}

// put writes a destination operand at a computed address.
func (cpu *Cpu) put(spec int, va VA, value uint16, w Width) (err error) {
	if spec < 010 {
		if w == BYTE {
			cpu.R[spec] = (cpu.R[spec] & 0177400) | (value & 0377)
		} else {
			cpu.R[spec] = value
		}
		return
	}

	if w == BYTE {
		err = cpu.writeB(value, va)
	} else {
		err = cpu.writeW(value, va)
	}
	return
}

// putOperand computes the address of a write-only destination and
// writes it.
func (cpu *Cpu) putOperand(spec int, value uint16, w Width) (err error) {
	var va VA
	if spec >= 010 {
		va, err = cpu.address(spec, w)
		if err != nil {
			return
		}
	}
	err = cpu.put(spec, va, value, w)
	return
}

// push decrements SP, and writes a word to the new top of stack.
func (cpu *Cpu) push(value uint16) (err error) {
	cpu.R[REG_SP] -= 2
	cpu.recordMod(0366, true)
	err = cpu.stackCheck(cpu.SP())
	if err != nil {
		return
	}
	err = cpu.writeW(value, VA(cpu.SP())|cpu.dsenable)
	return
}

// branch adds the signed offset in the low byte of ir to the PC.
func (cpu *Cpu) branch(ir uint16) {
	cpu.R[REG_PC] += uint16(int16(int8(ir))) * 2
}

// execute runs one decoded instruction.
func (cpu *Cpu) execute(ir uint16) (err error) {
	srcspec := int(ir>>6) & 077
	dstspec := int(ir) & 077

	switch ir >> 12 {
	case 000:
		err = cpu.execGroup0(ir, srcspec, dstspec)
	case 001, 002, 003, 004, 005, 006:
		err = cpu.execDouble(ir, srcspec, dstspec, WORD)
	case 007:
		err = cpu.execEis(ir, srcspec&07, dstspec)
	case 010:
		err = cpu.execGroup10(ir, dstspec)
	case 011, 012, 013, 014, 015:
		err = cpu.execDouble(ir, srcspec, dstspec, BYTE)
	case 016:
		err = cpu.execDouble(ir, srcspec, dstspec, WORD)
	case 017:
		err = cpu.coprocessor(cpu.Fpp, OPTION_FPP, ir)
	}

	return
}

// coprocessor dispatches to an optional instruction set.
func (cpu *Cpu) coprocessor(cop Coprocessor, opt Option, ir uint16) (err error) {
	if cop == nil || !cpu.option(opt) {
		cpu.trap(TRAP_ILL)
		return
	}
	err = cop.Execute(cpu, ir)
	return
}

// execGroup0 runs opcodes 000000-007777.
func (cpu *Cpu) execGroup0(ir uint16, srcspec int, dstspec int) (err error) {
	switch srcspec {
	case 000:
		err = cpu.execControl(ir)
	case 001: // JMP
		if dstspec < 010 {
			cpu.jumpRegister()
			return
		}
		var va VA
		va, err = cpu.geteaW(dstspec)
		if err != nil {
			return
		}
		dst := va.Offset()
		if cpu.has(FEATURE_JPOSTINC) && (dstspec&070) == 020 {
			dst = cpu.R[dstspec&07]
		}
		cpu.R[REG_PC] = dst
	case 002:
		err = cpu.execFlow(ir)
	case 003: // SWAB
		var dst uint16
		dst, err = cpu.modify(dstspec, WORD)
		if err != nil {
			return
		}
		dst = (dst << 8) | (dst >> 8)
		v := cpu.cc.V && cpu.has(FEATURE_SWABV)
		cpu.cc = ccLogic(BYTE, dst, false)
		cpu.cc.V = v
		err = cpu.store(dstspec, dst, WORD)
	case 004, 005, 006, 007: // BR
		cpu.branch(ir)
	case 010, 011, 012, 013: // BNE
		if !cpu.cc.Z {
			cpu.branch(ir)
		}
	case 014, 015, 016, 017: // BEQ
		if cpu.cc.Z {
			cpu.branch(ir)
		}
	case 020, 021, 022, 023: // BGE
		if cpu.cc.N == cpu.cc.V {
			cpu.branch(ir)
		}
	case 024, 025, 026, 027: // BLT
		if cpu.cc.N != cpu.cc.V {
			cpu.branch(ir)
		}
	case 030, 031, 032, 033: // BGT
		if !cpu.cc.Z && cpu.cc.N == cpu.cc.V {
			cpu.branch(ir)
		}
	case 034, 035, 036, 037: // BLE
		if cpu.cc.Z || cpu.cc.N != cpu.cc.V {
			cpu.branch(ir)
		}
	case 040, 041, 042, 043, 044, 045, 046, 047: // JSR
		if dstspec < 010 {
			cpu.jumpRegister()
			return
		}
		reg := srcspec & 07
		var va VA
		va, err = cpu.geteaW(dstspec)
		if err != nil {
			return
		}
		dst := va.Offset()
		if cpu.has(FEATURE_JPOSTINC) && (dstspec&070) == 020 {
			dst = cpu.R[dstspec&07]
		}
		err = cpu.push(cpu.R[reg])
		if err != nil {
			return
		}
		cpu.R[reg] = cpu.PC()
		cpu.R[REG_PC] = dst
	case 050, 051, 052, 053, 054, 055, 056, 057, 060, 061, 062, 063:
		err = cpu.execSingle(srcspec, dstspec, WORD)
	case 064, 065, 066, 067, 070, 072, 073:
		err = cpu.execSpecial(srcspec, dstspec)
	default:
		cpu.trap(TRAP_ILL)
	}

	return
}

func (cpu *Cpu) jumpRegister() {
	if cpu.has(FEATURE_JREG4) {
		cpu.trap(TRAP_PRV)
	} else {
		cpu.trap(TRAP_ILL)
	}
}

// execControl runs the no-operand instructions 000000-000077.
func (cpu *Cpu) execControl(ir uint16) (err error) {
	if ir >= 000010 {
		cpu.trap(TRAP_ILL)
		return
	}

	switch ir {
	case 0: // HALT
		switch {
		case cpu.mode == MODE_KERNEL:
			cpu.stop = ErrHalt
		case cpu.has(FEATURE_HALT4):
			cpu.trap(TRAP_PRV)
			cpu.setCPUERR(CPUERR_HALT)
		default:
			cpu.trap(TRAP_ILL)
		}
	case 1: // WAIT
		cpu.wait = true
	case 3: // BPT
		cpu.trap(TRAP_BPT)
	case 4: // IOT
		cpu.trap(TRAP_IOT)
	case 5: // RESET
		if cpu.mode == MODE_KERNEL {
			if cpu.Verbose {
				log.Printf("cpu: bus reset at %06o", cpu.instPC)
			}
			cpu.IoPage.Reset()
			cpu.putPIRQ(0)
			cpu.stklim = 0
			cpu.mmr0 = 0
			cpu.mmr3 = 0
			cpu.clearInterrupts()
			cpu.trapReq &^= _mask_int
			cpu.calcSpaces()
		}
	case 6: // RTT
		if !cpu.has(FEATURE_RTT) {
			cpu.trap(TRAP_ILL)
			return
		}
		err = cpu.returnFromInterrupt(ir)
	case 2: // RTI
		err = cpu.returnFromInterrupt(ir)
	case 7: // MFPT
		if !cpu.has(FEATURE_MFPT) {
			cpu.trap(TRAP_ILL)
			return
		}
		cpu.R[0] = cpu.Model.MfptCode
	}

	return
}

// returnFromInterrupt pops the PC and PSW. Outside kernel mode the mode,
// previous mode, and register set can only be raised, and the priority
// is unchanged.
func (cpu *Cpu) returnFromInterrupt(ir uint16) (err error) {
	pc, err := cpu.readW(VA(cpu.SP()) | cpu.dsenable)
	if err != nil {
		return
	}
	psw, err := cpu.readW(VA(cpu.SP()+2) | cpu.dsenable)
	if err != nil {
		return
	}
	cpu.R[REG_SP] += 4
	cpu.putPSW(psw, cpu.mode != MODE_KERNEL)
	cpu.trapReq = cpu.calcInts(cpu.ipl, cpu.trapReq)
	cpu.R[REG_PC] = pc
	if cpu.has(FEATURE_RTT) && cpu.tbit && ir == 000002 {
		cpu.trap(TRAP_TRC)
	}
	return
}

// execFlow runs RTS, SPL, and the condition code operators.
func (cpu *Cpu) execFlow(ir uint16) (err error) {
	switch {
	case ir < 000210: // RTS
		reg := int(ir) & 07
		cpu.R[REG_PC] = cpu.R[reg]
		var value uint16
		value, err = cpu.readW(VA(cpu.SP()) | cpu.dsenable)
		if err != nil {
			return
		}
		cpu.R[reg] = value
		if reg != REG_SP {
			cpu.R[REG_SP] += 2
		}
	case ir < 000230:
		cpu.trap(TRAP_ILL)
	case ir < 000240: // SPL
		if !cpu.has(FEATURE_SPL) {
			cpu.trap(TRAP_ILL)
			return
		}
		if cpu.mode == MODE_KERNEL {
			cpu.ipl = int(ir) & 07
		}
		cpu.trapReq = cpu.calcInts(cpu.ipl, cpu.trapReq)
	default: // CCC, SCC
		set := ir >= 000260
		if (ir & 010) != 0 {
			cpu.cc.N = set
		}
		if (ir & 004) != 0 {
			cpu.cc.Z = set
		}
		if (ir & 002) != 0 {
			cpu.cc.V = set
		}
		if (ir & 001) != 0 {
			cpu.cc.C = set
		}
	}

	return
}

// execSingle runs a single operand instruction of either width.
func (cpu *Cpu) execSingle(op int, spec int, w Width) (err error) {
	mask := uint16(w)
	sign := w.Sign()

	switch op {
	case 050: // CLR
		cpu.cc = CC{Z: true}
		err = cpu.putOperand(spec, 0, w)
		return
	case 057: // TST
		var dst uint16
		dst, err = cpu.fetch(spec, w)
		if err != nil {
			return
		}
		cpu.cc = ccLogic(w, dst, false)
		return
	}

	src, err := cpu.modify(spec, w)
	if err != nil {
		return
	}
	src &= mask

	var dst uint16
	c := cpu.cc.C
	switch op {
	case 051: // COM
		dst = ^src & mask
		cpu.cc = ccLogic(w, dst, true)
	case 052: // INC
		dst = (src + 1) & mask
		cpu.cc = ccInc(w, dst, c)
	case 053: // DEC
		dst = (src - 1) & mask
		cpu.cc = ccDec(w, dst, c)
	case 054: // NEG
		dst = -src & mask
		cpu.cc = ccNeg(w, dst)
	case 055: // ADC
		dst = (src + bit(c)) & mask
		cpu.cc = ccAdc(w, dst, c)
	case 056: // SBC
		dst = (src - bit(c)) & mask
		cpu.cc = ccSbc(w, dst, c)
	case 060: // ROR
		dst = (src >> 1) | (bit(c) * sign)
		cpu.cc = ccShift(w, dst, (src&1) != 0)
	case 061: // ROL
		dst = ((src << 1) | bit(c)) & mask
		cpu.cc = ccShift(w, dst, (src&sign) != 0)
	case 062: // ASR
		dst = (src >> 1) | (src & sign)
		cpu.cc = ccShift(w, dst, (src&1) != 0)
	case 063: // ASL
		dst = (src << 1) & mask
		cpu.cc = ccShift(w, dst, (src&sign) != 0)
	}

	err = cpu.store(spec, dst, w)
	return
}

// CC returns the condition codes.
func (cpu *Cpu) CC() CC {
	return cpu.cc
}

// SetCC sets the condition codes.
func (cpu *Cpu) SetCC(cc CC) {
	cpu.cc = cc
}

// SetTrap requests a trap class from within an instruction.
func (cpu *Cpu) SetTrap(tc TrapClass) {
	cpu.trap(tc)
}

// EffectiveAddress computes the address of a memory operand of the
// current instruction, with the side effects of its addressing mode.
func (cpu *Cpu) EffectiveAddress(spec int, w Width) (va VA, err error) {
	return cpu.address(spec, w)
}

// ReadVirtual reads a word through the MMU. An *Abort is returned on a
// fault.
func (cpu *Cpu) ReadVirtual(va VA) (data uint16, err error) {
	return cpu.readW(va)
}

// WriteVirtual writes a word through the MMU. An *Abort is returned on a
// fault.
func (cpu *Cpu) WriteVirtual(va VA, data uint16) (err error) {
	return cpu.writeW(data, va)
}
