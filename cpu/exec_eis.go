package cpu

// execEis runs opcodes 070000-077777: the extended instruction set,
// XOR, SOB, and the FIS and CIS options.
func (cpu *Cpu) execEis(ir uint16, reg int, spec int) (err error) {
	op := (ir >> 9) & 07

	switch op {
	case 0, 1, 2, 3:
		if !cpu.option(OPTION_EIS) {
			cpu.trap(TRAP_ILL)
			return
		}
		var src2 uint16
		src2, err = cpu.fetch(spec, WORD)
		if err != nil {
			return
		}
		switch op {
		case 0:
			cpu.multiply(reg, src2)
		case 1:
			cpu.divide(reg, src2)
		case 2:
			cpu.shiftArithmetic(reg, src2)
		case 3:
			cpu.shiftCombined(reg, src2)
		}
	case 4: // XOR
		if !cpu.has(FEATURE_SXS) {
			cpu.trap(TRAP_ILL)
			return
		}
		var src, src2 uint16
		src, src2, err = cpu.operands(reg, spec, WORD, true)
		if err != nil {
			return
		}
		dst := src ^ src2
		cpu.cc = ccLogic(WORD, dst, cpu.cc.C)
		err = cpu.store(spec, dst, WORD)
	case 5:
		err = cpu.coprocessor(cpu.Fis, OPTION_FIS, ir)
	case 6:
		if cpu.has(FEATURE_MED) && cpu.mode == MODE_KERNEL && ir == 076600 {
			// Maintenance instruction; the immediate word is skipped.
			_, err = cpu.readW(VA(cpu.PC()) | cpu.isenable)
			if err != nil {
				return
			}
			cpu.R[REG_PC] += 2
			return
		}
		err = cpu.coprocessor(cpu.Cis, OPTION_CIS, ir)
	case 7: // SOB
		if !cpu.has(FEATURE_SXS) {
			cpu.trap(TRAP_ILL)
			return
		}
		cpu.R[reg]--
		if cpu.R[reg] != 0 {
			cpu.R[REG_PC] -= uint16(spec) * 2
		}
	}

	return
}

// multiply is MUL: the signed product of R and src2 is left in the
// register pair R:R|1.
func (cpu *Cpu) multiply(reg int, src2 uint16) {
	dst := int32(int16(cpu.R[reg])) * int32(int16(src2))
	cpu.R[reg] = uint16(dst >> 16)
	cpu.R[reg|1] = uint16(dst)
	cpu.cc = CC{
		N: dst < 0,
		Z: dst == 0,
		C: dst > 077777 || dst < -0100000,
	}
}

// divide is DIV: the register pair R:R|1 is divided by src2, leaving
// the quotient in R and the remainder in R|1. The registers are not
// changed on overflow.
func (cpu *Cpu) divide(reg int, src2 uint16) {
	src := int32(uint32(cpu.R[reg])<<16 | uint32(cpu.R[reg|1]))
	if src2 == 0 {
		cpu.cc = CC{Z: true, V: true, C: true}
		return
	}
	if uint32(src) == 020000000000 && src2 == 0177777 {
		cpu.cc = CC{V: true}
		return
	}

	divisor := int32(int16(src2))
	dst := src / divisor
	if dst > 077777 || dst < -0100000 {
		cpu.cc = CC{N: dst < 0, V: true}
		return
	}

	cpu.R[reg] = uint16(dst)
	cpu.R[reg|1] = uint16(src - divisor*dst)
	cpu.cc = CC{N: dst < 0, Z: dst == 0}
}

// shiftRight handles the right shift counts, 32 through 63, of ASH and
// ASHC.
func shiftRight(src int32, sign int32, count uint) (dst int32, c bool) {
	if count == 32 {
		dst = -sign
		c = sign != 0
		return
	}
	dst = (src >> (64 - count)) | (-sign << (count - 32))
	c = ((src >> (63 - count)) & 1) != 0
	return
}

// shiftArithmetic is ASH: R is shifted left by the low six bits of
// src2, taken as a signed count.
func (cpu *Cpu) shiftArithmetic(reg int, src2 uint16) {
	count := uint(src2 & 077)
	sign := int32(cpu.R[reg] >> 15)
	src := int32(int16(cpu.R[reg]))

	var dst int32
	var v, c bool
	switch {
	case count == 0:
		dst = src
	case count <= 15:
		dst = src << count
		out := (src >> (16 - count)) & 0177777
		expect := int32(0)
		if (dst & 0100000) != 0 {
			expect = 0177777
		}
		v = out != expect
		c = (out & 1) != 0
	case count <= 31:
		dst = 0
		v = src != 0
		c = ((src << (count - 16)) & 1) != 0
	default:
		dst, c = shiftRight(src, sign, count)
	}

	result := uint16(dst)
	cpu.R[reg] = result
	cpu.cc = CC{
		N: WORD.negative(result),
		Z: result == 0,
		V: v,
		C: c,
	}
}

// shiftCombined is ASHC: the register pair R:R|1 is shifted left by the
// low six bits of src2, taken as a signed count.
func (cpu *Cpu) shiftCombined(reg int, src2 uint16) {
	count := uint(src2 & 077)
	sign := int32(cpu.R[reg] >> 15)
	src := int32(uint32(cpu.R[reg])<<16 | uint32(cpu.R[reg|1]))

	var dst int32
	var v, c bool
	switch {
	case count == 0:
		dst = src
	case count <= 31:
		dst = int32(uint32(src) << count)
		out := (src >> (32 - count)) | (-sign << count)
		expect := int32(0)
		if dst < 0 {
			expect = -1
		}
		v = out != expect
		c = (out & 1) != 0
	default:
		dst, c = shiftRight(src, sign, count)
	}

	high := uint16(dst >> 16)
	low := uint16(dst)
	cpu.R[reg] = high
	cpu.R[reg|1] = low
	cpu.cc = CC{
		N: WORD.negative(high),
		Z: (high | low) == 0,
		V: v,
		C: c,
	}
}
