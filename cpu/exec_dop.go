package cpu

// operands reads a source and a destination operand. Models that
// optimize register sources decode the destination first, so a source
// register modified by the destination decode is read modified.
func (cpu *Cpu) operands(srcspec int, dstspec int, w Width, rmw bool) (src, src2 uint16, err error) {
	read := cpu.fetch
	if rmw {
		read = cpu.modify
	}

	if cpu.has(FEATURE_SDSD) && srcspec < 010 && dstspec >= 010 {
		src2, err = read(dstspec, w)
		if err != nil {
			return
		}
		src = cpu.R[srcspec] & uint16(w)
		return
	}

	src, err = cpu.fetch(srcspec, w)
	if err != nil {
		return
	}
	src2, err = read(dstspec, w)
	return
}

// execDouble runs the double operand instructions of either width.
func (cpu *Cpu) execDouble(ir uint16, srcspec int, dstspec int, w Width) (err error) {
	mask := uint16(w)

	switch ir >> 12 {
	case 001, 011: // MOV, MOVB
		var src uint16
		var va VA
		if cpu.has(FEATURE_SDSD) && srcspec < 010 && dstspec >= 010 {
			va, err = cpu.address(dstspec, w)
			if err != nil {
				return
			}
			src = cpu.R[srcspec] & mask
		} else {
			src, err = cpu.fetch(srcspec, w)
			if err != nil {
				return
			}
			if dstspec >= 010 {
				va, err = cpu.address(dstspec, w)
				if err != nil {
					return
				}
			}
		}
		cpu.cc = ccLogic(w, src, cpu.cc.C)
		if w == BYTE && dstspec < 010 {
			// MOVB to a register sign extends.
			if (src & 0200) != 0 {
				src |= 0177400
			}
			cpu.R[dstspec] = src
			return
		}
		err = cpu.put(dstspec, va, src, w)
	case 002, 012: // CMP, CMPB
		var src, src2 uint16
		src, src2, err = cpu.operands(srcspec, dstspec, w, false)
		if err != nil {
			return
		}
		cpu.cc = ccCmp(w, src, src2, (src-src2)&mask)
	case 003, 013: // BIT, BITB
		var src, src2 uint16
		src, src2, err = cpu.operands(srcspec, dstspec, w, false)
		if err != nil {
			return
		}
		cpu.cc = ccLogic(w, src2&src, cpu.cc.C)
	case 004, 014: // BIC, BICB
		var src, src2 uint16
		src, src2, err = cpu.operands(srcspec, dstspec, w, true)
		if err != nil {
			return
		}
		dst := (src2 &^ src) & mask
		cpu.cc = ccLogic(w, dst, cpu.cc.C)
		err = cpu.store(dstspec, dst, w)
	case 005, 015: // BIS, BISB
		var src, src2 uint16
		src, src2, err = cpu.operands(srcspec, dstspec, w, true)
		if err != nil {
			return
		}
		dst := (src2 | src) & mask
		cpu.cc = ccLogic(w, dst, cpu.cc.C)
		err = cpu.store(dstspec, dst, w)
	case 006: // ADD
		var src, src2 uint16
		src, src2, err = cpu.operands(srcspec, dstspec, w, true)
		if err != nil {
			return
		}
		dst := src2 + src
		cpu.cc = ccAdd(w, src, src2, dst)
		err = cpu.store(dstspec, dst, w)
	case 016: // SUB
		var src, src2 uint16
		src, src2, err = cpu.operands(srcspec, dstspec, w, true)
		if err != nil {
			return
		}
		dst := src2 - src
		cpu.cc = ccSub(w, src, src2, dst)
		err = cpu.store(dstspec, dst, w)
	}

	return
}
