package cpu

// Width is an operand width, as a value mask.
type Width uint16

const (
	BYTE = Width(0000377)
	WORD = Width(0177777)
)

// Sign returns the sign bit of the width.
func (w Width) Sign() uint16 {
	return uint16(w>>1) + 1
}

func (w Width) negative(value uint16) bool {
	return (value & w.Sign()) != 0
}

func (w Width) zero(value uint16) bool {
	return (value & uint16(w)) == 0
}

// ccLogic is for moves and logical operations: V is cleared, C is kept.
func ccLogic(w Width, dst uint16, c bool) CC {
	return CC{N: w.negative(dst), Z: w.zero(dst), C: c}
}

// ccAdd is for dst = src2 + src.
func ccAdd(w Width, src, src2, dst uint16) CC {
	return CC{
		N: w.negative(dst),
		Z: w.zero(dst),
		V: w.negative((^src ^ src2) & (src ^ dst)),
		C: (dst & uint16(w)) < (src & uint16(w)),
	}
}

// ccSub is for dst = src2 - src.
func ccSub(w Width, src, src2, dst uint16) CC {
	return CC{
		N: w.negative(dst),
		Z: w.zero(dst),
		V: w.negative((src ^ src2) & (^src ^ dst)),
		C: (src2 & uint16(w)) < (src & uint16(w)),
	}
}

// ccCmp is for dst = src - src2.
func ccCmp(w Width, src, src2, dst uint16) CC {
	return CC{
		N: w.negative(dst),
		Z: w.zero(dst),
		V: w.negative((src ^ src2) & (^src2 ^ dst)),
		C: (src & uint16(w)) < (src2 & uint16(w)),
	}
}

// ccShift is for rotates and shifts: V is N xor C.
func ccShift(w Width, dst uint16, c bool) CC {
	n := w.negative(dst)
	return CC{N: n, Z: w.zero(dst), V: n != c, C: c}
}

// ccInc is for dst = src + 1; C is kept.
func ccInc(w Width, dst uint16, c bool) CC {
	return CC{
		N: w.negative(dst),
		Z: w.zero(dst),
		V: (dst & uint16(w)) == w.Sign(),
		C: c,
	}
}

// ccDec is for dst = src - 1; C is kept.
func ccDec(w Width, dst uint16, c bool) CC {
	return CC{
		N: w.negative(dst),
		Z: w.zero(dst),
		V: (dst & uint16(w)) == w.Sign()-1,
		C: c,
	}
}

// ccNeg is for dst = -src.
func ccNeg(w Width, dst uint16) CC {
	z := w.zero(dst)
	return CC{
		N: w.negative(dst),
		Z: z,
		V: (dst & uint16(w)) == w.Sign(),
		C: !z,
	}
}

// ccAdc is for dst = src + c.
func ccAdc(w Width, dst uint16, c bool) CC {
	z := w.zero(dst)
	return CC{
		N: w.negative(dst),
		Z: z,
		V: c && (dst&uint16(w)) == w.Sign(),
		C: c && z,
	}
}

// ccSbc is for dst = src - c.
func ccSbc(w Width, dst uint16, c bool) CC {
	return CC{
		N: w.negative(dst),
		Z: w.zero(dst),
		V: c && (dst&uint16(w)) == w.Sign()-1,
		C: c && (dst&uint16(w)) == uint16(w),
	}
}

func bit(b bool) uint16 {
	if b {
		return 1
	}
	return 0
}
