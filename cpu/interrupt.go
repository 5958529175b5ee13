package cpu

import (
	"math/bits"
)

const (
	IPL_LEVELS = 8

	PIRQ_PIR1 = uint16(0001000)
	PIRQ_PIR7 = uint16(0100000)
	PIRQ_RW   = uint16(0177000)
	PIRQ_PL   = uint16(0000356)
)

// Interrupt is a device interrupt request at a fixed level and vector.
// Raise and Clear may be called from any goroutine.
type Interrupt struct {
	Level  int
	Vector uint16

	cpu *Cpu
	bit uint32
}

// NewInterrupt allocates an interrupt request line. Requests at the same
// level are granted in allocation order.
func (cpu *Cpu) NewInterrupt(level int, vector uint16) (irq *Interrupt, err error) {
	if level < 1 || level >= IPL_LEVELS || vector == 0 || (vector&3) != 0 || vector >= 01000 {
		err = ErrInterrupt
		return
	}

	n := len(cpu.intVec[level])
	if n >= 32 {
		err = ErrInterruptMax
		return
	}

	cpu.intVec[level] = append(cpu.intVec[level], vector)
	irq = &Interrupt{
		Level:  level,
		Vector: vector,
		cpu:    cpu,
		bit:    uint32(1) << n,
	}

	return
}

// Raise requests the interrupt.
func (irq *Interrupt) Raise() {
	irq.cpu.intReq[irq.Level].Or(irq.bit)
}

// Clear withdraws the interrupt request.
func (irq *Interrupt) Clear() {
	irq.cpu.intReq[irq.Level].And(^irq.bit)
}

// Pending returns true if the request has not been acknowledged.
func (irq *Interrupt) Pending() bool {
	return (irq.cpu.intReq[irq.Level].Load() & irq.bit) != 0
}

// RaiseTrap requests a trap class from outside the instruction loop.
// It is merged into the trap requests at the next instruction boundary.
func (cpu *Cpu) RaiseTrap(tc TrapClass) {
	cpu.extTrap.Or(uint32(tc.Mask()))
}

// clearInterrupts drops all device interrupt requests.
func (cpu *Cpu) clearInterrupts() {
	for level := range IPL_LEVELS {
		cpu.intReq[level].Store(0)
	}
}

func pirqBit(level int) uint16 {
	return PIRQ_PIR1 << (level - 1)
}

// intPending returns true if any request is outstanding at a level.
func (cpu *Cpu) intPending(level int) bool {
	return cpu.intReq[level].Load() != 0 || (cpu.pirq&pirqBit(level)) != 0
}

// calcInts sets or clears the interrupt request in trq,
// depending on whether any request is above ipl.
func (cpu *Cpu) calcInts(ipl int, trq TrapMask) TrapMask {
	for level := IPL_LEVELS - 1; level > ipl; level-- {
		if cpu.intPending(level) {
			return trq | _mask_int
		}
	}
	return trq &^ _mask_int
}

// getVector acknowledges the highest priority interrupt above ipl, and
// returns its vector. Device requests are cleared on acknowledge;
// program interrupt requests stay set until software clears them.
func (cpu *Cpu) getVector(ipl int) (vec uint16) {
	for level := IPL_LEVELS - 1; level > ipl; level-- {
		req := cpu.intReq[level].Load()
		for req != 0 {
			bit := req & -req
			if (cpu.intReq[level].And(^bit) & bit) != 0 {
				vec = cpu.intVec[level][bits.TrailingZeros32(bit)]
				return
			}
			req &^= bit
		}
		if (cpu.pirq & pirqBit(level)) != 0 {
			vec = VEC_PIRQ
			return
		}
	}

	return
}

// putPIRQ sets the program interrupt request register. The priority
// field encodes the highest requested level.
func (cpu *Cpu) putPIRQ(value uint16) {
	value &= PIRQ_RW
	var pl uint16
	for level := IPL_LEVELS - 1; level > 0; level-- {
		if (value & pirqBit(level)) != 0 {
			pl = uint16(level)<<PSW_V_IPL | uint16(level)<<1
			break
		}
	}
	cpu.pirq = value | pl
}
