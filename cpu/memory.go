package cpu

import (
	"github.com/ezrec/pdp11/io"
)

// Memory is the physical memory seen by the processor.
type Memory interface {
	Size() uint32
	ReadWord(pa uint32) uint16
	WriteWord(pa uint32, data uint16)
	WriteByte(pa uint32, data uint8)
}

// IoPage dispatches references at or above io.IOPAGE_BASE.
type IoPage interface {
	ReadIo(pa uint32, access io.Access) (data uint16, err error)
	WriteIo(pa uint32, data uint16, access io.Access) (err error)
	Reset()
}

// CPUERR bits.
const (
	CPUERR_RED  = uint16(0004) // Red zone stack limit
	CPUERR_YEL  = uint16(0010) // Yellow zone stack limit
	CPUERR_TMO  = uint16(0020) // Unibus timeout
	CPUERR_NXM  = uint16(0040) // Non-existent memory
	CPUERR_ODD  = uint16(0100) // Odd address
	CPUERR_HALT = uint16(0200) // Illegal HALT
	CPUERR_IMP  = uint16(0374)
)

func (cpu *Cpu) setCPUERR(bits uint16) {
	if cpu.Model.Has(FEATURE_CPUERR) {
		cpu.cpuerr |= bits
	}
}

// abort builds the unwind for a set of trap classes, tagged with the
// state of the trap sequence in progress.
func (cpu *Cpu) abort(mask TrapMask) error {
	return &Abort{
		Trap:   mask,
		Vector: cpu.trapSeq.vector,
		Push:   cpu.trapSeq.push,
		Mode:   cpu.trapSeq.mode,
	}
}

func (cpu *Cpu) abortBreak(message string) error {
	return &Abort{
		Breakpoint: true,
		Message:    message,
	}
}

// oddCheck aborts word references to odd addresses on models that trap them.
func (cpu *Cpu) oddCheck(va VA) (err error) {
	if (va&1) != 0 && cpu.Model.Has(FEATURE_ODD) {
		cpu.setCPUERR(CPUERR_ODD)
		err = cpu.abort(TRAP_ODD.Mask())
	}
	return
}

// pendBreak records a breakpoint stop without aborting.
func (cpu *Cpu) pendBreak(message string) {
	if cpu.stop == nil {
		cpu.stop = &ErrBreakpoint{Message: message}
	}
}

func (cpu *Cpu) readW(va VA) (data uint16, err error) {
	err = cpu.oddCheck(va)
	if err != nil {
		return
	}
	pa, err := cpu.relocR(va)
	if err != nil {
		return
	}
	if message, hit := cpu.testBreak(va, pa, BREAK_READ_VIRTUAL, BREAK_READ_PHYSICAL); hit {
		err = cpu.abortBreak(message)
		return
	}
	cpu.lastVA, cpu.lastPA = va, pa
	data, err = cpu.pReadW(pa)
	return
}

func (cpu *Cpu) readB(va VA) (data uint16, err error) {
	pa, err := cpu.relocR(va)
	if err != nil {
		return
	}
	if message, hit := cpu.testBreak(va, pa, BREAK_READ_VIRTUAL, BREAK_READ_PHYSICAL); hit {
		err = cpu.abortBreak(message)
		return
	}
	cpu.lastVA, cpu.lastPA = va, pa
	data, err = cpu.pReadB(pa)
	return
}

// readMW reads a word for modification. The physical address is kept in
// lastPA for the write back.
func (cpu *Cpu) readMW(va VA) (data uint16, err error) {
	err = cpu.oddCheck(va)
	if err != nil {
		return
	}
	pa, err := cpu.relocW(va)
	if err != nil {
		return
	}
	if message, hit := cpu.testBreak(va, pa,
		BREAK_READ_VIRTUAL|BREAK_WRITE_VIRTUAL,
		BREAK_READ_PHYSICAL|BREAK_WRITE_PHYSICAL); hit {
		err = cpu.abortBreak(message)
		return
	}
	cpu.lastVA, cpu.lastPA = va, pa
	data, err = cpu.pReadW(pa)
	return
}

func (cpu *Cpu) readMB(va VA) (data uint16, err error) {
	pa, err := cpu.relocW(va)
	if err != nil {
		return
	}
	if message, hit := cpu.testBreak(va, pa,
		BREAK_READ_VIRTUAL|BREAK_WRITE_VIRTUAL,
		BREAK_READ_PHYSICAL|BREAK_WRITE_PHYSICAL); hit {
		err = cpu.abortBreak(message)
		return
	}
	cpu.lastVA, cpu.lastPA = va, pa
	data, err = cpu.pReadB(pa)
	return
}

// readCW is the trap sequence read. A breakpoint match is reported
// after the sequence completes.
func (cpu *Cpu) readCW(va VA) (data uint16, err error) {
	err = cpu.oddCheck(va)
	if err != nil {
		return
	}
	pa, err := cpu.relocR(va)
	if err != nil {
		return
	}
	if message, hit := cpu.testBreak(va, pa, BREAK_READ_VIRTUAL, BREAK_READ_PHYSICAL); hit {
		cpu.pendBreak(message)
	}
	cpu.lastVA, cpu.lastPA = va, pa
	data, err = cpu.pReadW(pa)
	return
}

func (cpu *Cpu) writeW(data uint16, va VA) (err error) {
	err = cpu.oddCheck(va)
	if err != nil {
		return
	}
	pa, err := cpu.relocW(va)
	if err != nil {
		return
	}
	if message, hit := cpu.testBreak(va, pa, BREAK_WRITE_VIRTUAL, BREAK_WRITE_PHYSICAL); hit {
		err = cpu.abortBreak(message)
		return
	}
	cpu.lastVA, cpu.lastPA = va, pa
	err = cpu.pWriteW(data, pa)
	return
}

func (cpu *Cpu) writeB(data uint16, va VA) (err error) {
	pa, err := cpu.relocW(va)
	if err != nil {
		return
	}
	if message, hit := cpu.testBreak(va, pa, BREAK_WRITE_VIRTUAL, BREAK_WRITE_PHYSICAL); hit {
		err = cpu.abortBreak(message)
		return
	}
	cpu.lastVA, cpu.lastPA = va, pa
	err = cpu.pWriteB(data, pa)
	return
}

// writeCW is the trap sequence write. A breakpoint match is reported
// after the sequence completes.
func (cpu *Cpu) writeCW(data uint16, va VA) (err error) {
	err = cpu.oddCheck(va)
	if err != nil {
		return
	}
	pa, err := cpu.relocW(va)
	if err != nil {
		return
	}
	if message, hit := cpu.testBreak(va, pa, BREAK_WRITE_VIRTUAL, BREAK_WRITE_PHYSICAL); hit {
		cpu.pendBreak(message)
	}
	cpu.lastVA, cpu.lastPA = va, pa
	err = cpu.pWriteW(data, pa)
	return
}

// ioAbort converts an I/O page failure into a bus timeout.
func (cpu *Cpu) ioAbort() error {
	cpu.setCPUERR(CPUERR_TMO)
	return cpu.abort(TRAP_NXM.Mask())
}

func (cpu *Cpu) nxmAbort() error {
	cpu.setCPUERR(CPUERR_NXM)
	return cpu.abort(TRAP_NXM.Mask())
}

func (cpu *Cpu) pReadW(pa uint32) (data uint16, err error) {
	if pa < cpu.memSize {
		data = cpu.Memory.ReadWord(pa)
		return
	}
	if pa < io.IOPAGE_BASE {
		err = cpu.nxmAbort()
		return
	}
	data, err = cpu.IoPage.ReadIo(pa, io.READ)
	if err != nil {
		err = cpu.ioAbort()
	}
	return
}

func (cpu *Cpu) pReadB(pa uint32) (data uint16, err error) {
	data, err = cpu.pReadW(pa &^ 1)
	if (pa & 1) != 0 {
		data >>= 8
	}
	data &= 0377
	return
}

func (cpu *Cpu) pWriteW(data uint16, pa uint32) (err error) {
	if pa < cpu.memSize {
		cpu.Memory.WriteWord(pa, data)
		return
	}
	if pa < io.IOPAGE_BASE {
		err = cpu.nxmAbort()
		return
	}
	err = cpu.IoPage.WriteIo(pa, data, io.WRITE)
	if err != nil {
		err = cpu.ioAbort()
	}
	return
}

func (cpu *Cpu) pWriteB(data uint16, pa uint32) (err error) {
	if pa < cpu.memSize {
		cpu.Memory.WriteByte(pa, uint8(data))
		return
	}
	if pa < io.IOPAGE_BASE {
		err = cpu.nxmAbort()
		return
	}
	err = cpu.IoPage.WriteIo(pa, data&0377, io.WRITEB)
	if err != nil {
		err = cpu.ioAbort()
	}
	return
}
