package cpu

import (
	"github.com/ezrec/pdp11/io"
)

// I/O page addresses of the processor registers.
const (
	SYSREG_CPUERR = uint32(017777766)
	SYSREG_PIRQ   = uint32(017777772)
	SYSREG_STKLIM = uint32(017777774)
	SYSREG_PSW    = uint32(017777776)
	SYSREG_SR     = uint32(017777570) // Switch register; display register on write.
	SYSREG_MMR0   = uint32(017777572)
	SYSREG_MMR1   = uint32(017777574)
	SYSREG_MMR2   = uint32(017777576)
	SYSREG_MMR3   = uint32(017772516)

	SYSREG_APR_SUPERVISOR = uint32(017772200)
	SYSREG_APR_KERNEL     = uint32(017772300)
	SYSREG_APR_USER       = uint32(017777600)
	SYSREG_APR_SIZE       = uint32(0100)
)

// sysreg is a block of processor registers on the I/O page.
type sysreg struct {
	read  func(pa uint32, access io.Access) (data uint16, err error)
	write func(pa uint32, data uint16, access io.Access) (err error)
}

var _ io.Device = (*sysreg)(nil)

func (sr *sysreg) ReadIo(pa uint32, access io.Access) (data uint16, err error) {
	return sr.read(pa&^1, access)
}

func (sr *sysreg) WriteIo(pa uint32, data uint16, access io.Access) (err error) {
	return sr.write(pa, data, access)
}

func (sr *sysreg) Reset() {}

// Attacher is an I/O page that devices can be attached to.
type Attacher interface {
	Attach(name string, base uint32, size uint32, device io.Device) (err error)
}

// AttachTo attaches the processor registers the model implements to an
// I/O page.
func (cpu *Cpu) AttachTo(page Attacher) (err error) {
	blocks := []struct {
		name string
		base uint32
		size uint32
		dev  *sysreg
		ok   bool
	}{
		{"cpu", SYSREG_CPUERR, 012, &sysreg{cpu.readControl, cpu.writeControl}, true},
		{"switch", SYSREG_SR, 2, &sysreg{cpu.readSwitch, cpu.writeSwitch}, true},
		{"mmr", SYSREG_MMR0, 6, &sysreg{cpu.readMMR, cpu.writeMMR}, cpu.option(OPTION_MMU)},
		{"mmr3", SYSREG_MMR3, 2, &sysreg{cpu.readMMR, cpu.writeMMR}, cpu.option(OPTION_MMU) && cpu.Model.Mm3Mask != 0},
		{"apr-supervisor", SYSREG_APR_SUPERVISOR, SYSREG_APR_SIZE, &sysreg{cpu.readAPR, cpu.writeAPR}, cpu.option(OPTION_MMU)},
		{"apr-kernel", SYSREG_APR_KERNEL, SYSREG_APR_SIZE, &sysreg{cpu.readAPR, cpu.writeAPR}, cpu.option(OPTION_MMU)},
		{"apr-user", SYSREG_APR_USER, SYSREG_APR_SIZE, &sysreg{cpu.readAPR, cpu.writeAPR}, cpu.option(OPTION_MMU)},
	}

	for _, block := range blocks {
		if !block.ok {
			continue
		}
		err = page.Attach(block.name, block.base, block.size, block.dev)
		if err != nil {
			return
		}
	}

	return
}

// getPSW assembles the processor status word.
func (cpu *Cpu) getPSW() uint16 {
	return uint16(cpu.mode)<<PSW_V_CM |
		uint16(cpu.pm)<<PSW_V_PM |
		uint16(cpu.set)<<PSW_V_RS |
		bit(cpu.fpd)<<8 |
		uint16(cpu.ipl)<<PSW_V_IPL |
		bit(cpu.tbit)<<4 |
		cpu.cc.Word()
}

// putPSW loads the processor status word, and switches the register set
// and stack pointer to match. If prot is set, the current mode, previous
// mode, and register set can only be raised, and the priority level is
// not changed.
func (cpu *Cpu) putPSW(value uint16, prot bool) {
	psw := PSW(value & cpu.Model.PswMask)

	cm, pm, rs := psw.CM(), psw.PM(), psw.RS()
	if prot {
		cm |= cpu.mode
		pm |= cpu.pm
		rs |= cpu.set
	} else {
		cpu.ipl = psw.IPL()
	}

	cpu.pm = pm
	cpu.fpd = psw.FPD()
	cpu.tbit = psw.T()
	cpu.cc = psw.CC()
	cpu.switchRegisterSet(rs)
	cpu.switchMode(cm)
	cpu.calcSpaces()
}

func (cpu *Cpu) readControl(pa uint32, access io.Access) (data uint16, err error) {
	switch {
	case pa == SYSREG_PSW:
		data = cpu.getPSW()
	case pa == SYSREG_STKLIM && cpu.has(FEATURE_STKLR):
		data = cpu.stklim & 0177400
	case pa == SYSREG_PIRQ && cpu.has(FEATURE_PIRQ):
		data = cpu.pirq
	case pa == SYSREG_CPUERR && cpu.has(FEATURE_CPUERR):
		data = cpu.cpuerr & CPUERR_IMP
	default:
		err = io.ErrNxm
	}
	return
}

func (cpu *Cpu) writeControl(pa uint32, data uint16, access io.Access) (err error) {
	reg := pa &^ 1
	switch {
	case reg == SYSREG_PSW:
		curr := cpu.getPSW()
		if access == io.WRITEB {
			data = io.MergeByte(pa, curr, data)
		}
		if access != io.WRITEC && !cpu.has(FEATURE_EXPT) {
			data = (data &^ PSW_T) | (curr & PSW_T)
		}
		cpu.putPSW(data, false)
	case reg == SYSREG_STKLIM && cpu.has(FEATURE_STKLR):
		if access == io.WRITEB {
			data = io.MergeByte(pa, cpu.stklim, data)
		}
		cpu.stklim = data & 0177400
	case reg == SYSREG_PIRQ && cpu.has(FEATURE_PIRQ):
		if access == io.WRITEB {
			data = io.MergeByte(pa, cpu.pirq, data)
		}
		cpu.putPIRQ(data)
	case reg == SYSREG_CPUERR && cpu.has(FEATURE_CPUERR):
		cpu.cpuerr = 0
	default:
		err = io.ErrNxm
	}
	return
}

func (cpu *Cpu) readSwitch(pa uint32, access io.Access) (data uint16, err error) {
	data = cpu.Switches
	return
}

func (cpu *Cpu) writeSwitch(pa uint32, data uint16, access io.Access) (err error) {
	if access == io.WRITEB {
		data = io.MergeByte(pa, cpu.Display, data)
	}
	cpu.Display = data
	return
}

func (cpu *Cpu) readMMR(pa uint32, access io.Access) (data uint16, err error) {
	switch pa {
	case SYSREG_MMR0:
		data = cpu.mmr0 & cpu.Model.Mm0Mask
	case SYSREG_MMR1:
		data = cpu.cleanMMR1()
	case SYSREG_MMR2:
		data = cpu.mmr2
	case SYSREG_MMR3:
		data = cpu.mmr3 & cpu.Model.Mm3Mask
	}
	return
}

func (cpu *Cpu) writeMMR(pa uint32, data uint16, access io.Access) (err error) {
	switch pa &^ 1 {
	case SYSREG_MMR0:
		if access == io.WRITEB {
			data = io.MergeByte(pa, cpu.mmr0, data)
		}
		cpu.mmr0 = (cpu.mmr0 &^ MMR0_WR) | (data & MMR0_WR & cpu.Model.Mm0Mask)
	case SYSREG_MMR3:
		if access == io.WRITEB && (pa&1) != 0 {
			return
		}
		cpu.mmr3 = data & cpu.Model.Mm3Mask
		cpu.calcSpaces()
	}
	return
}

// aprIndex returns the APR table index of a PAR or PDR address, and
// whether it is the PAR.
func aprIndex(pa uint32) (idx int, par bool) {
	idx = int(pa>>1) & 017
	if (pa & 0100) == 0 {
		idx += 020
	}
	if (pa & 0400) != 0 {
		idx += 040
	}
	par = (pa & 040) != 0
	return
}

func (cpu *Cpu) readAPR(pa uint32, access io.Access) (data uint16, err error) {
	idx, par := aprIndex(pa)
	if par {
		data = uint16(cpu.apr[idx]>>APR_V_PAR) & cpu.Model.ParMask
	} else {
		data = uint16(cpu.apr[idx]) & cpu.Model.PdrMask
	}
	return
}

// writeAPR writes a PAR or PDR. Either write clears the accessed and
// written bits.
func (cpu *Cpu) writeAPR(pa uint32, data uint16, access io.Access) (err error) {
	idx, par := aprIndex(pa)
	apr := cpu.apr[idx]
	if par {
		if access == io.WRITEB {
			data = io.MergeByte(pa, uint16(apr>>APR_V_PAR), data)
		}
		apr = (apr & 0177777) | uint32(data&cpu.Model.ParMask)<<APR_V_PAR
	} else {
		if access == io.WRITEB {
			data = io.MergeByte(pa, uint16(apr), data)
		}
		apr = (apr &^ 0177777) | uint32(data&cpu.Model.PdrMask)
	}
	cpu.apr[idx] = apr &^ (PDR_A | PDR_W)
	return
}
