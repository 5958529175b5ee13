// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"log"
)

// VA is a tagged virtual address: the 16-bit offset, the data space
// flag, and the mode.
type VA uint32

const (
	VA_DS     = VA(1 << 16) // Data space
	VA_V_MODE = 17

	VA_DF  = uint32(0017777) // Displacement in page
	VA_BN  = uint32(0017700) // Block number
	VA_APF = 13
)

// Offset returns the 16-bit virtual address.
func (va VA) Offset() uint16 {
	return uint16(va)
}

// apr returns the APR table index of the address.
func (va VA) apr() int {
	return int(va>>VA_APF) & 077
}

// MMR0 bits.
const (
	MMR0_MME   = uint16(0000001) // Relocation enable
	MMR0_V_PG  = 1
	MMR0_PAGE  = uint16(0000176) // Page, space, and mode of abort
	MMR0_IC    = uint16(0000200) // Instruction complete
	MMR0_MAINT = uint16(0000400)
	MMR0_TENB  = uint16(0001000) // Trap enable
	MMR0_TRAP  = uint16(0010000) // MMU trap flag
	MMR0_RO    = uint16(0020000) // Read only abort
	MMR0_PL    = uint16(0040000) // Page length abort
	MMR0_NR    = uint16(0100000) // Non-resident abort
	MMR0_FREEZ = uint16(0160000) // Registers frozen while set
	MMR0_WR    = uint16(0171401) // Writable bits
)

// MMR3 bits.
const (
	MMR3_UDS  = uint16(001) // User data space
	MMR3_SDS  = uint16(002) // Supervisor data space
	MMR3_KDS  = uint16(004) // Kernel data space
	MMR3_CSM  = uint16(010) // CSM enable
	MMR3_M22E = uint16(020) // 22-bit mapping
	MMR3_BME  = uint16(040) // Unibus map enable
)

// PDR fields; the PDR is the low half, and the PAR the high half, of
// each APR entry.
const (
	PDR_ACF = uint32(0000007) // Access control
	PDR_PRD = uint32(0000003) // Readable if 2
	PDR_ED  = uint32(0000010) // Expand down
	PDR_W   = uint32(0000100) // Written
	PDR_A   = uint32(0000200) // Accessed
	PDR_PLF = uint32(0077400) // Page length
	PDR_NOC = uint32(0100000) // No cache

	APR_V_PAR = 16
)

var dsMask = [4]uint16{MMR3_KDS, MMR3_SDS, 0, MMR3_UDS}

// calcIS returns the instruction space tag for a mode.
func calcIS(mode Mode) VA {
	return VA(mode&3) << VA_V_MODE
}

// calcDS returns the data space tag for a mode.
func (cpu *Cpu) calcDS(mode Mode) VA {
	va := calcIS(mode)
	if (cpu.mmr3 & dsMask[mode&3]) != 0 {
		va |= VA_DS
	}
	return va
}

// calcSpaces recomputes the address space tags of the current mode.
func (cpu *Cpu) calcSpaces() {
	cpu.isenable = calcIS(cpu.mode)
	cpu.dsenable = cpu.calcDS(cpu.mode)
}

// updateMM returns true if MMR0-2 are not frozen.
func (cpu *Cpu) updateMM() bool {
	return (cpu.mmr0 & MMR0_FREEZ) == 0
}

// recordMod records a register modification for MMR1 and for the
// breakpoint replay.
func (cpu *Cpu) recordMod(mod uint16, mmr1 bool) {
	if cpu.regMods != 0 {
		cpu.regMods = (mod << 8) | cpu.regMods
	} else {
		cpu.regMods = mod
	}
	if mmr1 && cpu.updateMM() {
		cpu.mmr1 = cpu.regMods
	}
}

// plfFail returns true if va lies beyond the page length of the entry.
func plfFail(va VA, apr uint32) bool {
	dbn := uint32(va) & VA_BN
	plf := (apr & PDR_PLF) >> 2
	if (apr & PDR_ED) != 0 {
		return dbn < plf
	}
	return dbn > plf
}

// physical forms the physical address of va through an APR entry.
func (cpu *Cpu) physical(va VA, apr uint32) (pa uint32) {
	pa = ((uint32(va) & VA_DF) + ((apr >> 10) & 017777700)) & 017777777
	if !cpu.Mapping22() {
		pa &= 0777777
		if pa >= 0760000 {
			pa |= 017000000
		}
	}
	return
}

// Mapping22 returns true if relocation forms 22-bit physical addresses.
// Without the 22BIT option 18-bit addresses are formed, whatever MMR3
// holds.
func (cpu *Cpu) Mapping22() bool {
	return (cpu.mmr3&MMR3_M22E) != 0 && cpu.option(OPTION_22BIT)
}

// UnibusMap returns true if Unibus map relocation of DMA is enabled.
func (cpu *Cpu) UnibusMap() bool {
	return (cpu.mmr3&MMR3_BME) != 0 && cpu.option(OPTION_UBM)
}

// unmapped returns the physical address of va with relocation off.
func unmapped(va VA) (pa uint32) {
	pa = uint32(va.Offset())
	if pa >= 0160000 {
		pa |= 017600000
	}
	return
}

// relocAbort records the failing page in MMR0, and aborts with an MMU
// trap.
func (cpu *Cpu) relocAbort(err uint16, idx int) error {
	if cpu.updateMM() {
		cpu.mmr0 = (cpu.mmr0 &^ MMR0_PAGE) | (uint16(idx) << MMR0_V_PG)
		cpu.mmr0 |= err
	}
	if cpu.Verbose {
		log.Printf("mmu: abort %06o apr %02o mmr0 %06o", err, idx, cpu.mmr0)
	}
	return cpu.abort(TRAP_MME.Mask())
}

// relocTrap handles the trap-then-continue access classes. The trap
// flag is always set; the trap itself is requested only by the first
// flagged access after the flag is cleared.
func (cpu *Cpu) relocTrap(idx int) {
	old := cpu.mmr0
	cpu.apr[idx] |= PDR_A
	cpu.mmr0 |= MMR0_TRAP
	if (cpu.mmr0 & MMR0_TENB) != 0 {
		if cpu.updateMM() {
			cpu.mmr0 = (cpu.mmr0 &^ MMR0_PAGE) | (uint16(idx) << MMR0_V_PG)
		}
		if (old & MMR0_TRAP) == 0 {
			cpu.trapReq |= TRAP_MME.Mask()
		}
	}
}

// relocR relocates a read reference.
func (cpu *Cpu) relocR(va VA) (pa uint32, err error) {
	if (cpu.mmr0 & MMR0_MME) == 0 {
		pa = unmapped(va)
		return
	}

	idx := va.apr()
	apr := cpu.apr[idx]
	if (apr & PDR_PRD) != 2 {
		switch apr & PDR_ACF {
		case 1, 4:
			if cpu.Model.Has(FEATURE_MMTR) {
				cpu.relocTrap(idx)
				break
			}
			fallthrough
		case 0, 3, 7:
			code := MMR0_NR
			if plfFail(va, apr) {
				code |= MMR0_PL
			}
			err = cpu.relocAbort(code, idx)
			return
		}
	}

	if plfFail(va, apr) {
		err = cpu.relocAbort(MMR0_PL, idx)
		return
	}

	pa = cpu.physical(va, apr)
	return
}

// relocW relocates a write or read-modify-write reference.
func (cpu *Cpu) relocW(va VA) (pa uint32, err error) {
	if (cpu.mmr0 & MMR0_MME) == 0 {
		pa = unmapped(va)
		return
	}

	idx := va.apr()
	apr := cpu.apr[idx]
	if (apr & PDR_ACF) != 6 {
		var code uint16
		switch apr & PDR_ACF {
		case 4, 5:
			if cpu.Model.Has(FEATURE_MMTR) {
				cpu.relocTrap(idx)
				break
			}
			code = MMR0_NR
		case 0, 3, 7:
			code = MMR0_NR
		case 1, 2:
			code = MMR0_RO
		}
		if code != 0 {
			if plfFail(va, apr) {
				code |= MMR0_PL
			}
			err = cpu.relocAbort(code, idx)
			return
		}
		apr = cpu.apr[idx]
	}

	if plfFail(va, apr) {
		err = cpu.relocAbort(MMR0_PL, idx)
		return
	}

	cpu.apr[idx] = apr | PDR_W
	pa = cpu.physical(va, apr)
	return
}

// relocC relocates a console reference. No status is changed; ok is
// false if the address is not mapped.
func (cpu *Cpu) relocC(addr uint16, sw Switch) (pa uint32, ok bool) {
	va := VA(addr)
	if (cpu.mmr0 & MMR0_MME) == 0 {
		pa = unmapped(va)
		ok = true
		return
	}

	var mode Mode
	switch {
	case (sw & SWITCH_KERNEL) != 0:
		mode = MODE_KERNEL
	case (sw & SWITCH_SUPERVISOR) != 0:
		mode = MODE_SUPERVISOR
	case (sw & SWITCH_USER) != 0:
		mode = MODE_USER
	case (sw & SWITCH_PREVIOUS) != 0:
		mode = cpu.pm
	default:
		mode = cpu.mode
	}
	if (sw & SWITCH_DATA) != 0 {
		va |= cpu.calcDS(mode)
	} else {
		va |= calcIS(mode)
	}

	apr := cpu.apr[va.apr()]
	if (apr&PDR_PRD) == 0 || plfFail(va, apr) {
		return
	}

	pa = cpu.physical(va, apr)
	ok = true
	return
}

// cleanMMR1 returns MMR1 as the model reports it.
func (cpu *Cpu) cleanMMR1() uint16 {
	if !cpu.Model.Has(FEATURE_SID) {
		return 0
	}
	mmr1 := cpu.mmr1
	if cpu.Model.Has(FEATURE_MMR1PC) {
		// PC increments are not reported.
		if (mmr1 >> 8) == 027 {
			mmr1 &= 0377
		}
		if (mmr1 & 0377) == 027 {
			mmr1 >>= 8
		}
	}
	return mmr1
}
