package cpu

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/ezrec/pdp11/io"
)

// Switch selects the address space of a console reference.
type Switch uint8

const (
	SWITCH_VIRTUAL    = Switch(1 << iota) // Address is virtual.
	SWITCH_KERNEL                         // Kernel mode mapping.
	SWITCH_SUPERVISOR                     // Supervisor mode mapping.
	SWITCH_USER                           // User mode mapping.
	SWITCH_PREVIOUS                       // Previous mode mapping.
	SWITCH_DATA                           // Data space.
)

// physicalOf translates a console address.
func (cpu *Cpu) physicalOf(addr uint32, sw Switch) (pa uint32, err error) {
	if (sw & SWITCH_VIRTUAL) == 0 {
		pa = addr
		return
	}

	pa, ok := cpu.relocC(uint16(addr), sw)
	if !ok {
		err = ErrRelocation
	}
	return
}

// Examine reads a memory word for the console. No processor state,
// MMU status, or breakpoint is affected.
func (cpu *Cpu) Examine(addr uint32, sw Switch) (data uint16, err error) {
	pa, err := cpu.physicalOf(addr, sw)
	if err != nil {
		return
	}

	pa &^= 1
	switch {
	case pa < cpu.memSize:
		data = cpu.Memory.ReadWord(pa)
	case pa >= io.IOPAGE_BASE && pa < io.IOPAGE_BASE+io.IOPAGE_SIZE:
		data, err = cpu.IoPage.ReadIo(pa, io.READC)
		if err != nil {
			err = ErrNonExistent
		}
	default:
		err = ErrNonExistent
	}

	return
}

// Deposit writes a memory word for the console.
func (cpu *Cpu) Deposit(addr uint32, data uint16, sw Switch) (err error) {
	pa, err := cpu.physicalOf(addr, sw)
	if err != nil {
		return
	}

	pa &^= 1
	switch {
	case pa < cpu.memSize:
		cpu.Memory.WriteWord(pa, data)
	case pa >= io.IOPAGE_BASE && pa < io.IOPAGE_BASE+io.IOPAGE_SIZE:
		err = cpu.IoPage.WriteIo(pa, data, io.WRITEC)
		if err != nil {
			err = ErrNonExistent
		}
	default:
		err = ErrNonExistent
	}

	return
}

// register is a console visible processor register.
type register struct {
	get func(cpu *Cpu) uint16
	set func(cpu *Cpu, value uint16)
}

var _registers = map[string]register{
	"SP": {
		get: func(cpu *Cpu) uint16 { return cpu.R[REG_SP] },
		set: func(cpu *Cpu, value uint16) { cpu.R[REG_SP] = value },
	},
	"PC": {
		get: func(cpu *Cpu) uint16 { return cpu.R[REG_PC] },
		set: func(cpu *Cpu, value uint16) { cpu.R[REG_PC] = value },
	},
	"PSW": {
		get: func(cpu *Cpu) uint16 { return cpu.getPSW() },
		set: func(cpu *Cpu, value uint16) { cpu.putPSW(value, false) },
	},
	"PIRQ": {
		get: func(cpu *Cpu) uint16 { return cpu.pirq },
		set: func(cpu *Cpu, value uint16) { cpu.putPIRQ(value) },
	},
	"STKLIM": {
		get: func(cpu *Cpu) uint16 { return cpu.stklim },
		set: func(cpu *Cpu, value uint16) { cpu.stklim = value & 0177400 },
	},
	"CPUERR": {
		get: func(cpu *Cpu) uint16 { return cpu.cpuerr },
		set: func(cpu *Cpu, value uint16) { cpu.cpuerr = value & CPUERR_IMP },
	},
	"MMR0": {
		get: func(cpu *Cpu) uint16 { return cpu.mmr0 },
		set: func(cpu *Cpu, value uint16) { cpu.mmr0 = value & cpu.Model.Mm0Mask },
	},
	"MMR1": {
		get: func(cpu *Cpu) uint16 { return cpu.mmr1 },
		set: func(cpu *Cpu, value uint16) { cpu.mmr1 = value },
	},
	"MMR2": {
		get: func(cpu *Cpu) uint16 { return cpu.mmr2 },
		set: func(cpu *Cpu, value uint16) { cpu.mmr2 = value },
	},
	"MMR3": {
		get: func(cpu *Cpu) uint16 { return cpu.mmr3 },
		set: func(cpu *Cpu, value uint16) {
			cpu.mmr3 = value & cpu.Model.Mm3Mask
			cpu.calcSpaces()
		},
	},
	"SR": {
		get: func(cpu *Cpu) uint16 { return cpu.Switches },
		set: func(cpu *Cpu, value uint16) { cpu.Switches = value },
	},
	"DR": {
		get: func(cpu *Cpu) uint16 { return cpu.Display },
		set: func(cpu *Cpu, value uint16) { cpu.Display = value },
	},
}

func init() {
	for n := range 6 {
		_registers[fmt.Sprintf("R%d", n)] = register{
			get: func(cpu *Cpu) uint16 { return cpu.R[n] },
			set: func(cpu *Cpu, value uint16) { cpu.R[n] = value },
		}
		for set := range 2 {
			_registers[fmt.Sprintf("R%d%d", set, n)] = register{
				get: func(cpu *Cpu) uint16 { return cpu.General(set, n) },
				set: func(cpu *Cpu, value uint16) { cpu.SetGeneral(set, n, value) },
			}
		}
	}

	for _, mode := range []Mode{MODE_KERNEL, MODE_SUPERVISOR, MODE_USER} {
		prefix := strings.ToUpper(mode.String()[:1])
		_registers[prefix+"SP"] = register{
			get: func(cpu *Cpu) uint16 { return cpu.StackPointer(mode) },
			set: func(cpu *Cpu, value uint16) { cpu.SetStackPointer(mode, value) },
		}
		for space, letter := range []string{"I", "D"} {
			for page := range 8 {
				idx := int(mode)<<4 | space<<3 | page
				_registers[fmt.Sprintf("%s%sPDR%d", prefix, letter, page)] = register{
					get: func(cpu *Cpu) uint16 { return uint16(cpu.apr[idx]) },
					set: func(cpu *Cpu, value uint16) {
						cpu.apr[idx] = (cpu.apr[idx] &^ 0177777) | uint32(value&cpu.Model.PdrMask)
					},
				}
				_registers[fmt.Sprintf("%s%sPAR%d", prefix, letter, page)] = register{
					get: func(cpu *Cpu) uint16 { return uint16(cpu.apr[idx] >> APR_V_PAR) },
					set: func(cpu *Cpu, value uint16) {
						cpu.apr[idx] = (cpu.apr[idx] & 0177777) | uint32(value&cpu.Model.ParMask)<<APR_V_PAR
					},
				}
			}
		}
	}
}

// RegisterNames returns the sorted names of the console registers.
func RegisterNames() []string {
	return slices.Sorted(maps.Keys(_registers))
}

// ExamineRegister reads a processor register by name.
func (cpu *Cpu) ExamineRegister(name string) (value uint16, err error) {
	reg, ok := _registers[strings.ToUpper(name)]
	if !ok {
		err = ErrRegisterName
		return
	}

	value = reg.get(cpu)
	return
}

// DepositRegister writes a processor register by name.
func (cpu *Cpu) DepositRegister(name string, value uint16) (err error) {
	reg, ok := _registers[strings.ToUpper(name)]
	if !ok {
		err = ErrRegisterName
		return
	}

	reg.set(cpu, value)
	return
}
