// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"context"
	"errors"
	"fmt"
	stdio "io"
	"iter"
	"log"
	"maps"
	"strings"
	"time"

	"github.com/ezrec/pdp11/cpu"
	"github.com/ezrec/pdp11/internal"
	"github.com/ezrec/pdp11/io"
)

const (
	DEFAULT_MODEL  = cpu.MODEL_1170
	DEFAULT_MEMORY = uint32(01000000) // 256K bytes, or the model limit if less.
)

var _emulator_defines = map[string]string{
	"DEFAULT_MEMORY": fmt.Sprintf("0o%o", DEFAULT_MEMORY),
}

func init() {
	for tc := cpu.TRAP_RED; tc <= cpu.TRAP_INT; tc++ {
		name := "TRAP_" + strings.ToUpper(tc.String())
		_emulator_defines[name] = fmt.Sprintf("0o%o", uint32(tc.Mask()))
	}
}

// Config describes the machine to build.
type Config struct {
	Cpu    cpu.Config
	Memory uint32 // Memory size in bytes; zero selects the default.
}

// Emulator state. CPU + memory + I/O page devices.
type Emulator struct {
	Verbose  bool // If set, enables verbose logging.
	*cpu.Cpu      // Reference to the CPU simulation.

	Ram      *io.Memory   // Physical memory.
	Page     *io.Page     // I/O page dispatcher.
	Clock    io.Clock     // KW11-L line clock.
	Terminal io.Terminal  // DL11 console terminal.
	Breaks   *Breakpoints // Breakpoint table.
}

// memorySize returns the memory size to use for a model.
func memorySize(config Config) (size uint32, err error) {
	info, err := cpu.LookupModel(config.Cpu.Model)
	if err != nil {
		return
	}

	limit := info.MaxMemory - io.IOPAGE_SIZE
	size = config.Memory
	if size == 0 {
		size = min(DEFAULT_MEMORY, limit)
	}
	return
}

// NewEmulator creates a new emulator, and resets it.
func NewEmulator(config Config) (emu *Emulator, err error) {
	size, err := memorySize(config)
	if err != nil {
		return
	}

	ram, err := io.NewMemory(size)
	if err != nil {
		err = errors.Join(ErrMemoryConfig, err)
		return
	}

	page := &io.Page{}
	proc, err := cpu.NewCpu(config.Cpu, ram, page)
	if err != nil {
		return
	}

	emu = &Emulator{
		Cpu:    proc,
		Ram:    ram,
		Page:   page,
		Breaks: &Breakpoints{},
	}

	err = emu.attach()
	if err != nil {
		emu = nil
		return
	}

	emu.Cpu.Events = emu.events
	emu.Reset()

	return
}

// attach places the processor registers and the devices on the I/O page.
func (emu *Emulator) attach() (err error) {
	err = emu.Cpu.AttachTo(emu.Page)
	if err != nil {
		return
	}

	emu.Clock.Interrupt, err = emu.Cpu.NewInterrupt(io.CLOCK_LEVEL, io.CLOCK_VECTOR)
	if err != nil {
		return
	}
	err = emu.Page.Attach("clock", io.CLOCK_CSR, 2, &emu.Clock)
	if err != nil {
		return
	}

	emu.Terminal.RxInterrupt, err = emu.Cpu.NewInterrupt(io.TERMINAL_LEVEL, io.TERMINAL_RX_VECTOR)
	if err != nil {
		return
	}
	emu.Terminal.TxInterrupt, err = emu.Cpu.NewInterrupt(io.TERMINAL_LEVEL, io.TERMINAL_TX_VECTOR)
	if err != nil {
		return
	}
	err = emu.Page.Attach("terminal", io.TERMINAL_BASE, io.TERMINAL_SIZE, &emu.Terminal)
	return
}

// Defines returns an iterator over all of the defines. Emulator
// defines shadow those of the devices.
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.ConcatDefines(maps.All(_emulator_defines),
		emu.Cpu.Defines(),
		emu.Clock.Defines(),
		emu.Terminal.Defines(),
	)
}

// Close the emulator
func (emu *Emulator) Close() (err error) {
	err = emu.Terminal.Close()
	return
}

// Reset the processor and all devices.
func (emu *Emulator) Reset() {
	emu.sync()
	emu.Page.Reset()
	emu.Cpu.Reset()
}

// Load copies a little-endian word image into memory at pa.
func (emu *Emulator) Load(pa uint32, image stdio.Reader) (words int, err error) {
	words, err = emu.Ram.Load(pa, image)
	if err != nil {
		err = errors.Join(ErrLoad, err)
	}
	if emu.Verbose {
		log.Printf("emulator: loaded %d words at %08o", words, pa)
	}
	return
}

// Ticks returns the instructions executed since a reset.
func (emu *Emulator) Ticks() uint64 {
	return emu.Cpu.Ticks
}

// sync pushes the emulator settings down to the components.
func (emu *Emulator) sync() {
	emu.Cpu.Verbose = emu.Verbose
	emu.Page.Verbose = emu.Verbose
	emu.Clock.Verbose = emu.Verbose
	emu.Terminal.Verbose = emu.Verbose

	emu.Cpu.Breakpoints = nil
	if emu.Breaks.Len() != 0 {
		emu.Cpu.Breakpoints = emu.Breaks
	}
}

// events services the devices from the instruction loop.
func (emu *Emulator) events() (err error) {
	emu.Clock.Service(time.Now())
	emu.Terminal.Poll()
	return
}

// Step performs a single step of the emulator: one instruction, or one
// trap or interrupt sequence.
func (emu *Emulator) Step() (err error) {
	emu.sync()
	err = emu.Cpu.Step()
	return
}

// Run the emulator until a stop condition, or the cancellation of ctx.
func (emu *Emulator) Run(ctx context.Context) (err error) {
	emu.sync()
	emu.Terminal.Start()

	err = emu.Cpu.Run(ctx)
	if emu.Verbose {
		log.Printf("emulator: stopped after %d instructions: %v", emu.Ticks(), err)
	}
	return
}
