package emulator

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/pdp11/cpu"
	"github.com/ezrec/pdp11/io"
)

func newTestEmulator(t *testing.T, config Config) (emu *Emulator) {
	emu, err := NewEmulator(config)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { emu.Close() })
	return
}

func TestEmulator(t *testing.T) {
	assert := assert.New(t)

	emu := newTestEmulator(t, Config{Cpu: cpu.Config{Model: DEFAULT_MODEL}})

	assert.False(emu.Verbose)
	assert.NotNil(emu.Cpu)
	assert.Equal(cpu.MODEL_1170, emu.Model.Model)
	assert.Equal(DEFAULT_MEMORY, emu.Ram.Size())
	assert.Equal(uint64(0), emu.Ticks())
	assert.Equal(0, emu.Breaks.Len())

	devices := map[string]bool{}
	for name := range emu.Page.Devices() {
		devices[name] = true
	}
	for _, name := range []string{"cpu", "switch", "mmr", "clock", "terminal"} {
		assert.True(devices[name], name)
	}
}

func TestEmulatorMemory(t *testing.T) {
	table := [...]struct {
		model  cpu.Model
		memory uint32
		size   uint32
	}{
		{cpu.MODEL_1103, 0, 0160000},
		{cpu.MODEL_1170, 0, DEFAULT_MEMORY},
		{cpu.MODEL_1170, 040000, 040000},
	}

	for _, entry := range table {
		assert := assert.New(t)

		emu := newTestEmulator(t, Config{Cpu: cpu.Config{Model: entry.model}, Memory: entry.memory})
		assert.Equal(entry.size, emu.Ram.Size(), entry.model.String())
	}
}

func TestEmulatorDefines(t *testing.T) {
	assert := assert.New(t)

	emu := newTestEmulator(t, Config{Cpu: cpu.Config{Model: DEFAULT_MODEL}})

	defines := map[string]string{}
	for key, value := range emu.Defines() {
		defines[key] = value
	}

	assert.Equal("0o1000000", defines["DEFAULT_MEMORY"])
	assert.Equal("0o17777546", defines["CLOCK_CSR"])
	assert.Equal("0o17777566", defines["TERMINAL_XBUF"])
	assert.Contains(defines, "TRAP_BPT")
}

func TestEmulatorTerminal(t *testing.T) {
	assert := assert.New(t)

	emu := newTestEmulator(t, Config{Cpu: cpu.Config{Model: DEFAULT_MODEL}})
	output := &bytes.Buffer{}
	emu.Terminal.Output = output

	// MOVB #101,@#177566 ; HALT
	for n, word := range []uint16{0112737, 0000101, 0177566, 0000000} {
		assert.NoError(emu.Deposit(uint32(01000+n*2), word, 0))
	}
	emu.R[cpu.REG_PC] = 01000

	err := emu.Run(t.Context())
	assert.True(errors.Is(err, cpu.ErrHalt))
	assert.Equal("A", output.String())
	assert.Equal(uint64(2), emu.Ticks())
}

func TestEmulatorClockInterrupt(t *testing.T) {
	assert := assert.New(t)

	emu := newTestEmulator(t, Config{Cpu: cpu.Config{Model: DEFAULT_MODEL}})

	// Clock vector to 02000, which halts.
	assert.NoError(emu.Deposit(uint32(io.CLOCK_VECTOR), 02000, 0))
	assert.NoError(emu.Deposit(uint32(io.CLOCK_VECTOR)+2, 0340, 0))
	assert.NoError(emu.Deposit(02000, 0000000, 0))
	// BR .+0
	assert.NoError(emu.Deposit(01000, 0000777, 0))
	assert.NoError(emu.Deposit(io.CLOCK_CSR, io.CLOCK_IE, 0))
	emu.R[cpu.REG_PC] = 01000
	emu.R[cpu.REG_SP] = 0700

	assert.NoError(emu.Step())
	assert.Equal(uint16(01000), emu.PC())

	emu.Clock.Tick()
	assert.NoError(emu.Step())
	assert.Equal(uint16(02000), emu.PC())
	assert.Equal(uint16(0674), emu.SP())

	err := emu.Step()
	assert.True(errors.Is(err, cpu.ErrHalt))
}

func TestEmulatorBreakpoint(t *testing.T) {
	assert := assert.New(t)

	emu := newTestEmulator(t, Config{Cpu: cpu.Config{Model: DEFAULT_MODEL}})

	// INC R0 ; INC R0 ; HALT
	for n, word := range []uint16{0005200, 0005200, 0000000} {
		assert.NoError(emu.Deposit(uint32(01000+n*2), word, 0))
	}
	emu.R[cpu.REG_PC] = 01000
	emu.Breaks.Set(01002, cpu.BREAK_EXEC_VIRTUAL, "second")

	err := emu.Run(t.Context())
	var brk *cpu.ErrBreakpoint
	assert.True(errors.As(err, &brk))
	assert.Equal("second", brk.Message)
	assert.Equal(uint16(01002), emu.PC())
	assert.Equal(uint16(1), emu.R[0])

	// Resuming passes over the breakpoint that stopped the run.
	err = emu.Run(t.Context())
	assert.True(errors.Is(err, cpu.ErrHalt))
	assert.Equal(uint16(2), emu.R[0])

	emu.R[cpu.REG_PC] = 01000
	err = emu.Run(t.Context())
	assert.True(errors.As(err, &brk))
	assert.Equal(uint16(01002), emu.PC())

	for addr, bp := range emu.Breaks.All() {
		assert.Equal(uint32(01002), addr)
		assert.Equal(2, bp.Hits)
	}

	emu.Breaks.Clear(01002, cpu.BREAK_EXEC_VIRTUAL)
	assert.Equal(0, emu.Breaks.Len())
}

func TestEmulatorLoad(t *testing.T) {
	assert := assert.New(t)

	emu := newTestEmulator(t, Config{Cpu: cpu.Config{Model: DEFAULT_MODEL}})

	words, err := emu.Load(01000, bytes.NewReader([]byte{0001, 0002, 0003, 0004}))
	assert.NoError(err)
	assert.Equal(2, words)

	data, err := emu.Examine(01002, 0)
	assert.NoError(err)
	assert.Equal(uint16(0x0403), data)
}

func TestEmulatorReset(t *testing.T) {
	assert := assert.New(t)

	emu := newTestEmulator(t, Config{Cpu: cpu.Config{Model: DEFAULT_MODEL}})

	assert.NoError(emu.Deposit(io.CLOCK_CSR, io.CLOCK_IE, 0))
	emu.SetPSW(cpu.PSW(0340))

	emu.Reset()
	assert.Equal(io.CLOCK_DONE, emu.Clock.Csr)
	assert.Equal(cpu.PSW(0), emu.PSW())
}
