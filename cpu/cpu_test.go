package cpu

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/pdp11/io"
)

const testMemorySize = uint32(0160000)

func newTestCpu(t *testing.T, model Model) (cpu *Cpu, mem *io.Memory, page *io.Page) {
	mem, err := io.NewMemory(testMemorySize)
	if err != nil {
		t.Fatal(err)
	}

	page = &io.Page{}
	cpu, err = NewCpu(Config{Model: model}, mem, page)
	if err != nil {
		t.Fatal(err)
	}

	err = cpu.AttachTo(page)
	if err != nil {
		t.Fatal(err)
	}

	return
}

func loadWords(mem *io.Memory, pa uint32, words ...uint16) {
	for n, word := range words {
		mem.WriteWord(pa+uint32(n)*2, word)
	}
}

func TestNewCpu(t *testing.T) {
	assert := assert.New(t)

	small, _ := io.NewMemory(testMemorySize)
	full, _ := io.NewMemory(io.MEMORY_64K)

	table := [](struct {
		name   string
		config Config
		memory Memory
		err    error
	}){
		{"1170", Config{Model: MODEL_1170}, small, nil},
		{"1103", Config{Model: MODEL_1103}, small, nil},
		{"1103-full", Config{Model: MODEL_1103}, full, ErrMemorySize},
		{"1170-full", Config{Model: MODEL_1170}, full, nil},
		{"no-memory", Config{Model: MODEL_1170}, nil, ErrMemoryAbsent},
		{"bad-model", Config{Model: Model(99)}, small, ErrModel},
		{"disable-fpp", Config{Model: MODEL_1145, Disable: OPTION_FPP}, small, nil},
	}

	for _, entry := range table {
		cpu, err := NewCpu(entry.config, entry.memory, nil)
		assert.ErrorIs(err, entry.err, entry.name)
		if err != nil {
			continue
		}
		assert.Equal(entry.config.Model, cpu.Model.Model, entry.name)
		assert.Equal(uint16(0), cpu.PC(), entry.name)
	}

	_, err := NewCpu(Config{Model: MODEL_1103, Options: OPTION_MMU}, small, nil)
	var opt *ErrOption
	assert.True(errors.As(err, &opt))
	assert.Equal(MODEL_1103, opt.Model)
}

func TestReset(t *testing.T) {
	assert := assert.New(t)

	cpu, _, _ := newTestCpu(t, MODEL_T11)
	assert.Equal(7, cpu.PSW().IPL())

	cpu, _, _ = newTestCpu(t, MODEL_1170)
	cpu.R[3] = 0123
	cpu.mmr0 = MMR0_MME
	cpu.SetPSW(PSW(0140000))
	cpu.Reset()
	assert.Equal(uint16(0), cpu.R[3])
	assert.Equal(uint16(0), cpu.mmr0)
	assert.Equal(PSW(0), cpu.PSW())
}

func TestClearRegister(t *testing.T) {
	assert := assert.New(t)

	cpu, mem, _ := newTestCpu(t, MODEL_1170)
	loadWords(mem, 001000, 0005000)
	cpu.R[0] = 0123456
	cpu.cc = CC{N: true, V: true, C: true}
	cpu.R[REG_PC] = 001000

	err := cpu.Step()
	assert.NoError(err)
	assert.Equal(uint16(0), cpu.R[0])
	assert.Equal(CC{Z: true}, cpu.CC())
	assert.Equal(uint16(001002), cpu.PC())
	assert.Equal(uint64(1), cpu.Ticks)
}

func TestNonResidentFetch(t *testing.T) {
	assert := assert.New(t)

	cpu, _, _ := newTestCpu(t, MODEL_1170)
	assert.NoError(cpu.DepositRegister("KIPDR0", 0077400))
	assert.NoError(cpu.DepositRegister("MMR0", uint16(MMR0_MME)))
	cpu.R[REG_PC] = 0

	err := cpu.Step()
	assert.NoError(err)
	assert.True(cpu.trapReq.Has(TRAP_MME))
	assert.Equal(uint16(0), cpu.PC())
	assert.NotEqual(uint16(0), cpu.mmr0&MMR0_NR)
	assert.Equal(uint64(0), cpu.Ticks)
}

func TestJsrPc(t *testing.T) {
	assert := assert.New(t)

	cpu, mem, _ := newTestCpu(t, MODEL_1170)
	// JSR PC,.+014
	loadWords(mem, 002000, 0004767, 0000010)
	cpu.R[REG_SP] = 001000
	cpu.R[REG_PC] = 002000

	err := cpu.Step()
	assert.NoError(err)
	assert.Equal(uint16(000776), cpu.SP())
	assert.Equal(uint16(002004), mem.ReadWord(000776))
	assert.Equal(uint16(002014), cpu.PC())

	// RTS PC
	loadWords(mem, 002014, 0000207)
	err = cpu.Step()
	assert.NoError(err)
	assert.Equal(uint16(001000), cpu.SP())
	assert.Equal(uint16(002004), cpu.PC())
}

func TestInterrupt(t *testing.T) {
	assert := assert.New(t)

	cpu, mem, _ := newTestCpu(t, MODEL_1170)
	irq, err := cpu.NewInterrupt(6, 0100)
	assert.NoError(err)

	loadWords(mem, 0100, 003000, 0000340)
	cpu.SetStackPointer(MODE_KERNEL, 001000)
	cpu.SetPSW(PSW(0140000 | 4<<PSW_V_IPL))
	cpu.R[REG_PC] = 002000

	irq.Raise()
	err = cpu.Step()
	assert.NoError(err)

	assert.False(irq.Pending())
	assert.Equal(uint16(003000), cpu.PC())
	assert.Equal(MODE_KERNEL, cpu.PSW().CM())
	assert.Equal(MODE_USER, cpu.PSW().PM())
	assert.Equal(7, cpu.PSW().IPL())
	assert.Equal(uint16(000774), cpu.SP())
	assert.Equal(uint16(002000), mem.ReadWord(000774))
	assert.Equal(uint16(0140200), mem.ReadWord(000776))
	assert.Equal(uint64(1), cpu.TrapCount[TRAP_INT])
}

func TestInterruptMasked(t *testing.T) {
	assert := assert.New(t)

	cpu, mem, _ := newTestCpu(t, MODEL_1170)
	irq, err := cpu.NewInterrupt(4, 0060)
	assert.NoError(err)

	loadWords(mem, 001000, 0000240)
	cpu.SetPSW(PSW(5 << PSW_V_IPL))
	cpu.R[REG_PC] = 001000

	irq.Raise()
	err = cpu.Step()
	assert.NoError(err)
	assert.True(irq.Pending())
	assert.Equal(uint16(001002), cpu.PC())
}

func TestNewInterrupt(t *testing.T) {
	assert := assert.New(t)

	cpu, _, _ := newTestCpu(t, MODEL_1170)

	table := [](struct {
		name   string
		level  int
		vector uint16
		err    error
	}){
		{"ok", 4, 060, nil},
		{"level-0", 0, 060, ErrInterrupt},
		{"level-8", 8, 060, ErrInterrupt},
		{"vector-0", 5, 0, ErrInterrupt},
		{"vector-odd", 5, 062, ErrInterrupt},
		{"vector-high", 5, 01000, ErrInterrupt},
	}

	for _, entry := range table {
		_, err := cpu.NewInterrupt(entry.level, entry.vector)
		assert.ErrorIs(err, entry.err, entry.name)
	}

	for n := range 32 {
		_, err := cpu.NewInterrupt(1, uint16(0400+n*4)&0774)
		assert.NoError(err)
	}
	_, err := cpu.NewInterrupt(1, 0400)
	assert.ErrorIs(err, ErrInterruptMax)
}

func TestReadOnlyPage(t *testing.T) {
	assert := assert.New(t)

	cpu, mem, _ := newTestCpu(t, MODEL_1170)
	assert.NoError(cpu.DepositRegister("KIPDR0", 0077402))
	assert.NoError(cpu.DepositRegister("KIPAR1", 0000200))
	assert.NoError(cpu.DepositRegister("KIPDR1", 0077406))
	assert.NoError(cpu.DepositRegister("MMR0", uint16(MMR0_MME)))

	// MOV #123,@#100
	loadWords(mem, 020000, 0012737, 0000123, 0000100)
	mem.WriteWord(0100, 0777)
	cpu.R[REG_PC] = 020000

	err := cpu.Step()
	assert.NoError(err)
	assert.Equal(uint16(0777), mem.ReadWord(0100))
	assert.True(cpu.trapReq.Has(TRAP_MME))
	assert.NotEqual(uint16(0), cpu.mmr0&MMR0_RO)
	assert.Equal(uint32(0), cpu.apr[0]&PDR_W)
	assert.Equal(uint16(020000), cpu.mmr2)
}

func TestPageLength(t *testing.T) {
	assert := assert.New(t)

	cpu, mem, _ := newTestCpu(t, MODEL_1170)
	// Page 0 is one block long.
	assert.NoError(cpu.DepositRegister("KIPDR0", 0000006))
	assert.NoError(cpu.DepositRegister("KIPAR1", 0000200))
	assert.NoError(cpu.DepositRegister("KIPDR1", 0077406))
	assert.NoError(cpu.DepositRegister("MMR0", uint16(MMR0_MME)))

	// TST @#200
	loadWords(mem, 020000, 0005737, 0000200)
	cpu.R[REG_PC] = 020000
	cpu.lastPA = PA_INVALID

	err := cpu.Step()
	assert.NoError(err)
	assert.True(cpu.trapReq.Has(TRAP_MME))
	assert.NotEqual(uint16(0), cpu.mmr0&MMR0_PL)
	assert.NotEqual(uint32(0200), cpu.lastPA)
}

func TestTrapPriority(t *testing.T) {
	assert := assert.New(t)

	cpu, mem, _ := newTestCpu(t, MODEL_1170)
	loadWords(mem, uint32(VEC_ODD), 003000, 0000340)
	cpu.R[REG_SP] = 001000
	cpu.R[REG_PC] = 002000
	cpu.trapReq = TRAP_ODD.Mask() | TRAP_NXM.Mask()

	err := cpu.Step()
	assert.NoError(err)
	assert.Equal(uint16(003000), cpu.PC())
	assert.Equal(TrapMask(0), cpu.trapReq)
	assert.Equal(uint64(1), cpu.TrapCount[TRAP_ODD])
	assert.Equal(uint64(0), cpu.TrapCount[TRAP_NXM])
}

func TestOddAddress(t *testing.T) {
	assert := assert.New(t)

	cpu, mem, _ := newTestCpu(t, MODEL_1170)
	// TST (R1)
	loadWords(mem, 001000, 0005711)
	cpu.R[1] = 000501
	cpu.R[REG_PC] = 001000

	err := cpu.Step()
	assert.NoError(err)
	assert.True(cpu.trapReq.Has(TRAP_ODD))
	assert.NotEqual(uint16(0), cpu.cpuerr&CPUERR_ODD)

	// TSTB (R1) is fine.
	cpu.trapReq = 0
	loadWords(mem, 001000, 0105711)
	cpu.R[REG_PC] = 001000
	err = cpu.Step()
	assert.NoError(err)
	assert.Equal(TrapMask(0), cpu.trapReq)
}

func TestNonExistentMemory(t *testing.T) {
	assert := assert.New(t)

	cpu, mem, _ := newTestCpu(t, MODEL_1170)
	assert.NoError(cpu.DepositRegister("KIPDR0", 0077406))
	assert.NoError(cpu.DepositRegister("KIPAR1", 0001600))
	assert.NoError(cpu.DepositRegister("KIPDR1", 0077406))
	assert.NoError(cpu.DepositRegister("MMR0", uint16(MMR0_MME)))

	// TST @#20000, mapped just past the end of memory.
	loadWords(mem, 001000, 0005737, 0020000)
	cpu.R[REG_PC] = 001000

	err := cpu.Step()
	assert.NoError(err)
	assert.True(cpu.trapReq.Has(TRAP_NXM))
	assert.NotEqual(uint16(0), cpu.cpuerr&CPUERR_NXM)
}

func TestBusTimeout(t *testing.T) {
	assert := assert.New(t)

	cpu, mem, _ := newTestCpu(t, MODEL_1170)
	// TST @#170000; nothing is attached there.
	loadWords(mem, 001000, 0005737, 0170000)
	cpu.R[REG_PC] = 001000

	err := cpu.Step()
	assert.NoError(err)
	assert.True(cpu.trapReq.Has(TRAP_NXM))
	assert.NotEqual(uint16(0), cpu.cpuerr&CPUERR_TMO)
}

func TestHalt(t *testing.T) {
	assert := assert.New(t)

	cpu, mem, _ := newTestCpu(t, MODEL_1170)
	loadWords(mem, 001000, 0000000)
	cpu.R[REG_PC] = 001000

	err := cpu.Step()
	assert.ErrorIs(err, ErrHalt)
	var stop *ErrStop
	assert.True(errors.As(err, &stop))
	assert.Equal(uint16(001002), stop.PC)

	snap := cpu.Snapshot()
	assert.ErrorIs(snap.Stop, ErrHalt)
	assert.Equal(VA(001000), snap.LastVA)
	assert.Equal(uint32(001000), snap.LastPA)

	// User mode HALT is a privilege trap.
	cpu.SetPSW(PSW(0140000))
	cpu.R[REG_PC] = 001000
	err = cpu.Step()
	assert.NoError(err)
	assert.NoError(cpu.Snapshot().Stop)
	assert.Equal(VA(001000)|calcIS(MODE_USER), cpu.Snapshot().LastVA)
	assert.True(cpu.trapReq.Has(TRAP_PRV))
	assert.NotEqual(uint16(0), cpu.cpuerr&CPUERR_HALT)
}

func TestWait(t *testing.T) {
	assert := assert.New(t)

	cpu, mem, _ := newTestCpu(t, MODEL_1170)
	irq, err := cpu.NewInterrupt(4, 0060)
	assert.NoError(err)
	loadWords(mem, 0060, 004000, 0000200)
	loadWords(mem, 001000, 0000001)
	cpu.R[REG_SP] = 001000
	cpu.R[REG_PC] = 001000

	assert.NoError(cpu.Step())
	assert.True(cpu.Waiting())
	assert.NoError(cpu.Step())
	assert.True(cpu.Waiting())
	assert.Equal(uint16(001002), cpu.PC())

	irq.Raise()
	assert.NoError(cpu.Step())
	assert.False(cpu.Waiting())
	assert.Equal(uint16(004000), cpu.PC())
	assert.Equal(uint16(001002), mem.ReadWord(000774))
}

func TestReturnFromInterrupt(t *testing.T) {
	assert := assert.New(t)

	cpu, mem, _ := newTestCpu(t, MODEL_1170)
	loadWords(mem, 001000, 0000002)
	loadWords(mem, 000774, 002000, 0170017)
	cpu.R[REG_SP] = 000774
	cpu.R[REG_PC] = 001000
	cpu.SetStackPointer(MODE_USER, 0700)

	assert.NoError(cpu.Step())
	assert.Equal(uint16(002000), cpu.PC())
	assert.Equal(MODE_USER, cpu.PSW().CM())
	assert.Equal(MODE_USER, cpu.PSW().PM())
	assert.Equal(CC{N: true, Z: true, V: true, C: true}, cpu.CC())
	assert.Equal(uint16(0700), cpu.SP())
	assert.Equal(uint16(001000), cpu.StackPointer(MODE_KERNEL))

	// From user mode, RTI cannot return to kernel mode.
	loadWords(mem, 002000, 0000002)
	loadWords(mem, 000700, 003000, 0000000)
	assert.NoError(cpu.Step())
	assert.Equal(uint16(003000), cpu.PC())
	assert.Equal(MODE_USER, cpu.PSW().CM())
}

func TestTraceTrap(t *testing.T) {
	assert := assert.New(t)

	cpu, mem, _ := newTestCpu(t, MODEL_1170)
	loadWords(mem, uint32(VEC_BPT), 004000, 0000000)
	loadWords(mem, 001000, 0000240)
	cpu.R[REG_SP] = 001000
	cpu.R[REG_PC] = 001000
	cpu.SetPSW(PSW(PSW_T))

	assert.NoError(cpu.Step())
	assert.Equal(uint16(001002), cpu.PC())
	assert.NoError(cpu.Step())
	assert.Equal(uint16(004000), cpu.PC())
	assert.Equal(uint16(PSW_T), mem.ReadWord(000776))
}

func TestStackLimit(t *testing.T) {
	assert := assert.New(t)

	cpu, mem, _ := newTestCpu(t, MODEL_1170)

	// Yellow zone: the push completes, and a trap is requested.
	// MOV R0,-(SP)
	loadWords(mem, 001000, 0010046)
	cpu.R[0] = 0123
	cpu.R[REG_SP] = 000400
	cpu.R[REG_PC] = 001000
	assert.NoError(cpu.Step())
	assert.True(cpu.trapReq.Has(TRAP_YEL))
	assert.Equal(uint16(0123), mem.ReadWord(000376))

	// Red zone: the stack is reset to 4.
	cpu.trapReq = 0
	cpu.R[REG_SP] = 000340
	cpu.R[REG_PC] = 001000
	assert.NoError(cpu.Step())
	assert.True(cpu.trapReq.Has(TRAP_RED))
	assert.Equal(uint16(4), cpu.SP())
	assert.NotEqual(uint16(0), cpu.cpuerr&CPUERR_RED)
}

func TestPswRegister(t *testing.T) {
	assert := assert.New(t)

	cpu, mem, page := newTestCpu(t, MODEL_1170)
	// MOV #340,@#177776
	loadWords(mem, 001000, 0012737, 0000340, 0177776)
	cpu.R[REG_PC] = 001000

	assert.NoError(cpu.Step())
	assert.Equal(7, cpu.PSW().IPL())

	// Byte writes merge, and the T bit is protected.
	assert.NoError(page.WriteIo(SYSREG_PSW+1, 0030, io.WRITEB))
	assert.Equal(uint16(0014340), uint16(cpu.PSW()))
	assert.NoError(page.WriteIo(SYSREG_PSW, 0020, io.WRITE))
	assert.False(cpu.PSW().T())

	data, err := page.ReadIo(SYSREG_PSW, io.READ)
	assert.NoError(err)
	assert.Equal(uint16(0), data)
}

func TestSystemRegisters(t *testing.T) {
	assert := assert.New(t)

	cpu, _, page := newTestCpu(t, MODEL_1170)

	assert.NoError(page.WriteIo(SYSREG_STKLIM, 0123456, io.WRITE))
	data, err := page.ReadIo(SYSREG_STKLIM, io.READ)
	assert.NoError(err)
	assert.Equal(uint16(0123400), data)

	assert.NoError(page.WriteIo(SYSREG_PIRQ, 0012000, io.WRITE))
	data, err = page.ReadIo(SYSREG_PIRQ, io.READ)
	assert.NoError(err)
	assert.Equal(uint16(0012000|4<<PSW_V_IPL|4<<1), data)

	cpu.cpuerr = CPUERR_NXM
	data, err = page.ReadIo(SYSREG_CPUERR, io.READ)
	assert.NoError(err)
	assert.Equal(CPUERR_NXM, data)
	assert.NoError(page.WriteIo(SYSREG_CPUERR, 0, io.WRITE))
	assert.Equal(uint16(0), cpu.cpuerr)

	assert.NoError(page.WriteIo(SYSREG_APR_KERNEL+040, 01234, io.WRITE))
	assert.NoError(page.WriteIo(SYSREG_APR_USER+036, 077406, io.WRITE))
	kipar0, _ := cpu.ExamineRegister("KIPAR0")
	uipdr7, _ := cpu.ExamineRegister("UDPDR7")
	assert.Equal(uint16(01234), kipar0)
	assert.Equal(uint16(077406), uipdr7)

	assert.NoError(page.WriteIo(SYSREG_MMR3, 0000027, io.WRITE))
	data, err = page.ReadIo(SYSREG_MMR3, io.READ)
	assert.NoError(err)
	assert.Equal(uint16(0000027), data)
	assert.Equal(VA_DS, cpu.dsenable&VA_DS)

	assert.NoError(page.WriteIo(SYSREG_SR, 0707, io.WRITE))
	assert.Equal(uint16(0707), cpu.Display)
	cpu.Switches = 0123
	data, err = page.ReadIo(SYSREG_SR, io.READ)
	assert.NoError(err)
	assert.Equal(uint16(0123), data)
}

func TestDoubleOperand(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name string
		ir   uint16
		r0   uint16
		r1   uint16
		want uint16
		cc   CC
	}){
		{"mov", 0010001, 0100000, 0, 0100000, CC{N: true}},
		{"add", 0060001, 1, 077777, 0100000, CC{N: true, V: true}},
		{"add-carry", 0060001, 1, 0177777, 0, CC{Z: true, C: true}},
		{"sub", 0160001, 1, 0, 0177777, CC{N: true, C: true}},
		{"cmp", 0020001, 1, 2, 2, CC{N: true, C: true}},
		{"bit", 0030001, 0100, 0101, 0101, CC{}},
		{"bic", 0040001, 0101, 0177, 076, CC{}},
		{"bis", 0050001, 0100000, 1, 0100001, CC{N: true}},
		{"movb", 0110001, 0200, 0, 0177600, CC{N: true}},
		{"bisb", 0150001, 0200, 0177400, 0177600, CC{N: true}},
		{"xor", 0074001, 0177777, 0177777, 0, CC{Z: true}},
	}

	for _, entry := range table {
		cpu, mem, _ := newTestCpu(t, MODEL_1170)
		loadWords(mem, 001000, entry.ir)
		cpu.R[0] = entry.r0
		cpu.R[1] = entry.r1
		cpu.R[REG_PC] = 001000
		assert.NoError(cpu.Step(), entry.name)
		assert.Equal(entry.want, cpu.R[1], entry.name)
		assert.Equal(entry.cc, cpu.CC(), entry.name)
	}
}

func TestSingleOperand(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name string
		ir   uint16
		r0   uint16
		c    bool
		want uint16
		cc   CC
	}){
		{"com", 0005100, 0, false, 0177777, CC{N: true, C: true}},
		{"inc", 0005200, 077777, true, 0100000, CC{N: true, V: true, C: true}},
		{"dec", 0005300, 1, false, 0, CC{Z: true}},
		{"neg", 0005400, 1, false, 0177777, CC{N: true, C: true}},
		{"neg-min", 0005400, 0100000, false, 0100000, CC{N: true, V: true, C: true}},
		{"adc", 0005500, 0177777, true, 0, CC{Z: true, C: true}},
		{"sbc", 0005600, 0, true, 0177777, CC{N: true, C: true}},
		{"tst", 0005700, 0100000, false, 0100000, CC{N: true}},
		{"ror", 0006000, 1, true, 0100000, CC{N: true, C: true}},
		{"rol", 0006100, 0100000, false, 0, CC{Z: true, V: true, C: true}},
		{"asr", 0006200, 0100001, false, 0140000, CC{N: true, C: true}},
		{"asl", 0006300, 040000, false, 0100000, CC{N: true, V: true}},
		{"swab", 0000300, 0000377, false, 0177400, CC{Z: true}},
		{"clrb", 0105000, 0177777, false, 0177400, CC{Z: true}},
		{"incb", 0105200, 0000177, false, 0000200, CC{N: true, V: true}},
		{"sxt", 0006700, 0123, false, 0, CC{Z: true}},
		{"mfps", 0106700, 0, true, 0000001, CC{C: true}},
	}

	for _, entry := range table {
		cpu, mem, _ := newTestCpu(t, MODEL_1173)
		loadWords(mem, 001000, entry.ir)
		cpu.R[0] = entry.r0
		cpu.cc = CC{C: entry.c}
		cpu.R[REG_PC] = 001000
		assert.NoError(cpu.Step(), entry.name)
		assert.Equal(entry.want, cpu.R[0], entry.name)
		assert.Equal(entry.cc, cpu.CC(), entry.name)
	}
}

func TestBranch(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name  string
		ir    uint16
		cc    CC
		taken bool
	}){
		{"br", 0000402, CC{}, true},
		{"bne", 0001002, CC{Z: true}, false},
		{"beq", 0001402, CC{Z: true}, true},
		{"bge", 0002002, CC{N: true, V: true}, true},
		{"blt", 0002402, CC{N: true}, true},
		{"bgt", 0003002, CC{Z: true}, false},
		{"ble", 0003402, CC{Z: true}, true},
		{"bpl", 0100002, CC{N: true}, false},
		{"bmi", 0100402, CC{N: true}, true},
		{"bhi", 0101002, CC{}, true},
		{"blos", 0101402, CC{C: true}, true},
		{"bvc", 0102002, CC{V: true}, false},
		{"bvs", 0102402, CC{V: true}, true},
		{"bcc", 0103002, CC{C: true}, false},
		{"bcs", 0103402, CC{C: true}, true},
	}

	for _, entry := range table {
		cpu, mem, _ := newTestCpu(t, MODEL_1170)
		loadWords(mem, 001000, entry.ir)
		cpu.cc = entry.cc
		cpu.R[REG_PC] = 001000
		assert.NoError(cpu.Step(), entry.name)
		want := uint16(001002)
		if entry.taken {
			want = 001006
		}
		assert.Equal(want, cpu.PC(), entry.name)
	}

	// Backward branch: BR .-2
	cpu, mem, _ := newTestCpu(t, MODEL_1170)
	loadWords(mem, 001000, 0000776)
	cpu.R[REG_PC] = 001000
	assert.NoError(cpu.Step())
	assert.Equal(uint16(000776), cpu.PC())
}

func TestSob(t *testing.T) {
	assert := assert.New(t)

	cpu, mem, _ := newTestCpu(t, MODEL_1170)
	// SOB R1,.
	loadWords(mem, 001000, 0077101)
	cpu.R[1] = 3
	cpu.R[REG_PC] = 001000

	for range 2 {
		assert.NoError(cpu.Step())
		assert.Equal(uint16(001000), cpu.PC())
	}
	assert.NoError(cpu.Step())
	assert.Equal(uint16(0), cpu.R[1])
	assert.Equal(uint16(001002), cpu.PC())
}

func TestMoveFromPrevious(t *testing.T) {
	assert := assert.New(t)

	cpu, mem, _ := newTestCpu(t, MODEL_1170)
	// MFPI SP; MTPI R1
	loadWords(mem, 001000, 0006506, 0006601)
	cpu.SetStackPointer(MODE_USER, 0123)
	cpu.SetPSW(PSW(MODE_USER) << PSW_V_PM)
	cpu.R[REG_SP] = 001000
	cpu.R[REG_PC] = 001000

	assert.NoError(cpu.Step())
	assert.Equal(uint16(000776), cpu.SP())
	assert.Equal(uint16(0123), mem.ReadWord(000776))

	assert.NoError(cpu.Step())
	assert.Equal(uint16(001000), cpu.SP())
	assert.Equal(uint16(0123), cpu.R[1])
	assert.Equal(uint16(026), cpu.mmr1)
}

func TestBreakpointRollback(t *testing.T) {
	assert := assert.New(t)

	cpu, mem, _ := newTestCpu(t, MODEL_1170)
	bp := testBreakpoints{0500: BREAK_WRITE_VIRTUAL}
	cpu.Breakpoints = bp

	// MOV (R2)+,@#500
	loadWords(mem, 001000, 0012237, 0000500)
	loadWords(mem, 002000, 0777)
	cpu.R[2] = 002000
	cpu.R[REG_PC] = 001000

	err := cpu.Step()
	var brk *ErrBreakpoint
	assert.True(errors.As(err, &brk))
	assert.Equal(uint16(002000), cpu.R[2])
	assert.Equal(uint16(001000), cpu.PC())
	assert.Equal(uint16(0), mem.ReadWord(0500))

	// Breakpoints during a trap sequence are reported after it completes.
	cpu.Breakpoints = testBreakpoints{uint32(VEC_IOT): BREAK_READ_VIRTUAL}
	loadWords(mem, uint32(VEC_IOT), 003000, 0000000)
	cpu.R[REG_SP] = 001000
	cpu.trap(TRAP_IOT)
	err = cpu.Step()
	assert.True(errors.As(err, &brk))
	assert.Equal(uint16(003000), cpu.PC())
}

func TestBreakpointResume(t *testing.T) {
	assert := assert.New(t)

	cpu, mem, _ := newTestCpu(t, MODEL_1170)
	cpu.Breakpoints = testBreakpoints{001000: BREAK_EXEC_VIRTUAL}

	// INC R0 ; BR .-2
	loadWords(mem, 001000, 0005200, 0000776)
	cpu.R[REG_PC] = 001000

	table := [...]struct {
		brk bool
		pc  uint16
		r0  uint16
	}{
		{true, 001000, 0},
		{false, 001002, 1},
		{false, 001000, 1},
		{true, 001000, 1},
		{false, 001002, 2},
	}

	for n, entry := range table {
		err := cpu.Step()
		var brk *ErrBreakpoint
		assert.Equal(entry.brk, errors.As(err, &brk), n)
		assert.Equal(entry.pc, cpu.PC(), n)
		assert.Equal(entry.r0, cpu.R[0], n)
	}

	// Moving the PC away cancels the pass.
	cpu.R[REG_PC] = 001000
	assert.Error(cpu.Step())
	cpu.R[REG_PC] = 001002
	assert.NoError(cpu.Step())
	assert.Equal(uint16(001000), cpu.PC())
	assert.Error(cpu.Step())
}

type testBreakpoints map[uint32]BreakKind

func (tb testBreakpoints) Test(addr uint32, kind BreakKind) (message string, ok bool) {
	if (tb[addr] & kind) != 0 {
		message = "test"
		ok = true
	}
	return
}

func TestStopTrap(t *testing.T) {
	assert := assert.New(t)

	mem, _ := io.NewMemory(testMemorySize)
	cpu, err := NewCpu(Config{Model: MODEL_1170, StopTrap: TRAP_BPT.Mask()}, mem, nil)
	assert.NoError(err)

	loadWords(mem, uint32(VEC_BPT), 003000, 0000000)
	loadWords(mem, 001000, 0000003)
	cpu.R[REG_SP] = 001000
	cpu.R[REG_PC] = 001000

	assert.NoError(cpu.Step())
	err = cpu.Step()
	var stop *ErrTrapStop
	assert.True(errors.As(err, &stop))
	assert.Equal(TRAP_BPT, stop.Trap)
	assert.Equal(uint16(003000), cpu.PC())
}

func TestKernelStackAbort(t *testing.T) {
	assert := assert.New(t)

	cpu, mem, _ := newTestCpu(t, MODEL_1170)
	loadWords(mem, uint32(VEC_IOT), 003000, 0000000)
	// The push goes to non-existent memory.
	cpu.R[REG_SP] = 0170000
	cpu.trap(TRAP_IOT)

	assert.NoError(cpu.Step())
	assert.True(cpu.trapReq.Has(TRAP_RED))
	assert.Equal(uint16(4), cpu.StackPointer(MODE_KERNEL))
}

func TestRegisterRoundTrip(t *testing.T) {
	assert := assert.New(t)

	cpu, _, _ := newTestCpu(t, MODEL_1170)

	names := []string{
		"R0", "R1", "R2", "R3", "R4", "R5",
		"R00", "R01", "R02", "R03", "R04", "R05",
		"R10", "R11", "R12", "R13", "R14", "R15",
		"KSP", "SSP", "USP", "SP", "PC",
	}

	for _, psw := range []PSW{0, 0140000, 0144000, 0044000} {
		cpu.SetPSW(psw)
		for n, name := range names {
			value := uint16(0100 + n)
			assert.NoError(cpu.DepositRegister(name, value), name)
			got, err := cpu.ExamineRegister(name)
			assert.NoError(err, name)
			assert.Equal(value, got, name)
		}
		assert.Equal(psw, cpu.PSW())
	}

	_, err := cpu.ExamineRegister("R9")
	assert.ErrorIs(err, ErrRegisterName)
	assert.Contains(RegisterNames(), "UDPAR7")
}

func TestRegisterBanks(t *testing.T) {
	assert := assert.New(t)

	cpu, _, _ := newTestCpu(t, MODEL_1170)

	cpu.R[REG_SP] = 01000
	cpu.R[0] = 1
	cpu.SetPSW(PSW(0144000))
	assert.Equal(uint16(0), cpu.SP())
	assert.Equal(uint16(0), cpu.R[0])
	cpu.R[REG_SP] = 0700
	cpu.R[0] = 2

	cpu.SetPSW(PSW(0))
	assert.Equal(uint16(01000), cpu.SP())
	assert.Equal(uint16(1), cpu.R[0])
	assert.Equal(uint16(0700), cpu.StackPointer(MODE_USER))
	assert.Equal(uint16(2), cpu.General(1, 0))
}

func TestExamineDeposit(t *testing.T) {
	assert := assert.New(t)

	cpu, _, _ := newTestCpu(t, MODEL_1170)

	assert.NoError(cpu.Deposit(01000, 0123, 0))
	data, err := cpu.Examine(01001, 0)
	assert.NoError(err)
	assert.Equal(uint16(0123), data)

	_, err = cpu.Examine(0170000, 0)
	assert.ErrorIs(err, ErrNonExistent)

	data, err = cpu.Examine(SYSREG_PSW, 0)
	assert.NoError(err)
	assert.Equal(uint16(0), data)

	// Virtual through the user mapping.
	assert.NoError(cpu.DepositRegister("UIPAR1", 0000010))
	assert.NoError(cpu.DepositRegister("UIPDR1", 0077406))
	assert.NoError(cpu.DepositRegister("MMR0", uint16(MMR0_MME)))
	assert.NoError(cpu.Deposit(020000, 0456, SWITCH_VIRTUAL|SWITCH_USER))
	data, err = cpu.Examine(01000, 0)
	assert.NoError(err)
	assert.Equal(uint16(0456), data)

	_, err = cpu.Examine(040000, SWITCH_VIRTUAL|SWITCH_USER)
	assert.ErrorIs(err, ErrRelocation)
}

func TestRequestStop(t *testing.T) {
	assert := assert.New(t)

	cpu, mem, _ := newTestCpu(t, MODEL_1170)
	// BR .
	loadWords(mem, 001000, 0000777)
	cpu.R[REG_PC] = 001000

	count := 0
	cpu.Interval = 10
	cpu.Events = func() error {
		count++
		if count == 3 {
			cpu.RequestStop()
		}
		return nil
	}

	err := cpu.Run(t.Context())
	assert.ErrorIs(err, ErrAddressStop)
	assert.Equal(3, count)
	assert.Equal(uint16(001000), cpu.Snapshot().R[REG_PC])
}
