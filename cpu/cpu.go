package cpu

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log"
	"maps"
	"sync/atomic"
	"time"

	"github.com/ezrec/pdp11/io"
)

// DEFAULT_INTERVAL is the number of instructions between event checks.
const DEFAULT_INTERVAL = 1000

// PA_INVALID is a physical address no reference can reach.
const PA_INVALID = uint32(1 << 22)

var _cpu_defines = map[string]string{
	"VEC_RED":   fmt.Sprintf("0o%o", VEC_RED),
	"VEC_ILL":   fmt.Sprintf("0o%o", VEC_ILL),
	"VEC_BPT":   fmt.Sprintf("0o%o", VEC_BPT),
	"VEC_IOT":   fmt.Sprintf("0o%o", VEC_IOT),
	"VEC_PWRFL": fmt.Sprintf("0o%o", VEC_PWRFL),
	"VEC_EMT":   fmt.Sprintf("0o%o", VEC_EMT),
	"VEC_TRAP":  fmt.Sprintf("0o%o", VEC_TRAP),
	"VEC_PAR":   fmt.Sprintf("0o%o", VEC_PAR),
	"VEC_PIRQ":  fmt.Sprintf("0o%o", VEC_PIRQ),
	"VEC_FPE":   fmt.Sprintf("0o%o", VEC_FPE),
	"VEC_MME":   fmt.Sprintf("0o%o", VEC_MME),
	"PSW":       fmt.Sprintf("0o%o", SYSREG_PSW&0177777),
	"STKLIM":    fmt.Sprintf("0o%o", SYSREG_STKLIM&0177777),
	"PIRQ":      fmt.Sprintf("0o%o", SYSREG_PIRQ&0177777),
	"CPUERR":    fmt.Sprintf("0o%o", SYSREG_CPUERR&0177777),
	"MMR0":      fmt.Sprintf("0o%o", SYSREG_MMR0&0177777),
	"MMR3":      fmt.Sprintf("0o%o", SYSREG_MMR3&0177777),
	"KIPAR0":    fmt.Sprintf("0o%o", (SYSREG_APR_KERNEL+040)&0177777),
	"KIPDR0":    fmt.Sprintf("0o%o", SYSREG_APR_KERNEL&0177777),
	"UIPAR0":    fmt.Sprintf("0o%o", (SYSREG_APR_USER+040)&0177777),
	"UIPDR0":    fmt.Sprintf("0o%o", SYSREG_APR_USER&0177777),
}

// Config selects the processor model and the stop conditions.
type Config struct {
	Model   Model
	Options Option // Enabled in addition to the model's standard options.
	Disable Option // Standard options to disable.

	StopTrap     TrapMask // Stop when any of these traps is taken.
	StopVecAbort bool     // Stop on an abort reading a trap vector.
	StopSpAbort  bool     // Stop on an abort pushing a trap frame.
}

// Coprocessor executes an optional instruction set: the FPP (170000-
// 177777), FIS (075000-075777), or CIS (076000-076777).
type Coprocessor interface {
	// Execute runs one instruction. A returned *Abort unwinds as for a
	// memory fault; any other error stops the processor.
	Execute(cpu *Cpu, ir uint16) (err error)
}

// Snapshot is a consistent copy of the processor state, taken at an
// instruction boundary.
type Snapshot struct {
	R      [8]uint16
	PSW    PSW
	IR     uint16
	Ticks  uint64
	Wait   bool
	LastVA VA     // Last virtual address referenced.
	LastPA uint32 // Physical address of LastVA.
	Stop   error  // Stop reason of the last step, if any.
}

type trapSeq struct {
	vector uint16 // Vector being read.
	push   bool   // Trap frame being pushed.
	mode   Mode   // Mode of the stack being pushed.
}

// Cpu is a PDP-11 central processor.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	Config  Config
	Model   ModelInfo // Model description.
	Options Option    // Enabled options.

	Memory      Memory      // Physical memory.
	IoPage      IoPage      // I/O page.
	Breakpoints Breakpoints // Breakpoint table, if any.

	Fpp Coprocessor // Floating point processor.
	Fis Coprocessor // Floating instruction set.
	Cis Coprocessor // Commercial instruction set.

	// Events is called every Interval instructions, and while the
	// processor waits. An error stops Run.
	Events   func() error
	Interval int

	Switches uint16 // Console switch register.
	Display  uint16 // Console display register.

	Ticks     uint64               // Instructions executed.
	TrapCount [TRAP_INT + 1]uint64 // Traps taken, by class.

	Registers

	pm   Mode
	fpd  bool
	tbit bool
	ipl  int
	cc   CC

	trapReq TrapMask
	trapSeq trapSeq
	extTrap atomic.Uint32
	intReq  [IPL_LEVELS]atomic.Uint32
	intVec  [IPL_LEVELS][]uint16

	pirq   uint16
	stklim uint16
	cpuerr uint16

	mmr0     uint16
	mmr1     uint16
	mmr2     uint16
	mmr3     uint16
	apr      [64]uint32
	isenable VA
	dsenable VA

	ir      uint16
	instPC  uint16
	instPSW uint16
	regMods uint16
	lastVA  VA
	lastPA  uint32
	memSize uint32
	wait    bool
	stop    error

	brkResume bool   // Pass over the execute breakpoint at brkPC.
	brkPC     uint16

	astop    atomic.Bool
	snapshot atomic.Pointer[Snapshot]
}

// NewCpu creates a processor of the configured model, attached to
// physical memory and an I/O page. If iopage is nil, an empty
// io.Page is used.
func NewCpu(config Config, memory Memory, iopage IoPage) (cpu *Cpu, err error) {
	info, err := LookupModel(config.Model)
	if err != nil {
		return
	}

	options := (info.Options | config.Options) &^ config.Disable
	if (options &^ info.Allowed) != 0 {
		err = &ErrOption{Model: config.Model}
		return
	}

	if memory == nil {
		err = ErrMemoryAbsent
		return
	}
	if memory.Size() > info.MaxMemory-io.IOPAGE_SIZE {
		err = ErrMemorySize
		return
	}

	if iopage == nil {
		iopage = &io.Page{}
	}

	cpu = &Cpu{
		Config:  config,
		Model:   info,
		Options: options,
		Memory:  memory,
		IoPage:  iopage,
		memSize: memory.Size(),
	}
	cpu.Reset()

	return
}

// Defines for the cpu
func (cpu *Cpu) Defines() iter.Seq2[string, string] {
	return maps.All(_cpu_defines)
}

// Reset the processor to its power up state. The I/O page is not reset.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset %v", cpu.Model.Model)
	}

	cpu.Registers.reset()
	cpu.pm = MODE_KERNEL
	cpu.fpd = false
	cpu.tbit = false
	cpu.ipl = 0
	cpu.cc = CC{}
	if cpu.Model.Model == MODEL_T11 {
		cpu.ipl = 7
	}

	cpu.trapReq = 0
	cpu.trapSeq = trapSeq{}
	cpu.extTrap.Store(0)
	cpu.clearInterrupts()

	cpu.pirq = 0
	cpu.stklim = 0
	cpu.cpuerr = 0
	cpu.mmr0 = 0
	cpu.mmr1 = 0
	cpu.mmr2 = 0
	cpu.mmr3 = 0
	cpu.calcSpaces()

	cpu.ir = 0
	cpu.regMods = 0
	cpu.lastVA = 0
	cpu.lastPA = 0
	cpu.wait = false
	cpu.stop = nil
	cpu.brkResume = false
	cpu.Ticks = 0
	clear(cpu.TrapCount[:])

	cpu.publish(nil)
}

// PSW returns the processor status word.
func (cpu *Cpu) PSW() PSW {
	return PSW(cpu.getPSW())
}

// SetPSW loads the processor status word.
func (cpu *Cpu) SetPSW(psw PSW) {
	cpu.putPSW(uint16(psw), false)
}

// IR returns the last instruction fetched.
func (cpu *Cpu) IR() uint16 {
	return cpu.ir
}

// Waiting returns true if the processor is waiting for an interrupt.
func (cpu *Cpu) Waiting() bool {
	return cpu.wait
}

// RequestStop asks Run to stop at the next instruction boundary.
// It may be called from any goroutine.
func (cpu *Cpu) RequestStop() {
	cpu.astop.Store(true)
}

// Snapshot returns the processor state published at the last
// instruction boundary. It may be called from any goroutine.
func (cpu *Cpu) Snapshot() Snapshot {
	return *cpu.snapshot.Load()
}

func (cpu *Cpu) publish(stop error) {
	cpu.snapshot.Store(&Snapshot{
		R:      cpu.R,
		PSW:    cpu.PSW(),
		IR:     cpu.ir,
		Ticks:  cpu.Ticks,
		Wait:   cpu.wait,
		LastVA: cpu.lastVA,
		LastPA: cpu.lastPA,
		Stop:   stop,
	})
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	for n := range 6 {
		text += fmt.Sprintf("   r%d: %06o\n", n, cpu.R[n])
	}
	text += fmt.Sprintf("   sp: %06o\n", cpu.SP())
	text += fmt.Sprintf("   pc: %06o\n", cpu.PC())
	text += fmt.Sprintf("  psw: %v\n", cpu.PSW())
	return
}

// Step runs one iteration of the instruction loop: a trap or interrupt
// sequence, or one instruction. A stop condition is returned as an
// *ErrStop.
func (cpu *Cpu) Step() (err error) {
	cpu.stop = nil

	if ext := TrapMask(cpu.extTrap.Swap(0)); ext != 0 {
		cpu.trapReq |= ext & TRAP_ALL
	}
	cpu.trapReq = cpu.calcInts(cpu.ipl, cpu.trapReq)

	if cpu.trapReq != 0 {
		err = cpu.service()
	} else {
		err = cpu.instruction()
	}
	if err != nil {
		err = cpu.recover(err)
	}
	if err == nil {
		err = cpu.stop
	}
	cpu.stop = nil

	cpu.publish(err)

	if err != nil {
		err = &ErrStop{PC: cpu.PC(), Err: err}
	}
	return
}

// Run executes instructions until a stop condition, a RequestStop, an
// Events error, or the cancellation of ctx.
func (cpu *Cpu) Run(ctx context.Context) (err error) {
	interval := cpu.Interval
	if interval <= 0 {
		interval = DEFAULT_INTERVAL
	}

	for count := 0; ; count++ {
		if cpu.astop.Swap(false) {
			err = &ErrStop{PC: cpu.PC(), Err: ErrAddressStop}
			return
		}

		if count >= interval || cpu.wait {
			count = 0
			err = ctx.Err()
			if err != nil {
				return
			}
			if cpu.Events != nil {
				err = cpu.Events()
				if err != nil {
					return
				}
			}
			if cpu.wait && cpu.idle() {
				time.Sleep(time.Millisecond)
				continue
			}
		}

		err = cpu.Step()
		if err != nil {
			return
		}
	}
}

// idle returns true if no trap or interrupt request can end a wait.
func (cpu *Cpu) idle() bool {
	trq := cpu.trapReq | TrapMask(cpu.extTrap.Load())
	return cpu.calcInts(cpu.ipl, trq) == 0
}

// instruction fetches and executes one instruction.
func (cpu *Cpu) instruction() (err error) {
	if cpu.tbit {
		cpu.trap(TRAP_TRC)
	}
	if cpu.wait {
		return
	}

	cpu.regMods = 0
	cpu.instPC = cpu.PC()
	cpu.instPSW = cpu.getPSW()

	// The execute breakpoint that stopped the processor is passed over
	// once, when execution resumes at the same PC.
	resume := cpu.brkResume && cpu.brkPC == cpu.instPC
	cpu.brkResume = false
	if cpu.Breakpoints != nil && !resume {
		pa, ok := cpu.relocC(cpu.instPC, 0)
		if !ok {
			pa = PA_INVALID
		}
		if message, hit := cpu.testBreak(VA(cpu.instPC), pa, BREAK_EXEC_VIRTUAL, BREAK_EXEC_PHYSICAL); hit {
			cpu.brkResume, cpu.brkPC = true, cpu.instPC
			err = cpu.abortBreak(message)
			return
		}
	}

	if cpu.updateMM() {
		cpu.mmr1 = 0
		cpu.mmr2 = cpu.instPC
	}

	ir, err := cpu.readW(VA(cpu.instPC) | cpu.isenable)
	if err != nil {
		return
	}
	cpu.ir = ir
	cpu.R[REG_PC] += 2
	cpu.Ticks++

	if cpu.Verbose {
		log.Printf("cpu: %06o: %06o %v", cpu.instPC, ir, Disassemble(ir))
	}

	err = cpu.execute(ir)
	return
}

// service takes the highest priority trap, or acknowledges the highest
// priority interrupt.
func (cpu *Cpu) service() (err error) {
	tc := TRAP_INT
	var vec uint16

	if trq := cpu.trapReq & TRAP_ALL; trq != 0 {
		tc, _ = trq.First()
		vec = trapVector[tc]
		cpu.trapReq &^= trapClear[tc]
		if cpu.Config.StopTrap.Has(tc) {
			cpu.stop = &ErrTrapStop{Trap: tc}
		}
	} else {
		vec = cpu.getVector(cpu.ipl)
	}

	if vec == 0 {
		// The request was withdrawn before acknowledge.
		cpu.trapReq = cpu.calcInts(cpu.ipl, 0)
		return
	}

	cpu.TrapCount[tc]++
	if cpu.Verbose {
		log.Printf("cpu: %v trap at %06o, vector %03o", tc, cpu.PC(), vec)
	}

	err = cpu.trapSequence(tc, vec)
	return
}

// trapSequence pushes the PSW and PC onto the stack of the new mode,
// and loads the new PC and PSW from the vector in kernel data space.
func (cpu *Cpu) trapSequence(tc TrapClass, vec uint16) (err error) {
	cpu.wait = false
	psw := cpu.getPSW()
	mode := cpu.mode

	if cpu.has(FEATURE_MMTR) && cpu.updateMM() {
		cpu.mmr1 = 0
		if trapLoadMmr2[tc] {
			cpu.mmr2 = vec
		}
	}

	cpu.trapSeq = trapSeq{vector: vec}
	kds := cpu.calcDS(MODE_KERNEL)
	pc, err := cpu.readCW(VA(vec) | kds)
	if err != nil {
		return
	}
	npsw, err := cpu.readCW(VA(vec+2) | kds)
	if err != nil {
		return
	}
	npsw &= cpu.Model.PswMask
	nm := PSW(npsw).CM()

	cpu.trapSeq = trapSeq{push: true, mode: nm}
	sp := cpu.StackPointer(nm)
	nds := cpu.calcDS(nm)
	err = cpu.writeCW(psw, VA(sp-2)|nds)
	if err != nil {
		return
	}
	err = cpu.writeCW(cpu.PC(), VA(sp-4)|nds)
	if err != nil {
		return
	}
	cpu.trapSeq = trapSeq{}

	npsw = (npsw &^ PSW_PM) | uint16(mode)<<PSW_V_PM
	cpu.putPSW(npsw, false)
	cpu.R[REG_SP] = sp - 4
	cpu.trapReq = cpu.calcInts(cpu.ipl, cpu.trapReq)
	cpu.R[REG_PC] = pc

	if cpu.mode == MODE_KERNEL && tc != TRAP_RED && tc != TRAP_YEL {
		err = cpu.stackCheck(cpu.SP())
	}
	return
}

// recover completes an aborted instruction or trap sequence.
func (cpu *Cpu) recover(err error) error {
	var ab *Abort
	if !errors.As(err, &ab) {
		cpu.trapSeq = trapSeq{}
		return err
	}

	cpu.trapSeq = trapSeq{}

	if ab.Breakpoint {
		// Back out the instruction, so it re-executes on restart.
		cpu.R[REG_PC] = cpu.instPC
		if !cpu.fpd {
			cpu.putPSW(cpu.instPSW, false)
		}
		for mods := cpu.regMods; mods != 0; mods >>= 8 {
			reg := mods & 07
			delta := int16((mods >> 3) & 037)
			if (delta & 020) != 0 {
				delta -= 040
			}
			if reg != REG_PC {
				cpu.R[reg] -= uint16(delta)
			}
		}
		cpu.regMods = 0
		return &ErrBreakpoint{Message: ab.Message}
	}

	if cpu.Verbose {
		log.Printf("cpu: %v", ab)
	}

	cpu.trapReq |= ab.Trap

	var stop error
	if ab.Vector != 0 && cpu.Config.StopVecAbort {
		stop = ErrVectorAbort
	}
	if ab.Push {
		if cpu.has(FEATURE_STOP_STKA) || cpu.Config.StopSpAbort {
			stop = ErrStackAbort
		}
		if ab.Mode == MODE_KERNEL {
			// Double fault on the kernel stack.
			cpu.trapReq &^= trapClear[TRAP_RED]
			cpu.trapReq |= _mask_red
			cpu.setCPUERR(CPUERR_RED)
			cpu.SetStackPointer(MODE_KERNEL, 4)
		}
	}

	return stop
}
