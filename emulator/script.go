package emulator

import (
	"errors"
	"fmt"
	stdio "io"
	"iter"
	"log"
	"os"
	"strconv"
	"strings"

	"go.starlark.net/resolve"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/ezrec/pdp11/cpu"
)

// Script runs a Starlark configuration script, and builds the machine
// it describes. The machine starts from Config; model, memory, and
// option rebuild it, and are only allowed before the first builtin that
// uses the machine.
type Script struct {
	Verbose bool
	Config  Config
	Output  stdio.Writer // Destination of print(); the log if nil.

	emu     *Emulator
	touched bool
}

// Exec runs a script. src is as for starlark.ExecFileOptions: nil to read
// filename, or a string, []byte, or io.Reader.
func (sc *Script) Exec(filename string, src any) (emu *Emulator, err error) {
	if sc.emu == nil {
		err = sc.configure(sc.Config)
		if err != nil {
			return
		}
	}

	thread := &starlark.Thread{
		Name:  filename,
		Print: sc.print,
	}

	_, err = starlark.ExecFileOptions(&syntax.FileOptions{}, thread, filename, src, sc.predeclared())
	if err != nil {
		err = scriptError(filename, err)
		return
	}

	emu = sc.emu
	return
}

func (sc *Script) print(thread *starlark.Thread, msg string) {
	if sc.Output != nil {
		fmt.Fprintln(sc.Output, msg)
		return
	}
	log.Printf("script: %v", msg)
}

// configure rebuilds the machine.
func (sc *Script) configure(config Config) (err error) {
	if sc.touched {
		err = ErrScriptOrder
		return
	}

	emu, err := NewEmulator(config)
	if err != nil {
		return
	}
	emu.Verbose = sc.Verbose

	if sc.emu != nil {
		sc.emu.Close()
	}
	sc.emu = emu
	sc.Config = config
	return
}

// machine returns the machine, and fixes its configuration.
func (sc *Script) machine() *Emulator {
	sc.touched = true
	return sc.emu
}

func (sc *Script) predeclared() (dict starlark.StringDict) {
	dict = starlark.StringDict{}
	for key, str := range sc.emu.Defines() {
		value, err := strconv.ParseInt(str, 0, 64)
		if err != nil {
			// Not every define is an integer.
			continue
		}
		dict[key] = starlark.MakeInt64(value)
	}

	builtins := []struct {
		name string
		fn   func(*starlark.Thread, *starlark.Builtin, starlark.Tuple, []starlark.Tuple) (starlark.Value, error)
	}{
		{"model", sc.builtinModel},
		{"memory", sc.builtinMemory},
		{"option", sc.builtinOption},
		{"deposit", sc.builtinDeposit},
		{"examine", sc.builtinExamine},
		{"register", sc.builtinRegister},
		{"breakpoint", sc.builtinBreakpoint},
		{"load_image", sc.builtinLoadImage},
		{"start", sc.builtinStart},
		{"stop", sc.builtinStop},
	}
	for _, builtin := range builtins {
		dict[builtin.name] = starlark.NewBuiltin(builtin.name, builtin.fn)
	}

	return
}

// model(name) selects the processor model.
func (sc *Script) builtinModel(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (value starlark.Value, err error) {
	value = starlark.None

	var name string
	err = starlark.UnpackArgs(b.Name(), args, kwargs, "name", &name)
	if err != nil {
		return
	}

	model, err := cpu.ParseModel(name)
	if err != nil {
		return
	}

	config := sc.Config
	config.Cpu.Model = model
	err = sc.configure(config)
	return
}

// memory(kib) sets the memory size.
func (sc *Script) builtinMemory(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (value starlark.Value, err error) {
	value = starlark.None

	var kib int
	err = starlark.UnpackArgs(b.Name(), args, kwargs, "kib", &kib)
	if err != nil {
		return
	}
	if kib <= 0 {
		err = ErrMemoryConfig
		return
	}

	config := sc.Config
	config.Memory = uint32(kib) * 1024
	err = sc.configure(config)
	return
}

// option(name, enable=True) enables or disables a processor option.
func (sc *Script) builtinOption(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (value starlark.Value, err error) {
	value = starlark.None

	var name string
	enable := true
	err = starlark.UnpackArgs(b.Name(), args, kwargs, "name", &name, "enable?", &enable)
	if err != nil {
		return
	}

	opt, err := cpu.ParseOption(name)
	if err != nil {
		return
	}

	config := sc.Config
	if enable {
		config.Cpu.Options |= opt
		config.Cpu.Disable &^= opt
	} else {
		config.Cpu.Options &^= opt
		config.Cpu.Disable |= opt
	}
	err = sc.configure(config)
	return
}

// parseSwitch converts switch letters to a console address space.
func parseSwitch(text string) (sw cpu.Switch, err error) {
	for _, letter := range strings.ToLower(text) {
		switch letter {
		case 'v':
			sw |= cpu.SWITCH_VIRTUAL
		case 'k':
			sw |= cpu.SWITCH_VIRTUAL | cpu.SWITCH_KERNEL
		case 's':
			sw |= cpu.SWITCH_VIRTUAL | cpu.SWITCH_SUPERVISOR
		case 'u':
			sw |= cpu.SWITCH_VIRTUAL | cpu.SWITCH_USER
		case 'p':
			sw |= cpu.SWITCH_VIRTUAL | cpu.SWITCH_PREVIOUS
		case 'd':
			sw |= cpu.SWITCH_VIRTUAL | cpu.SWITCH_DATA
		default:
			err = ErrSwitch
			return
		}
	}
	return
}

// deposit(addr, value, sw="") writes a memory word.
func (sc *Script) builtinDeposit(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (value starlark.Value, err error) {
	value = starlark.None

	var addr, data int
	var text string
	err = starlark.UnpackArgs(b.Name(), args, kwargs, "addr", &addr, "value", &data, "sw?", &text)
	if err != nil {
		return
	}

	sw, err := parseSwitch(text)
	if err != nil {
		return
	}

	err = sc.machine().Deposit(uint32(addr), uint16(data), sw)
	return
}

// examine(addr, sw="") reads a memory word.
func (sc *Script) builtinExamine(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (value starlark.Value, err error) {
	value = starlark.None

	var addr int
	var text string
	err = starlark.UnpackArgs(b.Name(), args, kwargs, "addr", &addr, "sw?", &text)
	if err != nil {
		return
	}

	sw, err := parseSwitch(text)
	if err != nil {
		return
	}

	data, err := sc.machine().Examine(uint32(addr), sw)
	if err != nil {
		return
	}

	value = starlark.MakeInt(int(data))
	return
}

// register(name, value=None) reads, and optionally first writes, a
// processor register.
func (sc *Script) builtinRegister(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (value starlark.Value, err error) {
	value = starlark.None

	var name string
	var data starlark.Value = starlark.None
	err = starlark.UnpackArgs(b.Name(), args, kwargs, "name", &name, "value?", &data)
	if err != nil {
		return
	}

	emu := sc.machine()
	if data != starlark.None {
		var word int
		word, err = starlark.AsInt32(data)
		if err != nil {
			return
		}
		err = emu.DepositRegister(name, uint16(word))
		if err != nil {
			return
		}
	}

	reg, err := emu.ExamineRegister(name)
	if err != nil {
		return
	}

	value = starlark.MakeInt(int(reg))
	return
}

// breakpoint(addr, kind="E", message="") arms a breakpoint.
func (sc *Script) builtinBreakpoint(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (value starlark.Value, err error) {
	value = starlark.None

	var addr int
	kind := "E"
	var message string
	err = starlark.UnpackArgs(b.Name(), args, kwargs, "addr", &addr, "kind?", &kind, "message?", &message)
	if err != nil {
		return
	}

	bk, ok := cpu.ParseBreakKind(kind)
	if !ok {
		err = ErrBreakKind
		return
	}

	sc.machine().Breaks.Set(uint32(addr), bk, message)
	return
}

// load_image(path, addr=0) loads a little-endian word image, and returns
// the number of words loaded.
func (sc *Script) builtinLoadImage(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (value starlark.Value, err error) {
	value = starlark.None

	var path string
	var addr int
	err = starlark.UnpackArgs(b.Name(), args, kwargs, "path", &path, "addr?", &addr)
	if err != nil {
		return
	}

	inf, err := os.Open(path)
	if err != nil {
		return
	}
	defer inf.Close()

	words, err := sc.machine().Load(uint32(addr), inf)
	if err != nil {
		return
	}

	value = starlark.MakeInt(words)
	return
}

// start(pc) sets the starting PC.
func (sc *Script) builtinStart(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (value starlark.Value, err error) {
	value = starlark.None

	var pc int
	err = starlark.UnpackArgs(b.Name(), args, kwargs, "pc", &pc)
	if err != nil {
		return
	}

	err = sc.machine().DepositRegister("PC", uint16(pc))
	return
}

// stop(traps=0, vector=False, stack=False) sets the stop conditions.
func (sc *Script) builtinStop(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (value starlark.Value, err error) {
	value = starlark.None

	var traps int
	var vector, stack bool
	err = starlark.UnpackArgs(b.Name(), args, kwargs, "traps?", &traps, "vector?", &vector, "stack?", &stack)
	if err != nil {
		return
	}

	config := &sc.machine().Cpu.Config
	config.StopTrap = cpu.TrapMask(traps) & cpu.TRAP_ALL
	config.StopVecAbort = vector
	config.StopSpAbort = stack
	return
}

// scriptError tags a Starlark error with the innermost position in the
// script file.
func scriptError(filename string, err error) error {
	pos := filename

	var evalErr *starlark.EvalError
	var syntaxErr syntax.Error
	var resolveErr resolve.ErrorList
	switch {
	case errors.As(err, &evalErr):
		for n := range len(evalErr.CallStack) {
			frame := evalErr.CallStack.At(n)
			if frame.Pos.Filename() == filename {
				pos = frame.Pos.String()
				break
			}
		}
	case errors.As(err, &syntaxErr):
		pos = syntaxErr.Pos.String()
		err = errors.New(syntaxErr.Msg)
	case errors.As(err, &resolveErr) && len(resolveErr) != 0:
		pos = resolveErr[0].Pos.String()
		err = errors.New(resolveErr[0].Msg)
	}

	return &ErrScript{Pos: pos, Err: err}
}

// Evaluate computes an integer expression, with the defines predeclared.
func Evaluate(expr string, defines iter.Seq2[string, string]) (value int64, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range defines {
		define, perr := strconv.ParseInt(str, 0, 64)
		if perr != nil {
			continue
		}
		pred[key] = starlark.MakeInt64(define)
	}

	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrExpression
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrExpression
		return
	}
	value, ok = st_int.Int64()
	if !ok {
		err = ErrExpression
		return
	}
	return
}
