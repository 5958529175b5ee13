package cpu

import (
	"errors"

	"github.com/ezrec/pdp11/translate"
)

var f = translate.Message

var (
	// Configuration errors
	ErrModel        = errors.New(f("model unknown"))
	ErrMemorySize   = errors.New(f("memory size exceeds model limit"))
	ErrMemoryAbsent = errors.New(f("memory missing"))
	ErrInterrupt    = errors.New(f("interrupt level or vector invalid"))
	ErrInterruptMax = errors.New(f("too many interrupts at level"))

	// Stop reasons
	ErrHalt         = errors.New(f("halt instruction"))
	ErrAddressStop  = errors.New(f("address stop"))
	ErrVectorAbort  = errors.New(f("abort during trap vector read"))
	ErrStackAbort   = errors.New(f("abort during trap stack push"))
	ErrCoprocessor  = errors.New(f("coprocessor stop"))
	ErrRelocation   = errors.New(f("console address not mapped"))
	ErrNonExistent  = errors.New(f("console address non-existent"))
	ErrRegisterName = errors.New(f("register name unknown"))
)

// ErrOption is an unknown or disallowed processor option.
type ErrOption struct {
	Name  string
	Model Model
}

func (err *ErrOption) Error() string {
	if err.Name == "" {
		return f("option not available on %v", err.Model)
	}
	return f("option %v unknown", err.Name)
}

// ErrBreakpoint is a breakpoint stop.
type ErrBreakpoint struct {
	Message string
}

func (err *ErrBreakpoint) Error() string {
	if err.Message == "" {
		return f("breakpoint")
	}
	return f("breakpoint: %v", err.Message)
}

// ErrTrapStop is a stop on taking a trap.
type ErrTrapStop struct {
	Trap TrapClass
}

func (err *ErrTrapStop) Error() string {
	return f("trap %v (vector %03o)", err.Trap, trapVector[err.Trap])
}

// ErrStop wraps a stop reason with the PC at which it occurred.
type ErrStop struct {
	PC  uint16
	Err error
}

func (err *ErrStop) Error() string {
	return f("pc %06o: %v", err.PC, err.Err)
}

func (err *ErrStop) Unwrap() error {
	return err.Err
}
