package emulator

import (
	"errors"

	"github.com/ezrec/pdp11/translate"
)

var f = translate.Message

var (
	ErrScriptOrder  = errors.New(f("machine configuration after first use"))
	ErrSwitch       = errors.New(f("address switch unknown"))
	ErrBreakKind    = errors.New(f("breakpoint class unknown"))
	ErrExpression   = errors.New(f("expression is not an integer"))
	ErrMemoryConfig = errors.New(f("memory size invalid"))
	ErrLoad         = errors.New(f("memory image load failed"))
)

// ErrScript indicates the location of a configuration script error.
type ErrScript struct {
	Pos string
	Err error
}

func (err *ErrScript) Error() string {
	return f("%v: %v", err.Pos, err.Err)
}

func (err *ErrScript) Unwrap() error {
	return err.Err
}
