package io

import (
	"errors"

	"github.com/ezrec/pdp11/translate"
)

var f = translate.Message

var (
	// Bus errors
	ErrNxm          = errors.New(f("non-existent address"))
	ErrReadOnly     = errors.New(f("register is read only"))
	ErrMemorySize   = errors.New(f("memory size invalid"))
	ErrWindowRange  = errors.New(f("window outside of the I/O page"))
	ErrImageOddSize = errors.New(f("image has an odd byte count"))
)

// ErrWindowConflict indicates two devices claimed the same I/O page address.
type ErrWindowConflict struct {
	Name  string
	Other string
	Base  uint32
}

func (err *ErrWindowConflict) Error() string {
	return f("%v at %08o conflicts with %v", err.Name, err.Base, err.Other)
}
