//go:build !(linux || darwin || freebsd || netbsd || openbsd)

package main

import (
	"log"
	"os"
)

func enterRawTerm(tty *os.File) (restore func() error, err error) {
	log.Printf("%v: raw mode not supported", tty.Name())
	restore = func() error { return nil }
	return
}
