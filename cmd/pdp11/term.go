//go:build linux || darwin || freebsd || netbsd || openbsd

package main

import (
	"os"

	"golang.org/x/sys/unix"
)

// enterRawTerm puts a terminal in character at a time mode, without echo.
// Interrupt characters still raise signals.
func enterRawTerm(tty *os.File) (restore func() error, err error) {
	fd := int(tty.Fd())

	termios, err := unix.IoctlGetTermios(fd, ioctlGetTermios)
	if err != nil {
		return
	}

	saved := *termios
	termstate := *termios

	termstate.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.INLCR | unix.ICRNL
	termstate.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON | unix.IEXTEN
	termstate.Cflag &^= unix.CSIZE | unix.PARENB
	termstate.Cflag |= unix.CS8

	// Reads block for one character.
	termstate.Cc[unix.VMIN] = 1
	termstate.Cc[unix.VTIME] = 0

	err = unix.IoctlSetTermios(fd, ioctlSetTermios, &termstate)
	if err != nil {
		return
	}

	restore = func() error {
		return unix.IoctlSetTermios(fd, ioctlSetTermios, &saved)
	}
	return
}
