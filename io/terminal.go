package io

import (
	"fmt"
	"io"
	"iter"
	"log"
	"maps"
)

const (
	TERMINAL_BASE      = uint32(017777560) // DL11 console register block.
	TERMINAL_SIZE      = uint32(010)
	TERMINAL_LEVEL     = 4
	TERMINAL_RX_VECTOR = uint16(060)
	TERMINAL_TX_VECTOR = uint16(064)

	TERMINAL_RCSR = TERMINAL_BASE + 0 // Receiver status.
	TERMINAL_RBUF = TERMINAL_BASE + 2 // Receiver buffer.
	TERMINAL_XCSR = TERMINAL_BASE + 4 // Transmitter status.
	TERMINAL_XBUF = TERMINAL_BASE + 6 // Transmitter buffer.

	TERMINAL_DONE = uint16(0200) // Receiver done, transmitter ready.
	TERMINAL_IE   = uint16(0100) // Interrupt enable.
)

var _terminal_defines = map[string]string{
	"TERMINAL_RCSR":      fmt.Sprintf("0o%o", TERMINAL_RCSR),
	"TERMINAL_RBUF":      fmt.Sprintf("0o%o", TERMINAL_RBUF),
	"TERMINAL_XCSR":      fmt.Sprintf("0o%o", TERMINAL_XCSR),
	"TERMINAL_XBUF":      fmt.Sprintf("0o%o", TERMINAL_XBUF),
	"TERMINAL_RX_VECTOR": fmt.Sprintf("0o%o", TERMINAL_RX_VECTOR),
	"TERMINAL_TX_VECTOR": fmt.Sprintf("0o%o", TERMINAL_TX_VECTOR),
}

// Terminal is a DL11 serial line unit attached to a byte stream.
// Input is read by a background goroutine into a buffer, and transferred
// to the receiver one character per Poll. Output is written synchronously.
type Terminal struct {
	Verbose bool
	Input   io.Reader // Keyboard, may be nil.
	Output  io.Writer // Printer, may be nil.
	Strip   bool      // Strip the parity bit from output.

	RxInterrupt Interrupter
	TxInterrupt Interrupter

	Rcsr uint16
	Rbuf uint16
	Xcsr uint16
	Xbuf uint16

	input chan byte
	done  chan struct{}
}

var _ Device = (*Terminal)(nil)

// Defines returns an iter of defines for the terminal.
func (tt *Terminal) Defines() iter.Seq2[string, string] {
	return maps.All(_terminal_defines)
}

// Start the keyboard reader.
func (tt *Terminal) Start() {
	if tt.Input == nil || tt.input != nil {
		return
	}

	tt.input = make(chan byte, 256)
	tt.done = make(chan struct{})

	go func(in io.Reader, input chan<- byte, done <-chan struct{}) {
		defer close(input)
		var one [1]byte
		for {
			_, err := in.Read(one[:])
			if err != nil {
				return
			}
			select {
			case input <- one[0]:
			case <-done:
				return
			}
		}
	}(tt.Input, tt.input, tt.done)
}

// Close stops forwarding keyboard input.
func (tt *Terminal) Close() (err error) {
	if tt.done != nil {
		close(tt.done)
		tt.done = nil
	}
	return
}

// Reset the terminal: receiver empty, transmitter ready.
func (tt *Terminal) Reset() {
	tt.Rcsr = 0
	tt.Rbuf = 0
	tt.Xcsr = TERMINAL_DONE
	tt.Xbuf = 0
	if tt.RxInterrupt != nil {
		tt.RxInterrupt.Clear()
	}
	if tt.TxInterrupt != nil {
		tt.TxInterrupt.Clear()
	}
}

func (tt *Terminal) raise(irq Interrupter, csr uint16) {
	if irq == nil {
		return
	}
	if (csr&TERMINAL_IE) != 0 && (csr&TERMINAL_DONE) != 0 {
		irq.Raise()
	} else {
		irq.Clear()
	}
}

// ReadIo reads a terminal register.
func (tt *Terminal) ReadIo(pa uint32, access Access) (data uint16, err error) {
	switch pa &^ 1 {
	case TERMINAL_RCSR:
		data = tt.Rcsr & (TERMINAL_DONE | TERMINAL_IE)
	case TERMINAL_RBUF:
		data = tt.Rbuf
		if !access.Console() {
			tt.Rcsr &^= TERMINAL_DONE
			tt.raise(tt.RxInterrupt, tt.Rcsr)
		}
	case TERMINAL_XCSR:
		data = tt.Xcsr & (TERMINAL_DONE | TERMINAL_IE)
	case TERMINAL_XBUF:
		data = 0
	default:
		err = ErrNxm
	}

	return
}

// WriteIo writes a terminal register.
func (tt *Terminal) WriteIo(pa uint32, data uint16, access Access) (err error) {
	if access == WRITEB && (pa&1) != 0 {
		return
	}

	switch pa &^ 1 {
	case TERMINAL_RCSR:
		tt.Rcsr = (tt.Rcsr &^ TERMINAL_IE) | (data & TERMINAL_IE)
		tt.raise(tt.RxInterrupt, tt.Rcsr)
	case TERMINAL_RBUF:
	case TERMINAL_XCSR:
		tt.Xcsr = (tt.Xcsr &^ TERMINAL_IE) | (data & TERMINAL_IE)
		tt.raise(tt.TxInterrupt, tt.Xcsr)
	case TERMINAL_XBUF:
		tt.Xbuf = data & 0377
		char := byte(tt.Xbuf)
		if tt.Strip {
			char &= 0177
		}
		if tt.Output != nil {
			_, err = tt.Output.Write([]byte{char})
			if err != nil {
				return
			}
		}
		if tt.Verbose {
			log.Printf("terminal: output %03o", char)
		}
		tt.Xcsr &^= TERMINAL_DONE
		tt.raise(tt.TxInterrupt, tt.Xcsr)
	default:
		err = ErrNxm
	}

	return
}

// Poll completes a pending transmit, and moves one input character
// into the receiver buffer if it is empty.
func (tt *Terminal) Poll() {
	if (tt.Xcsr & TERMINAL_DONE) == 0 {
		tt.Xcsr |= TERMINAL_DONE
		tt.raise(tt.TxInterrupt, tt.Xcsr)
	}

	if tt.input == nil || (tt.Rcsr&TERMINAL_DONE) != 0 {
		return
	}

	select {
	case char, ok := <-tt.input:
		if !ok {
			tt.input = nil
			return
		}
		tt.Rbuf = uint16(char)
		tt.Rcsr |= TERMINAL_DONE
		if tt.Verbose {
			log.Printf("terminal: input %03o", char)
		}
		tt.raise(tt.RxInterrupt, tt.Rcsr)
	default:
	}
}
