package io

import (
	"fmt"
	"iter"
	"log"
	"maps"
	"time"
)

const (
	CLOCK_CSR    = uint32(017777546) // KW11-L status register.
	CLOCK_LEVEL  = 6                 // Interrupt priority level.
	CLOCK_VECTOR = uint16(0100)      // Interrupt vector.
	CLOCK_HZ     = 60                // Default line frequency.

	CLOCK_DONE = uint16(0200) // Monitor, set on every tick.
	CLOCK_IE   = uint16(0100) // Interrupt enable.
	CLOCK_RW   = CLOCK_IE
	CLOCK_IMP  = CLOCK_DONE | CLOCK_IE
)

var _clock_defines = map[string]string{
	"CLOCK_CSR":    fmt.Sprintf("0o%o", CLOCK_CSR),
	"CLOCK_VECTOR": fmt.Sprintf("0o%o", CLOCK_VECTOR),
	"CLOCK_LEVEL":  fmt.Sprintf("%d", CLOCK_LEVEL),
}

// Clock is a KW11-L line time clock.
type Clock struct {
	Verbose   bool
	Hz        int         // Tick rate; CLOCK_HZ if zero.
	Interrupt Interrupter // Interrupt request at CLOCK_LEVEL, CLOCK_VECTOR.

	Csr   uint16    // Control and status register.
	Ticks int       // Ticks since reset.
	next  time.Time // Next wall clock tick.
}

var _ Device = (*Clock)(nil)

// Defines returns an iter of defines for the clock.
func (clk *Clock) Defines() iter.Seq2[string, string] {
	return maps.All(_clock_defines)
}

// Reset the clock. The monitor bit is set, as on power up.
func (clk *Clock) Reset() {
	clk.Csr = CLOCK_DONE
	clk.Ticks = 0
	clk.next = time.Time{}
	if clk.Interrupt != nil {
		clk.Interrupt.Clear()
	}
}

// ReadIo reads the clock status register.
func (clk *Clock) ReadIo(pa uint32, access Access) (data uint16, err error) {
	if (pa &^ 1) != CLOCK_CSR {
		err = ErrNxm
		return
	}

	data = clk.Csr & CLOCK_IMP
	return
}

// WriteIo writes the clock status register. Writing a zero monitor
// bit clears it.
func (clk *Clock) WriteIo(pa uint32, data uint16, access Access) (err error) {
	if (pa &^ 1) != CLOCK_CSR {
		err = ErrNxm
		return
	}

	if access == WRITEB && (pa&1) != 0 {
		return
	}

	clk.Csr = (clk.Csr &^ CLOCK_RW) | (data & CLOCK_RW)
	if (data & CLOCK_DONE) == 0 {
		clk.Csr &^= CLOCK_DONE
	}
	if (clk.Csr&CLOCK_IE) == 0 || (clk.Csr&CLOCK_DONE) == 0 {
		if clk.Interrupt != nil {
			clk.Interrupt.Clear()
		}
	}

	return
}

// Tick the clock once.
func (clk *Clock) Tick() {
	clk.Ticks++
	clk.Csr |= CLOCK_DONE
	if (clk.Csr & CLOCK_IE) != 0 {
		if clk.Verbose {
			log.Printf("clock: tick %d", clk.Ticks)
		}
		if clk.Interrupt != nil {
			clk.Interrupt.Raise()
		}
	}
}

// Service ticks the clock once if a tick period has elapsed by now.
// It returns true if the clock ticked.
func (clk *Clock) Service(now time.Time) (ticked bool) {
	hz := clk.Hz
	if hz <= 0 {
		hz = CLOCK_HZ
	}
	period := time.Second / time.Duration(hz)

	if clk.next.IsZero() {
		clk.next = now.Add(period)
		return
	}

	if now.Before(clk.next) {
		return
	}

	clk.Tick()
	clk.next = clk.next.Add(period)
	if clk.next.Before(now) {
		// Lost ticks are not replayed.
		clk.next = now.Add(period)
	}

	ticked = true
	return
}
