// Package io provides the bus collaborators of the PDP-11 processor:
// word organized physical memory, the I/O page dispatcher, and the
// standard console devices (KW11-L line clock and DL11 terminal).
package io

// Access is the type of a bus cycle.
type Access int

//go:generate go tool stringer -linecomment -type=Access
const (
	READ   = Access(0) // read
	READC  = Access(1) // readc
	WRITE  = Access(2) // write
	WRITEC = Access(3) // writec
	WRITEB = Access(4) // writeb
)

// Console returns true for examine and deposit cycles.
func (acc Access) Console() bool {
	return acc == READC || acc == WRITEC
}

// Device defines the interface for all register sets on the I/O page.
type Device interface {
	// ReadIo reads the register at physical address pa.
	ReadIo(pa uint32, access Access) (data uint16, err error)
	// WriteIo writes the register at physical address pa.
	// For WRITEB cycles, only the low byte of data is significant.
	WriteIo(pa uint32, data uint16, access Access) (err error)
	// Reset performs a bus INIT.
	Reset()
}

// Interrupter raises and clears a single interrupt request.
type Interrupter interface {
	Raise()
	Clear()
}

// MergeByte merges a byte write into the current register value.
func MergeByte(pa uint32, curr uint16, data uint16) uint16 {
	if (pa & 1) != 0 {
		return (curr & 0377) | (data << 8)
	}
	return (curr &^ 0377) | (data & 0377)
}
