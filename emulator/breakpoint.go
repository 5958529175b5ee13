package emulator

import (
	"iter"
	"maps"
	"slices"

	"github.com/ezrec/pdp11/cpu"
)

// Breakpoint is the set of classes armed at one address.
type Breakpoint struct {
	Kind    cpu.BreakKind
	Message string // Reported on a match, if set.
	Hits    int    // Matches since the breakpoint was set.
}

// Breakpoints is a breakpoint table, keyed by address. Virtual and
// physical classes share the table; the class decides which address a
// match is made against.
type Breakpoints struct {
	entries map[uint32]*Breakpoint
}

var _ cpu.Breakpoints = (*Breakpoints)(nil)

// Set arms the classes of kind at addr.
func (bps *Breakpoints) Set(addr uint32, kind cpu.BreakKind, message string) {
	if bps.entries == nil {
		bps.entries = make(map[uint32]*Breakpoint)
	}

	bp, ok := bps.entries[addr]
	if !ok {
		bp = &Breakpoint{}
		bps.entries[addr] = bp
	}
	bp.Kind |= kind
	if message != "" {
		bp.Message = message
	}
}

// Clear disarms the classes of kind at addr.
func (bps *Breakpoints) Clear(addr uint32, kind cpu.BreakKind) {
	bp, ok := bps.entries[addr]
	if !ok {
		return
	}
	bp.Kind &^= kind
	if bp.Kind == 0 {
		delete(bps.entries, addr)
	}
}

// Len returns the number of addresses with a breakpoint.
func (bps *Breakpoints) Len() int {
	return len(bps.entries)
}

// All returns the breakpoints in address order.
func (bps *Breakpoints) All() iter.Seq2[uint32, Breakpoint] {
	return func(yield func(uint32, Breakpoint) bool) {
		for _, addr := range slices.Sorted(maps.Keys(bps.entries)) {
			if !yield(addr, *bps.entries[addr]) {
				return
			}
		}
	}
}

// Test implements cpu.Breakpoints.
func (bps *Breakpoints) Test(addr uint32, kind cpu.BreakKind) (message string, ok bool) {
	bp, found := bps.entries[addr]
	if !found || (bp.Kind&kind) == 0 {
		return
	}

	bp.Hits++
	message = bp.Message
	if message == "" {
		message = f("%v at %06o", bp.Kind&kind, addr)
	}
	ok = true
	return
}
