package io

import (
	"iter"
	"log"
	"slices"
)

const (
	IOPAGE_BASE = uint32(017760000) // First physical address of the I/O page.
	IOPAGE_SIZE = uint32(020000)    // Size of the I/O page in bytes.
)

// window is a span of I/O page addresses served by a single device.
type window struct {
	name   string
	base   uint32
	size   uint32
	device Device
}

func (win *window) contains(pa uint32) bool {
	return pa >= win.base && pa < win.base+win.size
}

// Page dispatches I/O page bus cycles to the attached devices.
// Addresses no device claims time out with ErrNxm.
type Page struct {
	Verbose bool // If set, enables verbose logging.

	windows []window // Sorted by base address.
}

// Attach a device to the I/O page at [base, base+size).
func (pg *Page) Attach(name string, base uint32, size uint32, device Device) (err error) {
	if base < IOPAGE_BASE || size == 0 || base+size > IOPAGE_BASE+IOPAGE_SIZE {
		err = ErrWindowRange
		return
	}

	for _, win := range pg.windows {
		if base < win.base+win.size && win.base < base+size {
			err = &ErrWindowConflict{Name: name, Other: win.name, Base: base}
			return
		}
	}

	pg.windows = append(pg.windows, window{
		name:   name,
		base:   base,
		size:   size,
		device: device,
	})
	slices.SortFunc(pg.windows, func(a, b window) int {
		return int(a.base) - int(b.base)
	})

	if pg.Verbose {
		log.Printf("iopage: %v at %08o-%08o", name, base, base+size-1)
	}

	return
}

// lookup finds the window containing pa.
func (pg *Page) lookup(pa uint32) (win *window, ok bool) {
	n, found := slices.BinarySearchFunc(pg.windows, pa, func(win window, pa uint32) int {
		return int(win.base) - int(pa)
	})
	if !found {
		n--
	}
	if n < 0 {
		return
	}

	win = &pg.windows[n]
	ok = win.contains(pa)
	return
}

// ReadIo reads a register on the I/O page.
func (pg *Page) ReadIo(pa uint32, access Access) (data uint16, err error) {
	win, ok := pg.lookup(pa)
	if !ok {
		err = ErrNxm
		return
	}

	data, err = win.device.ReadIo(pa, access)
	if pg.Verbose {
		log.Printf("iopage: %v %v %08o => %06o (%v)", win.name, access, pa, data, err)
	}

	return
}

// WriteIo writes a register on the I/O page.
func (pg *Page) WriteIo(pa uint32, data uint16, access Access) (err error) {
	win, ok := pg.lookup(pa)
	if !ok {
		err = ErrNxm
		return
	}

	err = win.device.WriteIo(pa, data, access)
	if pg.Verbose {
		log.Printf("iopage: %v %v %08o <= %06o (%v)", win.name, access, pa, data, err)
	}

	return
}

// Reset all attached devices.
func (pg *Page) Reset() {
	seen := map[Device]bool{}
	for _, win := range pg.windows {
		if seen[win.device] {
			continue
		}
		seen[win.device] = true
		win.device.Reset()
	}
}

// Devices returns an iterator of the device name and base address of
// every window attached to the I/O page.
func (pg *Page) Devices() iter.Seq2[string, uint32] {
	return func(yield func(name string, base uint32) bool) {
		for _, win := range pg.windows {
			if !yield(win.name, win.base) {
				return
			}
		}
	}
}
