// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package io

import (
	"io"
	"iter"
)

const (
	MEMORY_64K  = uint32(0200000)   // 16-bit systems
	MEMORY_256K = uint32(01000000)  // 18-bit systems
	MEMORY_4M   = uint32(020000000) // 22-bit systems
)

// Memory is word organized physical memory.
// All addresses are byte addresses; word references ignore bit 0.
type Memory struct {
	Data []uint16
}

// NewMemory creates a new memory of size bytes, rounded down to a
// multiple of 2KB.
func NewMemory(size uint32) (mem *Memory, err error) {
	size &^= 03777
	if size == 0 || size > MEMORY_4M {
		err = ErrMemorySize
		return
	}

	mem = &Memory{
		Data: make([]uint16, size>>1),
	}

	return
}

// Size returns the size of memory in bytes.
func (mem *Memory) Size() uint32 {
	return uint32(len(mem.Data)) << 1
}

// ReadWord reads the word containing physical address pa.
func (mem *Memory) ReadWord(pa uint32) uint16 {
	return mem.Data[pa>>1]
}

// ReadByte reads the byte at physical address pa.
func (mem *Memory) ReadByte(pa uint32) uint8 {
	return uint8(mem.Data[pa>>1] >> ((pa & 1) << 3))
}

// WriteWord writes the word containing physical address pa.
func (mem *Memory) WriteWord(pa uint32, data uint16) {
	mem.Data[pa>>1] = data
}

// WriteByte writes the byte at physical address pa.
func (mem *Memory) WriteByte(pa uint32, data uint8) {
	word := &mem.Data[pa>>1]
	if (pa & 1) != 0 {
		*word = (*word & 0377) | (uint16(data) << 8)
	} else {
		*word = (*word &^ 0377) | uint16(data)
	}
}

// Clear zeros all of memory.
func (mem *Memory) Clear() {
	clear(mem.Data)
}

// Load copies a little-endian word image into memory at pa.
// Loading stops silently at the end of memory.
func (mem *Memory) Load(pa uint32, image io.Reader) (words int, err error) {
	for word := range ReceiveAsUint16(image, &err) {
		if pa >= mem.Size() {
			break
		}
		mem.WriteWord(pa, word)
		pa += 2
		words++
	}

	return
}

// ReceiveAsUint16 returns an iterator that reads a byte stream and yields
// little-endian 16-bit words. A trailing odd byte is reported in errp
// as ErrImageOddSize.
func ReceiveAsUint16(in io.Reader, errp *error) iter.Seq[uint16] {
	return func(yield func(value uint16) bool) {
		var pair [2]byte
		for {
			n, err := io.ReadFull(in, pair[:])
			if n == 1 && err == io.ErrUnexpectedEOF {
				*errp = ErrImageOddSize
				return
			}
			if err != nil {
				if err != io.EOF {
					*errp = err
				}
				return
			}
			if !yield(uint16(pair[0]) | (uint16(pair[1]) << 8)) {
				return
			}
		}
	}
}
