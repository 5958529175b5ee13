// Package internal holds helpers shared by the emulator packages.
package internal

import (
	"iter"
)

// ConcatDefines joins sequences of expression defines into one. A name
// is yielded once, with the value of the first sequence defining it.
func ConcatDefines(seqs ...iter.Seq2[string, string]) iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		seen := map[string]bool{}
		for _, seq := range seqs {
			for name, value := range seq {
				if seen[name] {
					continue
				}
				seen[name] = true
				if !yield(name, value) {
					return
				}
			}
		}
	}
}
