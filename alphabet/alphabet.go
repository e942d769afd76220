// Package alphabet compresses the byte values used by a pattern set into a
// dense code space shared by the trie and the Aho-Corasick automaton.
//
// Codes are assigned in order of first appearance across all patterns, so a
// pattern set over {'b', 'a'} maps 'b' to 0 and 'a' to 1. Bytes that never
// appear in any pattern map to Absent.
package alphabet

import (
	"errors"
	"fmt"
)

// MaxSymbol is the exclusive upper bound of accepted byte values (7-bit ASCII).
const MaxSymbol = 128

// Code is the compact index of a byte value within the alphabet.
type Code uint8

// Absent marks a byte value that does not belong to the alphabet.
const Absent Code = 0xff

// ErrInvalidSymbol is wrapped by every InvalidSymbolError.
var ErrInvalidSymbol = errors.New("invalid symbol")

// InvalidSymbolError reports a pattern byte outside [0, MaxSymbol).
type InvalidSymbolError struct {
	Byte byte
}

func (e *InvalidSymbolError) Error() string {
	return fmt.Sprintf("invalid byte: 0x%02x", e.Byte)
}

func (e *InvalidSymbolError) Unwrap() error {
	return ErrInvalidSymbol
}

// Alphabet maps raw byte values to compact codes. It is immutable once built.
type Alphabet struct {
	codes   [MaxSymbol]Code
	initial [MaxSymbol]bool
	symbols []byte
}

// Compress scans every pattern once and assigns codes in first-seen order,
// then records which bytes start at least one pattern. It fails on the first
// byte at or above MaxSymbol.
func Compress(patterns [][]byte) (*Alphabet, error) {
	ab := &Alphabet{}
	for i := range ab.codes {
		ab.codes[i] = Absent
	}

	for _, p := range patterns {
		for _, b := range p {
			if b >= MaxSymbol {
				return nil, &InvalidSymbolError{Byte: b}
			}
			if ab.codes[b] == Absent {
				ab.codes[b] = Code(len(ab.symbols))
				ab.symbols = append(ab.symbols, b)
			}
		}
	}

	for _, p := range patterns {
		if len(p) > 0 {
			ab.initial[p[0]] = true
		}
	}

	return ab, nil
}

// Code returns the compact code of b. The boolean is false when b is outside
// the alphabet, including every byte at or above MaxSymbol.
func (a *Alphabet) Code(b byte) (Code, bool) {
	if b >= MaxSymbol {
		return Absent, false
	}
	c := a.codes[b]
	return c, c != Absent
}

// Size returns the number of distinct codes.
func (a *Alphabet) Size() int {
	return len(a.symbols)
}

// CanStart reports whether b is the first byte of some pattern.
func (a *Alphabet) CanStart(b byte) bool {
	return b < MaxSymbol && a.initial[b]
}

// Symbol returns the byte value assigned to c.
func (a *Alphabet) Symbol(c Code) byte {
	return a.symbols[c]
}

// Bytes returns the alphabet in code order.
func (a *Alphabet) Bytes() []byte {
	out := make([]byte, len(a.symbols))
	copy(out, a.symbols)
	return out
}
