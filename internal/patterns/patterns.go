// Package patterns holds the ordered pattern table owned by a built trie or
// automaton.
package patterns

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// Entry is one pattern and its payload.
type Entry[V any] struct {
	Pattern []byte
	Value   V
}

// Table is indexed by pattern id, the position of the entry in the
// construction input. It is read-only after New returns.
type Table[V any] struct {
	entries []Entry[V]
}

// New copies entries into a table.
func New[V any](entries []Entry[V]) *Table[V] {
	t := &Table[V]{entries: make([]Entry[V], len(entries))}
	for i, e := range entries {
		p := make([]byte, len(e.Pattern))
		copy(p, e.Pattern)
		t.entries[i] = Entry[V]{Pattern: p, Value: e.Value}
	}
	return t
}

// FromBytes builds a payload-free table.
func FromBytes(ps [][]byte) *Table[struct{}] {
	entries := make([]Entry[struct{}], len(ps))
	for i, p := range ps {
		entries[i].Pattern = p
	}
	return New(entries)
}

func (t *Table[V]) Len() int {
	return len(t.entries)
}

// Get returns the entry for id. It panics if id is out of range.
func (t *Table[V]) Get(id int) Entry[V] {
	return t.entries[id]
}

// Bytes returns the pattern bytes in id order. The slices alias the table.
func (t *Table[V]) Bytes() [][]byte {
	out := make([][]byte, len(t.entries))
	for i, e := range t.entries {
		out[i] = e.Pattern
	}
	return out
}

// Fingerprint hashes the ordered pattern bytes. Payloads are not included.
func (t *Table[V]) Fingerprint() uint64 {
	d := xxhash.New()
	var n [8]byte
	for _, e := range t.entries {
		binary.LittleEndian.PutUint64(n[:], uint64(len(e.Pattern)))
		_, _ = d.Write(n[:])
		_, _ = d.Write(e.Pattern)
	}
	return d.Sum64()
}
