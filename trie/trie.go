// Package trie provides exact-match lookup over a fixed set of ASCII byte
// patterns.
//
// A trie answers "is this exact byte string one of the patterns, and which
// one". It is not a substring scanner; see package ahocorasick for that.
//
// Duplicate patterns collapse silently: when the same bytes are given twice,
// lookups resolve to the later one and the earlier entry becomes unreachable
// through Lookup, although it keeps its id in the pattern table.
package trie

import (
	"fmt"

	"github.com/gnolang/acmatch/alphabet"
	"github.com/gnolang/acmatch/internal/arena"
	"github.com/gnolang/acmatch/internal/patterns"
)

// PatternID is the position of a pattern in the construction input.
type PatternID = arena.PatternID

// Entry pairs a pattern with its payload.
type Entry[V any] = patterns.Entry[V]

type inner[V any] struct {
	table *patterns.Table[V]
	nodes *arena.Arena
	ab    *alphabet.Alphabet
}

func construct[V any](entries []Entry[V]) (*inner[V], error) {
	table := patterns.New(entries)
	ps := table.Bytes()
	ab, err := alphabet.Compress(ps)
	if err != nil {
		return nil, fmt.Errorf("trie: %w", err)
	}
	return &inner[V]{
		table: table,
		nodes: arena.Build(ab, ps),
		ab:    ab,
	}, nil
}

func (t *inner[V]) lookup(q []byte) (PatternID, bool) {
	if len(q) == 0 || !t.ab.CanStart(q[0]) {
		return arena.NoPattern, false
	}

	cur := arena.Root
	for _, b := range q {
		code, ok := t.ab.Code(b)
		if !ok {
			return arena.NoPattern, false
		}
		cur = t.nodes.Next(cur, code)
		if cur == arena.NoNode {
			return arena.NoPattern, false
		}
	}

	id := t.nodes.Terminal(cur)
	return id, id != arena.NoPattern
}

// Set is an immutable set of byte patterns.
type Set struct {
	t *inner[struct{}]
}

// NewSet builds a set from patterns. It fails with an
// *alphabet.InvalidSymbolError if any byte is outside 7-bit ASCII.
func NewSet(ps [][]byte) (*Set, error) {
	entries := make([]Entry[struct{}], len(ps))
	for i, p := range ps {
		entries[i].Pattern = p
	}
	t, err := construct(entries)
	if err != nil {
		return nil, err
	}
	return &Set{t: t}, nil
}

// Contains reports whether q is exactly one of the patterns.
func (s *Set) Contains(q []byte) bool {
	_, ok := s.t.lookup(q)
	return ok
}

// Lookup returns the id of the pattern equal to q.
func (s *Set) Lookup(q []byte) (PatternID, bool) {
	return s.t.lookup(q)
}

// Pattern returns the bytes of pattern id.
func (s *Set) Pattern(id PatternID) []byte {
	return s.t.table.Get(int(id)).Pattern
}

// Len returns the number of patterns given at construction, duplicates
// included.
func (s *Set) Len() int {
	return s.t.table.Len()
}

// Fingerprint identifies the ordered pattern sequence.
func (s *Set) Fingerprint() uint64 {
	return s.t.table.Fingerprint()
}

// Map associates each pattern with a value of type V.
type Map[V any] struct {
	t *inner[V]
}

// NewMap builds a map from entries.
func NewMap[V any](entries []Entry[V]) (*Map[V], error) {
	t, err := construct(entries)
	if err != nil {
		return nil, err
	}
	return &Map[V]{t: t}, nil
}

// Get returns the value attached to the pattern equal to q.
func (m *Map[V]) Get(q []byte) (V, bool) {
	id, ok := m.t.lookup(q)
	if !ok {
		var zero V
		return zero, false
	}
	return m.t.table.Get(int(id)).Value, true
}

// Lookup returns the id of the pattern equal to q.
func (m *Map[V]) Lookup(q []byte) (PatternID, bool) {
	return m.t.lookup(q)
}

// Entry returns the pattern and value stored under id.
func (m *Map[V]) Entry(id PatternID) Entry[V] {
	return m.t.table.Get(int(id))
}

func (m *Map[V]) Len() int {
	return m.t.table.Len()
}

func (m *Map[V]) Fingerprint() uint64 {
	return m.t.table.Fingerprint()
}
