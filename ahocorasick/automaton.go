// Package ahocorasick finds every occurrence of a fixed set of ASCII byte
// patterns in a text in a single left-to-right pass.
//
// The automaton is built once from the patterns and never changes afterwards,
// so one *Automaton can serve any number of goroutines. Scanning state lives
// in a Scanner, which is not safe for concurrent use.
//
// When the same pattern is given more than once, every copy keeps its own id
// and all of them are reported at each occurrence.
package ahocorasick

import (
	"fmt"

	"github.com/gnolang/acmatch/alphabet"
	"github.com/gnolang/acmatch/internal/arena"
	"github.com/gnolang/acmatch/internal/patterns"
)

// PatternID is the position of a pattern in the construction input.
type PatternID = arena.PatternID

// Automaton is a deterministic Aho-Corasick automaton with a total
// transition function.
type Automaton struct {
	table *patterns.Table[struct{}]
	nodes *arena.Arena
	ab    *alphabet.Alphabet
	lazy  bool
}

// New builds an automaton over ps. It fails with an
// *alphabet.InvalidSymbolError when a pattern contains a byte outside 7-bit
// ASCII; no partial automaton is returned in that case.
//
// Empty patterns keep their id but never match.
func New(ps [][]byte, opts ...Option) (*Automaton, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	table := patterns.FromBytes(ps)
	ab, err := alphabet.Compress(table.Bytes())
	if err != nil {
		return nil, fmt.Errorf("ahocorasick: %w", err)
	}

	nodes := arena.Build(ab, table.Bytes())
	link(nodes, !o.lazyAccepts)

	return &Automaton{
		table: table,
		nodes: nodes,
		ab:    ab,
		lazy:  o.lazyAccepts,
	}, nil
}

// link completes the goto function and sets failure links breadth-first.
// With merge set, each node's accept list also receives the accept list of
// its failure target.
func link(nodes *arena.Arena, merge bool) {
	width := nodes.Width()
	queue := make([]arena.NodeIndex, 0, nodes.Len())

	for c := range width {
		code := alphabet.Code(c)
		child := nodes.Next(arena.Root, code)
		if child == arena.NoNode {
			nodes.SetNext(arena.Root, code, arena.Root)
			continue
		}
		nodes.SetFail(child, arena.Root)
		queue = append(queue, child)
	}

	// Nodes are dequeued in depth order, so a failure target is always
	// complete before anything that links to it is processed.
	for head := 0; head < len(queue); head++ {
		cur := queue[head]
		for c := range width {
			code := alphabet.Code(c)
			nxt := nodes.Next(cur, code)
			if nxt == arena.NoNode {
				nodes.SetNext(cur, code, nodes.Next(nodes.Fail(cur), code))
				continue
			}
			queue = append(queue, nxt)

			f := nodes.Fail(cur)
			for nodes.Next(f, code) == arena.NoNode {
				f = nodes.Fail(f)
			}
			target := nodes.Next(f, code)
			nodes.SetFail(nxt, target)
			if merge {
				nodes.MergeAccepts(nxt, target)
			}
		}
	}
}

// Pattern returns the bytes of pattern id.
func (a *Automaton) Pattern(id PatternID) []byte {
	return a.table.Get(int(id)).Pattern
}

// Len returns the number of patterns, duplicates and empty patterns included.
func (a *Automaton) Len() int {
	return a.table.Len()
}

// States returns the number of automaton states, root included.
func (a *Automaton) States() int {
	return a.nodes.Len()
}

// AlphabetSize returns the number of distinct bytes used by the patterns.
func (a *Automaton) AlphabetSize() int {
	return a.ab.Size()
}

// Fingerprint identifies the ordered pattern sequence.
func (a *Automaton) Fingerprint() uint64 {
	return a.table.Fingerprint()
}

// accepts appends the ids recognised at n to dst.
func (a *Automaton) accepts(n arena.NodeIndex, dst []PatternID) []PatternID {
	if !a.lazy {
		return append(dst, a.nodes.Accepts(n)...)
	}
	for ; n != arena.Root; n = a.nodes.Fail(n) {
		dst = append(dst, a.nodes.Accepts(n)...)
	}
	return dst
}
