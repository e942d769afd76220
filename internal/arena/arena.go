package arena

import (
	"sort"
	"strconv"
	"strings"

	"github.com/gnolang/acmatch/alphabet"
)

/*
Arena-based Node Storage

Both the exact-match trie and the Aho-Corasick automaton keep their states in
one Arena:

 1. Nodes live in a single slice and reference each other by NodeIndex, never
    by pointer. Node 0 is the root. Failure links may point anywhere in the
    arena (ancestors, other subtrees) without creating ownership cycles.

 2. Each node owns a transition table with one slot per alphabet code.
    NoNode marks a missing transition. The automaton later fills every slot.

 3. Each node owns an ordered accept list. Build appends the pattern id of
    every pattern ending at the node; the automaton merges failure targets
    into it. The trie only looks at the last entry.

Nothing in an Arena is mutated after the owning structure is constructed.
*/

// NodeIndex represents the index of a node in the arena.
type NodeIndex int32

// PatternID is the position of a pattern in the construction input.
type PatternID int32

const (
	// Root is the initial state.
	Root NodeIndex = 0
	// NoNode marks an absent transition or link.
	NoNode NodeIndex = -1
	// NoPattern marks a node where no pattern terminates.
	NoPattern PatternID = -1
)

// Arena is a memory pool that stores all nodes.
type Arena struct {
	nodes   []arenaNode
	symbols []byte
}

// arenaNode is the internal representation of a state stored in the arena.
type arenaNode struct {
	// next maps an alphabet code to the target node.
	next []NodeIndex
	// fail is the failure link. Unused by the trie.
	fail NodeIndex
	// accepts lists pattern ids recognised at this node, in insertion order.
	accepts []PatternID
	// parent and code identify the trie edge that created the node.
	parent NodeIndex
	code   alphabet.Code
}

// New creates an arena holding only the root, with transition tables sized
// for ab.
func New(ab *alphabet.Alphabet) *Arena {
	a := &Arena{
		nodes:   make([]arenaNode, 0, 64),
		symbols: ab.Bytes(),
	}
	a.newNode(NoNode, alphabet.Absent)
	return a
}

// Build inserts every pattern into a fresh arena. Pattern ids are positions
// in patterns. Empty patterns take an id but are never attached to a node.
func Build(ab *alphabet.Alphabet, patterns [][]byte) *Arena {
	a := New(ab)
	for i, p := range patterns {
		a.Insert(ab, p, PatternID(i))
	}
	return a
}

// newNode adds a new node to the arena and returns its index.
func (a *Arena) newNode(parent NodeIndex, code alphabet.Code) NodeIndex {
	idx := NodeIndex(len(a.nodes))
	next := make([]NodeIndex, len(a.symbols))
	for i := range next {
		next[i] = NoNode
	}
	a.nodes = append(a.nodes, arenaNode{
		next:   next,
		fail:   Root,
		parent: parent,
		code:   code,
	})
	return idx
}

// Insert walks pattern from the root, allocating nodes for missing
// transitions, and appends id to the final node's accept list. Every byte of
// pattern must belong to ab.
func (a *Arena) Insert(ab *alphabet.Alphabet, pattern []byte, id PatternID) NodeIndex {
	if len(pattern) == 0 {
		return NoNode
	}

	current := Root
	for _, b := range pattern {
		code, _ := ab.Code(b)
		child := a.nodes[current].next[code]
		if child == NoNode {
			child = a.newNode(current, code)
			a.nodes[current].next[code] = child
		}
		current = child
	}

	a.nodes[current].accepts = append(a.nodes[current].accepts, id)
	return current
}

// Len returns the number of nodes.
func (a *Arena) Len() int {
	return len(a.nodes)
}

// Width returns the size of every transition table.
func (a *Arena) Width() int {
	return len(a.symbols)
}

func (a *Arena) Next(n NodeIndex, c alphabet.Code) NodeIndex {
	return a.nodes[n].next[c]
}

func (a *Arena) SetNext(n NodeIndex, c alphabet.Code, to NodeIndex) {
	a.nodes[n].next[c] = to
}

func (a *Arena) Fail(n NodeIndex) NodeIndex {
	return a.nodes[n].fail
}

func (a *Arena) SetFail(n, to NodeIndex) {
	a.nodes[n].fail = to
}

// Accepts returns the node's accept list. Callers must not modify it.
func (a *Arena) Accepts(n NodeIndex) []PatternID {
	acc := a.nodes[n].accepts
	return acc[:len(acc):len(acc)]
}

// Terminal returns the last pattern id inserted at n, or NoPattern.
func (a *Arena) Terminal(n NodeIndex) PatternID {
	acc := a.nodes[n].accepts
	if len(acc) == 0 {
		return NoPattern
	}
	return acc[len(acc)-1]
}

// MergeAccepts appends src's accept list to dst's.
func (a *Arena) MergeAccepts(dst, src NodeIndex) {
	if dst == src || len(a.nodes[src].accepts) == 0 {
		return
	}
	a.nodes[dst].accepts = append(a.nodes[dst].accepts, a.nodes[src].accepts...)
}

// IsChild reports whether to was created by the trie edge (from, c), as
// opposed to a transition added during automaton completion.
func (a *Arena) IsChild(from NodeIndex, c alphabet.Code, to NodeIndex) bool {
	if to == NoNode || to == Root {
		return false
	}
	n := a.nodes[to]
	return n.parent == from && n.code == c
}

// Equal checks whether two arenas hold identical trie structure and accept
// lists. Transitions added after insertion are ignored.
func (a *Arena) Equal(b *Arena) bool {
	if len(a.nodes) != len(b.nodes) {
		return false
	}
	return a.equalNodes(Root, b, Root)
}

// equalNodes recursively compares two nodes (and their subtrees) by symbol.
func (a *Arena) equalNodes(aIdx NodeIndex, b *Arena, bIdx NodeIndex) bool {
	if !equalAccepts(a.nodes[aIdx].accepts, b.nodes[bIdx].accepts) {
		return false
	}

	ac, bc := a.children(aIdx), b.children(bIdx)
	if len(ac) != len(bc) {
		return false
	}
	for i := range ac {
		if ac[i].symbol != bc[i].symbol {
			return false
		}
		if !a.equalNodes(ac[i].node, b, bc[i].node) {
			return false
		}
	}
	return true
}

func equalAccepts(x, y []PatternID) bool {
	if len(x) != len(y) {
		return false
	}
	for i := range x {
		if x[i] != y[i] {
			return false
		}
	}
	return true
}

type edge struct {
	symbol byte
	node   NodeIndex
}

// children lists trie edges of n sorted by byte value.
func (a *Arena) children(n NodeIndex) []edge {
	var out []edge
	for c, to := range a.nodes[n].next {
		if a.IsChild(n, alphabet.Code(c), to) {
			out = append(out, edge{symbol: a.symbols[c], node: to})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].symbol < out[j].symbol })
	return out
}

// String renders the trie part of the arena, e.g. "a(b(*0)c(*1))".
func (a *Arena) String() string {
	var sb strings.Builder
	a.writeNode(&sb, Root)
	return sb.String()
}

func (a *Arena) writeNode(sb *strings.Builder, idx NodeIndex) {
	for _, id := range a.nodes[idx].accepts {
		sb.WriteByte('*')
		sb.WriteString(strconv.Itoa(int(id)))
	}
	for _, e := range a.children(idx) {
		sb.WriteByte(e.symbol)
		sb.WriteByte('(')
		a.writeNode(sb, e.node)
		sb.WriteByte(')')
	}
}
