package ahocorasick

import (
	"errors"
	"io"
	"iter"

	"github.com/gnolang/acmatch/internal/arena"
)

// Match is one occurrence of a pattern: text[Start:End] equals the pattern.
type Match struct {
	Pattern PatternID
	Start   int
	End     int
}

// Scanner feeds bytes through an automaton one at a time.
type Scanner struct {
	a   *Automaton
	cur arena.NodeIndex
	pos int
	buf []PatternID
}

// Scanner returns a cursor positioned at the root state.
func (a *Automaton) Scanner() *Scanner {
	return &Scanner{a: a}
}

// Reset returns the scanner to the root state and offset zero.
func (s *Scanner) Reset() {
	s.cur = arena.Root
	s.pos = 0
}

// Offset is the number of bytes consumed since the last Reset.
func (s *Scanner) Offset() int {
	return s.pos
}

// Step consumes b and returns the ids of patterns ending at it. A byte that
// no pattern uses resets the scanner to the root state. The returned slice
// must not be modified and is only valid until the next call.
func (s *Scanner) Step(b byte) []PatternID {
	s.pos++
	code, ok := s.a.ab.Code(b)
	if !ok {
		s.cur = arena.Root
		return nil
	}
	s.cur = s.a.nodes.Next(s.cur, code)
	if !s.a.lazy {
		return s.a.nodes.Accepts(s.cur)
	}
	s.buf = s.a.accepts(s.cur, s.buf[:0])
	return s.buf
}

// feed steps through p and calls fn for every match ending inside it.
// Offsets continue across calls.
func (s *Scanner) feed(p []byte, fn func(Match) bool) bool {
	for _, b := range p {
		ids := s.Step(b)
		for _, id := range ids {
			end := s.pos
			if !fn(Match{Pattern: id, Start: end - len(s.a.Pattern(id)), End: end}) {
				return false
			}
		}
	}
	return true
}

// Scan returns every match in text ordered by end position, then by the
// order ids are recorded at the ending state.
func (a *Automaton) Scan(text []byte) []Match {
	var out []Match
	a.Scanner().feed(text, func(m Match) bool {
		out = append(out, m)
		return true
	})
	return out
}

// Positions returns, for every byte of text, the ids of patterns whose
// occurrence ends at that byte. Positions with no match hold nil.
func (a *Automaton) Positions(text []byte) [][]PatternID {
	out := make([][]PatternID, len(text))
	s := a.Scanner()
	for i, b := range text {
		if ids := s.Step(b); len(ids) > 0 {
			out[i] = append([]PatternID(nil), ids...)
		}
	}
	return out
}

// All yields (position, ids) for each byte of text where at least one
// pattern ends. The ids slice must not be retained past the yield.
func (a *Automaton) All(text []byte) iter.Seq2[int, []PatternID] {
	return func(yield func(int, []PatternID) bool) {
		s := a.Scanner()
		for i, b := range text {
			ids := s.Step(b)
			if len(ids) == 0 {
				continue
			}
			if !yield(i, ids) {
				return
			}
		}
	}
}

// Contains reports whether any pattern occurs in text.
func (a *Automaton) Contains(text []byte) bool {
	s := a.Scanner()
	for _, b := range text {
		if len(s.Step(b)) > 0 {
			return true
		}
	}
	return false
}

// ScanReader streams r through the automaton and calls fn for every match.
// Scanning stops early when fn returns false.
func (a *Automaton) ScanReader(r io.Reader, fn func(Match) bool) error {
	s := a.Scanner()
	buf := make([]byte, 32*1024)
	for {
		n, err := r.Read(buf)
		if n > 0 && !s.feed(buf[:n], fn) {
			return nil
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}
