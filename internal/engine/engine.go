package engine

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"go/token"
	"os"
	"sort"

	"github.com/cespare/xxhash/v2"
	"github.com/gnolang/acmatch/ahocorasick"
	"github.com/gnolang/acmatch/alphabet"
	"github.com/gnolang/acmatch/internal/cache"
	"github.com/gnolang/acmatch/internal/discover"
	"github.com/gnolang/acmatch/internal/suppress"
	tt "github.com/gnolang/acmatch/internal/types"
	"github.com/gnolang/acmatch/trie"
)

// Engine scans files for the configured patterns.
type Engine struct {
	rules        []tt.PatternRule
	automaton    *ahocorasick.Automaton
	exact        *trie.Map[int]
	ignoredPaths []string
	cache        *cache.Cache

	directives bool
}

// New builds the automaton and the exact-match index for rules.
func New(rules []tt.PatternRule, opts ...ahocorasick.Option) (*Engine, error) {
	ps := make([][]byte, len(rules))
	entries := make([]trie.Entry[int], len(rules))
	for i, r := range rules {
		ps[i] = []byte(r.Pattern)
		entries[i] = trie.Entry[int]{Pattern: ps[i], Value: i}
	}

	automaton, err := ahocorasick.New(ps, opts...)
	if err != nil {
		return nil, describeInvalid(rules, err)
	}
	exact, err := trie.NewMap(entries)
	if err != nil {
		return nil, describeInvalid(rules, err)
	}

	return &Engine{
		rules:      rules,
		automaton:  automaton,
		exact:      exact,
		directives: true,
	}, nil
}

// describeInvalid names the first rule holding the offending byte.
func describeInvalid(rules []tt.PatternRule, err error) error {
	var symErr *alphabet.InvalidSymbolError
	if !errors.As(err, &symErr) {
		return err
	}
	for i, r := range rules {
		if bytes.IndexByte([]byte(r.Pattern), symErr.Byte) >= 0 {
			return fmt.Errorf("pattern #%d %q: %w", i, r.Pattern, err)
		}
	}
	return err
}

// SetCache enables result caching for Run.
func (e *Engine) SetCache(c *cache.Cache) {
	e.cache = c
}

// HonorDirectives enables or disables inline suppression directives.
func (e *Engine) HonorDirectives(enabled bool) {
	e.directives = enabled
}

// IgnorePath makes Run return no matches for path and anything below it.
func (e *Engine) IgnorePath(path string) {
	e.ignoredPaths = append(e.ignoredPaths, path)
}

// Fingerprint identifies everything that shapes RunSource output for a given
// input: the ordered patterns, their labels and whether directives apply.
func (e *Engine) Fingerprint() uint64 {
	d := xxhash.New()
	var n [8]byte
	binary.LittleEndian.PutUint64(n[:], e.automaton.Fingerprint())
	_, _ = d.Write(n[:])
	for _, r := range e.rules {
		label := labelOf(r)
		binary.LittleEndian.PutUint64(n[:], uint64(len(label)))
		_, _ = d.Write(n[:])
		_, _ = d.WriteString(label)
	}
	if e.directives {
		_, _ = d.Write([]byte{1})
	} else {
		_, _ = d.Write([]byte{0})
	}
	return d.Sum64()
}

// Rules returns the configured rules in id order.
func (e *Engine) Rules() []tt.PatternRule {
	return e.rules
}

// Run scans the file at filename.
func (e *Engine) Run(filename string) ([]tt.Match, error) {
	if discover.IsIgnored(filename, e.ignoredPaths) {
		return nil, nil
	}

	fp := e.Fingerprint()
	if e.cache != nil {
		if matches, ok := e.cache.Get(filename, fp); ok {
			return matches, nil
		}
	}

	source, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}

	matches := e.RunSource(filename, source)

	if e.cache != nil {
		e.cache.SetHash(filename, xxhash.Sum64(source), fp, matches)
	}

	return matches, nil
}

// RunSource scans source, attributing matches to filename.
func (e *Engine) RunSource(filename string, source []byte) []tt.Match {
	found := e.automaton.Scan(source)
	if len(found) == 0 {
		return nil
	}

	var directives *suppress.Manager
	if e.directives {
		directives = suppress.Parse(source)
	}

	lines := lineStarts(source)
	matches := make([]tt.Match, 0, len(found))
	for _, m := range found {
		rule := e.rules[m.Pattern]
		match := tt.Match{
			ID:       int(m.Pattern),
			Pattern:  rule.Pattern,
			Label:    labelOf(rule),
			Filename: filename,
			Start:    position(filename, lines, m.Start),
			End:      position(filename, lines, m.End),
		}
		if directives != nil && directives.IsSuppressed(match.Start.Line, match.Label) {
			continue
		}
		matches = append(matches, match)
	}
	if len(matches) == 0 {
		return nil
	}
	return matches
}

// Lookup returns the rule whose pattern is exactly q.
func (e *Engine) Lookup(q []byte) (tt.PatternRule, bool) {
	idx, ok := e.exact.Get(q)
	if !ok {
		return tt.PatternRule{}, false
	}
	return e.rules[idx], true
}

func labelOf(r tt.PatternRule) string {
	if r.Label != "" {
		return r.Label
	}
	return r.Pattern
}

func lineStarts(source []byte) []int {
	starts := []int{0}
	for i, b := range source {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

func position(filename string, starts []int, offset int) token.Position {
	line := sort.Search(len(starts), func(i int) bool { return starts[i] > offset }) - 1
	return token.Position{
		Filename: filename,
		Offset:   offset,
		Line:     line + 1,
		Column:   offset - starts[line] + 1,
	}
}

// SaveCache persists cached results, if caching is enabled.
func (e *Engine) SaveCache() error {
	if e.cache == nil {
		return nil
	}
	return e.cache.Save()
}
