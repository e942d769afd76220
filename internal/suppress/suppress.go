package suppress

import (
	"bytes"
	"strings"
)

const (
	directive     = "acmatch:ignore"
	fileDirective = directive + "-file"
)

// commentLeaders may precede a directive on a line of its own.
var commentLeaders = []string{"//", "/*", "<!--", "#", "--", ";"}

// Manager records the suppressed line ranges of one source.
type Manager struct {
	scopes []scope
}

// scope is a range of lines where matches are suppressed.
type scope struct {
	// labels is empty when every label is suppressed.
	labels map[string]struct{}
	start  int
	// end is zero for a file-wide scope.
	end int
}

// Parse finds the suppression directives in src.
//
//	acmatch:ignore             this line, or the next one when the directive stands alone
//	acmatch:ignore:todo,fixme  only the listed labels
//	acmatch:ignore-file        the whole source
func Parse(src []byte) *Manager {
	m := &Manager{}
	line := 1
	for len(src) > 0 {
		text := src
		rest := []byte(nil)
		if i := bytes.IndexByte(src, '\n'); i >= 0 {
			text, rest = src[:i], src[i+1:]
		}
		if s, ok := parseLine(string(text), line); ok {
			m.scopes = append(m.scopes, s)
		}
		src = rest
		line++
	}
	return m
}

func parseLine(text string, line int) (scope, bool) {
	idx := strings.Index(text, directive)
	if idx < 0 {
		return scope{}, false
	}
	before, after := text[:idx], text[idx+len(directive):]

	var s scope
	if strings.HasPrefix(after, "-file") {
		after = after[len("-file"):]
		s.start = 1
	} else {
		s.start = line
		s.end = line
		if isStandalone(before) {
			s.end = line + 1
		}
	}

	labels, ok := parseLabels(after)
	if !ok {
		return scope{}, false
	}
	s.labels = labels
	return s, true
}

// parseLabels reads an optional ":a,b" list following a directive.
func parseLabels(rest string) (map[string]struct{}, bool) {
	labels := make(map[string]struct{})
	if rest == "" || rest[0] == ' ' || rest[0] == '\t' || rest[0] == '\r' || strings.HasPrefix(rest, "*/") || strings.HasPrefix(rest, "-->") {
		return labels, true
	}
	if rest[0] != ':' {
		return nil, false
	}
	list := rest[1:]
	if end := strings.IndexAny(list, " \t\r"); end >= 0 {
		list = list[:end]
	}
	for _, label := range strings.Split(list, ",") {
		label = strings.TrimSpace(label)
		if label != "" {
			labels[label] = struct{}{}
		}
	}
	if len(labels) == 0 {
		return nil, false
	}
	return labels, true
}

func isStandalone(before string) bool {
	before = strings.TrimSpace(before)
	for _, leader := range commentLeaders {
		if strings.HasSuffix(before, leader) {
			before = strings.TrimSpace(strings.TrimSuffix(before, leader))
			break
		}
	}
	return before == ""
}

// IsSuppressed reports whether a match with label on line is silenced.
func (m *Manager) IsSuppressed(line int, label string) bool {
	for _, s := range m.scopes {
		if line < s.start || (s.end != 0 && line > s.end) {
			continue
		}
		// If the labels list is empty, the directive applies to all labels
		if len(s.labels) == 0 {
			return true
		}
		if _, ok := s.labels[label]; ok {
			return true
		}
	}
	return false
}

// Len returns the number of directives found.
func (m *Manager) Len() int {
	return len(m.scopes)
}
