package types

import "go/token"

// Match represents a pattern occurrence found in a scanned file.
type Match struct {
	ID       int
	Pattern  string
	Label    string
	Filename string
	Start    token.Position
	End      token.Position
}

// PatternRule is one configured pattern and the label reported for it.
type PatternRule struct {
	Pattern string `yaml:"pattern" json:"pattern"`
	Label   string `yaml:"label,omitempty" json:"label,omitempty"`
}
