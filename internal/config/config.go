package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tt "github.com/gnolang/acmatch/internal/types"
	"gopkg.in/yaml.v3"
)

// DefaultPath is used when no configuration path is given.
const DefaultPath = ".acmatch.yaml"

// Config represents the overall configuration with a name and the pattern set.
type Config struct {
	Name              string           `yaml:"name"`
	Patterns          []tt.PatternRule `yaml:"patterns"`
	PatternFiles      []string         `yaml:"pattern_files,omitempty"`
	Extensions        []string         `yaml:"extensions,omitempty"`
	IgnorePaths       []string         `yaml:"ignore_paths,omitempty"`
	LazyAccepts       bool             `yaml:"lazy_accepts,omitempty"`
	DisableDirectives bool             `yaml:"disable_directives,omitempty"`
	CacheDir          string           `yaml:"cache_dir,omitempty"`

	// dir is the directory of the file the config was read from.
	dir string
}

// Default returns the configuration written by `acmatch init`.
func Default() Config {
	return Config{
		Name: "acmatch",
		Patterns: []tt.PatternRule{
			{Pattern: "TODO", Label: "todo"},
			{Pattern: "FIXME", Label: "fixme"},
		},
		Extensions: []string{".go", ".md", ".txt"},
	}
}

// Load reads and decodes the YAML configuration at path.
func Load(path string) (Config, error) {
	var config Config

	f, err := os.Open(path)
	if err != nil {
		return config, err
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)
	if err := decoder.Decode(&config); err != nil {
		return config, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	config.dir = filepath.Dir(path)

	return config, nil
}

// Write encodes config as YAML into path, replacing any existing file.
func Write(path string, config Config) error {
	d, err := yaml.Marshal(config)
	if err != nil {
		return err
	}
	return os.WriteFile(path, d, 0o644)
}

// Rules returns the inline patterns followed by the patterns of every
// pattern file. Relative pattern files resolve against the config's directory.
func (c Config) Rules() ([]tt.PatternRule, error) {
	rules := make([]tt.PatternRule, 0, len(c.Patterns))
	rules = append(rules, c.Patterns...)

	for _, name := range c.PatternFiles {
		path := name
		if !filepath.IsAbs(path) && c.dir != "" {
			path = filepath.Join(c.dir, path)
		}
		fileRules, err := ReadPatternFile(path)
		if err != nil {
			return nil, err
		}
		rules = append(rules, fileRules...)
	}

	return rules, nil
}

// ReadPatternFile reads one pattern per line. Blank lines and lines starting
// with '#' are skipped. A tab separates an optional label from the pattern;
// otherwise the label is the file's base name without extension.
func ReadPatternFile(path string) ([]tt.PatternRule, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pattern file: %w", err)
	}
	defer f.Close()

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	var rules []tt.PatternRule
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}
		rule := tt.PatternRule{Pattern: line, Label: base}
		if pattern, label, ok := strings.Cut(line, "\t"); ok {
			rule = tt.PatternRule{Pattern: pattern, Label: label}
		}
		rules = append(rules, rule)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read pattern file %s: %w", path, err)
	}

	return rules, nil
}
