package cmd

import (
	"errors"
	"io/fs"

	"github.com/gnolang/acmatch/internal/config"
	"github.com/gnolang/acmatch/internal/engine"
	tt "github.com/gnolang/acmatch/internal/types"
	"github.com/gnolang/acmatch/scan"
	"go.uber.org/zap"
)

// loadConfig reads the configuration at path. A missing file at the default
// path yields config.Default().
func loadConfig(path string) (config.Config, error) {
	cfg, err := config.Load(path)
	if errors.Is(err, fs.ErrNotExist) && path == config.DefaultPath {
		logger.Debug("No configuration file, using defaults", zap.String("path", path))
		return config.Default(), nil
	}
	return cfg, err
}

// newEngine builds the engine for the configuration at path. Patterns given
// on the command line replace the configured ones.
func newEngine(path string, patterns []string, lazy bool, useCache bool) (*engine.Engine, config.Config, error) {
	cfg, err := loadConfig(path)
	if err != nil {
		return nil, cfg, err
	}

	if len(patterns) > 0 {
		cfg.Patterns = make([]tt.PatternRule, len(patterns))
		for i, p := range patterns {
			cfg.Patterns[i] = tt.PatternRule{Pattern: p}
		}
		cfg.PatternFiles = nil
	}
	if lazy {
		cfg.LazyAccepts = true
	}

	eng, err := scan.NewFromConfig(cfg, useCache)
	if err != nil {
		return nil, cfg, err
	}
	logger.Debug("Engine ready",
		zap.Int("patterns", len(eng.Rules())),
		zap.Uint64("fingerprint", eng.Fingerprint()))

	return eng, cfg, nil
}
