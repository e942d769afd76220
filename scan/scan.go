package scan

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"sync"

	"github.com/gnolang/acmatch/ahocorasick"
	"github.com/gnolang/acmatch/internal/cache"
	"github.com/gnolang/acmatch/internal/config"
	"github.com/gnolang/acmatch/internal/discover"
	"github.com/gnolang/acmatch/internal/engine"
	tt "github.com/gnolang/acmatch/internal/types"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
)

type ScanEngine interface {
	Run(filePath string) ([]tt.Match, error)
	RunSource(name string, source []byte) []tt.Match
	IgnorePath(path string)
}

// Source is an in-memory input such as stdin.
type Source struct {
	Name string
	Data []byte
}

// Options controls how paths are expanded and processed.
type Options struct {
	Extensions []string
	Ignore     []string
	// Workers bounds concurrent files; zero means runtime.NumCPU().
	Workers int
	// Progress receives the progress bar. Nil disables it.
	Progress io.Writer
}

// New loads the configuration at configurationPath and builds an engine for
// it. The cache is attached when the configuration names a cache directory
// and useCache is set.
func New(configurationPath string, useCache bool) (*engine.Engine, config.Config, error) {
	cfg, err := config.Load(configurationPath)
	if err != nil {
		return nil, cfg, err
	}

	e, err := NewFromConfig(cfg, useCache)
	return e, cfg, err
}

// NewFromConfig builds an engine from an already loaded configuration.
func NewFromConfig(cfg config.Config, useCache bool) (*engine.Engine, error) {
	rules, err := cfg.Rules()
	if err != nil {
		return nil, err
	}

	var opts []ahocorasick.Option
	if cfg.LazyAccepts {
		opts = append(opts, ahocorasick.WithLazyAccepts())
	}

	e, err := engine.New(rules, opts...)
	if err != nil {
		return nil, err
	}

	for _, p := range cfg.IgnorePaths {
		e.IgnorePath(p)
	}
	e.HonorDirectives(!cfg.DisableDirectives)

	if useCache && cfg.CacheDir != "" {
		c, err := cache.NewCache(cfg.CacheDir)
		if err != nil {
			return nil, err
		}
		e.SetCache(c)
	}

	return e, nil
}

func ProcessSources(
	ctx context.Context,
	logger *zap.Logger,
	eng ScanEngine,
	sources []Source,
	processor func(ScanEngine, Source) ([]tt.Match, error),
) ([]tt.Match, error) {
	var allMatches []tt.Match
	for i, source := range sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		matches, err := processor(eng, source)
		if err != nil {
			if logger != nil {
				logger.Error("Error processing source", zap.Int("source", i), zap.Error(err))
			}
			return nil, err
		}
		allMatches = append(allMatches, matches...)
	}

	return allMatches, nil
}

func ProcessFiles(
	ctx context.Context,
	logger *zap.Logger,
	eng ScanEngine,
	paths []string,
	opts Options,
	processor func(ScanEngine, string) ([]tt.Match, error),
) ([]tt.Match, error) {
	var allMatches []tt.Match
	for _, path := range paths {
		matches, err := ProcessPath(ctx, logger, eng, path, opts, processor)
		if err != nil {
			if logger != nil {
				logger.Error("Error processing path", zap.String("path", path), zap.Error(err))
			}
			return nil, err
		}
		allMatches = append(allMatches, matches...)
	}

	return allMatches, nil
}

// ProcessPath scans path, or every target file below it when it is a
// directory. Files that fail are logged and skipped. Results keep the sorted
// file order regardless of which worker finishes first.
func ProcessPath(
	ctx context.Context,
	logger *zap.Logger,
	eng ScanEngine,
	path string,
	opts Options,
	processor func(ScanEngine, string) ([]tt.Match, error),
) ([]tt.Match, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("error accessing %s: %w", path, err)
	}

	if !info.IsDir() {
		if discover.IsIgnored(path, opts.Ignore) {
			return nil, nil
		}
		return processor(eng, path)
	}

	files, err := discover.New(path, opts.Extensions...).Ignore(opts.Ignore...).Walk()
	if err != nil {
		return nil, fmt.Errorf("error walking %s: %w", path, err)
	}

	progress := opts.Progress
	if progress == nil {
		progress = io.Discard
	}
	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetWriter(progress),
		progressbar.OptionSetDescription(path),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))

	// limit the number of workers
	maxWorkers := opts.Workers
	if maxWorkers <= 0 {
		maxWorkers = runtime.NumCPU()
	}
	sem := make(chan struct{}, maxWorkers)

	results := make([][]tt.Match, len(files))
	var wg sync.WaitGroup

	for i, file := range files {
		if err := ctx.Err(); err != nil {
			wg.Wait()
			return nil, err
		}
		select {
		case <-ctx.Done():
			wg.Wait()
			return nil, ctx.Err()
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(i int, fp string) {
			defer wg.Done()
			defer func() { <-sem }()

			fileMatches, err := processor(eng, fp)
			if err != nil {
				if logger != nil {
					logger.Error("Error processing file", zap.String("file", fp), zap.Error(err))
				}
			} else {
				results[i] = fileMatches
			}
			_ = bar.Add(1)
		}(i, file.Path)
	}
	wg.Wait()
	_ = bar.Finish()

	var matches []tt.Match
	for _, r := range results {
		matches = append(matches, r...)
	}
	return matches, nil
}

func ProcessFile(eng ScanEngine, filePath string) ([]tt.Match, error) {
	return eng.Run(filePath)
}

func ProcessSource(eng ScanEngine, source Source) ([]tt.Match, error) {
	return eng.RunSource(source.Name, source.Data), nil
}
