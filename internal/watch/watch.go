package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gnolang/acmatch/internal/discover"
	tt "github.com/gnolang/acmatch/internal/types"
	"go.uber.org/zap"
)

const defaultDelay = 100 * time.Millisecond

var ErrAlreadyWatching = errors.New("already watching")

// Runner scans a single file.
type Runner interface {
	Run(filename string) ([]tt.Match, error)
}

// ReportFunc receives the matches of a rescanned file.
type ReportFunc func(filename string, matches []tt.Match)

// Watcher rescans files below a set of directories whenever they are written.
// Writes arriving within the delay are coalesced into one scan per file.
type Watcher struct {
	runner     Runner
	logger     *zap.Logger
	report     ReportFunc
	extensions []string
	ignore     []string
	delay      time.Duration

	watcher  *fsnotify.Watcher
	watching bool
}

type Option func(*Watcher)

// WithExtensions limits rescans to files with one of exts.
func WithExtensions(exts ...string) Option {
	return func(w *Watcher) { w.extensions = exts }
}

func WithIgnore(paths ...string) Option {
	return func(w *Watcher) { w.ignore = paths }
}

// WithDelay sets how long a file must stay quiet before it is rescanned.
func WithDelay(d time.Duration) Option {
	return func(w *Watcher) { w.delay = d }
}

func New(runner Runner, logger *zap.Logger, report ReportFunc, opts ...Option) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("error creating watcher: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	w := &Watcher{
		runner:  runner,
		logger:  logger,
		report:  report,
		delay:   defaultDelay,
		watcher: fw,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Add registers dir and every directory below it.
func (w *Watcher) Add(dirs ...string) error {
	for _, dir := range dirs {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() {
				return nil
			}
			if path != dir && discover.IsIgnored(path, w.ignore) {
				return filepath.SkipDir
			}
			return w.watcher.Add(path)
		})
		if err != nil {
			return fmt.Errorf("error adding directory to watcher: %w", err)
		}
	}
	return nil
}

// Run processes file events until ctx is done, then closes the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	if w.watching {
		return ErrAlreadyWatching
	}
	w.watching = true
	defer w.watcher.Close()

	pending := make(map[string]struct{})
	timer := time.NewTimer(w.delay)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.isTarget(event) {
				continue
			}
			pending[event.Name] = struct{}{}
			timer.Reset(w.delay)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("Watcher error", zap.Error(err))
		case <-timer.C:
			for name := range pending {
				w.rescan(name)
			}
			clear(pending)
		}
	}
}

func (w *Watcher) isTarget(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return false
	}
	if discover.IsIgnored(event.Name, w.ignore) {
		return false
	}
	if len(w.extensions) == 0 {
		return true
	}
	ext := filepath.Ext(event.Name)
	for _, e := range w.extensions {
		if ext == e {
			return true
		}
	}
	return false
}

func (w *Watcher) rescan(filename string) {
	matches, err := w.runner.Run(filename)
	if err != nil {
		w.logger.Error("Error scanning file", zap.String("file", filename), zap.Error(err))
		return
	}
	w.logger.Debug("Rescanned file", zap.String("file", filename), zap.Int("matches", len(matches)))
	if w.report != nil {
		w.report(filename, matches)
	}
}
