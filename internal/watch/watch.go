// Package watch re-runs work when input files change.
//
// Editors often replace a file instead of writing it in place, so the watcher
// subscribes to the parent directories and filters events by path. Bursts of
// events are debounced into one callback listing every changed file.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is the quiet period before a change is reported.
const DefaultDebounce = 200 * time.Millisecond

// Watcher reports changes to a fixed set of files.
type Watcher struct {
	fw       *fsnotify.Watcher
	files    map[string]bool
	debounce time.Duration
	logger   *zap.Logger

	mu      sync.Mutex
	stopped bool
	done    chan struct{}
}

// New watches files. A debounce of 0 uses DefaultDebounce.
func New(files []string, debounce time.Duration, logger *zap.Logger) (*Watcher, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("watch: no files")
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		fw:       fw,
		files:    make(map[string]bool, len(files)),
		debounce: debounce,
		logger:   logger,
		done:     make(chan struct{}),
	}

	dirs := make(map[string]bool)
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			fw.Close()
			return nil, err
		}
		w.files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, fmt.Errorf("watch %s: %w", dir, err)
		}
	}
	return w, nil
}

// Run calls onChange with the sorted changed paths after every burst of
// events. It blocks until ctx is done or Stop is called. onChange runs on the
// watcher goroutine, so runs never overlap.
func (w *Watcher) Run(ctx context.Context, onChange func(changed []string)) error {
	pending := make(map[string]bool)
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-w.done:
			return nil

		case event, ok := <-w.fw.Events:
			if !ok {
				return nil
			}
			path := filepath.Clean(event.Name)
			if !w.files[path] {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			w.logger.Debug("input changed", zap.String("path", path), zap.Stringer("op", event.Op))
			pending[path] = true
			timer.Reset(w.debounce)

		case err, ok := <-w.fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", zap.Error(err))

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			sort.Strings(changed)
			clear(pending)
			onChange(changed)
		}
	}
}

// Stop ends monitoring and releases all resources.
// Safe to call multiple times.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return nil
	}
	w.stopped = true
	close(w.done)
	return w.fw.Close()
}
