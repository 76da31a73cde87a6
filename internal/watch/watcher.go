// SPDX-License-Identifier: MPL-2.0

// Package watch reports debounced changes to recipe descriptors and the
// status files written by the manager.
//
// A Watcher registers every directory below its roots with fsnotify and
// fires OnChange once the filesystem has been quiet for the debounce period.
// Events inside the window are coalesced so the callback sees the full set of
// changed paths.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 300 * time.Millisecond

// skippedDirs are never descended into. They are large and never hold
// recipes the manager cares about.
var skippedDirs = map[string]struct{}{
	".git":         {},
	"node_modules": {},
	"vendor":       {},
}

// ErrAlreadyRunning is returned by a second call to Run.
var ErrAlreadyRunning = errors.New("watch: Run called more than once")

type (
	// Config holds the parameters for a Watcher.
	Config struct {
		// Roots are the directories to watch recursively. Roots that do not
		// exist are skipped.
		Roots []string

		// Names restricts callbacks to files with one of these base names,
		// for example recipe.yml. An empty slice accepts every file.
		Names []string

		// Debounce is the quiet period after the last event before OnChange
		// fires. Zero or negative values use defaultDebounce.
		Debounce time.Duration

		// OnChange receives the deduplicated absolute paths that changed. A
		// nil callback is a no-op.
		OnChange func(ctx context.Context, changed []string) error

		// Logger receives diagnostics. Nil uses slog.Default.
		Logger *slog.Logger
	}

	// Watcher monitors recipe directories. Run must be called exactly once.
	Watcher struct {
		cfg      Config
		fsw      *fsnotify.Watcher
		names    map[string]struct{}
		logger   *slog.Logger
		debounce time.Duration
		started  atomic.Bool
	}
)

// New creates a Watcher and registers every directory below cfg.Roots.
func New(cfg Config) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		cfg:      cfg,
		fsw:      fsw,
		names:    make(map[string]struct{}, len(cfg.Names)),
		logger:   cfg.Logger,
		debounce: cfg.Debounce,
	}
	if w.logger == nil {
		w.logger = slog.Default()
	}
	if w.debounce <= 0 {
		w.debounce = defaultDebounce
	}
	for _, n := range cfg.Names {
		w.names[n] = struct{}{}
	}

	for _, root := range cfg.Roots {
		if err := w.addTree(root); err != nil {
			_ = fsw.Close()
			return nil, err
		}
	}
	if len(w.fsw.WatchList()) == 0 {
		_ = fsw.Close()
		return nil, fmt.Errorf("watch: none of the directories %v exist", cfg.Roots)
	}
	return w, nil
}

// Watched returns the directories currently registered, sorted.
func (w *Watcher) Watched() []string {
	list := w.fsw.WatchList()
	slices.Sort(list)
	return list
}

// Run blocks until ctx is cancelled, dispatching debounced callbacks. It
// returns nil on cancellation and an error when the watcher breaks.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}

	var (
		mu      sync.Mutex
		pending = make(map[string]struct{})
		timer   *time.Timer
		running atomic.Bool
	)

	// fire can run after ctx is done because it is scheduled by AfterFunc.
	// A callback still in progress causes a retry instead of a second
	// concurrent call.
	fire := func() {
		if ctx.Err() != nil {
			return
		}
		if !running.CompareAndSwap(false, true) {
			mu.Lock()
			if timer != nil {
				timer.Reset(w.debounce)
			}
			mu.Unlock()
			return
		}
		defer running.Store(false)

		mu.Lock()
		if len(pending) == 0 {
			mu.Unlock()
			return
		}
		changed := slices.Sorted(maps.Keys(pending))
		clear(pending)
		mu.Unlock()

		if w.cfg.OnChange == nil {
			return
		}
		if err := w.cfg.OnChange(ctx, changed); err != nil {
			w.logger.Warn("watch callback failed", "error", err)
		}
	}

	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
		if err := w.fsw.Close(); err != nil {
			w.logger.Debug("close fsnotify watcher", "error", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return errors.New("watch: event channel closed unexpectedly")
			}
			if evt.Has(fsnotify.Create) {
				w.maybeAddDir(evt.Name)
			}
			if !w.relevant(evt) {
				continue
			}

			mu.Lock()
			pending[evt.Name] = struct{}{}
			if timer == nil {
				timer = time.AfterFunc(w.debounce, fire)
			} else {
				timer.Reset(w.debounce)
			}
			mu.Unlock()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return errors.New("watch: error channel closed unexpectedly")
			}
			if isFatalFsnotifyError(err) {
				return fmt.Errorf("watch: fatal fsnotify error: %w", err)
			}
			w.logger.Warn("fsnotify error", "error", err)
		}
	}
}

// relevant reports whether evt names a file the caller asked for. Chmod-only
// events are dropped.
func (w *Watcher) relevant(evt fsnotify.Event) bool {
	if evt.Op == fsnotify.Chmod {
		return false
	}
	if len(w.names) == 0 {
		return true
	}
	_, ok := w.names[filepath.Base(evt.Name)]
	return ok
}

// addTree registers root and every directory below it.
func (w *Watcher) addTree(root string) error {
	abs, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("watch: resolve %s: %w", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		w.logger.Debug("watch root skipped", "path", abs)
		return nil
	}
	// WalkDir does not descend into a symlinked root.
	if link, err := os.Lstat(abs); err == nil && link.Mode()&fs.ModeSymlink != 0 {
		if resolved, err := filepath.EvalSymlinks(abs); err == nil {
			abs = resolved
		}
	}

	walkErr := filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			w.logger.Debug("watch path skipped", "path", path, "error", err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != abs && isSkippedDir(d.Name()) {
			return filepath.SkipDir
		}
		if addErr := w.fsw.Add(path); addErr != nil {
			return fmt.Errorf("watch: add directory %q: %w", path, addErr)
		}
		return nil
	})
	if walkErr != nil {
		return fmt.Errorf("watch: walk %s: %w", abs, walkErr)
	}
	return nil
}

// maybeAddDir extends the watch to directories created after startup, so a
// newly added recipe directory is picked up.
func (w *Watcher) maybeAddDir(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() || isSkippedDir(filepath.Base(path)) {
		return
	}
	if err := w.addTree(path); err != nil {
		w.logger.Warn("watch new directory", "path", path, "error", err)
	}
}

func isSkippedDir(name string) bool {
	_, ok := skippedDirs[name]
	return ok
}
