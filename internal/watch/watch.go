// Package watch rebuilds the corpus when source files change.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 500 * time.Millisecond

// RebuildFunc receives the paths that changed since the last rebuild.
type RebuildFunc func(ctx context.Context, changed []string) error

// Config holds configuration for the watcher.
type Config struct {
	Dir string
	// Debounce is how long the directory must stay quiet before a rebuild.
	Debounce time.Duration
	// Match selects the files that matter. Nil matches every file.
	Match func(path string) bool
	// Rebuild runs after each quiet period that followed a change.
	Rebuild RebuildFunc
}

// Watcher monitors a directory tree with fsnotify.
type Watcher struct {
	cfg     Config
	watcher *fsnotify.Watcher
}

// New creates a watcher over cfg.Dir and every directory below it.
func New(cfg Config) (*Watcher, error) {
	if cfg.Debounce <= 0 {
		cfg.Debounce = defaultDebounce
	}
	if cfg.Match == nil {
		cfg.Match = func(string) bool { return true }
	}
	if cfg.Rebuild == nil {
		return nil, fmt.Errorf("watch: rebuild func is required")
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	watcher := &Watcher{cfg: cfg, watcher: w}
	if err := watcher.addTree(cfg.Dir); err != nil {
		w.Close()
		return nil, err
	}

	return watcher, nil
}

// Run blocks until ctx is done, calling Rebuild after bursts of changes.
// A failed rebuild is logged and the watcher keeps going.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	pending := make(map[string]bool)
	timer := time.NewTimer(w.cfg.Debounce)
	timer.Stop()

	slog.Info("watching for changes", "dir", w.cfg.Dir, "debounce", w.cfg.Debounce)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.handle(event) {
				continue
			}
			pending[event.Name] = true
			timer.Reset(w.cfg.Debounce)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watcher error", "error", err)

		case <-timer.C:
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			sort.Strings(changed)
			clear(pending)

			slog.Info("sources changed, rebuilding", "files", len(changed))
			if err := w.cfg.Rebuild(ctx, changed); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				slog.Error("rebuild failed", "error", err)
			}
		}
	}
}

// handle reports whether event should trigger a rebuild. New directories are
// added to the watch list as a side effect.
func (w *Watcher) handle(event fsnotify.Event) bool {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(event.Name); err != nil {
				slog.Warn("watch new directory", "dir", event.Name, "error", err)
			}
			return false
		}
	}

	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	if strings.HasPrefix(filepath.Base(event.Name), ".") {
		return false
	}

	return w.cfg.Match(event.Name)
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}
