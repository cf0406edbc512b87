package ingestion

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/chaptergraph/internal/core/ports/driven"
	"github.com/custodia-labs/chaptergraph/internal/logger"
)

// DefaultDebounce is how long the watcher waits for more changes before
// reloading.
const DefaultDebounce = 500 * time.Millisecond

// ReloadFunc receives the book specs every time the manifest or one of
// the files it references changes.
type ReloadFunc func(ctx context.Context, specs []driven.BookSpec) error

// Watcher reloads a book manifest when it or any table of contents it
// lists changes on disk.
type Watcher struct {
	manifest string
	debounce time.Duration
	fsw      *fsnotify.Watcher

	files map[string]struct{}
	dirs  map[string]struct{}
}

// NewWatcher creates a watcher for the manifest. Values of debounce
// below 1 use DefaultDebounce.
func NewWatcher(manifest string, debounce time.Duration) (*Watcher, error) {
	abs, err := filepath.Abs(manifest)
	if err != nil {
		return nil, fmt.Errorf("resolve manifest path: %w", err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	return &Watcher{
		manifest: abs,
		debounce: debounce,
		fsw:      fsw,
		files:    make(map[string]struct{}),
		dirs:     make(map[string]struct{}),
	}, nil
}

// Run calls fn once with the current manifest, then again after every
// settled burst of changes, until ctx is done. Errors from fn and from
// reloading a half-written manifest are logged and do not stop the loop.
func (w *Watcher) Run(ctx context.Context, fn ReloadFunc) error {
	defer w.fsw.Close()

	specs, err := LoadManifest(w.manifest)
	if err != nil {
		return err
	}
	if err := w.track(specs); err != nil {
		return err
	}
	w.reload(ctx, fn, specs)

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			logger.Debug("watch: %s %s", event.Op, event.Name)
			timer.Reset(w.debounce)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch: %v", err)

		case <-timer.C:
			specs, err := LoadManifest(w.manifest)
			if err != nil {
				logger.Warn("watch: reload manifest: %v", err)
				continue
			}
			if err := w.track(specs); err != nil {
				logger.Warn("watch: %v", err)
			}
			w.reload(ctx, fn, specs)
		}
	}
}

func (w *Watcher) reload(ctx context.Context, fn ReloadFunc, specs []driven.BookSpec) {
	if err := fn(ctx, specs); err != nil {
		logger.Warn("watch: %v", err)
	}
}

// track records the manifest and every referenced file, and watches
// their directories so editors that replace files are still seen.
func (w *Watcher) track(specs []driven.BookSpec) error {
	files := map[string]struct{}{w.manifest: {}}
	for _, spec := range specs {
		files[filepath.Clean(spec.ChaptersPath)] = struct{}{}
		files[filepath.Clean(spec.SectionsPath)] = struct{}{}
	}
	w.files = files

	for f := range files {
		dir := filepath.Dir(f)
		if _, ok := w.dirs[dir]; ok {
			continue
		}
		if err := w.fsw.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
		w.dirs[dir] = struct{}{}
	}
	return nil
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	_, ok := w.files[filepath.Clean(event.Name)]
	return ok
}
