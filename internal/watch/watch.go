// Package watch re-runs the build whenever the source tree changes.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/pwabuilder/internal/logfields"
)

// DefaultQuietWindow is how long the tree must stay unchanged before a rebuild starts.
const DefaultQuietWindow = 500 * time.Millisecond

// BuildFunc runs one complete build.
type BuildFunc func(ctx context.Context) error

// Watcher rebuilds on source changes. Builds never overlap.
type Watcher struct {
	root    string
	ignored []string
	quiet   time.Duration
	build   BuildFunc
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithQuietWindow overrides DefaultQuietWindow.
func WithQuietWindow(d time.Duration) Option { return func(w *Watcher) { w.quiet = d } }

// New creates a watcher for root. Events for any of ignored, or below it when it is a directory,
// are dropped, as are events in .git and node_modules directories. ignored holds the output
// tree and the files the build itself writes into the source tree.
func New(root string, ignored []string, build BuildFunc, opts ...Option) *Watcher {
	w := &Watcher{root: filepath.Clean(root), quiet: DefaultQuietWindow, build: build}
	for _, p := range ignored {
		w.ignored = append(w.ignored, filepath.Clean(p))
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run builds once and then rebuilds after every burst of changes until ctx is canceled.
// Build failures are logged and watching continues.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	defer func() { _ = watcher.Close() }()
	w.addDirsRecursive(watcher, w.root)

	rebuildReq, trigger, stop := debouncer(w.quiet)
	defer stop()

	w.rebuild(ctx)
	slog.Info("Watching for changes", logfields.Path(w.root))

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-rebuildReq:
			w.rebuild(ctx)
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(watcher, ev, trigger)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("Watcher error", logfields.Error(err))
		}
	}
}

func (w *Watcher) rebuild(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if err := w.build(ctx); err != nil {
		slog.Error("Build failed, still watching", logfields.Error(err))
	}
}

func (w *Watcher) handleEvent(watcher *fsnotify.Watcher, ev fsnotify.Event, trigger func()) {
	if w.Ignored(ev.Name) {
		return
	}
	if ev.Op&fsnotify.Create == fsnotify.Create {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			w.addDirsRecursive(watcher, ev.Name)
		}
	}
	slog.Debug("File change detected", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
	trigger()
}

func (w *Watcher) addDirsRecursive(watcher *fsnotify.Watcher, root string) {
	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if path != w.root && w.Ignored(path) {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			slog.Warn("Watch add failed", logfields.Path(path), logfields.Error(err))
		}
		return nil
	})
}

// Ignored reports whether a change to path must not trigger a rebuild.
func (w *Watcher) Ignored(path string) bool {
	path = filepath.Clean(path)
	for _, p := range w.ignored {
		if path == p || strings.HasPrefix(path, p+string(filepath.Separator)) {
			return true
		}
	}
	if rel, err := filepath.Rel(w.root, path); err == nil {
		parts := strings.Split(rel, string(filepath.Separator))
		if slices.Contains(parts, ".git") || slices.Contains(parts, "node_modules") {
			return true
		}
	}
	return isEditorArtifact(filepath.Base(path))
}

func isEditorArtifact(base string) bool {
	switch {
	case base == ".DS_Store" || base == "Thumbs.db":
		return true
	case strings.HasSuffix(base, "~") || strings.HasSuffix(base, ".swp") || strings.HasSuffix(base, ".swx"):
		return true
	case strings.HasPrefix(base, ".#"):
		return true
	case strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#"):
		return true
	}
	return false
}

// debouncer returns a channel that receives once per burst of trigger calls, after quiet has
// elapsed since the last call.
func debouncer(quiet time.Duration) (<-chan struct{}, func(), func()) {
	var (
		mu    sync.Mutex
		timer *time.Timer
	)
	req := make(chan struct{}, 1)
	trigger := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(quiet, func() {
			select {
			case req <- struct{}{}:
			default:
			}
		})
	}
	stop := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
	}
	return req, trigger, stop
}
