// Package watch re-decodes a design file whenever it changes on disk.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/npratt/dstview/internal/design"
	"github.com/npratt/dstview/internal/dst"
)

// DefaultDebounce is the time to wait for rapid file changes to settle.
const DefaultDebounce = 200 * time.Millisecond

// Watcher monitors a single design file and reloads it after writes.
type Watcher struct {
	loader   *design.Loader
	path     string
	debounce time.Duration
	onChange func(*dst.Pattern)
	onError  func(error)
	logger   *slog.Logger

	running atomic.Bool
	done    chan struct{}
	cancel  context.CancelFunc
	mu      sync.Mutex
}

// New creates a Watcher for path. onChange receives every successfully
// decoded version of the file, onError every failed load. Either may be nil.
// Callbacks run on the watcher goroutine, one at a time.
func New(loader *design.Loader, path string, debounce time.Duration, onChange func(*dst.Pattern), onError func(error), logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	if debounce < 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		loader:   loader,
		path:     path,
		debounce: debounce,
		onChange: onChange,
		onError:  onError,
		logger:   logger.With("component", "watch"),
	}
}

// Path returns the watched file.
func (w *Watcher) Path() string {
	return w.path
}

// Start begins watching in a background goroutine. The file is decoded once
// immediately if it exists. Use Stop to terminate.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running.Load() {
		return fmt.Errorf("watcher already running")
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	// Watch the parent directory so atomic saves (write temp, rename) are seen.
	dir := filepath.Dir(w.path)
	if err := fsWatcher.Add(dir); err != nil {
		_ = fsWatcher.Close()
		return fmt.Errorf("failed to watch directory %s: %w", dir, err)
	}

	var loopCtx context.Context
	loopCtx, w.cancel = context.WithCancel(ctx)
	w.done = make(chan struct{})
	w.running.Store(true)

	w.logger.Info("started watching design", "path", w.path)

	go w.runLoop(loopCtx, fsWatcher)

	return nil
}

// Stop terminates the watcher and waits for its goroutine to exit. No
// callbacks run after Stop returns.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running.Load() {
		w.mu.Unlock()
		return nil
	}
	cancel, done := w.cancel, w.done
	w.mu.Unlock()

	cancel()
	<-done

	return nil
}

// Running returns whether the watcher is currently active.
func (w *Watcher) Running() bool {
	return w.running.Load()
}

func (w *Watcher) runLoop(ctx context.Context, fsWatcher *fsnotify.Watcher) {
	defer func() {
		_ = fsWatcher.Close()
		w.running.Store(false)
		close(w.done)
	}()

	if _, err := os.Stat(w.path); err == nil {
		w.reload()
	} else if !errors.Is(err, os.ErrNotExist) {
		w.report(err)
	}

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	target := filepath.Clean(w.path)

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fsWatcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			w.reload()

		case err, ok := <-fsWatcher.Errors:
			if !ok {
				return
			}
			w.report(fmt.Errorf("file watcher error: %w", err))
		}
	}
}

func (w *Watcher) reload() {
	pattern, err := w.loader.Load(w.path)
	if err != nil {
		w.report(err)
		return
	}
	w.logger.Debug("design reloaded", "path", w.path, "records", len(pattern.Stitches))
	if w.onChange != nil {
		w.onChange(pattern)
	}
}

func (w *Watcher) report(err error) {
	w.logger.Warn("reload failed", "path", w.path, "error", err)
	if w.onError != nil {
		w.onError(err)
	}
}
