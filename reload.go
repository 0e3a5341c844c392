package toolbridge

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
)

// Reloader rebuilds a Registry from a spec file and swaps it in atomically.
// Readers always see either the old complete registry or the new complete
// registry, never a half-built one. A failed rebuild keeps the previous
// registry serving.
type Reloader struct {
	path     string
	provider Provider
	opts     []Option
	logger   *slog.Logger
	onSwap   func(old, new *Registry)

	current atomic.Pointer[Registry]

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	stop    chan struct{}
	stopped sync.WaitGroup
}

// ReloaderOption configures a Reloader.
type ReloaderOption func(*Reloader)

// WithReloadLogger sets the logger for watch and rebuild events.
func WithReloadLogger(logger *slog.Logger) ReloaderOption {
	return func(r *Reloader) { r.logger = logger }
}

// WithOnSwap registers a hook invoked after each successful swap with the
// previous and the new registry. The previous registry is not shut down
// automatically; in-flight dispatches may still hold it.
func WithOnSwap(fn func(old, new *Registry)) ReloaderOption {
	return func(r *Reloader) { r.onSwap = fn }
}

// NewReloader creates a Reloader for the given spec file. Call Load before
// Registry; the initial load is not implicit so startup failures surface to
// the caller instead of a watch goroutine.
func NewReloader(path string, provider Provider, opts []Option, ropts ...ReloaderOption) *Reloader {
	r := &Reloader{path: path, provider: provider, opts: opts}
	for _, o := range ropts {
		o(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Load reads the spec file, builds a registry, and swaps it in. On error the
// previously loaded registry, if any, stays current.
func (r *Reloader) Load(ctx context.Context) error {
	specs, err := LoadSpecFile(r.path)
	if err != nil {
		return err
	}
	reg, err := Build(ctx, specs, r.provider, r.opts...)
	if err != nil {
		return err
	}
	old := r.current.Swap(reg)
	if r.onSwap != nil {
		r.onSwap(old, reg)
	}
	return nil
}

// Registry returns the currently active registry, or nil before the first
// successful Load.
func (r *Reloader) Registry() *Registry {
	return r.current.Load()
}

// Watch starts watching the spec file's directory and rebuilds on writes to
// the file. Watching the directory rather than the file survives the
// rename-and-replace style of atomic config updates.
func (r *Reloader) Watch(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.watcher != nil {
		return fmt.Errorf("watch %s: already watching", r.path)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch %s: %w", r.path, err)
	}
	dir := filepath.Dir(r.path)
	if err := w.Add(dir); err != nil {
		w.Close()
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	r.watcher = w
	r.stop = make(chan struct{})
	r.stopped.Add(1)
	go r.watchLoop(ctx, w)
	return nil
}

func (r *Reloader) watchLoop(ctx context.Context, w *fsnotify.Watcher) {
	defer r.stopped.Done()
	target := filepath.Clean(r.path)
	for {
		select {
		case <-r.stop:
			return
		case <-ctx.Done():
			return
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			if err := r.Load(ctx); err != nil {
				r.logger.Error("spec reload failed, keeping previous registry",
					"path", r.path, "error", err)
				continue
			}
			r.logger.Info("spec reloaded", "path", r.path)
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			r.logger.Error("spec watch error", "path", r.path, "error", err)
		}
	}
}

// Close stops watching. It does not shut down the current registry.
func (r *Reloader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.watcher == nil {
		return nil
	}
	close(r.stop)
	err := r.watcher.Close()
	r.stopped.Wait()
	r.watcher = nil
	return err
}
