// Package watcher monitors the run-results artifact so statuses refresh
// when a build finishes outside the TUI. It uses fsnotify on the artifact's
// directory (reliable for atomic writes) and falls back to stat polling
// when inotify is unavailable.
package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Defaults.
const (
	DefaultDebounce     = 200 * time.Millisecond
	DefaultPollInterval = 2 * time.Second
)

// ErrAlreadyStarted is returned by Start on a running watcher.
var ErrAlreadyStarted = errors.New("watcher already started")

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets how long to coalesce bursts of change events.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// WithPollInterval sets the fallback polling interval.
func WithPollInterval(d time.Duration) Option {
	return func(w *Watcher) { w.pollInterval = d }
}

// Watcher watches one file for changes and signals them on Changed().
// The change channel has capacity 1; unconsumed signals coalesce.
type Watcher struct {
	path         string
	debounce     time.Duration
	pollInterval time.Duration

	mu        sync.Mutex
	started   bool
	fsWatcher *fsnotify.Watcher
	lastMtime time.Time
	lastSize  int64
	timer     *time.Timer

	ctx      context.Context
	cancel   context.CancelFunc
	changeCh chan struct{}
}

// New creates a watcher for path. The file does not need to exist yet.
func New(path string, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		path:         abs,
		debounce:     DefaultDebounce,
		pollInterval: DefaultPollInterval,
		changeCh:     make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Changed returns the change notification channel.
func (w *Watcher) Changed() <-chan struct{} { return w.changeCh }

// Path returns the watched file path.
func (w *Watcher) Path() string { return w.path }

// Start begins watching. It prefers fsnotify and silently degrades to
// polling when the notify backend cannot be set up.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return ErrAlreadyStarted
	}
	w.ctx, w.cancel = context.WithCancel(context.Background())

	if info, err := os.Stat(w.path); err == nil {
		w.lastMtime = info.ModTime()
		w.lastSize = info.Size()
	} else {
		w.lastMtime = time.Time{}
		w.lastSize = 0
	}

	if fsw, err := fsnotify.NewWatcher(); err == nil {
		if err := fsw.Add(filepath.Dir(w.path)); err == nil {
			w.fsWatcher = fsw
			go w.watchFsnotify()
			w.started = true
			return nil
		}
		fsw.Close()
	}

	go w.watchPolling()
	w.started = true
	return nil
}

// Stop halts the watcher. The change channel is deliberately left open;
// a goroutine blocked on Changed() is released at process exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.started {
		return
	}
	w.cancel()
	if w.fsWatcher != nil {
		w.fsWatcher.Close()
		w.fsWatcher = nil
	}
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.started = false
}

// IsPolling reports whether the fallback poller is active.
func (w *Watcher) IsPolling() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.started && w.fsWatcher == nil
}

// notifyChange debounces and then signals Changed(). Coalesces when the
// channel already holds an unconsumed signal.
func (w *Watcher) notifyChange() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		select {
		case w.changeCh <- struct{}{}:
		default:
		}
	})
}

func (w *Watcher) watchFsnotify() {
	target := filepath.Base(w.path)

	w.mu.Lock()
	fsw := w.fsWatcher
	w.mu.Unlock()
	if fsw == nil {
		return
	}

	for {
		select {
		case <-w.ctx.Done():
			return
		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				w.notifyChange()
			}
		case _, ok := <-fsw.Errors:
			if !ok {
				return
			}
		}
	}
}

func (w *Watcher) watchPolling() {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			info, err := os.Stat(w.path)
			if err != nil {
				continue
			}
			w.mu.Lock()
			changed := info.ModTime() != w.lastMtime || info.Size() != w.lastSize
			w.lastMtime = info.ModTime()
			w.lastSize = info.Size()
			w.mu.Unlock()
			if changed {
				w.notifyChange()
			}
		}
	}
}
