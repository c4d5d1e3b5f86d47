// Package watch reloads the selected audio file when it changes on disk.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/yildizm/TruthWeaver/internal/logger"
	"github.com/yildizm/TruthWeaver/internal/session"
)

// DefaultDebounce coalesces the burst of writes an editor or recorder emits
const DefaultDebounce = 150 * time.Millisecond

// Selector receives reloaded files. *session.Store implements it.
type Selector interface {
	SelectFile(file *session.AudioFile)
}

// Watcher follows one file at a time by watching its directory
type Watcher struct {
	fsw      *fsnotify.Watcher
	target   Selector
	log      *logger.Logger
	onReload func(*session.AudioFile)
	debounce time.Duration

	mu    sync.Mutex
	path  string
	dir   string
	timer *time.Timer
}

// Option configures a Watcher
type Option func(*Watcher)

// WithLogger sets the logger
func WithLogger(l *logger.Logger) Option {
	return func(w *Watcher) { w.log = l }
}

// WithDebounce overrides DefaultDebounce
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// OnReload registers a callback run after every successful reload
func OnReload(fn func(*session.AudioFile)) Option {
	return func(w *Watcher) { w.onReload = fn }
}

// New creates a watcher that hands reloaded files to target
func New(target Selector, opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	w := &Watcher{
		fsw:      fsw,
		target:   target,
		log:      logger.Nop(),
		debounce: DefaultDebounce,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Watch switches the watched file to path. The previous file, if any, is
// no longer followed.
func (w *Watcher) Watch(path string) error {
	abs, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	dir := filepath.Dir(abs)

	w.mu.Lock()
	defer w.mu.Unlock()

	if dir != w.dir {
		if err := w.fsw.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		if w.dir != "" {
			_ = w.fsw.Remove(w.dir)
		}
		w.dir = dir
	}

	w.path = abs
	w.stopTimerLocked()
	w.log.Debug("watching %s", abs)
	return nil
}

// Path returns the file currently followed
func (w *Watcher) Path() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.path
}

// Run processes file system events until ctx is done or the watcher is closed
func (w *Watcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watcher error: %v", err)
		}
	}
}

// Close stops watching
func (w *Watcher) Close() error {
	w.mu.Lock()
	w.stopTimerLocked()
	w.mu.Unlock()
	return w.fsw.Close()
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}

	name, err := filepath.Abs(event.Name)
	if err != nil {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if name != w.path {
		return
	}

	w.stopTimerLocked()
	w.timer = time.AfterFunc(w.debounce, func() { w.reload(name) })
}

func (w *Watcher) stopTimerLocked() {
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}

// reload reads path and selects it, unless the watcher moved on meanwhile
func (w *Watcher) reload(path string) {
	if w.Path() != path {
		return
	}

	file, err := session.LoadAudioFile(path)
	if err != nil {
		w.log.Warn("failed to reload %s: %v", path, err)
		return
	}
	if file.Size() == 0 {
		// truncated mid-write; the next write event brings the content
		w.log.Debug("skipping empty %s", path)
		return
	}

	w.target.SelectFile(file)
	w.log.InfoWithFields("audio file reloaded", []logger.Field{
		logger.F("file", file.Name),
		logger.F("bytes", file.Size()),
	})

	if w.onReload != nil {
		w.onReload(file)
	}
}
