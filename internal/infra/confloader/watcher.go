package confloader

import (
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher notifies registered callbacks when a watched config file
// changes on disk. The parent directory is watched rather than the
// file itself so editor-style rename rotation is seen too, but events
// for other files in the directory are ignored.
type Watcher struct {
	fw     *fsnotify.Watcher
	logger *slog.Logger

	mu        sync.RWMutex
	files     map[string]string // base name -> path as given to Watch
	callbacks []func(string)

	quit     chan struct{}
	stopOnce sync.Once
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithWatcherLogger sets the logger for the watcher.
func WithWatcherLogger(logger *slog.Logger) WatcherOption {
	return func(w *Watcher) {
		w.logger = logger
	}
}

// NewWatcher returns a watcher with no files registered.
func NewWatcher(opts ...WatcherOption) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fw:     fw,
		logger: slog.Default(),
		files:  make(map[string]string),
		quit:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Watch registers a config file. Change events for it fire the
// OnChange callbacks once Start runs.
func (w *Watcher) Watch(path string) error {
	if err := w.fw.Add(filepath.Dir(path)); err != nil {
		return err
	}

	w.mu.Lock()
	w.files[filepath.Base(path)] = path
	w.mu.Unlock()

	w.logger.Debug("watching config file", "file", path)
	return nil
}

// OnChange registers a callback. It receives the path the file was
// registered under, and runs on the watcher goroutine.
func (w *Watcher) OnChange(callback func(string)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, callback)
}

// Start blocks, dispatching change events, until Stop is called.
func (w *Watcher) Start() {
	w.logger.Info("config watcher started")

	for {
		select {
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if path, match := w.watched(ev); match {
				w.logger.Debug("config file changed", "file", path, "op", ev.Op.String())
				w.notify(path)
			}

		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.logger.Error("config watcher error", "error", err)

		case <-w.quit:
			return
		}
	}
}

// StartAsync runs Start in a goroutine.
func (w *Watcher) StartAsync() {
	go w.Start()
}

// Stop ends the watch and releases the fsnotify handle. Safe to call
// more than once.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.quit)
		err = w.fw.Close()
	})
	if err != nil {
		return err
	}
	w.logger.Info("config watcher stopped")
	return nil
}

// watched maps an fsnotify event to a registered file, if any.
func (w *Watcher) watched(ev fsnotify.Event) (string, bool) {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
		return "", false
	}

	w.mu.RLock()
	defer w.mu.RUnlock()
	path, ok := w.files[filepath.Base(ev.Name)]
	return path, ok
}

func (w *Watcher) notify(path string) {
	w.mu.RLock()
	callbacks := make([]func(string), len(w.callbacks))
	copy(callbacks, w.callbacks)
	w.mu.RUnlock()

	for _, cb := range callbacks {
		cb(path)
	}
}
