package tlsroots

import (
	"crypto/tls"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits after the first change
// event before loading, so a rotation that rewrites cert and key as two
// separate writes is picked up as one reload.
const DefaultDebounce = 500 * time.Millisecond

// Watcher serves the HTTPS listener's key pair and swaps it in place
// when the files on disk are rotated.
type Watcher struct {
	certFile string
	keyFile  string
	debounce time.Duration
	logger   *slog.Logger

	mu   sync.RWMutex
	pair *tls.Certificate

	quit     chan struct{}
	stopOnce sync.Once
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithLogger sets the logger for the watcher.
func WithLogger(logger *slog.Logger) WatcherOption {
	return func(w *Watcher) {
		w.logger = logger
	}
}

// WithDebounce overrides the reload debounce window.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// NewWatcher loads the key pair and returns a watcher for it. The
// initial load must succeed; a server that cannot present a
// certificate should fail at startup, not at the first handshake.
func NewWatcher(certFile, keyFile string, opts ...WatcherOption) (*Watcher, error) {
	w := &Watcher{
		certFile: certFile,
		keyFile:  keyFile,
		debounce: DefaultDebounce,
		logger:   slog.Default(),
		quit:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	if err := w.reload(); err != nil {
		return nil, err
	}
	return w, nil
}

// GetCertificate implements tls.Config.GetCertificate.
func (w *Watcher) GetCertificate(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.pair, nil
}

// Start blocks, reloading the key pair whenever the files change,
// until Stop is called. The parent directories are watched rather than
// the files themselves, so rename-based rotation is seen too.
func (w *Watcher) Start() error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("tlsroots: create watcher: %w", err)
	}
	defer fw.Close()

	certDir := filepath.Dir(w.certFile)
	if err := fw.Add(certDir); err != nil {
		return fmt.Errorf("tlsroots: watch %s: %w", certDir, err)
	}
	if keyDir := filepath.Dir(w.keyFile); keyDir != certDir {
		if err := fw.Add(keyDir); err != nil {
			return fmt.Errorf("tlsroots: watch %s: %w", keyDir, err)
		}
	}

	w.logger.Info("watching key pair for rotation",
		"cert_file", w.certFile,
		"key_file", w.keyFile)

	for {
		select {
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			w.logger.Debug("key pair changed on disk", "file", ev.Name, "op", ev.Op.String())
			if !w.drain(fw) {
				return nil
			}
			if err := w.reload(); err != nil {
				// Keep serving the previous pair; a half-written
				// rotation fixes itself on the next event.
				w.logger.Error("key pair reload failed", "error", err)
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("key pair watcher error", "error", err)

		case <-w.quit:
			return nil
		}
	}
}

// StartAsync runs Start in a goroutine.
func (w *Watcher) StartAsync() {
	go func() {
		if err := w.Start(); err != nil {
			w.logger.Error("key pair watcher stopped", "error", err)
		}
	}()
}

// Stop ends the watch. Safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() { close(w.quit) })
}

// relevant reports whether the event touches the watched pair.
func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
		return false
	}
	name := filepath.Base(ev.Name)
	return name == filepath.Base(w.certFile) || name == filepath.Base(w.keyFile)
}

// drain swallows follow-up events for one debounce window, collapsing
// a multi-file rotation into a single reload. Returns false when the
// watcher was stopped while draining.
func (w *Watcher) drain(fw *fsnotify.Watcher) bool {
	timer := time.NewTimer(w.debounce)
	defer timer.Stop()
	for {
		select {
		case <-fw.Events:
		case <-fw.Errors:
		case <-timer.C:
			return true
		case <-w.quit:
			return false
		}
	}
}

func (w *Watcher) reload() error {
	pair, err := tls.LoadX509KeyPair(w.certFile, w.keyFile)
	if err != nil {
		return fmt.Errorf("tlsroots: load key pair: %w", err)
	}

	w.mu.Lock()
	w.pair = &pair
	w.mu.Unlock()

	w.logger.Info("key pair loaded", "cert_file", w.certFile)
	return nil
}
