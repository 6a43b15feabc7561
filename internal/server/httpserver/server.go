// Package httpserver provides the HTTP/HTTPS server for TokenGate.
package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gettokengate/tokengate/internal/infra/tlsroots"
)

// Server represents the HTTP server.
type Server struct {
	httpServer  *http.Server
	certWatcher *tlsroots.Watcher
}

// Options configures optional server behavior.
type Options struct {
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// TLSCertFile/TLSKeyFile enable HTTPS. Certificates are watched
	// and reloaded on change.
	TLSCertFile string
	TLSKeyFile  string
}

// New creates a new HTTP server.
func New(addr string, handler http.Handler, opts Options) (*Server, error) {
	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      handler,
			ReadTimeout:  opts.ReadTimeout,
			WriteTimeout: opts.WriteTimeout,
		},
	}

	if opts.TLSCertFile != "" {
		watcher, err := tlsroots.NewWatcher(opts.TLSCertFile, opts.TLSKeyFile)
		if err != nil {
			return nil, err
		}
		s.certWatcher = watcher
		s.httpServer.TLSConfig = tlsroots.ServerTLSConfig(watcher)
	}

	return s, nil
}

// ListenAndServe starts the server, choosing HTTPS when certificates
// were configured.
func (s *Server) ListenAndServe() error {
	if s.certWatcher != nil {
		s.certWatcher.StartAsync()
		// Cert and key come from the watcher's GetCertificate.
		return s.httpServer.ListenAndServeTLS("", "")
	}
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.certWatcher != nil {
		s.certWatcher.Stop()
	}
	return s.httpServer.Shutdown(ctx)
}
