// Package localserver provides the local management server.
//
// It serves the admin API over a Unix domain socket, giving operators
// on the host token management access without an API key. The socket
// is protected by filesystem permissions instead.
package localserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
)

// Server represents the local management server.
type Server struct {
	httpServer *http.Server
	path       string
}

// New creates a new local server serving the given handler.
func New(socketPath string, handler http.Handler) *Server {
	return &Server{
		httpServer: &http.Server{Handler: handler},
		path:       socketPath,
	}
}

// ListenAndServe starts the local server. A stale socket file from a
// previous run is removed first.
func (s *Server) ListenAndServe() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return err
	}

	listener, err := net.Listen("unix", s.path)
	if err != nil {
		return err
	}
	if err := os.Chmod(s.path, 0600); err != nil {
		listener.Close()
		return err
	}

	err = s.httpServer.Serve(listener)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully shuts down the server and removes the socket.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	if rmErr := os.Remove(s.path); rmErr != nil && !os.IsNotExist(rmErr) && err == nil {
		err = rmErr
	}
	return err
}
