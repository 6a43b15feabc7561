// Package handler provides HTTP request handlers for TokenGate.
package handler

import (
	"net/http"
	"time"

	"github.com/gettokengate/tokengate/internal/core/domain"
)

// HandleHealth handles GET /health.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// HandleReady handles GET /ready. Readiness means the token store
// answers queries.
func (h *Handler) HandleReady(w http.ResponseWriter, r *http.Request) {
	if _, err := h.tokens.Count(r.Context()); err != nil {
		h.writeError(w, r, http.StatusServiceUnavailable, domain.ErrStorageError.Code, "storage not ready", nil)
		return
	}

	h.writeJSON(w, r, http.StatusOK, map[string]string{
		"status": "ready",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
