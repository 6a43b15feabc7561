// Package handler provides HTTP request handlers for TokenGate.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gettokengate/tokengate/internal/core/domain"
	"github.com/gettokengate/tokengate/internal/core/service"
	"github.com/gettokengate/tokengate/internal/storage"
	"github.com/gettokengate/tokengate/internal/telemetry/logger"
	"github.com/gettokengate/tokengate/internal/telemetry/metric"
)

// Config holds handler configuration.
type Config struct {
	// DispatchPath is the path the login flow listens on.
	DispatchPath string

	// CookieName names the session cookie.
	CookieName string

	// CookieSecure marks the session cookie Secure.
	CookieSecure bool

	// SessionTTL bounds the session cookie lifetime.
	SessionTTL time.Duration

	// Backend names the storage backend for status reporting.
	Backend string

	// Fallback serves dispatch-path requests whose target parameter
	// does not belong to the login flow. Defaults to a 404 handler.
	Fallback http.Handler
}

// Handler serves the TokenGate HTTP API.
type Handler struct {
	cfg      Config
	login    *service.LoginService
	sessions *service.SessionService
	tokens   storage.TokenRepository
	metrics  *metric.Metrics
	logger   *slog.Logger
	started  time.Time
}

// New creates a new Handler with the given services.
func New(cfg Config, login *service.LoginService, sessions *service.SessionService, tokens storage.TokenRepository, m *metric.Metrics, logger *slog.Logger) *Handler {
	if cfg.Fallback == nil {
		cfg.Fallback = http.NotFoundHandler()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		cfg:      cfg,
		login:    login,
		sessions: sessions,
		tokens:   tokens,
		metrics:  m,
		logger:   logger,
		started:  time.Now(),
	}
}

// writeJSON sends data inside the success envelope.
func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	h.send(w, status, NewResponse(getRequestID(r), data))
}

// writeError sends the error envelope and mirrors the code in the
// X-Error-Code header so clients can route on it without a body parse.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, status int, code, message string, details any) {
	w.Header().Set("X-Error-Code", code)
	h.send(w, status, NewErrorResponse(getRequestID(r), code, message, details))
}

func (h *Handler) send(w http.ResponseWriter, status int, body *Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

// getRequestID extracts the request ID set by the middleware, falling
// back to the header for requests arriving over the local socket.
func getRequestID(r *http.Request) string {
	if id := logger.RequestIDFromContext(r.Context()); id != "" {
		return id
	}
	return r.Header.Get("X-Request-ID")
}

// handleServiceError maps a service error onto the wire: domain errors
// keep their code and get a status derived from it, anything else is
// logged and reported as an opaque 500.
func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if !domain.IsDomainError(err, "") {
		h.logger.Error("internal error", "error", err)
		h.writeError(w, r, http.StatusInternalServerError,
			domain.ErrInternalServer.Code, domain.ErrInternalServer.Message, nil)
		return
	}

	code := domain.GetErrorCode(err)
	h.writeError(w, r, statusForCode(code), code, err.Error(), nil)
}

// statusForCode derives an HTTP status from a TG-XXXX-NNNN code. The
// numeric tail encodes the category: 40xx not found, 400x bad input,
// 401x auth, 4290 throttled, 5xxx server side.
func statusForCode(code string) int {
	switch {
	case strings.HasSuffix(code, "-4040"), strings.HasSuffix(code, "-4041"):
		return http.StatusNotFound
	case strings.HasSuffix(code, "-4290"):
		return http.StatusTooManyRequests
	case strings.HasSuffix(code, "-4000"), strings.HasSuffix(code, "-4001"),
		strings.HasPrefix(code, "TG-ARG-"):
		return http.StatusBadRequest
	case strings.HasSuffix(code, "-4010"), strings.HasSuffix(code, "-4011"):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
