// Package httpserver provides the HTTP/HTTPS server for TokenGate.
package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/gettokengate/tokengate/internal/server/httpserver/handler"
	"github.com/gettokengate/tokengate/internal/telemetry/metric"
)

// RouterConfig holds configuration for the HTTP router.
type RouterConfig struct {
	// Handler serves the application endpoints.
	Handler *handler.Handler

	// DispatchPath is the login flow's path.
	DispatchPath string

	// AdminAPIKey guards /admin/v1. Empty disables the admin API.
	AdminAPIKey string

	// Metrics instruments requests and serves /metrics. Optional.
	Metrics *metric.Metrics

	// Logger for middleware logging.
	Logger *slog.Logger

	// RateLimitRPS throttles the dispatch path per client IP.
	// Zero disables rate limiting.
	RateLimitRPS   float64
	RateLimitBurst int
}

// NewRouter creates and configures the HTTP router with all routes
// and middleware.
func NewRouter(cfg *RouterConfig) http.Handler {
	h := cfg.Handler
	mux := http.NewServeMux()

	base := []Middleware{
		RequestID(),
		Recover(cfg.Logger),
	}

	// The dispatch path carries the login flow. Any method is allowed
	// through; applicability is decided by the target parameter.
	dispatch := append([]Middleware{}, base...)
	dispatch = append(dispatch, Instrument(cfg.Metrics, "dispatch"))
	if cfg.RateLimitRPS > 0 {
		burst := cfg.RateLimitBurst
		if burst < 1 {
			burst = int(cfg.RateLimitRPS)
		}
		dispatch = append(dispatch, RateLimit(cfg.RateLimitRPS, burst))
	}
	mux.Handle(cfg.DispatchPath, Chain(http.HandlerFunc(h.HandleDispatch), dispatch...))

	// Health endpoints, no authentication.
	mux.Handle("GET /health", Chain(http.HandlerFunc(h.HandleHealth), base...))
	mux.Handle("GET /ready", Chain(http.HandlerFunc(h.HandleReady), base...))

	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", Chain(cfg.Metrics.Handler(), base...))
	}

	// Admin API, guarded by the pre-shared key.
	if cfg.AdminAPIKey != "" {
		admin := append([]Middleware{}, base...)
		admin = append(admin, Instrument(cfg.Metrics, "admin"), AdminAuth(cfg.AdminAPIKey))

		mux.Handle("PUT /admin/v1/tokens/{user_id}", Chain(http.HandlerFunc(h.HandlePutToken), admin...))
		mux.Handle("GET /admin/v1/tokens/{user_id}", Chain(http.HandlerFunc(h.HandleGetToken), admin...))
		mux.Handle("DELETE /admin/v1/tokens/{user_id}", Chain(http.HandlerFunc(h.HandleDeleteToken), admin...))
		mux.Handle("GET /admin/v1/status/summary", Chain(http.HandlerFunc(h.HandleAdminStatus), admin...))
	}

	return mux
}

// NewLocalRouter exposes the admin endpoints without key
// authentication, for serving over a permission-guarded Unix socket.
func NewLocalRouter(h *handler.Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()
	base := []Middleware{RequestID(), Recover(logger)}

	mux.Handle("PUT /admin/v1/tokens/{user_id}", Chain(http.HandlerFunc(h.HandlePutToken), base...))
	mux.Handle("GET /admin/v1/tokens/{user_id}", Chain(http.HandlerFunc(h.HandleGetToken), base...))
	mux.Handle("DELETE /admin/v1/tokens/{user_id}", Chain(http.HandlerFunc(h.HandleDeleteToken), base...))
	mux.Handle("GET /admin/v1/status/summary", Chain(http.HandlerFunc(h.HandleAdminStatus), base...))

	return mux
}
