// Package httpserver provides the HTTP/HTTPS server for TokenGate.
package httpserver

import (
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/gettokengate/tokengate/internal/core/domain"
	"github.com/gettokengate/tokengate/internal/telemetry/logger"
	"github.com/gettokengate/tokengate/internal/telemetry/metric"
	"github.com/gettokengate/tokengate/pkg/token"
)

// Middleware decorates an http.Handler.
type Middleware func(http.Handler) http.Handler

// Chain applies middlewares so the first listed runs outermost.
func Chain(h http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

// RequestID tags each request with an ID for log correlation. An
// X-Request-ID supplied by an upstream proxy is kept; the ID is
// echoed in the response either way.
func RequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get("X-Request-ID")
			if id == "" {
				id = newRequestID()
			}
			w.Header().Set("X-Request-ID", id)

			ctx := logger.WithRequestID(r.Context(), id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func newRequestID() string {
	id, err := token.GenerateWithLength(16)
	if err != nil {
		return "req-unknown"
	}
	return "req-" + id
}

// Recover turns a handler panic into a plain 500 so one request
// cannot take the listener down.
func Recover(log *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if v := recover(); v != nil {
					log.Error("panic recovered",
						"request_id", logger.RequestIDFromContext(r.Context()),
						"error", v,
						"path", r.URL.Path,
					)
					writeDomainError(w, http.StatusInternalServerError,
						domain.ErrInternalServer)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// Idle buckets older than this are dropped; by then they have refilled
// completely, so eviction never grants extra requests.
const limiterIdleAfter = 3 * time.Minute

// How often the eviction pass runs, piggybacked on request handling.
const limiterSweepEvery = time.Minute

// ipLimiter hands out one token bucket per client IP and evicts
// buckets idle long enough that the map cannot grow without bound.
type ipLimiter struct {
	mu        sync.Mutex
	rps       rate.Limit
	burst     int
	idleAfter time.Duration
	lastSweep time.Time
	entries   map[string]*limiterEntry
}

type limiterEntry struct {
	bucket   *rate.Limiter
	lastSeen time.Time
}

func newIPLimiter(rps float64, burst int) *ipLimiter {
	return &ipLimiter{
		rps:       rate.Limit(rps),
		burst:     burst,
		idleAfter: limiterIdleAfter,
		entries:   make(map[string]*limiterEntry),
	}
}

func (l *ipLimiter) allow(ip string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) >= limiterSweepEvery {
		l.evictIdle(now)
		l.lastSweep = now
	}

	e, ok := l.entries[ip]
	if !ok {
		e = &limiterEntry{bucket: rate.NewLimiter(l.rps, l.burst)}
		l.entries[ip] = e
	}
	e.lastSeen = now
	return e.bucket.AllowN(now, 1)
}

// evictIdle drops entries not seen within idleAfter. Caller holds mu.
func (l *ipLimiter) evictIdle(now time.Time) {
	for ip, e := range l.entries {
		if now.Sub(e.lastSeen) >= l.idleAfter {
			delete(l.entries, ip)
		}
	}
}

func (l *ipLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// RateLimit applies a per-client-IP token bucket.
func RateLimit(rps float64, burst int) Middleware {
	limiter := newIPLimiter(rps, burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.allow(clientIP(r), time.Now()) {
				w.Header().Set("Retry-After", "1")
				writeDomainError(w, http.StatusTooManyRequests, domain.ErrRateLimited)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AdminAuth guards the admin API with a single pre-shared key,
// presented either as "Authorization: Bearer <key>" or "X-API-Key".
func AdminAuth(apiKey string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// No key configured means the admin API is disabled; that
			// reads the same as a missing key from the outside.
			presented := presentedKey(r)
			if apiKey == "" || presented == "" {
				writeDomainError(w, http.StatusUnauthorized, domain.ErrAdminKeyMissing)
				return
			}
			if !token.Equal(presented, apiKey) {
				writeDomainError(w, http.StatusUnauthorized, domain.ErrAdminKeyInvalid)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func presentedKey(r *http.Request) string {
	if key := r.Header.Get("X-API-Key"); key != "" {
		return key
	}
	auth := r.Header.Get("Authorization")
	if key := strings.TrimPrefix(auth, "Bearer "); key != auth {
		return key
	}
	return ""
}

// Instrument records request counts and latencies under the given
// route label.
func Instrument(m *metric.Metrics, route string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if m == nil {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			wrapped := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			m.HTTPRequestsTotal.WithLabelValues(
				r.Method, route, strconv.Itoa(wrapped.status)).Inc()
			m.HTTPRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
		})
	}
}

// statusRecorder captures the status code a handler wrote.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func writeDomainError(w http.ResponseWriter, status int, e *domain.DomainError) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Error-Code", e.Code)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"code":    e.Code,
		"message": e.Message,
	})
}

// clientIP prefers proxy headers over the socket peer, which is the
// proxy itself when TokenGate sits behind one.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	// SplitHostPort handles IPv6 peers like [::1]:8080.
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
