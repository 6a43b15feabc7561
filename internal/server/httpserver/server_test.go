package httpserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gettokengate/tokengate/internal/core/domain"
	"github.com/gettokengate/tokengate/internal/core/service"
	"github.com/gettokengate/tokengate/internal/links"
	"github.com/gettokengate/tokengate/internal/server/httpserver/handler"
	"github.com/gettokengate/tokengate/internal/storage/memory"
	"github.com/gettokengate/tokengate/internal/telemetry/metric"
)

func newTestRouter(t *testing.T, adminKey string) (http.Handler, *memory.TokenStore) {
	t.Helper()

	tokens := memory.NewTokenStore()
	sessions := service.NewSessionService(memory.NewSessionStore(), time.Hour, nil)
	resolver, err := links.NewTemplateResolver("")
	if err != nil {
		t.Fatalf("NewTemplateResolver failed: %v", err)
	}
	login := service.NewLoginService(tokens, sessions, resolver, nil)

	h := handler.New(handler.Config{
		DispatchPath: "/goto.php",
		CookieName:   "tokengate_session",
		SessionTTL:   time.Hour,
		Backend:      "memory",
	}, login, sessions, tokens, metric.New(), nil)

	router := NewRouter(&RouterConfig{
		Handler:      h,
		DispatchPath: "/goto.php",
		AdminAPIKey:  adminKey,
		Metrics:      metric.New(),
		Logger:       discardLogger(),
	})
	return router, tokens
}

func TestRouter_DispatchFlow(t *testing.T) {
	router, tokens := newTestRouter(t, "")

	err := tokens.Put(context.Background(), &domain.UserToken{
		UserID:  "42",
		Token:   "abc123",
		Expires: time.Now().Add(time.Hour).UTC().Format(time.RFC3339),
	})
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/goto.php?target=ilias_app_auth%7C42%7C7%7Cabc123", nil))

	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rec.Code)
	}
	if !strings.Contains(rec.Header().Get("Location"), "ref_7") {
		t.Errorf("Location = %s", rec.Header().Get("Location"))
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("request ID header missing")
	}
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	router, _ := newTestRouter(t, "")

	for _, path := range []string{"/health", "/ready", "/metrics"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("GET", path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("%s status = %d, want 200", path, rec.Code)
		}
	}
}

func TestRouter_AdminRequiresKey(t *testing.T) {
	router, _ := newTestRouter(t, "admin-key")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/admin/v1/status/summary", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}

	req := httptest.NewRequest("GET", "/admin/v1/status/summary", nil)
	req.Header.Set("X-API-Key", "admin-key")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestRouter_AdminDisabled(t *testing.T) {
	router, _ := newTestRouter(t, "")

	req := httptest.NewRequest("GET", "/admin/v1/status/summary", nil)
	req.Header.Set("X-API-Key", "anything")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 when admin API is disabled", rec.Code)
	}
}

func TestRouter_AdminTokenRoundTrip(t *testing.T) {
	router, _ := newTestRouter(t, "admin-key")

	put := httptest.NewRequest("PUT", "/admin/v1/tokens/42",
		strings.NewReader(`{"token":"abc","expires":"2031-01-01T00:00:00Z"}`))
	put.Header.Set("X-API-Key", "admin-key")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, put)
	if rec.Code != http.StatusCreated {
		t.Fatalf("put status = %d: %s", rec.Code, rec.Body.String())
	}

	get := httptest.NewRequest("GET", "/admin/v1/tokens/42", nil)
	get.Header.Set("X-API-Key", "admin-key")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, get)
	if rec.Code != http.StatusOK {
		t.Errorf("get status = %d", rec.Code)
	}

	del := httptest.NewRequest("DELETE", "/admin/v1/tokens/42", nil)
	del.Header.Set("X-API-Key", "admin-key")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, del)
	if rec.Code != http.StatusOK {
		t.Errorf("delete status = %d", rec.Code)
	}
}

func TestServer_Shutdown(t *testing.T) {
	router, _ := newTestRouter(t, "")

	srv, err := New("127.0.0.1:0", router, Options{
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown failed: %v", err)
	}
}
