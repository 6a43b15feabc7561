package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gettokengate/tokengate/internal/core/domain"
	"github.com/gettokengate/tokengate/internal/core/service"
	"github.com/gettokengate/tokengate/internal/links"
	"github.com/gettokengate/tokengate/internal/storage/memory"
	"github.com/gettokengate/tokengate/internal/telemetry/metric"
)

type fixture struct {
	handler *Handler
	tokens  *memory.TokenStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	tokens := memory.NewTokenStore()
	sessions := service.NewSessionService(memory.NewSessionStore(), time.Hour, nil)
	resolver, err := links.NewTemplateResolver("https://lms.example.com/goto.php?target=ref_{ref}")
	if err != nil {
		t.Fatalf("NewTemplateResolver failed: %v", err)
	}
	login := service.NewLoginService(tokens, sessions, resolver, nil)

	h := New(Config{
		DispatchPath: "/goto.php",
		CookieName:   "tokengate_session",
		SessionTTL:   time.Hour,
		Backend:      "memory",
	}, login, sessions, tokens, metric.New(), nil)

	return &fixture{handler: h, tokens: tokens}
}

func (f *fixture) putToken(t *testing.T, userID, value string, expiresIn time.Duration) {
	t.Helper()
	err := f.tokens.Put(context.Background(), &domain.UserToken{
		UserID:  userID,
		Token:   value,
		Expires: time.Now().Add(expiresIn).UTC().Format(time.RFC3339),
	})
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}
}

func dispatchRequest(target string) *http.Request {
	url := "/goto.php"
	if target != "" {
		url += "?target=" + target
	}
	return httptest.NewRequest("GET", url, nil)
}

const validTarget = "ilias_app_auth%7C42%7C7%7Cabc123"

func TestHandleDispatch_ValidToken(t *testing.T) {
	f := newFixture(t)
	f.putToken(t, "42", "abc123", time.Hour)

	rec := httptest.NewRecorder()
	f.handler.HandleDispatch(rec, dispatchRequest(validTarget))

	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "https://lms.example.com/goto.php?target=ref_7" {
		t.Errorf("Location = %s", loc)
	}

	var sessionCookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "tokengate_session" {
			sessionCookie = c
		}
	}
	if sessionCookie == nil {
		t.Fatal("session cookie not set")
	}
	if !strings.HasPrefix(sessionCookie.Value, domain.SessionIDPrefix) {
		t.Errorf("cookie value = %s", sessionCookie.Value)
	}
	if !sessionCookie.HttpOnly {
		t.Error("session cookie must be HttpOnly")
	}

	if _, err := f.tokens.FindByUser(context.Background(), "42"); err == nil {
		t.Error("token must be consumed")
	}
}

func TestHandleDispatch_NotApplicable(t *testing.T) {
	cases := []struct {
		name   string
		target string
	}{
		{"no target", ""},
		{"wrong scheme", "other_scheme%7C42%7C7%7Cabc"},
		{"non-numeric user", "ilias_app_auth%7Cabc%7C7%7Ctok"},
		{"missing segments", "ilias_app_auth%7C42"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			f.putToken(t, "42", "abc123", time.Hour)

			rec := httptest.NewRecorder()
			f.handler.HandleDispatch(rec, dispatchRequest(tc.target))

			// Fallback is the default 404 handler.
			if rec.Code != http.StatusNotFound {
				t.Errorf("status = %d, want 404 passthrough", rec.Code)
			}

			// A non-applicable request must not touch stored tokens.
			if _, err := f.tokens.FindByUser(context.Background(), "42"); err != nil {
				t.Error("stored token must survive non-applicable requests")
			}
		})
	}
}

func TestHandleDispatch_CustomFallback(t *testing.T) {
	f := newFixture(t)
	f.handler.cfg.Fallback = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	f.handler.HandleDispatch(rec, dispatchRequest(""))

	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d, want fallback response", rec.Code)
	}
}

func TestHandleDispatch_Replay(t *testing.T) {
	f := newFixture(t)
	f.putToken(t, "42", "abc123", time.Hour)

	first := httptest.NewRecorder()
	f.handler.HandleDispatch(first, dispatchRequest(validTarget))
	if first.Code != http.StatusFound {
		t.Fatalf("first status = %d, want 302", first.Code)
	}

	// The second attempt is denied but still redirected, leaking
	// nothing about why.
	second := httptest.NewRecorder()
	f.handler.HandleDispatch(second, dispatchRequest(validTarget))
	if second.Code != http.StatusFound {
		t.Errorf("second status = %d, want 302", second.Code)
	}
	if loc := second.Header().Get("Location"); loc == "" {
		t.Error("denied attempt must still redirect")
	}
}

func TestHandleDispatch_DenialStillRedirects(t *testing.T) {
	f := newFixture(t)
	f.putToken(t, "42", "different-token", time.Hour)

	rec := httptest.NewRecorder()
	f.handler.HandleDispatch(rec, dispatchRequest(validTarget))

	if rec.Code != http.StatusFound {
		t.Errorf("status = %d, want 302", rec.Code)
	}
	if _, err := f.tokens.FindByUser(context.Background(), "42"); err == nil {
		t.Error("mismatched token must still be consumed")
	}
}

func TestHandleDispatch_AlreadyAuthenticated(t *testing.T) {
	f := newFixture(t)
	f.putToken(t, "42", "abc123", time.Hour)

	// First login establishes an authenticated session.
	first := httptest.NewRecorder()
	f.handler.HandleDispatch(first, dispatchRequest(validTarget))
	var cookie *http.Cookie
	for _, c := range first.Result().Cookies() {
		if c.Name == "tokengate_session" {
			cookie = c
		}
	}
	if cookie == nil {
		t.Fatal("no session cookie after login")
	}

	// Second visit with the authenticated session and a fresh token.
	f.putToken(t, "42", "next-token", time.Hour)

	req := dispatchRequest("ilias_app_auth%7C42%7C7%7Cnext-token")
	req.AddCookie(cookie)
	second := httptest.NewRecorder()
	f.handler.HandleDispatch(second, req)

	if second.Code != http.StatusFound {
		t.Errorf("status = %d, want 302", second.Code)
	}

	// The stored token is consumed even though it was never compared.
	if _, err := f.tokens.FindByUser(context.Background(), "42"); err == nil {
		t.Error("token must be consumed on already-authenticated visits")
	}

	// The session cookie must not rotate for an authenticated visitor.
	for _, c := range second.Result().Cookies() {
		if c.Name == "tokengate_session" && c.Value != cookie.Value {
			t.Error("authenticated session ID must not change")
		}
	}
}

func TestHandleDispatch_PipeTokenSurvivesParsing(t *testing.T) {
	f := newFixture(t)
	f.putToken(t, "42", "ab|cd", time.Hour)

	rec := httptest.NewRecorder()
	f.handler.HandleDispatch(rec, dispatchRequest("ilias_app_auth%7C42%7C7%7Cab%7Ccd"))

	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rec.Code)
	}
	if _, err := f.tokens.FindByUser(context.Background(), "42"); err == nil {
		t.Error("token must be consumed")
	}
}

func TestAdminTokenLifecycle(t *testing.T) {
	f := newFixture(t)

	t.Run("put", func(t *testing.T) {
		body := strings.NewReader(`{"token":"abc123","expires":"2031-01-01T00:00:00Z"}`)
		req := httptest.NewRequest("PUT", "/admin/v1/tokens/42", body)
		req.SetPathValue("user_id", "42")

		rec := httptest.NewRecorder()
		f.handler.HandlePutToken(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("get", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/admin/v1/tokens/42", nil)
		req.SetPathValue("user_id", "42")

		rec := httptest.NewRecorder()
		f.handler.HandleGetToken(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}

		var resp Response
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("bad response body: %v", err)
		}
		data, _ := resp.Data.(map[string]any)
		if data["token"] != "abc123" {
			t.Errorf("token = %v", data["token"])
		}
	})

	t.Run("replace keeps single record", func(t *testing.T) {
		body := strings.NewReader(`{"token":"xyz789","expires":"2031-01-01T00:00:00Z"}`)
		req := httptest.NewRequest("PUT", "/admin/v1/tokens/42", body)
		req.SetPathValue("user_id", "42")

		rec := httptest.NewRecorder()
		f.handler.HandlePutToken(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d", rec.Code)
		}

		count, _ := f.tokens.Count(context.Background())
		if count != 1 {
			t.Errorf("count = %d, want 1", count)
		}
	})

	t.Run("delete", func(t *testing.T) {
		req := httptest.NewRequest("DELETE", "/admin/v1/tokens/42", nil)
		req.SetPathValue("user_id", "42")

		rec := httptest.NewRecorder()
		f.handler.HandleDeleteToken(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
	})

	t.Run("get after delete", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/admin/v1/tokens/42", nil)
		req.SetPathValue("user_id", "42")

		rec := httptest.NewRecorder()
		f.handler.HandleGetToken(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
		if code := rec.Header().Get("X-Error-Code"); code != "TG-TOKN-4040" {
			t.Errorf("X-Error-Code = %s", code)
		}
	})

	t.Run("delete missing is success", func(t *testing.T) {
		req := httptest.NewRequest("DELETE", "/admin/v1/tokens/42", nil)
		req.SetPathValue("user_id", "42")

		rec := httptest.NewRecorder()
		f.handler.HandleDeleteToken(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
	})

	t.Run("put rejects bad record", func(t *testing.T) {
		body := strings.NewReader(`{"token":"","expires":""}`)
		req := httptest.NewRequest("PUT", "/admin/v1/tokens/42", body)
		req.SetPathValue("user_id", "42")

		rec := httptest.NewRecorder()
		f.handler.HandlePutToken(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}

func TestHandleAdminStatus(t *testing.T) {
	f := newFixture(t)
	f.putToken(t, "1", "a", time.Hour)
	f.putToken(t, "2", "b", time.Hour)

	req := httptest.NewRequest("GET", "/admin/v1/status/summary", nil)
	rec := httptest.NewRecorder()
	f.handler.HandleAdminStatus(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	data, _ := resp.Data.(map[string]any)
	if data["backend"] != "memory" {
		t.Errorf("backend = %v", data["backend"])
	}
	if fmt.Sprintf("%v", data["tokens_stored"]) != "2" {
		t.Errorf("tokens_stored = %v", data["tokens_stored"])
	}
}

func TestHealthEndpoints(t *testing.T) {
	f := newFixture(t)

	rec := httptest.NewRecorder()
	f.handler.HandleHealth(rec, httptest.NewRequest("GET", "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("health status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	f.handler.HandleReady(rec, httptest.NewRequest("GET", "/ready", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("ready status = %d", rec.Code)
	}
}
