package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNew_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "info", Format: "json", Output: &buf})

	log.Info("server started", "addr", ":8080")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if entry["msg"] != "server started" {
		t.Errorf("msg = %v", entry["msg"])
	}
	if entry["addr"] != ":8080" {
		t.Errorf("addr = %v", entry["addr"])
	}
}

func TestNew_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "warn", Format: "json", Output: &buf})

	log.Info("should be dropped")
	if buf.Len() != 0 {
		t.Errorf("info entry written despite warn level: %s", buf.String())
	}

	log.Warn("should appear")
	if buf.Len() == 0 {
		t.Error("warn entry missing")
	}
}

func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "info", Format: "json", Output: &buf})

	log.Debug("not yet visible")
	if buf.Len() != 0 {
		t.Fatalf("debug entry written at info level: %s", buf.String())
	}

	SetLevel("debug")
	defer SetLevel("info")

	log.Debug("now visible")
	if buf.Len() == 0 {
		t.Error("debug entry missing after SetLevel")
	}
}

func TestRedaction(t *testing.T) {
	t.Run("sensitive key fully redacted", func(t *testing.T) {
		var buf bytes.Buffer
		log := New(Config{Level: "info", Format: "json", Output: &buf})

		log.Info("admin request", "api_key", "super-secret-value")

		out := buf.String()
		if strings.Contains(out, "super-secret-value") {
			t.Errorf("secret leaked: %s", out)
		}
		if !strings.Contains(out, redactedValue) {
			t.Errorf("no redaction marker: %s", out)
		}
	})

	t.Run("session id partially masked", func(t *testing.T) {
		var buf bytes.Buffer
		log := New(Config{Level: "info", Format: "json", Output: &buf})

		full := "tgss-01hqv4x8e9k2m7p3r5t6w8y0zq"
		log.Info("session resolved", "sid", full)

		out := buf.String()
		if strings.Contains(out, full) {
			t.Errorf("session ID leaked: %s", out)
		}
		if !strings.Contains(out, "tgss-") {
			t.Errorf("masked value lost its prefix: %s", out)
		}
	})

	t.Run("plain values untouched", func(t *testing.T) {
		var buf bytes.Buffer
		log := New(Config{Level: "info", Format: "json", Output: &buf})

		log.Info("login", "user_id", "42", "outcome", "validated")

		out := buf.String()
		if !strings.Contains(out, `"user_id":"42"`) {
			t.Errorf("plain attribute mangled: %s", out)
		}
	})
}

func TestMaskSessionID(t *testing.T) {
	masked := maskSessionID("tgss-01hqv4x8e9k2m7p3r5t6w8y0zq")
	if masked == "tgss-01hqv4x8e9k2m7p3r5t6w8y0zq" {
		t.Error("session ID not masked")
	}
	if !strings.HasPrefix(masked, "tgss-") {
		t.Errorf("mask lost prefix: %s", masked)
	}

	// Too short to keep end hints without giving most of it away.
	if got := maskSessionID("tgss-abc"); got != "tgss-***" {
		t.Errorf("short session ID masked as %q", got)
	}
}

func TestRedaction_GroupAttributes(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "info", Format: "json", Output: &buf})

	log.Info("admin request",
		slog.Group("client", "api_key", "super-secret", "addr", "10.0.0.7"))

	out := buf.String()
	if strings.Contains(out, "super-secret") {
		t.Errorf("secret leaked through group: %s", out)
	}
	if !strings.Contains(out, "10.0.0.7") {
		t.Errorf("plain group member mangled: %s", out)
	}
}

func TestRequestIDContext(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-123")
	if got := RequestIDFromContext(ctx); got != "req-123" {
		t.Errorf("RequestIDFromContext = %s", got)
	}
	if got := RequestIDFromContext(context.Background()); got != "" {
		t.Errorf("empty context returned %s", got)
	}
}
