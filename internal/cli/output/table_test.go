package output

import (
	"bytes"
	"strings"
	"testing"
)

// tokenView mirrors the record shape the token commands render.
type tokenView struct {
	UserID  string `json:"user_id"`
	Token   string `json:"token"`
	Expires string `json:"expires"`
}

// statusView mirrors the status summary shape.
type statusView struct {
	Version      string `json:"version"`
	Backend      string `json:"backend"`
	TokensStored int    `json:"tokens_stored"`
}

func renderTable(t *testing.T, data any) []string {
	t.Helper()

	var buf bytes.Buffer
	f := &TableFormatter{}
	if err := f.Format(&buf, data); err != nil {
		t.Fatalf("Format: %v", err)
	}
	out := strings.TrimRight(buf.String(), "\n")
	if out == "" {
		return nil
	}
	return strings.Split(out, "\n")
}

func TestTableFormatter_TokenRecord(t *testing.T) {
	lines := renderTable(t, &tokenView{
		UserID:  "42",
		Token:   "abc123",
		Expires: "2026-09-01T12:00:00Z",
	})

	if len(lines) != 4 {
		t.Fatalf("got %d lines: %q", len(lines), lines)
	}
	if !strings.HasPrefix(lines[0], "FIELD") {
		t.Errorf("header = %q", lines[0])
	}
	for want, line := range map[string]string{
		"user_id": lines[1],
		"token":   lines[2],
		"expires": lines[3],
	} {
		if !strings.HasPrefix(line, want) {
			t.Errorf("row %q does not start with %q", line, want)
		}
	}
	if !strings.Contains(lines[2], "abc123") {
		t.Errorf("token row = %q", lines[2])
	}
}

func TestTableFormatter_StatusSummary(t *testing.T) {
	lines := renderTable(t, &statusView{
		Version:      "1.2.0",
		Backend:      "badger",
		TokensStored: 7,
	})

	joined := strings.Join(lines, "\n")
	for _, want := range []string{"version", "1.2.0", "backend", "badger", "tokens_stored", "7"} {
		if !strings.Contains(joined, want) {
			t.Errorf("output missing %q:\n%s", want, joined)
		}
	}
}

func TestTableFormatter_EmptyFieldsAsDash(t *testing.T) {
	lines := renderTable(t, &tokenView{UserID: "42"})

	for _, line := range lines[2:] {
		if !strings.HasSuffix(strings.TrimRight(line, " "), "-") {
			t.Errorf("empty field not dashed: %q", line)
		}
	}
}

func TestTableFormatter_MapSorted(t *testing.T) {
	lines := renderTable(t, map[string]string{
		"server":  "localhost:8080",
		"api_key": "***",
		"output":  "table",
	})

	if len(lines) != 4 {
		t.Fatalf("got %d lines: %q", len(lines), lines)
	}
	// Sorted by key: api_key, output, server.
	if !strings.HasPrefix(lines[1], "api_key") ||
		!strings.HasPrefix(lines[2], "output") ||
		!strings.HasPrefix(lines[3], "server") {
		t.Errorf("rows not sorted by key: %q", lines[1:])
	}
}

func TestTableFormatter_ExplicitTable(t *testing.T) {
	grid := &Table{Headers: []string{"USER", "STATE"}}
	grid.AddRow("42", "stored")
	grid.AddRow("51", "consumed")

	lines := renderTable(t, grid)
	if len(lines) != 3 {
		t.Fatalf("got %d lines: %q", len(lines), lines)
	}
	if !strings.Contains(lines[2], "consumed") {
		t.Errorf("last row = %q", lines[2])
	}
}

func TestTableFormatter_NoHeaders(t *testing.T) {
	var buf bytes.Buffer
	f := &TableFormatter{NoHeaders: true}
	if err := f.Format(&buf, map[string]string{"backend": "memory"}); err != nil {
		t.Fatalf("Format: %v", err)
	}

	if strings.Contains(buf.String(), "FIELD") {
		t.Errorf("headers printed despite NoHeaders: %q", buf.String())
	}
}

func TestTableFormatter_JSONFallback(t *testing.T) {
	var buf bytes.Buffer
	f := &TableFormatter{}
	if err := f.Format(&buf, []string{"a", "b"}); err != nil {
		t.Fatalf("Format: %v", err)
	}

	if !strings.HasPrefix(strings.TrimSpace(buf.String()), "[") {
		t.Errorf("slice did not fall back to JSON: %q", buf.String())
	}
}

func TestTableFormatter_Nil(t *testing.T) {
	if lines := renderTable(t, nil); lines != nil {
		t.Errorf("nil data produced output: %q", lines)
	}
}
