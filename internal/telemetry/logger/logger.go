package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config selects the output shape of the process logger.
type Config struct {
	// Level is the minimum level written: debug, info, warn, error.
	Level string
	// Format is "json" (default) or "text".
	Format string
	// Output defaults to os.Stderr.
	Output io.Writer
	// AddSource attaches file:line of the log call to each entry.
	AddSource bool
}

// levelVar is shared by every logger from New, so SetLevel affects the
// whole process at once.
var levelVar = new(slog.LevelVar)

// New builds a slog.Logger from cfg. Every attribute passes through
// the redaction filter before it reaches the output.
func New(cfg Config) *slog.Logger {
	levelVar.Set(parseLevel(cfg.Level))

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	opts := &slog.HandlerOptions{
		Level:     levelVar,
		AddSource: cfg.AddSource,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			return redactAttr(a)
		},
	}

	if f := strings.ToLower(cfg.Format); f == "text" || f == "console" {
		return slog.New(slog.NewTextHandler(out, opts))
	}
	return slog.New(slog.NewJSONHandler(out, opts))
}

// SetLevel adjusts the process-wide level at runtime, for config
// reloads that change log.level.
func SetLevel(level string) {
	levelVar.Set(parseLevel(level))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
