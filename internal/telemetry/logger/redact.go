package logger

import (
	"log/slog"
	"strings"
)

// sessionIDPrefix marks values that are bearer credentials while the
// session lives. They are masked down to a short hint rather than
// dropped, so log lines about one session can still be correlated.
const sessionIDPrefix = "tgss-"

const redactedValue = "***REDACTED***"

// sensitiveKeywords flags attribute keys whose string values must not
// reach the output at all.
var sensitiveKeywords = []string{
	"password",
	"secret",
	"token",
	"key",
	"credential",
	"auth",
	"bearer",
	"cookie",
}

// redactAttr is the ReplaceAttr hook. Groups are walked recursively.
func redactAttr(a slog.Attr) slog.Attr {
	switch a.Value.Kind() {
	case slog.KindString:
		if masked, changed := redactString(a.Key, a.Value.String()); changed {
			return slog.String(a.Key, masked)
		}

	case slog.KindGroup:
		members := a.Value.Group()
		out := make([]slog.Attr, len(members))
		for i, m := range members {
			out[i] = redactAttr(m)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(out...)}
	}
	return a
}

// redactString decides what a string attribute may show. Session ID
// values are recognized regardless of key name; everything else is
// judged by the key.
func redactString(key, val string) (string, bool) {
	if strings.HasPrefix(val, sessionIDPrefix) {
		return maskSessionID(val), true
	}
	if val != "" && sensitiveKey(key) {
		return redactedValue, true
	}
	return val, false
}

func sensitiveKey(key string) bool {
	key = strings.ToLower(key)
	for _, kw := range sensitiveKeywords {
		if strings.Contains(key, kw) {
			return true
		}
	}
	return false
}

// maskSessionID keeps the prefix and three characters at each end.
func maskSessionID(sid string) string {
	body := sid[len(sessionIDPrefix):]
	if len(body) <= 6 {
		return sessionIDPrefix + "***"
	}
	return sessionIDPrefix + body[:3] + "..." + body[len(body)-3:]
}
