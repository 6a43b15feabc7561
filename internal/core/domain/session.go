// Package domain defines the core domain models for tokengate.
package domain

import (
	"crypto/rand"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// Session constants.
const (
	// SessionIDPrefix is the prefix for session IDs.
	SessionIDPrefix = "tgss-"

	// DefaultSessionTTL is the session lifetime applied when none is configured.
	DefaultSessionTTL = 2 * time.Hour
)

// Session is the server-side authenticated-state container for one client.
//
// A session starts anonymous. Consuming a valid login token authenticates
// it; the ID is regenerated at that moment so a pre-authentication session
// ID can never be replayed into an authenticated one.
type Session struct {
	// ID is the unique identifier, format tgss-{ulid_lowercase}.
	ID string `json:"id"`

	// UserID is the authenticated user, empty while anonymous.
	UserID string `json:"user_id"`

	// Authenticated reports whether this session carries a login.
	Authenticated bool `json:"authenticated"`

	// CreatedAt is the creation timestamp (Unix milliseconds).
	CreatedAt int64 `json:"created_at"`

	// ExpiresAt is the absolute expiry timestamp (Unix milliseconds).
	ExpiresAt int64 `json:"expires_at"`

	// Version counts ID regenerations, for diagnostics.
	Version uint64 `json:"version"`
}

// NewSession creates a new anonymous session with a generated ID.
func NewSession(ttl time.Duration) (*Session, error) {
	id, err := GenerateSessionID()
	if err != nil {
		return nil, err
	}

	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}

	now := time.Now()
	return &Session{
		ID:        id,
		CreatedAt: now.UnixMilli(),
		ExpiresAt: now.Add(ttl).UnixMilli(),
		Version:   1,
	}, nil
}

// GenerateSessionID generates a new session ID using ULID.
func GenerateSessionID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", ErrInternalServer.WithCause(err)
	}
	return SessionIDPrefix + strings.ToLower(id.String()), nil
}

// IsExpired reports whether the session has passed its expiry.
func (s *Session) IsExpired() bool {
	return time.Now().UnixMilli() >= s.ExpiresAt
}

// Clone returns a deep copy of the session.
func (s *Session) Clone() *Session {
	c := *s
	return &c
}
