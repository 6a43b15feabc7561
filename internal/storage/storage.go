// Package storage defines the persistence boundary for tokengate.
//
// Backends map a user ID to at most one outstanding login token, plus the
// session records behind the cookie layer. Three implementations exist:
// memory (default, always available), badgerstore (durable KV, optional
// at-rest encryption), and gormstore (SQLite via gorm).
package storage

import (
	"context"

	"github.com/gettokengate/tokengate/internal/core/domain"
)

// TokenRepository is the store for one-time login tokens.
//
// FindByUser and Delete are the contract the consumption flow relies on;
// Put is the issuing side's entry point. Take closes the find-then-delete
// race: it must be atomic per user ID, so that of two racing consumers
// exactly one receives the record.
type TokenRepository interface {
	// FindByUser returns the single record for a user, or ErrTokenNotFound.
	// Storage failures propagate as ErrStorageError with a cause.
	FindByUser(ctx context.Context, userID string) (*domain.UserToken, error)

	// Take atomically removes and returns the record for a user.
	// Returns ErrTokenNotFound when no record exists (or a racing caller
	// already took it).
	Take(ctx context.Context, userID string) (*domain.UserToken, error)

	// Put creates or replaces the record for tok.UserID.
	Put(ctx context.Context, tok *domain.UserToken) error

	// Delete removes the record for a user. Deleting a missing record
	// is success, not an error.
	Delete(ctx context.Context, userID string) error

	// Count returns the number of outstanding token records.
	Count(ctx context.Context) (int, error)

	// Close releases backend resources.
	Close() error
}

// SessionRepository stores server-side session records keyed by session ID.
type SessionRepository interface {
	// Get returns the session or ErrSessionNotFound.
	Get(ctx context.Context, id string) (*domain.Session, error)

	// Put creates or replaces a session record.
	Put(ctx context.Context, sess *domain.Session) error

	// Delete removes a session. Missing sessions delete successfully.
	Delete(ctx context.Context, id string) error

	// Count returns the number of stored sessions.
	Count(ctx context.Context) (int, error)
}
