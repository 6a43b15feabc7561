// Package domain defines the core domain models for tokengate.
package domain

import (
	"time"
)

// Token constraints.
const (
	MaxUserIDLength = 64
	MaxTokenLength  = 512
)

// Expiry formats accepted for UserToken.Expires, tried in order.
// The upstream issuer writes timestamps as strings; anything that parses
// as neither format counts as malformed and therefore never validates.
var expiryFormats = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// UserToken is a one-time login credential tied to a single user.
//
// At most one UserToken exists per user at any time; the user ID is the
// storage key. The record is created by the issuing side, and read and
// destroyed here during consumption. It is never updated in place.
type UserToken struct {
	// UserID identifies the user this token authenticates.
	UserID string `json:"user_id" gorm:"primaryKey;column:user_id"`

	// Token is the opaque credential value presented back by the caller.
	// Compared by exact equality only; no signature is verified.
	Token string `json:"token" gorm:"column:token"`

	// Expires is the absolute expiry as a timestamp-parseable string.
	Expires string `json:"expires" gorm:"column:expires"`
}

// TableName sets the gorm table name for the record.
func (UserToken) TableName() string { return "user_tokens" }

// Validate checks the record's structural constraints.
func (t *UserToken) Validate() error {
	if t.UserID == "" {
		return ErrTokenValidation.WithDetails("user_id is required")
	}
	if len(t.UserID) > MaxUserIDLength {
		return ErrTokenValidation.WithDetails("user_id too long")
	}
	if t.Token == "" {
		return ErrTokenValidation.WithDetails("token is required")
	}
	if len(t.Token) > MaxTokenLength {
		return ErrTokenValidation.WithDetails("token too long")
	}
	if t.Expires == "" {
		return ErrTokenValidation.WithDetails("expires is required")
	}
	return nil
}

// ExpiresAt parses the expiry string to an absolute instant.
// Returns ErrTokenMalformed for anything unparseable; the consumption
// flow treats that record as never valid.
func (t *UserToken) ExpiresAt() (time.Time, error) {
	for _, layout := range expiryFormats {
		if ts, err := time.ParseInLocation(layout, t.Expires, time.UTC); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, ErrTokenMalformed.WithDetails("unparseable expires value")
}

// IsExpired reports whether the token is no longer valid at the given
// instant. A token is live only while now is strictly before the expiry;
// a malformed expiry counts as expired.
func (t *UserToken) IsExpired(now time.Time) bool {
	expires, err := t.ExpiresAt()
	if err != nil {
		return true
	}
	return !now.Before(expires)
}

// Clone returns a deep copy of the token record.
func (t *UserToken) Clone() *UserToken {
	c := *t
	return &c
}
