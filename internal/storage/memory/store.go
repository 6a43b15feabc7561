// Package memory provides the in-memory storage backend for tokengate.
//
// It is the default backend and the one the test suite runs against.
// Token records live in a sharded concurrent map whose per-key Take gives
// the at-most-once consumption guarantee without a global lock.
package memory

import (
	"context"

	"github.com/gettokengate/tokengate/internal/core/domain"
	"github.com/gettokengate/tokengate/pkg/cmap"
)

// TokenStore is an in-memory TokenRepository.
type TokenStore struct {
	tokens *cmap.Map[*domain.UserToken]
}

// NewTokenStore creates an empty in-memory token store.
func NewTokenStore() *TokenStore {
	return &TokenStore{
		tokens: cmap.New[*domain.UserToken](),
	}
}

// FindByUser returns the record for a user without consuming it.
func (s *TokenStore) FindByUser(_ context.Context, userID string) (*domain.UserToken, error) {
	tok, ok := s.tokens.Get(userID)
	if !ok {
		return nil, domain.ErrTokenNotFound
	}
	return tok.Clone(), nil
}

// Take atomically removes and returns the record for a user.
func (s *TokenStore) Take(_ context.Context, userID string) (*domain.UserToken, error) {
	tok, ok := s.tokens.Take(userID)
	if !ok {
		return nil, domain.ErrTokenNotFound
	}
	return tok, nil
}

// Put creates or replaces the record for tok.UserID.
func (s *TokenStore) Put(_ context.Context, tok *domain.UserToken) error {
	if err := tok.Validate(); err != nil {
		return err
	}
	s.tokens.Set(tok.UserID, tok.Clone())
	return nil
}

// Delete removes the record for a user; missing records delete successfully.
func (s *TokenStore) Delete(_ context.Context, userID string) error {
	s.tokens.Delete(userID)
	return nil
}

// Count returns the number of outstanding records.
func (s *TokenStore) Count(_ context.Context) (int, error) {
	return s.tokens.Count(), nil
}

// Close is a no-op for the in-memory backend.
func (s *TokenStore) Close() error { return nil }

// SessionStore is an in-memory SessionRepository.
type SessionStore struct {
	sessions *cmap.Map[*domain.Session]
}

// NewSessionStore creates an empty in-memory session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: cmap.New[*domain.Session](),
	}
}

// Get returns the session or ErrSessionNotFound. Expired sessions are
// dropped on read.
func (s *SessionStore) Get(_ context.Context, id string) (*domain.Session, error) {
	sess, ok := s.sessions.Get(id)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	if sess.IsExpired() {
		s.sessions.Delete(id)
		return nil, domain.ErrSessionExpired
	}
	return sess.Clone(), nil
}

// Put creates or replaces a session record.
func (s *SessionStore) Put(_ context.Context, sess *domain.Session) error {
	if sess.ID == "" {
		return domain.ErrInvalidArgument.WithDetails("session id is required")
	}
	s.sessions.Set(sess.ID, sess.Clone())
	return nil
}

// Delete removes a session; missing sessions delete successfully.
func (s *SessionStore) Delete(_ context.Context, id string) error {
	s.sessions.Delete(id)
	return nil
}

// Count returns the number of stored sessions.
func (s *SessionStore) Count(_ context.Context) (int, error) {
	return s.sessions.Count(), nil
}

// Sweep removes expired sessions and returns the count removed.
func (s *SessionStore) Sweep(_ context.Context) int {
	var expired []string
	s.sessions.Range(func(id string, sess *domain.Session) bool {
		if sess.IsExpired() {
			expired = append(expired, id)
		}
		return true
	})
	for _, id := range expired {
		s.sessions.Delete(id)
	}
	return len(expired)
}
