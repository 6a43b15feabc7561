// Package service provides the domain services for tokengate.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gettokengate/tokengate/internal/core/domain"
)

// SessionRepository defines the storage interface for session records.
type SessionRepository interface {
	Get(ctx context.Context, id string) (*domain.Session, error)
	Put(ctx context.Context, sess *domain.Session) error
	Delete(ctx context.Context, id string) error
}

// SessionService manages server-side sessions.
type SessionService struct {
	repo   SessionRepository
	ttl    time.Duration
	logger *slog.Logger
}

// NewSessionService creates a SessionService.
func NewSessionService(repo SessionRepository, ttl time.Duration, logger *slog.Logger) *SessionService {
	if ttl <= 0 {
		ttl = domain.DefaultSessionTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionService{repo: repo, ttl: ttl, logger: logger}
}

// Resolve returns the session for an incoming session ID, or a fresh
// anonymous session when the ID is empty, unknown, or expired. Storage
// failures propagate.
func (s *SessionService) Resolve(ctx context.Context, id string) (*domain.Session, error) {
	if id != "" {
		sess, err := s.repo.Get(ctx, id)
		if err == nil && !sess.IsExpired() {
			return sess, nil
		}
		if err == nil {
			// Stale record; drop it before issuing a replacement.
			if err := s.repo.Delete(ctx, id); err != nil {
				return nil, err
			}
		} else if !errors.Is(err, domain.ErrSessionNotFound) && !errors.Is(err, domain.ErrSessionExpired) {
			return nil, err
		}
	}

	sess, err := domain.NewSession(s.ttl)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Put(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// IsAuthenticated reports whether the session carries a login.
func (s *SessionService) IsAuthenticated(sess *domain.Session) bool {
	return sess.Authenticated
}

// RegenerateID replaces the session's identifier, removing the old record.
// Run at every privilege change so a pre-login session ID can never be
// replayed into an authenticated session.
func (s *SessionService) RegenerateID(ctx context.Context, sess *domain.Session) error {
	oldID := sess.ID

	newID, err := domain.GenerateSessionID()
	if err != nil {
		return err
	}

	sess.ID = newID
	sess.Version++

	if err := s.repo.Put(ctx, sess); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, oldID); err != nil {
		return err
	}

	s.logger.Debug("session id regenerated", "session_id", newID, "version", sess.Version)
	return nil
}

// Authenticate binds the session to a user and marks it authenticated.
// The ID is regenerated first.
func (s *SessionService) Authenticate(ctx context.Context, sess *domain.Session, userID string) error {
	if err := s.RegenerateID(ctx, sess); err != nil {
		return err
	}

	sess.UserID = userID
	sess.Authenticated = true

	if err := s.repo.Put(ctx, sess); err != nil {
		return err
	}

	s.logger.Info("session authenticated", "user_id", userID, "session_id", sess.ID)
	return nil
}
