// Package service provides the domain services for tokengate.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gettokengate/tokengate/internal/core/domain"
	"github.com/gettokengate/tokengate/pkg/token"
)

// TokenRepository defines the storage interface for one-time login tokens.
//
// Take must be atomic per user ID: of two racing consumers, exactly one
// receives the record and the other sees ErrTokenNotFound.
type TokenRepository interface {
	Take(ctx context.Context, userID string) (*domain.UserToken, error)
	Delete(ctx context.Context, userID string) error
}

// LinkResolver resolves an opaque resource reference to a redirect URL.
type LinkResolver interface {
	Resolve(ctx context.Context, refID string) (string, error)
}

// Outcome classifies a consumption attempt. For diagnostics and metrics
// only; the caller-visible behavior is the same redirect either way.
type Outcome string

const (
	// OutcomeValidated means the token matched and the session was logged in.
	OutcomeValidated Outcome = "validated"

	// OutcomeNotValidated means the token was absent, mismatched, expired,
	// or malformed. Which one is recorded in Result.Reason only.
	OutcomeNotValidated Outcome = "not_validated"

	// OutcomeAlreadyAuthenticated means the session was logged in before the
	// request; the presented token is irrelevant and was not compared.
	OutcomeAlreadyAuthenticated Outcome = "already_authenticated"
)

// Result is the outcome of one consumption attempt.
type Result struct {
	// Outcome is the terminal state of the attempt.
	Outcome Outcome

	// Reason carries the denial cause for OutcomeNotValidated. Never
	// surfaced to the caller.
	Reason *domain.DomainError

	// RedirectURL is the resolved destination. Always set on success of
	// the flow, whatever the validation outcome.
	RedirectURL string
}

// LoginService consumes one-time URL tokens and authenticates sessions.
//
// The flow is a fixed state machine: an already authenticated session
// skips validation entirely; otherwise the stored token is atomically
// taken from the repository and checked. On every path the stored token
// is consumed exactly once, and the flow ends in a single redirect.
type LoginService struct {
	tokens   TokenRepository
	sessions *SessionService
	links    LinkResolver
	logger   *slog.Logger

	// now is replaceable for tests.
	now func() time.Time
}

// NewLoginService creates a LoginService.
func NewLoginService(tokens TokenRepository, sessions *SessionService, links LinkResolver, logger *slog.Logger) *LoginService {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoginService{
		tokens:   tokens,
		sessions: sessions,
		links:    links,
		logger:   logger,
		now:      time.Now,
	}
}

// Consume runs the state machine for one parsed auth target against the
// given session.
//
// Validation denials (absent, mismatch, expired, malformed record) fold
// into OutcomeNotValidated and still produce a redirect URL; the flow
// stays silent about why a token failed. Collaborator failures (storage,
// session writes, link resolution) return an error and no Result; the
// caller must fail the request rather than redirect.
func (s *LoginService) Consume(ctx context.Context, sess *domain.Session, target domain.AuthTarget) (*Result, error) {
	res := &Result{}

	if s.sessions.IsAuthenticated(sess) {
		// The presented token is irrelevant to a logged-in user, but the
		// stored one is still consumed so it cannot be replayed later.
		if err := s.tokens.Delete(ctx, target.UserID); err != nil {
			return nil, err
		}
		res.Outcome = OutcomeAlreadyAuthenticated
	} else {
		outcome, reason, err := s.validate(ctx, sess, target)
		if err != nil {
			return nil, err
		}
		res.Outcome = outcome
		res.Reason = reason
	}

	url, err := s.links.Resolve(ctx, target.RefID)
	if err != nil {
		return nil, err
	}
	res.RedirectURL = url

	s.logger.Info("token consumed",
		"user_id", target.UserID,
		"ref_id", target.RefID,
		"outcome", string(res.Outcome))

	return res, nil
}

// validate takes the stored token and checks it against the presented
// value. The Take is the single deletion on this path: whether the checks
// pass or not, the record is gone afterwards.
func (s *LoginService) validate(ctx context.Context, sess *domain.Session, target domain.AuthTarget) (Outcome, *domain.DomainError, error) {
	stored, err := s.tokens.Take(ctx, target.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrTokenNotFound) {
			return OutcomeNotValidated, domain.ErrTokenNotFound, nil
		}
		return "", nil, err
	}

	if !token.Equal(target.Token, stored.Token) {
		return OutcomeNotValidated, domain.ErrTokenMismatch, nil
	}

	expires, err := stored.ExpiresAt()
	if err != nil {
		// Unparseable expiry fails closed as a denial, not a crash.
		return OutcomeNotValidated, domain.ErrTokenMalformed, nil
	}
	if !s.now().Before(expires) {
		return OutcomeNotValidated, domain.ErrTokenExpired, nil
	}

	if err := s.sessions.Authenticate(ctx, sess, target.UserID); err != nil {
		return "", nil, err
	}
	return OutcomeValidated, nil, nil
}
