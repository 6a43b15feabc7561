// Package domain defines the core domain models for tokengate.
package domain

import (
	"errors"
	"fmt"
)

// DomainError carries a stable TG-XXXX-NNNN code alongside the
// message, so the HTTP edge and the CLI can act on the code without
// parsing error text.
type DomainError struct {
	Code    string
	Message string
	Details string
	Cause   error
}

func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is matches by code, so errors.Is works across WithDetails and
// WithCause copies of the same sentinel.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && e.Code == t.Code
}

// NewDomainError defines a sentinel. Callers annotate per occurrence
// with WithDetails or WithCause rather than mutating the sentinel.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

// WithDetails returns a copy carrying occurrence-specific detail text.
func (e *DomainError) WithDetails(details string) *DomainError {
	c := *e
	c.Details = details
	return &c
}

// WithCause returns a copy wrapping the underlying error.
func (e *DomainError) WithCause(cause error) *DomainError {
	c := *e
	c.Cause = cause
	return &c
}

// IsDomainError reports whether err is a DomainError with the given
// code; with an empty code it matches any DomainError.
func IsDomainError(err error, code string) bool {
	var de *DomainError
	if !errors.As(err, &de) {
		return false
	}
	return code == "" || de.Code == code
}

// GetErrorCode returns err's code, or "" for non-domain errors.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// Token errors (TOKN).
//
// The four denial reasons exist for diagnostics and metrics only. The HTTP
// edge folds all of them into the same silent not-validated outcome so that
// callers cannot learn why a presented token was refused.
var (
	// ErrTokenNotFound indicates no token record exists for the user.
	ErrTokenNotFound = NewDomainError("TG-TOKN-4040", "token not found")

	// ErrTokenMismatch indicates the presented token does not match the stored value.
	ErrTokenMismatch = NewDomainError("TG-TOKN-4010", "token mismatch")

	// ErrTokenExpired indicates the stored token has expired.
	ErrTokenExpired = NewDomainError("TG-TOKN-4011", "token expired")

	// ErrTokenMalformed indicates the stored token record is malformed
	// (e.g., an unparseable expiry). Treated as expired, never as a crash.
	ErrTokenMalformed = NewDomainError("TG-TOKN-4000", "malformed token record")

	// ErrTokenValidation indicates token record validation failed on write.
	ErrTokenValidation = NewDomainError("TG-TOKN-4001", "token record validation failed")
)

// Session errors (SESS).
var (
	// ErrSessionNotFound indicates the requested session was not found.
	ErrSessionNotFound = NewDomainError("TG-SESS-4040", "session not found")

	// ErrSessionExpired indicates the session has expired.
	ErrSessionExpired = NewDomainError("TG-SESS-4041", "session expired")
)

// Link resolution errors (LINK).
var (
	// ErrLinkUnresolved indicates the resource reference could not be resolved.
	ErrLinkUnresolved = NewDomainError("TG-LINK-4040", "resource reference not resolvable")
)

// Authentication errors (AUTH).
var (
	// ErrAdminKeyMissing indicates no admin key was provided.
	ErrAdminKeyMissing = NewDomainError("TG-AUTH-4010", "admin key not provided")

	// ErrAdminKeyInvalid indicates the admin key is invalid.
	ErrAdminKeyInvalid = NewDomainError("TG-AUTH-4011", "invalid admin key")
)

// System errors (SYS).
var (
	// ErrInternalServer indicates an internal server error.
	ErrInternalServer = NewDomainError("TG-SYS-5000", "internal server error")

	// ErrStorageError indicates a storage layer error.
	ErrStorageError = NewDomainError("TG-SYS-5001", "storage error")

	// ErrBadRequest indicates a malformed request.
	ErrBadRequest = NewDomainError("TG-SYS-4000", "bad request")

	// ErrRateLimited indicates too many requests.
	ErrRateLimited = NewDomainError("TG-SYS-4290", "too many requests")
)

// Argument errors (ARG).
var (
	// ErrInvalidArgument indicates an invalid argument.
	ErrInvalidArgument = NewDomainError("TG-ARG-1001", "invalid argument")
)
