// Package logger configures structured logging for TokenGate.
//
// It sets up log/slog with JSON output, automatic redaction of token
// material and session IDs, and a globally adjustable level so a
// running server can switch between info and debug without a restart.
package logger
