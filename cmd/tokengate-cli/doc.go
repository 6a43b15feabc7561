// Package main provides the entry point for tokengate-cli.
//
// The CLI tool provides command-line access to the TokenGate admin API:
//
//   - Token management (put, get, delete)
//   - Server status summary
//   - Health checks
//   - CLI configuration management
//
// Usage:
//
//	tokengate-cli [command] [flags]
//	tokengate-cli token put --token abc123 --ttl 5m 42
//	tokengate-cli status --output json
//
// Connection settings come from flags, TOKENGATE_* environment
// variables, or ~/.tokengate/cli.yaml. The --socket flag talks to the
// server's local management socket without an API key.
package main
