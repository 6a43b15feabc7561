// Package tlsroots provides TLS certificate management for TokenGate.
//
// This package handles TLS certificate loading and management:
//
//   - roots.go: System certificates + custom CA loading
//   - watcher.go: Certificate hot-reload via fsnotify
//
// The server uses the watcher to serve HTTPS with zero-downtime
// certificate rotation; the CLI uses the pool to trust private CAs
// when talking to the admin API.
package tlsroots
