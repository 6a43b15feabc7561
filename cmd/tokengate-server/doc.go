// Package main provides the entry point for tokengate-server.
//
// The server is the TokenGate service that provides:
//
//   - The one-time token login dispatch endpoint
//   - HTTP admin API for token record management
//   - Local Unix socket for management access (no API key required)
//   - Health and Prometheus metrics endpoints
//
// Usage:
//
//	tokengate-server [flags]
//	tokengate-server --config /path/to/config.yaml
//
// The server loads configuration, initializes the storage backend,
// and starts all configured listeners.
package main
