// Package localserver provides Unix socket server for local management.
//
// This package serves the admin API over a Unix domain socket,
// bypassing API key authentication for localhost token management:
//
//   - Token record inspection and deletion
//   - Server status
//
// Security:
//
//   - Only accessible via Unix domain socket
//   - File system permissions control access (mode 0600)
//   - No API key required (local access only)
package localserver
