// Package httpserver provides the HTTP/HTTPS server for TokenGate.
//
// It exposes the token login dispatch path, health and metrics
// endpoints, and the admin API for token management. Routing is built
// on net/http with a small middleware chain (request ID, panic
// recovery, rate limiting, admin authentication).
package httpserver
