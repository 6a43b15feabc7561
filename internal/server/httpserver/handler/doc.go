// Package handler provides HTTP request handlers for TokenGate.
//
// This package implements the login dispatch endpoint, health and
// readiness endpoints, and the administrative token API.
package handler
