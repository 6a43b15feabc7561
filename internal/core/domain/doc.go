// Package domain defines the core domain models for tokengate.
//
// Domain models are pure value objects and entities without any
// IO dependencies or framework coupling: the one-time login token,
// the composite app-auth target carried in the redirect URL, and
// the server-side session record.
package domain
