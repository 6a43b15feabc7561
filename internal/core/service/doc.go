// Package service provides the domain services for tokengate.
//
// Services contain the business logic and define interfaces for their
// storage and collaborator dependencies: LoginService drives the one-time
// token consumption state machine, SessionService manages the server-side
// sessions behind the cookie layer.
package service
