// Package connection provides the HTTP client tokengate-cli uses to
// talk to the server's admin API.
//
// The client speaks the JSON envelope the server emits and supports
// three transports: plain HTTP, HTTPS with an optional private CA
// bundle, and HTTP over the server's local Unix management socket.
package connection
