// Package metric provides Prometheus metrics for TokenGate.
//
// Metrics cover the login flow (attempt outcomes, denial reasons,
// redirects), the HTTP surface (request counts and latencies) and
// storage (stored token gauge). They are exposed at /metrics in
// Prometheus format.
package metric
