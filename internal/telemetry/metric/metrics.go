package metric

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all application metrics behind a private registry so
// tests can build isolated instances.
type Metrics struct {
	registry *prometheus.Registry

	// Login flow
	LoginsTotal       *prometheus.CounterVec
	LoginDenialsTotal *prometheus.CounterVec
	RedirectsTotal    prometheus.Counter

	// HTTP surface
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Storage
	TokensStored prometheus.Gauge
}

// New creates a Metrics instance with its own registry, including the
// standard Go runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		LoginsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tokengate_logins_total",
			Help: "Login attempts by outcome.",
		}, []string{"outcome"}),
		LoginDenialsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tokengate_login_denials_total",
			Help: "Denied login attempts by reason code.",
		}, []string{"reason"}),
		RedirectsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tokengate_redirects_total",
			Help: "Redirects issued by the login flow.",
		}),
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tokengate_http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tokengate_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		TokensStored: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tokengate_tokens_stored",
			Help: "Token records currently stored.",
		}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.LoginsTotal,
		m.LoginDenialsTotal,
		m.RedirectsTotal,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.TokensStored,
	)

	return m
}

// Register adds an extra collector, such as a storage backend that
// exports its own gauges.
func (m *Metrics) Register(c prometheus.Collector) error {
	return m.registry.Register(c)
}

// Handler returns the HTTP handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
