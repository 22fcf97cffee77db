// Package monitoring exposes Prometheus metrics for the audit server.
package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Audit metrics
	AuditsTotal       *prometheus.CounterVec
	AuditDuration     *prometheus.HistogramVec
	AuditsInFlight    prometheus.Gauge
	NavigationsTotal  *prometheus.CounterVec
	GatekeeperDecided *prometheus.CounterVec
}

// NewMetrics creates a metrics set on its own registry, including Go and process collectors
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pagecheck_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pagecheck_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.005, .05, .5, 1, 5, 10, 15, 20, 30, 45, 60},
			},
			[]string{"method", "path"},
		),

		AuditsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pagecheck_audits_total",
				Help: "Total number of audits by outcome",
			},
			[]string{"outcome"},
		),
		AuditDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pagecheck_audit_duration_seconds",
				Help:    "Audit duration in seconds",
				Buckets: []float64{.01, 1, 5, 10, 15, 20, 25, 30, 40, 60},
			},
			[]string{"outcome"},
		),
		AuditsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "pagecheck_audits_in_flight",
				Help: "Number of audits currently running",
			},
		),
		NavigationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pagecheck_navigation_attempts_total",
				Help: "Navigation attempts by load strategy and outcome",
			},
			[]string{"strategy", "outcome"},
		),
		GatekeeperDecided: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pagecheck_gatekeeper_decisions_total",
				Help: "Sub-request policy decisions by verdict and rule",
			},
			[]string{"verdict", "rule"},
		),
	}
}

// Registry returns the registry the metrics are registered on
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// ObserveAudit records a finished audit
func (m *Metrics) ObserveAudit(outcome string, duration time.Duration) {
	m.AuditsTotal.WithLabelValues(outcome).Inc()
	m.AuditDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// ObserveNavigation records one load strategy attempt
func (m *Metrics) ObserveNavigation(strategy, outcome string) {
	m.NavigationsTotal.WithLabelValues(strategy, outcome).Inc()
}

// RecordDecision records a gatekeeper verdict
func (m *Metrics) RecordDecision(allowed bool, rule string) {
	verdict := "block"
	if allowed {
		verdict = "allow"
	}
	m.GatekeeperDecided.WithLabelValues(verdict, rule).Inc()
}

// AuditStarted increments the in-flight gauge and returns its decrement
func (m *Metrics) AuditStarted() func() {
	m.AuditsInFlight.Inc()
	return m.AuditsInFlight.Dec
}
