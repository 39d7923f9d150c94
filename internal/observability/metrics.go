package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics exposes prometheus instruments for the service.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	httpErrors    *prometheus.CounterVec
	intakeStarted prometheus.Counter
	intakeOutcome *prometheus.CounterVec
}

// NewMetrics registers and returns service metrics.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())

	m := &Metrics{
		registry: registry,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "helpdesk_http_requests_total",
			Help: "HTTP requests by path, method and status.",
		}, []string{"path", "method", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "helpdesk_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"path", "method"}),
		httpErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "helpdesk_http_errors_total",
			Help: "Handler errors by path, method and error code.",
		}, []string{"path", "method", "code"}),
		intakeStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "helpdesk_intake_sessions_started_total",
			Help: "Intake conversations started.",
		}),
		intakeOutcome: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "helpdesk_intake_submissions_total",
			Help: "Intake ticket submissions by outcome.",
		}, []string{"outcome"}),
	}

	registry.MustRegister(m.httpRequests, m.httpDuration, m.httpErrors, m.intakeStarted, m.intakeOutcome)
	return m
}

// RecordRequest increments request counters.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(path, method).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.httpErrors.WithLabelValues(path, method, code).Inc()
}

// RecordIntakeStarted counts a new intake conversation.
func (m *Metrics) RecordIntakeStarted() {
	if m == nil {
		return
	}
	m.intakeStarted.Inc()
}

// RecordIntakeSubmission counts a terminal submission outcome.
func (m *Metrics) RecordIntakeSubmission(outcome string) {
	if m == nil {
		return
	}
	m.intakeOutcome.WithLabelValues(outcome).Inc()
}

// Handler serves the prometheus exposition endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
