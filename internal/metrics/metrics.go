// Package metrics exposes Prometheus instruments for backend traffic and sessions.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "symptom_checker"

// Outcome labels for backend requests
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Metrics bundles all instruments on a private registry
type Metrics struct {
	registry *prometheus.Registry

	backendRequests  *prometheus.CounterVec
	backendLatency   *prometheus.HistogramVec
	relatedCollapsed prometheus.Counter
	relatedStale     prometheus.Counter
	sessionsCreated  prometheus.Counter
	sessionsLive     prometheus.Gauge
}

// New registers all instruments on a fresh registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		backendRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backend_requests_total",
			Help:      "Requests issued to the inference backend.",
		}, []string{"endpoint", "outcome"}),
		backendLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "backend_request_duration_seconds",
			Help:      "Latency of inference backend requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
		relatedCollapsed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "related_debounce_collapsed_total",
			Help:      "Related-symptom fetches cancelled by a newer selection change.",
		}),
		relatedStale: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "related_stale_responses_total",
			Help:      "Related-symptom responses discarded because the selection moved on.",
		}),
		sessionsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_created_total",
			Help:      "Picker sessions created.",
		}),
		sessionsLive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_live",
			Help:      "Picker sessions currently held in memory.",
		}),
	}

	m.registry.MustRegister(
		m.backendRequests,
		m.backendLatency,
		m.relatedCollapsed,
		m.relatedStale,
		m.sessionsCreated,
		m.sessionsLive,
		collectors.NewGoCollector(),
	)
	return m
}

// ObserveBackend records one backend call
func (m *Metrics) ObserveBackend(endpoint string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	m.backendRequests.WithLabelValues(endpoint, outcome).Inc()
	m.backendLatency.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

// RelatedCollapsed counts a debounced fetch superseded before it fired
func (m *Metrics) RelatedCollapsed() {
	if m == nil {
		return
	}
	m.relatedCollapsed.Inc()
}

// RelatedStale counts a related response dropped for an outdated selection
func (m *Metrics) RelatedStale() {
	if m == nil {
		return
	}
	m.relatedStale.Inc()
}

// SessionOpened records a new session
func (m *Metrics) SessionOpened() {
	if m == nil {
		return
	}
	m.sessionsCreated.Inc()
	m.sessionsLive.Inc()
}

// SessionClosed records an evicted or expired session
func (m *Metrics) SessionClosed() {
	if m == nil {
		return
	}
	m.sessionsLive.Dec()
}

// Registry exposes the underlying registry for tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
