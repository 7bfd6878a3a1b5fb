// Package metrics exports ingestion and matching counters in Prometheus format.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Judgment outcomes.
const (
	OutcomeOK                 = "ok"
	OutcomeNotConfigured      = "not_configured"
	OutcomeServiceUnavailable = "service_unavailable"
	OutcomeParseFailure       = "parse_failure"
	OutcomeUnexpected         = "unexpected"
)

// Metrics holds the collectors on a private registry. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	resumesIngested  prometheus.Counter
	ingestionErrors  *prometheus.CounterVec
	judgments        *prometheus.CounterVec
	judgmentDuration prometheus.Histogram
	matchRequests    prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		resumesIngested: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "resume_matcher_resumes_ingested_total",
			Help: "Resumes successfully written to the vector index.",
		}),
		ingestionErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "resume_matcher_ingestion_errors_total",
			Help: "Ingestion error events by reason.",
		}, []string{"reason"}),
		judgments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "resume_matcher_judgments_total",
			Help: "Judgments produced, by outcome.",
		}, []string{"outcome"}),
		judgmentDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "resume_matcher_judgment_duration_seconds",
			Help:    "Time spent producing one judgment.",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		}),
		matchRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "resume_matcher_match_requests_total",
			Help: "Match requests served.",
		}),
	}

	m.registry.MustRegister(
		m.resumesIngested,
		m.ingestionErrors,
		m.judgments,
		m.judgmentDuration,
		m.matchRequests,
	)

	return m
}

func (m *Metrics) ResumeIngested() {
	if m == nil {
		return
	}
	m.resumesIngested.Inc()
}

func (m *Metrics) IngestionError(reason string) {
	if m == nil {
		return
	}
	m.ingestionErrors.WithLabelValues(reason).Inc()
}

func (m *Metrics) Judgment(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.judgments.WithLabelValues(outcome).Inc()
	m.judgmentDuration.Observe(elapsed.Seconds())
}

func (m *Metrics) MatchRequest() {
	if m == nil {
		return
	}
	m.matchRequests.Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
