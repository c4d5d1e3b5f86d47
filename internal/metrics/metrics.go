// Package metrics provides Prometheus metrics for the client.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "truthweaver"

// Outcome labels
const (
	OutcomeSuccess    = "success"
	OutcomeValidation = "validation"
	OutcomeServer     = "server"
	OutcomeProcessing = "processing"
	OutcomeTransport  = "transport"
	OutcomeRejected   = "rejected"
	OutcomeStale      = "stale"
)

// Metrics holds all Prometheus metrics for one process.
type Metrics struct {
	registry *prometheus.Registry

	SubmissionsTotal   *prometheus.CounterVec
	SubmissionsActive  prometheus.Gauge
	SubmissionDuration *prometheus.HistogramVec
	UploadBytes        prometheus.Counter
	StaleCompletions   prometheus.Counter
	HealthChecks       *prometheus.CounterVec
}

// New creates the metrics on a private registry, with Go and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		SubmissionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_total",
			Help:      "Total number of submissions by outcome",
		}, []string{"outcome"}),
		SubmissionsActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "submissions_active",
			Help:      "Number of submissions currently in flight",
		}),
		SubmissionDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "submission_duration_seconds",
			Help:      "Round-trip time of transcribe-and-analyze calls",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300},
		}, []string{"outcome"}),
		UploadBytes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upload_bytes_total",
			Help:      "Total audio bytes uploaded",
		}),
		StaleCompletions: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_completions_total",
			Help:      "Completions dropped because the submission was no longer current",
		}),
		HealthChecks: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "health_checks_total",
			Help:      "Health probes by result",
		}, []string{"result"}),
	}
}

// SubmissionStarted records an upload leaving the client
func (m *Metrics) SubmissionStarted(bytes int) {
	m.SubmissionsActive.Inc()
	m.UploadBytes.Add(float64(bytes))
}

// SubmissionFinished records the end of an upload started with SubmissionStarted
func (m *Metrics) SubmissionFinished(outcome string, elapsed time.Duration) {
	m.SubmissionsActive.Dec()
	m.SubmissionDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
	m.SubmissionsTotal.WithLabelValues(outcome).Inc()
}

// SubmissionRejected records a submission refused before any request
func (m *Metrics) SubmissionRejected(outcome string) {
	m.SubmissionsTotal.WithLabelValues(outcome).Inc()
}

// StaleCompletion records a dropped late completion
func (m *Metrics) StaleCompletion() {
	m.StaleCompletions.Inc()
}

// HealthCheck records one probe
func (m *Metrics) HealthCheck(healthy bool) {
	result := "healthy"
	if !healthy {
		result = "unhealthy"
	}
	m.HealthChecks.WithLabelValues(result).Inc()
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
