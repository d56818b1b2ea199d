// Package metrics exposes Prometheus instrumentation for the synthesis pipeline,
// the generation client and the non-fatal degradation paths.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for pathwise
type Metrics struct {
	// Pipeline metrics
	SynthesisRuns     *prometheus.CounterVec
	SynthesisDuration *prometheus.HistogramVec
	StateTransitions  *prometheus.CounterVec

	// Generation metrics
	GenerationRequests *prometheus.CounterVec
	GenerationLatency  *prometheus.HistogramVec
	GroundingSources   prometheus.Counter

	// Aggregation and history metrics
	Degradations    *prometheus.CounterVec
	RecordsAppended *prometheus.CounterVec
}

// New creates metrics registered on reg. A nil reg uses a private registry,
// which keeps repeated construction in tests from colliding.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Metrics{
		SynthesisRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pathwise_synthesis_runs_total",
				Help: "Synthesis runs by outcome",
			},
			[]string{"outcome"},
		),
		SynthesisDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pathwise_synthesis_duration_seconds",
				Help:    "Duration of synthesis runs in seconds",
				Buckets: prometheus.ExponentialBuckets(0.5, 2, 10), // 0.5s to 256s
			},
			[]string{"outcome"},
		),
		StateTransitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pathwise_pipeline_transitions_total",
				Help: "Pipeline state transitions",
			},
			[]string{"from", "to"},
		),
		GenerationRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pathwise_generation_requests_total",
				Help: "Content generation requests by task and success",
			},
			[]string{"task", "success"},
		),
		GenerationLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pathwise_generation_latency_seconds",
				Help:    "Content generation latency in seconds",
				Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
			},
			[]string{"task"},
		),
		GroundingSources: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "pathwise_grounding_sources_total",
				Help: "Grounding sources attached to generation responses",
			},
		),
		Degradations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pathwise_degradations_total",
				Help: "Non-fatal fallbacks by component",
			},
			[]string{"component"},
		),
		RecordsAppended: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pathwise_records_appended_total",
				Help: "History records appended by collection",
			},
			[]string{"collection"},
		),
	}
}

// RecordSynthesis records the outcome of one synthesis run.
func (m *Metrics) RecordSynthesis(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.SynthesisRuns.WithLabelValues(outcome).Inc()
	m.SynthesisDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

// RecordTransition records a pipeline state transition.
func (m *Metrics) RecordTransition(from, to string) {
	if m == nil {
		return
	}
	m.StateTransitions.WithLabelValues(from, to).Inc()
}

// RecordGeneration records a generation request.
func (m *Metrics) RecordGeneration(task string, success bool, elapsed time.Duration, sources int) {
	if m == nil {
		return
	}
	successStr := "false"
	if success {
		successStr = "true"
	}
	m.GenerationRequests.WithLabelValues(task, successStr).Inc()
	m.GenerationLatency.WithLabelValues(task).Observe(elapsed.Seconds())
	if sources > 0 {
		m.GroundingSources.Add(float64(sources))
	}
}

// RecordDegradation records a non-fatal fallback.
func (m *Metrics) RecordDegradation(component string) {
	if m == nil {
		return
	}
	m.Degradations.WithLabelValues(component).Inc()
}

// RecordAppend records an appended history record.
func (m *Metrics) RecordAppend(collection string) {
	if m == nil {
		return
	}
	m.RecordsAppended.WithLabelValues(collection).Inc()
}
