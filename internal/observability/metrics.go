package observability

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the governance core's collectors. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	ingestRejected       *prometheus.CounterVec
	risksDetected        *prometheus.CounterVec
	detectorFailures     *prometheus.CounterVec
	semaphoreTransitions *prometheus.CounterVec
	enrichment           *prometheus.CounterVec
	observeLatency       prometheus.Histogram
	analyzeLatency       prometheus.Histogram
}

var (
	defaultOnce    sync.Once
	defaultMetrics *Metrics
)

// Default returns metrics registered against the global Prometheus registry.
func Default() *Metrics {
	defaultOnce.Do(func() {
		defaultMetrics = NewMetrics(prometheus.DefaultRegisterer)
	})
	return defaultMetrics
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ingestRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "governor",
			Name:      "ingest_rejected_total",
			Help:      "Interaction events rejected by trace ingestion.",
		}, []string{"reason"}),
		risksDetected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "governor",
			Name:      "risks_detected_total",
			Help:      "Risks emitted by batch analysis runs.",
		}, []string{"type", "severity"}),
		detectorFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "governor",
			Name:      "detector_failures_total",
			Help:      "Risk detector runs that failed and contributed no risks.",
		}, []string{"detector"}),
		semaphoreTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "governor",
			Name:      "semaphore_transitions_total",
			Help:      "Governance semaphore state changes.",
		}, []string{"from", "to"}),
		enrichment: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "governor",
			Name:      "enrichment_total",
			Help:      "Semantic enrichment attempts by outcome.",
		}, []string{"outcome"}),
		observeLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "governor",
			Name:      "observe_seconds",
			Help:      "Interactive path latency (ingest, classify, govern).",
			Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
		}),
		analyzeLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "governor",
			Name:      "analyze_seconds",
			Help:      "Batch risk analysis latency per session.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg != nil {
		reg.MustRegister(
			m.ingestRejected,
			m.risksDetected,
			m.detectorFailures,
			m.semaphoreTransitions,
			m.enrichment,
			m.observeLatency,
			m.analyzeLatency,
		)
	}
	return m
}

func (m *Metrics) IncIngestRejected(reason string) {
	if m == nil {
		return
	}
	m.ingestRejected.WithLabelValues(reason).Inc()
}

func (m *Metrics) IncRisk(riskType, severity string) {
	if m == nil {
		return
	}
	m.risksDetected.WithLabelValues(riskType, severity).Inc()
}

func (m *Metrics) IncDetectorFailure(detector string) {
	if m == nil {
		return
	}
	m.detectorFailures.WithLabelValues(detector).Inc()
}

func (m *Metrics) IncSemaphoreTransition(from, to string) {
	if m == nil {
		return
	}
	m.semaphoreTransitions.WithLabelValues(from, to).Inc()
}

func (m *Metrics) IncEnrichment(outcome string) {
	if m == nil {
		return
	}
	m.enrichment.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveInteractive(d time.Duration) {
	if m == nil {
		return
	}
	m.observeLatency.Observe(d.Seconds())
}

func (m *Metrics) ObserveAnalyze(d time.Duration) {
	if m == nil {
		return
	}
	m.analyzeLatency.Observe(d.Seconds())
}
