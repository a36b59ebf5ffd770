package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PipelineMetrics holds the counters and histograms of the generation pipeline
type PipelineMetrics struct {
	// Exports
	ExportsTotal        *prometheus.CounterVec
	ExportStageDuration *prometheus.HistogramVec

	// Providers
	ProviderFailuresTotal *prometheus.CounterVec
	ProviderCallDuration  *prometheus.HistogramVec

	// Generation
	GenerationsTotal       *prometheus.CounterVec
	ReformulationFallbacks prometheus.Counter
	ImageVariantsTotal     *prometheus.CounterVec

	// Billing gate
	GateDecisionsTotal *prometheus.CounterVec

	// Public storefront
	StorefrontVisitsTotal prometheus.Counter
}

// NewPipelineMetrics registers the metrics on reg. Pass prometheus.DefaultRegisterer in
// production and a fresh registry in tests.
func NewPipelineMetrics(reg prometheus.Registerer) *PipelineMetrics {
	f := promauto.With(reg)
	return &PipelineMetrics{
		ExportsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "store_exports_total",
				Help: "Exports by destination and final state",
			},
			[]string{"destination", "state"},
		),
		ExportStageDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "store_export_stage_duration_seconds",
				Help:    "Time spent in each export stage",
				Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
			},
			[]string{"stage"},
		),
		ProviderFailuresTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "provider_failures_total",
				Help: "Failed calls to external providers by provider and error kind",
			},
			[]string{"provider", "kind"},
		),
		ProviderCallDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "provider_call_duration_seconds",
				Help:    "Duration of external provider calls",
				Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
			},
			[]string{"provider"},
		),
		GenerationsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "store_generations_total",
				Help: "Drafts generated from a source URL by outcome",
			},
			[]string{"outcome"},
		),
		ReformulationFallbacks: f.NewCounter(
			prometheus.CounterOpts{
				Name: "reformulation_fallbacks_total",
				Help: "Reformulations that fell back to deterministic copy",
			},
		),
		ImageVariantsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "image_variants_total",
				Help: "AI image variant requests by style and outcome",
			},
			[]string{"style", "outcome"},
		),
		GateDecisionsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "subscription_gate_decisions_total",
				Help: "Subscription gate answers by status",
			},
			[]string{"status"},
		),
		StorefrontVisitsTotal: f.NewCounter(
			prometheus.CounterOpts{
				Name: "storefront_visits_total",
				Help: "Public storefront page views",
			},
		),
	}
}

// RecordExport records the final state of an export
func (m *PipelineMetrics) RecordExport(destination, state string) {
	if m == nil {
		return
	}
	m.ExportsTotal.WithLabelValues(destination, state).Inc()
}

// RecordStage records how long an export stage took
func (m *PipelineMetrics) RecordStage(stage string, started time.Time) {
	if m == nil {
		return
	}
	m.ExportStageDuration.WithLabelValues(stage).Observe(time.Since(started).Seconds())
}

// RecordProviderCall records the duration and, on failure, the error kind of a provider call
func (m *PipelineMetrics) RecordProviderCall(provider string, started time.Time, kind string) {
	if m == nil {
		return
	}
	m.ProviderCallDuration.WithLabelValues(provider).Observe(time.Since(started).Seconds())
	if kind != "" {
		m.ProviderFailuresTotal.WithLabelValues(provider, kind).Inc()
	}
}

// RecordGeneration records a draft generation outcome
func (m *PipelineMetrics) RecordGeneration(outcome string) {
	if m == nil {
		return
	}
	m.GenerationsTotal.WithLabelValues(outcome).Inc()
}

// RecordReformulationFallback records a degraded reformulation
func (m *PipelineMetrics) RecordReformulationFallback() {
	if m == nil {
		return
	}
	m.ReformulationFallbacks.Inc()
}

// RecordImageVariant records an AI variant request
func (m *PipelineMetrics) RecordImageVariant(style, outcome string) {
	if m == nil {
		return
	}
	m.ImageVariantsTotal.WithLabelValues(style, outcome).Inc()
}

// RecordGateDecision records a subscription gate answer
func (m *PipelineMetrics) RecordGateDecision(status string) {
	if m == nil {
		return
	}
	m.GateDecisionsTotal.WithLabelValues(status).Inc()
}

// RecordVisit records a public storefront view
func (m *PipelineMetrics) RecordVisit() {
	if m == nil {
		return
	}
	m.StorefrontVisitsTotal.Inc()
}
