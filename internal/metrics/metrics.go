// Package metrics provides Prometheus metrics for the extraction pipeline
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Extractor metrics
	ExtractorRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bomcheck_extractor_runs_total",
			Help: "Total number of extractor runs by outcome",
		},
		[]string{"extractor", "status"},
	)

	ExtractorDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bomcheck_extractor_duration_seconds",
			Help:    "Time taken by one extractor run",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 120},
		},
		[]string{"extractor"},
	)

	RecordsExtracted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bomcheck_records_extracted_total",
			Help: "Total number of records extracted",
		},
		[]string{"extractor"},
	)

	// Vision metrics
	VisionCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bomcheck_vision_calls_total",
			Help: "Total number of vision model calls by outcome",
		},
		[]string{"provider", "status"},
	)

	// Reconciliation metrics
	Comparisons = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bomcheck_comparisons_total",
			Help: "Total number of reconciliations by outcome",
		},
		[]string{"status"},
	)

	ComparedComponents = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bomcheck_compared_components",
			Help:    "Number of canonical components in one comparison",
			Buckets: prometheus.LinearBuckets(0, 10, 8),
		},
	)
)

// RecordExtractorRun records the outcome of one extractor run.
func RecordExtractorRun(extractor, status string, records int, elapsed time.Duration) {
	ExtractorRuns.WithLabelValues(extractor, status).Inc()
	ExtractorDuration.WithLabelValues(extractor).Observe(elapsed.Seconds())
	if records > 0 {
		RecordsExtracted.WithLabelValues(extractor).Add(float64(records))
	}
}

// RecordVisionCall records one call to a vision provider.
func RecordVisionCall(provider, status string) {
	VisionCalls.WithLabelValues(provider, status).Inc()
}

// RecordComparison records one reconciliation.
func RecordComparison(status string, components int) {
	Comparisons.WithLabelValues(status).Inc()
	if status == "ok" {
		ComparedComponents.Observe(float64(components))
	}
}
