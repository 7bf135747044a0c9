package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Collection metrics
	collectionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "infrascope",
			Subsystem: "collection",
			Name:      "duration_seconds",
			Help:      "Duration of source collection in seconds",
			Buckets:   []float64{.1, .5, 1, 5, 10, 30, 60, 120},
		},
		[]string{"source", "status"},
	)

	resourcesCollected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "infrascope",
			Subsystem: "collection",
			Name:      "resources_total",
			Help:      "Total number of resources collected",
		},
		[]string{"source"},
	)

	collectionFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "infrascope",
			Subsystem: "collection",
			Name:      "failures_total",
			Help:      "Total number of collection failures",
		},
		[]string{"source"},
	)

	// Matching metrics
	matchCandidates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "infrascope",
			Subsystem: "matching",
			Name:      "candidates_total",
			Help:      "Total number of match candidates produced",
		},
		[]string{"strategy"},
	)

	edgesRetained = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "infrascope",
			Subsystem: "matching",
			Name:      "edges_retained_total",
			Help:      "Total number of relationship edges retained after deduplication",
		},
		[]string{"type"},
	)

	// Drift metrics
	driftFindings = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "infrascope",
			Subsystem: "drift",
			Name:      "findings_total",
			Help:      "Total number of drift findings",
		},
		[]string{"severity"},
	)

	// Run metrics
	runDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "infrascope",
			Subsystem: "engine",
			Name:      "run_duration_seconds",
			Help:      "Duration of a full correlation run in seconds",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300},
		},
	)
)

// ObserveCollection records the duration and outcome of one source collection
func ObserveCollection(source, status string, d time.Duration, count int) {
	collectionDuration.WithLabelValues(source, status).Observe(d.Seconds())
	resourcesCollected.WithLabelValues(source).Add(float64(count))
	if status == "failed" {
		collectionFailures.WithLabelValues(source).Inc()
	}
}

// RecordCandidate records a match candidate from a strategy
func RecordCandidate(strategy string) {
	matchCandidates.WithLabelValues(strategy).Inc()
}

// RecordEdge records a retained relationship edge
func RecordEdge(relationshipType string) {
	edgesRetained.WithLabelValues(relationshipType).Inc()
}

// RecordDrift records a drift finding
func RecordDrift(severity string) {
	driftFindings.WithLabelValues(severity).Inc()
}

// ObserveRun records the duration of a full correlation run
func ObserveRun(d time.Duration) {
	runDuration.Observe(d.Seconds())
}
