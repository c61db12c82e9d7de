package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Resolution metrics
var (
	ResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "playlist_resolver_resolutions_total",
			Help: "Total number of resolution steps by result",
		},
		[]string{"result", "depth"},
	)

	ResolutionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "playlist_resolver_resolution_duration_seconds",
			Help:    "Duration of top-level resolutions in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"result"},
	)

	ResolutionsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "playlist_resolver_resolutions_in_flight",
			Help: "Number of top-level resolutions currently running",
		},
	)

	SniffsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "playlist_resolver_sniffs_total",
			Help: "Total number of content classifications by type",
		},
		[]string{"classification"},
	)
)

// Fetch metrics
var (
	FetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "playlist_resolver_fetches_total",
			Help: "Total number of content fetches by source and status",
		},
		[]string{"source", "status"},
	)

	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "playlist_resolver_fetch_duration_seconds",
			Help:    "Content fetch duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"},
	)
)

// Error metrics
var (
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "playlist_resolver_errors_total",
			Help: "Total number of recorded errors by package and cause",
		},
		[]string{"package", "cause"},
	)
)

// Storage metrics
var (
	ArtifactsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "playlist_resolver_artifacts_total",
			Help: "Total number of resolution reports written to disk",
		},
	)
)
