package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PredicateResolutions counts predicate lookups by outcome.
	PredicateResolutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lineage_predicate_resolutions_total",
		Help: "Predicate lookups by outcome",
	}, []string{"outcome"})

	// ChainLength tracks how many identifiers each walked chain holds.
	ChainLength = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "lineage_chain_length",
		Help:    "Number of identifiers in a walked predicate chain",
		Buckets: []float64{1, 2, 3, 5, 8, 13, 21},
	})

	// BuildDuration tracks tree and branch build latency.
	BuildDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "lineage_build_duration_seconds",
		Help:    "Lineage build duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
	}, []string{"kind", "result"})

	// HTTPRequests counts API requests by route and status.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lineage_http_requests_total",
		Help: "HTTP requests by route and status code",
	}, []string{"route", "status"})
)
