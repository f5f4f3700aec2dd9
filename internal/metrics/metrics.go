// Package metrics holds the Prometheus collectors shared by the lookup
// pipeline and the HTTP server. Collectors register with the default
// registry via promauto.
//
// Metrics:
//   - starneighbours_upstream_pages_total{endpoint, outcome} (Counter): GitHub
//     listing pages requested; outcome is ok, not_found or error
//   - starneighbours_lookups_total{outcome} (Counter): neighbour lookups by
//     outcome (ok, error)
//   - starneighbours_lookup_duration_seconds (Histogram): neighbour lookup
//     duration
//   - starneighbours_cache_requests_total{result} (Counter): response cache
//     lookups by result (hit, miss, error)
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	UpstreamPages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "starneighbours_upstream_pages_total",
			Help: "Total number of GitHub listing pages requested",
		},
		[]string{"endpoint", "outcome"},
	)

	Lookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "starneighbours_lookups_total",
			Help: "Total number of neighbour lookups",
		},
		[]string{"outcome"},
	)

	LookupDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "starneighbours_lookup_duration_seconds",
			Help:    "Duration of neighbour lookups",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		},
	)

	CacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "starneighbours_cache_requests_total",
			Help: "Total number of response cache lookups",
		},
		[]string{"result"},
	)
)
