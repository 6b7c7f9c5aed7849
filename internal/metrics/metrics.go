// Package metrics provides Prometheus metrics for monitoring.
//
// Key metrics:
//   - Quote provider request and error counts, by fetch kind
//   - Price cache hit/miss counts
//   - Processing cycle commit/failure counts and durations
//   - Indexed transfer throughput
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ProviderRequests counts outbound quote provider calls by kind
	// ("point" or "bulk").
	ProviderRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "indexer_provider_requests_total",
		Help: "Outbound quote provider requests.",
	}, []string{"kind"})

	// ProviderErrors counts failed quote provider calls by kind.
	ProviderErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "indexer_provider_errors_total",
		Help: "Failed quote provider requests.",
	}, []string{"kind"})

	// CacheHits counts price cache hits.
	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "indexer_price_cache_hits_total",
		Help: "Price resolutions served from the cache.",
	})

	// CacheMisses counts price cache misses.
	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "indexer_price_cache_misses_total",
		Help: "Price resolutions that required a provider fetch.",
	})

	// CyclesCommitted counts fully persisted processing cycles.
	CyclesCommitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "indexer_cycles_committed_total",
		Help: "Processing cycles committed to the store.",
	})

	// CyclesFailed counts aborted processing cycles.
	CyclesFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "indexer_cycles_failed_total",
		Help: "Processing cycles aborted before commit.",
	})

	// CycleDuration observes end-to-end cycle latency in seconds.
	CycleDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "indexer_cycle_duration_seconds",
		Help:    "End-to-end processing cycle duration.",
		Buckets: prometheus.DefBuckets,
	})

	// TransfersIndexed counts persisted transfer records.
	TransfersIndexed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "indexer_transfers_indexed_total",
		Help: "Transfer records written to the store.",
	})
)

// Handler returns the HTTP handler serving the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
