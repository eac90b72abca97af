package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Resolution outcomes.
const (
	OutcomeFound    = "found"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

var (
	Resolutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gameid_resolutions_total",
		Help: "Game identity resolutions by provider and outcome.",
	}, []string{"provider", "outcome"})

	ResolutionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gameid_resolution_duration_seconds",
		Help:    "Wall time of a full multi-variant resolution.",
		Buckets: prometheus.DefBuckets,
	}, []string{"provider"})

	UpstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gameid_upstream_requests_total",
		Help: "Requests sent to external catalogues.",
	}, []string{"provider", "endpoint", "status"}) // status: HTTP code or "error"

	TokenRefreshes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gameid_token_refreshes_total",
		Help: "Bearer tokens fetched from provider auth endpoints.",
	}, []string{"provider"})

	VariantFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gameid_variant_failures_total",
		Help: "Query variants that still failed after retrying.",
	}, []string{"provider"})

	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gameid_cache_lookups_total",
		Help: "Result cache lookups by outcome.",
	}, []string{"provider", "result"}) // result: hit, miss, error

	CachedResults = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "gameid_cached_results",
		Help: "Resolved games held in the result cache.",
	}, []string{"provider"})
)

// RecordResolution records the outcome and duration of one resolution.
func RecordResolution(provider, outcome string, start time.Time) {
	Resolutions.WithLabelValues(provider, outcome).Inc()
	ResolutionDuration.WithLabelValues(provider).Observe(time.Since(start).Seconds())
}

// RecordUpstream counts one upstream request. A zero status means the
// request never produced a response.
func RecordUpstream(provider, endpoint string, status int) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	UpstreamRequests.WithLabelValues(provider, endpoint, label).Inc()
}

// UpdateCacheMetrics sets the cached result gauge from per-provider counts.
func UpdateCacheMetrics(counts map[string]int) {
	CachedResults.Reset()
	for provider, n := range counts {
		CachedResults.WithLabelValues(provider).Set(float64(n))
	}
}
