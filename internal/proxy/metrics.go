package proxy

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	shelferrors "github.com/lepinkainen/steamshelf/internal/errors"
)

// Upstream endpoint labels.
const (
	upstreamOwnedGames = "owned_games"
	upstreamAppDetails = "app_details"
	upstreamScores     = "metacritic"
)

var (
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "steamshelf_proxy_requests_total",
		Help: "Total number of proxy requests by endpoint and response status.",
	}, []string{"endpoint", "status"})

	UpstreamDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "steamshelf_upstream_request_duration_seconds",
		Help:    "Duration of calls to the Steam APIs in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})

	UpstreamErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "steamshelf_upstream_errors_total",
		Help: "Total number of failed calls to the Steam APIs.",
	}, []string{"endpoint"})
)

// recordUpstream observes one upstream call. Only upstream-class failures
// count as errors; a missing profile is a valid answer.
func recordUpstream(endpoint string, start time.Time, err error) {
	UpstreamDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if err != nil && shelferrors.ClassOf(err) == shelferrors.ClassUpstream {
		UpstreamErrors.WithLabelValues(endpoint).Inc()
	}
}

// endpointLabel keeps the request counter's label set bounded.
func endpointLabel(path string) string {
	switch path {
	case pathOwnedGames, pathGameDetails, pathHealth, pathMetrics:
		return path
	default:
		return "other"
	}
}
