package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"trendprobe/internal/crawler"
)

var (
	// Upstream Metrics
	UpstreamRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trendprobe_upstream_requests_total",
		Help: "Total number of upstream calls by source, operation and outcome.",
	}, []string{"source", "operation", "outcome"})

	UpstreamRequestDurationSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "trendprobe_upstream_request_duration_seconds",
		Help:    "Duration of upstream calls in seconds, pacing delay excluded.",
		Buckets: prometheus.DefBuckets,
	}, []string{"source", "operation"})

	FallbacksServedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trendprobe_fallbacks_served_total",
		Help: "Total number of responses answered from static fallback data or as empty results.",
	}, []string{"operation"})

	// HTTP Metrics
	HTTPRequestDurationSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests.",
	}, []string{"method", "path", "status"})

	RateLimitedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "http_rate_limited_total",
		Help: "Total number of HTTP requests rejected by the rate limiter.",
	})
)

// Outcome maps an upstream error onto the outcome label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, crawler.ErrRejectedParameters):
		return "rejected"
	case errors.Is(err, crawler.ErrMalformedResponse):
		return "malformed"
	default:
		return "unavailable"
	}
}

// ObserveUpstream records one upstream call.
func ObserveUpstream(source, operation string, seconds float64, err error) {
	UpstreamRequestsTotal.WithLabelValues(source, operation, Outcome(err)).Inc()
	UpstreamRequestDurationSeconds.WithLabelValues(source, operation).Observe(seconds)
}
