// Package metrics holds the Prometheus collectors exposed on /metrics.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	gobreaker "github.com/sony/gobreaker/v2"
)

// Lookup outcomes.
const (
	LookupFound        = "found"
	LookupInvalid      = "invalid"
	LookupNotFound     = "not_found"
	LookupUnavailable  = "unavailable"
	LookupBreakerOpen  = "breaker_open"
	LookupUnclassified = "error"
)

var (
	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tmdb_requests_total",
			Help: "Count of TMDb API calls",
		},
		[]string{"endpoint", "outcome"},
	)

	UpstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tmdb_request_duration_seconds",
			Help:    "Time taken by TMDb API calls",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
		[]string{"endpoint"},
	)

	Lookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "similar_lookups_total",
			Help: "Count of similar-movie lookups by outcome",
		},
		[]string{"outcome"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)
)

// ObserveUpstream records one TMDb call.
func ObserveUpstream(endpoint string, err error, elapsed time.Duration) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	UpstreamRequests.WithLabelValues(endpoint, outcome).Inc()
	UpstreamDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

func ObserveLookup(outcome string) {
	Lookups.WithLabelValues(outcome).Inc()
}

func SetBreakerState(name string, state gobreaker.State) {
	CircuitBreakerState.WithLabelValues(name).Set(stateValue(state))
}

// IsBreakerRejection reports whether err came from an open breaker rather
// than from the upstream itself.
func IsBreakerRejection(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

func stateValue(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
