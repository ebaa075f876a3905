package tmdb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"moviefinder/movie"
	"moviefinder/pkg/metrics"
	"moviefinder/pkg/sentry"

	gobreaker "github.com/sony/gobreaker/v2"
)

const breakerName = "tmdb-api"

type BreakerSettings struct {
	// MinRequests is the number of calls in a window before the failure
	// ratio is considered.
	MinRequests  uint32
	FailureRatio float64
	// OpenTimeout is how long the breaker stays open before letting a
	// trial call through.
	OpenTimeout time.Duration
	Interval    time.Duration
}

// Breaker wraps a movie.Repository so that calls fail fast with
// gobreaker.ErrOpenState while TMDb keeps failing. It never retries.
type Breaker struct {
	next movie.Repository
	cb   *gobreaker.CircuitBreaker[[]movie.Movie]
}

func NewBreaker(next movie.Repository, s BreakerSettings, logger *slog.Logger) *Breaker {
	if logger == nil {
		logger = slog.Default()
	}
	if s.MinRequests == 0 {
		s.MinRequests = 10
	}
	if s.FailureRatio <= 0 {
		s.FailureRatio = 0.6
	}
	if s.OpenTimeout <= 0 {
		s.OpenTimeout = time.Minute
	}
	if s.Interval <= 0 {
		s.Interval = time.Minute
	}

	metrics.SetBreakerState(breakerName, gobreaker.StateClosed)

	cb := gobreaker.NewCircuitBreaker[[]movie.Movie](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Interval:    s.Interval,
		Timeout:     s.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < s.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= s.FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				"name", name,
				"from", from.String(),
				"to", to.String(),
			)
			metrics.SetBreakerState(name, to)
			sentry.WithTags(map[string]string{
				"breaker": name,
				"state":   to.String(),
			}).Warning(fmt.Sprintf("circuit breaker %s moved from %s to %s", name, from, to))
		},
		// a caller hanging up says nothing about TMDb's health
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})

	return &Breaker{next: next, cb: cb}
}

func (b *Breaker) SearchMovies(ctx context.Context, q movie.Query) ([]movie.Movie, error) {
	return b.cb.Execute(func() ([]movie.Movie, error) {
		return b.next.SearchMovies(ctx, q)
	})
}

func (b *Breaker) SimilarMovies(ctx context.Context, id int64) ([]movie.Movie, error) {
	return b.cb.Execute(func() ([]movie.Movie, error) {
		return b.next.SimilarMovies(ctx, id)
	})
}

func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}
