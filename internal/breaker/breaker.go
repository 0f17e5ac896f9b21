// Package breaker wraps calls to external dependencies (the product
// catalog, sales history) with a circuit breaker so a failing
// dependency surfaces as domain.ErrDependencyUnavailable instead of
// hanging callers. Adapted from the near-verbatim
// internal/circuitbreaker/breaker.go of another service in this
// organization's Go stack, modernized to a generic Execute since this
// module targets a Go version with generics.
package breaker

import (
	"context"
	"errors"
	"time"

	"github.com/rxreplenish/rde/internal/domain"
	"github.com/sony/gobreaker"
)

// Config holds circuit breaker tuning knobs.
type Config struct {
	Name         string
	MaxRequests  uint32        // max requests allowed in half-open state
	Interval     time.Duration // cyclic period for clearing counts (0 = never)
	Timeout      time.Duration // period of open state before half-open
	FailureRatio float64       // failure ratio that trips the breaker
	MinRequests  uint32        // minimum requests before the ratio is checked
}

// DefaultConfig mirrors the conservative defaults this organization's
// services use for read-path dependencies.
func DefaultConfig(name string) Config {
	return Config{
		Name:         name,
		MaxRequests:  3,
		Interval:     10 * time.Second,
		Timeout:      30 * time.Second,
		FailureRatio: 0.6,
		MinRequests:  5,
	}
}

// Breaker wraps a gobreaker.CircuitBreaker.
type Breaker struct {
	cb *gobreaker.CircuitBreaker
}

// New creates a Breaker from cfg.
func New(cfg Config) *Breaker {
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.FailureRatio
		},
	}

	return &Breaker{cb: gobreaker.NewCircuitBreaker(settings)}
}

// Execute runs fn under circuit-breaker protection. An open breaker, or
// a half-open breaker already at its request limit, is reported as
// domain.ErrDependencyUnavailable; any other error from fn is returned
// unchanged.
func Execute[T any](ctx context.Context, b *Breaker, fn func(context.Context) (T, error)) (T, error) {
	var zero T

	result, err := b.cb.Execute(func() (interface{}, error) {
		return fn(ctx)
	})

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return zero, domain.ErrDependencyUnavailable
		}
		return zero, err
	}

	return result.(T), nil
}

// State returns the current circuit breaker state.
func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}
