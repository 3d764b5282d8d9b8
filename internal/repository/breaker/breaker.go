// Package breaker wraps repositories with a circuit breaker so a failing
// store is short-circuited instead of hammered on every request.
package breaker

import (
	"errors"

	"taskManager/internal/config"
	"taskManager/internal/logger"
	repo "taskManager/internal/repository"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

func New(name string, cfg config.BreakerConfig) *gobreaker.CircuitBreaker {
	failures := cfg.ConsecutiveFailures
	if failures == 0 {
		failures = 5
	}

	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		// a missing or duplicate record is an answer from a healthy store
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, repo.ErrNotFound) || errors.Is(err, repo.ErrDuplicate)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Repository: circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
}

func execute[T any](cb *gobreaker.CircuitBreaker, fn func() (T, error)) (T, error) {
	res, err := cb.Execute(func() (interface{}, error) {
		v, err := fn()
		return v, err
	})
	v, _ := res.(T)
	return v, err
}

func run(cb *gobreaker.CircuitBreaker, fn func() error) error {
	_, err := cb.Execute(func() (interface{}, error) {
		return nil, fn()
	})
	return err
}
