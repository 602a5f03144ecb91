// SensorHub - Real-time Environmental Sensor Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

package store

import (
	"context"
	"errors"
	"fmt"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/sensorhub/internal/config"
	"github.com/tomtom215/sensorhub/internal/logging"
	"github.com/tomtom215/sensorhub/internal/metrics"
	"github.com/tomtom215/sensorhub/internal/models"
)

var _ TimeSeriesStore = (*BreakerStore)(nil)

// BreakerStore wraps a TimeSeriesStore with a circuit breaker. Once the
// backend has failed FailureThreshold times in a row, calls fail fast with
// ErrCircuitOpen until Timeout elapses and a trial call succeeds.
//
// A cancelled caller context and an unencodable reading are not counted as
// backend failures; an expired deadline is.
type BreakerStore struct {
	next TimeSeriesStore
	cb   *gobreaker.CircuitBreaker[interface{}]
	name string
}

// NewBreakerStore wraps next using cfg.
func NewBreakerStore(next TimeSeriesStore, cfg config.BreakerConfig) *BreakerStore {
	name := "store-" + next.Backend()
	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}

	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.ConsecutiveFailures < threshold {
				return false
			}
			logging.Warn().
				Str("breaker", name).
				Uint32("consecutive_failures", counts.ConsecutiveFailures).
				Msg("opening store circuit")
			return true
		},

		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, ErrInvalidReading)
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)

			logging.Info().Str("breaker", name).Str("from", fromStr).Str("to", toStr).Msg("circuit breaker state transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
			if to == gobreaker.StateClosed {
				metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)
			}
		},
	})

	return &BreakerStore{next: next, cb: cb, name: name}
}

// State returns the current breaker state as closed, half-open or open.
func (b *BreakerStore) State() string {
	return stateToString(b.cb.State())
}

func (b *BreakerStore) execute(fn func() (interface{}, error)) (interface{}, error) {
	result, err := b.cb.Execute(fn)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "rejected").Inc()
			return nil, fmt.Errorf("%w (%s)", ErrCircuitOpen, err.Error())
		}
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "failure").Inc()
		counts := b.cb.Counts()
		metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(b.name).Set(float64(counts.ConsecutiveFailures))
		return nil, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(b.name).Set(0)
	return result, nil
}

// Upsert implements TimeSeriesStore.
func (b *BreakerStore) Upsert(ctx context.Context, r models.Reading) error {
	if err := checkEncodable(r); err != nil {
		return err
	}
	_, err := b.execute(func() (interface{}, error) {
		return nil, b.next.Upsert(ctx, r)
	})
	return err
}

// Query implements TimeSeriesStore.
func (b *BreakerStore) Query(ctx context.Context, deviceID string, rng *Range, limit int) ([]models.Reading, error) {
	result, err := b.execute(func() (interface{}, error) {
		return b.next.Query(ctx, deviceID, rng, limit)
	})
	if err != nil {
		return nil, err
	}
	readings, _ := result.([]models.Reading)
	return readings, nil
}

// Ping implements TimeSeriesStore. An open circuit reports ErrCircuitOpen
// without touching the backend.
func (b *BreakerStore) Ping(ctx context.Context) error {
	_, err := b.execute(func() (interface{}, error) {
		return nil, b.next.Ping(ctx)
	})
	return err
}

// Close implements TimeSeriesStore. It always reaches the backend.
func (b *BreakerStore) Close() error {
	return b.next.Close()
}

// Backend implements TimeSeriesStore.
func (b *BreakerStore) Backend() string {
	return b.next.Backend()
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
