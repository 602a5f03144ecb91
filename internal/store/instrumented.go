// SensorHub - Real-time Environmental Sensor Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/sensorhub/internal/metrics"
	"github.com/tomtom215/sensorhub/internal/models"
)

var _ TimeSeriesStore = (*InstrumentedStore)(nil)

// InstrumentedStore bounds each call with a timeout, records latency and
// error metrics, and normalises errors so every failure matches
// ErrStoreUnavailable.
type InstrumentedStore struct {
	next    TimeSeriesStore
	timeout time.Duration
	backend string
}

// NewInstrumentedStore wraps next. A zero timeout leaves caller deadlines alone.
func NewInstrumentedStore(next TimeSeriesStore, timeout time.Duration) *InstrumentedStore {
	return &InstrumentedStore{next: next, timeout: timeout, backend: next.Backend()}
}

// Unwrap returns the wrapped store.
func (s *InstrumentedStore) Unwrap() TimeSeriesStore {
	return s.next
}

func (s *InstrumentedStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *InstrumentedStore) observe(operation string, start time.Time, err error) error {
	metrics.RecordStoreOperation(s.backend, operation, time.Since(start), err)
	if err == nil || errors.Is(err, ErrStoreUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %s %s: %v", ErrStoreUnavailable, s.backend, operation, err)
}

// Upsert implements TimeSeriesStore.
func (s *InstrumentedStore) Upsert(ctx context.Context, r models.Reading) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	err := s.next.Upsert(ctx, r)
	return s.observe("upsert", start, err)
}

// Query implements TimeSeriesStore.
func (s *InstrumentedStore) Query(ctx context.Context, deviceID string, rng *Range, limit int) ([]models.Reading, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	readings, err := s.next.Query(ctx, deviceID, rng, limit)
	if err = s.observe("query", start, err); err != nil {
		return nil, err
	}
	return readings, nil
}

// Ping implements TimeSeriesStore.
func (s *InstrumentedStore) Ping(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	err := s.next.Ping(ctx)
	return s.observe("ping", start, err)
}

// Close implements TimeSeriesStore.
func (s *InstrumentedStore) Close() error {
	start := time.Now()
	err := s.next.Close()
	return s.observe("close", start, err)
}

// Backend implements TimeSeriesStore.
func (s *InstrumentedStore) Backend() string {
	return s.backend
}
