// SensorHub - Real-time Environmental Sensor Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

package store

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/tomtom215/sensorhub/internal/models"
)

// ErrStoreUnavailable reports that a store operation could not be completed.
// Backend errors are wrapped with it so callers can test with errors.Is.
var ErrStoreUnavailable = errors.New("store unavailable")

// ErrCircuitOpen is returned while the circuit breaker rejects calls.
// It wraps ErrStoreUnavailable.
var ErrCircuitOpen = fmt.Errorf("circuit breaker open: %w", ErrStoreUnavailable)

// ErrInvalidReading is returned for a reading that cannot be encoded, such as
// one holding NaN or ±Inf. It says nothing about backend health.
var ErrInvalidReading = fmt.Errorf("reading cannot be stored: %w", ErrStoreUnavailable)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = fmt.Errorf("store closed: %w", ErrStoreUnavailable)

// Backend names accepted by Open.
const (
	BackendBadger     = "badger"
	BackendDuckDB     = "duckdb"
	BackendPostgres   = "postgres"
	BackendRedis      = "redis"
	BackendInfluxDB   = "influxdb"
	BackendClickHouse = "clickhouse"
)

// Range is an inclusive [Start, End] bound on epoch-second timestamps.
type Range struct {
	Start int64
	End   int64
}

// Contains reports whether ts falls within the range.
func (r *Range) Contains(ts int64) bool {
	return r == nil || (ts >= r.Start && ts <= r.End)
}

// TimeSeriesStore is an ordered store of readings keyed by
// (DeviceID, Timestamp).
//
// Implementations must:
//   - overwrite an existing reading with the same key on Upsert
//   - return Query results sorted by timestamp, newest first
//   - apply no time filter when the range is nil
//   - return at most limit results when limit > 0
//   - be safe for concurrent use
type TimeSeriesStore interface {
	Upsert(ctx context.Context, r models.Reading) error
	Query(ctx context.Context, deviceID string, rng *Range, limit int) ([]models.Reading, error)
	Ping(ctx context.Context) error
	Close() error
	Backend() string
}

// checkEncodable rejects readings whose measurements are not finite.
func checkEncodable(r models.Reading) error {
	if math.IsNaN(r.Temperature) || math.IsInf(r.Temperature, 0) ||
		math.IsNaN(r.Humidity) || math.IsInf(r.Humidity, 0) {
		return fmt.Errorf("%w: %s at %d has a non-finite measurement", ErrInvalidReading, r.DeviceID, r.Timestamp)
	}
	return nil
}
