// SensorHub - Real-time Environmental Sensor Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

package store

import (
	"context"
	"fmt"

	"github.com/tomtom215/sensorhub/internal/config"
	"github.com/tomtom215/sensorhub/internal/logging"
)

// Open connects the backend named by cfg.Backend and wraps it with the
// circuit breaker (when enabled) and instrumentation.
//
//	ts, err := store.Open(ctx, cfg.Store)
//	if err != nil {
//	    return err
//	}
//	defer ts.Close()
func Open(ctx context.Context, cfg config.StoreConfig) (TimeSeriesStore, error) {
	backend, err := openBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return Wrap(backend, cfg), nil
}

// Wrap applies the standard decorators to an already opened backend.
func Wrap(backend TimeSeriesStore, cfg config.StoreConfig) TimeSeriesStore {
	ts := backend
	if cfg.Breaker.Enabled {
		ts = NewBreakerStore(ts, cfg.Breaker)
	}
	return NewInstrumentedStore(ts, cfg.OperationTimeout)
}

func openBackend(ctx context.Context, cfg config.StoreConfig) (TimeSeriesStore, error) {
	logging.Info().Str("backend", cfg.Backend).Msg("opening time-series store")

	switch cfg.Backend {
	case BackendBadger, "":
		return OpenBadger(cfg.Badger)
	case BackendDuckDB:
		return OpenDuckDB(ctx, cfg.DuckDB)
	case BackendPostgres:
		return OpenPostgres(ctx, cfg.Postgres)
	case BackendRedis:
		return OpenRedis(ctx, cfg.Redis)
	case BackendInfluxDB:
		return OpenInflux(ctx, cfg.InfluxDB)
	case BackendClickHouse:
		return OpenClickHouse(ctx, cfg.ClickHouse)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}
