// SensorHub - Real-time Environmental Sensor Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

// Package store implements the time-series storage backends.
//
// Every backend satisfies TimeSeriesStore: a point upsert keyed by
// (device, timestamp) and a descending range query with a result limit.
//
// Backends:
//   - badger: embedded BadgerDB, the default
//   - duckdb: embedded DuckDB file
//   - postgres: PostgreSQL or TimescaleDB via pgx
//   - redis: one sorted set per device
//   - influxdb: InfluxDB 2.x measurement "readings"
//   - clickhouse: ReplacingMergeTree table
//
// Open builds the configured backend and wraps it in two decorators:
//
//	Instrumented -> Breaker -> backend
//
// Instrumented records latency and failures per operation; Breaker stops
// calling a failing backend and returns ErrCircuitOpen until it recovers.
package store
