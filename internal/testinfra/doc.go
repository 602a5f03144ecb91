// SensorHub - Real-time Environmental Sensor Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

// Package testinfra starts storage backends in Docker for integration tests.
//
// It uses testcontainers-go to run the networked TimeSeriesStore backends
// (TimescaleDB, Redis, InfluxDB and ClickHouse) so the store contract can be
// checked against the real servers rather than fakes:
//
//	func TestPostgresStore(t *testing.T) {
//	    testinfra.SkipIfNoDocker(t)
//	    ctx := context.Background()
//	    pg, err := testinfra.NewPostgresContainer(ctx)
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    defer testinfra.CleanupContainer(t, ctx, pg.Container)
//
//	    s, err := store.OpenPostgres(ctx, config.PostgresConfig{DSN: pg.DSN})
//	    // ...
//	}
//
// Everything here is behind the integration build tag:
//
//	go test -tags integration ./internal/store/...
//
// Tests are skipped when Docker is unavailable. The first run downloads the
// images.
package testinfra
