// SensorHub - Real-time Environmental Sensor Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tomtom215/sensorhub/internal/config"
	"github.com/tomtom215/sensorhub/internal/logging"
	"github.com/tomtom215/sensorhub/internal/models"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS readings (
	device_id   TEXT             NOT NULL,
	ts          BIGINT           NOT NULL,
	temperature DOUBLE PRECISION NOT NULL,
	humidity    DOUBLE PRECISION NOT NULL,
	received_at TEXT             NOT NULL,
	PRIMARY KEY (device_id, ts)
)`

const postgresUpsert = `
INSERT INTO readings (device_id, ts, temperature, humidity, received_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (device_id, ts) DO UPDATE SET
	temperature = EXCLUDED.temperature,
	humidity    = EXCLUDED.humidity,
	received_at = EXCLUDED.received_at`

// PostgresStore keeps readings in PostgreSQL (or TimescaleDB) through a
// pgx connection pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects to cfg.DSN, verifies the connection and creates
// the readings table.
func OpenPostgres(ctx context.Context, cfg config.PostgresConfig) (*PostgresStore, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres DSN: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres unreachable: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create readings table: %w", err)
	}

	logging.Info().
		Str("host", poolCfg.ConnConfig.Host).
		Str("database", poolCfg.ConnConfig.Database).
		Int32("max_conns", poolCfg.MaxConns).
		Msg("postgres store opened")

	return &PostgresStore{pool: pool}, nil
}

// Backend implements TimeSeriesStore.
func (s *PostgresStore) Backend() string { return BackendPostgres }

// Upsert implements TimeSeriesStore.
func (s *PostgresStore) Upsert(ctx context.Context, r models.Reading) error {
	_, err := s.pool.Exec(ctx, postgresUpsert, r.DeviceID, r.Timestamp, r.Temperature, r.Humidity, r.ReceivedAt)
	if err != nil {
		return fmt.Errorf("upsert reading: %w", err)
	}
	return nil
}

// Query implements TimeSeriesStore.
func (s *PostgresStore) Query(ctx context.Context, deviceID string, rng *Range, limit int) ([]models.Reading, error) {
	q, args := buildSelect("readings", "$", deviceID, rng, limit)
	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query readings: %w", err)
	}

	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Reading, error) {
		var r models.Reading
		err := row.Scan(&r.DeviceID, &r.Timestamp, &r.Temperature, &r.Humidity, &r.ReceivedAt)
		return r, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan readings: %w", err)
	}
	return out, nil
}

// Ping implements TimeSeriesStore.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close implements TimeSeriesStore.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
