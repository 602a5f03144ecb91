// SensorHub - Real-time Environmental Sensor Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

//go:build integration

package testinfra

import (
	"context"
	"fmt"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Images used by the backend containers.
const (
	PostgresImage   = "timescale/timescaledb:latest-pg16"
	RedisImage      = "redis:7-alpine"
	InfluxDBImage   = "influxdb:2.7"
	ClickHouseImage = "clickhouse/clickhouse-server:24.8"
)

// Credentials baked into the test containers.
const (
	TestUser     = "sensorhub"
	TestPassword = "sensorhub-test"
	TestDatabase = "sensorhub"
	InfluxOrg    = "sensorhub"
	InfluxBucket = "readings"
	InfluxToken  = "sensorhub-test-token"
)

// PostgresContainer is a TimescaleDB instance.
type PostgresContainer struct {
	BackendContainer
	DSN string
}

// NewPostgresContainer starts TimescaleDB with a sensorhub database.
func NewPostgresContainer(ctx context.Context) (*PostgresContainer, error) {
	container, host, err := startContainer(ctx, testcontainers.ContainerRequest{
		Image:        PostgresImage,
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     TestUser,
			"POSTGRES_PASSWORD": TestPassword,
			"POSTGRES_DB":       TestDatabase,
		},
		// The entrypoint restarts postgres once after init.
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(DefaultStartTimeout),
	})
	if err != nil {
		return nil, err
	}

	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		container.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("get mapped port: %w", err)
	}

	return &PostgresContainer{
		BackendContainer: BackendContainer{Container: container, Host: host, Port: port.Port()},
		DSN: fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
			TestUser, TestPassword, host, port.Port(), TestDatabase),
	}, nil
}

// NewRedisContainer starts a Redis server without authentication.
func NewRedisContainer(ctx context.Context) (*BackendContainer, error) {
	container, host, err := startContainer(ctx, testcontainers.ContainerRequest{
		Image:        RedisImage,
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("6379/tcp"),
			wait.ForLog("Ready to accept connections"),
		).WithStartupTimeout(DefaultStartTimeout),
	})
	if err != nil {
		return nil, err
	}

	port, err := container.MappedPort(ctx, "6379")
	if err != nil {
		container.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("get mapped port: %w", err)
	}
	return &BackendContainer{Container: container, Host: host, Port: port.Port()}, nil
}

// InfluxContainer is an InfluxDB 2.x instance set up with InfluxOrg,
// InfluxBucket and InfluxToken.
type InfluxContainer struct {
	BackendContainer
	URL string
}

// NewInfluxContainer starts InfluxDB in automated setup mode.
func NewInfluxContainer(ctx context.Context) (*InfluxContainer, error) {
	container, host, err := startContainer(ctx, testcontainers.ContainerRequest{
		Image:        InfluxDBImage,
		ExposedPorts: []string{"8086/tcp"},
		Env: map[string]string{
			"DOCKER_INFLUXDB_INIT_MODE":        "setup",
			"DOCKER_INFLUXDB_INIT_USERNAME":    TestUser,
			"DOCKER_INFLUXDB_INIT_PASSWORD":    TestPassword,
			"DOCKER_INFLUXDB_INIT_ORG":         InfluxOrg,
			"DOCKER_INFLUXDB_INIT_BUCKET":      InfluxBucket,
			"DOCKER_INFLUXDB_INIT_ADMIN_TOKEN": InfluxToken,
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("8086/tcp"),
			wait.ForHTTP("/health").WithPort("8086/tcp"),
		).WithStartupTimeout(DefaultStartTimeout),
	})
	if err != nil {
		return nil, err
	}

	port, err := container.MappedPort(ctx, "8086")
	if err != nil {
		container.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("get mapped port: %w", err)
	}

	return &InfluxContainer{
		BackendContainer: BackendContainer{Container: container, Host: host, Port: port.Port()},
		URL:              fmt.Sprintf("http://%s:%s", host, port.Port()),
	}, nil
}

// NewClickHouseContainer starts ClickHouse with a sensorhub database.
// Port is the native protocol port.
func NewClickHouseContainer(ctx context.Context) (*BackendContainer, error) {
	container, host, err := startContainer(ctx, testcontainers.ContainerRequest{
		Image:        ClickHouseImage,
		ExposedPorts: []string{"9000/tcp", "8123/tcp"},
		Env: map[string]string{
			"CLICKHOUSE_USER":                      TestUser,
			"CLICKHOUSE_PASSWORD":                  TestPassword,
			"CLICKHOUSE_DB":                        TestDatabase,
			"CLICKHOUSE_DEFAULT_ACCESS_MANAGEMENT": "1",
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("9000/tcp"),
			wait.ForHTTP("/ping").WithPort("8123/tcp"),
		).WithStartupTimeout(DefaultStartTimeout),
	})
	if err != nil {
		return nil, err
	}

	port, err := container.MappedPort(ctx, "9000")
	if err != nil {
		container.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("get mapped port: %w", err)
	}
	return &BackendContainer{Container: container, Host: host, Port: port.Port()}, nil
}
