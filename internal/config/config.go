// SensorHub - Real-time Environmental Sensor Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: built-in values for every setting
//  2. Config File: optional YAML file (config.yaml, or CONFIG_PATH)
//  3. .env file: loaded into the process environment without overriding it
//  4. Environment Variables: override any mapped setting
//
// Example:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    logging.Fatal().Err(err).Msg("failed to load config")
//	}
//	srv := &http.Server{Addr: cfg.Server.Addr()}
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Devices  DevicesConfig  `koanf:"devices"`
	Store    StoreConfig    `koanf:"store"`
	Hub      HubConfig      `koanf:"hub"`
	MQTT     MQTTConfig     `koanf:"mqtt"`
	Security SecurityConfig `koanf:"security"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
//
// Environment Variables:
//   - HTTP_PORT (alias PORT): listen port (default: 3000)
//   - HTTP_HOST: listen address (default: 0.0.0.0)
//   - HTTP_READ_TIMEOUT, HTTP_WRITE_TIMEOUT, HTTP_IDLE_TIMEOUT
//   - SHUTDOWN_TIMEOUT: graceful shutdown budget (default: 10s)
//   - ENVIRONMENT: development or production
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"`
}

// Addr returns host:port for http.Server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DevicesConfig is the known device set. Every component that needs to
// know which sensors exist reads it from here.
//
// Environment Variables:
//   - KNOWN_DEVICES: comma-separated device IDs (default: sensor-01..sensor-04)
type DevicesConfig struct {
	IDs []string `koanf:"ids"`

	// Locations optionally places a device in the dashboard scene.
	// Only settable from the config file.
	Locations map[string]LocationConfig `koanf:"locations"`
}

// LocationConfig is a static x/y/z placement.
type LocationConfig struct {
	X float64 `koanf:"x"`
	Y float64 `koanf:"y"`
	Z float64 `koanf:"z"`
}

// StoreConfig selects and configures the time-series backend.
//
// Environment Variables:
//   - STORE_BACKEND: badger, duckdb, postgres, redis, influxdb, clickhouse (default: badger)
//   - STORE_OPERATION_TIMEOUT: per-call timeout (default: 5s)
//   - STORE_HEALTH_INTERVAL: how often the store monitor pings the backend (default: 30s, 0 disables)
type StoreConfig struct {
	Backend          string        `koanf:"backend"`
	OperationTimeout time.Duration `koanf:"operation_timeout"`
	HealthInterval   time.Duration `koanf:"health_interval"`

	Badger     BadgerConfig     `koanf:"badger"`
	DuckDB     DuckDBConfig     `koanf:"duckdb"`
	Postgres   PostgresConfig   `koanf:"postgres"`
	Redis      RedisConfig      `koanf:"redis"`
	InfluxDB   InfluxDBConfig   `koanf:"influxdb"`
	ClickHouse ClickHouseConfig `koanf:"clickhouse"`
	Breaker    BreakerConfig    `koanf:"breaker"`
}

// BadgerConfig configures the embedded BadgerDB backend.
type BadgerConfig struct {
	Path       string `koanf:"path"`
	InMemory   bool   `koanf:"in_memory"`
	SyncWrites bool   `koanf:"sync_writes"`
}

// DuckDBConfig configures the embedded DuckDB backend.
type DuckDBConfig struct {
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"`
}

// PostgresConfig configures the PostgreSQL/TimescaleDB backend.
type PostgresConfig struct {
	DSN      string `koanf:"dsn"`
	MaxConns int32  `koanf:"max_conns"`
}

// RedisConfig configures the Redis backend.
type RedisConfig struct {
	Addr      string `koanf:"addr"`
	Password  string `koanf:"password"`
	DB        int    `koanf:"db"`
	KeyPrefix string `koanf:"key_prefix"`
}

// InfluxDBConfig configures the InfluxDB 2.x backend.
type InfluxDBConfig struct {
	URL    string `koanf:"url"`
	Token  string `koanf:"token"`
	Org    string `koanf:"org"`
	Bucket string `koanf:"bucket"`
}

// ClickHouseConfig configures the ClickHouse backend.
type ClickHouseConfig struct {
	Addr     []string `koanf:"addr"`
	Database string   `koanf:"database"`
	Username string   `koanf:"username"`
	Password string   `koanf:"password"`
}

// BreakerConfig configures the circuit breaker in front of the store.
type BreakerConfig struct {
	Enabled          bool          `koanf:"enabled"`
	MaxRequests      uint32        `koanf:"max_requests"`
	Interval         time.Duration `koanf:"interval"`
	Timeout          time.Duration `koanf:"timeout"`
	FailureThreshold uint32        `koanf:"failure_threshold"`
}

// HubConfig holds live channel tuning.
type HubConfig struct {
	BroadcastBuffer int           `koanf:"broadcast_buffer"`
	ClientBuffer    int           `koanf:"client_buffer"`
	WriteWait       time.Duration `koanf:"write_wait"`
	PongWait        time.Duration `koanf:"pong_wait"`
	MaxMessageSize  int64         `koanf:"max_message_size"`
}

// PingPeriod is derived from PongWait so pings always land before the read
// deadline expires.
func (h HubConfig) PingPeriod() time.Duration {
	return (h.PongWait * 9) / 10
}

// MQTTConfig configures MQTT ingestion.
//
// Environment Variables:
//   - MQTT_ENABLED: subscribe to device topics (default: false)
//   - MQTT_BROKER_URL: e.g. tcp://localhost:1883
//   - MQTT_EMBEDDED_BROKER: run an in-process broker (default: false)
//   - MQTT_LISTEN_ADDR: embedded broker listen address (default: :1883)
type MQTTConfig struct {
	Enabled        bool          `koanf:"enabled"`
	BrokerURL      string        `koanf:"broker_url"`
	ClientID       string        `koanf:"client_id"`
	Username       string        `koanf:"username"`
	Password       string        `koanf:"password"`
	Topic          string        `koanf:"topic"`
	QoS            int           `koanf:"qos"`
	ConnectTimeout time.Duration `koanf:"connect_timeout"`
	EmbeddedBroker bool          `koanf:"embedded_broker"`
	ListenAddr     string        `koanf:"listen_addr"`

	// RatePerDevice and RateBurst throttle each device's MQTT submissions.
	// A RatePerDevice of 0 disables throttling.
	RatePerDevice float64 `koanf:"rate_per_device"`
	RateBurst     int     `koanf:"rate_burst"`
}

// SecurityConfig holds CORS and rate limiting settings.
type SecurityConfig struct {
	CORSOrigins         []string      `koanf:"cors_origins"`
	RateLimitReqs       int           `koanf:"rate_limit_reqs"`
	RateLimitWindow     time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled   bool          `koanf:"rate_limit_disabled"`
	IngestRateLimitReqs int           `koanf:"ingest_rate_limit_reqs"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// IsProduction reports whether ENVIRONMENT=production.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// Load reads configuration from defaults, an optional config file, an
// optional .env file and the environment, then validates it.
//
// See LoadWithKoanf for the underlying implementation.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
