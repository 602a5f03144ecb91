// SensorHub - Real-time Environmental Sensor Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Validate checks that the configuration is complete and within bounds.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateDevices(); err != nil {
		return err
	}
	if err := c.validateStore(); err != nil {
		return err
	}
	if err := c.validateHub(); err != nil {
		return err
	}
	if err := c.validateMQTT(); err != nil {
		return err
	}
	if err := c.validateRateLimits(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive")
	}
	return nil
}

// validateDevices requires a non-empty set of unique, non-blank device IDs.
// Locations may only refer to known devices.
func (c *Config) validateDevices() error {
	if len(c.Devices.IDs) == 0 {
		return fmt.Errorf("KNOWN_DEVICES must list at least one device")
	}
	seen := make(map[string]struct{}, len(c.Devices.IDs))
	for _, id := range c.Devices.IDs {
		if strings.TrimSpace(id) == "" {
			return fmt.Errorf("KNOWN_DEVICES contains an empty device ID")
		}
		if strings.ContainsAny(id, "/+#") {
			return fmt.Errorf("device ID %q must not contain MQTT topic characters", id)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("KNOWN_DEVICES contains duplicate device ID %q", id)
		}
		seen[id] = struct{}{}
	}
	for id := range c.Devices.Locations {
		if _, ok := seen[id]; !ok {
			return fmt.Errorf("devices.locations refers to unknown device %q", id)
		}
	}
	return nil
}

// validStoreBackends defines the allowed STORE_BACKEND values
var validStoreBackends = map[string]bool{
	"badger":     true,
	"duckdb":     true,
	"postgres":   true,
	"redis":      true,
	"influxdb":   true,
	"clickhouse": true,
}

func (c *Config) validateStore() error {
	if !validStoreBackends[c.Store.Backend] {
		return fmt.Errorf("STORE_BACKEND must be one of: badger, duckdb, postgres, redis, influxdb, clickhouse")
	}
	if c.Store.OperationTimeout <= 0 {
		return fmt.Errorf("STORE_OPERATION_TIMEOUT must be positive")
	}
	if c.Store.HealthInterval < 0 {
		return fmt.Errorf("STORE_HEALTH_INTERVAL must not be negative")
	}

	switch c.Store.Backend {
	case "badger":
		if !c.Store.Badger.InMemory && c.Store.Badger.Path == "" {
			return fmt.Errorf("BADGER_PATH is required unless BADGER_IN_MEMORY=true")
		}
	case "duckdb":
		if c.Store.DuckDB.Path == "" {
			return fmt.Errorf("DUCKDB_PATH is required when STORE_BACKEND=duckdb")
		}
	case "postgres":
		if c.Store.Postgres.DSN == "" {
			return fmt.Errorf("POSTGRES_DSN is required when STORE_BACKEND=postgres")
		}
		if c.Store.Postgres.MaxConns < 1 {
			return fmt.Errorf("POSTGRES_MAX_CONNS must be at least 1")
		}
	case "redis":
		if c.Store.Redis.Addr == "" {
			return fmt.Errorf("REDIS_ADDR is required when STORE_BACKEND=redis")
		}
	case "influxdb":
		if err := validateHTTPURL(c.Store.InfluxDB.URL, "INFLUXDB_URL"); err != nil {
			return err
		}
		if c.Store.InfluxDB.Org == "" || c.Store.InfluxDB.Bucket == "" {
			return fmt.Errorf("INFLUXDB_ORG and INFLUXDB_BUCKET are required when STORE_BACKEND=influxdb")
		}
	case "clickhouse":
		if len(c.Store.ClickHouse.Addr) == 0 {
			return fmt.Errorf("CLICKHOUSE_ADDR is required when STORE_BACKEND=clickhouse")
		}
	}

	return c.validateBreaker()
}

func (c *Config) validateBreaker() error {
	b := c.Store.Breaker
	if !b.Enabled {
		return nil
	}
	if b.FailureThreshold < 1 {
		return fmt.Errorf("STORE_BREAKER_FAILURE_THRESHOLD must be at least 1")
	}
	if b.MaxRequests < 1 {
		return fmt.Errorf("STORE_BREAKER_MAX_REQUESTS must be at least 1")
	}
	if b.Timeout <= 0 {
		return fmt.Errorf("STORE_BREAKER_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) validateHub() error {
	if c.Hub.BroadcastBuffer < 1 || c.Hub.ClientBuffer < 1 {
		return fmt.Errorf("HUB_BROADCAST_BUFFER and HUB_CLIENT_BUFFER must be at least 1")
	}
	if c.Hub.WriteWait <= 0 {
		return fmt.Errorf("WS_WRITE_WAIT must be positive")
	}
	if c.Hub.PongWait < time.Second {
		return fmt.Errorf("WS_PONG_WAIT must be at least 1s")
	}
	if c.Hub.MaxMessageSize < 1 {
		return fmt.Errorf("WS_MAX_MESSAGE_SIZE must be at least 1")
	}
	return nil
}

func (c *Config) validateMQTT() error {
	if !c.MQTT.Enabled && !c.MQTT.EmbeddedBroker {
		return nil
	}
	if c.MQTT.EmbeddedBroker && c.MQTT.ListenAddr == "" {
		return fmt.Errorf("MQTT_LISTEN_ADDR is required when MQTT_EMBEDDED_BROKER=true")
	}
	if !c.MQTT.Enabled {
		return nil
	}
	if c.MQTT.BrokerURL == "" {
		return fmt.Errorf("MQTT_BROKER_URL is required when MQTT_ENABLED=true")
	}
	if c.MQTT.ClientID == "" {
		return fmt.Errorf("MQTT_CLIENT_ID is required when MQTT_ENABLED=true")
	}
	if c.MQTT.Topic == "" {
		return fmt.Errorf("MQTT_TOPIC is required when MQTT_ENABLED=true")
	}
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		return fmt.Errorf("MQTT_QOS must be 0, 1 or 2")
	}
	if c.MQTT.RatePerDevice < 0 {
		return fmt.Errorf("MQTT_RATE_PER_DEVICE must not be negative")
	}
	if c.MQTT.RatePerDevice > 0 && c.MQTT.RateBurst < 1 {
		return fmt.Errorf("MQTT_RATE_BURST must be at least 1 when throttling is enabled")
	}
	return nil
}

// Rate limit constants
const (
	minRateLimitRequests = 1
	maxRateLimitRequests = 100000
	minRateLimitWindow   = time.Second
	maxRateLimitWindow   = time.Hour
)

func (c *Config) validateRateLimits() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < minRateLimitRequests || c.Security.RateLimitReqs > maxRateLimitRequests {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between %d and %d", minRateLimitRequests, maxRateLimitRequests)
	}
	if c.Security.IngestRateLimitReqs < minRateLimitRequests || c.Security.IngestRateLimitReqs > maxRateLimitRequests {
		return fmt.Errorf("INGEST_RATE_LIMIT_REQS must be between %d and %d", minRateLimitRequests, maxRateLimitRequests)
	}
	if c.Security.RateLimitWindow < minRateLimitWindow || c.Security.RateLimitWindow > maxRateLimitWindow {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between %v and %v", minRateLimitWindow, maxRateLimitWindow)
	}
	return nil
}

// validLogLevels defines the allowed log levels
var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validLogFormats defines the allowed log formats
var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}

// validateHTTPURL checks that rawURL is an absolute http(s) base URL.
func validateHTTPURL(rawURL, fieldName string) error {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%s failed to parse URL: %w", fieldName, err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("%s scheme must be http or https, got: %s", fieldName, parsedURL.Scheme)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("%s host is required", fieldName)
	}
	return nil
}

// HasWildcardCORS reports whether any origin is allowed.
func (c *Config) HasWildcardCORS() bool {
	if len(c.Security.CORSOrigins) == 0 {
		return true
	}
	for _, origin := range c.Security.CORSOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}
