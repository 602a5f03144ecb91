// SensorHub - Real-time Environmental Sensor Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

/*
Package main is the entry point for the SensorHub server.

SensorHub collects temperature and humidity readings from a fixed set of
sensors, stores them in a time-series backend and pushes each accepted
reading to websocket subscribers.

# Startup Order

 1. Configuration: koanf defaults, optional config file, .env and environment
 2. Logging: zerolog with JSON or console output
 3. Store: the backend named by STORE_BACKEND, behind a circuit breaker
 4. Repository, broadcast hub and ingestion service
 5. HTTP router (chi) with CORS, rate limiting and Prometheus metrics
 6. Supervisor tree (suture v4)

	RootSupervisor ("sensorhub")
	├── data-layer:      store-monitor
	├── messaging-layer: broadcast-hub, mqtt-broker, mqtt-subscriber
	└── api-layer:       http-server

# Configuration

	HTTP_PORT=3000               # HTTP listen port
	KNOWN_DEVICES=sensor-01,...  # accepted device IDs
	STORE_BACKEND=badger         # badger, duckdb, postgres, redis, influxdb, clickhouse
	MQTT_ENABLED=false           # subscribe to sensors/+/data
	MQTT_EMBEDDED_BROKER=false   # run an in-process MQTT broker
	LOG_LEVEL=info
	LOG_FORMAT=json

# Signal Handling

SIGINT and SIGTERM cancel the root context. The HTTP server drains within
SHUTDOWN_TIMEOUT, the hub closes its subscribers and the MQTT client
disconnects. The store is closed last.

# Example

	export STORE_BACKEND=badger
	export BADGER_PATH=/var/lib/sensorhub
	export MQTT_ENABLED=true
	export MQTT_EMBEDDED_BROKER=true
	./sensorhub
*/
package main
