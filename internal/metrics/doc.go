// SensorHub - Real-time Environmental Sensor Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

// Package metrics defines the Prometheus collectors exported on /metrics.
//
// Collectors are registered with the default registry through promauto at
// package initialisation, so importing the package is enough to expose them.
//
// Families:
//   - sensorhub_api_*: HTTP request count, latency and in-flight gauge
//   - sensorhub_ingest_total: submissions by source (http, mqtt) and result
//   - sensorhub_store_*: per-backend operation latency and failures
//   - sensorhub_websocket_*, sensorhub_broadcast_dropped_total: live channel
//   - sensorhub_mqtt_*: device transport
//   - circuit_breaker_*: state of the store circuit breaker
package metrics
