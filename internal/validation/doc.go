// SensorHub - Real-time Environmental Sensor Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

// Package validation provides struct validation using go-playground/validator v10.
//
// A single validator instance is shared process-wide (it caches struct
// metadata). Field names in errors are the JSON names, and a custom
// device_id tag rejects IDs that would break MQTT topic matching.
//
// Shape checks live here. Membership in the known device set and
// measurement finiteness are domain rules and belong to the ingest package.
package validation
