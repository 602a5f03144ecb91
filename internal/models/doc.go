// SensorHub - Real-time Environmental Sensor Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

// Package models defines the data types shared by the store, ingestion, API
// and live channel layers. JSON field names match the dashboard wire
// format (camelCase).
package models
