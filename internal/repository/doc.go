// SensorHub - Real-time Environmental Sensor Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

// Package repository provides the reading queries used by the API on top of
// a store.TimeSeriesStore: Save, LatestPerDevice and RangeForDevice.
package repository
