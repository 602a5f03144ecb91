// SensorHub - Real-time Environmental Sensor Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

// Package ingest accepts sensor submissions.
//
// A submission flows through three steps:
//
//	IngestRequest -> Validator.Validate -> Saver.Save -> Publisher.Publish
//
// The Validator checks the device against the known set and the
// measurements for finiteness, rounds both values to one decimal and stamps
// the reading with the acceptance time from its Clock. Service.Submit is the
// single entry point used by both the HTTP handler and the MQTT subscriber.
//
// Rejections are reported with the ErrInvalidDevice and ErrInvalidMeasurement
// sentinels; persistence failures match store.ErrStoreUnavailable.
package ingest
