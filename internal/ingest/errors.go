// SensorHub - Real-time Environmental Sensor Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

package ingest

import (
	"errors"

	"github.com/tomtom215/sensorhub/internal/metrics"
)

var (
	// ErrInvalidDevice rejects a submission whose device is not in the known set.
	ErrInvalidDevice = errors.New("invalid device")

	// ErrInvalidMeasurement rejects a missing, non-numeric, NaN or infinite
	// temperature or humidity.
	ErrInvalidMeasurement = errors.New("invalid measurement")
)

// ResultLabel maps a Submit outcome to the result label of sensorhub_ingest_total.
func ResultLabel(err error) string {
	switch {
	case err == nil:
		return metrics.IngestAccepted
	case errors.Is(err, ErrInvalidDevice):
		return metrics.IngestInvalidDevice
	case errors.Is(err, ErrInvalidMeasurement):
		return metrics.IngestInvalidMeasurement
	default:
		return metrics.IngestStoreError
	}
}
