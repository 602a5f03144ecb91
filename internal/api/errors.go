// SensorHub - Real-time Environmental Sensor Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/sensorhub/internal/ingest"
)

// ingestStatus maps a Submit error to its HTTP status and message.
// Anything that is not a rejection is a persistence failure.
func ingestStatus(err error) (int, string) {
	switch {
	case errors.Is(err, ingest.ErrInvalidDevice):
		return http.StatusBadRequest, MsgInvalidDevice
	case errors.Is(err, ingest.ErrInvalidMeasurement):
		return http.StatusBadRequest, MsgInvalidMeasurement
	default:
		return http.StatusInternalServerError, MsgFailedToSave
	}
}

// decodeError classifies a body that failed to decode. A device field of
// the wrong JSON type is a device rejection; every other malformed body is
// a measurement rejection.
func decodeError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && (isField(typeErr.Field, "deviceId") || isField(typeErr.Field, "sensorId")) {
		return ingest.ErrInvalidDevice
	}
	return ingest.ErrInvalidMeasurement
}

// isField matches a decoder field path such as "deviceId" or "IngestRequest.deviceId".
func isField(path, name string) bool {
	return path == name || strings.HasSuffix(path, "."+name)
}
