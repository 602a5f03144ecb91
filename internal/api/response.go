// SensorHub - Real-time Environmental Sensor Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

package api

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/tomtom215/sensorhub/internal/logging"
	"github.com/tomtom215/sensorhub/internal/models"
)

// Error messages returned in {"error": "..."} bodies. Dashboards and
// devices match on these strings.
const (
	MsgInvalidDevice        = "Invalid sensorId"
	MsgInvalidMeasurement   = "Invalid measurement"
	MsgFailedToSave         = "Failed to save"
	MsgInvalidQueryParam    = "Invalid query parameter"
	MsgFailedToLoadReadings = "Failed to load readings"
	MsgTooManyRequests      = "Too many requests"
	MsgNotFound             = "Not found"
	MsgMethodNotAllowed     = "Method not allowed"
	MsgWebSocketUnavailable = "Live updates unavailable"
)

// respondJSON writes v as the JSON response body. Readings change on every
// ingestion so responses are never cacheable.
func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// respondError writes {"error": message}.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, models.ErrorResponse{Error: message})
}
