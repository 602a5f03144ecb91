// SensorHub - Real-time Environmental Sensor Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

package middleware

import (
	"net/http"
	"time"

	"github.com/tomtom215/sensorhub/internal/logging"
)

// DefaultSlowRequestThreshold is used when AccessLog is given zero.
const DefaultSlowRequestThreshold = time.Second

// AccessLog logs one line per request through the request-scoped logger.
// Requests slower than slow are logged at warn level, server errors at
// error level and everything else at debug.
func AccessLog(slow time.Duration) func(http.Handler) http.Handler {
	if slow <= 0 {
		slow = DefaultSlowRequestThreshold
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := newStatusRecorder(w)

			next.ServeHTTP(rec, r)

			duration := time.Since(start)
			logger := logging.Ctx(r.Context())
			event := logger.Debug()
			switch {
			case rec.status >= http.StatusInternalServerError:
				event = logger.Error()
			case duration >= slow:
				event = logger.Warn().Int64("threshold_ms", slow.Milliseconds())
			}

			event.
				Str("method", r.Method).
				Str("path", logging.SanitizeValue(r.URL.Path)).
				Int("status", rec.status).
				Int("bytes", rec.bytes).
				Int64("duration_ms", duration.Milliseconds()).
				Str("remote_addr", r.RemoteAddr).
				Msg("HTTP request")
		})
	}
}
