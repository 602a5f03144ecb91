// SensorHub - Real-time Environmental Sensor Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

/*
Package middleware provides chi-compatible HTTP middleware for the SensorHub API.

Key Components:

  - RequestID: assigns a request ID (upstream X-Request-ID or UUID v4) and
    puts it, with a fresh correlation ID, into the logging context
  - PrometheusMetrics: request count, latency and in-flight gauge, labelled
    by chi route pattern
  - AccessLog: one structured log line per request, promoted to warn for
    slow requests and to error for 5xx responses

Middleware Stack:

The router installs them in this order:

	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog(time.Second))
	r.Use(chimiddleware.Recoverer)
	r.Group(func(r chi.Router) {
	    r.Use(middleware.PrometheusMetrics)
	    r.Get("/api/sensors", h.Sensors)
	})

The websocket route stays outside the Prometheus group: its connections are
long lived and would dominate the latency histogram.

Thread Safety:

All middleware is stateless apart from the Prometheus collectors and is safe
for concurrent use.
*/
package middleware
