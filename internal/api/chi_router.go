// SensorHub - Real-time Environmental Sensor Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/sensorhub/internal/middleware"
)

// slowRequestThreshold promotes access log lines to warn level.
const slowRequestThreshold = time.Second

// Router binds handlers to routes.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a Router.
func NewRouter(handler *Handler, chiMiddleware *ChiMiddleware) *Router {
	return &Router{handler: handler, chiMiddleware: chiMiddleware}
}

// SetupChi configures all HTTP routes.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to every route in order.
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog(slowRequestThreshold))
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS()) // global so OPTIONS preflights are answered

	r.NotFound(NotFound)
	r.MethodNotAllowed(MethodNotAllowed)

	r.Group(func(r chi.Router) {
		r.Use(middleware.PrometheusMetrics)

		r.Route("/health", func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimitHealth())
			r.Get("/", router.handler.Health)
			r.Get("/live", router.handler.HealthLive)
			r.Get("/ready", router.handler.HealthReady)
		})

		r.Route("/api", func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimit())
			r.Use(APISecurityHeaders())

			r.With(router.chiMiddleware.RateLimitIngest()).Post("/sensors/data", router.handler.IngestReading)
			r.Get("/sensors", router.handler.LatestReadings)
			r.Get("/sensors/{id}/readings", router.handler.DeviceReadings)
			r.Get("/devices", router.handler.Devices)
		})
	})

	// Live channel. Kept out of the Prometheus group: connections last for
	// the whole session.
	r.Get("/ws", router.handler.WebSocket)

	r.Handle("/metrics", promhttp.Handler())

	return r
}
