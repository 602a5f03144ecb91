// SensorHub - Real-time Environmental Sensor Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sensorhub_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sensorhub_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sensorhub_api_active_requests",
			Help: "Current number of in-flight API requests",
		},
	)

	// Ingestion Metrics
	IngestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sensorhub_ingest_total",
			Help: "Total number of submitted readings by source and outcome",
		},
		[]string{"source", "result"}, // source: "http", "mqtt"; result: "accepted", "invalid_device", "invalid_measurement", "store_error", "throttled"
	)

	// Store Metrics
	StoreOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sensorhub_store_operation_duration_seconds",
			Help:    "Duration of time-series store operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"backend", "operation"},
	)

	StoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sensorhub_store_errors_total",
			Help: "Total number of failed store operations",
		},
		[]string{"backend", "operation"},
	)

	// Live channel Metrics
	WebSocketSubscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sensorhub_websocket_subscribers",
			Help: "Current number of live channel subscribers",
		},
	)

	WebSocketMessagesSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sensorhub_websocket_messages_sent_total",
			Help: "Total number of messages enqueued to subscribers",
		},
		[]string{"type"},
	)

	BroadcastDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sensorhub_broadcast_dropped_total",
			Help: "Total number of dropped broadcasts or subscribers",
		},
		[]string{"reason"}, // reason: "hub_full", "client_slow"
	)

	// MQTT Metrics
	MQTTMessagesReceived = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sensorhub_mqtt_messages_received_total",
			Help: "Total number of MQTT messages received on device topics",
		},
	)

	MQTTBrokerClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sensorhub_mqtt_broker_clients",
			Help: "Current number of clients connected to the embedded MQTT broker",
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)
)

// Ingest source labels.
const (
	SourceHTTP = "http"
	SourceMQTT = "mqtt"
)

// Ingest result labels.
const (
	IngestAccepted           = "accepted"
	IngestInvalidDevice      = "invalid_device"
	IngestInvalidMeasurement = "invalid_measurement"
	IngestStoreError         = "store_error"
	IngestThrottled          = "throttled"
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordIngest counts one submission outcome.
func RecordIngest(source, result string) {
	IngestTotal.WithLabelValues(source, result).Inc()
}

// RecordStoreOperation records latency for a store call and counts failures.
func RecordStoreOperation(backend, operation string, duration time.Duration, err error) {
	StoreOperationDuration.WithLabelValues(backend, operation).Observe(duration.Seconds())
	if err != nil {
		StoreErrors.WithLabelValues(backend, operation).Inc()
	}
}

// RecordBroadcastDrop counts a broadcast that did not reach its destination.
func RecordBroadcastDrop(reason string) {
	BroadcastDropped.WithLabelValues(reason).Inc()
}

// RecordMessageSent counts a message enqueued to a subscriber.
func RecordMessageSent(messageType string) {
	WebSocketMessagesSent.WithLabelValues(messageType).Inc()
}

// SetSubscribers publishes the current subscriber count.
func SetSubscribers(n int) {
	WebSocketSubscribers.Set(float64(n))
}
