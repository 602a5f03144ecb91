// SensorHub - Real-time Environmental Sensor Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

package models

import (
	"bytes"
	"math"

	"github.com/goccy/go-json"
)

// ReceivedAtLayout is the wire format of Reading.ReceivedAt: RFC 3339 in UTC
// with millisecond precision.
const ReceivedAtLayout = "2006-01-02T15:04:05.000Z07:00"

// Reading is one accepted temperature/humidity sample.
//
// (DeviceID, Timestamp) is the natural key; storing the same key twice keeps
// the later values. A Reading is immutable once accepted.
//
// Example:
//
//	{
//	  "deviceId": "sensor-01",
//	  "timestamp": 1767225600,
//	  "temperature": 22.5,
//	  "humidity": 65.3,
//	  "receivedAt": "2026-01-01T00:00:00.123Z"
//	}
type Reading struct {
	DeviceID    string  `json:"deviceId"`
	Timestamp   int64   `json:"timestamp"` // epoch seconds
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	ReceivedAt  string  `json:"receivedAt"`
}

// IngestRequest is a candidate reading as submitted by a device over HTTP
// or MQTT. Timestamps are never accepted from the device.
//
// SensorID is the legacy name of DeviceID and is only consulted when
// DeviceID is empty.
type IngestRequest struct {
	DeviceID    string       `json:"deviceId,omitempty" validate:"omitempty,max=64,printascii,device_id"`
	SensorID    string       `json:"sensorId,omitempty" validate:"omitempty,max=64,printascii,device_id"`
	Temperature *Measurement `json:"temperature"`
	Humidity    *Measurement `json:"humidity"`
}

// Device returns the submitted device ID, falling back to SensorID.
func (r *IngestRequest) Device() string {
	if r.DeviceID != "" {
		return r.DeviceID
	}
	return r.SensorID
}

// Measurement is a JSON value that was expected to be a number.
//
// Decoding never fails: a string, object, boolean or out-of-range number is
// kept as a non-numeric Measurement so that validation, not the decoder,
// decides how to reject it.
type Measurement struct {
	Value   float64
	Numeric bool
}

// Number returns a numeric Measurement.
func Number(v float64) *Measurement {
	return &Measurement{Value: v, Numeric: true}
}

// UnmarshalJSON implements json.Unmarshaler.
func (m *Measurement) UnmarshalJSON(data []byte) error {
	m.Value, m.Numeric = 0, false
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return nil //nolint:nilerr // non-numeric input is a validation concern
	}
	m.Value, m.Numeric = v, true
	return nil
}

// MarshalJSON implements json.Marshaler. Non-numeric values encode as null.
func (m Measurement) MarshalJSON() ([]byte, error) {
	if !m.Numeric || math.IsNaN(m.Value) || math.IsInf(m.Value, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(m.Value)
}

// IsFinite reports whether m holds a usable number.
func (m *Measurement) IsFinite() bool {
	return m != nil && m.Numeric && !math.IsNaN(m.Value) && !math.IsInf(m.Value, 0)
}
