// SensorHub - Real-time Environmental Sensor Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

package mqtt

import (
	"errors"
	"testing"

	"github.com/tomtom215/sensorhub/internal/ingest"
)

func TestParseTopic(t *testing.T) {
	t.Parallel()

	tests := []struct {
		topic   string
		want    string
		wantErr bool
	}{
		{"sensors/sensor-01/data", "sensor-01", false},
		{"sensors/x/data", "x", false},
		{"sensors//data", "", true},
		{"sensors/sensor-01", "", true},
		{"sensors/sensor-01/data/extra", "", true},
		{"devices/sensor-01/data", "", true},
		{"sensors/sensor-01/status", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.topic, func(t *testing.T) {
			t.Parallel()
			got, err := ParseTopic(tt.topic)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseTopic() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrInvalidTopic) {
				t.Errorf("error = %v, want ErrInvalidTopic", err)
			}
			if got != tt.want {
				t.Errorf("ParseTopic() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDeviceTopic(t *testing.T) {
	t.Parallel()
	if got := DeviceTopic("sensor-03"); got != "sensors/sensor-03/data" {
		t.Errorf("DeviceTopic() = %q", got)
	}
	id, err := ParseTopic(DeviceTopic("sensor-03"))
	if err != nil || id != "sensor-03" {
		t.Errorf("ParseTopic(DeviceTopic()) = %q, %v", id, err)
	}
}

func TestDecodePayload(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		payload  string
		wantErr  error
		wantTemp float64
	}{
		{"measurements only", `{"temperature":22.5,"humidity":60}`, nil, 22.5},
		{"matching deviceId", `{"deviceId":"sensor-01","temperature":1,"humidity":2}`, nil, 1},
		{"matching legacy sensorId", `{"sensorId":"sensor-01","temperature":3,"humidity":2}`, nil, 3},
		{"mismatched deviceId", `{"deviceId":"sensor-02","temperature":1,"humidity":2}`, ingest.ErrInvalidDevice, 0},
		{"mismatched sensorId", `{"sensorId":"sensor-02","temperature":1,"humidity":2}`, ingest.ErrInvalidDevice, 0},
		{"not json", `22.5,60`, ingest.ErrInvalidMeasurement, 0},
		{"empty", ``, ingest.ErrInvalidMeasurement, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req, err := DecodePayload("sensor-01", []byte(tt.payload))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("DecodePayload() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodePayload() error = %v", err)
			}
			if req.DeviceID != "sensor-01" || req.SensorID != "" {
				t.Errorf("device = %q/%q, want sensor-01 from the topic", req.DeviceID, req.SensorID)
			}
			if !req.Temperature.IsFinite() || req.Temperature.Value != tt.wantTemp {
				t.Errorf("temperature = %+v, want %v", req.Temperature, tt.wantTemp)
			}
		})
	}
}
