// SensorHub - Real-time Environmental Sensor Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

package ingest

import (
	"fmt"
	"math"
	"time"

	"github.com/tomtom215/sensorhub/internal/models"
	"github.com/tomtom215/sensorhub/internal/validation"
)

// Clock supplies the acceptance time of a reading.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

// Now implements Clock.
func (f ClockFunc) Now() time.Time { return f() }

// SystemClock is the wall clock.
var SystemClock Clock = ClockFunc(time.Now)

// DeviceSet reports membership in the known device set.
type DeviceSet interface {
	Contains(id string) bool
}

// Validator turns an IngestRequest into a Reading or rejects it.
// It has no side effects beyond reading the clock.
type Validator struct {
	devices DeviceSet
	clock   Clock
}

// NewValidator returns a Validator for devices. A nil clock means SystemClock.
func NewValidator(devices DeviceSet, clock Clock) *Validator {
	if clock == nil {
		clock = SystemClock
	}
	return &Validator{devices: devices, clock: clock}
}

// Validate checks req and returns the normalized Reading.
//
// The device is checked first, then both measurements. Values are rounded
// to one decimal only after they are known to be finite, and the timestamp
// and receivedAt come from the clock, never from the request.
func (v *Validator) Validate(req *models.IngestRequest) (models.Reading, error) {
	if req == nil {
		return models.Reading{}, ErrInvalidMeasurement
	}

	id := req.Device()
	if id == "" {
		return models.Reading{}, fmt.Errorf("%w: missing device id", ErrInvalidDevice)
	}
	// Only the effective id is checked; an ignored sensorId never rejects.
	if verr := validation.ValidateStruct(&models.IngestRequest{DeviceID: id}); verr != nil {
		return models.Reading{}, fmt.Errorf("%w: %s", ErrInvalidDevice, verr.Error())
	}
	if !v.devices.Contains(id) {
		return models.Reading{}, fmt.Errorf("%w: %q is not a known device", ErrInvalidDevice, id)
	}

	if !req.Temperature.IsFinite() {
		return models.Reading{}, fmt.Errorf("%w: temperature", ErrInvalidMeasurement)
	}
	if !req.Humidity.IsFinite() {
		return models.Reading{}, fmt.Errorf("%w: humidity", ErrInvalidMeasurement)
	}

	now := v.clock.Now()
	return models.Reading{
		DeviceID:    id,
		Timestamp:   now.Unix(),
		Temperature: Round1(req.Temperature.Value),
		Humidity:    Round1(req.Humidity.Value),
		ReceivedAt:  now.UTC().Format(models.ReceivedAtLayout),
	}, nil
}

// roundLimit is the magnitude above which a float64 has no fractional
// digits left, so rounding is the identity. Scaling such values by 10 can
// overflow to ±Inf.
const roundLimit = 1e15

// Round1 rounds v to one decimal place, half away from zero. Values at or
// beyond roundLimit are returned unchanged.
func Round1(v float64) float64 {
	if math.Abs(v) >= roundLimit {
		return v
	}
	r := math.Round(v*10) / 10
	if r == 0 {
		// normalise -0
		return 0
	}
	return r
}
