// SensorHub - Real-time Environmental Sensor Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

// Package devices holds the known device set.
//
// The set is fixed at startup. The ingest validator, the repository's
// latest-per-device fan-out, the MQTT topic check and /api/devices all read
// the same Registry.
package devices

import (
	"github.com/tomtom215/sensorhub/internal/config"
	"github.com/tomtom215/sensorhub/internal/models"
)

// Registry is an immutable set of device IDs in configured order.
// It is safe for concurrent use.
type Registry struct {
	ids       []string
	index     map[string]struct{}
	locations map[string]models.Location
}

// NewRegistry builds a registry from ids. Duplicate IDs are collapsed and
// locations for unknown IDs are ignored.
func NewRegistry(ids []string, locations map[string]models.Location) *Registry {
	r := &Registry{
		ids:       make([]string, 0, len(ids)),
		index:     make(map[string]struct{}, len(ids)),
		locations: make(map[string]models.Location, len(locations)),
	}
	for _, id := range ids {
		if _, dup := r.index[id]; dup {
			continue
		}
		r.index[id] = struct{}{}
		r.ids = append(r.ids, id)
	}
	for id, loc := range locations {
		if _, ok := r.index[id]; ok {
			r.locations[id] = loc
		}
	}
	return r
}

// FromConfig builds the registry from the devices section of the config.
func FromConfig(cfg config.DevicesConfig) *Registry {
	locations := make(map[string]models.Location, len(cfg.Locations))
	for id, l := range cfg.Locations {
		locations[id] = models.Location{X: l.X, Y: l.Y, Z: l.Z}
	}
	return NewRegistry(cfg.IDs, locations)
}

// Contains reports whether id is a known device.
func (r *Registry) Contains(id string) bool {
	_, ok := r.index[id]
	return ok
}

// IDs returns a copy of the known device IDs in configured order.
func (r *Registry) IDs() []string {
	out := make([]string, len(r.ids))
	copy(out, r.ids)
	return out
}

// Len returns the number of known devices.
func (r *Registry) Len() int {
	return len(r.ids)
}

// Devices returns the registry as API objects, including placements.
func (r *Registry) Devices() []models.DeviceInfo {
	out := make([]models.DeviceInfo, 0, len(r.ids))
	for _, id := range r.ids {
		info := models.DeviceInfo{ID: id}
		if loc, ok := r.locations[id]; ok {
			l := loc
			info.Location = &l
		}
		out = append(out, info)
	}
	return out
}
