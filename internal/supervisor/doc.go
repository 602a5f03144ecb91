// SensorHub - Real-time Environmental Sensor Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

/*
Package supervisor runs SensorHub's long-lived services under suture v4.

# Tree

	RootSupervisor ("sensorhub")
	├── DataSupervisor ("data-layer")
	│   └── StoreMonitorService
	├── MessagingSupervisor ("messaging-layer")
	│   ├── HubService
	│   ├── mqtt.Broker (if MQTT_EMBEDDED_BROKER)
	│   └── mqtt.Subscriber (if MQTT_ENABLED)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

A service that returns an error is restarted. Failures decay over
FailureDecay seconds; once the count passes FailureThreshold the layer waits
FailureBackoff before the next restart. Supervisor events are logged through
sutureslog using the zerolog-backed slog handler from internal/logging.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddMessagingService(services.NewHubService(hub))
	tree.AddAPIService(services.NewHTTPServerService(srv, cfg.Server.ShutdownTimeout))

	errCh := tree.ServeBackground(ctx)
	<-ctx.Done()
	<-errCh

The store itself is not supervised. It is opened before the tree starts and
closed after the tree has stopped, so no service outlives it.
*/
package supervisor
