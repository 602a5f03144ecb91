// SensorHub - Real-time Environmental Sensor Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

/*
Package services adapts SensorHub components to suture.Service.

Components that already have a Serve(ctx) error method, such as the MQTT
subscriber and the embedded broker, are added to the tree directly. The
wrappers here cover the rest:

  - HTTPServerService: ListenAndServe with graceful Shutdown on cancel
  - HubService: the broadcast hub's RunWithContext loop
  - StoreMonitorService: periodic store pings that log reachability changes

Each wrapper implements fmt.Stringer so supervisor events name the service.

	tree.AddDataService(services.NewStoreMonitorService(ts, cfg.Store.HealthInterval))
	tree.AddMessagingService(services.NewHubService(hub))
	tree.AddAPIService(services.NewHTTPServerService(srv, cfg.Server.ShutdownTimeout))
*/
package services
