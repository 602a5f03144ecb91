// SensorHub - Real-time Environmental Sensor Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/sensorhub/internal/api"
	"github.com/tomtom215/sensorhub/internal/config"
	"github.com/tomtom215/sensorhub/internal/devices"
	"github.com/tomtom215/sensorhub/internal/ingest"
	"github.com/tomtom215/sensorhub/internal/logging"
	"github.com/tomtom215/sensorhub/internal/mqtt"
	"github.com/tomtom215/sensorhub/internal/repository"
	"github.com/tomtom215/sensorhub/internal/store"
	"github.com/tomtom215/sensorhub/internal/supervisor"
	"github.com/tomtom215/sensorhub/internal/supervisor/services"
	ws "github.com/tomtom215/sensorhub/internal/websocket"
)

func main() {
	if err := run(); err != nil {
		logging.Error().Err(err).Msg("SensorHub exited with error")
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		logging.Error().Err(err).Msg("Failed to load configuration")
		return err
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registry := devices.FromConfig(cfg.Devices)
	logging.Info().
		Strs("devices", registry.IDs()).
		Str("store_backend", cfg.Store.Backend).
		Bool("mqtt_enabled", cfg.MQTT.Enabled).
		Msg("Starting SensorHub")

	ts, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer func() {
		if err := ts.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing store")
		}
	}()
	logging.Info().Str("backend", ts.Backend()).Msg("Store opened")

	repo := repository.New(ts, registry)
	hub := ws.NewHub(cfg.Hub)
	ingestion := ingest.NewService(ingest.NewValidator(registry, nil), repo, hub)

	handler := api.NewHandler(ingestion, repo, registry, hub, cfg)
	router := api.NewRouter(handler, api.NewChiMiddleware(api.NewChiMiddlewareConfig(cfg.Security)))

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.SetupChi(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		return err
	}

	tree.AddDataService(services.NewStoreMonitorService(ts, cfg.Store.HealthInterval))
	tree.AddMessagingService(services.NewHubService(hub))
	if cfg.MQTT.EmbeddedBroker {
		tree.AddMessagingService(mqtt.NewBroker(cfg.MQTT))
		logging.Info().Str("addr", cfg.MQTT.ListenAddr).Msg("Embedded MQTT broker added to supervisor tree")
	}
	if cfg.MQTT.Enabled {
		tree.AddMessagingService(mqtt.NewSubscriber(cfg.MQTT, ingestion, registry))
		logging.Info().
			Str("broker", cfg.MQTT.BrokerURL).
			Str("topic", cfg.MQTT.Topic).
			Msg("MQTT subscriber added to supervisor tree")
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	errCh := tree.ServeBackground(ctx)

	var treeErr error
	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutdown signal received, stopping services")
		treeErr = <-errCh
	case treeErr = <-errCh:
	}
	stop()
	if treeErr != nil && !errors.Is(treeErr, context.Canceled) {
		logging.Error().Err(treeErr).Msg("Supervisor tree error")
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("SensorHub stopped")
	return nil
}
