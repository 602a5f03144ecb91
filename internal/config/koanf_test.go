// SensorHub - Real-time Environmental Sensor Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/knadh/koanf/v2"
)

// clearEnv unsets every variable the loader reads and restores them afterwards.
func clearEnv(t *testing.T) {
	t.Helper()

	keys := []string{ConfigPathEnvVar, DotenvPathEnvVar, "PORT"}
	for k := range envMappings {
		keys = append(keys, strings.ToUpper(k))
	}

	for _, key := range keys {
		prev, had := os.LookupEnv(key)
		_ = os.Unsetenv(key)
		t.Cleanup(func() {
			if had {
				_ = os.Setenv(key, prev)
			} else {
				_ = os.Unsetenv(key)
			}
		})
	}

	// Keep the search away from any config.yaml or .env in the package dir.
	t.Setenv(DotenvPathEnvVar, filepath.Join(t.TempDir(), "missing.env"))
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Server.Port != 3000 {
		t.Errorf("Server.Port = %d, want 3000", cfg.Server.Port)
	}
	if !reflect.DeepEqual(cfg.Devices.IDs, []string{"sensor-01", "sensor-02", "sensor-03", "sensor-04"}) {
		t.Errorf("Devices.IDs = %v", cfg.Devices.IDs)
	}
	if cfg.Store.Backend != "badger" {
		t.Errorf("Store.Backend = %q, want badger", cfg.Store.Backend)
	}
	if cfg.Hub.WriteWait != 10*time.Second {
		t.Errorf("Hub.WriteWait = %v, want 10s", cfg.Hub.WriteWait)
	}
	if cfg.MQTT.Topic != "sensors/+/data" {
		t.Errorf("MQTT.Topic = %q", cfg.MQTT.Topic)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate, got: %v", err)
	}
}

func TestDefaultConfig_DeviceIDsAreCopied(t *testing.T) {
	cfg := defaultConfig()
	cfg.Devices.IDs[0] = "changed"

	if DefaultDeviceIDs[0] != "sensor-01" {
		t.Fatal("mutating a loaded config must not change DefaultDeviceIDs")
	}
}

func TestLoadWithKoanf_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}
	if cfg.Server.Port != 3000 {
		t.Errorf("Server.Port = %d, want 3000", cfg.Server.Port)
	}
	if cfg.Store.Breaker.Timeout != 30*time.Second {
		t.Errorf("Store.Breaker.Timeout = %v, want 30s", cfg.Store.Breaker.Timeout)
	}
	if len(cfg.Devices.IDs) != 4 {
		t.Errorf("len(Devices.IDs) = %d, want 4", len(cfg.Devices.IDs))
	}
}

func TestLoadWithKoanf_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("HTTP_PORT", "8080")
	t.Setenv("KNOWN_DEVICES", "kitchen, attic ,garage")
	t.Setenv("STORE_BACKEND", "duckdb")
	t.Setenv("DUCKDB_PATH", ":memory:")
	t.Setenv("RATE_LIMIT_WINDOW", "30s")
	t.Setenv("MQTT_QOS", "1")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("UNRELATED_VARIABLE", "ignored")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if want := []string{"kitchen", "attic", "garage"}; !reflect.DeepEqual(cfg.Devices.IDs, want) {
		t.Errorf("Devices.IDs = %v, want %v", cfg.Devices.IDs, want)
	}
	if cfg.Store.Backend != "duckdb" || cfg.Store.DuckDB.Path != ":memory:" {
		t.Errorf("Store = %+v", cfg.Store)
	}
	if cfg.Security.RateLimitWindow != 30*time.Second {
		t.Errorf("RateLimitWindow = %v, want 30s", cfg.Security.RateLimitWindow)
	}
	if cfg.MQTT.QoS != 1 {
		t.Errorf("MQTT.QoS = %d, want 1", cfg.MQTT.QoS)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
}

func TestLoadWithKoanf_PortAlias(t *testing.T) {
	t.Run("PORT used when HTTP_PORT unset", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("PORT", "4000")

		cfg, err := LoadWithKoanf()
		if err != nil {
			t.Fatalf("LoadWithKoanf() error = %v", err)
		}
		if cfg.Server.Port != 4000 {
			t.Errorf("Server.Port = %d, want 4000", cfg.Server.Port)
		}
	})

	t.Run("HTTP_PORT wins over PORT", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("PORT", "4000")
		t.Setenv("HTTP_PORT", "5000")

		cfg, err := LoadWithKoanf()
		if err != nil {
			t.Fatalf("LoadWithKoanf() error = %v", err)
		}
		if cfg.Server.Port != 5000 {
			t.Errorf("Server.Port = %d, want 5000", cfg.Server.Port)
		}
	})

	t.Run("invalid PORT", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("PORT", "three-thousand")

		if _, err := LoadWithKoanf(); err == nil {
			t.Fatal("expected error for non-numeric PORT")
		}
	})
}

func TestLoadWithKoanf_ConfigFile(t *testing.T) {
	clearEnv(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 9090
devices:
  ids: [sensor-01, sensor-02]
  locations:
    sensor-01: {x: 1.5, y: 0.25, z: 3}
store:
  backend: badger
  badger:
    in_memory: true
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("HTTP_PORT", "9191")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Server.Port != 9191 {
		t.Errorf("env should override file: Server.Port = %d, want 9191", cfg.Server.Port)
	}
	if !reflect.DeepEqual(cfg.Devices.IDs, []string{"sensor-01", "sensor-02"}) {
		t.Errorf("Devices.IDs = %v", cfg.Devices.IDs)
	}
	loc, ok := cfg.Devices.Locations["sensor-01"]
	if !ok {
		t.Fatalf("expected location for sensor-01, got %v", cfg.Devices.Locations)
	}
	if loc.X != 1.5 || loc.Y != 0.25 || loc.Z != 3 {
		t.Errorf("location = %+v", loc)
	}
	if !cfg.Store.Badger.InMemory {
		t.Error("expected badger in_memory from file")
	}
}

func TestLoadWithKoanf_Dotenv(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("MQTT_CLIENT_ID=from-dotenv\nLOG_FORMAT=console\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(DotenvPathEnvVar, path)
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}
	if cfg.MQTT.ClientID != "from-dotenv" {
		t.Errorf("MQTT.ClientID = %q, want from-dotenv", cfg.MQTT.ClientID)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("real environment must win over .env, got format %q", cfg.Logging.Format)
	}
}

func TestLoadWithKoanf_ValidationFailure(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_BACKEND", "cassandra")

	_, err := LoadWithKoanf()
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "STORE_BACKEND") {
		t.Errorf("error should name STORE_BACKEND, got: %v", err)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
	}{
		{"HTTP_PORT", "server.port"},
		{"KNOWN_DEVICES", "devices.ids"},
		{"STORE_BACKEND", "store.backend"},
		{"CLICKHOUSE_ADDR", "store.clickhouse.addr"},
		{"MQTT_EMBEDDED_BROKER", "mqtt.embedded_broker"},
		{"log_level", "logging.level"},
		{"PATH", ""},
		{"PORT", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			if got := envTransformFunc(tt.input); got != tt.want {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestProcessSliceFields(t *testing.T) {
	t.Parallel()

	k := koanf.New(".")
	_ = k.Set("devices.ids", "a, b,,c ")
	_ = k.Set("security.cors_origins", []string{"http://x"})

	if err := processSliceFields(k); err != nil {
		t.Fatalf("processSliceFields() error = %v", err)
	}

	if got := k.Strings("devices.ids"); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Errorf("devices.ids = %v", got)
	}
	if got := k.Strings("security.cors_origins"); !reflect.DeepEqual(got, []string{"http://x"}) {
		t.Errorf("security.cors_origins = %v", got)
	}
}
