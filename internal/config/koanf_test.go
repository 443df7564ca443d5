// Stackchart - Stacked Time-Series Chart Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stackchart

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Database.Path != "/data/stackchart.duckdb" {
		t.Errorf("Database.Path = %q", cfg.Database.Path)
	}
	if cfg.Bus.Driver != "gochannel" {
		t.Errorf("Bus.Driver = %q, want gochannel", cfg.Bus.Driver)
	}
	if cfg.Poll.Interval != 5*time.Second {
		t.Errorf("Poll.Interval = %v, want 5s", cfg.Poll.Interval)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults must validate: %v", err)
	}
}

func TestLoadFrom_DefaultsOnly(t *testing.T) {
	cfg, err := LoadFrom("")
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.Server.Port != 3860 {
		t.Errorf("Server.Port = %d, want 3860", cfg.Server.Port)
	}
	if len(cfg.Charts) != 0 {
		t.Errorf("expected no charts, got %d", len(cfg.Charts))
	}
}

func TestLoadFrom_YAMLAndEnv(t *testing.T) {
	path := writeConfig(t, `
logging:
  level: debug
database:
  path: /tmp/test.duckdb
poll:
  interval: 2s
charts:
  - id: cpu-state
    profile: prod
    task: host-1
    query: cpu
    column: state
    cs_type: enum
    function: count
    chart_type: stacked
    process_type: real_time
    range_realtime: 10m
  - id: cpu-week
    profile: prod
    task: host-1
    query: cpu
    column: load
    function: average
    chart_type: linear
    process_type: history
    range_history: week
`)

	t.Setenv("HTTP_PORT", "9999")
	t.Setenv("POLL_INTERVAL", "1s")
	t.Setenv("CORS_ORIGINS", "http://a.example, http://b.example")
	t.Setenv("UNRELATED_VARIABLE", "ignored")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.Database.Path != "/tmp/test.duckdb" {
		t.Errorf("Database.Path = %q", cfg.Database.Path)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("env must override file: Server.Port = %d", cfg.Server.Port)
	}
	if cfg.Poll.Interval != time.Second {
		t.Errorf("env must override file: Poll.Interval = %v", cfg.Poll.Interval)
	}
	if len(cfg.Server.CORSOrigins) != 2 || cfg.Server.CORSOrigins[1] != "http://b.example" {
		t.Errorf("CORSOrigins = %v", cfg.Server.CORSOrigins)
	}
	if cfg.HasWildcardCORS() {
		t.Error("HasWildcardCORS() = true, want false")
	}

	if len(cfg.Charts) != 2 {
		t.Fatalf("expected 2 charts, got %d", len(cfg.Charts))
	}
	rt := cfg.Charts[0]
	if rt.RangeRealTime != 10*time.Minute {
		t.Errorf("RangeRealTime = %v, want 10m", rt.RangeRealTime)
	}
	if rt.Key().String() != "prod/host-1/cpu" {
		t.Errorf("Key() = %q", rt.Key().String())
	}
	if cfg.Charts[1].RangeHistory != "week" {
		t.Errorf("RangeHistory = %q, want week", cfg.Charts[1].RangeHistory)
	}
}

func TestLoadFrom_InvalidFile(t *testing.T) {
	path := writeConfig(t, "logging: [unterminated")
	if _, err := LoadFrom(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoadFrom_ValidationFailure(t *testing.T) {
	path := writeConfig(t, `
bus:
  driver: kafka
`)
	if _, err := LoadFrom(path); err == nil {
		t.Error("expected validation error for unknown bus driver")
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := map[string]string{
		"DUCKDB_PATH":   "database.path",
		"LOG_LEVEL":     "logging.level",
		"BUS_DRIVER":    "bus.driver",
		"NATS_URL":      "bus.nats_url",
		"POLL_INTERVAL": "poll.interval",
		"HOME":          "",
	}
	for in, want := range tests {
		if got := envTransformFunc(in); got != want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFindConfigFile_EnvOverride(t *testing.T) {
	path := writeConfig(t, "logging:\n  level: warn\n")
	t.Setenv(ConfigPathEnvVar, path)

	if got := findConfigFile(); got != path {
		t.Errorf("findConfigFile() = %q, want %q", got, path)
	}
}
