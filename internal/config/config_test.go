// Stackchart - Stacked Time-Series Chart Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stackchart

package config

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/stackchart/internal/models"
)

func validChart() ChartConfig {
	return ChartConfig{
		ID:            "cpu-state",
		Profile:       "prod",
		Task:          "host-1",
		Query:         "cpu",
		Column:        "state",
		CSType:        "enum",
		Function:      "count",
		ChartType:     "stacked",
		ProcessType:   "real_time",
		RangeRealTime: 10 * time.Minute,
	}
}

func TestValidate_Charts(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *ChartConfig)
		wantErr string
	}{
		{"valid", func(*ChartConfig) {}, ""},
		{"bad id", func(c *ChartConfig) { c.ID = "CPU State" }, "lowercase letters"},
		{"unknown function", func(c *ChartConfig) { c.Function = "median" }, "Function must be one of"},
		{"unknown process type", func(c *ChartConfig) { c.ProcessType = "batch" }, "unknown process type"},
		{"real-time without range", func(c *ChartConfig) { c.RangeRealTime = 0 }, "range_realtime must be positive"},
		{"custom history without bounds", func(c *ChartConfig) {
			c.ProcessType = "history"
			c.RangeHistory = "custom"
		}, "history_end must be after history_begin"},
		{"custom history", func(c *ChartConfig) {
			c.ProcessType = "history"
			c.RangeHistory = "custom"
			c.HistoryBegin = "2026-01-01T00:00:00Z"
			c.HistoryEnd = "2026-01-02T00:00:00Z"
		}, ""},
		{"bad history time", func(c *ChartConfig) {
			c.ProcessType = "history"
			c.RangeHistory = "custom"
			c.HistoryBegin = "yesterday"
		}, "datetime"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			ch := validChart()
			tt.mutate(&ch)
			cfg.Charts = []ChartConfig{ch}

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_DuplicateChartIDs(t *testing.T) {
	cfg := defaultConfig()
	cfg.Charts = []ChartConfig{validChart(), validChart()}

	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "duplicate chart id") {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestValidate_Bus(t *testing.T) {
	cfg := defaultConfig()
	cfg.Bus.Driver = "nats"
	cfg.Bus.NATSURL = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for nats without URL")
	}

	cfg.Bus.EmbeddedServer = true
	if err := cfg.Validate(); err != nil {
		t.Errorf("embedded server needs no URL: %v", err)
	}
}

func TestValidate_RateLimitWindow(t *testing.T) {
	cfg := defaultConfig()
	cfg.Server.RateLimitWindow = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for rate limit without window")
	}

	cfg.Server.RateLimitReqs = 0
	if err := cfg.Validate(); err != nil {
		t.Errorf("disabled rate limiting needs no window: %v", err)
	}
}

func TestChartConfig_Metric(t *testing.T) {
	ch := validChart()

	col, ok := ch.ColumnProfile()
	if !ok {
		t.Fatal("ColumnProfile() ok = false for configured cs_type")
	}
	m, err := ch.Metric(col)
	if err != nil {
		t.Fatalf("Metric() error = %v", err)
	}
	if m.Function() != models.FunctionCount || m.ChartType() != models.ChartTypeStacked {
		t.Errorf("Metric() = %+v", m)
	}

	ch.CSType = ""
	col, ok = ch.ColumnProfile()
	if ok {
		t.Error("ColumnProfile() ok = true without cs_type")
	}
	_, err = ch.Metric(col)
	var verr *models.ValidationError
	if !errors.As(err, &verr) {
		t.Errorf("Metric() error = %v, want *models.ValidationError", err)
	}
}

func TestChartConfig_Info(t *testing.T) {
	ch := validChart()
	ch.ProcessType = "history"
	ch.RangeHistory = "custom"
	ch.HistoryBegin = "2026-01-01T00:00:00Z"
	ch.HistoryEnd = "2026-01-01T06:00:00Z"

	info, err := ch.Info()
	if err != nil {
		t.Fatalf("Info() error = %v", err)
	}
	if got := info.DisplayRange(models.ProcessHistory); got != 6*time.Hour {
		t.Errorf("DisplayRange() = %v, want 6h", got)
	}
	if ref := ch.Ref(); ref.Column != "state" || ref.Key.Query != "cpu" {
		t.Errorf("Ref() = %+v", ref)
	}
}
