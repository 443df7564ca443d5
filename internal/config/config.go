// Stackchart - Stacked Time-Series Chart Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stackchart

package config

import (
	"time"
)

// Config holds all application configuration
type Config struct {
	Logging  LoggingConfig  `koanf:"logging"`
	Database DatabaseConfig `koanf:"database"`
	Bus      BusConfig      `koanf:"bus"`
	Server   ServerConfig   `koanf:"server"`
	Poll     PollConfig     `koanf:"poll"`
	Charts   []ChartConfig  `koanf:"charts" validate:"dive"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	Level string `koanf:"level" validate:"oneof=trace debug info warn warning error"`

	// Format is the output format: json or console.
	Format string `koanf:"format" validate:"oneof=json console"`

	// Caller includes caller file and line number in logs.
	Caller bool `koanf:"caller"`
}

// DatabaseConfig holds DuckDB settings
type DatabaseConfig struct {
	Path      string `koanf:"path" validate:"required"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads" validate:"gte=0"` // 0 = use NumCPU
}

// BusConfig selects and tunes the collection lifecycle bus
type BusConfig struct {
	Driver         string `koanf:"driver" validate:"oneof=gochannel nats"`
	NATSURL        string `koanf:"nats_url"`
	EmbeddedServer bool   `koanf:"embedded_server"`
	Host           string `koanf:"host"` // embedded server listen host
	Port           int    `koanf:"port" validate:"gte=0,lte=65535"`
	OutputBuffer   int64  `koanf:"output_buffer" validate:"gte=0"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port" validate:"gte=1,lte=65535"`
	Timeout         time.Duration `koanf:"timeout" validate:"gt=0"`
	CORSOrigins     []string      `koanf:"cors_origins"`
	RateLimitReqs   int           `koanf:"rate_limit_reqs" validate:"gte=0"` // 0 disables rate limiting
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
}

// PollConfig paces real-time chart loads
type PollConfig struct {
	Interval time.Duration `koanf:"interval" validate:"gt=0"`
	Burst    int           `koanf:"burst" validate:"gte=1"`
}

// ChartConfig declares one chart
type ChartConfig struct {
	ID      string `koanf:"id" validate:"required,chartid"`
	Profile string `koanf:"profile" validate:"required"`
	Task    string `koanf:"task" validate:"required"`
	Query   string `koanf:"query" validate:"required"`
	Column  string `koanf:"column" validate:"required"`

	// CSType overrides the stored column profile when set.
	CSType string `koanf:"cs_type" validate:"omitempty,oneof=raw enum histogram"`

	Function    string `koanf:"function" validate:"required,oneof=asis count sum average"`
	ChartType   string `koanf:"chart_type" validate:"required,oneof=linear stacked"`
	ProcessType string `koanf:"process_type" validate:"required"`

	RangeRealTime time.Duration `koanf:"range_realtime" validate:"gte=0"`
	RangeHistory  string        `koanf:"range_history" validate:"omitempty,oneof=day week month custom"`
	HistoryBegin  string        `koanf:"history_begin" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"` // custom range only
	HistoryEnd    string        `koanf:"history_end" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`

	// PointCap limits points per series; 0 selects the default.
	PointCap int `koanf:"point_cap" validate:"gte=0"`
}
