// Stackchart - Stacked Time-Series Chart Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stackchart

// Package logging provides the zerolog-based structured logger shared by every
// Stackchart component.
//
// # Overview
//
// A single global zerolog.Logger is configured once from main() with Init and
// read through package-level helpers. Components derive child loggers with
// WithComponent, and chart instances add their own identity with WithChart so
// every per-point and per-poll failure carries the chart it belongs to.
//
// # Quick Start
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//
//	logging.Info().Str("chart", id).Msg("Chart loaded")
//	logging.Ctx(ctx).Warn().Err(err).Msg("Real-time poll failed")
//
// # Adapters
//
// Two adapters route third-party logging into the same sink:
//
//   - NewSlogLogger returns a *slog.Logger for the suture supervisor (sutureslog)
//   - NewWatermillLogger returns a watermill.LoggerAdapter for the event bus
//
// # Configuration
//
// Environment variables (mapped by internal/config):
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: include caller file and line (default: false)
//
// # Thread Safety
//
// The global logger is guarded by a sync.RWMutex. Init and SetLogger may be
// called at any time; loggers already handed out keep their configuration.
package logging
