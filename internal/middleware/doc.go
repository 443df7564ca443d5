// Stackchart - Stacked Time-Series Chart Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stackchart

// Package middleware provides the HTTP middleware shared by every API route:
// request ID propagation into the logging context and Prometheus request
// instrumentation.
package middleware
