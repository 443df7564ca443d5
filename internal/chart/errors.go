// Stackchart - Stacked Time-Series Chart Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stackchart

package chart

import "errors"

// Construction errors. A chart that fails with one of these is never returned.
var (
	ErrUndefinedStorageType = errors.New("column storage type is undefined")
	ErrUnknownFunction      = errors.New("unknown aggregation function")
	ErrInvalidDisplayRange  = errors.New("display range must be a positive duration")
	ErrInvalidPointCap      = errors.New("point cap must be positive")
	ErrBucketTooNarrow      = errors.New("bucket width rounds to zero milliseconds")
	ErrMissingStorage       = errors.New("chart requires a storage adapter")
	ErrMissingSignals       = errors.New("real-time chart requires a signal source")
)

// Runtime errors.
var (
	// ErrHistoryLoad wraps the storage failure of a historical load.
	ErrHistoryLoad = errors.New("historical load failed")

	// ErrInvalidSeries and ErrInvalidValue are returned by a Surface rejecting a point.
	ErrInvalidSeries = errors.New("invalid series name")
	ErrInvalidValue  = errors.New("invalid point value")

	ErrChartClosed = errors.New("chart is closed")

	// ErrInvalidWindow and ErrWindowTooLarge reject a requested window before
	// anything is queried.
	ErrInvalidWindow  = errors.New("window bounds must be non-negative epoch milliseconds")
	ErrWindowTooLarge = errors.New("window spans too many buckets")
)
