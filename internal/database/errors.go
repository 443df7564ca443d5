// Stackchart - Stacked Time-Series Chart Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stackchart

package database

import (
	"errors"
	"io"

	"github.com/tomtom215/stackchart/internal/logging"
)

var (
	// ErrColumnNotFound is returned when no profile is stored for a column.
	ErrColumnNotFound = errors.New("column profile not found")

	// ErrNoSamples is returned by LastTimestamp when a task has no samples yet.
	ErrNoSamples = errors.New("no samples stored")

	// ErrInvalidColumnRef is returned for a reference without profile, task, query or column.
	ErrInvalidColumnRef = errors.New("invalid column reference")

	// ErrInvalidStride is returned by QueryStacked for a stride below one millisecond.
	ErrInvalidStride = errors.New("stride must be at least 1ms")

	// ErrDatabaseClosed is returned after Close.
	ErrDatabaseClosed = errors.New("database closed")
)

// closeWithLog closes a resource and logs a failure.
func closeWithLog(closer io.Closer, resourceType string) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logging.Warn().Str("type", resourceType).Err(err).Msg("Failed to close resource")
	}
}

// closeQuietly closes a resource ignoring errors.
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close()
	}
}
