// Stackchart - Stacked Time-Series Chart Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stackchart

package eventbus

import "errors"

var (
	// ErrBusClosed is returned by publish and subscribe calls after Close.
	ErrBusClosed = errors.New("event bus is closed")

	// ErrUnknownDriver is returned by New for an unsupported driver name.
	ErrUnknownDriver = errors.New("unknown event bus driver")

	// ErrNATSUnavailable is returned when the binary was built without -tags nats.
	ErrNATSUnavailable = errors.New("NATS support not available: build with -tags nats")
)

// ValidationError describes an invalid event field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return "invalid event: " + e.Field + " " + e.Message
}
