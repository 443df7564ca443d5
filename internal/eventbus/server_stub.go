// Stackchart - Stacked Time-Series Chart Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stackchart

//go:build !nats

package eventbus

import "context"

// ServerConfig configures the embedded NATS server.
type ServerConfig struct {
	Host string
	Port int
}

// EmbeddedServer is unavailable without -tags nats.
type EmbeddedServer struct{}

// NewEmbeddedServer always fails without -tags nats.
func NewEmbeddedServer(_ ServerConfig) (*EmbeddedServer, error) {
	return nil, ErrNATSUnavailable
}

// ClientURL returns "".
func (s *EmbeddedServer) ClientURL() string { return "" }

// Shutdown is a no-op.
func (s *EmbeddedServer) Shutdown(_ context.Context) error { return nil }

// IsRunning always returns false.
func (s *EmbeddedServer) IsRunning() bool { return false }
