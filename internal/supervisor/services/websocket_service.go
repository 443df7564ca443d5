// Stackchart - Stacked Time-Series Chart Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stackchart

package services

import "context"

// Runner is a component whose lifetime is one blocking Run call.
type Runner interface {
	Run(ctx context.Context) error
}

// WebSocketHubService runs the websocket hub.
type WebSocketHubService struct {
	hub Runner
}

func NewWebSocketHubService(hub Runner) *WebSocketHubService {
	return &WebSocketHubService{hub: hub}
}

// Serve implements suture.Service.
func (w *WebSocketHubService) Serve(ctx context.Context) error {
	return w.hub.Run(ctx)
}

func (w *WebSocketHubService) String() string {
	return "websocket-hub"
}
