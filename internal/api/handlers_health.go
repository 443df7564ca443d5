// Stackchart - Stacked Time-Series Chart Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stackchart

package api

import (
	"context"
	"net/http"
	"time"
)

// HealthStatus is the body of GET /health.
type HealthStatus struct {
	Status            string            `json:"status"`
	DatabaseConnected bool              `json:"database_connected"`
	Charts            int               `json:"charts"`
	FailingCharts     map[string]string `json:"failing_charts,omitempty"`
	WebSocketClients  int               `json:"websocket_clients"`
	Uptime            float64           `json:"uptime_seconds"`
}

// Health handles GET /health. The status is "degraded" when the store does
// not answer or a chart's last load failed; the response is 200 either way so
// that load balancers keep the instance.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	dbConnected := h.store != nil && h.store.Ping(ctx) == nil

	failing := make(map[string]string)
	for _, id := range h.order {
		if err := h.charts[id].LastError(); err != nil {
			failing[id] = err.Error()
		}
	}

	status := "healthy"
	if !dbConnected || len(failing) > 0 {
		status = "degraded"
	}

	clients := 0
	if h.hub != nil {
		clients = h.hub.ClientCount()
	}

	NewResponseWriter(w, r).Success(HealthStatus{
		Status:            status,
		DatabaseConnected: dbConnected,
		Charts:            len(h.order),
		FailingCharts:     failing,
		WebSocketClients:  clients,
		Uptime:            time.Since(h.startTime).Seconds(),
	})
}
