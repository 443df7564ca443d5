// Stackchart - Stacked Time-Series Chart Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stackchart

package api

import (
	"context"
	"time"

	"github.com/tomtom215/stackchart/internal/cache"
	"github.com/tomtom215/stackchart/internal/chart"
	"github.com/tomtom215/stackchart/internal/eventbus"
	"github.com/tomtom215/stackchart/internal/models"
	ws "github.com/tomtom215/stackchart/internal/websocket"
)

// SampleStore is the part of the database the API writes to and queries.
type SampleStore interface {
	Ping(ctx context.Context) error
	UpsertColumnProfile(ctx context.Context, profile string, col models.ColumnProfile) (models.ColumnProfile, error)
	InsertSamples(ctx context.Context, ref models.ColumnRef, samples []models.RawSample) (int, error)
	QueryStacked(ctx context.Context, ref models.ColumnRef, w models.TimeWindow, strideMs int64) ([]models.StackedColumn, error)
}

// SignalPublisher publishes collection lifecycle and show-history signals.
type SignalPublisher interface {
	PublishCollectStart(ctx context.Context, key models.QueryKey) error
	PublishCollectStop(ctx context.Context, key models.QueryKey) error
	PublishShowHistory(ctx context.Context, ev *eventbus.ShowHistoryEvent) error
}

// Handler contains the dependencies of the API handlers. Store, Bus and Hub
// may be nil; the routes that need them then answer 503.
type Handler struct {
	store     SampleStore
	bus       SignalPublisher
	hub       *ws.Hub
	charts    map[string]*chart.Chart
	order     []string
	origins   []string
	queries   *cache.LRU[[]models.StackedColumn]
	startTime time.Time
}

// Stacked query results for windows that have already ended are kept this
// long, or until samples for the same column are ingested through the API.
const (
	queryCacheSize = 256
	queryCacheTTL  = 30 * time.Second
)

// NewHandler creates a handler serving the given charts in the given order.
func NewHandler(store SampleStore, bus SignalPublisher, hub *ws.Hub, charts []*chart.Chart, allowedOrigins []string) *Handler {
	h := &Handler{
		store:     store,
		bus:       bus,
		hub:       hub,
		charts:    make(map[string]*chart.Chart, len(charts)),
		order:     make([]string, 0, len(charts)),
		origins:   allowedOrigins,
		queries:   cache.NewLRU[[]models.StackedColumn](queryCacheSize, queryCacheTTL),
		startTime: time.Now(),
	}
	for _, c := range charts {
		if _, dup := h.charts[c.ID()]; dup {
			continue
		}
		h.charts[c.ID()] = c
		h.order = append(h.order, c.ID())
	}
	return h
}

func (h *Handler) chart(id string) (*chart.Chart, bool) {
	c, ok := h.charts[id]
	return c, ok
}
