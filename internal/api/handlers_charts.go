// Stackchart - Stacked Time-Series Chart Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stackchart

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/stackchart/internal/chart"
	"github.com/tomtom215/stackchart/internal/metrics"
	"github.com/tomtom215/stackchart/internal/models"
)

// ChartSummary describes one chart without its data.
type ChartSummary struct {
	ID        string                 `json:"id"`
	Key       models.QueryKey        `json:"key"`
	Column    string                 `json:"column"`
	CSType    models.CSType          `json:"cs_type"`
	Function  models.FunctionKind    `json:"function"`
	ChartType models.ChartType       `json:"chart_type"`
	Process   models.ProcessType     `json:"process_type"`
	Params    models.RangeParameters `json:"range"`
	Series    []string               `json:"series"`
	Colors    map[string]string      `json:"colors"`
	State     string                 `json:"state,omitempty"`
	Window    *models.TimeWindow     `json:"window,omitempty"`
	LastError string                 `json:"last_error,omitempty"`
}

// ChartDetail is a summary plus a dataset snapshot.
type ChartDetail struct {
	ChartSummary
	Data chart.Snapshot `json:"data"`
}

func summarize(c *chart.Chart) ChartSummary {
	m := c.Metric()
	s := ChartSummary{
		ID:        c.ID(),
		Key:       c.Key(),
		Column:    m.YAxis().Name,
		CSType:    m.YAxis().CSType,
		Function:  m.Function(),
		ChartType: m.ChartType(),
		Process:   c.Process(),
		Params:    c.Params(),
		Series:    c.Series(),
		Colors:    c.Colors(),
	}
	if coord := c.Coordinator(); coord != nil {
		s.State = coord.State().String()
		if coord.State() != chart.StateIdle {
			w := coord.Window()
			s.Window = &w
		}
	}
	if err := c.LastError(); err != nil {
		s.LastError = err.Error()
	}
	return s
}

// ListCharts handles GET /api/v1/charts.
func (h *Handler) ListCharts(w http.ResponseWriter, r *http.Request) {
	out := make([]ChartSummary, 0, len(h.order))
	for _, id := range h.order {
		out = append(out, summarize(h.charts[id]))
	}
	NewResponseWriter(w, r).Success(out)
}

// GetChart handles GET /api/v1/charts/{id}.
func (h *Handler) GetChart(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	c, ok := h.chart(chi.URLParam(r, "id"))
	if !ok {
		rw.NotFound("chart not found")
		return
	}
	rw.Success(ChartDetail{ChartSummary: summarize(c), Data: c.Snapshot()})
}

// ReloadChart handles POST /api/v1/charts/{id}/reload. With begin and end it
// loads that window, otherwise it runs the chart's regular load. A reload
// requested while another load is running is coalesced into it.
func (h *Handler) ReloadChart(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	c, ok := h.chart(chi.URLParam(r, "id"))
	if !ok {
		rw.NotFound("chart not found")
		return
	}
	win, ranged, err := parseWindow(r)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}

	if ranged {
		err = c.LoadRange(r.Context(), win)
	} else {
		err = c.LoadData(r.Context())
	}
	switch {
	case err == nil:
	case errors.Is(err, chart.ErrChartClosed):
		rw.ServiceUnavailable("chart is closed")
		return
	case errors.Is(err, chart.ErrWindowTooLarge), errors.Is(err, chart.ErrInvalidWindow):
		rw.BadRequest(err.Error())
		return
	default:
		rw.DatabaseError(err)
		return
	}

	snap := c.Snapshot()
	rw.Success(map[string]any{
		"id":      c.ID(),
		"version": snap.Version,
		"points":  len(snap.Points),
	})
}

// StackedChart handles GET /api/v1/charts/{id}/stacked. The store buckets and
// counts the chart's column on the chart's bucket grid. Windows wider than
// chart.CheckWindow allows are rejected.
func (h *Handler) StackedChart(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	c, ok := h.chart(chi.URLParam(r, "id"))
	if !ok {
		rw.NotFound("chart not found")
		return
	}
	if h.store == nil {
		rw.ServiceUnavailable("storage unavailable")
		return
	}
	win, ranged, err := parseWindow(r)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if !ranged {
		rw.BadRequest("begin and end are required")
		return
	}
	if err := chart.CheckWindow(win, c.Params()); err != nil {
		rw.BadRequest(err.Error())
		return
	}

	ref := models.ColumnRef{Key: c.Key(), Column: c.Metric().YAxis().Name}
	cols, cached, err := h.queryStacked(r.Context(), ref, win, c.Params().Stride())
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	rw.Success(map[string]any{
		"id":        c.ID(),
		"stride_ms": c.Params().Stride(),
		"window":    win,
		"cached":    cached,
		"columns":   cols,
	})
}

// queryStacked serves windows that have already ended from the query cache.
func (h *Handler) queryStacked(ctx context.Context, ref models.ColumnRef, win models.TimeWindow, stride int64) ([]models.StackedColumn, bool, error) {
	closed := win.End <= time.Now().UnixMilli()
	key := queryCacheKey(ref, win, stride)
	if closed {
		cols, ok := h.queries.Get(key)
		metrics.RecordQueryCache(ok)
		if ok {
			return cols, true, nil
		}
	}

	cols, err := h.store.QueryStacked(ctx, ref, win, stride)
	if err != nil {
		return nil, false, err
	}
	if cols == nil {
		cols = []models.StackedColumn{}
	}
	if closed {
		h.queries.Add(key, cols)
	}
	return cols, false, nil
}

func queryCacheKey(ref models.ColumnRef, win models.TimeWindow, stride int64) string {
	return fmt.Sprintf("%s|%d|%d|%d", ref, win.Begin, win.End, stride)
}
