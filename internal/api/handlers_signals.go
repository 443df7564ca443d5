// Stackchart - Stacked Time-Series Chart Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stackchart

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/stackchart/internal/eventbus"
	"github.com/tomtom215/stackchart/internal/models"
	"github.com/tomtom215/stackchart/internal/validation"
)

// CollectSignal handles POST /api/v1/collect/{profile}/{task}/{query}/{action}
// where action is start or stop.
func (h *Handler) CollectSignal(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if h.bus == nil {
		rw.ServiceUnavailable("event bus unavailable")
		return
	}

	key := models.QueryKey{
		Profile: chi.URLParam(r, "profile"),
		Task:    chi.URLParam(r, "task"),
		Query:   chi.URLParam(r, "query"),
	}
	action := eventbus.CollectType(chi.URLParam(r, "action"))

	var err error
	switch action {
	case eventbus.CollectStart:
		err = h.bus.PublishCollectStart(r.Context(), key)
	case eventbus.CollectStop:
		err = h.bus.PublishCollectStop(r.Context(), key)
	default:
		rw.BadRequest("action must be start or stop")
		return
	}
	if err != nil {
		rw.InternalError("failed to publish collect signal", err)
		return
	}

	rw.Accepted(map[string]any{"key": key, "type": action})
}

// ShowHistory handles POST /api/v1/history.
func (h *Handler) ShowHistory(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if h.bus == nil {
		rw.ServiceUnavailable("event bus unavailable")
		return
	}

	var req HistoryRequest
	if err := decodeJSON(r, w, &req); err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		rw.ValidationFailed(verr)
		return
	}

	ev := eventbus.NewShowHistoryEvent(req.Key(), req.Column, models.TimeWindow{Begin: req.Begin, End: req.End})
	if err := h.bus.PublishShowHistory(r.Context(), ev); err != nil {
		rw.InternalError("failed to publish show-history request", err)
		return
	}

	rw.Accepted(map[string]any{"event_id": ev.EventID, "window": ev.Window()})
}
