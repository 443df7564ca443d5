// Stackchart - Stacked Time-Series Chart Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stackchart

package api

import (
	"errors"
	"net/http"

	"github.com/tomtom215/stackchart/internal/database"
	"github.com/tomtom215/stackchart/internal/models"
	"github.com/tomtom215/stackchart/internal/validation"
)

// IngestSamples handles POST /api/v1/samples. The batch is validated as a
// whole; nothing is stored when any sample is invalid.
func (h *Handler) IngestSamples(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if h.store == nil {
		rw.ServiceUnavailable("storage unavailable")
		return
	}

	var batch SampleBatch
	if err := decodeJSON(r, w, &batch); err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if verr := validation.ValidateStruct(&batch); verr != nil {
		rw.ValidationFailed(verr)
		return
	}

	ref := batch.Ref()
	if batch.CSType != "" {
		col := models.ColumnProfile{Name: batch.Column, CSType: models.ParseCSType(batch.CSType)}
		if _, err := h.store.UpsertColumnProfile(r.Context(), batch.Profile, col); err != nil {
			rw.DatabaseError(err)
			return
		}
	}

	n, err := h.store.InsertSamples(r.Context(), ref, batch.RawSamples())
	if err != nil {
		var verr *models.ValidationError
		if errors.As(err, &verr) || errors.Is(err, database.ErrInvalidColumnRef) {
			rw.BadRequest(err.Error())
			return
		}
		rw.DatabaseError(err)
		return
	}

	h.queries.RemovePrefix(ref.String() + "|")
	rw.Success(map[string]any{"column": ref.String(), "inserted": n})
}
