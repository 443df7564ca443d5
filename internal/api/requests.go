// Stackchart - Stacked Time-Series Chart Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stackchart

package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/tomtom215/stackchart/internal/models"
)

const maxBodyBytes = 8 << 20

// SampleBatch is the body of POST /api/v1/samples. CSType, when set,
// registers or updates the column profile before the samples are stored.
type SampleBatch struct {
	Profile string   `json:"profile" validate:"required,max=128"`
	Task    string   `json:"task" validate:"required,max=128"`
	Query   string   `json:"query" validate:"required,max=128"`
	Column  string   `json:"column" validate:"required,max=128"`
	CSType  string   `json:"cs_type,omitempty" validate:"omitempty,oneof=raw enum histogram"`
	Samples []Sample `json:"samples" validate:"required,min=1,max=10000,dive"`
}

// Sample is one sample of a batch.
type Sample struct {
	TimestampMs int64   `json:"ts" validate:"gte=0"`
	Series      string  `json:"series" validate:"required,max=256"`
	Value       float64 `json:"value" validate:"finite"`
}

// Ref returns the column the batch is written to.
func (b *SampleBatch) Ref() models.ColumnRef {
	return models.ColumnRef{
		Key:    models.QueryKey{Profile: b.Profile, Task: b.Task, Query: b.Query},
		Column: b.Column,
	}
}

// RawSamples converts the batch to storage samples.
func (b *SampleBatch) RawSamples() []models.RawSample {
	out := make([]models.RawSample, len(b.Samples))
	for i, s := range b.Samples {
		out[i] = models.RawSample{TimestampMs: s.TimestampMs, Series: s.Series, Value: s.Value}
	}
	return out
}

// HistoryRequest is the body of POST /api/v1/history. An empty key addresses
// every real-time chart; an empty column addresses every chart of the key.
type HistoryRequest struct {
	Profile string `json:"profile" validate:"max=128"`
	Task    string `json:"task" validate:"max=128"`
	Query   string `json:"query" validate:"max=128"`
	Column  string `json:"column" validate:"max=128"`
	Begin   int64  `json:"begin" validate:"gte=0"`
	End     int64  `json:"end" validate:"gte=0"`
}

// Key returns the addressed query key.
func (r *HistoryRequest) Key() models.QueryKey {
	return models.QueryKey{Profile: r.Profile, Task: r.Task, Query: r.Query}
}

func decodeJSON(r *http.Request, w http.ResponseWriter, into any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(into); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// parseWindow reads begin and end (epoch ms) from the query string. Both or
// neither must be given; ok is false when neither is.
func parseWindow(r *http.Request) (w models.TimeWindow, ok bool, err error) {
	b, e := r.URL.Query().Get("begin"), r.URL.Query().Get("end")
	if b == "" && e == "" {
		return models.TimeWindow{}, false, nil
	}
	if b == "" || e == "" {
		return models.TimeWindow{}, false, fmt.Errorf("begin and end must be given together")
	}
	begin, err := strconv.ParseInt(b, 10, 64)
	if err != nil || begin < 0 {
		return models.TimeWindow{}, false, fmt.Errorf("begin must be a non-negative epoch millisecond value")
	}
	end, err := strconv.ParseInt(e, 10, 64)
	if err != nil || end < 0 {
		return models.TimeWindow{}, false, fmt.Errorf("end must be a non-negative epoch millisecond value")
	}
	return models.TimeWindow{Begin: begin, End: end}, true, nil
}
