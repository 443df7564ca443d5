// Stackchart - Stacked Time-Series Chart Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stackchart

package models

import (
	"fmt"
	"math"
)

// QueryKey identifies a running collection task. Lifecycle signals from the
// collector are correlated with charts through it.
type QueryKey struct {
	Profile string `json:"profile"`
	Task    string `json:"task"`
	Query   string `json:"query"`
}

// String returns profile/task/query.
func (k QueryKey) String() string {
	return k.Profile + "/" + k.Task + "/" + k.Query
}

// IsZero reports whether no field of the key is set.
func (k QueryKey) IsZero() bool {
	return k == QueryKey{}
}

// TimeWindow is the half-open interval [Begin, End) in epoch milliseconds.
// Begin > End is a valid degenerate window that resolves to a single instant at Begin.
type TimeWindow struct {
	Begin int64 `json:"begin"`
	End   int64 `json:"end"`
}

// IsDegenerate reports whether the window begins after it ends.
func (w TimeWindow) IsDegenerate() bool {
	return w.Begin > w.End
}

// Contains reports whether ts falls in [Begin, End).
func (w TimeWindow) Contains(ts int64) bool {
	return ts >= w.Begin && ts < w.End
}

// Duration returns End-Begin, or zero for degenerate windows.
func (w TimeWindow) Duration() int64 {
	if w.IsDegenerate() {
		return 0
	}
	return w.End - w.Begin
}

// FillRange returns the inclusive bounds walked when materializing buckets.
// The end is exclusive for non-empty windows, so the walk stops one
// millisecond short of End. An empty window (Begin == End) still covers the
// instant Begin. Degenerate windows are returned unchanged.
func (w TimeWindow) FillRange() (begin, end int64) {
	if w.End > w.Begin {
		return w.Begin, w.End - 1
	}
	return w.Begin, w.End
}

// AlignBucket returns the start of the stride-wide bucket holding ts. Bucket
// starts are whole multiples of stride, so every window cut from the same
// timeline shares one grid. A stride below 1 returns ts unchanged.
func AlignBucket(ts, stride int64) int64 {
	if stride < 1 {
		return ts
	}
	r := ts % stride
	if r < 0 {
		r += stride
	}
	return ts - r
}

func (w TimeWindow) String() string {
	return fmt.Sprintf("[%d, %d)", w.Begin, w.End)
}

// RawSample is one stored sample of a metric column.
type RawSample struct {
	TimestampMs int64   `json:"ts"`
	Series      string  `json:"series"`
	Value       float64 `json:"value"`
}

// StackedColumn is one time bucket mapping series name to aggregated value.
// Key is the bucket start; Tail is the last instant the bucket covers.
type StackedColumn struct {
	Key    int64              `json:"key"`
	Tail   int64              `json:"tail"`
	Values map[string]float64 `json:"values"`
}

// PlotPoint is the unit delivered to a rendering surface.
type PlotPoint struct {
	TimestampMs int64   `json:"ts"`
	Series      string  `json:"series"`
	Value       float64 `json:"value"`
}

// RangeParameters controls bucket width and fetch batch size of a chart.
type RangeParameters struct {
	PointCap         int     `json:"point_cap"`
	BucketWidthMs    float64 `json:"bucket_width_ms"`
	BatchSizeSeconds int64   `json:"batch_size_seconds"`
}

// Stride returns the bucket width rounded to whole milliseconds.
func (p RangeParameters) Stride() int64 {
	return int64(math.Round(p.BucketWidthMs))
}
