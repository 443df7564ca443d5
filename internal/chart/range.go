// Stackchart - Stacked Time-Series Chart Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stackchart

package chart

import (
	"fmt"
	"math"

	"github.com/tomtom215/stackchart/internal/models"
)

// MaxPointPerGraph caps the number of buckets across a chart's display range.
const MaxPointPerGraph = 300

// ComputeRangeParameters derives bucket width and batch size from a display range.
//
//	bucketWidthMs    = displayRangeMs / pointCap
//	batchSizeSeconds = round((displayRangeMs / 1000) / pointCap)
//
// Non-positive inputs fail instead of being clamped.
func ComputeRangeParameters(displayRangeMs int64, pointCap int) (models.RangeParameters, error) {
	if displayRangeMs <= 0 {
		return models.RangeParameters{}, fmt.Errorf("%w: got %dms", ErrInvalidDisplayRange, displayRangeMs)
	}
	if pointCap <= 0 {
		return models.RangeParameters{}, fmt.Errorf("%w: got %d", ErrInvalidPointCap, pointCap)
	}

	p := models.RangeParameters{
		PointCap:         pointCap,
		BucketWidthMs:    float64(displayRangeMs) / float64(pointCap),
		BatchSizeSeconds: int64(math.Round(float64(displayRangeMs) / 1000 / float64(pointCap))),
	}
	if p.Stride() < 1 {
		return models.RangeParameters{}, fmt.Errorf("%w: %dms over %d points", ErrBucketTooNarrow, displayRangeMs, pointCap)
	}
	return p, nil
}

// MaxWindowPointCaps bounds a single load: a window may span at most this many
// display ranges worth of buckets (PointCap * MaxWindowPointCaps).
const MaxWindowPointCaps = 100

// CheckWindow rejects windows with negative bounds and windows spanning more
// than PointCap*MaxWindowPointCaps buckets of p. Empty and degenerate windows
// always pass.
func CheckWindow(w models.TimeWindow, p models.RangeParameters) error {
	if w.Begin < 0 || w.End < 0 {
		return fmt.Errorf("%w: got %s", ErrInvalidWindow, w)
	}
	if w.End <= w.Begin {
		return nil
	}
	stride := p.Stride()
	if stride < 1 {
		stride = 1
	}
	n := (w.End-1)/stride - w.Begin/stride + 1
	if limit := int64(p.PointCap) * MaxWindowPointCaps; n > limit {
		return fmt.Errorf("%w: %s holds %d buckets of %dms, limit %d", ErrWindowTooLarge, w, n, stride, limit)
	}
	return nil
}
