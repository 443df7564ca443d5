// Stackchart - Stacked Time-Series Chart Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stackchart

package chart

import "github.com/tomtom215/stackchart/internal/models"

// GapFiller synthesizes zero points so a stacked area never has an undefined
// region. A zero here stands for both "no data" and "value zero".
type GapFiller struct {
	StrideMs  int64
	ChartType models.ChartType
	// Column names the single series of a linear chart.
	Column string
}

// Fill returns zero points from begin to end inclusive, every StrideMs.
// When begin > end it returns exactly one point per series at begin.
// Categorical charts get one point per name in series; linear charts get one
// point for Column.
func (g GapFiller) Fill(begin, end int64, series []string) []models.PlotPoint {
	names := series
	if !g.ChartType.IsCategorical() {
		names = []string{g.Column}
	}
	if len(names) == 0 {
		return nil
	}

	if begin > end || g.StrideMs < 1 {
		return zeros(nil, begin, names)
	}

	steps := (uint64(end)-uint64(begin))/uint64(g.StrideMs) + 1
	out := make([]models.PlotPoint, 0, min(steps, fillPrealloc)*uint64(len(names)))
	for i := uint64(0); i < steps; i++ {
		out = zeros(out, begin+int64(i)*g.StrideMs, names)
	}
	return out
}

// fillPrealloc caps the steps Fill reserves room for up front.
const fillPrealloc = 4096

func zeros(dst []models.PlotPoint, ts int64, names []string) []models.PlotPoint {
	for _, name := range names {
		dst = append(dst, models.PlotPoint{TimestampMs: ts, Series: name})
	}
	return dst
}
