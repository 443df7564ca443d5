// Stackchart - Stacked Time-Series Chart Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stackchart

package chart

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomtom215/stackchart/internal/models"
)

func TestGapFiller_DegenerateWindow(t *testing.T) {
	t.Parallel()

	stacked := GapFiller{StrideMs: 10, ChartType: models.ChartTypeStacked, Column: "cpu"}
	got := stacked.Fill(500, 100, []string{"a", "b"})
	assert.Equal(t, []models.PlotPoint{
		{TimestampMs: 500, Series: "a"},
		{TimestampMs: 500, Series: "b"},
	}, got)

	linear := GapFiller{StrideMs: 10, ChartType: models.ChartTypeLinear, Column: "cpu"}
	got = linear.Fill(500, 100, []string{"a", "b"})
	assert.Equal(t, []models.PlotPoint{{TimestampMs: 500, Series: "cpu"}}, got)
}

func TestGapFiller_WalksInclusiveRange(t *testing.T) {
	t.Parallel()

	g := GapFiller{StrideMs: 10, ChartType: models.ChartTypeStacked}
	got := g.Fill(100, 130, []string{"a"})
	require.Len(t, got, 4)
	for i, p := range got {
		assert.Equal(t, int64(100+10*i), p.TimestampMs)
		assert.Zero(t, p.Value)
	}

	single := g.Fill(1000, 1000, []string{"a", "b"})
	assert.Len(t, single, 2)
}

func TestGapFiller_EveryBoundaryCovered(t *testing.T) {
	t.Parallel()

	series := []string{"x", "y", "z"}
	for _, stride := range []int64{1, 7, 10, 333} {
		for _, w := range []models.TimeWindow{{Begin: 0, End: 1000}, {Begin: 13, End: 14}, {Begin: 5, End: 2000}} {
			g := GapFiller{StrideMs: stride, ChartType: models.ChartTypeStacked}
			begin, end := w.FillRange()
			got := map[cell]int{}
			for _, p := range g.Fill(begin, end, series) {
				got[cell{ts: p.TimestampMs, series: p.Series}]++
			}
			for x := begin; x <= end; x += stride {
				for _, s := range series {
					assert.Equal(t, 1, got[cell{ts: x, series: s}], "stride %d window %s ts %d series %s", stride, w, x, s)
				}
			}
		}
	}
}

func TestGapFiller_CategoricalWithoutSeries(t *testing.T) {
	t.Parallel()

	g := GapFiller{StrideMs: 10, ChartType: models.ChartTypeStacked}
	assert.Empty(t, g.Fill(0, 100, nil))
}

type rejectingSurface struct {
	rejectTs int64
	got      []models.PlotPoint
}

func (s *rejectingSurface) AddSeriesValue(ts int64, value float64, series string) error {
	if ts == s.rejectTs {
		return errors.New("unknown series")
	}
	s.got = append(s.got, models.PlotPoint{TimestampMs: ts, Series: series, Value: value})
	return nil
}

func TestEmit_OneBadPointDoesNotAbortFill(t *testing.T) {
	t.Parallel()

	g := GapFiller{StrideMs: 10, ChartType: models.ChartTypeStacked}
	points := g.Fill(0, 40, []string{"a", "b"})
	surface := &rejectingSurface{rejectTs: 20}

	delivered, failed := Emit(surface, points, zerolog.Nop())
	assert.Equal(t, 2, failed)
	assert.Equal(t, 8, delivered)
	assert.Equal(t, int64(40), surface.got[len(surface.got)-1].TimestampMs)
}
