// Stackchart - Stacked Time-Series Chart Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stackchart

package chart

import (
	"github.com/rs/zerolog"

	"github.com/tomtom215/stackchart/internal/models"
)

// Surface receives plot points. Any rejection is reported per point.
type Surface interface {
	AddSeriesValue(ts int64, value float64, series string) error
}

// Emit hands points to s one at a time. A rejected point is logged and
// skipped; the remaining points are still delivered.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func Emit(s Surface, points []models.PlotPoint, log zerolog.Logger) (delivered, failed int) {
	for _, p := range points {
		if err := s.AddSeriesValue(p.TimestampMs, p.Value, p.Series); err != nil {
			failed++
			log.Warn().
				Err(err).
				Str("series", p.Series).
				Int64("timestamp", p.TimestampMs).
				Float64("value", p.Value).
				Msg("Skipping plot point rejected by dataset")
			continue
		}
		delivered++
	}
	return delivered, failed
}
