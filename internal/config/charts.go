// Stackchart - Stacked Time-Series Chart Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stackchart

package config

import (
	"fmt"
	"time"

	"github.com/tomtom215/stackchart/internal/models"
)

// Key returns the collection task the chart follows.
func (c *ChartConfig) Key() models.QueryKey {
	return models.QueryKey{Profile: c.Profile, Task: c.Task, Query: c.Query}
}

// Ref returns the source column of the chart.
func (c *ChartConfig) Ref() models.ColumnRef {
	return models.ColumnRef{Key: c.Key(), Column: c.Column}
}

// Process returns the parsed process type.
func (c *ChartConfig) Process() (models.ProcessType, error) {
	return models.ParseProcessType(c.ProcessType)
}

// Info returns the display configuration of the chart.
func (c *ChartConfig) Info() (models.ChartInfo, error) {
	rh, err := models.ParseRangeHistory(c.RangeHistory)
	if err != nil {
		return models.ChartInfo{}, err
	}
	info := models.ChartInfo{RangeRealTime: c.RangeRealTime, RangeHistory: rh}
	if info.HistoryBegin, err = parseTime("history_begin", c.HistoryBegin); err != nil {
		return models.ChartInfo{}, err
	}
	if info.HistoryEnd, err = parseTime("history_end", c.HistoryEnd); err != nil {
		return models.ChartInfo{}, err
	}
	return info, nil
}

func parseTime(field, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, &models.ValidationError{Field: field, Message: fmt.Sprintf("not an RFC 3339 time: %q", s)}
	}
	return t, nil
}

// ColumnProfile returns the configured storage type of the source column.
// ok is false when the storage type must come from the store.
func (c *ChartConfig) ColumnProfile() (col models.ColumnProfile, ok bool) {
	col = models.ColumnProfile{Name: c.Column, CSType: models.ParseCSType(c.CSType)}
	return col, c.CSType != ""
}

// Metric builds the chart's metric over the given source column. It fails
// when the column has no defined storage type.
func (c *ChartConfig) Metric(col models.ColumnProfile) (models.Metric, error) {
	fn, err := models.ParseFunctionKind(c.Function)
	if err != nil {
		return models.Metric{}, err
	}
	ct, err := models.ParseChartType(c.ChartType)
	if err != nil {
		return models.Metric{}, err
	}
	return models.NewMetric(c.ID, col, fn, ct)
}

// validate checks the cross-field rules the struct tags cannot express.
func (c *ChartConfig) validate() error {
	process, err := c.Process()
	if err != nil {
		return fmt.Errorf("chart %q: %w", c.ID, err)
	}
	info, err := c.Info()
	if err != nil {
		return fmt.Errorf("chart %q: %w", c.ID, err)
	}

	switch process {
	case models.ProcessRealTime:
		if c.RangeRealTime <= 0 {
			return fmt.Errorf("chart %q: range_realtime must be positive for real-time charts", c.ID)
		}
	case models.ProcessHistory:
		if info.RangeHistory == models.RangeHistoryCustom && !info.HistoryEnd.After(info.HistoryBegin) {
			return fmt.Errorf("chart %q: history_end must be after history_begin for a custom range", c.ID)
		}
	}
	return nil
}
