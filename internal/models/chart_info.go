// Stackchart - Stacked Time-Series Chart Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stackchart

package models

import (
	"fmt"
	"strings"
	"time"
)

// ProcessType selects between live and historical loading.
type ProcessType string

const (
	// ProcessRealTime appends data incrementally while a collection runs.
	ProcessRealTime ProcessType = "real_time"
	// ProcessHistory loads a fixed past window once.
	ProcessHistory ProcessType = "history"
)

// ParseProcessType converts a configuration string to a ProcessType.
func ParseProcessType(s string) (ProcessType, error) {
	switch p := ProcessType(strings.ToLower(strings.TrimSpace(s))); p {
	case ProcessRealTime, ProcessHistory:
		return p, nil
	case "realtime", "real-time":
		return ProcessRealTime, nil
	default:
		return "", &ValidationError{Field: "process_type", Message: fmt.Sprintf("unknown process type %q", s)}
	}
}

// RangeHistory is the preset window of a historical chart.
type RangeHistory string

const (
	RangeHistoryDay    RangeHistory = "day"
	RangeHistoryWeek   RangeHistory = "week"
	RangeHistoryMonth  RangeHistory = "month"
	RangeHistoryCustom RangeHistory = "custom"
)

// ParseRangeHistory converts a configuration string to a RangeHistory.
func ParseRangeHistory(s string) (RangeHistory, error) {
	switch r := RangeHistory(strings.ToLower(strings.TrimSpace(s))); r {
	case RangeHistoryDay, RangeHistoryWeek, RangeHistoryMonth, RangeHistoryCustom:
		return r, nil
	case "":
		return RangeHistoryDay, nil
	default:
		return "", &ValidationError{Field: "range_history", Message: fmt.Sprintf("unknown history range %q", s)}
	}
}

// Duration returns the length of a preset history range. Custom ranges return zero.
func (r RangeHistory) Duration() time.Duration {
	switch r {
	case RangeHistoryDay:
		return 24 * time.Hour
	case RangeHistoryWeek:
		return 7 * 24 * time.Hour
	case RangeHistoryMonth:
		return 30 * 24 * time.Hour
	default:
		return 0
	}
}

// TimeAxisUnit is the tick granularity a renderer should use for the time axis.
type TimeAxisUnit string

const (
	TimeAxisMinute TimeAxisUnit = "minute"
	TimeAxisDay    TimeAxisUnit = "day"
)

// ChartInfo carries the display configuration of a chart.
type ChartInfo struct {
	RangeRealTime time.Duration `json:"range_realtime"`
	RangeHistory  RangeHistory  `json:"range_history"`
	HistoryBegin  time.Time     `json:"history_begin,omitempty"`
	HistoryEnd    time.Time     `json:"history_end,omitempty"`
}

// DisplayRange returns the visible time span for the given process type.
func (c ChartInfo) DisplayRange(p ProcessType) time.Duration {
	if p == ProcessHistory {
		if c.RangeHistory == RangeHistoryCustom {
			return c.HistoryEnd.Sub(c.HistoryBegin)
		}
		return c.RangeHistory.Duration()
	}
	return c.RangeRealTime
}

// HistoryWindow returns the window loaded by a historical chart.
func (c ChartInfo) HistoryWindow(now time.Time) TimeWindow {
	if c.RangeHistory == RangeHistoryCustom {
		return TimeWindow{Begin: c.HistoryBegin.UnixMilli(), End: c.HistoryEnd.UnixMilli()}
	}
	return TimeWindow{Begin: now.Add(-c.RangeHistory.Duration()).UnixMilli(), End: now.UnixMilli()}
}

// AxisUnit returns the time-axis granularity. Week and month ranges switch to day ticks.
func (c ChartInfo) AxisUnit(p ProcessType) TimeAxisUnit {
	if p == ProcessHistory && (c.RangeHistory == RangeHistoryWeek || c.RangeHistory == RangeHistoryMonth) {
		return TimeAxisDay
	}
	return TimeAxisMinute
}
