// Stackchart - Stacked Time-Series Chart Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stackchart

/*
Package models defines the value types shared by every Stackchart package.

Key Components:

  - QueryKey: identifies a running collection task (profile/task/query)
  - ColumnProfile, ColumnRef: a stored column and its storage type (CSType)
  - Metric: an immutable column + aggregation function + chart type
  - TimeWindow: a half-open [Begin, End) interval in epoch milliseconds
  - RawSample, StackedColumn, PlotPoint: rows as stored, bucketed and plotted
  - RangeParameters: bucket width and batch size derived from a display range
  - ChartInfo: real-time and historical display ranges of a chart

Time values on the data path are int64 epoch milliseconds. time.Time only
appears in ChartInfo, where it comes from configuration.

Constructors and parsers return *ValidationError for bad input so callers can
tell configuration mistakes from storage failures with errors.As.
*/
package models
