// Stackchart - Stacked Time-Series Chart Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stackchart

package models

import (
	"fmt"
	"strings"
)

// CSType is the storage type of a column in the time-series store.
// The zero value means the storage type is undefined.
type CSType string

const (
	// CSTypeRaw stores every sample value as-is.
	CSTypeRaw CSType = "raw"
	// CSTypeEnum stores dictionary-encoded values.
	CSTypeEnum CSType = "enum"
	// CSTypeHistogram stores run-length histograms of repeated values.
	CSTypeHistogram CSType = "histogram"
)

// Defined reports whether the storage type is one of the known column encodings.
func (t CSType) Defined() bool {
	switch t {
	case CSTypeRaw, CSTypeEnum, CSTypeHistogram:
		return true
	default:
		return false
	}
}

// ParseCSType converts a string to a CSType. Unknown values yield the undefined type.
func ParseCSType(s string) CSType {
	t := CSType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Defined() {
		return ""
	}
	return t
}

// FunctionKind selects how raw samples of a metric are aggregated.
type FunctionKind string

const (
	// FunctionAsIs passes samples through unchanged.
	FunctionAsIs FunctionKind = "asis"
	// FunctionCount counts samples per bucket and series.
	FunctionCount FunctionKind = "count"
	// FunctionSum sums sample values per bucket and series.
	FunctionSum FunctionKind = "sum"
	// FunctionAverage averages sample values per bucket and series.
	FunctionAverage FunctionKind = "average"
)

// ParseFunctionKind converts a configuration string to a FunctionKind.
func ParseFunctionKind(s string) (FunctionKind, error) {
	switch k := FunctionKind(strings.ToLower(strings.TrimSpace(s))); k {
	case FunctionAsIs, FunctionCount, FunctionSum, FunctionAverage:
		return k, nil
	default:
		return "", &ValidationError{Field: "function", Message: fmt.Sprintf("unknown aggregation function %q", s)}
	}
}

// ChartType tags how the series of a metric are laid out.
type ChartType string

const (
	// ChartTypeLinear charts have a single series named after the source column.
	ChartTypeLinear ChartType = "linear"
	// ChartTypeStacked charts have one categorical series per distinct value.
	ChartTypeStacked ChartType = "stacked"
)

// ParseChartType converts a configuration string to a ChartType.
func ParseChartType(s string) (ChartType, error) {
	switch t := ChartType(strings.ToLower(strings.TrimSpace(s))); t {
	case ChartTypeLinear, ChartTypeStacked:
		return t, nil
	default:
		return "", &ValidationError{Field: "chart_type", Message: fmt.Sprintf("unknown chart type %q", s)}
	}
}

// IsCategorical reports whether the chart carries one series per category.
func (t ChartType) IsCategorical() bool {
	return t != ChartTypeLinear
}

// ColumnProfile describes a source column in the time-series store.
type ColumnProfile struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	CSType CSType `json:"cs_type"`
}

// ColumnRef identifies a column of a running collection task.
type ColumnRef struct {
	Key    QueryKey `json:"key"`
	Column string   `json:"column"`
}

// String returns profile/task/query:column.
func (r ColumnRef) String() string {
	return r.Key.String() + ":" + r.Column
}

// Metric identifies a logical measured quantity plotted by a chart.
// A Metric is immutable once constructed.
type Metric struct {
	name      string
	yAxis     ColumnProfile
	function  FunctionKind
	chartType ChartType
}

// NewMetric builds a Metric. The source column must have a defined storage type.
func NewMetric(name string, yAxis ColumnProfile, function FunctionKind, chartType ChartType) (Metric, error) {
	if !yAxis.CSType.Defined() {
		return Metric{}, &ValidationError{
			Field:   "y_axis",
			Message: fmt.Sprintf("column storage type is undefined for column profile %q", yAxis.Name),
		}
	}
	if name == "" {
		name = yAxis.Name
	}
	return Metric{name: name, yAxis: yAxis, function: function, chartType: chartType}, nil
}

// Name returns the metric display name.
func (m Metric) Name() string { return m.name }

// YAxis returns the source column profile.
func (m Metric) YAxis() ColumnProfile { return m.yAxis }

// Function returns the aggregation kind.
func (m Metric) Function() FunctionKind { return m.function }

// ChartType returns the chart-type tag.
func (m Metric) ChartType() ChartType { return m.chartType }

// ValidationError represents a field validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
