// Stackchart - Stacked Time-Series Chart Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stackchart

/*
Package database is the DuckDB-backed time-series store read by charts.

Two tables make up the schema:

	column_profiles   one row per (profile, column) with its storage type
	samples           one row per collected sample of a column

Samples are written in bulk through the DuckDB appender and read back either
raw (QueryRaw, the chart pipeline's input) or already bucketed by series
(QueryStacked). LastTimestamp reports the newest sample of a collection task
and anchors the reload window of a stopped collection.

BreakerStorage wraps the read path with a circuit breaker so that a failing
store is not hammered by every chart on every poll.

All query methods accept a context; a context without deadline gets the
default query timeout.
*/
package database
