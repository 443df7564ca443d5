// Stackchart - Stacked Time-Series Chart Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stackchart

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tomtom215/stackchart/internal/metrics"
	"github.com/tomtom215/stackchart/internal/models"
)

// QueryRaw returns the samples of a column inside the half-open window,
// ordered by timestamp then series. A degenerate window yields no rows.
func (db *DB) QueryRaw(ctx context.Context, ref models.ColumnRef, w models.TimeWindow) ([]models.RawSample, error) {
	if err := validateRef(ref); err != nil {
		return nil, err
	}
	if w.IsDegenerate() || w.Duration() == 0 {
		return nil, nil
	}
	if db.closed.Load() {
		return nil, ErrDatabaseClosed
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	samples, err := db.queryRaw(ctx, ref, w)
	metrics.RecordStorageQuery("query_raw", time.Since(start), err)
	return samples, err
}

func (db *DB) queryRaw(ctx context.Context, ref models.ColumnRef, w models.TimeWindow) ([]models.RawSample, error) {
	query := `
		SELECT ts, series, value
		FROM samples
		WHERE profile = ? AND task = ? AND query = ? AND column_name = ?
			AND ts >= ? AND ts < ?
		ORDER BY ts, series`

	rows, err := db.conn.QueryContext(ctx, query,
		ref.Key.Profile, ref.Key.Task, ref.Key.Query, ref.Column, w.Begin, w.End)
	if err != nil {
		return nil, fmt.Errorf("failed to query samples for %s: %w", ref, err)
	}
	defer closeWithLog(rows, "rows")

	var samples []models.RawSample
	for rows.Next() {
		var s models.RawSample
		if err := rows.Scan(&s.TimestampMs, &s.Series, &s.Value); err != nil {
			return nil, fmt.Errorf("failed to scan sample: %w", err)
		}
		samples = append(samples, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating samples: %w", err)
	}
	return samples, nil
}

// QueryStacked counts the samples of a column per series in buckets of
// strideMs. Bucket starts are multiples of strideMs, matching the chart
// pipeline, so the first bucket may start before w.Begin. Only buckets holding
// samples are returned, ordered by bucket start. The tail of the last bucket
// is clipped to the window.
func (db *DB) QueryStacked(ctx context.Context, ref models.ColumnRef, w models.TimeWindow, strideMs int64) ([]models.StackedColumn, error) {
	if err := validateRef(ref); err != nil {
		return nil, err
	}
	if strideMs < 1 {
		return nil, ErrInvalidStride
	}
	if w.IsDegenerate() || w.Duration() == 0 {
		return nil, nil
	}
	if db.closed.Load() {
		return nil, ErrDatabaseClosed
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	cols, err := db.queryStacked(ctx, ref, w, strideMs)
	metrics.RecordStorageQuery("query_stacked", time.Since(start), err)
	return cols, err
}

func (db *DB) queryStacked(ctx context.Context, ref models.ColumnRef, w models.TimeWindow, strideMs int64) ([]models.StackedColumn, error) {
	query := `
		SELECT
			(ts // CAST(? AS BIGINT)) * CAST(? AS BIGINT) AS bucket,
			series,
			COUNT(*) AS samples
		FROM samples
		WHERE profile = ? AND task = ? AND query = ? AND column_name = ?
			AND ts >= ? AND ts < ?
		GROUP BY bucket, series
		ORDER BY bucket, series`

	rows, err := db.conn.QueryContext(ctx, query,
		strideMs, strideMs,
		ref.Key.Profile, ref.Key.Task, ref.Key.Query, ref.Column, w.Begin, w.End)
	if err != nil {
		return nil, fmt.Errorf("failed to query stacked buckets for %s: %w", ref, err)
	}
	defer closeWithLog(rows, "rows")

	var cols []models.StackedColumn
	for rows.Next() {
		var (
			bucket int64
			series string
			count  int64
		)
		if err := rows.Scan(&bucket, &series, &count); err != nil {
			return nil, fmt.Errorf("failed to scan bucket: %w", err)
		}
		if n := len(cols); n == 0 || cols[n-1].Key != bucket {
			cols = append(cols, models.StackedColumn{
				Key:    bucket,
				Tail:   min(bucket+strideMs, w.End) - 1,
				Values: make(map[string]float64),
			})
		}
		cols[len(cols)-1].Values[series] = float64(count)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating buckets: %w", err)
	}
	return cols, nil
}

// LastTimestamp returns the newest sample time of a collection task across
// all of its columns. A task without samples yields ErrNoSamples.
func (db *DB) LastTimestamp(ctx context.Context, key models.QueryKey) (int64, error) {
	if db.closed.Load() {
		return 0, ErrDatabaseClosed
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	var ts sql.NullInt64
	err := db.conn.QueryRowContext(ctx,
		`SELECT MAX(ts) FROM samples WHERE profile = ? AND task = ? AND query = ?`,
		key.Profile, key.Task, key.Query,
	).Scan(&ts)
	metrics.RecordStorageQuery("last_timestamp", time.Since(start), err)
	if err != nil {
		return 0, fmt.Errorf("failed to query last timestamp for %s: %w", key, err)
	}
	if !ts.Valid {
		return 0, fmt.Errorf("%w for %s", ErrNoSamples, key)
	}
	return ts.Int64, nil
}
