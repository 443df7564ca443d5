// Stackchart - Stacked Time-Series Chart Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stackchart

package database

import (
	"context"
	"database/sql/driver"
	"fmt"
	"math"
	"time"

	"github.com/duckdb/duckdb-go/v2"

	"github.com/tomtom215/stackchart/internal/metrics"
	"github.com/tomtom215/stackchart/internal/models"
)

// MaxSeriesLength is the longest series name accepted for storage.
const MaxSeriesLength = 256

func validateRef(ref models.ColumnRef) error {
	if ref.Key.Profile == "" || ref.Key.Task == "" || ref.Key.Query == "" || ref.Column == "" {
		return fmt.Errorf("%w: %q", ErrInvalidColumnRef, ref.String())
	}
	return nil
}

func validateSample(i int, s models.RawSample) error {
	if len(s.Series) > MaxSeriesLength {
		return &models.ValidationError{
			Field:   fmt.Sprintf("samples[%d].series", i),
			Message: fmt.Sprintf("series name longer than %d characters", MaxSeriesLength),
		}
	}
	if math.IsNaN(s.Value) || math.IsInf(s.Value, 0) {
		return &models.ValidationError{
			Field:   fmt.Sprintf("samples[%d].value", i),
			Message: "value must be a finite number",
		}
	}
	return nil
}

// InsertSamples appends samples of one column through the DuckDB appender.
// The whole batch is validated before anything is written.
func (db *DB) InsertSamples(ctx context.Context, ref models.ColumnRef, samples []models.RawSample) (int, error) {
	if err := validateRef(ref); err != nil {
		return 0, err
	}
	for i := range samples {
		if err := validateSample(i, samples[i]); err != nil {
			return 0, err
		}
	}
	if len(samples) == 0 {
		return 0, nil
	}
	if db.closed.Load() {
		return 0, ErrDatabaseClosed
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	err := db.appendSamples(ctx, ref, samples)
	metrics.RecordStorageQuery("insert_samples", time.Since(start), err)
	if err != nil {
		return 0, err
	}
	metrics.SamplesIngested.Add(float64(len(samples)))
	return len(samples), nil
}

func (db *DB) appendSamples(ctx context.Context, ref models.ColumnRef, samples []models.RawSample) error {
	conn, err := db.conn.Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire connection: %w", err)
	}
	defer closeWithLog(conn, "connection")

	return conn.Raw(func(driverConn any) error {
		dc, ok := driverConn.(driver.Conn)
		if !ok {
			return fmt.Errorf("unexpected driver connection type %T", driverConn)
		}
		appender, err := duckdb.NewAppenderFromConn(dc, "", "samples")
		if err != nil {
			return fmt.Errorf("failed to create appender: %w", err)
		}
		for i := range samples {
			s := &samples[i]
			if err := appender.AppendRow(
				ref.Key.Profile, ref.Key.Task, ref.Key.Query, ref.Column,
				s.TimestampMs, s.Series, s.Value,
			); err != nil {
				closeQuietly(appender)
				return fmt.Errorf("failed to append sample %d: %w", i, err)
			}
		}
		if err := appender.Close(); err != nil {
			return fmt.Errorf("failed to flush appender: %w", err)
		}
		return nil
	})
}
