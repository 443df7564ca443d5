// Stackchart - Stacked Time-Series Chart Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stackchart

package database

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomtom215/stackchart/internal/metrics"
	"github.com/tomtom215/stackchart/internal/models"
)

type flakyReader struct {
	err   error
	calls atomic.Int32
}

func (f *flakyReader) QueryRaw(context.Context, models.ColumnRef, models.TimeWindow) ([]models.RawSample, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return []models.RawSample{{TimestampMs: 1, Series: "a", Value: 1}}, nil
}

func (f *flakyReader) LastTimestamp(context.Context, models.QueryKey) (int64, error) {
	f.calls.Add(1)
	if f.err != nil {
		return 0, f.err
	}
	return 42, nil
}

func TestBreakerStorage_PassThrough(t *testing.T) {
	t.Parallel()

	b := NewBreakerStorage(&flakyReader{}, BreakerConfig{Name: "pass", FailureThreshold: 2, Timeout: time.Minute})

	rows, err := b.QueryRaw(context.Background(), cpuRef, models.TimeWindow{Begin: 0, End: 10})
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	ts, err := b.LastTimestamp(context.Background(), cpuRef.Key)
	require.NoError(t, err)
	assert.Equal(t, int64(42), ts)
	assert.Equal(t, gobreaker.StateClosed, b.State())
}

func TestBreakerStorage_OpensAfterConsecutiveFailures(t *testing.T) {
	t.Parallel()

	reader := &flakyReader{err: errors.New("disk gone")}
	b := NewBreakerStorage(reader, BreakerConfig{Name: "trip", FailureThreshold: 3, Timeout: time.Minute})
	w := models.TimeWindow{Begin: 0, End: 10}

	for range 3 {
		_, err := b.QueryRaw(context.Background(), cpuRef, w)
		require.Error(t, err)
	}
	require.Equal(t, gobreaker.StateOpen, b.State())
	assert.InDelta(t, 2, testutil.ToFloat64(metrics.CircuitBreakerState.WithLabelValues("trip")), 0)

	_, err := b.QueryRaw(context.Background(), cpuRef, w)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, int32(3), reader.calls.Load(), "open breaker fails fast")
}

func TestBreakerStorage_NoSamplesIsNotAFailure(t *testing.T) {
	t.Parallel()

	reader := &flakyReader{err: ErrNoSamples}
	b := NewBreakerStorage(reader, BreakerConfig{Name: "empty", FailureThreshold: 1, Timeout: time.Minute})

	for range 5 {
		_, err := b.LastTimestamp(context.Background(), cpuRef.Key)
		assert.ErrorIs(t, err, ErrNoSamples)
	}
	assert.Equal(t, gobreaker.StateClosed, b.State())
}

func TestBreakerStorage_WrapsDB(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)

	insert(t, db, cpuRef, models.RawSample{TimestampMs: 5, Series: "idle", Value: 1})
	b := NewBreakerStorage(db, DefaultBreakerConfig())

	rows, err := b.QueryRaw(context.Background(), cpuRef, models.TimeWindow{Begin: 0, End: 10})
	require.NoError(t, err)
	assert.Equal(t, []models.RawSample{{TimestampMs: 5, Series: "idle", Value: 1}}, rows)
}
