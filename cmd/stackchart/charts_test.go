// Stackchart - Stacked Time-Series Chart Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stackchart

package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomtom215/stackchart/internal/chart"
	"github.com/tomtom215/stackchart/internal/config"
	"github.com/tomtom215/stackchart/internal/database"
	"github.com/tomtom215/stackchart/internal/eventbus"
	"github.com/tomtom215/stackchart/internal/models"
)

func setupDeps(t *testing.T) (ChartDeps, *database.DB) {
	t.Helper()
	db, err := database.New(&config.DatabaseConfig{Path: ":memory:", MaxMemory: "256MB", Threads: 1})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	bus, err := eventbus.New(eventbus.Config{Driver: eventbus.DriverGoChannel, OutputBuffer: 16}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = bus.Close() })

	storage := database.NewBreakerStorage(db, database.DefaultBreakerConfig())
	return ChartDeps{Profiles: db, Storage: storage, Timestamps: storage, Signals: bus}, db
}

func realTimeConfig(id, column, csType string) config.ChartConfig {
	return config.ChartConfig{
		ID:            id,
		Profile:       "prod",
		Task:          "host-1",
		Query:         "cpu",
		Column:        column,
		CSType:        csType,
		Function:      "count",
		ChartType:     "stacked",
		ProcessType:   "real_time",
		RangeRealTime: 10 * time.Minute,
	}
}

func TestBuildCharts(t *testing.T) {
	deps, db := setupDeps(t)
	ctx := context.Background()

	hist := realTimeConfig("cpu-day", "state", "enum")
	hist.ProcessType = "history"
	hist.RangeHistory = "day"

	charts, err := buildCharts(ctx, []config.ChartConfig{realTimeConfig("cpu-state", "state", "enum"), hist}, deps)
	require.NoError(t, err)
	t.Cleanup(func() { closeCharts(charts) })

	require.Len(t, charts, 2)
	assert.Equal(t, models.ProcessRealTime, charts[0].Process())
	assert.NotNil(t, charts[0].Coordinator())
	assert.Equal(t, models.ProcessHistory, charts[1].Process())
	assert.Nil(t, charts[1].Coordinator())
	assert.Equal(t, 2000.0, charts[0].Params().BucketWidthMs)

	col, err := db.ColumnProfile(ctx, "prod", "state")
	require.NoError(t, err)
	assert.Equal(t, models.CSTypeEnum, col.CSType, "configured storage type is registered")

	polled := loaders(charts)
	require.Len(t, polled, 1, "historical charts are not polled")
	assert.Equal(t, "cpu-state", polled[0].ID())
}

func TestLoadHistoryCharts(t *testing.T) {
	deps, db := setupDeps(t)
	ctx := context.Background()

	ref := models.ColumnRef{Key: models.QueryKey{Profile: "prod", Task: "host-1", Query: "cpu"}, Column: "state"}
	recent := time.Now().Add(-time.Hour).UnixMilli()
	_, err := db.InsertSamples(ctx, ref, []models.RawSample{{TimestampMs: recent, Series: "idle", Value: 1}})
	require.NoError(t, err)

	hist := realTimeConfig("cpu-day", "state", "enum")
	hist.ProcessType = "history"
	hist.RangeHistory = "day"
	charts, err := buildCharts(ctx, []config.ChartConfig{realTimeConfig("cpu-state", "state", "enum"), hist}, deps)
	require.NoError(t, err)
	t.Cleanup(func() { closeCharts(charts) })

	loadHistoryCharts(ctx, charts)

	assert.NotEmpty(t, charts[1].Snapshot().Points)
	assert.Contains(t, charts[1].Series(), "idle")
	assert.Empty(t, charts[0].Snapshot().Points, "real-time charts are left to the poller")
}

func TestBuildCharts_StorageTypeFromDatabase(t *testing.T) {
	deps, db := setupDeps(t)
	ctx := context.Background()

	_, err := db.UpsertColumnProfile(ctx, "prod", models.ColumnProfile{Name: "load", CSType: models.CSTypeRaw})
	require.NoError(t, err)

	cc := realTimeConfig("cpu-load", "load", "")
	cc.Function = "average"
	cc.ChartType = "linear"

	charts, err := buildCharts(ctx, []config.ChartConfig{cc}, deps)
	require.NoError(t, err)
	t.Cleanup(func() { closeCharts(charts) })

	assert.Equal(t, models.CSTypeRaw, charts[0].Metric().YAxis().CSType)
	assert.Equal(t, []string{"load"}, charts[0].Series(), "linear charts register the column as their series")
}

func TestBuildCharts_UndefinedStorageTypeIsFatal(t *testing.T) {
	deps, _ := setupDeps(t)

	charts, err := buildCharts(context.Background(), []config.ChartConfig{
		realTimeConfig("cpu-state", "state", "enum"),
		realTimeConfig("cpu-unknown", "never-stored", ""),
	}, deps)

	require.Error(t, err)
	assert.Nil(t, charts)
	assert.Contains(t, err.Error(), "cpu-unknown")
	var verr *models.ValidationError
	assert.True(t, errors.As(err, &verr), "got %v", err)
}

func TestBuildCharts_RealTimeNeedsSignals(t *testing.T) {
	deps, _ := setupDeps(t)
	deps.Signals = nil

	_, err := buildCharts(context.Background(), []config.ChartConfig{realTimeConfig("cpu-state", "state", "enum")}, deps)
	assert.ErrorIs(t, err, chart.ErrMissingSignals)
}

func TestBuildCharts_CollectStartReachesChart(t *testing.T) {
	deps, _ := setupDeps(t)
	ctx := context.Background()

	charts, err := buildCharts(ctx, []config.ChartConfig{realTimeConfig("cpu-state", "state", "enum")}, deps)
	require.NoError(t, err)
	t.Cleanup(func() { closeCharts(charts) })

	bus := deps.Signals.(*eventbus.Bus)
	require.NoError(t, bus.PublishCollectStart(ctx, models.QueryKey{Profile: "prod", Task: "host-1", Query: "cpu"}))

	require.Eventually(t, func() bool {
		return charts[0].Coordinator().State() == chart.StateCollecting
	}, 2*time.Second, 10*time.Millisecond)
}
