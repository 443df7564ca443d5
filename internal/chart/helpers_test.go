// Stackchart - Stacked Time-Series Chart Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stackchart

package chart

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/semaphore"

	"github.com/tomtom215/stackchart/internal/models"
)

var testKey = models.QueryKey{Profile: "prof", Task: "task", Query: "q1"}

// fakeStorage returns the rows that fall in the requested window.
type fakeStorage struct {
	mu    sync.Mutex
	rows  []models.RawSample
	err   error
	calls []models.TimeWindow

	// entered receives one value per call when set; block holds calls until closed.
	entered chan struct{}
	block   chan struct{}
}

func (f *fakeStorage) QueryRaw(_ context.Context, _ models.ColumnRef, w models.TimeWindow) ([]models.RawSample, error) {
	f.mu.Lock()
	f.calls = append(f.calls, w)
	err := f.err
	var out []models.RawSample
	for _, r := range f.rows {
		if w.Contains(r.TimestampMs) {
			out = append(out, r)
		}
	}
	entered, block := f.entered, f.block
	f.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
	}
	if block != nil {
		<-block
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (f *fakeStorage) setErr(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

func (f *fakeStorage) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeTimestamps struct {
	mu   sync.Mutex
	next []int64
	err  error
}

func (f *fakeTimestamps) LastTimestamp(_ context.Context, _ models.QueryKey) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	ts := f.next[0]
	if len(f.next) > 1 {
		f.next = f.next[1:]
	}
	return ts, nil
}

type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func newManualClock(ms int64) *manualClock {
	return &manualClock{now: time.UnixMilli(ms)}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type pipelineOpts struct {
	function  models.FunctionKind
	chartType models.ChartType
	process   models.ProcessType
	info      models.ChartInfo
	clock     func() time.Time
}

func newTestPipeline(t *testing.T, store Storage, o pipelineOpts) *Pipeline {
	t.Helper()

	metric, err := models.NewMetric("cpu", models.ColumnProfile{Name: "cpu", CSType: models.CSTypeRaw}, o.function, o.chartType)
	require.NoError(t, err)
	handler, err := NewHandler(o.function)
	require.NoError(t, err)
	rangeMs := o.info.DisplayRange(o.process).Milliseconds()
	params, err := ComputeRangeParameters(rangeMs, MaxPointPerGraph)
	require.NoError(t, err)

	registry := NewSeriesRegistry()
	if !o.chartType.IsCategorical() {
		registry.Observe("cpu")
	}
	return &Pipeline{
		chartID:  t.Name(),
		ref:      models.ColumnRef{Key: testKey, Column: "cpu"},
		metric:   metric,
		process:  o.process,
		info:     o.info,
		params:   params,
		handler:  handler,
		registry: registry,
		dataset:  NewDataset(o.info.AxisUnit(o.process)),
		storage:  store,
		clock:    o.clock,
		log:      zerolog.Nop(),
		rangeMs:  rangeMs,
		inflight: semaphore.NewWeighted(1),
	}
}

// cellCounts counts points per (timestamp, series).
func cellCounts(s Snapshot) map[cell]int {
	out := make(map[cell]int, len(s.Points))
	for _, p := range s.Points {
		out[cell{ts: p.TimestampMs, series: p.Series}]++
	}
	return out
}
