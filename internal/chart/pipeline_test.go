// Stackchart - Stacked Time-Series Chart Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stackchart

package chart

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomtom215/stackchart/internal/models"
)

const (
	fiftyMinutes = 50 * time.Minute // 3,000,000ms -> 10,000ms buckets
	rtNow        = int64(10_000_000)
	rtStart      = rtNow - 3_000_000
)

func realTimeOpts(clock *manualClock) pipelineOpts {
	return pipelineOpts{
		function:  models.FunctionCount,
		chartType: models.ChartTypeStacked,
		process:   models.ProcessRealTime,
		info:      models.ChartInfo{RangeRealTime: fiftyMinutes},
		clock:     clock.Now,
	}
}

func TestPipeline_RealTimeAppendsCompleteBuckets(t *testing.T) {
	t.Parallel()

	store := &fakeStorage{rows: []models.RawSample{
		{TimestampMs: rtStart + 5000, Series: "A", Value: 5},
		{TimestampMs: rtStart + 6000, Series: "A", Value: 7},
		{TimestampMs: rtStart + 15_000, Series: "B", Value: 1},
	}}
	clock := newManualClock(rtNow)
	p := newTestPipeline(t, store, realTimeOpts(clock))

	require.NoError(t, p.LoadData(context.Background()))
	assert.Equal(t, 300, store.callCount(), "one batch per bucket")
	assert.Equal(t, rtNow, p.Cursor())

	snap := p.dataset.Snapshot()
	cells := cellCounts(snap)
	assert.Len(t, cells, 1+2*299, "B joins from the second bucket onward")
	for c, n := range cells {
		assert.Equal(t, 1, n, "duplicate cell %+v", c)
	}
	assert.Equal(t, []string{"A", "B"}, snap.Series)
	assert.Equal(t, models.PlotPoint{TimestampMs: rtStart, Series: "A", Value: 2}, snap.Points[0])
	assert.Equal(t, models.PlotPoint{TimestampMs: rtStart + 10_000, Series: "A", Value: 0}, snap.Points[1])
	assert.Equal(t, models.PlotPoint{TimestampMs: rtStart + 10_000, Series: "B", Value: 1}, snap.Points[2])

	// Nothing new until a whole bucket has elapsed.
	clock.Advance(9 * time.Second)
	require.NoError(t, p.LoadData(context.Background()))
	assert.Equal(t, 300, store.callCount())

	clock.Advance(16 * time.Second)
	require.NoError(t, p.LoadData(context.Background()))
	assert.Equal(t, 302, store.callCount())
	assert.Equal(t, rtNow+20_000, p.Cursor())
	assert.Len(t, cellCounts(p.dataset.Snapshot()), 1+2*301)
}

func TestPipeline_RealTimeStorageErrorIsContained(t *testing.T) {
	t.Parallel()

	store := &fakeStorage{}
	clock := newManualClock(rtNow)
	p := newTestPipeline(t, store, realTimeOpts(clock))
	p.registry.Observe("A")

	boom := errors.New("storage unavailable")
	store.setErr(boom)
	require.NoError(t, p.LoadData(context.Background()), "real-time failures are not surfaced")
	assert.Equal(t, 0, p.dataset.Len())
	assert.Equal(t, rtStart, p.Cursor(), "cursor stays for the retry")
	assert.ErrorIs(t, p.LastError(), boom)

	store.setErr(nil)
	require.NoError(t, p.LoadData(context.Background()))
	assert.Equal(t, 300, p.dataset.Len())
	assert.NoError(t, p.LastError())
}

func historyOpts(clock *manualClock, fn models.FunctionKind) pipelineOpts {
	return pipelineOpts{
		function:  fn,
		chartType: models.ChartTypeStacked,
		process:   models.ProcessHistory,
		info:      models.ChartInfo{RangeHistory: models.RangeHistoryDay},
		clock:     clock.Now,
	}
}

func TestPipeline_HistoryReplacesWholeWindow(t *testing.T) {
	t.Parallel()

	now := int64(100_000_000)
	begin := now - 86_400_000
	first := models.AlignBucket(begin, 288_000)
	store := &fakeStorage{rows: []models.RawSample{
		{TimestampMs: begin + 1, Series: "web", Value: 4},
		{TimestampMs: begin + 2, Series: "web", Value: 6},
		{TimestampMs: begin + 288_000*10, Series: "db", Value: 3},
	}}
	p := newTestPipeline(t, store, historyOpts(newManualClock(now), models.FunctionAverage))

	p.dataset.Update(func(s Surface) { _ = s.AddSeriesValue(1, 1, "stale") })
	require.NoError(t, p.LoadData(context.Background()))

	snap := p.dataset.Snapshot()
	assert.Equal(t, []string{"web", "db"}, snap.Series, "stale series dropped by replace")
	cells := cellCounts(snap)
	require.Equal(t, int64(13_536_000), first, "the day starts inside a bucket")
	assert.Len(t, cells, 301*2)
	for k := 0; k < 301; k++ {
		ts := first + int64(k)*288_000
		assert.Equal(t, 1, cells[cell{ts: ts, series: "web"}])
		assert.Equal(t, 1, cells[cell{ts: ts, series: "db"}])
	}
	assert.Equal(t, models.PlotPoint{TimestampMs: first, Series: "web", Value: 5}, snap.Points[0])
	assert.Equal(t, models.PlotPoint{TimestampMs: first, Series: "db", Value: 0}, snap.Points[1])
	assert.Contains(t, snap.Points, models.PlotPoint{TimestampMs: 16_416_000, Series: "db", Value: 3})
}

func TestPipeline_HistoryFailureIsSurfaced(t *testing.T) {
	t.Parallel()

	boom := errors.New("disk on fire")
	store := &fakeStorage{err: boom}
	p := newTestPipeline(t, store, historyOpts(newManualClock(100_000_000), models.FunctionSum))

	err := p.LoadData(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrHistoryLoad)
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, p.LastError(), ErrHistoryLoad)
	assert.Equal(t, 0, p.dataset.Len())
}

func TestPipeline_LinearChartUsesColumnAsSeries(t *testing.T) {
	t.Parallel()

	store := &fakeStorage{rows: []models.RawSample{
		{TimestampMs: 1000, Series: "host-a", Value: 2},
		{TimestampMs: 1500, Series: "host-b", Value: 3},
	}}
	opts := realTimeOpts(newManualClock(rtNow))
	opts.chartType = models.ChartTypeLinear
	opts.function = models.FunctionSum
	p := newTestPipeline(t, store, opts)

	require.NoError(t, p.LoadRange(context.Background(), models.TimeWindow{Begin: 1000, End: 31_000}))
	snap := p.dataset.Snapshot()
	assert.Equal(t, []string{"cpu"}, snap.Series)
	assert.Equal(t, []models.PlotPoint{
		{TimestampMs: 0, Series: "cpu", Value: 5},
		{TimestampMs: 10_000, Series: "cpu", Value: 0},
		{TimestampMs: 20_000, Series: "cpu", Value: 0},
		{TimestampMs: 30_000, Series: "cpu", Value: 0},
	}, snap.Points)
}

func TestPipeline_RangeLoadAfterPollKeepsOneCellPerBucket(t *testing.T) {
	t.Parallel()

	store := &fakeStorage{rows: []models.RawSample{
		{TimestampMs: rtStart + 5000, Series: "A", Value: 5},
		{TimestampMs: rtStart + 6000, Series: "A", Value: 7},
		{TimestampMs: rtStart + 15_000, Series: "B", Value: 1},
	}}
	p := newTestPipeline(t, store, realTimeOpts(newManualClock(rtNow)))
	ctx := context.Background()

	require.NoError(t, p.LoadData(ctx))
	before := cellCounts(p.dataset.Snapshot())

	require.NoError(t, p.LoadRange(ctx, models.TimeWindow{Begin: rtStart + 3000, End: rtStart + 23_000}))
	after := cellCounts(p.dataset.Snapshot())
	assert.Equal(t, before, after, "the range lands on buckets the poll already filled")
	for c, n := range after {
		assert.Equal(t, 1, n, "duplicate cell %+v", c)
		assert.Zero(t, c.ts%10_000, "cell %+v is off the bucket grid", c)
	}
}

func TestPipeline_RangeLoadBeforePollSharesGrid(t *testing.T) {
	t.Parallel()

	store := &fakeStorage{rows: []models.RawSample{
		{TimestampMs: rtStart + 5000, Series: "A", Value: 1},
	}}
	p := newTestPipeline(t, store, realTimeOpts(newManualClock(rtNow)))
	ctx := context.Background()

	require.NoError(t, p.LoadRange(ctx, models.TimeWindow{Begin: rtStart + 3000, End: rtStart + 23_000}))
	require.NoError(t, p.LoadData(ctx))

	cells := cellCounts(p.dataset.Snapshot())
	assert.Len(t, cells, 300)
	for c, n := range cells {
		assert.Equal(t, 1, n, "duplicate cell %+v", c)
		assert.Zero(t, c.ts%10_000, "cell %+v is off the bucket grid", c)
	}
}

func TestPipeline_OversizedWindowIsRejected(t *testing.T) {
	t.Parallel()

	store := &fakeStorage{}
	opts := realTimeOpts(newManualClock(rtNow))
	opts.chartType = models.ChartTypeLinear
	opts.function = models.FunctionSum
	p := newTestPipeline(t, store, opts)
	ctx := context.Background()

	var err error
	assert.NotPanics(t, func() { err = p.LoadRange(ctx, models.TimeWindow{Begin: 0, End: 1 << 62}) })
	assert.ErrorIs(t, err, ErrWindowTooLarge)

	err = p.LoadRange(ctx, models.TimeWindow{Begin: -1 << 62, End: 1000})
	assert.ErrorIs(t, err, ErrInvalidWindow)

	assert.Equal(t, 0, store.callCount(), "rejected windows are not queried")
	assert.Equal(t, 0, p.dataset.Len())
	assert.NoError(t, p.LastError())

	// 100 display ranges is the largest accepted window.
	limit := int64(MaxPointPerGraph*MaxWindowPointCaps) * 10_000
	require.NoError(t, p.LoadRange(ctx, models.TimeWindow{Begin: 0, End: limit}))
	assert.ErrorIs(t, p.LoadRange(ctx, models.TimeWindow{Begin: 0, End: limit + 1}), ErrWindowTooLarge)
}

func TestPipeline_PartialFailureKeepsRemainingPoints(t *testing.T) {
	t.Parallel()

	store := &fakeStorage{rows: []models.RawSample{
		{TimestampMs: 0, Series: "", Value: 1},
		{TimestampMs: 0, Series: "ok", Value: 1},
	}}
	p := newTestPipeline(t, store, realTimeOpts(newManualClock(rtNow)))

	res, err := p.apply(context.Background(), models.TimeWindow{Begin: 0, End: 30_000}, modeAppend)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Failed, "the unnamed series is rejected in every bucket")

	snap := p.dataset.Snapshot()
	assert.Equal(t, []string{"ok"}, snap.Series)
	assert.Len(t, snap.Points, 3)
}

func TestPipeline_EmptyWindowYieldsOneZeroPerSeries(t *testing.T) {
	t.Parallel()

	store := &fakeStorage{}
	p := newTestPipeline(t, store, realTimeOpts(newManualClock(rtNow)))
	p.registry.Observe("a", "b")

	require.NoError(t, p.LoadRange(context.Background(), models.TimeWindow{Begin: 1000, End: 1000}))
	assert.Equal(t, 0, store.callCount(), "empty windows are not queried")
	assert.Equal(t, []models.PlotPoint{
		{TimestampMs: 1000, Series: "a"},
		{TimestampMs: 1000, Series: "b"},
	}, p.dataset.Snapshot().Points)
}

func TestPipeline_OverlappingLoadsAreCoalesced(t *testing.T) {
	t.Parallel()

	store := &fakeStorage{
		rows:    []models.RawSample{{TimestampMs: 100_000_000 - 1000, Series: "x", Value: 1}},
		entered: make(chan struct{}, 16),
		block:   make(chan struct{}),
	}
	p := newTestPipeline(t, store, historyOpts(newManualClock(100_000_000), models.FunctionCount))

	var wg sync.WaitGroup
	var firstErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		firstErr = p.LoadData(context.Background())
	}()
	<-store.entered

	require.NoError(t, p.LoadData(context.Background()), "second load is dropped, not queued")
	require.NoError(t, p.LoadRange(context.Background(), models.TimeWindow{Begin: 0, End: 10}))
	assert.Equal(t, 1, store.callCount())

	close(store.block)
	wg.Wait()
	require.NoError(t, firstErr)

	cells := cellCounts(p.dataset.Snapshot())
	assert.Len(t, cells, 301)
	for c, n := range cells {
		assert.Equal(t, 1, n, "duplicate cell %+v", c)
	}
}

func TestPipeline_ConcurrentRealTimeTriggers(t *testing.T) {
	t.Parallel()

	store := &fakeStorage{rows: []models.RawSample{
		{TimestampMs: rtStart + 1, Series: "a", Value: 1},
		{TimestampMs: rtStart + 2, Series: "b", Value: 1},
	}}
	p := newTestPipeline(t, store, realTimeOpts(newManualClock(rtNow)))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, p.LoadData(context.Background()))
		}()
	}
	wg.Wait()
	require.NoError(t, p.LoadData(context.Background()))

	cells := cellCounts(p.dataset.Snapshot())
	assert.Len(t, cells, 300*2, "no bucket missing")
	for c, n := range cells {
		assert.Equal(t, 1, n, "duplicate cell %+v", c)
	}
	assert.Equal(t, rtNow, p.Cursor())
}
