// Stackchart - Stacked Time-Series Chart Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stackchart

package chart

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"github.com/tomtom215/stackchart/internal/logging"
	"github.com/tomtom215/stackchart/internal/metrics"
	"github.com/tomtom215/stackchart/internal/models"
)

// Storage is the query side of the time-series store. Implementations must
// be safe for concurrent calls from independent charts.
type Storage interface {
	QueryRaw(ctx context.Context, ref models.ColumnRef, w models.TimeWindow) ([]models.RawSample, error)
}

type applyMode int

const (
	modeAppend applyMode = iota
	modeReplace
)

// LoadResult summarizes one applied window.
type LoadResult struct {
	Window models.TimeWindow `json:"window"`
	Data   int               `json:"data"`
	Fill   int               `json:"fill"`
	Failed int               `json:"failed"`
}

// Pipeline loads windows of one chart's metric into its dataset.
type Pipeline struct {
	chartID  string
	ref      models.ColumnRef
	metric   models.Metric
	process  models.ProcessType
	info     models.ChartInfo
	params   models.RangeParameters
	handler  Handler
	registry *SeriesRegistry
	dataset  *Dataset
	storage  Storage
	clock    func() time.Time
	log      zerolog.Logger
	rangeMs  int64

	// inflight admits one load at a time; the cursor is only advanced while it is held.
	inflight *semaphore.Weighted
	cursor   atomic.Int64
	started  bool

	errMu   sync.RWMutex
	lastErr error
}

// LoadData runs one mode-dependent load. A call made while another load is in
// flight returns nil immediately without loading.
//
// Real-time charts append every complete bucket between the cursor and now.
// The cursor starts at the bucket holding now minus the display range;
// a storage error is logged and the same range is retried on the next call.
// Historical charts replace the dataset with their window; a storage error is
// returned wrapped in ErrHistoryLoad.
func (p *Pipeline) LoadData(ctx context.Context) error {
	if !p.inflight.TryAcquire(1) {
		p.coalesced("load_data")
		return nil
	}
	defer p.inflight.Release(1)

	ctx = logging.ContextWithNewCorrelationID(ctx)
	if p.process == models.ProcessHistory {
		return p.loadHistory(ctx, p.info.HistoryWindow(p.clock()))
	}
	p.loadRealTime(ctx)
	return nil
}

// LoadRange loads one explicit window. Real-time charts append it, historical
// charts replace their dataset with it. It follows the same single-flight
// rule as LoadData.
//
// Windows failing CheckWindow are rejected with ErrInvalidWindow or
// ErrWindowTooLarge and do not change LastError.
func (p *Pipeline) LoadRange(ctx context.Context, w models.TimeWindow) error {
	if err := CheckWindow(w, p.params); err != nil {
		return err
	}
	if !p.inflight.TryAcquire(1) {
		p.coalesced("load_range")
		return nil
	}
	defer p.inflight.Release(1)

	ctx = logging.ContextWithNewCorrelationID(ctx)
	if p.process == models.ProcessHistory {
		return p.loadHistory(ctx, w)
	}

	start := time.Now()
	_, err := p.apply(ctx, w, modeAppend)
	metrics.RecordChartLoad(p.chartID, "range", time.Since(start), err)
	p.setLastErr(err)
	return err
}

func (p *Pipeline) loadHistory(ctx context.Context, w models.TimeWindow) error {
	start := time.Now()
	res, err := p.apply(ctx, w, modeReplace)
	metrics.RecordChartLoad(p.chartID, string(models.ProcessHistory), time.Since(start), err)
	if err != nil {
		err = fmt.Errorf("%w for %s: %w", ErrHistoryLoad, w, err)
		p.setLastErr(err)
		return err
	}
	p.setLastErr(nil)

	logging.Ctx(ctx).Info().
		Str("chart", p.chartID).
		Str("window", w.String()).
		Int("data_points", res.Data).
		Int("fill_points", res.Fill).
		Msg("Historical load applied")
	return nil
}

func (p *Pipeline) loadRealTime(ctx context.Context) {
	now := p.clock().UnixMilli()
	stride := p.params.Stride()
	if !p.started {
		p.cursor.Store(models.AlignBucket(now-p.rangeMs, stride))
		p.started = true
	}

	batch := p.params.BatchSizeSeconds * 1000
	if batch < stride {
		batch = stride
	}
	batch -= batch % stride

	start := time.Now()
	cursor := p.cursor.Load()
	for cursor+stride <= now {
		if ctx.Err() != nil {
			break
		}
		end := cursor + batch
		if complete := cursor + ((now-cursor)/stride)*stride; end > complete {
			end = complete
		}
		w := models.TimeWindow{Begin: cursor, End: end}
		if _, err := p.apply(ctx, w, modeAppend); err != nil {
			p.log.Warn().
				Err(err).
				Str("window", w.String()).
				Msg("Real-time fetch failed, no new data this cycle")
			metrics.RecordChartLoad(p.chartID, string(models.ProcessRealTime), time.Since(start), err)
			p.setLastErr(err)
			return
		}
		cursor = end
		p.cursor.Store(cursor)
	}
	metrics.RecordChartLoad(p.chartID, string(models.ProcessRealTime), time.Since(start), nil)
	p.setLastErr(nil)
}

// apply runs query, aggregation, registry update and gap fill for w, then
// writes the result to the dataset in one step.
func (p *Pipeline) apply(ctx context.Context, w models.TimeWindow, mode applyMode) (LoadResult, error) {
	res := LoadResult{Window: w}
	if err := CheckWindow(w, p.params); err != nil {
		return res, err
	}

	var rows []models.RawSample
	if w.End > w.Begin {
		var err error
		rows, err = p.storage.QueryRaw(ctx, p.ref, w)
		if err != nil {
			return res, err
		}
	}
	if !p.metric.ChartType().IsCategorical() {
		for i := range rows {
			rows[i].Series = p.ref.Column
		}
	}

	stride := p.params.Stride()
	cols := p.handler.Aggregate(rows, w, stride)
	if added := p.registry.ObserveColumns(cols); added > 0 {
		metrics.SetChartSeries(p.chartID, p.registry.Len())
	}
	series := p.registry.Current()

	b := newBuckets(w, stride)
	covered := make(map[cell]struct{})
	points := make([]models.PlotPoint, 0, len(cols)*len(series))
	for _, c := range cols {
		k, _ := b.index(c.Key)
		bucket := b.start(k)
		for name, v := range c.Values {
			points = append(points, models.PlotPoint{TimestampMs: c.Key, Series: name, Value: v})
			covered[cell{ts: bucket, series: name}] = struct{}{}
		}
	}
	res.Data = len(points)

	filler := GapFiller{StrideMs: stride, ChartType: p.metric.ChartType(), Column: p.ref.Column}
	fillBegin, fillEnd := w.FillRange()
	if w.End > w.Begin {
		fillBegin, fillEnd = models.AlignBucket(fillBegin, stride), models.AlignBucket(fillEnd, stride)
	}
	for _, z := range filler.Fill(fillBegin, fillEnd, series) {
		if _, ok := covered[cell{ts: z.TimestampMs, series: z.Series}]; ok {
			continue
		}
		points = append(points, z)
		res.Fill++
	}

	rank := make(map[string]int, len(series))
	for i, s := range series {
		rank[s] = i
	}
	sort.SliceStable(points, func(i, j int) bool {
		if points[i].TimestampMs != points[j].TimestampMs {
			return points[i].TimestampMs < points[j].TimestampMs
		}
		return rank[points[i].Series] < rank[points[j].Series]
	})

	log := logging.Ctx(ctx).With().Str("chart", p.chartID).Logger()
	write := func(s Surface) {
		_, res.Failed = Emit(s, points, log)
	}
	if mode == modeReplace {
		p.dataset.Replace(write)
	} else {
		p.dataset.Update(write)
	}

	metrics.RecordPoints(p.chartID, res.Data, res.Fill, res.Failed)
	return res, nil
}

func (p *Pipeline) coalesced(op string) {
	metrics.RecordCoalescedLoad(p.chartID)
	p.log.Debug().Str("op", op).Msg("Load already in flight, request dropped")
}

func (p *Pipeline) setLastErr(err error) {
	p.errMu.Lock()
	p.lastErr = err
	p.errMu.Unlock()
}

// LastError returns the error of the most recent load, or nil.
func (p *Pipeline) LastError() error {
	p.errMu.RLock()
	defer p.errMu.RUnlock()
	return p.lastErr
}

// Cursor returns the end of the last appended real-time window in epoch ms.
func (p *Pipeline) Cursor() int64 {
	return p.cursor.Load()
}
