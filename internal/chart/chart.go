// Stackchart - Stacked Time-Series Chart Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stackchart

package chart

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/tomtom215/stackchart/internal/eventbus"
	"github.com/tomtom215/stackchart/internal/logging"
	"github.com/tomtom215/stackchart/internal/models"
)

// Signals is the part of the event bus a chart subscribes to.
type Signals interface {
	SubscribeCollect(ctx context.Context, key models.QueryKey, l eventbus.CollectListener) (*eventbus.Subscription, error)
	SubscribeHistory(ctx context.Context, l eventbus.HistoryListener) (*eventbus.Subscription, error)
}

// Config holds everything a chart is built from. Storage is required; Signals
// and Timestamps are required for real-time charts.
type Config struct {
	ID      string
	Key     models.QueryKey
	Metric  models.Metric
	Process models.ProcessType
	Info    models.ChartInfo

	// PointCap defaults to MaxPointPerGraph.
	PointCap int

	Storage    Storage
	Timestamps TimestampSource
	Signals    Signals

	// Clock defaults to time.Now.
	Clock func() time.Time
}

// Chart owns the range parameters, series registry, handler, dataset and
// coordinator of one displayed metric.
type Chart struct {
	id       string
	key      models.QueryKey
	metric   models.Metric
	process  models.ProcessType
	params   models.RangeParameters
	registry *SeriesRegistry
	dataset  *Dataset
	pipeline *Pipeline
	coord    *Coordinator

	mu     sync.Mutex
	subs   []*eventbus.Subscription
	closed bool
}

// New validates cfg and builds a chart. Configuration errors are returned
// before anything is subscribed, so no partially built chart escapes.
func New(ctx context.Context, cfg Config) (*Chart, error) {
	if !cfg.Metric.YAxis().CSType.Defined() {
		return nil, fmt.Errorf("chart %s: %w for column %q", cfg.ID, ErrUndefinedStorageType, cfg.Metric.YAxis().Name)
	}
	handler, err := NewHandler(cfg.Metric.Function())
	if err != nil {
		return nil, fmt.Errorf("chart %s: %w", cfg.ID, err)
	}
	displayRange := cfg.Info.DisplayRange(cfg.Process)
	pointCap := cfg.PointCap
	if pointCap == 0 {
		pointCap = MaxPointPerGraph
	}
	params, err := ComputeRangeParameters(displayRange.Milliseconds(), pointCap)
	if err != nil {
		return nil, fmt.Errorf("chart %s: %w", cfg.ID, err)
	}
	if cfg.Storage == nil {
		return nil, fmt.Errorf("chart %s: %w", cfg.ID, ErrMissingStorage)
	}
	realTime := cfg.Process != models.ProcessHistory
	if realTime && (cfg.Signals == nil || cfg.Timestamps == nil) {
		return nil, fmt.Errorf("chart %s: %w", cfg.ID, ErrMissingSignals)
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}

	column := cfg.Metric.YAxis().Name
	log := logging.WithChart(cfg.ID, cfg.Key.String())

	registry := NewSeriesRegistry()
	if !cfg.Metric.ChartType().IsCategorical() {
		registry.Observe(column)
	}
	dataset := NewDataset(cfg.Info.AxisUnit(cfg.Process))

	pipeline := &Pipeline{
		chartID:  cfg.ID,
		ref:      models.ColumnRef{Key: cfg.Key, Column: column},
		metric:   cfg.Metric,
		process:  cfg.Process,
		info:     cfg.Info,
		params:   params,
		handler:  handler,
		registry: registry,
		dataset:  dataset,
		storage:  cfg.Storage,
		clock:    cfg.Clock,
		log:      log,
		rangeMs:  displayRange.Milliseconds(),
		inflight: semaphore.NewWeighted(1),
	}

	c := &Chart{
		id:       cfg.ID,
		key:      cfg.Key,
		metric:   cfg.Metric,
		process:  cfg.Process,
		params:   params,
		registry: registry,
		dataset:  dataset,
		pipeline: pipeline,
	}

	if realTime {
		c.coord = NewCoordinator(cfg.ID, cfg.Key, cfg.Timestamps, pipeline, cfg.Clock, log)
		collectSub, err := cfg.Signals.SubscribeCollect(ctx, cfg.Key, c.coord)
		if err != nil {
			return nil, fmt.Errorf("chart %s: subscribe to lifecycle signals: %w", cfg.ID, err)
		}
		historySub, err := cfg.Signals.SubscribeHistory(ctx, c.coord)
		if err != nil {
			_ = collectSub.Close()
			return nil, fmt.Errorf("chart %s: subscribe to history signals: %w", cfg.ID, err)
		}
		c.subs = []*eventbus.Subscription{collectSub, historySub}
	}

	log.Info().
		Str("function", string(cfg.Metric.Function())).
		Str("chart_type", string(cfg.Metric.ChartType())).
		Str("process", string(cfg.Process)).
		Float64("bucket_width_ms", params.BucketWidthMs).
		Int64("batch_size_seconds", params.BatchSizeSeconds).
		Msg("Chart created")
	return c, nil
}

// LoadData runs one mode-dependent load.
func (c *Chart) LoadData(ctx context.Context) error {
	if c.isClosed() {
		return ErrChartClosed
	}
	return c.pipeline.LoadData(ctx)
}

// LoadRange loads one explicit window.
func (c *Chart) LoadRange(ctx context.Context, w models.TimeWindow) error {
	if c.isClosed() {
		return ErrChartClosed
	}
	return c.pipeline.LoadRange(ctx, w)
}

// Close releases the bus subscriptions. Later loads return ErrChartClosed.
// Close is idempotent.
func (c *Chart) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	subs := c.subs
	c.subs = nil
	c.mu.Unlock()

	var errs []error
	for _, s := range subs {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (c *Chart) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Chart) ID() string { return c.id }
func (c *Chart) Key() models.QueryKey { return c.key }
func (c *Chart) Metric() models.Metric { return c.metric }
func (c *Chart) Process() models.ProcessType { return c.process }
func (c *Chart) Params() models.RangeParameters { return c.params }
func (c *Chart) Series() []string { return c.registry.Current() }
func (c *Chart) Colors() map[string]string { return c.registry.Colors() }
func (c *Chart) Snapshot() Snapshot { return c.dataset.Snapshot() }
func (c *Chart) LastError() error { return c.pipeline.LastError() }

// Coordinator returns the lifecycle coordinator, or nil for historical charts.
func (c *Chart) Coordinator() *Coordinator { return c.coord }

// Subscribe forwards every dataset change to fn until the returned cancel is called.
func (c *Chart) Subscribe(fn func(Change)) (cancel func()) {
	return c.dataset.Subscribe(fn)
}
