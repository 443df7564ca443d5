// Stackchart - Stacked Time-Series Chart Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stackchart

package chart

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/stackchart/internal/eventbus"
	"github.com/tomtom215/stackchart/internal/logging"
	"github.com/tomtom215/stackchart/internal/metrics"
	"github.com/tomtom215/stackchart/internal/models"
)

// State of a Coordinator.
type State int

const (
	StateIdle State = iota
	StateCollecting
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCollecting:
		return "collecting"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// TimestampSource reports the newest stored sample time of a collection task.
type TimestampSource interface {
	LastTimestamp(ctx context.Context, key models.QueryKey) (int64, error)
}

// RangeLoader loads one explicit window.
type RangeLoader interface {
	LoadRange(ctx context.Context, w models.TimeWindow) error
}

// Coordinator follows the collection lifecycle of one QueryKey and triggers a
// load of [begin, end) when collection stops.
//
//	Idle/Stopped --start--> Collecting   begin = last timestamp
//	Collecting   --start--> Collecting   begin refreshed
//	Collecting   --stop---> Stopped      end = last timestamp, one LoadRange
//
// A stop outside Collecting and any show-history request leave the state unchanged.
type Coordinator struct {
	chartID string
	key     models.QueryKey
	ts      TimestampSource
	loader  RangeLoader
	clock   func() time.Time
	log     zerolog.Logger

	mu    sync.Mutex
	state State
	begin int64
	end   int64
}

var (
	_ eventbus.CollectListener = (*Coordinator)(nil)
	_ eventbus.HistoryListener = (*Coordinator)(nil)
)

// NewCoordinator returns an Idle coordinator for key.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewCoordinator(chartID string, key models.QueryKey, ts TimestampSource, loader RangeLoader, clock func() time.Time, log zerolog.Logger) *Coordinator {
	if clock == nil {
		clock = time.Now
	}
	return &Coordinator{
		chartID: chartID,
		key:     key,
		ts:      ts,
		loader:  loader,
		clock:   clock,
		log:     log,
	}
}

// OnCollectStart records begin and enters Collecting.
func (c *Coordinator) OnCollectStart(ctx context.Context, ev *eventbus.CollectEvent) {
	if ev.Key != c.key {
		return
	}
	begin := c.lastTimestamp(ctx, "start")

	c.mu.Lock()
	prev := c.state
	c.state = StateCollecting
	c.begin = begin
	c.mu.Unlock()

	metrics.RecordCollectSignal(c.chartID, "start")
	c.logger(ctx).Info().
		Stringer("from", prev).
		Int64("begin", begin).
		Msg("Collection started")
}

// OnCollectStop records end, enters Stopped and loads [begin, end). A load
// failure is logged; the bus has no way to receive it.
func (c *Coordinator) OnCollectStop(ctx context.Context, ev *eventbus.CollectEvent) {
	if ev.Key != c.key {
		return
	}

	c.mu.Lock()
	if c.state != StateCollecting {
		state := c.state
		c.mu.Unlock()
		c.logger(ctx).Debug().
			Stringer("state", state).
			Msg("Ignoring stop signal outside collection")
		return
	}
	c.mu.Unlock()

	end := c.lastTimestamp(ctx, "stop")

	c.mu.Lock()
	c.state = StateStopped
	c.end = end
	w := models.TimeWindow{Begin: c.begin, End: end}
	c.mu.Unlock()

	metrics.RecordCollectSignal(c.chartID, "stop")
	if skew := end - c.clock().UnixMilli(); skew > 0 {
		c.logger(ctx).Warn().
			Int64("skew_ms", skew).
			Msg(DescribeClockSkew(skew))
	}

	if err := c.loader.LoadRange(ctx, w); err != nil {
		c.logger(ctx).Error().
			Err(err).
			Str("window", w.String()).
			Msg("Load after collection stop failed")
		return
	}
	c.logger(ctx).Info().
		Str("window", w.String()).
		Msg("Collection stopped, range loaded")
}

// OnShowHistory only records the request. Switching the view is up to the renderer.
func (c *Coordinator) OnShowHistory(ctx context.Context, ev *eventbus.ShowHistoryEvent) {
	if !ev.Key.IsZero() && ev.Key != c.key {
		return
	}
	metrics.RecordCollectSignal(c.chartID, "show_history")
	c.logger(ctx).Info().
		Str("window", ev.Window().String()).
		Msg("Show history requested")
}

// lastTimestamp falls back to the local clock when the store cannot answer.
func (c *Coordinator) lastTimestamp(ctx context.Context, signal string) int64 {
	ts, err := c.ts.LastTimestamp(ctx, c.key)
	if err != nil {
		now := c.clock().UnixMilli()
		c.logger(ctx).Warn().
			Err(err).
			Str("signal", signal).
			Int64("fallback", now).
			Msg("Last timestamp unavailable, using local clock")
		return now
	}
	return ts
}

func (c *Coordinator) logger(ctx context.Context) *zerolog.Logger {
	l := c.log
	if id := logging.CorrelationIDFromContext(ctx); id != "" {
		l = l.With().Str("correlation_id", id).Logger()
	}
	return &l
}

// State returns the current state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Window returns the recorded begin and end.
func (c *Coordinator) Window() models.TimeWindow {
	c.mu.Lock()
	defer c.mu.Unlock()
	return models.TimeWindow{Begin: c.begin, End: c.end}
}
