// Stackchart - Stacked Time-Series Chart Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stackchart

package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/stackchart/internal/logging"
	"github.com/tomtom215/stackchart/internal/metrics"
	"github.com/tomtom215/stackchart/internal/models"
)

// Reader is the read side of the sample store used by charts.
type Reader interface {
	QueryRaw(ctx context.Context, ref models.ColumnRef, w models.TimeWindow) ([]models.RawSample, error)
	LastTimestamp(ctx context.Context, key models.QueryKey) (int64, error)
}

// BreakerConfig configures the circuit breaker around a Reader.
type BreakerConfig struct {
	Name             string
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold uint32
}

// DefaultBreakerConfig returns the settings used for the chart store.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Name:             "duckdb",
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
	}
}

// BreakerStorage guards a Reader with a circuit breaker. While the breaker is
// open every call fails fast with gobreaker.ErrOpenState.
//
// ErrNoSamples is an answer, not a failure, and does not count against the breaker.
type BreakerStorage struct {
	next Reader
	cb   *gobreaker.CircuitBreaker[any]
}

// NewBreakerStorage wraps next.
func NewBreakerStorage(next Reader, cfg BreakerConfig) *BreakerStorage {
	if cfg.Name == "" {
		cfg.Name = "duckdb"
	}
	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}

	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNoSamples) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.CircuitBreakerState.WithLabelValues(name).Set(breakerStateValue(to))
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Storage circuit breaker changed state")
		},
	}
	metrics.CircuitBreakerState.WithLabelValues(cfg.Name).Set(0)

	return &BreakerStorage{
		next: next,
		cb:   gobreaker.NewCircuitBreaker[any](settings),
	}
}

func breakerStateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

// QueryRaw implements Reader.
func (b *BreakerStorage) QueryRaw(ctx context.Context, ref models.ColumnRef, w models.TimeWindow) ([]models.RawSample, error) {
	res, err := b.cb.Execute(func() (any, error) {
		return b.next.QueryRaw(ctx, ref, w)
	})
	if err != nil {
		return nil, fmt.Errorf("query raw %s: %w", ref, err)
	}
	rows, _ := res.([]models.RawSample)
	return rows, nil
}

// LastTimestamp implements Reader.
func (b *BreakerStorage) LastTimestamp(ctx context.Context, key models.QueryKey) (int64, error) {
	res, err := b.cb.Execute(func() (any, error) {
		return b.next.LastTimestamp(ctx, key)
	})
	if err != nil {
		return 0, err
	}
	ts, _ := res.(int64)
	return ts, nil
}

// State returns the breaker state.
func (b *BreakerStorage) State() gobreaker.State {
	return b.cb.State()
}
