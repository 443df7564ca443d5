// Stackchart - Stacked Time-Series Chart Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stackchart

package services

import (
	"context"
	"errors"
	"time"

	"golang.org/x/time/rate"

	"github.com/tomtom215/stackchart/internal/logging"
)

// Loader is a chart polled for new data.
type Loader interface {
	ID() string
	LoadData(ctx context.Context) error
}

// PollerService calls LoadData on every loader once per interval. Loads run
// one after another and are spread over the interval by a rate limiter, so
// charts polled together do not hit the store at the same instant. The first
// round runs immediately.
//
// A failed load is logged and the next round proceeds; real-time charts retry
// the same window themselves.
type PollerService struct {
	loaders  []Loader
	interval time.Duration
	limiter  *rate.Limiter
}

// NewPollerService builds a poller. burst is the number of loads allowed back
// to back before pacing applies.
func NewPollerService(loaders []Loader, interval time.Duration, burst int) *PollerService {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if burst < 1 {
		burst = 1
	}
	spacing := interval
	if n := len(loaders); n > 1 {
		spacing = interval / time.Duration(n)
	}
	return &PollerService{
		loaders:  loaders,
		interval: interval,
		limiter:  rate.NewLimiter(rate.Every(spacing), burst),
	}
}

// Serve implements suture.Service.
func (p *PollerService) Serve(ctx context.Context) error {
	if len(p.loaders) == 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		p.poll(ctx)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (p *PollerService) poll(ctx context.Context) {
	for _, l := range p.loaders {
		if err := p.limiter.Wait(ctx); err != nil {
			return
		}
		if err := l.LoadData(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logging.Warn().
				Err(err).
				Str("chart", l.ID()).
				Msg("Chart poll failed")
		}
	}
}

func (p *PollerService) String() string {
	return "chart-poller"
}
