// Stackchart - Stacked Time-Series Chart Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stackchart

package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/tomtom215/stackchart/internal/chart"
	"github.com/tomtom215/stackchart/internal/config"
	"github.com/tomtom215/stackchart/internal/database"
	"github.com/tomtom215/stackchart/internal/models"
)

// ProfileStore resolves and registers column profiles.
type ProfileStore interface {
	UpsertColumnProfile(ctx context.Context, profile string, col models.ColumnProfile) (models.ColumnProfile, error)
	ColumnProfile(ctx context.Context, profile, column string) (models.ColumnProfile, error)
}

// ChartDeps are shared by every chart.
type ChartDeps struct {
	Profiles   ProfileStore
	Storage    chart.Storage
	Timestamps chart.TimestampSource
	Signals    chart.Signals
}

// buildCharts builds one chart per configuration entry. The first failure
// closes the charts already built and is returned.
func buildCharts(ctx context.Context, cfgs []config.ChartConfig, deps ChartDeps) ([]*chart.Chart, error) {
	charts := make([]*chart.Chart, 0, len(cfgs))
	for i := range cfgs {
		c, err := buildChart(ctx, &cfgs[i], deps)
		if err != nil {
			for _, built := range charts {
				_ = built.Close()
			}
			return nil, err
		}
		charts = append(charts, c)
	}
	return charts, nil
}

func buildChart(ctx context.Context, cc *config.ChartConfig, deps ChartDeps) (*chart.Chart, error) {
	col, err := resolveColumn(ctx, cc, deps.Profiles)
	if err != nil {
		return nil, fmt.Errorf("chart %s: %w", cc.ID, err)
	}
	metric, err := cc.Metric(col)
	if err != nil {
		return nil, fmt.Errorf("chart %s: %w", cc.ID, err)
	}
	process, err := cc.Process()
	if err != nil {
		return nil, fmt.Errorf("chart %s: %w", cc.ID, err)
	}
	info, err := cc.Info()
	if err != nil {
		return nil, fmt.Errorf("chart %s: %w", cc.ID, err)
	}

	return chart.New(ctx, chart.Config{
		ID:         cc.ID,
		Key:        cc.Key(),
		Metric:     metric,
		Process:    process,
		Info:       info,
		PointCap:   cc.PointCap,
		Storage:    deps.Storage,
		Timestamps: deps.Timestamps,
		Signals:    deps.Signals,
	})
}

// resolveColumn registers a configured storage type, or looks the column up
// when the configuration leaves it out. A column that is neither configured
// nor stored comes back with an undefined storage type.
func resolveColumn(ctx context.Context, cc *config.ChartConfig, profiles ProfileStore) (models.ColumnProfile, error) {
	if col, ok := cc.ColumnProfile(); ok {
		stored, err := profiles.UpsertColumnProfile(ctx, cc.Profile, col)
		if err != nil {
			return models.ColumnProfile{}, fmt.Errorf("register column profile: %w", err)
		}
		return stored, nil
	}

	col, err := profiles.ColumnProfile(ctx, cc.Profile, cc.Column)
	if errors.Is(err, database.ErrColumnNotFound) {
		return models.ColumnProfile{Name: cc.Column}, nil
	}
	if err != nil {
		return models.ColumnProfile{}, fmt.Errorf("look up column profile: %w", err)
	}
	return col, nil
}
