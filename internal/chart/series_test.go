// Stackchart - Stacked Time-Series Chart Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stackchart

package chart

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tomtom215/stackchart/internal/models"
)

func TestSeriesRegistry_FirstSeenOrderAndIdempotence(t *testing.T) {
	t.Parallel()

	r := NewSeriesRegistry()
	assert.Equal(t, 2, r.Observe("web", "db"))
	assert.Equal(t, 1, r.Observe("db", "cache", "web"))
	assert.Equal(t, 0, r.Observe("web"))

	assert.Equal(t, []string{"web", "db", "cache"}, r.Current())
	assert.Equal(t, 3, r.Len())
}

func TestSeriesRegistry_CurrentIsACopy(t *testing.T) {
	t.Parallel()

	r := NewSeriesRegistry("a")
	got := r.Current()
	got[0] = "mutated"
	assert.Equal(t, []string{"a"}, r.Current())
}

func TestSeriesRegistry_ObserveColumns(t *testing.T) {
	t.Parallel()

	r := NewSeriesRegistry("z")
	r.ObserveColumns([]models.StackedColumn{
		{Key: 0, Values: map[string]float64{"c": 1, "b": 2}},
		{Key: 10, Values: map[string]float64{"a": 1, "b": 2}},
	})
	assert.Equal(t, []string{"z", "b", "c", "a"}, r.Current())
}

func TestSeriesRegistry_ColorsAreStable(t *testing.T) {
	t.Parallel()

	r := NewSeriesRegistry("a", "b")
	before := r.Colors()
	r.Observe("c")
	after := r.Colors()

	assert.Equal(t, before["a"], after["a"])
	assert.Equal(t, before["b"], after["b"])
	assert.NotEqual(t, after["a"], after["b"])
	assert.Len(t, after, 3)
}
