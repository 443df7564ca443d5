// Stackchart - Stacked Time-Series Chart Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stackchart

package chart

import (
	"sort"
	"sync"

	"github.com/tomtom215/stackchart/internal/models"
)

// palette is cycled in first-seen order so a series keeps its colour for the
// chart's lifetime.
var palette = []string{
	"#4e79a7", "#f28e2b", "#e15759", "#76b7b2", "#59a14f",
	"#edc948", "#b07aa1", "#ff9da7", "#9c755f", "#bab0ac",
}

// SeriesRegistry is the insertion-ordered, deduplicated set of series names
// seen by one chart. Names are never removed.
type SeriesRegistry struct {
	mu    sync.RWMutex
	names []string
	index map[string]int
}

// NewSeriesRegistry returns a registry pre-populated with seed.
func NewSeriesRegistry(seed ...string) *SeriesRegistry {
	r := &SeriesRegistry{index: make(map[string]int)}
	r.Observe(seed...)
	return r
}

// Observe merges names, keeping first-seen order. It returns how many were new.
func (r *SeriesRegistry) Observe(names ...string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	added := 0
	for _, name := range names {
		if _, ok := r.index[name]; ok {
			continue
		}
		r.index[name] = len(r.names)
		r.names = append(r.names, name)
		added++
	}
	return added
}

// ObserveColumns merges the series of cols in column order. Names new within
// a single column are taken in lexical order.
func (r *SeriesRegistry) ObserveColumns(cols []models.StackedColumn) int {
	added := 0
	for _, c := range cols {
		names := make([]string, 0, len(c.Values))
		for name := range c.Values {
			names = append(names, name)
		}
		sort.Strings(names)
		added += r.Observe(names...)
	}
	return added
}

// Current returns a copy of the series in first-seen order.
func (r *SeriesRegistry) Current() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Len returns the number of known series.
func (r *SeriesRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.names)
}

// Colors returns the legend colour of every known series.
func (r *SeriesRegistry) Colors() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]string, len(r.names))
	for i, name := range r.names {
		out[name] = palette[i%len(palette)]
	}
	return out
}
