// Stackchart - Stacked Time-Series Chart Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stackchart

package chart

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/tomtom215/stackchart/internal/models"
)

const maxSeriesNameLen = 256

type cell struct {
	ts     int64
	series string
}

// Change describes one applied load. Points holds only the cells that were
// written; Replaced marks a wholesale swap.
type Change struct {
	Version  uint64             `json:"version"`
	Replaced bool               `json:"replaced"`
	Points   []models.PlotPoint `json:"points"`
}

// Snapshot is a consistent copy of a dataset.
type Snapshot struct {
	Version  uint64              `json:"version"`
	AxisUnit models.TimeAxisUnit `json:"axis_unit"`
	Series   []string            `json:"series"`
	Points   []models.PlotPoint  `json:"points"`
}

// Dataset is the in-memory stacked table a renderer reads. It holds at most
// one value per (timestamp, series) cell. Loads are staged and then applied
// under a single write lock.
type Dataset struct {
	mu       sync.RWMutex
	axisUnit models.TimeAxisUnit
	series   []string
	order    map[string]int
	cells    map[cell]float64
	version  uint64

	subMu  sync.Mutex
	subs   map[uint64]func(Change)
	nextID uint64
}

// NewDataset creates an empty dataset rendered with the given time-axis unit.
func NewDataset(axisUnit models.TimeAxisUnit) *Dataset {
	return &Dataset{
		axisUnit: axisUnit,
		order:    make(map[string]int),
		cells:    make(map[cell]float64),
		subs:     make(map[uint64]func(Change)),
	}
}

// Update stages the points written by fn and appends them. Cells already
// present are left untouched, so rendered history is never rewritten.
func (d *Dataset) Update(fn func(Surface)) Change {
	st := newStaging()
	fn(st)

	d.mu.Lock()
	appended := make([]models.PlotPoint, 0, len(st.points))
	for _, p := range st.points {
		k := cell{ts: p.TimestampMs, series: p.Series}
		if _, exists := d.cells[k]; exists {
			continue
		}
		d.cells[k] = p.Value
		d.addSeries(p.Series)
		appended = append(appended, p)
	}
	if len(appended) > 0 {
		d.version++
	}
	ch := Change{Version: d.version, Points: appended}
	d.mu.Unlock()

	if len(appended) > 0 {
		d.notify(ch)
	}
	return ch
}

// Replace stages the points written by fn and swaps them in for the whole table.
func (d *Dataset) Replace(fn func(Surface)) Change {
	st := newStaging()
	fn(st)

	d.mu.Lock()
	d.series = nil
	d.order = make(map[string]int)
	d.cells = make(map[cell]float64, len(st.points))
	for _, p := range st.points {
		d.cells[cell{ts: p.TimestampMs, series: p.Series}] = p.Value
		d.addSeries(p.Series)
	}
	d.version++
	ch := Change{Version: d.version, Replaced: true, Points: st.points}
	d.mu.Unlock()

	d.notify(ch)
	return ch
}

// addSeries must be called with mu held.
func (d *Dataset) addSeries(name string) {
	if _, ok := d.order[name]; ok {
		return
	}
	d.order[name] = len(d.series)
	d.series = append(d.series, name)
}

// Snapshot returns the points ordered by timestamp, then by series order.
func (d *Dataset) Snapshot() Snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()

	points := make([]models.PlotPoint, 0, len(d.cells))
	for k, v := range d.cells {
		points = append(points, models.PlotPoint{TimestampMs: k.ts, Series: k.series, Value: v})
	}
	sort.Slice(points, func(i, j int) bool {
		if points[i].TimestampMs != points[j].TimestampMs {
			return points[i].TimestampMs < points[j].TimestampMs
		}
		return d.order[points[i].Series] < d.order[points[j].Series]
	})

	series := make([]string, len(d.series))
	copy(series, d.series)
	return Snapshot{Version: d.version, AxisUnit: d.axisUnit, Series: series, Points: points}
}

// Len returns the number of cells.
func (d *Dataset) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.cells)
}

// AxisUnit returns the time-axis granularity.
func (d *Dataset) AxisUnit() models.TimeAxisUnit {
	return d.axisUnit
}

// Subscribe registers fn for every applied change. The returned func removes
// it and may be called more than once.
func (d *Dataset) Subscribe(fn func(Change)) (cancel func()) {
	d.subMu.Lock()
	id := d.nextID
	d.nextID++
	d.subs[id] = fn
	d.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			d.subMu.Lock()
			delete(d.subs, id)
			d.subMu.Unlock()
		})
	}
}

func (d *Dataset) notify(ch Change) {
	d.subMu.Lock()
	fns := make([]func(Change), 0, len(d.subs))
	for _, fn := range d.subs {
		fns = append(fns, fn)
	}
	d.subMu.Unlock()

	for _, fn := range fns {
		fn(ch)
	}
}

// staging collects validated points for one load. A repeated cell keeps the
// last value written.
type staging struct {
	points []models.PlotPoint
	seen   map[cell]int
}

func newStaging() *staging {
	return &staging{seen: make(map[cell]int)}
}

func (s *staging) AddSeriesValue(ts int64, value float64, series string) error {
	if series == "" || len(series) > maxSeriesNameLen {
		return fmt.Errorf("%w: %q", ErrInvalidSeries, series)
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidValue, value)
	}

	k := cell{ts: ts, series: series}
	if i, ok := s.seen[k]; ok {
		s.points[i].Value = value
		return nil
	}
	s.seen[k] = len(s.points)
	s.points = append(s.points, models.PlotPoint{TimestampMs: ts, Series: series, Value: value})
	return nil
}
