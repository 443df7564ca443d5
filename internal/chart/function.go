// Stackchart - Stacked Time-Series Chart Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stackchart

package chart

import (
	"fmt"
	"sort"

	"github.com/tomtom215/stackchart/internal/models"
)

// Handler aggregates the raw samples of one window into stacked columns.
// Handlers are stateless and safe for concurrent use.
type Handler interface {
	Kind() models.FunctionKind
	Aggregate(rows []models.RawSample, w models.TimeWindow, strideMs int64) []models.StackedColumn
}

// NewHandler selects the handler for kind.
func NewHandler(kind models.FunctionKind) (Handler, error) {
	switch kind {
	case models.FunctionAsIs:
		return asIsHandler{}, nil
	case models.FunctionCount:
		return bucketHandler{kind: models.FunctionCount}, nil
	case models.FunctionSum:
		return bucketHandler{kind: models.FunctionSum}, nil
	case models.FunctionAverage:
		return averageHandler{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFunction, kind)
	}
}

// buckets maps the timestamps of a window onto stride-wide buckets. Bucket
// starts are multiples of stride (models.AlignBucket), so the first bucket may
// begin before w.Begin and overlapping windows land on the same buckets.
type buckets struct {
	w      models.TimeWindow
	stride int64
	first  int64
	n      int
}

// maxAggregateBuckets bounds the per-bucket state a single Aggregate call
// allocates. Wider windows aggregate to nothing.
const maxAggregateBuckets = 1 << 22

func newBuckets(w models.TimeWindow, stride int64) buckets {
	if stride < 1 {
		stride = 1
	}
	b := buckets{w: w, stride: stride, first: models.AlignBucket(w.Begin, stride)}
	if w.End > w.Begin {
		last := models.AlignBucket(w.End-1, stride)
		if n := (uint64(last)-uint64(b.first))/uint64(stride) + 1; n <= maxAggregateBuckets {
			b.n = int(n)
		}
	}
	return b
}

func (b buckets) len() int {
	return b.n
}

func (b buckets) index(ts int64) (int, bool) {
	if !b.w.Contains(ts) {
		return 0, false
	}
	k := (uint64(models.AlignBucket(ts, b.stride)) - uint64(b.first)) / uint64(b.stride)
	if k >= uint64(b.n) {
		return 0, false
	}
	return int(k), true
}

func (b buckets) start(k int) int64 {
	return b.first + int64(k)*b.stride
}

func (b buckets) column(k int, values map[string]float64) models.StackedColumn {
	key := b.start(k)
	tail := key + b.stride
	if tail > b.w.End {
		tail = b.w.End
	}
	return models.StackedColumn{Key: key, Tail: tail - 1, Values: values}
}

// asIsHandler emits one column per sample, keyed at the sample time.
type asIsHandler struct{}

func (asIsHandler) Kind() models.FunctionKind { return models.FunctionAsIs }

func (asIsHandler) Aggregate(rows []models.RawSample, w models.TimeWindow, _ int64) []models.StackedColumn {
	cols := make([]models.StackedColumn, 0, len(rows))
	for _, r := range rows {
		if !w.Contains(r.TimestampMs) {
			continue
		}
		cols = append(cols, models.StackedColumn{
			Key:    r.TimestampMs,
			Tail:   r.TimestampMs,
			Values: map[string]float64{r.Series: r.Value},
		})
	}
	return cols
}

// bucketHandler implements Count and Sum. Every bucket of the window is
// emitted for every series present in the batch; absent pairs are zero.
type bucketHandler struct {
	kind models.FunctionKind
}

func (h bucketHandler) Kind() models.FunctionKind { return h.kind }

func (h bucketHandler) Aggregate(rows []models.RawSample, w models.TimeWindow, strideMs int64) []models.StackedColumn {
	b := newBuckets(w, strideMs)
	n := b.len()
	if n == 0 || len(rows) == 0 {
		return nil
	}

	acc := make([]map[string]float64, n)
	seen := make(map[string]struct{})
	for _, r := range rows {
		k, ok := b.index(r.TimestampMs)
		if !ok {
			continue
		}
		if acc[k] == nil {
			acc[k] = make(map[string]float64)
		}
		seen[r.Series] = struct{}{}
		if h.kind == models.FunctionCount {
			acc[k][r.Series]++
		} else {
			acc[k][r.Series] += r.Value
		}
	}
	if len(seen) == 0 {
		return nil
	}

	series := sortedKeys(seen)
	cols := make([]models.StackedColumn, n)
	for k := range cols {
		values := make(map[string]float64, len(series))
		for _, s := range series {
			values[s] = acc[k][s]
		}
		cols[k] = b.column(k, values)
	}
	return cols
}

// averageHandler omits buckets without samples. The mean of nothing is left
// undefined for the gap filler to represent.
type averageHandler struct{}

func (averageHandler) Kind() models.FunctionKind { return models.FunctionAverage }

func (averageHandler) Aggregate(rows []models.RawSample, w models.TimeWindow, strideMs int64) []models.StackedColumn {
	b := newBuckets(w, strideMs)
	n := b.len()
	if n == 0 || len(rows) == 0 {
		return nil
	}

	type acc struct {
		sum   float64
		count int
	}
	perBucket := make([]map[string]*acc, n)
	for _, r := range rows {
		k, ok := b.index(r.TimestampMs)
		if !ok {
			continue
		}
		if perBucket[k] == nil {
			perBucket[k] = make(map[string]*acc)
		}
		a := perBucket[k][r.Series]
		if a == nil {
			a = &acc{}
			perBucket[k][r.Series] = a
		}
		a.sum += r.Value
		a.count++
	}

	var cols []models.StackedColumn
	for k, m := range perBucket {
		if len(m) == 0 {
			continue
		}
		values := make(map[string]float64, len(m))
		for s, a := range m {
			values[s] = a.sum / float64(a.count)
		}
		cols = append(cols, b.column(k, values))
	}
	return cols
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
