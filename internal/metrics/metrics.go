// Stackchart - Stacked Time-Series Chart Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stackchart

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Chart pipeline metrics
	ChartLoads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stackchart_chart_loads_total",
			Help: "Total number of chart data loads by mode and result",
		},
		[]string{"chart", "mode", "result"}, // mode: real_time, history, range; result: success, error
	)

	ChartLoadDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stackchart_chart_load_duration_seconds",
			Help:    "Duration of chart data loads in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"chart", "mode"},
	)

	ChartLoadsCoalesced = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stackchart_chart_loads_coalesced_total",
			Help: "Load requests dropped because a load was already in flight",
		},
		[]string{"chart"},
	)

	ChartPointsEmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stackchart_chart_points_emitted_total",
			Help: "Plot points delivered to the dataset",
		},
		[]string{"chart", "kind"}, // kind: data, fill
	)

	ChartPointFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stackchart_chart_point_failures_total",
			Help: "Plot points rejected by the dataset and skipped",
		},
		[]string{"chart"},
	)

	ChartSeries = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "stackchart_chart_series",
			Help: "Number of distinct series observed by a chart",
		},
		[]string{"chart"},
	)

	// Coordinator metrics
	CollectSignals = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stackchart_collect_signals_total",
			Help: "Collection lifecycle signals handled by charts",
		},
		[]string{"chart", "signal"}, // signal: start, stop, show_history
	)

	// Storage metrics
	StorageQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stackchart_storage_query_duration_seconds",
			Help:    "Duration of DuckDB storage queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	StorageQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stackchart_storage_query_errors_total",
			Help: "Total number of DuckDB storage query errors",
		},
		[]string{"operation"},
	)

	SamplesIngested = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stackchart_samples_ingested_total",
			Help: "Samples appended to the time-series store",
		},
	)

	QueryCacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stackchart_query_cache_requests_total",
			Help: "Stacked query cache lookups by result (hit, miss)",
		},
		[]string{"result"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "stackchart_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	// Event bus metrics
	BusEventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stackchart_bus_events_published_total",
			Help: "Events published to the lifecycle bus",
		},
		[]string{"topic"},
	)

	BusEventsDelivered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stackchart_bus_events_delivered_total",
			Help: "Events delivered to chart listeners, by outcome",
		},
		[]string{"topic", "result"}, // result: handled, filtered, invalid
	)

	// WebSocket metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "stackchart_websocket_connections",
			Help: "Current number of live websocket clients",
		},
	)

	WSFramesDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stackchart_websocket_frames_dropped_total",
			Help: "Frames dropped because a client send buffer was full",
		},
	)

	// API metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stackchart_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stackchart_api_request_duration_seconds",
			Help:    "API request latency in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "route"},
	)

	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "stackchart_app_info",
			Help: "Application build information",
		},
		[]string{"version", "go_version"},
	)
)

// RecordChartLoad records the outcome and latency of one chart load.
func RecordChartLoad(chart, mode string, duration time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	ChartLoads.WithLabelValues(chart, mode, result).Inc()
	ChartLoadDuration.WithLabelValues(chart, mode).Observe(duration.Seconds())
}

// RecordCoalescedLoad counts a load request dropped while another was in flight.
func RecordCoalescedLoad(chart string) {
	ChartLoadsCoalesced.WithLabelValues(chart).Inc()
}

// RecordPoints records delivered and rejected plot points.
func RecordPoints(chart string, data, fill, failed int) {
	if data > 0 {
		ChartPointsEmitted.WithLabelValues(chart, "data").Add(float64(data))
	}
	if fill > 0 {
		ChartPointsEmitted.WithLabelValues(chart, "fill").Add(float64(fill))
	}
	if failed > 0 {
		ChartPointFailures.WithLabelValues(chart).Add(float64(failed))
	}
}

// SetChartSeries sets the observed series count of a chart.
func SetChartSeries(chart string, n int) {
	ChartSeries.WithLabelValues(chart).Set(float64(n))
}

// RecordCollectSignal counts a lifecycle signal acted on by a chart.
func RecordCollectSignal(chart, signal string) {
	CollectSignals.WithLabelValues(chart, signal).Inc()
}

// RecordStorageQuery records a storage query metric.
func RecordStorageQuery(operation string, duration time.Duration, err error) {
	StorageQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		StorageQueryErrors.WithLabelValues(operation).Inc()
	}
}

// RecordQueryCache counts a stacked query cache lookup.
func RecordQueryCache(hit bool) {
	if hit {
		QueryCacheRequests.WithLabelValues("hit").Inc()
		return
	}
	QueryCacheRequests.WithLabelValues("miss").Inc()
}

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, route, status string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, status).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// TrackWSConnection adjusts the live websocket client gauge.
func TrackWSConnection(connected bool) {
	if connected {
		WSConnections.Inc()
	} else {
		WSConnections.Dec()
	}
}
