// Stackchart - Stacked Time-Series Chart Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stackchart

/*
Package metrics holds the Prometheus instrumentation for Stackchart.

Collectors are registered on the default registry through promauto and exposed
by the API at GET /metrics via promhttp.

Chart pipeline:
  - stackchart_chart_loads_total{chart,mode,result}
  - stackchart_chart_load_duration_seconds{chart,mode}
  - stackchart_chart_loads_coalesced_total{chart}
  - stackchart_chart_points_emitted_total{chart,kind}
  - stackchart_chart_point_failures_total{chart}
  - stackchart_chart_series{chart}
  - stackchart_collect_signals_total{chart,signal}

Storage and bus:
  - stackchart_storage_query_duration_seconds{operation}
  - stackchart_storage_query_errors_total{operation}
  - stackchart_samples_ingested_total
  - stackchart_circuit_breaker_state{name}
  - stackchart_bus_events_published_total{topic}
  - stackchart_bus_events_delivered_total{topic,result}

Delivery:
  - stackchart_websocket_connections
  - stackchart_websocket_frames_dropped_total
  - stackchart_api_requests_total{method,route,status}
  - stackchart_api_request_duration_seconds{method,route}

Helpers such as RecordChartLoad keep label handling in one place:

	start := time.Now()
	err := pipeline.LoadData(ctx)
	metrics.RecordChartLoad(chartID, "real_time", time.Since(start), err)
*/
package metrics
