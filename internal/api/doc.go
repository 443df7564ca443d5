// Stackchart - Stacked Time-Series Chart Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stackchart

/*
Package api serves the HTTP interface of stackchart using the chi router.

Routes:

	GET  /health                                          store and chart health
	GET  /metrics                                         Prometheus exposition
	GET  /api/v1/charts                                   chart summaries
	GET  /api/v1/charts/{id}                              summary plus dataset snapshot
	GET  /api/v1/charts/{id}/stacked?begin=&end=          bucket counts computed by the store
	POST /api/v1/charts/{id}/reload[?begin=&end=]         run one load now
	POST /api/v1/collect/{profile}/{task}/{query}/{action} publish a start or stop signal
	POST /api/v1/history                                  publish a show-history request
	POST /api/v1/samples                                  ingest a sample batch
	GET  /api/v1/ws[?chart=id...]                         live dataset changes

Every response except /metrics and the websocket upgrade uses the APIResponse
envelope:

	{"success": true, "data": {...}, "meta": {"request_id": "...", "timestamp": "..."}}

Middleware order is request ID, real IP, panic recovery, CORS, then per-group
rate limiting (go-chi/httprate) and Prometheus instrumentation.
*/
package api
