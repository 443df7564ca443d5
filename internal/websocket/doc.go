// Stackchart - Stacked Time-Series Chart Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stackchart

/*
Package websocket pushes chart dataset changes to browser clients.

A Hub owns the set of connected clients. Charts are attached with Watch; every
change a chart's dataset applies is wrapped in a Message and fanned out to the
clients that asked for that chart.

	chart.Dataset ──Subscribe──► Hub ──► Client (readPump / writePump)
	                              │
	                              └────► Client ...

Clients choose charts at connect time with repeated ?chart=<id> query
parameters; a client that names none receives every chart.

Message types:

  - chart_change: one applied load (chart.Change)
  - chart_snapshot: the full dataset, sent on request
  - ping / pong: application-level keepalive

Delivery is best effort. A client whose send buffer is full is disconnected
and the dropped frame is counted in stackchart_websocket_frames_dropped_total.
*/
package websocket
