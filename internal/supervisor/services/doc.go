// Stackchart - Stacked Time-Series Chart Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stackchart

/*
Package services adapts Stackchart components to suture.Service.

Each wrapper turns a component lifecycle (ListenAndServe/Shutdown, Run(ctx),
a ticker loop) into Serve(ctx) error and names itself through fmt.Stringer so
supervisor events identify it.

  - PollerService: periodic LoadData of real-time charts, paced by a rate limiter
  - WebSocketHubService: runs the websocket hub
  - HTTPServerService: ListenAndServe with graceful shutdown
  - EmbeddedNATSService: owns the lifetime of an embedded NATS server
*/
package services
