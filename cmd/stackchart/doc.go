// Stackchart - Stacked Time-Series Chart Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stackchart

/*
Package main is the entry point of the stackchart server.

Stackchart turns raw metric samples stored in DuckDB into fixed-resolution
stacked time-series charts. Real-time charts follow a running collection task
and append one bucket at a time; historical charts load a fixed past window.
Dataset changes are streamed to browsers over websockets.

# Application Architecture

	RootSupervisor ("stackchart")
	├── DataSupervisor ("data-layer")
	│   └── Chart poller (LoadData on every chart, rate limited)
	├── MessagingSupervisor ("messaging-layer")
	│   ├── Embedded NATS server (BUS_DRIVER=nats, NATS_EMBEDDED=true, -tags nats)
	│   └── WebSocket hub
	└── APISupervisor ("api-layer")
	    └── HTTP server (chi)

Initialization order:

 1. Configuration: koanf (defaults, YAML file, environment)
 2. Logging: zerolog
 3. Database: DuckDB, wrapped in a circuit breaker for chart reads
 4. Event bus: Watermill gochannel, or NATS with an optional embedded server
 5. Charts: one per configured entry; any chart configuration error is fatal
 6. WebSocket hub watching every chart
 7. Supervisor tree and HTTP server

On SIGINT or SIGTERM the tree is stopped, then charts release their bus
subscriptions and the bus and database are closed.

# Configuration

See package internal/config for every setting. A minimal file:

	database:
	  path: /data/stackchart.duckdb
	charts:
	  - id: cpu-state
	    profile: prod
	    task: host-1
	    query: cpu
	    column: state
	    cs_type: enum
	    function: count
	    chart_type: stacked
	    process_type: real_time
	    range_realtime: 10m
*/
package main
