// Stackchart - Stacked Time-Series Chart Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stackchart

/*
Package config loads the Stackchart configuration.

# Configuration Sources

Sources are layered with koanf, later layers overriding earlier ones:

 1. Struct defaults (defaultConfig)
 2. YAML file: $CONFIG_PATH, else the first of config.yaml, config.yml,
    /etc/stackchart/config.yaml, /etc/stackchart/config.yml
 3. Environment variables (mapped names only)

# Environment Variables

Logging:
  - LOG_LEVEL: trace, debug, info, warn, error (default: info)
  - LOG_FORMAT: json or console (default: json)
  - LOG_CALLER: include caller file:line (default: false)

Database:
  - DUCKDB_PATH: database file path (default: /data/stackchart.duckdb)
  - DUCKDB_MAX_MEMORY: DuckDB memory limit (default: 1GB)
  - DUCKDB_THREADS: worker threads, 0 = NumCPU (default: 0)

Event bus:
  - BUS_DRIVER: gochannel or nats (default: gochannel)
  - NATS_URL: NATS server URL (default: nats://127.0.0.1:4222)
  - NATS_EMBEDDED: run an embedded NATS server (default: false)

HTTP server:
  - HTTP_HOST, HTTP_PORT, HTTP_TIMEOUT
  - CORS_ORIGINS: comma-separated list
  - RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW

Polling:
  - POLL_INTERVAL: real-time poll cadence (default: 5s)
  - POLL_BURST: polls allowed back to back after a stall (default: 1)

Charts are only configurable from the YAML file:

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

A chart without cs_type takes the storage type from the stored column profile.
*/
package config
