// Stackchart - Stacked Time-Series Chart Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stackchart

/*
Package supervisor runs the long-lived services of Stackchart under suture v4.

Services are grouped in three layers so a failure in one does not restart the others:

	Root ("stackchart")
	├── data-layer
	│   └── PollerService          real-time chart loads
	├── messaging-layer
	│   ├── EmbeddedNATSService    (bus.embedded_server with -tags nats)
	│   └── WebSocketHubService
	└── api-layer
	    └── HTTPServerService

Supervisor events are logged through sutureslog over the zerolog-backed slog
handler from the logging package.

	tree, err := supervisor.NewTree(logging.NewSlogLogger("supervisor"), supervisor.DefaultTreeConfig())
	tree.AddDataService(services.NewPollerService(charts, cfg.Poll.Interval, cfg.Poll.Burst))
	tree.AddAPIService(services.NewHTTPServerService(srv, cfg.Server.Timeout))
	err = tree.Serve(ctx)
*/
package supervisor
