// Stackchart - Stacked Time-Series Chart Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stackchart

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/tomtom215/stackchart/internal/api"
	"github.com/tomtom215/stackchart/internal/chart"
	"github.com/tomtom215/stackchart/internal/config"
	"github.com/tomtom215/stackchart/internal/database"
	"github.com/tomtom215/stackchart/internal/eventbus"
	"github.com/tomtom215/stackchart/internal/logging"
	"github.com/tomtom215/stackchart/internal/metrics"
	"github.com/tomtom215/stackchart/internal/models"
	"github.com/tomtom215/stackchart/internal/supervisor"
	"github.com/tomtom215/stackchart/internal/supervisor/services"
	ws "github.com/tomtom215/stackchart/internal/websocket"
)

var version = "dev"

func main() {
	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("Stackchart failed")
	}
	logging.Info().Msg("Application stopped gracefully")
}

//nolint:gocyclo // sequential startup with one exit path per step
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})
	metrics.AppInfo.WithLabelValues(version, runtime.Version()).Set(1)

	logging.Info().
		Str("version", version).
		Str("db_path", cfg.Database.Path).
		Str("bus_driver", cfg.Bus.Driver).
		Int("charts", len(cfg.Charts)).
		Msg("Starting Stackchart with supervisor tree")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Warn().Err(err).Msg("Failed to close database")
		}
	}()
	storage := database.NewBreakerStorage(db, database.DefaultBreakerConfig())

	tree, err := supervisor.NewTree(logging.NewSlogLogger("supervisor"), supervisor.DefaultTreeConfig())
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}

	busCfg := eventbus.Config{
		Driver:       cfg.Bus.Driver,
		NATSURL:      cfg.Bus.NATSURL,
		OutputBuffer: cfg.Bus.OutputBuffer,
	}
	if cfg.Bus.Driver == eventbus.DriverNATS && cfg.Bus.EmbeddedServer {
		natsServer, err := eventbus.NewEmbeddedServer(eventbus.ServerConfig{Host: cfg.Bus.Host, Port: cfg.Bus.Port})
		if err != nil {
			return fmt.Errorf("start embedded NATS server: %w", err)
		}
		busCfg.NATSURL = natsServer.ClientURL()
		tree.AddMessagingService(services.NewEmbeddedNATSService(natsServer, 10*time.Second))
		logging.Info().Str("url", busCfg.NATSURL).Msg("Embedded NATS server started")
	}

	bus, err := eventbus.New(busCfg, logging.NewWatermillLogger())
	if err != nil {
		return fmt.Errorf("create event bus: %w", err)
	}
	defer func() {
		if err := bus.Close(); err != nil {
			logging.Warn().Err(err).Msg("Failed to close event bus")
		}
	}()

	charts, err := buildCharts(ctx, cfg.Charts, ChartDeps{
		Profiles:   db,
		Storage:    storage,
		Timestamps: storage,
		Signals:    bus,
	})
	if err != nil {
		return fmt.Errorf("build charts: %w", err)
	}
	defer closeCharts(charts)

	hub := ws.NewHub()
	for _, c := range charts {
		defer hub.Watch(c)()
	}
	loadHistoryCharts(ctx, charts)

	handler := api.NewHandler(db, bus, hub, charts, cfg.Server.CORSOrigins)
	server := &http.Server{
		Addr: fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: api.NewRouter(handler, api.RouterConfig{
			CORSAllowedOrigins: cfg.Server.CORSOrigins,
			RateLimitRequests:  cfg.Server.RateLimitReqs,
			RateLimitWindow:    cfg.Server.RateLimitWindow,
		}),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}
	if cfg.HasWildcardCORS() {
		logging.Warn().Msg("CORS allows every origin; set CORS_ORIGINS for production deployments")
	}

	tree.AddDataService(services.NewPollerService(loaders(charts), cfg.Poll.Interval, cfg.Poll.Burst))
	tree.AddMessagingService(services.NewWebSocketHubService(hub))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	var treeErr error
	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
		treeErr = <-errCh
	case treeErr = <-errCh:
		cancel()
	}
	if treeErr != nil && !errors.Is(treeErr, context.Canceled) {
		logging.Error().Err(treeErr).Msg("Supervisor tree error")
	}

	if unstopped, _ := tree.UnstoppedServiceReport(); len(unstopped) > 0 {
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}
	return nil
}

// loaders returns the charts the poller drives. Historical charts show a
// fixed window and reload only on request.
func loaders(charts []*chart.Chart) []services.Loader {
	var out []services.Loader
	for _, c := range charts {
		if c.Process() == models.ProcessRealTime {
			out = append(out, c)
		}
	}
	return out
}

// loadHistoryCharts runs the single load of every historical chart. A failure
// leaves the chart empty until POST /api/v1/charts/{id}/reload.
func loadHistoryCharts(ctx context.Context, charts []*chart.Chart) {
	for _, c := range charts {
		if c.Process() != models.ProcessHistory {
			continue
		}
		if err := c.LoadData(ctx); err != nil {
			logging.Warn().Err(err).Str("chart", c.ID()).Msg("Initial history load failed")
			continue
		}
		logging.Info().Str("chart", c.ID()).Int("points", len(c.Snapshot().Points)).Msg("History loaded")
	}
}

func closeCharts(charts []*chart.Chart) {
	for _, c := range charts {
		if err := c.Close(); err != nil {
			logging.Warn().Err(err).Str("chart", c.ID()).Msg("Failed to close chart")
		}
	}
}
