// Boardsync - Game Leaderboard Synchronization Service
// Copyright 2026 Skelwatch
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skelwatch/boardsync

// Package main is the entry point for the boardsync daemon.
//
// Boardsync runs unattended on a fixed cycle, reconciling two leaderboard
// families from a remote leaderboard provider into a local DuckDB store:
//
//   - permanent leaderboards: stable identifiers, membership defined by
//     the local store, never created or expired by this service
//   - daily leaderboards: one per product per UTC day, minted remotely via
//     find-or-create; yesterday's rotate out on a stale-refresh budget
//
// # Application Architecture
//
// Components initialize in order:
//
//  1. Configuration: layered defaults, config file, environment (Koanf v2)
//  2. Store: DuckDB with the leaderboard schema and seeded product catalog
//  3. Remote client: rate-limited HTTP client wrapped in retry and
//     circuit-breaker layers
//  4. Sync engine: aggregator, daily resolver, persister, cycle controller
//  5. Supervisor tree: the periodic sync loop and the ops HTTP server,
//     restarted with backoff on failure
//
// # Configuration
//
// Highest priority wins:
//   - Environment variables (REMOTE_URL, REMOTE_API_KEY, SYNC_INTERVAL, ...)
//   - Config file (boardsync.yaml, or CONFIG_PATH)
//   - Built-in defaults
//
// # Signal Handling
//
// SIGINT and SIGTERM trigger graceful shutdown: the current cycle finishes
// or aborts at the next cancellation point, the HTTP server drains, and the
// store is checkpointed and closed.
//
// # Example Usage
//
//	export REMOTE_URL=https://leaderboards.example.com
//	export REMOTE_API_KEY=your-provider-key
//	export REMOTE_APP_ID=247080
//	export DATABASE_PATH=/data/boardsync.duckdb
//	./boardsync
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/skelwatch/boardsync/internal/api"
	"github.com/skelwatch/boardsync/internal/config"
	"github.com/skelwatch/boardsync/internal/logging"
	"github.com/skelwatch/boardsync/internal/metrics"
	"github.com/skelwatch/boardsync/internal/remote"
	"github.com/skelwatch/boardsync/internal/store"
	"github.com/skelwatch/boardsync/internal/supervisor"
	syncengine "github.com/skelwatch/boardsync/internal/sync"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("remote_url", cfg.Remote.URL).
		Str("db_path", cfg.Database.Path).
		Dur("interval", cfg.Sync.Interval).
		Int("page_size", cfg.Sync.PageSize).
		Msg("Starting boardsync")

	db, err := store.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	// Client layering: rate-limited HTTP transport, then retry with
	// backoff, then the circuit breaker outermost so an open circuit
	// short-circuits whole retry schedules.
	var client syncengine.RemoteClient = remote.NewClient(&cfg.Remote)
	client = remote.NewRetryClient(client, &cfg.Remote)
	client = remote.NewCircuitBreakerClient(client)

	aggregator := syncengine.NewAggregator(client,
		metrics.PrometheusProgress{},
		cfg.Sync.PageSize,
		syncengine.DetailsLayout(cfg.Remote.DetailsLayout))
	resolver := syncengine.NewDailyResolver(db, client, cfg.Remote.AppID, cfg.Sync.DailyQuota)

	controller := syncengine.NewController(
		syncengine.NewPermanentSync(db, aggregator, cfg.Sync.Workers),
		syncengine.NewDailySync(resolver, aggregator, cfg.Sync.Workers),
		syncengine.NewPersister(db),
	)
	syncService := syncengine.NewService(controller, cfg.Sync.Interval)

	server := api.NewServer(db, syncService, controller).HTTPServer(&cfg.Server)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddSyncService(syncService)
	tree.AddAPIService(supervisor.NewHTTPServerService(server, 10*time.Second))
	logging.Info().Str("addr", server.Addr).Msg("Ops HTTP server added")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Boardsync stopped gracefully")
}
