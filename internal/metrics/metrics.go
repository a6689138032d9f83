// Boardsync - Game Leaderboard Synchronization Service
// Copyright 2026 Skelwatch
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skelwatch/boardsync

// Package metrics provides Prometheus instrumentation for Boardsync:
// update cycles, page fetches, persistence row counts, retries and the
// remote client's circuit breaker.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Update cycle metrics

	CycleDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "boardsync_cycle_duration_seconds",
			Help:    "Duration of one leaderboard family's sync cycle in seconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
		[]string{"family"}, // "permanent", "daily"
	)

	CycleOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "boardsync_cycle_outcomes_total",
			Help: "Total sync cycle outcomes per leaderboard family",
		},
		[]string{"family", "outcome"}, // outcome: "success", "failure"
	)

	LeaderboardsSynced = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "boardsync_leaderboards_synced_total",
			Help: "Total leaderboards whose entry sets were aggregated",
		},
		[]string{"family"},
	)

	// Remote fetch metrics

	PageFetches = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "boardsync_page_fetches_total",
			Help: "Total entry pages requested from the remote provider",
		},
	)

	EntriesFetched = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "boardsync_entries_fetched_total",
			Help: "Total entry records received from the remote provider",
		},
	)

	RemoteRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "boardsync_remote_retries_total",
			Help: "Total retry attempts against the remote provider",
		},
		[]string{"operation"},
	)

	DailyBoardsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "boardsync_daily_leaderboards_created_total",
			Help: "Total daily leaderboards created on the remote provider",
		},
	)

	// Persistence metrics

	RowsPersisted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "boardsync_rows_persisted_total",
			Help: "Total rows written to the store per entity kind",
		},
		[]string{"entity"}, // "leaderboards", "players", "replays", "entries"
	)

	PersistErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "boardsync_persist_errors_total",
			Help: "Total persistence failures per entity kind",
		},
		[]string{"entity"},
	)

	// Circuit breaker metrics

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "boardsync_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "boardsync_circuit_breaker_requests_total",
			Help: "Circuit breaker request results",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)
)

// RecordCycle records one family cycle's duration and outcome.
func RecordCycle(family string, duration time.Duration, err error) {
	CycleDuration.WithLabelValues(family).Observe(duration.Seconds())
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	CycleOutcomes.WithLabelValues(family, outcome).Inc()
}
