// Boardsync - Game Leaderboard Synchronization Service
// Copyright 2026 Skelwatch
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skelwatch/boardsync

/*
ports.go - Engine Collaborator Interfaces

The sync engine depends on abstract collaborators, not concrete transports:
  - RemoteClient: the leaderboard provider (implemented by internal/remote,
    already wrapped in retry and circuit breaker layers)
  - Store: the local relational store (implemented by internal/store)
  - ProgressSink: fire-and-forget transfer telemetry

The engine performs no retries of its own. Transient faults are retried by
the client layer; what reaches the engine is either success or a hard
failure for the cycle's family.
*/

//nolint:staticcheck // File documentation, not package doc
package sync

import (
	"context"
	"time"

	"github.com/skelwatch/boardsync/internal/models"
	"github.com/skelwatch/boardsync/internal/remote"
)

// RemoteClient is the provider surface the engine consumes.
type RemoteClient interface {
	// GetEntries fetches one page of entries. start is the 1-based
	// inclusive offset of the first requested rank.
	GetEntries(ctx context.Context, leaderboardID int64, start, count int) (*remote.EntryPage, error)

	// FindOrCreateLeaderboard returns an existing leaderboard's identity by
	// name, creating one remotely if absent.
	FindOrCreateLeaderboard(ctx context.Context, appID uint32, name string) (*remote.LeaderboardInfo, error)
}

// StoreReader is the storage read port.
type StoreReader interface {
	PermanentLeaderboards(ctx context.Context) ([]*models.Leaderboard, error)
	StaleDailyLeaderboards(ctx context.Context, today time.Time, limit int) ([]*models.Leaderboard, error)
	DailyLeaderboardsByDate(ctx context.Context, date time.Time) ([]*models.Leaderboard, error)
	Products(ctx context.Context) ([]*models.Product, error)
}

// StoreWriter is the storage write port. Every write returns an
// affected-row count for telemetry.
type StoreWriter interface {
	// UpsertLeaderboards updates existing rows on conflict.
	UpsertLeaderboards(ctx context.Context, boards []*models.Leaderboard) (int, error)

	// UpsertPlayers and UpsertReplays skip existing rows on conflict.
	UpsertPlayers(ctx context.Context, players []models.Player) (int, error)
	UpsertReplays(ctx context.Context, replays []models.Replay) (int, error)

	// ReplaceEntries swaps one leaderboard's entry set wholesale.
	ReplaceEntries(ctx context.Context, leaderboardID int64, entries []models.Entry) (int, error)
}

// Store combines the read and write ports. internal/store.DB satisfies it.
type Store interface {
	StoreReader
	StoreWriter
}

// ProgressSink receives record counts as pages arrive. Implementations must
// not block; reporting failures are ignored by the engine.
type ProgressSink interface {
	Report(records int)
}
