// Boardsync - Game Leaderboard Synchronization Service
// Copyright 2026 Skelwatch
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skelwatch/boardsync

package sync

import (
	"context"
	"fmt"
	"sort"

	"github.com/skelwatch/boardsync/internal/metrics"
	"github.com/skelwatch/boardsync/internal/models"
)

// PersistStats reports affected-row counts from one persistence pass.
type PersistStats struct {
	Leaderboards int `json:"leaderboards"`
	Players      int `json:"players"`
	Replays      int `json:"replays"`
	Entries      int `json:"entries"`
}

// Persister normalizes an aggregated leaderboard set and writes it out in
// dependency order.
type Persister struct {
	store StoreWriter
}

// NewPersister builds a persister over the given write port.
func NewPersister(store StoreWriter) *Persister {
	return &Persister{store: store}
}

// normalizePlayers returns the distinct player identities across all
// entries, in ascending id order for deterministic writes.
func normalizePlayers(boards []*models.Leaderboard) []models.Player {
	seen := make(map[int64]struct{})
	for _, lb := range boards {
		for _, e := range lb.Entries {
			seen[e.PlayerID] = struct{}{}
		}
	}

	players := make([]models.Player, 0, len(seen))
	for id := range seen {
		players = append(players, models.Player{ID: id})
	}
	sort.Slice(players, func(i, j int) bool { return players[i].ID < players[j].ID })
	return players
}

// normalizeReplays returns the distinct non-absent replay identities across
// all entries, in ascending id order.
func normalizeReplays(boards []*models.Leaderboard) []models.Replay {
	seen := make(map[int64]struct{})
	for _, lb := range boards {
		for _, e := range lb.Entries {
			if e.ReplayID != nil {
				seen[*e.ReplayID] = struct{}{}
			}
		}
	}

	replays := make([]models.Replay, 0, len(seen))
	for id := range seen {
		replays = append(replays, models.Replay{ID: id})
	}
	sort.Slice(replays, func(i, j int) bool { return replays[i].ID < replays[j].ID })
	return replays
}

// Persist writes an aggregated leaderboard set: leaderboards first, then
// players and replays, then each board's entry set. Entries reference all
// three entity kinds, so they strictly go last. There is no cross-phase
// transaction; a failure mid-pass leaves earlier phases committed and the
// next cycle reconciles naturally.
func (p *Persister) Persist(ctx context.Context, boards []*models.Leaderboard) (PersistStats, error) {
	var stats PersistStats

	n, err := p.store.UpsertLeaderboards(ctx, boards)
	if err != nil {
		metrics.PersistErrors.WithLabelValues("leaderboards").Inc()
		return stats, fmt.Errorf("failed to persist leaderboards: %w", err)
	}
	stats.Leaderboards = n
	metrics.RowsPersisted.WithLabelValues("leaderboards").Add(float64(n))

	n, err = p.store.UpsertPlayers(ctx, normalizePlayers(boards))
	if err != nil {
		metrics.PersistErrors.WithLabelValues("players").Inc()
		return stats, fmt.Errorf("failed to persist players: %w", err)
	}
	stats.Players = n
	metrics.RowsPersisted.WithLabelValues("players").Add(float64(n))

	n, err = p.store.UpsertReplays(ctx, normalizeReplays(boards))
	if err != nil {
		metrics.PersistErrors.WithLabelValues("replays").Inc()
		return stats, fmt.Errorf("failed to persist replays: %w", err)
	}
	stats.Replays = n
	metrics.RowsPersisted.WithLabelValues("replays").Add(float64(n))

	for _, lb := range boards {
		n, err = p.store.ReplaceEntries(ctx, lb.ID, lb.Entries)
		if err != nil {
			metrics.PersistErrors.WithLabelValues("entries").Inc()
			return stats, fmt.Errorf("failed to persist entries for leaderboard %d: %w", lb.ID, err)
		}
		stats.Entries += n
	}
	metrics.RowsPersisted.WithLabelValues("entries").Add(float64(stats.Entries))

	return stats, nil
}
