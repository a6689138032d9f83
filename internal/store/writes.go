// Boardsync - Game Leaderboard Synchronization Service
// Copyright 2026 Skelwatch
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skelwatch/boardsync

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/skelwatch/boardsync/internal/logging"
	"github.com/skelwatch/boardsync/internal/models"
)

// rollbackOnError rolls the transaction back when the surrounding operation
// failed, logging a rollback failure without masking the original error.
func rollbackOnError(tx *sql.Tx, err error) {
	if err == nil {
		return
	}
	if rbErr := tx.Rollback(); rbErr != nil {
		logging.Error().
			Err(rbErr).
			AnErr("original_error", err).
			Msg("Transaction rollback failed")
	}
}

// UpsertLeaderboards inserts or updates leaderboard rows. Unlike players and
// replays, existing rows ARE updated: entry counts and last-update stamps
// move on every cycle. Returns the number of rows written.
func (db *DB) UpsertLeaderboards(ctx context.Context, boards []*models.Leaderboard) (written int, err error) {
	if len(boards) == 0 {
		return 0, nil
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { rollbackOnError(tx, err) }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO leaderboards (id, name, daily, date, product_id, is_production, entry_count, last_update)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			daily = excluded.daily,
			date = excluded.date,
			product_id = excluded.product_id,
			is_production = excluded.is_production,
			entry_count = excluded.entry_count,
			last_update = excluded.last_update`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare leaderboard upsert: %w", err)
	}
	defer func() { _ = stmt.Close() }() //nolint:errcheck // tx close releases it

	for _, lb := range boards {
		var (
			date       interface{}
			productID  interface{}
			lastUpdate interface{}
		)
		if !lb.Date.IsZero() {
			date = lb.Day()
		}
		if lb.ProductID != 0 {
			productID = lb.ProductID
		}
		if !lb.LastUpdate.IsZero() {
			lastUpdate = lb.LastUpdate.UTC()
		}

		if _, err = stmt.ExecContext(ctx, lb.ID, lb.Name, lb.Daily, date,
			productID, lb.IsProduction, lb.EntryCount, lastUpdate); err != nil {
			return written, fmt.Errorf("failed to upsert leaderboard %d: %w", lb.ID, err)
		}
		written++
	}

	if err = tx.Commit(); err != nil {
		return written, fmt.Errorf("failed to commit leaderboard upsert: %w", err)
	}
	return written, nil
}

// UpsertPlayers inserts player identity rows, ignoring ones already present.
// Player rows carry no mutable state, so conflicts are skipped rather than
// updated. Returns the number of new rows.
func (db *DB) UpsertPlayers(ctx context.Context, players []models.Player) (inserted int, err error) {
	if len(players) == 0 {
		return 0, nil
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { rollbackOnError(tx, err) }()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO players (id) VALUES (?) ON CONFLICT DO NOTHING`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare player insert: %w", err)
	}
	defer func() { _ = stmt.Close() }() //nolint:errcheck // tx close releases it

	for _, p := range players {
		res, execErr := stmt.ExecContext(ctx, p.ID)
		if execErr != nil {
			err = fmt.Errorf("failed to insert player %d: %w", p.ID, execErr)
			return inserted, err
		}
		if n, _ := res.RowsAffected(); n > 0 {
			inserted++
		}
	}

	if err = tx.Commit(); err != nil {
		return inserted, fmt.Errorf("failed to commit player insert: %w", err)
	}
	return inserted, nil
}

// UpsertReplays inserts replay identity rows, ignoring ones already present.
// Returns the number of new rows.
func (db *DB) UpsertReplays(ctx context.Context, replays []models.Replay) (inserted int, err error) {
	if len(replays) == 0 {
		return 0, nil
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { rollbackOnError(tx, err) }()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO replays (id) VALUES (?) ON CONFLICT DO NOTHING`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare replay insert: %w", err)
	}
	defer func() { _ = stmt.Close() }() //nolint:errcheck // tx close releases it

	for _, r := range replays {
		res, execErr := stmt.ExecContext(ctx, r.ID)
		if execErr != nil {
			err = fmt.Errorf("failed to insert replay %d: %w", r.ID, execErr)
			return inserted, err
		}
		if n, _ := res.RowsAffected(); n > 0 {
			inserted++
		}
	}

	if err = tx.Commit(); err != nil {
		return inserted, fmt.Errorf("failed to commit replay insert: %w", err)
	}
	return inserted, nil
}

// ReplaceEntries atomically replaces one leaderboard's entry set: fresh
// ranks are upserted in place and stored ranks beyond the new set's size are
// deleted, all in one transaction. A board that shrank between cycles never
// keeps phantom tail entries. Returns the number of rows written.
func (db *DB) ReplaceEntries(ctx context.Context, leaderboardID int64, entries []models.Entry) (written int, err error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { rollbackOnError(tx, err) }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO entries (leaderboard_id, rank, player_id, score, replay_id, zone, level)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (leaderboard_id, rank) DO UPDATE SET
			player_id = excluded.player_id,
			score = excluded.score,
			replay_id = excluded.replay_id,
			zone = excluded.zone,
			level = excluded.level`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare entry upsert: %w", err)
	}
	defer func() { _ = stmt.Close() }() //nolint:errcheck // tx close releases it

	for _, e := range entries {
		var replayID interface{}
		if e.ReplayID != nil {
			replayID = *e.ReplayID
		}
		if _, err = stmt.ExecContext(ctx, leaderboardID, e.Rank, e.PlayerID,
			e.Score, replayID, e.Zone, e.Level); err != nil {
			return written, fmt.Errorf("failed to upsert entry rank %d: %w", e.Rank, err)
		}
		written++
	}

	if _, err = tx.ExecContext(ctx,
		`DELETE FROM entries WHERE leaderboard_id = ? AND rank > ?`,
		leaderboardID, len(entries)); err != nil {
		return written, fmt.Errorf("failed to trim stale entries: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return written, fmt.Errorf("failed to commit entry replace: %w", err)
	}
	return written, nil
}
