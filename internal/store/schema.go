// Boardsync - Game Leaderboard Synchronization Service
// Copyright 2026 Skelwatch
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skelwatch/boardsync

package store

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations.
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates the core database tables.
//
// Schema strategy: all columns are defined in the initial CREATE TABLE
// statements. Entries carry a composite primary key of (leaderboard_id,
// rank); a sync cycle replaces a board's entry set by upserting the fresh
// ranks and deleting anything beyond the new count.
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	queries := []string{
		`CREATE TABLE IF NOT EXISTS products (
			id BIGINT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE
		)`,

		`CREATE TABLE IF NOT EXISTS leaderboards (
			id BIGINT PRIMARY KEY,
			name TEXT NOT NULL,
			daily BOOLEAN NOT NULL DEFAULT FALSE,
			date TIMESTAMP,
			product_id BIGINT,
			is_production BOOLEAN NOT NULL DEFAULT TRUE,
			entry_count INTEGER NOT NULL DEFAULT 0,
			last_update TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS players (
			id BIGINT PRIMARY KEY
		)`,

		`CREATE TABLE IF NOT EXISTS replays (
			id BIGINT PRIMARY KEY
		)`,

		`CREATE TABLE IF NOT EXISTS entries (
			leaderboard_id BIGINT NOT NULL,
			rank INTEGER NOT NULL,
			player_id BIGINT NOT NULL,
			score BIGINT NOT NULL,
			replay_id BIGINT,
			zone INTEGER NOT NULL DEFAULT 0,
			level INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (leaderboard_id, rank)
		)`,
	}

	for _, query := range queries {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}

	return db.createIndexes()
}

// createIndexes creates indexes for the common query patterns: daily board
// staleness ordering and per-board entry scans.
func (db *DB) createIndexes() error {
	ctx, cancel := schemaContext()
	defer cancel()

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_leaderboards_daily_update
			ON leaderboards(daily, last_update)`,
		`CREATE INDEX IF NOT EXISTS idx_leaderboards_date
			ON leaderboards(date)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_player
			ON entries(player_id)`,
	}

	for _, query := range indexes {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to create index: %s: %w", query, err)
		}
	}

	return nil
}

// seedProducts inserts the known product catalog. Daily boards are minted
// per product, so the rows must exist before the first sync cycle.
func (db *DB) seedProducts() error {
	ctx, cancel := schemaContext()
	defer cancel()

	products := []struct {
		id   int64
		name string
	}{
		{1, "classic"},
		{2, "amplified"},
	}

	for _, p := range products {
		_, err := db.conn.ExecContext(ctx,
			`INSERT INTO products (id, name) VALUES (?, ?) ON CONFLICT DO NOTHING`,
			p.id, p.name)
		if err != nil {
			return fmt.Errorf("failed to seed product %s: %w", p.name, err)
		}
	}

	return nil
}
