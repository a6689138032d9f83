// Boardsync - Game Leaderboard Synchronization Service
// Copyright 2026 Skelwatch
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skelwatch/boardsync

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/skelwatch/boardsync/internal/models"
)

const leaderboardColumns = `id, name, daily, date, product_id, is_production, entry_count, last_update`

// scanLeaderboard scans one leaderboard row. Nullable columns (date,
// product_id, last_update) map to zero values.
func scanLeaderboard(rows *sql.Rows) (*models.Leaderboard, error) {
	var (
		lb         models.Leaderboard
		date       sql.NullTime
		productID  sql.NullInt64
		lastUpdate sql.NullTime
	)
	err := rows.Scan(&lb.ID, &lb.Name, &lb.Daily, &date, &productID,
		&lb.IsProduction, &lb.EntryCount, &lastUpdate)
	if err != nil {
		return nil, fmt.Errorf("failed to scan leaderboard: %w", err)
	}
	if date.Valid {
		lb.Date = date.Time.UTC()
	}
	if productID.Valid {
		lb.ProductID = productID.Int64
	}
	if lastUpdate.Valid {
		lb.LastUpdate = lastUpdate.Time.UTC()
	}
	return &lb, nil
}

func (db *DB) queryLeaderboards(ctx context.Context, query string, args ...interface{}) ([]*models.Leaderboard, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboards: %w", err)
	}
	defer func() { _ = rows.Close() }() //nolint:errcheck // read-only cursor

	var boards []*models.Leaderboard
	for rows.Next() {
		lb, err := scanLeaderboard(rows)
		if err != nil {
			return nil, err
		}
		boards = append(boards, lb)
	}
	return boards, rows.Err()
}

// PermanentLeaderboards returns every non-daily leaderboard.
func (db *DB) PermanentLeaderboards(ctx context.Context) ([]*models.Leaderboard, error) {
	return db.queryLeaderboards(ctx,
		`SELECT `+leaderboardColumns+` FROM leaderboards WHERE NOT daily ORDER BY id`)
}

// StaleDailyLeaderboards returns up to limit daily leaderboards whose date
// is not today, least recently synced first. Boards that have never been
// synced (NULL last_update) sort first.
func (db *DB) StaleDailyLeaderboards(ctx context.Context, today time.Time, limit int) ([]*models.Leaderboard, error) {
	if limit <= 0 {
		return nil, nil
	}
	return db.queryLeaderboards(ctx,
		`SELECT `+leaderboardColumns+` FROM leaderboards
		 WHERE daily AND date <> ?
		 ORDER BY last_update ASC NULLS FIRST, id
		 LIMIT ?`,
		models.DayOf(today), limit)
}

// DailyLeaderboardsByDate returns the daily leaderboards minted for the
// given UTC day, with their products attached.
func (db *DB) DailyLeaderboardsByDate(ctx context.Context, date time.Time) ([]*models.Leaderboard, error) {
	boards, err := db.queryLeaderboards(ctx,
		`SELECT `+leaderboardColumns+` FROM leaderboards WHERE daily AND date = ? ORDER BY id`,
		models.DayOf(date))
	if err != nil {
		return nil, err
	}
	if len(boards) == 0 {
		return boards, nil
	}

	products, err := db.Products(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]*models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	for _, lb := range boards {
		lb.Product = byID[lb.ProductID]
	}
	return boards, nil
}

// Products returns the full product catalog ordered by identifier.
func (db *DB) Products(ctx context.Context) ([]*models.Product, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT id, name FROM products ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer func() { _ = rows.Close() }() //nolint:errcheck // read-only cursor

	var products []*models.Product
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, &p)
	}
	return products, rows.Err()
}

// EntryCount returns the number of stored entries for one leaderboard.
func (db *DB) EntryCount(ctx context.Context, leaderboardID int64) (int, error) {
	var count int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM entries WHERE leaderboard_id = ?`, leaderboardID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count entries: %w", err)
	}
	return count, nil
}

// Entries returns one leaderboard's stored entry set in rank order.
func (db *DB) Entries(ctx context.Context, leaderboardID int64) ([]models.Entry, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT leaderboard_id, rank, player_id, score, replay_id, zone, level
		 FROM entries WHERE leaderboard_id = ? ORDER BY rank`, leaderboardID)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer func() { _ = rows.Close() }() //nolint:errcheck // read-only cursor

	var entries []models.Entry
	for rows.Next() {
		var (
			e        models.Entry
			replayID sql.NullInt64
		)
		if err := rows.Scan(&e.LeaderboardID, &e.Rank, &e.PlayerID, &e.Score,
			&replayID, &e.Zone, &e.Level); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		if replayID.Valid {
			id := replayID.Int64
			e.ReplayID = &id
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
