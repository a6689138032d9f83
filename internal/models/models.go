// Boardsync - Game Leaderboard Synchronization Service
// Copyright 2026 Skelwatch
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skelwatch/boardsync

// Package models defines the entities shared between the sync engine and the
// store: leaderboards, entries, players, replays and the static product
// catalog.
//
// Leaderboard and Entry values are rebuilt from remote responses on every
// cycle and are transient; Player and Replay rows are append-only identity
// records created the first time an entry references them.
package models

import "time"

// Product is a static catalog entry (e.g. "classic", "amplified") used only
// to name and scope daily leaderboards. Read-only to this service.
type Product struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Leaderboard is a remote leaderboard tracked locally, either permanent
// (stable identity, never expires) or daily (one per product per UTC day).
type Leaderboard struct {
	// ID is the remote leaderboard identifier.
	ID   int64  `json:"id"`
	Name string `json:"name"`

	// Daily marks the daily variant. Daily leaderboards additionally carry
	// Date (day granularity, UTC) and a product association.
	Daily        bool       `json:"daily"`
	Date         time.Time  `json:"date"`
	ProductID    int64      `json:"product_id,omitempty"`
	Product      *Product   `json:"product,omitempty"`
	IsProduction bool       `json:"is_production,omitempty"`

	// EntryCount is the remote total entry count as of the last sync. It
	// drives the page fan-out of the next aggregation.
	EntryCount int `json:"entry_count"`

	LastUpdate time.Time `json:"last_update"`

	// Entries is the materialized entry set of the current cycle, owned by
	// this leaderboard. Replaced wholesale on each sync.
	Entries []Entry `json:"entries,omitempty"`
}

// Day returns the leaderboard's date truncated to day granularity, UTC.
func (l *Leaderboard) Day() time.Time {
	return DayOf(l.Date)
}

// DayOf truncates a timestamp to day granularity in UTC.
func DayOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Entry is a single ranked score on a leaderboard. Entries are immutable
// once constructed from a remote record.
type Entry struct {
	LeaderboardID int64 `json:"leaderboard_id"`

	// Rank is the 1-based global rank, unique within one leaderboard fetch.
	Rank     int   `json:"rank"`
	PlayerID int64 `json:"player_id"`
	Score    int   `json:"score"`

	// ReplayID references the replay attached to this score, nil when the
	// remote UGC handle decoded to a sentinel.
	ReplayID *int64 `json:"replay_id,omitempty"`

	Zone  int `json:"zone"`
	Level int `json:"level"`
}

// Player is an append-only identity row for a scoring account.
// Created lazily, never updated by this service.
type Player struct {
	ID int64 `json:"id"`
}

// Replay is an append-only identity row for a score's replay recording.
// Created lazily, never updated by this service.
type Replay struct {
	ID int64 `json:"id"`
}

// ReplayIDFromHandle decodes a remote UGC handle into a replay identifier.
// The handle is an opaque unsigned 64-bit value with two reserved sentinel
// bit patterns meaning "no replay": zero and all-ones. Both map to absence;
// any other value is the signed reinterpretation of the handle.
func ReplayIDFromHandle(handle uint64) (int64, bool) {
	id := int64(handle)
	if id == 0 || id == -1 {
		return 0, false
	}
	return id, true
}
