// Boardsync - Game Leaderboard Synchronization Service
// Copyright 2026 Skelwatch
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skelwatch/boardsync

package remote

// EntryRecord is one raw leaderboard entry as the provider returns it.
// Decoding into local entities (UGC sentinel handling, detail vector
// positions) happens in the sync engine, not here.
type EntryRecord struct {
	// Rank is the entry's 1-based global rank.
	Rank int `json:"rank"`

	// PlayerID is the provider's 64-bit account identifier.
	PlayerID int64 `json:"player_id"`

	Score int `json:"score"`

	// UGCHandle is the opaque handle of the attached replay. Zero and
	// all-ones are reserved "no replay" sentinels.
	UGCHandle uint64 `json:"ugc_handle"`

	// Details is the provider's per-entry detail vector; zone and level sit
	// at fixed positions that differ between the two supported APIs.
	Details []int `json:"details"`
}

// EntryPage is one bounded slice of a leaderboard's entries.
type EntryPage struct {
	LeaderboardID int64 `json:"leaderboard_id"`

	// Total is the leaderboard's total entry count as of this request.
	Total int `json:"total"`

	Entries []EntryRecord `json:"entries"`
}

// LeaderboardInfo is the provider's description of a leaderboard, returned
// by find-or-create.
type LeaderboardInfo struct {
	LeaderboardID int64  `json:"leaderboard_id"`
	Name          string `json:"name"`
	EntryCount    int    `json:"entry_count"`
}

// findOrCreateRequest is the find-or-create request body.
type findOrCreateRequest struct {
	AppID uint32 `json:"app_id"`
	Name  string `json:"name"`
}
