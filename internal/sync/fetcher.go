// Boardsync - Game Leaderboard Synchronization Service
// Copyright 2026 Skelwatch
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skelwatch/boardsync

package sync

import (
	"context"

	"github.com/skelwatch/boardsync/internal/metrics"
	"github.com/skelwatch/boardsync/internal/models"
	"github.com/skelwatch/boardsync/internal/remote"
)

// DetailsLayout selects where zone and level live inside a remote entry's
// detail vector. The two provider API generations disagree by one position.
type DetailsLayout string

const (
	// LayoutStandard: zone at index 0, level at index 1.
	LayoutStandard DetailsLayout = "standard"
	// LayoutLegacy: zone at index 1, level at index 2.
	LayoutLegacy DetailsLayout = "legacy"
)

// fetchPage requests one page of entries for one leaderboard. Pure
// request/response: remote failures propagate unchanged, classification
// happened in the client layer. The record count is reported to the
// progress sink on success.
func fetchPage(ctx context.Context, client RemoteClient, progress ProgressSink, leaderboardID int64, start, count int) (*remote.EntryPage, error) {
	page, err := client.GetEntries(ctx, leaderboardID, start, count)
	if err != nil {
		return nil, err
	}

	metrics.PageFetches.Inc()
	if progress != nil {
		progress.Report(len(page.Entries))
	}
	return page, nil
}

// mapEntry transforms a remote entry record into a local Entry. The UGC
// handle's two sentinel bit patterns decode to an absent replay.
func mapEntry(leaderboardID int64, rec remote.EntryRecord, layout DetailsLayout) models.Entry {
	e := models.Entry{
		LeaderboardID: leaderboardID,
		Rank:          rec.Rank,
		PlayerID:      rec.PlayerID,
		Score:         rec.Score,
	}

	if id, ok := models.ReplayIDFromHandle(rec.UGCHandle); ok {
		e.ReplayID = &id
	}

	zoneIdx, levelIdx := 0, 1
	if layout == LayoutLegacy {
		zoneIdx, levelIdx = 1, 2
	}
	if len(rec.Details) > zoneIdx {
		e.Zone = rec.Details[zoneIdx]
	}
	if len(rec.Details) > levelIdx {
		e.Level = rec.Details[levelIdx]
	}

	return e
}
