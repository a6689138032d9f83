// Boardsync - Game Leaderboard Synchronization Service
// Copyright 2026 Skelwatch
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skelwatch/boardsync

package sync

import (
	"context"
	"sort"
	gosync "sync"
	"time"

	"github.com/skelwatch/boardsync/internal/logging"
	"github.com/skelwatch/boardsync/internal/models"
	"github.com/skelwatch/boardsync/internal/remote"
)

// Aggregator materializes one leaderboard's full entry set by fanning out
// page fetches and folding the pages back together.
type Aggregator struct {
	client   RemoteClient
	progress ProgressSink
	pageSize int
	layout   DetailsLayout

	// now is injectable for tests.
	now func() time.Time
}

// NewAggregator builds an aggregator over the given client. pageSize is the
// provider's max-entries-per-request.
func NewAggregator(client RemoteClient, progress ProgressSink, pageSize int, layout DetailsLayout) *Aggregator {
	return &Aggregator{
		client:   client,
		progress: progress,
		pageSize: pageSize,
		layout:   layout,
		now:      time.Now,
	}
}

// Aggregate fetches all pages for lb concurrently and replaces lb.Entries
// with the combined, rank-deduplicated set.
//
// The batch count derives from lb.EntryCount, the remote total recorded by
// the previous cycle. LastUpdate is stamped when the first page completes
// (or immediately for a zero-batch board): the board was attempted this
// cycle even if a later page fails. The entry set itself always waits for
// every page; any page failure fails the whole aggregation and nothing is
// persisted for this board.
func (a *Aggregator) Aggregate(ctx context.Context, lb *models.Leaderboard) error {
	batches := (lb.EntryCount + a.pageSize - 1) / a.pageSize

	if batches == 0 {
		lb.LastUpdate = a.now()
		lb.Entries = nil
		return nil
	}

	var (
		wg        gosync.WaitGroup
		stampOnce gosync.Once
		errOnce   gosync.Once
		firstErr  error
		pages     = make([]*remote.EntryPage, batches)
	)

	for i := 0; i < batches; i++ {
		wg.Add(1)
		go func(batch int) {
			defer wg.Done()

			start := 1 + batch*a.pageSize
			page, err := fetchPage(ctx, a.client, a.progress, lb.ID, start, a.pageSize)
			if err != nil {
				errOnce.Do(func() { firstErr = err })
				return
			}

			stampOnce.Do(func() { lb.LastUpdate = a.now() })
			pages[batch] = page
		}(i)
	}

	// Errors do not short-circuit: every in-flight fetch runs to completion
	// before the first failure surfaces.
	wg.Wait()

	if firstErr != nil {
		logging.Warn().Err(firstErr).
			Int64("leaderboard_id", lb.ID).
			Int("batches", batches).
			Msg("Leaderboard aggregation failed")
		return firstErr
	}

	lb.Entries = a.combine(lb, pages)
	return nil
}

// combine folds fetched pages into one entry set, deduplicated by rank, in
// rank order. The remote total on the pages refreshes lb.EntryCount so the
// next cycle's fan-out tracks board growth.
func (a *Aggregator) combine(lb *models.Leaderboard, pages []*remote.EntryPage) []models.Entry {
	var entries []models.Entry
	seen := make(map[int]struct{})
	total := -1

	for _, page := range pages {
		if page == nil {
			continue
		}
		if page.Total > total {
			total = page.Total
		}
		for _, rec := range page.Entries {
			if _, dup := seen[rec.Rank]; dup {
				continue
			}
			seen[rec.Rank] = struct{}{}
			entries = append(entries, mapEntry(lb.ID, rec, a.layout))
		}
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Rank < entries[j].Rank })

	if total >= 0 {
		lb.EntryCount = total
	}
	return entries
}
