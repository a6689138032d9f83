// Boardsync - Game Leaderboard Synchronization Service
// Copyright 2026 Skelwatch
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skelwatch/boardsync

package sync

import (
	"context"
	"fmt"
	gosync "sync"

	"github.com/skelwatch/boardsync/internal/models"
)

// aggregateSet runs the aggregator over every board in the set through a
// bounded worker pool. Boards are independent: one board's failure does not
// cancel siblings already in flight, but the set operation fails once all
// of them finish, surfacing the first error. A failed set is not persisted.
func aggregateSet(ctx context.Context, agg *Aggregator, boards []*models.Leaderboard, workers int) error {
	if len(boards) == 0 {
		return nil
	}
	if workers <= 0 {
		workers = 1
	}

	var (
		wg       gosync.WaitGroup
		errOnce  gosync.Once
		firstErr error
		sem      = make(chan struct{}, workers)
	)

	for _, lb := range boards {
		wg.Add(1)
		go func(lb *models.Leaderboard) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			if err := ctx.Err(); err != nil {
				errOnce.Do(func() { firstErr = err })
				return
			}
			if err := agg.Aggregate(ctx, lb); err != nil {
				errOnce.Do(func() {
					firstErr = fmt.Errorf("leaderboard %d: %w", lb.ID, err)
				})
			}
		}(lb)
	}

	wg.Wait()
	return firstErr
}

// PermanentSync loads the known permanent leaderboard set and aggregates
// entries for each. Membership of the permanent set is defined entirely by
// storage; this path never creates or removes a board.
type PermanentSync struct {
	store   StoreReader
	agg     *Aggregator
	workers int
}

// NewPermanentSync builds the permanent-family sync step.
func NewPermanentSync(store StoreReader, agg *Aggregator, workers int) *PermanentSync {
	return &PermanentSync{store: store, agg: agg, workers: workers}
}

// Sync returns the permanent set with fresh entry sets, or an error when
// loading or any aggregation failed.
func (s *PermanentSync) Sync(ctx context.Context) ([]*models.Leaderboard, error) {
	boards, err := s.store.PermanentLeaderboards(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load permanent leaderboards: %w", err)
	}
	if err := aggregateSet(ctx, s.agg, boards, s.workers); err != nil {
		return nil, err
	}
	return boards, nil
}

// DailySync resolves the cycle's daily working set and aggregates entries
// for each board in it.
type DailySync struct {
	resolver *DailyResolver
	agg      *Aggregator
	workers  int
}

// NewDailySync builds the daily-family sync step.
func NewDailySync(resolver *DailyResolver, agg *Aggregator, workers int) *DailySync {
	return &DailySync{resolver: resolver, agg: agg, workers: workers}
}

// Sync returns the resolved daily set with fresh entry sets.
func (s *DailySync) Sync(ctx context.Context) ([]*models.Leaderboard, error) {
	boards, err := s.resolver.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	if err := aggregateSet(ctx, s.agg, boards, s.workers); err != nil {
		return nil, err
	}
	return boards, nil
}
