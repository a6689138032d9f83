// Boardsync - Game Leaderboard Synchronization Service
// Copyright 2026 Skelwatch
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skelwatch/boardsync

package sync

import (
	"context"
	"errors"
	"testing"

	"github.com/skelwatch/boardsync/internal/models"
)

func TestAggregateSetSurfacesErrorAfterAllSiblingsFinish(t *testing.T) {
	client := newFakeRemote()
	client.setBoard(1, 10)
	client.setBoard(2, 10)
	client.setBoard(3, 10)
	wantErr := errors.New("board 2 broke")
	client.entryErr[2] = wantErr

	agg := NewAggregator(client, nil, 100, LayoutStandard)
	boards := []*models.Leaderboard{
		{ID: 1, EntryCount: 10},
		{ID: 2, EntryCount: 10},
		{ID: 3, EntryCount: 10},
	}

	err := aggregateSet(context.Background(), agg, boards, 2)
	if !errors.Is(err, wantErr) {
		t.Fatalf("aggregateSet() error = %v, want %v", err, wantErr)
	}

	// Siblings were not canceled: every board was fetched.
	seen := make(map[int64]bool)
	for _, c := range client.entryCalls() {
		seen[c.leaderboardID] = true
	}
	for _, id := range []int64{1, 2, 3} {
		if !seen[id] {
			t.Errorf("board %d never fetched; siblings must run to completion", id)
		}
	}
}

func TestAggregateSetEmptySet(t *testing.T) {
	agg := NewAggregator(newFakeRemote(), nil, 100, LayoutStandard)
	if err := aggregateSet(context.Background(), agg, nil, 8); err != nil {
		t.Errorf("aggregateSet(empty) error: %v", err)
	}
}

func TestPermanentSyncNeverCreatesBoards(t *testing.T) {
	client := newFakeRemote()
	client.setBoard(1, 5)

	store := newFakeStore()
	store.permanent = []*models.Leaderboard{{ID: 1, Name: "SPEEDRUN", EntryCount: 5}}

	s := NewPermanentSync(store, NewAggregator(client, nil, 100, LayoutStandard), 4)
	boards, err := s.Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync() error: %v", err)
	}

	if len(boards) != 1 {
		t.Fatalf("len(boards) = %d, want 1 (membership defined by storage)", len(boards))
	}
	if len(boards[0].Entries) != 5 {
		t.Errorf("len(Entries) = %d, want 5", len(boards[0].Entries))
	}
	if len(client.findNames()) != 0 {
		t.Errorf("find-or-create calls = %v, want none on the permanent path", client.findNames())
	}
}

func TestDailySyncAggregatesResolvedSet(t *testing.T) {
	client := newFakeRemote()
	client.setBoard(400, 7)

	store := newFakeStore()
	store.products = nil // no products: nothing to create
	store.stale = []*models.Leaderboard{{ID: 400, Daily: true, EntryCount: 7}}

	resolver := NewDailyResolver(store, client, 247080, 100)
	s := NewDailySync(resolver, NewAggregator(client, nil, 100, LayoutStandard), 4)

	boards, err := s.Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync() error: %v", err)
	}
	if len(boards) != 1 || len(boards[0].Entries) != 7 {
		t.Fatalf("boards = %d / entries = %d, want 1/7", len(boards), len(boards[0].Entries))
	}
}
