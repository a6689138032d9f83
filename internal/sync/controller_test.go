// Boardsync - Game Leaderboard Synchronization Service
// Copyright 2026 Skelwatch
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skelwatch/boardsync

package sync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/skelwatch/boardsync/internal/models"
	"github.com/skelwatch/boardsync/internal/remote"
)

// newTestController wires a controller over the given fakes with a pinned
// clock.
func newTestController(client *fakeRemote, store *fakeStore, today time.Time) *Controller {
	agg := NewAggregator(client, nil, 100, LayoutStandard)
	agg.now = fixedTime(today)

	resolver := NewDailyResolver(store, client, 247080, 100)
	resolver.now = fixedTime(today)

	permanent := NewPermanentSync(store, agg, 4)
	daily := NewDailySync(resolver, agg, 4)
	return NewController(permanent, daily, NewPersister(store))
}

func TestRunCycleBothFamiliesSucceed(t *testing.T) {
	today := time.Date(2026, 9, 1, 6, 0, 0, 0, time.UTC)

	client := newFakeRemote()
	client.setBoard(1, 150)
	client.findResults["1/9/2026_PROD"] = &remote.LeaderboardInfo{LeaderboardID: 501, Name: "1/9/2026_PROD"}

	store := newFakeStore()
	store.permanent = []*models.Leaderboard{{ID: 1, Name: "SPEEDRUN", EntryCount: 150}}
	store.products = []*models.Product{{ID: 1, Name: "classic"}}

	c := newTestController(client, store, today)
	outcomes := c.RunCycle(context.Background())

	if len(outcomes) != 2 {
		t.Fatalf("len(outcomes) = %d, want 2", len(outcomes))
	}
	for _, o := range outcomes {
		if !o.Success {
			t.Errorf("family %s failed: %s", o.Family, o.Error)
		}
		if o.CycleID == "" {
			t.Errorf("family %s missing cycle id", o.Family)
		}
	}
	if outcomes[0].Family != FamilyPermanent || outcomes[1].Family != FamilyDaily {
		t.Errorf("families = [%s, %s], want [permanent, daily]", outcomes[0].Family, outcomes[1].Family)
	}
	if outcomes[0].Boards != 1 || outcomes[0].Rows.Entries != 150 {
		t.Errorf("permanent outcome = %+v, want 1 board / 150 entries", outcomes[0])
	}
}

func TestRunCycleFamilyFailureDoesNotBlockOther(t *testing.T) {
	today := time.Date(2026, 9, 1, 6, 0, 0, 0, time.UTC)

	client := newFakeRemote()
	client.setBoard(1, 10)
	client.entryErr[1] = errors.New("remote exhausted")
	client.findResults["1/9/2026_PROD"] = &remote.LeaderboardInfo{LeaderboardID: 501, Name: "1/9/2026_PROD"}

	store := newFakeStore()
	store.permanent = []*models.Leaderboard{{ID: 1, Name: "SPEEDRUN", EntryCount: 10}}
	store.products = []*models.Product{{ID: 1, Name: "classic"}}

	c := newTestController(client, store, today)
	outcomes := c.RunCycle(context.Background())

	if outcomes[0].Success {
		t.Error("permanent family should have failed")
	}
	if outcomes[0].Error == "" {
		t.Error("failed outcome carries no error text")
	}
	if !outcomes[1].Success {
		t.Errorf("daily family should still succeed, got: %s", outcomes[1].Error)
	}
}

func TestRunCycleFailedFamilyPersistsNothing(t *testing.T) {
	client := newFakeRemote()
	client.entryErr[1] = errors.New("remote exhausted")

	store := newFakeStore()
	store.permanent = []*models.Leaderboard{{ID: 1, Name: "SPEEDRUN", EntryCount: 10}}

	agg := NewAggregator(client, nil, 100, LayoutStandard)
	permanent := NewPermanentSync(store, agg, 4)
	outcome := NewController(permanent, nil, NewPersister(store)).
		runFamily(context.Background(), "test-cycle", FamilyPermanent, permanent)

	if outcome.Success {
		t.Fatal("outcome should be a failure")
	}
	if ops := store.writeOps(); len(ops) != 0 {
		t.Errorf("writes = %v, want none for a failed family", ops)
	}
}

func TestLastOutcomesReflectsMostRecentCycle(t *testing.T) {
	today := time.Date(2026, 9, 1, 6, 0, 0, 0, time.UTC)

	client := newFakeRemote()
	client.findResults["1/9/2026_PROD"] = &remote.LeaderboardInfo{LeaderboardID: 501, Name: "1/9/2026_PROD"}

	store := newFakeStore()
	store.products = []*models.Product{{ID: 1, Name: "classic"}}

	c := newTestController(client, store, today)

	if len(c.LastOutcomes()) != 0 {
		t.Error("LastOutcomes() non-empty before any cycle")
	}

	c.RunCycle(context.Background())
	last := c.LastOutcomes()
	if len(last) != 2 {
		t.Fatalf("len(LastOutcomes()) = %d, want 2", len(last))
	}
	if _, ok := last[FamilyPermanent]; !ok {
		t.Error("permanent outcome missing")
	}
	if _, ok := last[FamilyDaily]; !ok {
		t.Error("daily outcome missing")
	}
}
