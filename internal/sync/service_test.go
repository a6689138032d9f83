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
)

func newIdleService(t *testing.T) (*Service, *fakeStore) {
	t.Helper()
	client := newFakeRemote()
	store := newFakeStore()
	c := newTestController(client, store, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC))
	return NewService(c, time.Hour), store
}

func TestServeRunsInitialCycleAndStopsOnCancel(t *testing.T) {
	svc, _ := newIdleService(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	// Give the initial cycle time to run, then stop.
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve() did not return after cancellation")
	}
}

func TestTriggerSyncReturnsOutcomes(t *testing.T) {
	svc, _ := newIdleService(t)

	outcomes := svc.TriggerSync(context.Background())
	if len(outcomes) != 2 {
		t.Fatalf("len(outcomes) = %d, want 2", len(outcomes))
	}
}

func TestTriggerSyncSkipsWhenContextCanceled(t *testing.T) {
	svc, _ := newIdleService(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if outcomes := svc.TriggerSync(ctx); outcomes != nil {
		t.Errorf("TriggerSync(canceled) = %v, want nil", outcomes)
	}
}

func TestServiceName(t *testing.T) {
	svc, _ := newIdleService(t)
	if svc.String() != "leaderboard-sync" {
		t.Errorf("String() = %q", svc.String())
	}
}
