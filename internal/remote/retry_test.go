// Boardsync - Game Leaderboard Synchronization Service
// Copyright 2026 Skelwatch
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skelwatch/boardsync

package remote

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/skelwatch/boardsync/internal/config"
)

// scriptedAPI returns canned results in sequence, recording call counts.
type scriptedAPI struct {
	entryErrs []error
	entryCall int

	findErrs []error
	findCall int
}

func (s *scriptedAPI) GetEntries(ctx context.Context, leaderboardID int64, start, count int) (*EntryPage, error) {
	idx := s.entryCall
	s.entryCall++
	if idx < len(s.entryErrs) && s.entryErrs[idx] != nil {
		return nil, s.entryErrs[idx]
	}
	return &EntryPage{LeaderboardID: leaderboardID}, nil
}

func (s *scriptedAPI) FindOrCreateLeaderboard(ctx context.Context, appID uint32, name string) (*LeaderboardInfo, error) {
	idx := s.findCall
	s.findCall++
	if idx < len(s.findErrs) && s.findErrs[idx] != nil {
		return nil, s.findErrs[idx]
	}
	return &LeaderboardInfo{Name: name}, nil
}

func transientErr() error {
	return &Error{Op: "entries", StatusCode: 503, Transient: true, Err: errors.New("unavailable")}
}

func permanentErr() error {
	return &Error{Op: "entries", StatusCode: 400, Transient: false, Err: errors.New("bad request")}
}

func newTestRetryClient(api API, attempts int) *RetryClient {
	return NewRetryClient(api, &config.RemoteConfig{
		RetryAttempts:  attempts,
		RetryBaseDelay: time.Millisecond,
		RetryMaxDelay:  5 * time.Millisecond,
	})
}

func TestRetryRecoversFromTransientFailure(t *testing.T) {
	api := &scriptedAPI{entryErrs: []error{transientErr(), transientErr(), nil}}
	rc := newTestRetryClient(api, 3)

	page, err := rc.GetEntries(context.Background(), 15, 1, 100)
	if err != nil {
		t.Fatalf("GetEntries() error: %v", err)
	}
	if page.LeaderboardID != 15 {
		t.Errorf("LeaderboardID = %d, want 15", page.LeaderboardID)
	}
	if api.entryCall != 3 {
		t.Errorf("underlying calls = %d, want 3", api.entryCall)
	}
}

func TestRetryGivesUpAfterMaxAttempts(t *testing.T) {
	api := &scriptedAPI{entryErrs: []error{transientErr(), transientErr(), transientErr()}}
	rc := newTestRetryClient(api, 3)

	_, err := rc.GetEntries(context.Background(), 15, 1, 100)
	if err == nil {
		t.Fatal("GetEntries() = nil error, want exhaustion")
	}
	if api.entryCall != 3 {
		t.Errorf("underlying calls = %d, want exactly 3", api.entryCall)
	}
	if !IsTransient(err) {
		t.Errorf("exhausted error should remain transient, got %v", err)
	}
}

func TestRetryStopsOnPermanentError(t *testing.T) {
	api := &scriptedAPI{entryErrs: []error{permanentErr()}}
	rc := newTestRetryClient(api, 3)

	_, err := rc.GetEntries(context.Background(), 15, 1, 100)
	if err == nil {
		t.Fatal("GetEntries() = nil error, want failure")
	}
	if api.entryCall != 1 {
		t.Errorf("underlying calls = %d, want 1 (no retry on permanent error)", api.entryCall)
	}
}

func TestRetryStopsOnCancellation(t *testing.T) {
	api := &scriptedAPI{entryErrs: []error{transientErr(), transientErr(), transientErr()}}
	rc := NewRetryClient(api, &config.RemoteConfig{
		RetryAttempts:  3,
		RetryBaseDelay: time.Minute,
		RetryMaxDelay:  time.Minute,
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, err := rc.GetEntries(ctx, 15, 1, 100)
	if err == nil {
		t.Fatal("GetEntries() = nil error, want cancellation")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("cancellation took %s, should abort the backoff wait", elapsed)
	}
}

func TestRetryCoversFindOrCreate(t *testing.T) {
	api := &scriptedAPI{findErrs: []error{transientErr(), nil}}
	rc := newTestRetryClient(api, 3)

	info, err := rc.FindOrCreateLeaderboard(context.Background(), 247080, "DLC 13/9/2017_PROD")
	if err != nil {
		t.Fatalf("FindOrCreateLeaderboard() error: %v", err)
	}
	if info.Name != "DLC 13/9/2017_PROD" {
		t.Errorf("Name = %q", info.Name)
	}
	if api.findCall != 2 {
		t.Errorf("underlying calls = %d, want 2", api.findCall)
	}
}

func TestJitterStaysWithinRange(t *testing.T) {
	base := 100 * time.Millisecond
	for range 50 {
		d := jitter(base)
		if d < base/2 || d >= base {
			t.Fatalf("jitter(%s) = %s, want [%s, %s)", base, d, base/2, base)
		}
	}
}
