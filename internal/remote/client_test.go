// Boardsync - Game Leaderboard Synchronization Service
// Copyright 2026 Skelwatch
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skelwatch/boardsync

package remote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/skelwatch/boardsync/internal/config"
)

// testRemoteConfig returns a client config pointed at the given test server.
func testRemoteConfig(serverURL string) *config.RemoteConfig {
	return &config.RemoteConfig{
		URL:            serverURL,
		APIKey:         "test-key",
		AppID:          247080,
		Timeout:        5 * time.Second,
		DetailsLayout:  "standard",
		RateLimit:      0, // no client-side limiting in tests
		RetryAttempts:  3,
		RetryBaseDelay: time.Millisecond,
		RetryMaxDelay:  5 * time.Millisecond,
	}
}

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(testRemoteConfig(server.URL)), server
}

func TestGetEntriesDecodesPage(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q, want bearer key", got)
		}
		if r.URL.Path != "/v1/leaderboards/812/entries" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("start"); got != "1" {
			t.Errorf("start = %q, want 1", got)
		}
		if got := r.URL.Query().Get("count"); got != "5000" {
			t.Errorf("count = %q, want 5000", got)
		}

		page := EntryPage{
			LeaderboardID: 812,
			Total:         2,
			Entries: []EntryRecord{
				{Rank: 1, PlayerID: 76561198000001, Score: 900, UGCHandle: 42, Details: []int{4, 2}},
				{Rank: 2, PlayerID: 76561198000002, Score: 850, Details: []int{1, 3}},
			},
		}
		if err := json.NewEncoder(w).Encode(page); err != nil {
			t.Errorf("encode: %v", err)
		}
	}))

	page, err := client.GetEntries(context.Background(), 812, 1, 5000)
	if err != nil {
		t.Fatalf("GetEntries() error: %v", err)
	}
	if page.Total != 2 {
		t.Errorf("Total = %d, want 2", page.Total)
	}
	if len(page.Entries) != 2 {
		t.Fatalf("len(Entries) = %d, want 2", len(page.Entries))
	}
	if page.Entries[0].UGCHandle != 42 {
		t.Errorf("UGCHandle = %d, want 42", page.Entries[0].UGCHandle)
	}
}

func TestGetEntriesRetriesRateLimit(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_ = json.NewEncoder(w).Encode(EntryPage{LeaderboardID: 7, Total: 0})
	}))
	client.retryBaseDelay = time.Millisecond

	page, err := client.GetEntries(context.Background(), 7, 1, 100)
	if err != nil {
		t.Fatalf("GetEntries() error: %v", err)
	}
	if page.LeaderboardID != 7 {
		t.Errorf("LeaderboardID = %d, want 7", page.LeaderboardID)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("server saw %d calls, want 2 (one 429, one success)", got)
	}
}

func TestGetEntriesClassifiesServerErrorTransient(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream broke", http.StatusBadGateway)
	}))

	_, err := client.GetEntries(context.Background(), 1, 1, 100)
	if err == nil {
		t.Fatal("GetEntries() = nil error, want failure")
	}
	if !IsTransient(err) {
		t.Errorf("HTTP 502 should classify transient, got %v", err)
	}
}

func TestGetEntriesClassifiesClientErrorPermanent(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such leaderboard", http.StatusNotFound)
	}))

	_, err := client.GetEntries(context.Background(), 999, 1, 100)
	if err == nil {
		t.Fatal("GetEntries() = nil error, want failure")
	}
	if IsTransient(err) {
		t.Errorf("HTTP 404 should classify permanent, got %v", err)
	}
}

func TestFindOrCreateLeaderboard(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		var req findOrCreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.AppID != 247080 {
			t.Errorf("AppID = %d, want 247080", req.AppID)
		}
		if req.Name != "13/9/2017_PROD" {
			t.Errorf("Name = %q", req.Name)
		}
		_ = json.NewEncoder(w).Encode(LeaderboardInfo{LeaderboardID: 4410, Name: req.Name, EntryCount: 0})
	}))

	info, err := client.FindOrCreateLeaderboard(context.Background(), 247080, "13/9/2017_PROD")
	if err != nil {
		t.Fatalf("FindOrCreateLeaderboard() error: %v", err)
	}
	if info.LeaderboardID != 4410 {
		t.Errorf("LeaderboardID = %d, want 4410", info.LeaderboardID)
	}
}

func TestGetEntriesHonorsCancellation(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	client.retryBaseDelay = time.Minute // force the backoff path to block

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, err := client.GetEntries(ctx, 1, 1, 100)
	if err == nil {
		t.Fatal("GetEntries() = nil error, want cancellation")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("cancellation took %s, should abort the backoff wait", elapsed)
	}
}
