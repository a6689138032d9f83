// Boardsync - Game Leaderboard Synchronization Service
// Copyright 2026 Skelwatch
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skelwatch/boardsync

package sync

import (
	"context"
	"fmt"
	gosync "sync"
	"time"

	"github.com/skelwatch/boardsync/internal/models"
	"github.com/skelwatch/boardsync/internal/remote"
)

// getCall records one GetEntries invocation.
type getCall struct {
	leaderboardID int64
	start         int
	count         int
}

// fakeRemote serves entry pages from in-memory boards and scripted
// find-or-create results. Safe for concurrent use.
type fakeRemote struct {
	mu gosync.Mutex

	// boards holds each leaderboard's full rank-ordered record list;
	// GetEntries slices pages out of it.
	boards map[int64][]remote.EntryRecord

	// entryErr fails every GetEntries for the given leaderboard.
	entryErr map[int64]error

	// pageErr fails only the page at the given start offset, keyed
	// leaderboard id -> start.
	pageErr map[int64]map[int]error

	// findResults and findErr script FindOrCreateLeaderboard by name.
	findResults map[string]*remote.LeaderboardInfo
	findErr     map[string]error

	getCalls  []getCall
	findCalls []string
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		boards:      make(map[int64][]remote.EntryRecord),
		entryErr:    make(map[int64]error),
		pageErr:     make(map[int64]map[int]error),
		findResults: make(map[string]*remote.LeaderboardInfo),
		findErr:     make(map[string]error),
	}
}

// setBoard populates a leaderboard with count sequential records: rank i
// scored (count-i+1)*10, player id offset by the leaderboard id.
func (f *fakeRemote) setBoard(leaderboardID int64, count int) {
	records := make([]remote.EntryRecord, count)
	for i := range records {
		records[i] = remote.EntryRecord{
			Rank:     i + 1,
			PlayerID: leaderboardID*1_000_000 + int64(i+1),
			Score:    (count - i) * 10,
			Details:  []int{i % 5, i % 3},
		}
	}
	f.boards[leaderboardID] = records
}

// failPage makes only the page at the given start offset fail.
func (f *fakeRemote) failPage(leaderboardID int64, start int, err error) {
	if f.pageErr[leaderboardID] == nil {
		f.pageErr[leaderboardID] = make(map[int]error)
	}
	f.pageErr[leaderboardID][start] = err
}

func (f *fakeRemote) GetEntries(ctx context.Context, leaderboardID int64, start, count int) (*remote.EntryPage, error) {
	f.mu.Lock()
	f.getCalls = append(f.getCalls, getCall{leaderboardID, start, count})
	err := f.entryErr[leaderboardID]
	if err == nil {
		err = f.pageErr[leaderboardID][start]
	}
	records := f.boards[leaderboardID]
	f.mu.Unlock()

	if err != nil {
		return nil, err
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	lo := start - 1
	if lo < 0 || lo > len(records) {
		lo = len(records)
	}
	hi := lo + count
	if hi > len(records) {
		hi = len(records)
	}

	return &remote.EntryPage{
		LeaderboardID: leaderboardID,
		Total:         len(records),
		Entries:       records[lo:hi],
	}, nil
}

func (f *fakeRemote) FindOrCreateLeaderboard(ctx context.Context, appID uint32, name string) (*remote.LeaderboardInfo, error) {
	f.mu.Lock()
	f.findCalls = append(f.findCalls, name)
	err := f.findErr[name]
	info := f.findResults[name]
	f.mu.Unlock()

	if err != nil {
		return nil, err
	}
	if info != nil {
		return info, nil
	}
	return nil, fmt.Errorf("no scripted result for %q", name)
}

func (f *fakeRemote) entryCalls() []getCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]getCall(nil), f.getCalls...)
}

func (f *fakeRemote) findNames() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.findCalls...)
}

// fakeStore is an in-memory Store that records the order of write
// operations for persistence-ordering assertions.
type fakeStore struct {
	mu gosync.Mutex

	products  []*models.Product
	permanent []*models.Leaderboard
	stale     []*models.Leaderboard
	today     []*models.Leaderboard

	// staleLimit remembers the limit passed to StaleDailyLeaderboards.
	staleLimit int

	// ops is the sequence of write operations: "leaderboards", "players",
	// "replays", "entries:<id>".
	ops []string

	// failOn makes the named write operation fail.
	failOn map[string]error

	readErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		staleLimit: -1,
		failOn:     make(map[string]error),
	}
}

func (f *fakeStore) PermanentLeaderboards(ctx context.Context) ([]*models.Leaderboard, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	return f.permanent, nil
}

func (f *fakeStore) StaleDailyLeaderboards(ctx context.Context, today time.Time, limit int) ([]*models.Leaderboard, error) {
	f.mu.Lock()
	f.staleLimit = limit
	f.mu.Unlock()
	if f.readErr != nil {
		return nil, f.readErr
	}
	if limit < len(f.stale) {
		return f.stale[:limit], nil
	}
	return f.stale, nil
}

func (f *fakeStore) DailyLeaderboardsByDate(ctx context.Context, date time.Time) ([]*models.Leaderboard, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	return f.today, nil
}

func (f *fakeStore) Products(ctx context.Context) ([]*models.Product, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	return f.products, nil
}

func (f *fakeStore) recordOp(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failOn[op]; err != nil {
		return err
	}
	f.ops = append(f.ops, op)
	return nil
}

func (f *fakeStore) UpsertLeaderboards(ctx context.Context, boards []*models.Leaderboard) (int, error) {
	if err := f.recordOp("leaderboards"); err != nil {
		return 0, err
	}
	return len(boards), nil
}

func (f *fakeStore) UpsertPlayers(ctx context.Context, players []models.Player) (int, error) {
	if err := f.recordOp("players"); err != nil {
		return 0, err
	}
	return len(players), nil
}

func (f *fakeStore) UpsertReplays(ctx context.Context, replays []models.Replay) (int, error) {
	if err := f.recordOp("replays"); err != nil {
		return 0, err
	}
	return len(replays), nil
}

func (f *fakeStore) ReplaceEntries(ctx context.Context, leaderboardID int64, entries []models.Entry) (int, error) {
	if err := f.recordOp(fmt.Sprintf("entries:%d", leaderboardID)); err != nil {
		return 0, err
	}
	return len(entries), nil
}

func (f *fakeStore) writeOps() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.ops...)
}

// countingSink tallies reported records.
type countingSink struct {
	mu      gosync.Mutex
	records int
	reports int
}

func (s *countingSink) Report(records int) {
	s.mu.Lock()
	s.records += records
	s.reports++
	s.mu.Unlock()
}

// fixedTime returns a clock function pinned to t.
func fixedTime(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
