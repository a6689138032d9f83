// Boardsync - Game Leaderboard Synchronization Service
// Copyright 2026 Skelwatch
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skelwatch/boardsync

package remote

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/skelwatch/boardsync/internal/config"
	"github.com/skelwatch/boardsync/internal/logging"
	"github.com/skelwatch/boardsync/internal/metrics"
)

// RetryClient decorates an API with exponential-backoff retries of transient
// faults. Permanent faults and context cancellation pass through on the
// first occurrence. The sync engine performs no retries of its own; an
// exhausted RetryClient is a hard failure for the cycle's family.
type RetryClient struct {
	api       API
	attempts  int
	baseDelay time.Duration
	maxDelay  time.Duration
}

// NewRetryClient wraps api with the configured retry policy.
func NewRetryClient(api API, cfg *config.RemoteConfig) *RetryClient {
	return &RetryClient{
		api:       api,
		attempts:  cfg.RetryAttempts,
		baseDelay: cfg.RetryBaseDelay,
		maxDelay:  cfg.RetryMaxDelay,
	}
}

// GetEntries retries transient page fetch failures.
func (r *RetryClient) GetEntries(ctx context.Context, leaderboardID int64, start, count int) (*EntryPage, error) {
	var page *EntryPage
	err := r.retry(ctx, "get_entries", func() error {
		var err error
		page, err = r.api.GetEntries(ctx, leaderboardID, start, count)
		return err
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

// FindOrCreateLeaderboard retries transient find-or-create failures.
func (r *RetryClient) FindOrCreateLeaderboard(ctx context.Context, appID uint32, name string) (*LeaderboardInfo, error) {
	var info *LeaderboardInfo
	err := r.retry(ctx, "find_or_create", func() error {
		var err error
		info, err = r.api.FindOrCreateLeaderboard(ctx, appID, name)
		return err
	})
	if err != nil {
		return nil, err
	}
	return info, nil
}

// retry executes fn with exponential backoff and jitter on transient
// failures. The delay doubles per attempt from baseDelay, capped at
// maxDelay; each wait sleeps between half and the full computed delay so
// synchronized clients don't stampede the provider after an outage.
func (r *RetryClient) retry(ctx context.Context, op string, fn func() error) error {
	var err error
	delay := r.baseDelay

	for attempt := 0; attempt < r.attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		err = fn()
		if err == nil {
			return nil
		}
		if !IsTransient(err) {
			return err
		}

		if attempt < r.attempts-1 {
			wait := jitter(delay)
			logging.Warn().Err(err).
				Str("operation", op).
				Int("attempt", attempt+1).
				Int("max_attempts", r.attempts).
				Dur("delay", wait).
				Msg("Transient remote fault, retrying")
			metrics.RemoteRetries.WithLabelValues(op).Inc()

			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return ctx.Err()
			}

			delay *= 2
			if delay > r.maxDelay {
				delay = r.maxDelay
			}
		}
	}

	return fmt.Errorf("max retry attempts reached: %w", err)
}

// jitter returns a random duration in [d/2, d).
func jitter(d time.Duration) time.Duration {
	if d <= 1 {
		return d
	}
	half := d / 2
	return half + time.Duration(rand.Int63n(int64(half))) //nolint:gosec // backoff jitter needs no crypto randomness
}
