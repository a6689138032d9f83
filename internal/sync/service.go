// Boardsync - Game Leaderboard Synchronization Service
// Copyright 2026 Skelwatch
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skelwatch/boardsync

package sync

import (
	"context"
	gosync "sync"
	"time"

	"github.com/skelwatch/boardsync/internal/logging"
)

// Service drives the controller on a fixed interval. It implements
// suture.Service; the supervisor restarts it if Serve ever returns a
// non-context error.
type Service struct {
	controller *Controller
	interval   time.Duration

	// syncMu serializes cycles: a manual trigger never overlaps the
	// periodic loop.
	syncMu gosync.Mutex
}

// NewService builds the periodic sync service.
func NewService(controller *Controller, interval time.Duration) *Service {
	return &Service{controller: controller, interval: interval}
}

// Serve runs an initial cycle immediately, then one per interval, until the
// context is canceled.
func (s *Service) Serve(ctx context.Context) error {
	logging.Info().Dur("interval", s.interval).Msg("Sync service started")

	s.runCycle(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.Info().Msg("Sync service stopping")
			return ctx.Err()
		case <-ticker.C:
			s.runCycle(ctx)
		}
	}
}

// TriggerSync runs one cycle outside the periodic schedule, e.g. from the
// ops API. It blocks until the cycle completes and returns its outcomes.
func (s *Service) TriggerSync(ctx context.Context) []CycleOutcome {
	logging.Info().Msg("Manual sync triggered")
	return s.runCycleOutcomes(ctx)
}

func (s *Service) runCycle(ctx context.Context) {
	_ = s.runCycleOutcomes(ctx)
}

func (s *Service) runCycleOutcomes(ctx context.Context) []CycleOutcome {
	s.syncMu.Lock()
	defer s.syncMu.Unlock()

	if ctx.Err() != nil {
		return nil
	}
	return s.controller.RunCycle(ctx)
}

// String names the service in supervisor logs.
func (s *Service) String() string {
	return "leaderboard-sync"
}
