// Boardsync - Game Leaderboard Synchronization Service
// Copyright 2026 Skelwatch
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skelwatch/boardsync

package sync

import (
	"context"
	gosync "sync"
	"time"

	"github.com/google/uuid"

	"github.com/skelwatch/boardsync/internal/logging"
	"github.com/skelwatch/boardsync/internal/metrics"
	"github.com/skelwatch/boardsync/internal/models"
)

// Family identifies one of the two leaderboard lifecycles.
type Family string

const (
	FamilyPermanent Family = "permanent"
	FamilyDaily     Family = "daily"
)

// CycleOutcome is the explicit result of one family's pass within a cycle.
// Failures are values, not panics: a failed family is recorded and the
// process keeps running.
type CycleOutcome struct {
	Family    Family        `json:"family"`
	CycleID   string        `json:"cycle_id"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
	Boards    int           `json:"leaderboards"`
	Rows      PersistStats  `json:"rows"`
}

// familySyncer is the step both families share: produce an aggregated,
// entry-populated leaderboard set.
type familySyncer interface {
	Sync(ctx context.Context) ([]*models.Leaderboard, error)
}

// Controller orchestrates one full update cycle (acquire leaderboard set,
// sync entries, persist), run independently for the permanent family and
// the daily family. One family's failure never blocks the other's attempt.
type Controller struct {
	permanent familySyncer
	daily     familySyncer
	persister *Persister

	mu   gosync.RWMutex
	last map[Family]CycleOutcome
}

// NewController wires the cycle controller from already-constructed steps.
func NewController(permanent *PermanentSync, daily *DailySync, persister *Persister) *Controller {
	return &Controller{
		permanent: permanent,
		daily:     daily,
		persister: persister,
		last:      make(map[Family]CycleOutcome),
	}
}

// RunCycle executes one cycle across both families and returns their
// outcomes. There is no cycle-level transaction: partial success is an
// accepted, observable state the next cycle repairs by re-reading storage.
func (c *Controller) RunCycle(ctx context.Context) []CycleOutcome {
	cycleID := uuid.New().String()
	logging.Info().Str("cycle_id", cycleID).Msg("Starting sync cycle")

	outcomes := []CycleOutcome{
		c.runFamily(ctx, cycleID, FamilyPermanent, c.permanent),
		c.runFamily(ctx, cycleID, FamilyDaily, c.daily),
	}

	for _, o := range outcomes {
		c.record(o)
	}
	return outcomes
}

// runFamily runs one family's load → fetch → store pass and converts the
// result into an outcome value.
func (c *Controller) runFamily(ctx context.Context, cycleID string, family Family, syncer familySyncer) CycleOutcome {
	outcome := CycleOutcome{
		Family:    family,
		CycleID:   cycleID,
		StartedAt: time.Now(),
	}

	boards, err := syncer.Sync(ctx)
	if err == nil {
		outcome.Boards = len(boards)
		metrics.LeaderboardsSynced.WithLabelValues(string(family)).Add(float64(len(boards)))
		outcome.Rows, err = c.persister.Persist(ctx, boards)
	}

	outcome.Duration = time.Since(outcome.StartedAt)
	metrics.RecordCycle(string(family), outcome.Duration, err)

	if err != nil {
		outcome.Error = err.Error()
		logging.Error().Err(err).
			Str("cycle_id", cycleID).
			Str("family", string(family)).
			Dur("duration", outcome.Duration).
			Msg("Family sync failed")
		return outcome
	}

	outcome.Success = true
	logging.Info().
		Str("cycle_id", cycleID).
		Str("family", string(family)).
		Int("leaderboards", outcome.Boards).
		Int("entries", outcome.Rows.Entries).
		Dur("duration", outcome.Duration).
		Msg("Family sync completed")
	return outcome
}

func (c *Controller) record(o CycleOutcome) {
	c.mu.Lock()
	c.last[o.Family] = o
	c.mu.Unlock()
}

// LastOutcomes returns the most recent outcome per family, for the status
// endpoint.
func (c *Controller) LastOutcomes() map[Family]CycleOutcome {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[Family]CycleOutcome, len(c.last))
	for k, v := range c.last {
		out[k] = v
	}
	return out
}
