// Boardsync - Game Leaderboard Synchronization Service
// Copyright 2026 Skelwatch
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skelwatch/boardsync

package remote

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/skelwatch/boardsync/internal/logging"
	"github.com/skelwatch/boardsync/internal/metrics"
)

// CircuitBreakerClient wraps an API with the circuit breaker pattern so a
// provider outage fails cycles fast instead of tying every page fetch up in
// full retry schedules.
//
// The breaker uses real time for its interval and timeout calculations;
// tests exercise the wrapped client directly rather than mocking the breaker.
type CircuitBreakerClient struct {
	api  API
	cb   *gobreaker.CircuitBreaker[interface{}]
	name string
}

// NewCircuitBreakerClient wraps api with a circuit breaker:
//   - opens after a 60% failure rate across at least 10 requests
//   - counts reset after 1 minute in the closed state
//   - 2 minutes open before probing with up to 3 half-open requests
func NewCircuitBreakerClient(api API) *CircuitBreakerClient {
	cbName := "leaderboard-api"

	metrics.CircuitBreakerState.WithLabelValues(cbName).Set(0) // 0 = closed

	cb := gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= 0.6
			if shouldTrip {
				logging.Warn().
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", failureRatio*100).
					Msg("Opening remote API circuit")
			}
			return shouldTrip
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().
				Str("from", stateToString(from)).
				Str("to", stateToString(to)).
				Msg("Remote API circuit state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
	})

	return &CircuitBreakerClient{api: api, cb: cb, name: cbName}
}

// GetEntries fetches a page through the breaker.
func (c *CircuitBreakerClient) GetEntries(ctx context.Context, leaderboardID int64, start, count int) (*EntryPage, error) {
	result, err := c.execute(func() (interface{}, error) {
		return c.api.GetEntries(ctx, leaderboardID, start, count)
	})
	return castResult[EntryPage](result, err)
}

// FindOrCreateLeaderboard resolves a leaderboard through the breaker.
func (c *CircuitBreakerClient) FindOrCreateLeaderboard(ctx context.Context, appID uint32, name string) (*LeaderboardInfo, error) {
	result, err := c.execute(func() (interface{}, error) {
		return c.api.FindOrCreateLeaderboard(ctx, appID, name)
	})
	return castResult[LeaderboardInfo](result, err)
}

// execute runs one call through the breaker and records the result.
func (c *CircuitBreakerClient) execute(fn func() (interface{}, error)) (interface{}, error) {
	result, err := c.cb.Execute(fn)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(c.name, "rejected").Inc()
			logging.Warn().Err(err).Msg("Remote API request rejected by open circuit")
			// An open circuit is a transient condition: the provider may
			// recover before the next cycle retries naturally.
			return nil, &Error{Op: "circuit", Transient: true, Err: err}
		}
		metrics.CircuitBreakerRequests.WithLabelValues(c.name, "failure").Inc()
		return nil, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(c.name, "success").Inc()
	return result, nil
}

// castResult safely type-casts the circuit breaker result.
func castResult[T any](result interface{}, err error) (*T, error) {
	if err != nil {
		return nil, err
	}
	typed, ok := result.(*T)
	if !ok {
		return nil, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return typed, nil
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
