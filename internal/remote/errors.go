// Boardsync - Game Leaderboard Synchronization Service
// Copyright 2026 Skelwatch
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skelwatch/boardsync

package remote

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// Error is a classified failure from the remote provider. The Transient flag
// is the fault classifier's verdict: transient faults are worth retrying,
// permanent ones are surfaced immediately.
type Error struct {
	// Op names the failed operation ("get_entries", "find_or_create").
	Op string

	// StatusCode is the HTTP status, zero for transport-level failures.
	StatusCode int

	Transient bool

	Err error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("remote %s: HTTP %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("remote %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// classify wraps err as a remote.Error with a transient/permanent verdict.
//
// Transient: transport failures, timeouts, HTTP 429 and the 5xx class.
// Permanent: every other HTTP status (bad request, auth, not found).
// Context cancellation passes through unwrapped so callers can detect a
// clean stop with errors.Is.
func classify(op string, statusCode int, err error) error {
	if err == nil && statusCode == 0 {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	transient := false
	switch {
	case statusCode == http.StatusTooManyRequests:
		transient = true
	case statusCode >= 500:
		transient = true
	case statusCode == 0:
		// No HTTP status means the request never completed: DNS failures,
		// connection resets, timeouts. All worth retrying.
		transient = true
	}

	if err == nil {
		err = fmt.Errorf("unexpected status")
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		transient = true
	}

	return &Error{Op: op, StatusCode: statusCode, Transient: transient, Err: err}
}

// IsTransient reports whether err is a classified transient remote fault.
func IsTransient(err error) bool {
	var re *Error
	return errors.As(err, &re) && re.Transient
}
