// Boardsync - Game Leaderboard Synchronization Service
// Copyright 2026 Skelwatch
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skelwatch/boardsync

package metrics

// ProgressSink receives record-transfer notifications from the page fetcher.
// Implementations must be non-blocking; a report that cannot be delivered is
// dropped, never surfaced as an error.
type ProgressSink interface {
	Report(records int)
}

// PrometheusProgress reports transferred records into the EntriesFetched
// counter. Counter adds cannot fail, which satisfies the fire-and-forget
// contract by construction.
type PrometheusProgress struct{}

// Report adds the transferred record count to the fetch counter.
func (PrometheusProgress) Report(records int) {
	if records > 0 {
		EntriesFetched.Add(float64(records))
	}
}

// NopProgress discards all reports. Used in tests.
type NopProgress struct{}

// Report discards the notification.
func (NopProgress) Report(int) {}
