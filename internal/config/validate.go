// Boardsync - Game Leaderboard Synchronization Service
// Copyright 2026 Skelwatch
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skelwatch/boardsync

package config

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// validate is shared across Validate calls; the validator caches struct
// metadata internally and is safe for concurrent use.
var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks that required configuration is present and consistent.
// Struct tags cover per-field constraints; cross-field rules follow.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			ve := verrs[0]
			return fmt.Errorf("invalid config value %s=%v (rule %q)", ve.Namespace(), ve.Value(), ve.Tag())
		}
		return err
	}

	if c.Remote.RetryBaseDelay > c.Remote.RetryMaxDelay {
		return fmt.Errorf("REMOTE_RETRY_BASE_DELAY (%s) must not exceed REMOTE_RETRY_MAX_DELAY (%s)",
			c.Remote.RetryBaseDelay, c.Remote.RetryMaxDelay)
	}

	// The stale quota reserves one slot per product for today's boards; a
	// quota below 2 can never rotate anything with both products present.
	if c.Sync.DailyQuota < 2 {
		return fmt.Errorf("SYNC_DAILY_QUOTA must be at least 2, got %d", c.Sync.DailyQuota)
	}

	return nil
}
