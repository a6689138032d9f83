// Boardsync - Game Leaderboard Synchronization Service
// Copyright 2026 Skelwatch
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skelwatch/boardsync

// Package config loads and validates the Boardsync configuration.
//
// Configuration is layered via Koanf v2 (highest priority wins):
//
//  1. Built-in defaults
//  2. Optional YAML config file (config.yaml, or CONFIG_PATH)
//  3. Environment variables (REMOTE_API_KEY, SYNC_INTERVAL, ...)
package config

import "time"

// Config is the root configuration for the service.
type Config struct {
	Remote   RemoteConfig   `koanf:"remote"`
	Sync     SyncConfig     `koanf:"sync"`
	Database DatabaseConfig `koanf:"database"`
	Server   ServerConfig   `koanf:"server"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// RemoteConfig configures the remote leaderboard provider client.
type RemoteConfig struct {
	// URL is the base URL of the provider's HTTP API.
	URL string `koanf:"url" validate:"required,url"`

	// APIKey authenticates every request.
	APIKey string `koanf:"api_key" validate:"required"`

	// AppID scopes find-or-create-leaderboard calls to one game.
	AppID uint32 `koanf:"app_id" validate:"required"`

	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`

	// DetailsLayout selects where zone and level sit in an entry's detail
	// vector. The two provider APIs disagree: "standard" is zone at index 0
	// and level at index 1, "legacy" shifts both by one.
	DetailsLayout string `koanf:"details_layout" validate:"oneof=standard legacy"`

	// RateLimit is the client-side request budget in requests per second.
	// Zero disables client-side limiting.
	RateLimit float64 `koanf:"rate_limit" validate:"gte=0"`

	// RetryAttempts caps retries of transient faults before the failure is
	// surfaced to the engine.
	RetryAttempts int `koanf:"retry_attempts" validate:"gte=1"`

	// RetryBaseDelay is the first backoff delay; it doubles per attempt.
	RetryBaseDelay time.Duration `koanf:"retry_base_delay" validate:"gt=0"`

	// RetryMaxDelay caps the backoff delay growth.
	RetryMaxDelay time.Duration `koanf:"retry_max_delay" validate:"gt=0"`
}

// SyncConfig configures the update cycle.
type SyncConfig struct {
	// Interval between update cycles.
	Interval time.Duration `koanf:"interval" validate:"gt=0"`

	// PageSize is the provider's fixed max-entries-per-request.
	PageSize int `koanf:"page_size" validate:"gt=0"`

	// Workers bounds concurrent leaderboard aggregations per family sync.
	Workers int `koanf:"workers" validate:"gt=0"`

	// DailyQuota caps how many daily leaderboards one cycle may refresh,
	// stale rotation included.
	DailyQuota int `koanf:"daily_quota" validate:"gt=0"`
}

// DatabaseConfig configures the DuckDB store.
type DatabaseConfig struct {
	// Path to the database file. ":memory:" keeps the store in memory.
	Path string `koanf:"path" validate:"required"`

	// MaxMemory is DuckDB's memory limit (e.g. "1GB").
	MaxMemory string `koanf:"max_memory"`

	// Threads for DuckDB; 0 means runtime.NumCPU().
	Threads int `koanf:"threads" validate:"gte=0"`
}

// ServerConfig configures the ops HTTP surface (health, metrics, status).
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port" validate:"gt=0,lte=65535"`
	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`
}

// LoggingConfig configures the global logger.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// defaultConfig returns a Config with all default values. Defaults are
// applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Remote: RemoteConfig{
			URL:            "",
			APIKey:         "",
			AppID:          0,
			Timeout:        30 * time.Second,
			DetailsLayout:  "standard",
			RateLimit:      4,
			RetryAttempts:  3,
			RetryBaseDelay: 1 * time.Second,
			RetryMaxDelay:  20 * time.Second,
		},
		Sync: SyncConfig{
			Interval:   5 * time.Minute,
			PageSize:   5000,
			Workers:    8,
			DailyQuota: 100,
		},
		Database: DatabaseConfig{
			Path:      "/data/boardsync.duckdb",
			MaxMemory: "1GB",
			Threads:   0,
		},
		Server: ServerConfig{
			Host:    "0.0.0.0",
			Port:    9215,
			Timeout: 30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}
