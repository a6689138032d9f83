// Boardsync - Game Leaderboard Synchronization Service
// Copyright 2026 Skelwatch
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skelwatch/boardsync

// Package remote implements the HTTP client for the leaderboard provider's
// API, with client-side rate limiting, HTTP 429 backoff, transient-fault
// classification, a retry layer and a circuit breaker.
//
// Composition order, innermost first:
//
//	Client -> RetryClient -> CircuitBreakerClient
//
// The sync engine consumes the outermost layer through its own small
// interface and performs no retries of its own.
package remote

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/skelwatch/boardsync/internal/config"
)

// maxErrorBodySize limits how much of an error response body is read for
// diagnostics, preventing unbounded allocation on large error pages.
const maxErrorBodySize = 64 * 1024

// API is the provider surface the wrapping layers decorate.
type API interface {
	// GetEntries requests one page of entries. start is 1-based inclusive.
	GetEntries(ctx context.Context, leaderboardID int64, start, count int) (*EntryPage, error)

	// FindOrCreateLeaderboard returns an existing leaderboard's identity by
	// exact name, creating it on the provider when absent.
	FindOrCreateLeaderboard(ctx context.Context, appID uint32, name string) (*LeaderboardInfo, error)
}

// Client talks to the provider's HTTP API.
//
// Features:
//   - API key authentication on every request
//   - client-side request rate limiting (x/time/rate)
//   - automatic HTTP 429 handling with exponential backoff and Retry-After
//   - JSON decoding into typed responses
//
// Thread safety: safe for concurrent use; each call builds its own request.
type Client struct {
	baseURL        string
	apiKey         string
	client         *http.Client
	limiter        *rate.Limiter
	maxRetries429  int
	retryBaseDelay time.Duration
}

// NewClient creates a provider client from configuration.
func NewClient(cfg *config.RemoteConfig) *Client {
	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}
	return &Client{
		baseURL:        cfg.URL,
		apiKey:         cfg.APIKey,
		client:         &http.Client{Timeout: cfg.Timeout},
		limiter:        limiter,
		maxRetries429:  5,
		retryBaseDelay: 1 * time.Second,
	}
}

// GetEntries fetches one page of leaderboard entries.
func (c *Client) GetEntries(ctx context.Context, leaderboardID int64, start, count int) (*EntryPage, error) {
	params := url.Values{}
	params.Set("start", strconv.Itoa(start))
	params.Set("count", strconv.Itoa(count))

	reqURL := fmt.Sprintf("%s/v1/leaderboards/%d/entries?%s", c.baseURL, leaderboardID, params.Encode())

	page := &EntryPage{}
	if err := c.get(ctx, "get_entries", reqURL, page); err != nil {
		return nil, err
	}
	return page, nil
}

// FindOrCreateLeaderboard looks a leaderboard up by exact name, creating it
// when the provider has none.
func (c *Client) FindOrCreateLeaderboard(ctx context.Context, appID uint32, name string) (*LeaderboardInfo, error) {
	body, err := json.Marshal(findOrCreateRequest{AppID: appID, Name: name})
	if err != nil {
		return nil, fmt.Errorf("failed to encode find-or-create request: %w", err)
	}

	reqURL := c.baseURL + "/v1/leaderboards/find-or-create"

	info := &LeaderboardInfo{}
	if err := c.post(ctx, "find_or_create", reqURL, body, info); err != nil {
		return nil, err
	}
	return info, nil
}

// get performs an authenticated GET and decodes the JSON response.
func (c *Client) get(ctx context.Context, op, reqURL string, result interface{}) error {
	return c.do(ctx, op, http.MethodGet, reqURL, nil, result)
}

// post performs an authenticated POST with a JSON body and decodes the response.
func (c *Client) post(ctx context.Context, op, reqURL string, body []byte, result interface{}) error {
	return c.do(ctx, op, http.MethodPost, reqURL, body, result)
}

// do performs one API call with rate limiting and 429 backoff, then decodes
// the JSON response into result. Failures come back classified.
func (c *Client) do(ctx context.Context, op, method, reqURL string, body []byte, result interface{}) error {
	resp, err := c.doRequestWithRateLimit(ctx, method, reqURL, body)
	if err != nil {
		return classify(op, 0, err)
	}
	defer resp.Body.Close() //nolint:errcheck // response body close error is not actionable

	if resp.StatusCode != http.StatusOK {
		msg := readBodyForError(resp.Body)
		return classify(op, resp.StatusCode, fmt.Errorf("%s", msg))
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return classify(op, 0, fmt.Errorf("failed to decode response: %w", err))
	}
	return nil
}

// doRequestWithRateLimit performs an HTTP request with the client-side rate
// limiter and automatic HTTP 429 handling. 429 responses are retried with
// exponential backoff (1s, 2s, 4s, 8s, 16s), honoring Retry-After when the
// provider sends one. The context cancels both waits.
func (c *Client) doRequestWithRateLimit(ctx context.Context, method, reqURL string, body []byte) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries429; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		} else {
			reader = http.NoBody
		}
		req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("HTTP request failed: %w", err)
		}

		if resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}

		// Rate limited: close this response and back off before retrying.
		retryAfter := resp.Header.Get("Retry-After")
		_ = resp.Body.Close() //nolint:errcheck // will retry anyway

		if attempt == c.maxRetries429 {
			lastErr = fmt.Errorf("rate limit exceeded after %d retries (HTTP 429)", c.maxRetries429)
			break
		}

		delay := c.retryBaseDelay * time.Duration(1<<uint(attempt))
		if retryAfter != "" {
			if seconds, err := time.ParseDuration(retryAfter + "s"); err == nil {
				delay = seconds
			}
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, lastErr
}

// readBodyForError reads up to maxErrorBodySize of a response body for error
// reporting, with a truncation marker when the limit is hit.
func readBodyForError(r io.Reader) []byte {
	limitedReader := io.LimitReader(r, maxErrorBodySize)
	body, err := io.ReadAll(limitedReader)
	if err != nil {
		return []byte("(failed to read response body)")
	}
	if len(body) == maxErrorBodySize {
		return append(body, []byte("... (truncated)")...)
	}
	return body
}
