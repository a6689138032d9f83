// Boardsync - Game Leaderboard Synchronization Service
// Copyright 2026 Skelwatch
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skelwatch/boardsync

package sync

import (
	"context"
	"errors"
	"fmt"
	gosync "sync"
	"time"

	"github.com/skelwatch/boardsync/internal/logging"
	"github.com/skelwatch/boardsync/internal/metrics"
	"github.com/skelwatch/boardsync/internal/models"
)

// ErrUnknownProduct is returned when a product has no daily naming rule.
// No remote call is made for such a product.
var ErrUnknownProduct = errors.New("unknown product")

// DailyBoardName derives the remote name of a product's daily leaderboard.
// The name must reproduce the provider-side convention exactly or the
// find-or-create lookup will mint a duplicate board:
//
//	("classic",   2017-09-13) -> "13/9/2017_PROD"
//	("amplified", 2017-09-13) -> "DLC 13/9/2017_PROD"
//
// Day and month carry no zero padding.
func DailyBoardName(product string, date time.Time) (string, error) {
	day := models.DayOf(date)
	base := fmt.Sprintf("%d/%d/%d_PROD", day.Day(), int(day.Month()), day.Year())

	switch product {
	case "classic":
		return base, nil
	case "amplified":
		return "DLC " + base, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownProduct, product)
	}
}

// DailyResolver determines the working set of daily leaderboards for one
// cycle: stale boards due for rotation plus today's boards, existing or
// newly created on the remote service.
type DailyResolver struct {
	store  StoreReader
	client RemoteClient
	appID  uint32
	quota  int

	// now is injectable for tests.
	now func() time.Time
}

// NewDailyResolver builds a resolver. quota caps the total number of daily
// boards handled per cycle.
func NewDailyResolver(store StoreReader, client RemoteClient, appID uint32, quota int) *DailyResolver {
	return &DailyResolver{
		store:  store,
		client: client,
		appID:  appID,
		quota:  quota,
		now:    time.Now,
	}
}

// Resolve returns this cycle's daily working set: stale boards (oldest
// sync first, capped at quota minus one reserved slot per product) plus
// one board per product for today.
//
// Creation failures for one product do not block the others; the first
// failure surfaces only after every parallel creation has finished.
func (r *DailyResolver) Resolve(ctx context.Context) ([]*models.Leaderboard, error) {
	today := models.DayOf(r.now())

	products, err := r.store.Products(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load product catalog: %w", err)
	}

	staleLimit := r.quota - len(products)
	if staleLimit < 0 {
		staleLimit = 0
	}
	stale, err := r.store.StaleDailyLeaderboards(ctx, today, staleLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load stale daily leaderboards: %w", err)
	}

	existing, err := r.store.DailyLeaderboardsByDate(ctx, today)
	if err != nil {
		return nil, fmt.Errorf("failed to load today's daily leaderboards: %w", err)
	}

	covered := make(map[int64]struct{}, len(existing))
	for _, lb := range existing {
		covered[lb.ProductID] = struct{}{}
	}

	var missing []*models.Product
	for _, p := range products {
		if _, ok := covered[p.ID]; !ok {
			missing = append(missing, p)
		}
	}

	created, err := r.createMissing(ctx, missing, today)
	if err != nil {
		return nil, err
	}

	result := make([]*models.Leaderboard, 0, len(stale)+len(existing)+len(created))
	result = append(result, stale...)
	result = append(result, existing...)
	result = append(result, created...)

	logging.Debug().
		Int("stale", len(stale)).
		Int("existing", len(existing)).
		Int("created", len(created)).
		Time("today", today).
		Msg("Resolved daily leaderboard working set")
	return result, nil
}

// createMissing finds or creates today's board for each uncovered product,
// in parallel. The naming rule is validated before any remote call.
func (r *DailyResolver) createMissing(ctx context.Context, missing []*models.Product, today time.Time) ([]*models.Leaderboard, error) {
	if len(missing) == 0 {
		return nil, nil
	}

	// Validate every name before the first remote call: one unknown product
	// is a hard error for the whole step, and no lookup should have fired.
	names := make([]string, len(missing))
	for i, product := range missing {
		name, err := DailyBoardName(product.Name, today)
		if err != nil {
			return nil, err
		}
		names[i] = name
	}

	var (
		wg       gosync.WaitGroup
		errOnce  gosync.Once
		firstErr error
		created  = make([]*models.Leaderboard, len(missing))
	)

	for i, product := range missing {
		wg.Add(1)
		go func(slot int, p *models.Product, boardName string) {
			defer wg.Done()

			info, err := r.client.FindOrCreateLeaderboard(ctx, r.appID, boardName)
			if err != nil {
				logging.Error().Err(err).
					Str("product", p.Name).
					Str("name", boardName).
					Msg("Failed to find or create daily leaderboard")
				errOnce.Do(func() { firstErr = err })
				return
			}

			metrics.DailyBoardsCreated.Inc()
			created[slot] = &models.Leaderboard{
				ID:           info.LeaderboardID,
				Name:         info.Name,
				Daily:        true,
				Date:         today,
				ProductID:    p.ID,
				Product:      p,
				IsProduction: true,
				EntryCount:   info.EntryCount,
			}
		}(i, product, names[i])
	}

	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}

	boards := make([]*models.Leaderboard, 0, len(created))
	for _, lb := range created {
		if lb != nil {
			boards = append(boards, lb)
		}
	}
	return boards, nil
}
