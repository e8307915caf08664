package reports

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// Service computes sales summaries with a Redis read-through cache. Reports
// over closed periods do not change, so cache hits dominate.
type Service struct {
	logger   *slog.Logger
	repo     Repository
	cache    *redis.Client
	cacheTTL time.Duration
}

// NewService constructs a report Service.
func NewService(logger *slog.Logger, repo Repository, cache *redis.Client, cacheTTL time.Duration) *Service {
	return &Service{logger: logger, repo: repo, cache: cache, cacheTTL: cacheTTL}
}

// SalesSummary returns the per-store sales report for the inclusive day
// range, consulting the cache first.
func (s *Service) SalesSummary(ctx context.Context, from, to time.Time) (*SalesSummary, error) {
	key := s.cacheKey(from, to)

	if payload, err := s.cache.Get(ctx, key).Bytes(); err == nil {
		var cached SalesSummary
		if err := json.Unmarshal(payload, &cached); err == nil {
			return &cached, nil
		}
		// Unreadable cache entries are dropped and recomputed.
		s.cache.Del(ctx, key)
	} else if !errors.Is(err, redis.Nil) {
		s.logger.Warn("report cache read", slog.String("key", key), slog.Any("error", err))
	}

	summary, err := s.compute(ctx, from, to)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(summary); err == nil {
		if err := s.cache.Set(ctx, key, payload, s.cacheTTL).Err(); err != nil {
			s.logger.Warn("report cache write", slog.String("key", key), slog.Any("error", err))
		}
	}
	return summary, nil
}

// Refresh recomputes and re-caches the report, overwriting any cached copy.
// Used by the background refresh job.
func (s *Service) Refresh(ctx context.Context, from, to time.Time) error {
	summary, err := s.compute(ctx, from, to)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, s.cacheKey(from, to), payload, s.cacheTTL).Err()
}

func (s *Service) compute(ctx context.Context, from, to time.Time) (*SalesSummary, error) {
	stores, err := s.repo.SalesByStore(ctx, from, to)
	if err != nil {
		return nil, err
	}
	if stores == nil {
		stores = []StoreSales{}
	}

	grand := decimal.Zero
	for _, row := range stores {
		grand = grand.Add(row.TotalAmount)
	}

	return &SalesSummary{
		From:        from,
		To:          to,
		Stores:      stores,
		GrandTotal:  grand,
		GeneratedAt: time.Now().UTC(),
	}, nil
}

func (s *Service) cacheKey(from, to time.Time) string {
	return fmt.Sprintf("reports:sales:%s:%s", from.Format("2006-01-02"), to.Format("2006-01-02"))
}
