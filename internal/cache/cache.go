package cache

import (
	"context"
	"time"

	"depotrack/backend/internal/domain"
)

type SummaryCache interface {
	Get(ctx context.Context, key string) (*domain.StockSummary, bool, error)
	Set(ctx context.Context, key string, value *domain.StockSummary, ttl time.Duration) error
}

type NoopSummaryCache struct{}

func (NoopSummaryCache) Get(_ context.Context, _ string) (*domain.StockSummary, bool, error) {
	return nil, false, nil
}

func (NoopSummaryCache) Set(_ context.Context, _ string, _ *domain.StockSummary, _ time.Duration) error {
	return nil
}
