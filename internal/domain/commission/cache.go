package commission

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"
)

// Cache is a byte-oriented key/value store with expiry.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

const financialCachePrefix = "commission:financial:"

// CachedPeriods memoizes financial period lookups. Cache failures fall
// through to the wrapped provider; provider failures are never cached.
type CachedPeriods struct {
	next   FinancialPeriods
	cache  Cache
	ttl    time.Duration
	logger *slog.Logger
}

func NewCachedPeriods(next FinancialPeriods, cache Cache, ttl time.Duration, logger *slog.Logger) *CachedPeriods {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedPeriods{next: next, cache: cache, ttl: ttl, logger: logger}
}

func (c *CachedPeriods) FinancialDataForPeriod(ctx context.Context, period string) (FinancialData, error) {
	key := financialCachePrefix + period
	raw, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		c.logger.Warn("financial cache read failed", "key", key, "err", err)
	}
	if ok {
		var data FinancialData
		if err := json.Unmarshal(raw, &data); err == nil {
			return data, nil
		}
		c.logger.Warn("financial cache entry unreadable", "key", key)
	}

	data, err := c.next.FinancialDataForPeriod(ctx, period)
	if err != nil {
		return FinancialData{}, err
	}
	if raw, err := json.Marshal(data); err == nil {
		if err := c.cache.Set(ctx, key, raw, c.ttl); err != nil {
			c.logger.Warn("financial cache write failed", "key", key, "err", err)
		}
	}
	return data, nil
}
