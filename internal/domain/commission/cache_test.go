package commission

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapCache struct {
	entries map[string][]byte
	ttls    map[string]time.Duration
	getErr  error
}

func newMapCache() *mapCache {
	return &mapCache{entries: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *mapCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	v, ok := m.entries[key]
	return v, ok, nil
}

func (m *mapCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.entries[key] = value
	m.ttls[key] = ttl
	return nil
}

func TestCachedPeriodsServesRepeatReadsFromCache(t *testing.T) {
	periods := &fakePeriods{data: map[string]FinancialData{
		"2026-09": {Period: "2026-09", NetProfit: d("80000.25"), Revenue: d("200000"), Expenses: d("119999.75")},
	}}
	cache := newMapCache()
	cached := NewCachedPeriods(periods, cache, 10*time.Minute, nil)

	first, err := cached.FinancialDataForPeriod(context.Background(), "2026-09")
	require.NoError(t, err)
	second, err := cached.FinancialDataForPeriod(context.Background(), "2026-09")
	require.NoError(t, err)

	assert.Equal(t, []string{"2026-09"}, periods.calls)
	assertDecimal(t, "80000.25", second.NetProfit)
	assert.True(t, first.NetProfit.Equal(second.NetProfit))
	assert.Equal(t, 10*time.Minute, cache.ttls["commission:financial:2026-09"])
}

func TestCachedPeriodsDoesNotCacheFailures(t *testing.T) {
	periods := &fakePeriods{}
	cache := newMapCache()
	cached := NewCachedPeriods(periods, cache, time.Minute, nil)

	_, err := cached.FinancialDataForPeriod(context.Background(), "2030-01")

	assert.ErrorIs(t, err, ErrFinancialPeriodNotFound)
	assert.Empty(t, cache.entries)
}

func TestCachedPeriodsFallsThroughOnCacheError(t *testing.T) {
	periods := &fakePeriods{data: map[string]FinancialData{"2026-09": {NetProfit: d("1")}}}
	cache := newMapCache()
	cache.getErr = errBackend
	cached := NewCachedPeriods(periods, cache, time.Minute, nil)

	got, err := cached.FinancialDataForPeriod(context.Background(), "2026-09")

	require.NoError(t, err)
	assertDecimal(t, "1", got.NetProfit)
}
