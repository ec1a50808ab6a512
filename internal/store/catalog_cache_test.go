package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
	_ "time/tzdata"

	"formation-engine/internal/common/logger"
	"formation-engine/internal/pricing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

type fakeCatalogSource struct {
	catalog *pricing.FeeCatalog
	err     error
	calls   int
}

func (f *fakeCatalogSource) ActiveCatalogFor(_ context.Context, _ string, _ time.Time) (*pricing.FeeCatalog, error) {
	f.calls++
	return f.catalog, f.err
}

func createCachedCatalog() *pricing.FeeCatalog {
	return &pricing.FeeCatalog{
		ID:                "cat-3",
		FreezoneID:        "ifza",
		Version:           3,
		Currency:          "AED",
		EffectiveFrom:     time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Active:            true,
		FreeActivityCount: 3,
		LicensePackages: []pricing.LicensePackage{
			{PackageType: "Commercial", DurationYears: 2, VisasIncluded: 1, PriceVATInclusive: decimal.NewFromInt(25300), VATRate: decimal.RequireFromString("0.05")},
		},
	}
}

var cacheAsOf = time.Date(2026, 3, 1, 22, 30, 0, 0, time.UTC)

// ==========================
// miniredis
// ==========================

func TestCachedCatalogSource_ServesSecondReadFromCache(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	source := &fakeCatalogSource{catalog: createCachedCatalog()}
	cache := NewCachedCatalogSource(source, rdb, 5*time.Minute, time.UTC, logger.NewTestLogger(t))

	first, err := cache.ActiveCatalogFor(context.Background(), "ifza", cacheAsOf)
	require.NoError(t, err)
	second, err := cache.ActiveCatalogFor(context.Background(), "ifza", cacheAsOf)
	require.NoError(t, err)

	assert.Equal(t, 1, source.calls)
	assert.Equal(t, first.ID, second.ID)
	assert.True(t, first.LicensePackages[0].PriceVATInclusive.Equal(second.LicensePackages[0].PriceVATInclusive))

	key := CatalogCacheKey("ifza", cacheAsOf)
	assert.True(t, mr.Exists(key))
	assert.Equal(t, 5*time.Minute, mr.TTL(key))
}

func TestCachedCatalogSource_KeyUsesLocalDay(t *testing.T) {
	dubai, err := time.LoadLocation("Asia/Dubai")
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	cache := NewCachedCatalogSource(&fakeCatalogSource{catalog: createCachedCatalog()}, rdb, time.Minute, dubai, logger.NewTestLogger(t))
	_, err = cache.ActiveCatalogFor(context.Background(), "ifza", cacheAsOf)
	require.NoError(t, err)

	// 22:30 UTC is already the next day in Dubai
	assert.True(t, mr.Exists("formation:catalog:ifza:2026-03-02"))
}

func TestCachedCatalogSource_ReloadsWhenCachedCatalogNotInForce(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	stale := createCachedCatalog()
	stale.Active = false
	data, err := json.Marshal(stale)
	require.NoError(t, err)
	require.NoError(t, mr.Set(CatalogCacheKey("ifza", cacheAsOf), string(data)))

	source := &fakeCatalogSource{catalog: createCachedCatalog()}
	cache := NewCachedCatalogSource(source, rdb, time.Minute, time.UTC, logger.NewTestLogger(t))

	cat, err := cache.ActiveCatalogFor(context.Background(), "ifza", cacheAsOf)
	require.NoError(t, err)
	assert.True(t, cat.Active)
	assert.Equal(t, 1, source.calls)
}

func TestCachedCatalogSource_EntriesAlwaysExpire(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	cache := NewCachedCatalogSource(&fakeCatalogSource{catalog: createCachedCatalog()}, rdb, 0, time.UTC, logger.NewTestLogger(t))
	_, err := cache.ActiveCatalogFor(context.Background(), "ifza", cacheAsOf)
	require.NoError(t, err)

	assert.Equal(t, DefaultCatalogCacheTTL, mr.TTL(CatalogCacheKey("ifza", cacheAsOf)))
}

func TestCachedCatalogSource_NewerCatalogServedAfterExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	source := &fakeCatalogSource{catalog: createCachedCatalog()}
	cache := NewCachedCatalogSource(source, rdb, time.Minute, time.UTC, logger.NewTestLogger(t))
	_, err := cache.ActiveCatalogFor(context.Background(), "ifza", cacheAsOf)
	require.NoError(t, err)

	newer := createCachedCatalog()
	newer.ID = "cat-4"
	newer.Version = 4
	newer.EffectiveFrom = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	source.catalog = newer

	mr.FastForward(time.Minute)
	cat, err := cache.ActiveCatalogFor(context.Background(), "ifza", cacheAsOf)
	require.NoError(t, err)
	assert.Equal(t, "cat-4", cat.ID)
	assert.Equal(t, 2, source.calls)
}

// ==========================
// redismock
// ==========================

func TestCachedCatalogSource_RedisFailureFallsThrough(t *testing.T) {
	rdb, redisMock := redismock.NewClientMock()
	catalog := createCachedCatalog()
	key := CatalogCacheKey("ifza", cacheAsOf)

	redisMock.ExpectGet(key).SetErr(errors.New("connection reset"))
	data, err := json.Marshal(catalog)
	require.NoError(t, err)
	redisMock.ExpectSet(key, data, time.Minute).SetErr(errors.New("connection reset"))

	source := &fakeCatalogSource{catalog: catalog}
	cache := NewCachedCatalogSource(source, rdb, time.Minute, time.UTC, logger.NewTestLogger(t))

	cat, err := cache.ActiveCatalogFor(context.Background(), "ifza", cacheAsOf)
	require.NoError(t, err)
	assert.Equal(t, "cat-3", cat.ID)
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestCachedCatalogSource_SourceErrorIsNotCached(t *testing.T) {
	rdb, redisMock := redismock.NewClientMock()
	key := CatalogCacheKey("ifza", cacheAsOf)
	redisMock.ExpectGet(key).RedisNil()

	source := &fakeCatalogSource{err: pricing.ErrCatalogNotActive}
	cache := NewCachedCatalogSource(source, rdb, time.Minute, time.UTC, logger.NewTestLogger(t))

	_, err := cache.ActiveCatalogFor(context.Background(), "ifza", cacheAsOf)
	assert.ErrorIs(t, err, pricing.ErrCatalogNotActive)
	assert.NoError(t, redisMock.ExpectationsWereMet())
}
