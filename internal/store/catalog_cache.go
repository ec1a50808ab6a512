package store

import (
	"context"
	"time"

	"formation-engine/internal/common/database"
	"formation-engine/internal/common/logger"
	"formation-engine/internal/pricing"

	"github.com/redis/go-redis/v9"
)

// DefaultCatalogCacheTTL applies when no positive TTL is configured.
const DefaultCatalogCacheTTL = 5 * time.Minute

// CachedCatalogSource caches whole catalog snapshots in Redis, keyed by
// freezone and local calendar day. Cache failures fall through to the
// underlying source. A catalog that takes effect later in the day is seen
// once the cached entry expires, so entries always carry a TTL.
type CachedCatalogSource struct {
	next   pricing.CatalogSource
	redis  redis.Cmdable
	ttl    time.Duration
	loc    *time.Location
	logger logger.Logger
}

func NewCachedCatalogSource(next pricing.CatalogSource, rdb redis.Cmdable, ttl time.Duration, loc *time.Location, log logger.Logger) *CachedCatalogSource {
	if loc == nil {
		loc = time.UTC
	}
	if ttl <= 0 {
		ttl = DefaultCatalogCacheTTL
	}
	return &CachedCatalogSource{
		next:   next,
		redis:  rdb,
		ttl:    ttl,
		loc:    loc,
		logger: log.WithFields(map[string]interface{}{"component": "catalog-cache"}),
	}
}

// CatalogCacheKey is the Redis key for a freezone's catalog on asOf's day.
func CatalogCacheKey(freezoneID string, asOf time.Time) string {
	return "formation:catalog:" + freezoneID + ":" + asOf.Format("2006-01-02")
}

func (c *CachedCatalogSource) ActiveCatalogFor(ctx context.Context, freezoneID string, asOf time.Time) (*pricing.FeeCatalog, error) {
	key := CatalogCacheKey(freezoneID, asOf.In(c.loc))

	var cached pricing.FeeCatalog
	hit, err := database.GetJSON(ctx, c.redis, key, &cached)
	if err != nil {
		c.logger.Warn("catalog cache read failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
	if hit && cached.InForceAt(asOf) {
		return &cached, nil
	}

	cat, err := c.next.ActiveCatalogFor(ctx, freezoneID, asOf)
	if err != nil {
		return nil, err
	}

	if err := database.SetJSON(ctx, c.redis, key, cat, c.ttl); err != nil {
		c.logger.Warn("catalog cache write failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
	return cat, nil
}
