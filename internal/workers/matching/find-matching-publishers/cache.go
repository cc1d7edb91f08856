// internal/workers/matching/find-matching-publishers/cache.go
package findmatchingpublishers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"time"

	"resonate-workers/internal/common/logger"
	"resonate-workers/internal/common/metrics"
	"resonate-workers/internal/models"

	"github.com/redis/go-redis/v9"
)

// PublisherSource loads the active publisher pool for a market.
type PublisherSource interface {
	ListActive(ctx context.Context, market string, ids []string) ([]models.PublisherProfile, error)
}

// cachedSource keeps pools in Redis. Redis failures degrade to the underlying source.
type cachedSource struct {
	source PublisherSource
	redis  *redis.Client
	ttl    time.Duration
	prefix string
	logger logger.Logger
}

func newCachedSource(source PublisherSource, rdb *redis.Client, ttl time.Duration, prefix string, log logger.Logger) *cachedSource {
	return &cachedSource{source: source, redis: rdb, ttl: ttl, prefix: prefix, logger: log}
}

// cacheKey is <prefix>:<market>:<digest>, where digest covers the sorted id set.
func cacheKey(prefix, market string, ids []string) string {
	if len(ids) == 0 {
		return prefix + ":" + market + ":all"
	}
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)
	sum := sha256.Sum256([]byte(strings.Join(sorted, ",")))
	return prefix + ":" + market + ":" + hex.EncodeToString(sum[:8])
}

func (c *cachedSource) ListActive(ctx context.Context, market string, ids []string) ([]models.PublisherProfile, error) {
	if c.redis == nil {
		return c.source.ListActive(ctx, market, ids)
	}

	key := cacheKey(c.prefix, market, ids)
	val, err := c.redis.Get(ctx, key).Result()
	switch {
	case err == nil:
		var publishers []models.PublisherProfile
		if jsonErr := json.Unmarshal([]byte(val), &publishers); jsonErr == nil {
			metrics.PublisherCacheRequests.WithLabelValues("hit").Inc()
			return publishers, nil
		}
		c.logger.Warn("discarding unreadable publisher cache entry", map[string]interface{}{"key": key})
	case errors.Is(err, redis.Nil):
		metrics.PublisherCacheRequests.WithLabelValues("miss").Inc()
	default:
		metrics.PublisherCacheRequests.WithLabelValues("error").Inc()
		c.logger.Warn("publisher cache unavailable", map[string]interface{}{"key": key, "error": err})
	}

	publishers, err := c.source.ListActive(ctx, market, ids)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(publishers); err == nil {
		if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
			c.logger.Warn("failed to cache publisher pool", map[string]interface{}{"key": key, "error": err})
		}
	}
	return publishers, nil
}
