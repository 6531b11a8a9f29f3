// internal/workers/ai-conversation/enrich-context/cache.go
package enrichcontext

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"assistant-workers/internal/common/database"
	"assistant-workers/internal/models"
)

// CachedProvider serves repeated lookups from Redis. Only non-empty
// successful outputs are stored, so errors and misses are always retried
// against the provider. Redis being down only costs the cache.
type CachedProvider struct {
	name        string
	next        Provider
	redisClient *database.RedisClient
	ttl         time.Duration
	prefix      string
	logger      Logger
}

func NewCachedProvider(name string, next Provider, redisClient *database.RedisClient, config *Config, log Logger) *CachedProvider {
	return &CachedProvider{
		name:        name,
		next:        next,
		redisClient: redisClient,
		ttl:         config.CacheTTL,
		prefix:      config.CachePrefix,
		logger: log.With(map[string]interface{}{
			"provider": name,
			"cache":    true,
		}),
	}
}

func (c *CachedProvider) Fetch(ctx context.Context, arg string) (*models.ProviderOutput, error) {
	key := c.buildCacheKey(arg)

	val, err := c.redisClient.Get(ctx, key)
	switch {
	case err == nil:
		var out models.ProviderOutput
		if err := json.Unmarshal([]byte(val), &out); err == nil {
			return &out, nil
		}
		c.logger.Warn("discarding unreadable cache entry", map[string]interface{}{
			"key": key,
		})
	case !errors.Is(err, database.ErrCacheMiss):
		c.logger.Warn("cache read failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}

	out, err := c.next.Fetch(ctx, arg)
	if err != nil || out.IsEmpty() {
		return out, err
	}

	data, err := json.Marshal(out)
	if err != nil {
		return out, nil
	}
	if err := c.redisClient.Set(ctx, key, string(data), c.ttl); err != nil {
		c.logger.Warn("cache write failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}

	return out, nil
}

func (c *CachedProvider) buildCacheKey(arg string) string {
	return c.prefix + c.name + ":" + strings.ToLower(strings.Join(strings.Fields(arg), " "))
}
