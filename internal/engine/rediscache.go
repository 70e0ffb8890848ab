package engine

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisCache is a Cache backed by a Redis server, for sharing analysis
// results across processes.
//
// Results are stored as JSON. Every backend or codec failure is logged at
// debug level and degrades to a cache miss; callers never see Redis errors.
type RedisCache struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisCache wraps an existing Redis client. A nil logger is replaced
// with a no-op logger.
func NewRedisCache(client *redis.Client, logger *zap.Logger) *RedisCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisCache{client: client, logger: logger}
}

// Ping checks connectivity to the Redis backend. Useful at startup and in
// health checks; the cache itself works (as a pass-through) even when the
// backend is down.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Get(ctx context.Context, key string) (*AnalysisResult, bool) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Debug("redis cache get failed, treating as miss",
				zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}

	var result AnalysisResult
	if err := json.Unmarshal(data, &result); err != nil {
		c.logger.Debug("redis cache entry undecodable, treating as miss",
			zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return &result, true
}

func (c *RedisCache) Set(ctx context.Context, key string, result *AnalysisResult, ttl time.Duration) {
	data, err := json.Marshal(result)
	if err != nil {
		c.logger.Debug("redis cache encode failed, skipping write",
			zap.String("key", key), zap.Error(err))
		return
	}

	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		c.logger.Debug("redis cache set failed, skipping write",
			zap.String("key", key), zap.Error(err))
	}
}
