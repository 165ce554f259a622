package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"jobradar/internal/config"
	"jobradar/internal/logging"
	"jobradar/pkg/models"
)

const statsKey = "jobradar:stats"

// RedisClient wraps the Redis client used for caching dashboard aggregates.
// The service works without Redis; callers treat a nil client as a cache miss.
type RedisClient struct {
	client *redis.Client
	config *config.Config
	logger logging.Logger
}

// NewRedisClient creates a new Redis client instance
func NewRedisClient(cfg *config.Config) *RedisClient {
	opts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		// Fallback to default configuration
		opts = &redis.Options{
			Addr:     "localhost:6379",
			Password: "",
			DB:       0,
		}
	}

	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	return &RedisClient{
		client: redis.NewClient(opts),
		config: cfg,
		logger: logging.GetGlobalLogger(),
	}
}

// Ping tests the Redis connection
func (r *RedisClient) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (r *RedisClient) Close() error {
	return r.client.Close()
}

// GetStats returns the cached dashboard stats, or (nil, false) on a miss.
func (r *RedisClient) GetStats(ctx context.Context) (*models.Stats, bool) {
	payload, err := r.client.Get(ctx, statsKey).Result()
	if err != nil {
		if err != redis.Nil {
			r.logger.Warn("Stats cache read failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
		return nil, false
	}

	var stats models.Stats
	if err := json.Unmarshal([]byte(payload), &stats); err != nil {
		r.logger.Warn("Stats cache entry is malformed, discarding", map[string]interface{}{
			"error": err.Error(),
		})
		_ = r.client.Del(ctx, statsKey).Err()
		return nil, false
	}

	return &stats, true
}

// SetStats caches the dashboard stats with the configured TTL.
func (r *RedisClient) SetStats(ctx context.Context, stats *models.Stats) error {
	payload, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to marshal stats: %w", err)
	}

	ttl := r.config.Redis.StatsTTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}

	return r.client.Set(ctx, statsKey, payload, ttl).Err()
}

// InvalidateStats drops the cached stats. Called after a run mutates storage.
func (r *RedisClient) InvalidateStats(ctx context.Context) {
	if err := r.client.Del(ctx, statsKey).Err(); err != nil {
		r.logger.Warn("Stats cache invalidation failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

// IsHealthy checks if Redis is connected and healthy
func (r *RedisClient) IsHealthy(ctx context.Context) error {
	return r.Ping(ctx)
}
