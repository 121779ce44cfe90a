// Package cache provides a Redis-backed response cache for predictions and
// gameplans. Cache trouble never fails a request; callers fall back to
// computing.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Config holds Redis connection settings.
type Config struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// RedisCache wraps a Redis client for JSON value caching.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache connects to Redis and verifies the connection.
func NewRedisCache(cfg Config) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	log.Info().Str("addr", client.Options().Addr).Msg("Redis cache connected")
	return &RedisCache{client: client}, nil
}

// Close closes the underlying client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// GetJSON loads a cached value into v. Returns false on a miss; errors are
// logged and reported as misses so callers just recompute.
func (c *RedisCache) GetJSON(ctx context.Context, key string, v any) bool {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false
	}
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Cache read failed")
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Cache value unmarshal failed")
		return false
	}
	return true
}

// SetJSON stores a value with a TTL. Failures are logged and swallowed.
func (c *RedisCache) SetJSON(ctx context.Context, key string, v any, ttl time.Duration) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Cache value marshal failed")
		return
	}
	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Cache write failed")
	}
}

// PredictionKey builds the cache key for a prediction response.
func PredictionKey(homeTeamID, awayTeamID int, season string, date time.Time, window int) string {
	return fmt.Sprintf("predict:%d:%d:%s:%s:%d", homeTeamID, awayTeamID, season, date.Format("2006-01-02"), window)
}

// GameplanKey builds the cache key for a gameplan response.
func GameplanKey(teamAID, teamBID int, season string, date time.Time, window int) string {
	return fmt.Sprintf("gameplan:%d:%d:%s:%s:%d", teamAID, teamBID, season, date.Format("2006-01-02"), window)
}
