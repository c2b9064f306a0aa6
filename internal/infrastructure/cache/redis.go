package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/finguard/fraud-screening-backend/internal/domain/screening"
	"github.com/finguard/fraud-screening-backend/internal/infrastructure/config"
)

// ErrKeyNotFound indicates a cache miss.
type ErrKeyNotFound struct {
	Key string
}

func (e ErrKeyNotFound) Error() string {
	return fmt.Sprintf("cache key not found: %s", e.Key)
}

// VerdictCache stores terminal screening states in Redis so identical
// transactions within the TTL reuse the prior verdict instead of
// re-scoring.
type VerdictCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewVerdictCache connects to Redis with the given configuration.
func NewVerdictCache(cfg *config.RedisConfig, logger *zap.Logger) (*VerdictCache, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if cfg == nil {
		return nil, fmt.Errorf("redis config is required")
	}

	opts := &redis.Options{
		Addr:         cfg.URL,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	logger.Info("verdict cache initialized",
		zap.String("addr", cfg.URL),
		zap.Int("db", cfg.DB),
		zap.Duration("ttl", cfg.VerdictTTL))

	return &VerdictCache{
		client: client,
		ttl:    cfg.VerdictTTL,
		logger: logger,
	}, nil
}

// NewVerdictCacheWithClient wraps an existing Redis client, used by tests.
func NewVerdictCacheWithClient(client *redis.Client, ttl time.Duration, logger *zap.Logger) *VerdictCache {
	return &VerdictCache{client: client, ttl: ttl, logger: logger}
}

// Get retrieves a stored run state by fingerprint key.
func (c *VerdictCache) Get(ctx context.Context, key string) (*screening.State, error) {
	raw, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrKeyNotFound{Key: key}
		}
		c.logger.Error("redis get failed", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var state screening.State
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil, fmt.Errorf("decoding cached state: %w", err)
	}
	return &state, nil
}

// Set stores a run state under the fingerprint key with the cache TTL.
func (c *VerdictCache) Set(ctx context.Context, key string, state *screening.State) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}

	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.logger.Error("redis set failed",
			zap.String("key", key),
			zap.Duration("ttl", c.ttl),
			zap.Error(err))
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// Ping checks connectivity, used by health checks.
func (c *VerdictCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close releases the underlying Redis connection.
func (c *VerdictCache) Close() error {
	return c.client.Close()
}
