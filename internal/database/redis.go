package database

import (
	"fmt"
	"time"

	"nodeguard-platform/internal/config"

	"github.com/go-redis/redis/v8"
)

// NewRedisClient creates the Redis client backing the tenant-resolution
// cache. Every tenant lookup on the hot path may hit this client, so the
// pool size is configurable alongside the cache settings.
func NewRedisClient(cfg *config.Config) *redis.Client {
	poolSize := cfg.Redis.PoolSize
	if poolSize <= 0 {
		poolSize = 10
	}

	return redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     poolSize,
		MinIdleConns: poolSize / 2,
		MaxRetries:   3,
	})
}
