package cache

import (
	"context"
	"fmt"
	"time"

	"go-memo/internal/config"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

// RedisClient wraps the shared Redis connection. It backs both the
// read-through user cache and the mail queue lists.
type RedisClient struct {
	Client *redis.Client
}

// NewRedisClient initializes a Redis client with lifecycle management
func NewRedisClient(lc fx.Lifecycle, cfg *config.Config) (*RedisClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})

	return &RedisClient{Client: client}, nil
}

// Get returns the raw value at key, or nil on a cache miss.
func (rc *RedisClient) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := rc.Client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil // Cache miss, not an error
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get from cache: %w", err)
	}
	return b, nil
}

// Set stores val at key with the given TTL (zero means no expiry).
func (rc *RedisClient) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	if err := rc.Client.Set(ctx, key, val, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

// Del removes the given keys.
func (rc *RedisClient) Del(ctx context.Context, keys ...string) error {
	if err := rc.Client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cache: %w", err)
	}
	return nil
}
