package redisinfra

import (
	"context"
	"fmt"

	"github.com/go-authix/internal/config"
	"github.com/redis/go-redis/v9"
)

// NewClient parses cfg.RedisURL and returns a client whose dial, read and
// write operations are bounded by cfg.RedisTimeout.
func NewClient(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if cfg.RedisTimeout > 0 {
		opts.DialTimeout = cfg.RedisTimeout
		opts.ReadTimeout = cfg.RedisTimeout
		opts.WriteTimeout = cfg.RedisTimeout
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}
