package redisinfra

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-authix/internal/domain"
	"github.com/redis/go-redis/v9"
)

// compareAndDelete removes KEYS[1] only when it still holds ARGV[1].
var compareAndDelete = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// compareAndDeleteSet removes KEYS[1] only when it still holds ARGV[1] and,
// in the same step, stores ARGV[2] at KEYS[2] for ARGV[3] milliseconds.
var compareAndDeleteSet = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	redis.call("DEL", KEYS[1])
	redis.call("SET", KEYS[2], ARGV[2], "PX", ARGV[3])
	return 1
end
return 0
`)

// Cache is the key-value and sorted-set view of Redis used by the auth core.
// A missing key is reported as absent, never as an error. Every other failure
// wraps domain.ErrInfrastructure.
type Cache struct {
	client redis.UniversalClient
}

func NewCache(client redis.UniversalClient) *Cache {
	return &Cache{client: client}
}

// Get returns the value at key and whether it was present.
func (c *Cache) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, wrap("get", err)
	}
	return v, true, nil
}

// SetEx stores value at key with the given time-to-live, replacing any previous value.
func (c *Cache) SetEx(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return wrap("set", err)
	}
	return nil
}

func (c *Cache) Del(ctx context.Context, keys ...string) error {
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return wrap("del", err)
	}
	return nil
}

// CompareAndDelete atomically deletes key if its value equals expected.
// It reports whether the key was deleted.
func (c *Cache) CompareAndDelete(ctx context.Context, key, expected string) (bool, error) {
	n, err := compareAndDelete.Run(ctx, c.client, []string{key}, expected).Int64()
	if err != nil {
		return false, wrap("compare-and-delete", err)
	}
	return n == 1, nil
}

// CompareAndDeleteSet atomically deletes key if its value equals expected and
// stores value at setKey with the given TTL. Neither write happens on a
// mismatch. It reports whether the key was deleted.
func (c *Cache) CompareAndDeleteSet(ctx context.Context, key, expected, setKey, value string, ttl time.Duration) (bool, error) {
	n, err := compareAndDeleteSet.Run(ctx, c.client, []string{key, setKey}, expected, value, ttl.Milliseconds()).Int64()
	if err != nil {
		return false, wrap("compare-and-delete-set", err)
	}
	return n == 1, nil
}

// ZAdd inserts or re-scores member in the sorted set at key.
func (c *Cache) ZAdd(ctx context.Context, key, member string, score float64) error {
	if err := c.client.ZAdd(ctx, key, redis.Z{Score: score, Member: member}).Err(); err != nil {
		return wrap("zadd", err)
	}
	return nil
}

func (c *Cache) ZRem(ctx context.Context, key string, members ...string) error {
	args := make([]interface{}, len(members))
	for i, m := range members {
		args[i] = m
	}
	if err := c.client.ZRem(ctx, key, args...).Err(); err != nil {
		return wrap("zrem", err)
	}
	return nil
}

// ZRemRangeByScore removes members with min <= score <= max. Bounds use Redis
// range syntax ("-inf", "(5", "10").
func (c *Cache) ZRemRangeByScore(ctx context.Context, key, min, max string) (int64, error) {
	n, err := c.client.ZRemRangeByScore(ctx, key, min, max).Result()
	if err != nil {
		return 0, wrap("zremrangebyscore", err)
	}
	return n, nil
}

func (c *Cache) ZCount(ctx context.Context, key, min, max string) (int64, error) {
	n, err := c.client.ZCount(ctx, key, min, max).Result()
	if err != nil {
		return 0, wrap("zcount", err)
	}
	return n, nil
}

// ZRangeByScore returns members in ascending score order, skipping offset and
// returning at most count entries.
func (c *Cache) ZRangeByScore(ctx context.Context, key, min, max string, offset, count int64) ([]string, error) {
	members, err := c.client.ZRangeByScore(ctx, key, &redis.ZRangeBy{
		Min:    min,
		Max:    max,
		Offset: offset,
		Count:  count,
	}).Result()
	if err != nil {
		return nil, wrap("zrangebyscore", err)
	}
	return members, nil
}

// ScoreExclusive renders score as an exclusive range bound.
func ScoreExclusive(score int64) string { return "(" + strconv.FormatInt(score, 10) }

// Score renders score as an inclusive range bound.
func Score(score int64) string { return strconv.FormatInt(score, 10) }

func wrap(op string, err error) error {
	return fmt.Errorf("redis %s: %w: %w", op, domain.ErrInfrastructure, err)
}
