package session

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-authix/internal/domain"
	redisinfra "github.com/go-authix/internal/infrastructure/redis"
)

const onlineKey = "user:online"

type cache interface {
	ZAdd(ctx context.Context, key, member string, score float64) error
	ZRem(ctx context.Context, key string, members ...string) error
	ZRemRangeByScore(ctx context.Context, key, min, max string) (int64, error)
	ZCount(ctx context.Context, key, min, max string) (int64, error)
	ZRangeByScore(ctx context.Context, key, min, max string, offset, count int64) ([]string, error)
}

// Accounting tracks which users hold a live access token. Each user has one
// entry scored by access-token expiry in Unix milliseconds; entries at or
// before now are pruned lazily on read.
type Accounting struct {
	cache cache
	now   func() time.Time
}

func NewAccounting(c cache) *Accounting {
	return &Accounting{cache: c, now: time.Now}
}

// Record upserts the entry for userID with the given expiry.
func (a *Accounting) Record(ctx context.Context, userID uint64, expiry time.Time) error {
	return a.cache.ZAdd(ctx, onlineKey, member(userID), float64(expiry.UnixMilli()))
}

func (a *Accounting) Remove(ctx context.Context, userID uint64) error {
	return a.cache.ZRem(ctx, onlineKey, member(userID))
}

// Count returns the number of entries whose expiry is after now.
func (a *Accounting) Count(ctx context.Context) (uint64, error) {
	now := a.now().UnixMilli()
	if err := a.prune(ctx, now); err != nil {
		return 0, err
	}
	n, err := a.cache.ZCount(ctx, onlineKey, redisinfra.ScoreExclusive(now), "+inf")
	if err != nil {
		return 0, err
	}
	return uint64(n), nil
}

// Page returns live user ids ordered by ascending expiry. page is 1-based.
func (a *Accounting) Page(ctx context.Context, page, pageSize int) (*domain.PageResult[uint64], error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		return nil, fmt.Errorf("page size must be positive: %w", domain.ErrValidation)
	}
	now := a.now().UnixMilli()
	if err := a.prune(ctx, now); err != nil {
		return nil, err
	}
	minScore := redisinfra.ScoreExclusive(now)
	total, err := a.cache.ZCount(ctx, onlineKey, minScore, "+inf")
	if err != nil {
		return nil, err
	}
	members, err := a.cache.ZRangeByScore(ctx, onlineKey, minScore, "+inf", int64(page-1)*int64(pageSize), int64(pageSize))
	if err != nil {
		return nil, err
	}
	ids := make([]uint64, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseUint(m, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return &domain.PageResult[uint64]{Total: uint64(total), Records: ids}, nil
}

func (a *Accounting) prune(ctx context.Context, now int64) error {
	_, err := a.cache.ZRemRangeByScore(ctx, onlineKey, "-inf", redisinfra.Score(now))
	return err
}

func member(userID uint64) string { return strconv.FormatUint(userID, 10) }
