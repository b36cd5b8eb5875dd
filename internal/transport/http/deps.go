package http

import (
	"context"
	"time"

	"github.com/go-authix/internal/domain"
)

// UserStore is the credential store the router requires. Both the DynamoDB and
// SQLite repositories satisfy it.
type UserStore interface {
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByPhone(ctx context.Context, phone string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) (*domain.User, error)
	UpdateLastLogin(ctx context.Context, userID uint64) (*domain.User, error)
	Delete(ctx context.Context, userID uint64) error
	GetProfile(ctx context.Context, userID uint64) (*domain.Profile, error)
	GetProfiles(ctx context.Context, ids []uint64) ([]domain.Profile, error)
}

// Cache is the shared key/value and sorted-set store backing codes and sessions.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	SetEx(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	CompareAndDelete(ctx context.Context, key, expected string) (bool, error)
	CompareAndDeleteSet(ctx context.Context, key, expected, setKey, value string, ttl time.Duration) (bool, error)
	ZAdd(ctx context.Context, key, member string, score float64) error
	ZRem(ctx context.Context, key string, members ...string) error
	ZRemRangeByScore(ctx context.Context, key, min, max string) (int64, error)
	ZCount(ctx context.Context, key, min, max string) (int64, error)
	ZRangeByScore(ctx context.Context, key, min, max string, offset, count int64) ([]string, error)
}

// TokenCodec signs and verifies JWTs.
type TokenCodec interface {
	Sign(c domain.TokenClaims) (string, error)
	Verify(token string) (*domain.TokenClaims, error)
}

// PasswordHasher hashes and checks credentials.
type PasswordHasher interface {
	Hash(ctx context.Context, plain string) (string, error)
	Verify(ctx context.Context, plain, encoded string) (bool, error)
}

// CodeNotifier delivers verification codes.
type CodeNotifier interface {
	SendCode(ctx context.Context, kind domain.StrategyKind, identifier, code string) error
}
