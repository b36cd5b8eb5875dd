package verification

import (
	"context"
	"fmt"
	"time"

	"github.com/go-authix/internal/domain"
	"github.com/go-authix/internal/pkg/token"
)

const (
	codeKeyPrefix = "user:verify:code:"
	flagKeyPrefix = "user:register:flag:"
	codeDigits    = 6

	// DefaultTTL is how long a code and a registration eligibility flag stay valid.
	DefaultTTL = 5 * time.Minute
)

type cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	SetEx(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	CompareAndDelete(ctx context.Context, key, expected string) (bool, error)
	CompareAndDeleteSet(ctx context.Context, key, expected, setKey, value string, ttl time.Duration) (bool, error)
}

// Ledger issues single-use six-digit codes per identifier and records which
// identifiers have proven control of their contact for registration.
type Ledger struct {
	cache cache
	ttl   time.Duration
}

func NewLedger(c cache, ttl time.Duration) *Ledger {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Ledger{cache: c, ttl: ttl}
}

// Send generates a fresh code for identifier, replacing any live one.
func (l *Ledger) Send(ctx context.Context, identifier string) (string, error) {
	code, err := token.NumericCode(codeDigits)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrInfrastructure, err)
	}
	if err := l.cache.SetEx(ctx, codeKeyPrefix+identifier, code, l.ttl); err != nil {
		return "", err
	}
	return code, nil
}

// Verify consumes the live code for identifier if it equals candidate. A
// missing or mismatched code yields false with no error. In the register
// scene a successful match also grants registration eligibility.
func (l *Ledger) Verify(ctx context.Context, identifier, candidate string, scene domain.Scene) (bool, error) {
	if scene != domain.SceneLogin && scene != domain.SceneRegister {
		return false, fmt.Errorf("%q: %w", scene, domain.ErrUnknownScene)
	}
	if candidate == "" {
		return false, nil
	}
	if scene == domain.SceneRegister {
		// consume the code and grant eligibility in one step
		return l.cache.CompareAndDeleteSet(ctx, codeKeyPrefix+identifier, candidate, flagKeyPrefix+identifier, "1", l.ttl)
	}
	return l.cache.CompareAndDelete(ctx, codeKeyPrefix+identifier, candidate)
}

// Eligible reports whether identifier completed a register-scene verification
// within the TTL window.
func (l *Ledger) Eligible(ctx context.Context, identifier string) (bool, error) {
	_, ok, err := l.cache.Get(ctx, flagKeyPrefix+identifier)
	return ok, err
}

func (l *Ledger) ClearEligibility(ctx context.Context, identifier string) error {
	return l.cache.Del(ctx, flagKeyPrefix+identifier)
}
