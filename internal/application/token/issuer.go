package token

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-authix/internal/domain"
	"github.com/go-authix/internal/pkg/id"
)

const sessionTokenKeyPrefix = "user:session:token:"

const (
	DefaultAccessTTL  = 5 * time.Minute
	DefaultRefreshTTL = 7 * 24 * time.Hour
)

type jwtCodec interface {
	Sign(c domain.TokenClaims) (string, error)
	Verify(token string) (*domain.TokenClaims, error)
}

type cache interface {
	SetEx(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

type sessionRecorder interface {
	Record(ctx context.Context, userID uint64, expiry time.Time) error
	Remove(ctx context.Context, userID uint64) error
}

// Issuer mints, verifies, refreshes and revokes access/refresh token pairs.
type Issuer struct {
	codec      jwtCodec
	cache      cache
	sessions   sessionRecorder
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

type IssuerDeps struct {
	Codec      jwtCodec
	Cache      cache
	Sessions   sessionRecorder
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

func NewIssuer(deps IssuerDeps) *Issuer {
	i := &Issuer{
		codec:      deps.Codec,
		cache:      deps.Cache,
		sessions:   deps.Sessions,
		accessTTL:  deps.AccessTTL,
		refreshTTL: deps.RefreshTTL,
		now:        time.Now,
	}
	if i.accessTTL <= 0 {
		i.accessTTL = DefaultAccessTTL
	}
	if i.refreshTTL <= 0 {
		i.refreshTTL = DefaultRefreshTTL
	}
	return i
}

// Issue mints an access and a refresh token sharing one issued-at instant,
// registers the access token as the user's revocable session and records the
// user as online until the access token expires.
func (i *Issuer) Issue(ctx context.Context, subject, tenantID string) (*domain.TokenPair, error) {
	userID, err := parseSubject(subject)
	if err != nil {
		return nil, err
	}
	iat := i.issuedAt()
	access, accessExp, err := i.sign(subject, tenantID, domain.TokenAccess, iat, i.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, _, err := i.sign(subject, tenantID, domain.TokenRefresh, iat, i.refreshTTL)
	if err != nil {
		return nil, err
	}
	if err := i.register(ctx, userID, access, accessExp); err != nil {
		return nil, err
	}
	return &domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    accessExp.UnixMilli(),
		IssuedAt:     iat.UnixMilli(),
	}, nil
}

// Refresh exchanges a valid refresh token for a new access token whose
// issued-at is strictly later than the refresh token's. The refresh token is
// returned unchanged.
func (i *Issuer) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	claims, err := i.Verify(refreshToken, domain.TokenRefresh)
	if err != nil {
		return nil, err
	}
	userID, err := parseSubject(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrUnauthorized, err)
	}
	// The new access token must postdate the pair it was refreshed from.
	iat := i.issuedAt()
	if !iat.After(claims.IssuedAt) {
		iat = claims.IssuedAt.Add(time.Millisecond)
	}
	access, accessExp, err := i.sign(claims.Subject, claims.TenantID, domain.TokenAccess, iat, i.accessTTL)
	if err != nil {
		return nil, err
	}
	if err := i.register(ctx, userID, access, accessExp); err != nil {
		return nil, err
	}
	return &domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refreshToken,
		ExpiresAt:    accessExp.UnixMilli(),
		IssuedAt:     iat.UnixMilli(),
	}, nil
}

// Verify checks signature and expiry and that the token is of the expected type.
func (i *Issuer) Verify(token string, expected domain.TokenType) (*domain.TokenClaims, error) {
	claims, err := i.codec.Verify(token)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != expected {
		return nil, fmt.Errorf("expected %s token, got %q: %w", expected, claims.TokenType, domain.ErrUnauthorized)
	}
	return claims, nil
}

// Revoke drops the user's revocable session and online entry. Tokens already
// handed out stay cryptographically valid until they expire.
func (i *Issuer) Revoke(ctx context.Context, userID uint64) error {
	if err := i.cache.Del(ctx, sessionTokenKeyPrefix+strconv.FormatUint(userID, 10)); err != nil {
		return err
	}
	return i.sessions.Remove(ctx, userID)
}

func (i *Issuer) issuedAt() time.Time {
	return time.UnixMilli(i.now().UnixMilli())
}

func (i *Issuer) sign(subject, tenantID string, typ domain.TokenType, iat time.Time, ttl time.Duration) (string, time.Time, error) {
	exp := iat.Add(ttl)
	tok, err := i.codec.Sign(domain.TokenClaims{
		ID:        id.New(iat),
		Subject:   subject,
		TenantID:  tenantID,
		TokenType: typ,
		IssuedAt:  iat,
		ExpiresAt: exp,
	})
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign %s token: %w", typ, err)
	}
	return tok, exp, nil
}

func (i *Issuer) register(ctx context.Context, userID uint64, access string, exp time.Time) error {
	if err := i.cache.SetEx(ctx, sessionTokenKeyPrefix+strconv.FormatUint(userID, 10), access, i.accessTTL); err != nil {
		return err
	}
	return i.sessions.Record(ctx, userID, exp)
}

func parseSubject(subject string) (uint64, error) {
	userID, err := strconv.ParseUint(subject, 10, 64)
	if err != nil || userID == 0 {
		return 0, fmt.Errorf("invalid subject %q: %w", subject, domain.ErrValidation)
	}
	return userID, nil
}
