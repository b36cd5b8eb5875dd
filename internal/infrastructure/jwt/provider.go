package jwtinfra

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-authix/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

func init() {
	// iat/exp are carried with millisecond precision.
	jwt.TimePrecision = time.Millisecond
}

// Claims holds the JWT payload fields.
type Claims struct {
	TenantID  string           `json:"tenant_id"`
	TokenType domain.TokenType `json:"token_type"`
	jwt.RegisteredClaims
}

// Provider signs and verifies HS256 JWTs with a shared secret.
type Provider struct {
	secret []byte
	parser *jwt.Parser
}

func NewProvider(secret string) (*Provider, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is empty")
	}
	return &Provider{
		secret: []byte(secret),
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithExpirationRequired(),
		),
	}, nil
}

func (p *Provider) Sign(c domain.TokenClaims) (string, error) {
	claims := Claims{
		TenantID:  c.TenantID,
		TokenType: c.TokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        c.ID,
			Subject:   c.Subject,
			IssuedAt:  jwt.NewNumericDate(c.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(c.ExpiresAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString(p.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return s, nil
}

// Verify checks signature, algorithm and expiry. Any failure wraps domain.ErrUnauthorized.
func (p *Provider) Verify(tokenStr string) (*domain.TokenClaims, error) {
	var claims Claims
	token, err := p.parser.ParseWithClaims(tokenStr, &claims, func(*jwt.Token) (interface{}, error) {
		return p.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrUnauthorized, err)
	}
	if !token.Valid || claims.Subject == "" || claims.IssuedAt == nil {
		return nil, fmt.Errorf("invalid token claims: %w", domain.ErrUnauthorized)
	}
	return &domain.TokenClaims{
		ID:        claims.ID,
		Subject:   claims.Subject,
		TenantID:  claims.TenantID,
		TokenType: claims.TokenType,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
