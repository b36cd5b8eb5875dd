package domain

import (
	"fmt"
	"strings"
	"time"
)

// StrategyKind names a login/registration method.
type StrategyKind string

const (
	StrategyPassword StrategyKind = "password"
	StrategySMS      StrategyKind = "sms"
	StrategyEmail    StrategyKind = "email"
)

// ParseStrategyKind maps a wire tag onto a StrategyKind. Matching is case-insensitive.
func ParseStrategyKind(s string) (StrategyKind, error) {
	switch k := StrategyKind(strings.ToLower(strings.TrimSpace(s))); k {
	case StrategyPassword, StrategySMS, StrategyEmail:
		return k, nil
	}
	return "", fmt.Errorf("%q: %w", s, ErrUnknownStrategy)
}

// Scene is the purpose a verification code is consumed for.
type Scene string

const (
	SceneLogin    Scene = "login"
	SceneRegister Scene = "register"
)

// ParseScene maps a wire tag onto a Scene. Matching is case-insensitive.
func ParseScene(s string) (Scene, error) {
	switch sc := Scene(strings.ToLower(strings.TrimSpace(s))); sc {
	case SceneLogin, SceneRegister:
		return sc, nil
	}
	return "", fmt.Errorf("%q: %w", s, ErrUnknownScene)
}

type TokenType string

const (
	TokenAccess  TokenType = "access"
	TokenRefresh TokenType = "refresh"
)

// TokenClaims is the verified content of a bearer token.
type TokenClaims struct {
	ID        string
	Subject   string
	TenantID  string
	TokenType TokenType
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenPair is returned by a successful login or refresh. Timestamps are
// milliseconds since the Unix epoch; ExpiresAt is the access token expiry.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    int64  `json:"exp"`
	IssuedAt     int64  `json:"iat"`
}

type LoginRequest struct {
	LoginType  string `json:"login_type" validate:"required"`
	Identifier string `json:"identifier" validate:"required"`
	Credential string `json:"credential" validate:"required"`
}

type RegisterRequest struct {
	RegisterType string `json:"register_type" validate:"required"`
	Identifier   string `json:"identifier" validate:"required"`
	Credential   string `json:"credential" validate:"required"`
}

type SendCodeRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	VerifyType string `json:"verify_type" validate:"required"`
}

type VerifyCodeRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Credential string `json:"credential" validate:"required"`
	VerifyType string `json:"verify_type" validate:"required"`
}
