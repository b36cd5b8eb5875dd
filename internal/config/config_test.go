package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("ACCESS_TOKEN_TTL", "")
	t.Setenv("REFRESH_TOKEN_TTL", "")
	t.Setenv("VERIFY_CODE_TTL", "")
	t.Setenv("EXPOSE_VERIFY_CODE", "")

	cfg := Load()
	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, 5*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.RefreshTokenTTL)
	assert.Equal(t, 5*time.Minute, cfg.VerifyCodeTTL)
	assert.True(t, cfg.ExposeVerifyCode)
	assert.Greater(t, cfg.HashWorkers, 0)
}

func TestLoad_JWTSecretFallsBackToDecodingKey(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("JWT_DECODING_KEY", "legacy-key")
	assert.Equal(t, "legacy-key", Load().JWTSecret)

	t.Setenv("JWT_SECRET", "primary")
	assert.Equal(t, "primary", Load().JWTSecret)
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("X_DUR", "90s")
	assert.Equal(t, 90*time.Second, getEnvDuration("X_DUR", time.Minute))

	t.Setenv("X_DUR", "300")
	assert.Equal(t, 300*time.Second, getEnvDuration("X_DUR", time.Minute))

	t.Setenv("X_DUR", "garbage")
	assert.Equal(t, time.Minute, getEnvDuration("X_DUR", time.Minute))
}

func TestLoad_ProductionHidesVerifyCode(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("EXPOSE_VERIFY_CODE", "")
	assert.False(t, Load().ExposeVerifyCode)
}
