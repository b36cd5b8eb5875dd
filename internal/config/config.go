package config

import (
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort        string
	AppEnv         string
	AllowedOrigins []string // CORS allowed origins

	StoreDriver string // "dynamo" | "sqlite"
	SQLitePath  string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables

	RedisURL     string
	RedisTimeout time.Duration

	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	VerifyCodeTTL   time.Duration

	DefaultTenantID  uint64
	HashWorkers      int
	ExposeVerifyCode bool

	SMTPHost     string
	SMTPPort     string
	SMTPFrom     string
	SMTPUsername string
	SMTPPassword string
	SNSRegion    string
}

// DynamoTables holds the DynamoDB table names used by the credential store.
type DynamoTables struct {
	Users           string
	UserIdentifiers string
	Counters        string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	appEnv := getEnv("APP_ENV", "development")
	return &Config{
		AppPort:        getEnv("APP_PORT", "3000"),
		AppEnv:         appEnv,
		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
		StoreDriver:    getEnv("STORE_DRIVER", "dynamo"),
		SQLitePath:     getEnv("SQLITE_PATH", "./authix.db"),
		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Users:           getEnv("DYNAMO_TABLE_USERS", "users"),
			UserIdentifiers: getEnv("DYNAMO_TABLE_USER_IDENTIFIERS", "user_identifiers"),
			Counters:        getEnv("DYNAMO_TABLE_COUNTERS", "counters"),
		},
		RedisURL:         getEnv("REDIS_URL", "redis://localhost:6379/0"),
		RedisTimeout:     getEnvDuration("REDIS_TIMEOUT", 2*time.Second),
		JWTSecret:        getEnv("JWT_SECRET", os.Getenv("JWT_DECODING_KEY")),
		AccessTokenTTL:   getEnvDuration("ACCESS_TOKEN_TTL", 5*time.Minute),
		RefreshTokenTTL:  getEnvDuration("REFRESH_TOKEN_TTL", 7*24*time.Hour),
		VerifyCodeTTL:    getEnvDuration("VERIFY_CODE_TTL", 5*time.Minute),
		DefaultTenantID:  uint64(getEnvInt("DEFAULT_TENANT_ID", 0)),
		HashWorkers:      getEnvInt("HASH_WORKERS", runtime.NumCPU()),
		ExposeVerifyCode: getEnvBool("EXPOSE_VERIFY_CODE", appEnv == "development"),
		SMTPHost:         getEnv("SMTP_HOST", "localhost"),
		SMTPPort:         getEnv("SMTP_PORT", "1025"),
		SMTPFrom:         getEnv("SMTP_FROM", "noreply@example.com"),
		SMTPUsername:     getEnv("SMTP_USERNAME", ""),
		SMTPPassword:     getEnv("SMTP_PASSWORD", ""),
		SNSRegion:        getEnv("SNS_REGION", "us-east-1"),
	}
}

// IsDevelopment reports whether the service runs with development defaults.
func (c *Config) IsDevelopment() bool { return c.AppEnv == "development" }

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// getEnvDuration accepts Go duration strings ("5m", "168h") or a bare number of seconds.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
