package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-authix/internal/application/notification"
	"github.com/go-authix/internal/config"
	"github.com/go-authix/internal/infrastructure/dynamo"
	jwtinfra "github.com/go-authix/internal/infrastructure/jwt"
	redisinfra "github.com/go-authix/internal/infrastructure/redis"
	"github.com/go-authix/internal/infrastructure/smtp"
	"github.com/go-authix/internal/infrastructure/sns"
	"github.com/go-authix/internal/infrastructure/sqlite"
	"github.com/go-authix/internal/pkg/password"
	transporthttp "github.com/go-authix/internal/transport/http"
	"github.com/joho/godotenv"
)

func main() {
	envErr := godotenv.Load()
	cfg := config.Load()
	setupLogger(cfg)
	if envErr != nil {
		slog.Info("no .env file found, reading from environment")
	}

	ctx := context.Background()

	userRepo, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		fatal("credential store unavailable", err)
	}
	defer closeStore()

	redisClient, err := redisinfra.NewClient(ctx, cfg)
	if err != nil {
		fatal("redis unavailable", err)
	}
	defer redisClient.Close()

	jwtProvider, err := jwtinfra.NewProvider(cfg.JWTSecret)
	if err != nil {
		fatal("JWT provider not available", err)
	}

	notifier := notification.NewService(notification.ServiceDeps{
		SMSSender: newSMSSender(ctx, cfg),
		Mailer:    newMailer(cfg),
		CodeTTL:   cfg.VerifyCodeTTL,
	})

	deps := &transporthttp.Deps{
		UserRepo: userRepo,
		Cache:    redisinfra.NewCache(redisClient),
		Codec:    jwtProvider,
		Hasher:   password.NewHasher(password.DefaultParams, cfg.HashWorkers),
		Notifier: notifier,
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.AppPort, "env", cfg.AppEnv, "store", cfg.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fatal("server error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}
	slog.Info("server stopped")
}

func setupLogger(cfg *config.Config) {
	var h slog.Handler
	if cfg.IsDevelopment() {
		h = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	} else {
		h = slog.NewJSONHandler(os.Stdout, nil)
	}
	slog.SetDefault(slog.New(h))
}

// openStore selects the credential store named by STORE_DRIVER.
func openStore(ctx context.Context, cfg *config.Config) (transporthttp.UserStore, func(), error) {
	switch cfg.StoreDriver {
	case "sqlite":
		repo, err := sqlite.NewUserRepo(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return repo, func() { _ = repo.Close() }, nil
	case "dynamo":
		client, err := dynamo.NewClient(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		// Creates the tables if they don't exist.
		dynamo.Bootstrap(ctx, client, cfg.DynamoTables)
		return dynamo.NewUserRepo(client, cfg.DynamoTables), func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
}

// newSMSSender returns nil when SNS cannot be configured; codes for phone
// identifiers are then logged as undelivered.
func newSMSSender(ctx context.Context, cfg *config.Config) notification.SMSSender {
	sender, err := sns.NewSender(ctx, cfg)
	if err != nil {
		slog.Warn("SNS sender not available", "error", err)
		return nil
	}
	return sender
}

func newMailer(cfg *config.Config) notification.Mailer {
	if cfg.SMTPHost == "" {
		slog.Warn("SMTP_HOST not set, email codes will not be delivered")
		return nil
	}
	return smtp.NewMailer(cfg)
}

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}
