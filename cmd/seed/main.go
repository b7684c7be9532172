package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"paywallet/internal/auth"
	"paywallet/internal/cache"
	"paywallet/internal/config"
	"paywallet/internal/db"
	apperrors "paywallet/internal/errors"
	"paywallet/internal/handler"
	"paywallet/internal/logging"
	"paywallet/internal/repository"
	"paywallet/internal/service"
	"paywallet/internal/validate"
)

func main() {
	file := flag.String("file", getEnv("SEED_FILE", "cmd/seed/users.json"), "JSON file with the demo users to provision")
	flag.Parse()

	cfg := config.Load()
	logging.New(cfg.LogLevel)

	if err := run(context.Background(), cfg, *file); err != nil {
		slog.Error("seed failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, file string) error {
	slog.Info("starting seed script", "file", file)

	users, err := loadUsers(file)
	if err != nil {
		return fmt.Errorf("load seed users: %w", err)
	}
	slog.Info("loaded seed users", "count", len(users))

	gormDB, err := db.OpenWithRetry(ctx, cfg.DBDriver, cfg.DatabaseDSN, uint64(max(cfg.DBRetries, 0)))
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer func() {
		if err := db.Close(gormDB); err != nil {
			slog.Warn("close database", "error", err)
		}
	}()

	// Run migrations to ensure schema is up to date
	if err := db.Migrate(gormDB); err != nil {
		return err
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer func() {
		if err := cacheClient.Close(); err != nil {
			slog.Warn("close redis", "error", err)
		}
	}()

	authService := service.NewAuthService(
		repository.NewStore(gormDB),
		auth.NewJWTService(cfg.JWTSecret, cfg.TokenTTL),
		auth.NewTokenStore(cacheClient),
	)

	created, skipped, err := seedUsers(ctx, authService, validate.New(), users)
	if err != nil {
		return fmt.Errorf("seed users (created %d): %w", created, err)
	}

	slog.Info("seed completed", "created", created, "skipped", skipped, "total", len(users))
	return nil
}

// loadUsers reads the seed file into signup payloads.
func loadUsers(path string) ([]handler.SignupRequest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()
	return decodeUsers(f)
}

func decodeUsers(r io.Reader) ([]handler.SignupRequest, error) {
	var users []handler.SignupRequest
	if err := json.NewDecoder(r).Decode(&users); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	return users, nil
}

// seedUsers signs up every valid entry. Invalid entries and handles that
// already exist are skipped.
func seedUsers(ctx context.Context, svc service.AuthService, v *validate.CustomValidator, users []handler.SignupRequest) (created int, skipped int, err error) {
	for _, u := range users {
		u.Username = validate.NormalizeUsername(u.Username)
		u.FirstName = validate.NormalizeName(u.FirstName)
		u.LastName = validate.NormalizeName(u.LastName)

		if err := v.Validate(&u); err != nil {
			slog.Warn("skipping invalid seed user", "username", u.Username, "error", err)
			skipped++
			continue
		}

		_, _, err := svc.Signup(ctx, service.SignupInput{
			Username:  u.Username,
			Password:  u.Password,
			FirstName: u.FirstName,
			LastName:  u.LastName,
		})
		if errors.Is(err, apperrors.ErrUserAlreadyExists) {
			slog.Info("user already exists", "username", u.Username)
			skipped++
			continue
		}
		if err != nil {
			return created, skipped, fmt.Errorf("signup %s: %w", u.Username, err)
		}
		created++
	}
	return created, skipped, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
