package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/labstack/echo/v4"

	"paywallet/internal/auth"
	"paywallet/internal/cache"
	"paywallet/internal/config"
	"paywallet/internal/db"
	"paywallet/internal/handler"
	"paywallet/internal/logging"
	"paywallet/internal/repository"
	"paywallet/internal/router"
	"paywallet/internal/service"
)

// @title Paywallet API
// @version 1.0
// @description User accounts with an opening balance, JWT sessions and a name directory.
// @host localhost:8080
// @BasePath /api/v1/user
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()
	logging.New(cfg.LogLevel)

	if cfg.InsecureSecret() {
		slog.Warn("JWT_SECRET is not set, using the built-in development secret")
	}

	gormDB, err := db.OpenWithRetry(context.Background(), cfg.DBDriver, cfg.DatabaseDSN, uint64(max(cfg.DBRetries, 0)))
	if err != nil {
		slog.Error("database init", "error", err)
		os.Exit(1)
	}

	if cfg.ResetDB {
		slog.Warn("RESET_DB=true detected, dropping all tables")
		if err := db.Reset(gormDB); err != nil {
			slog.Warn("failed to drop tables", "error", err)
		}
	}

	if err := db.Migrate(gormDB); err != nil {
		slog.Error("database migration", "error", err)
		os.Exit(1)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err := cacheClient.Ping(context.Background()); err != nil {
		slog.Warn("redis unavailable, caching and token revocation degraded", "addr", cfg.RedisAddr, "error", err)
	}

	store := repository.NewStore(gormDB)

	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.TokenTTL)
	tokenStore := auth.NewTokenStore(cacheClient)

	authService := service.NewAuthService(store, jwtService, tokenStore)
	userService := service.NewUserService(store, cacheClient, cfg.SearchLimit)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	router.Register(
		e,
		cfg,
		handler.NewAuthHandler(authService),
		handler.NewUserHandler(userService),
		jwtService,
		tokenStore,
	)

	slog.Info("swagger documentation available", "url", swaggerURL(cfg))

	go func() {
		addr := ":" + cfg.ServerPort
		slog.Info("server starting", "addr", addr, "env", cfg.Env, "db_driver", cfg.DBDriver)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		slog.Error("server forced shutdown", "error", err)
	}
	if err := cacheClient.Close(); err != nil {
		slog.Warn("close redis", "error", err)
	}
	if err := db.Close(gormDB); err != nil {
		slog.Warn("close database", "error", err)
	}

	slog.Info("server stopped")
}

func swaggerURL(cfg *config.Config) string {
	host := cfg.SwaggerHost
	if host == "" {
		host = "localhost:" + cfg.ServerPort
	}
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "http://" + host
	}
	return host + "/swagger/index.html"
}
