package main

import (
	"context"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paywallet/internal/auth"
	"paywallet/internal/cache"
	"paywallet/internal/config"
	"paywallet/internal/db"
	"paywallet/internal/repository"
	"paywallet/internal/service"
	"paywallet/internal/validate"
)

func newSeedService(t *testing.T) (service.AuthService, service.UserService) {
	t.Helper()
	gormDB, err := db.Open(db.DriverSQLite, "file::memory:")
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gormDB))
	t.Cleanup(func() { _ = db.Close(gormDB) })

	client := cache.New(miniredis.RunT(t).Addr(), "", 0)
	store := repository.NewStore(gormDB)
	return service.NewAuthService(store, auth.NewJWTService("seed-secret", 0), auth.NewTokenStore(client)),
		service.NewUserService(store, client, 0)
}

func TestSeedUsers(t *testing.T) {
	users, err := decodeUsers(strings.NewReader(`[
		{"username": "Jane@Example.com", "password": "secret1", "firstName": "Jane", "lastName": "Doe"},
		{"username": "jane@example.com", "password": "secret1", "firstName": "Jane", "lastName": "Again"},
		{"username": "not-an-email", "password": "secret1", "firstName": "No", "lastName": "Mail"},
		{"username": "john@example.com", "password": "secret1", "firstName": "John", "lastName": "Smith"}
	]`))
	require.NoError(t, err)
	require.Len(t, users, 4)

	authService, userService := newSeedService(t)
	ctx := context.Background()

	created, skipped, err := seedUsers(ctx, authService, validate.New(), users)
	require.NoError(t, err)
	assert.Equal(t, 2, created)
	assert.Equal(t, 2, skipped)

	// running again only skips
	created, skipped, err = seedUsers(ctx, authService, validate.New(), users)
	require.NoError(t, err)
	assert.Equal(t, 0, created)
	assert.Equal(t, 4, skipped)

	all, err := userService.Search(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestDecodeUsers_Malformed(t *testing.T) {
	_, err := decodeUsers(strings.NewReader(`{"username":`))
	assert.Error(t, err)
}

func TestLoadUsers_BundledFile(t *testing.T) {
	users, err := loadUsers("users.json")
	require.NoError(t, err)
	assert.NotEmpty(t, users)
}

func TestRun_SQLite(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := &config.Config{
		DBDriver:    db.DriverSQLite,
		DatabaseDSN: "file::memory:",
		RedisAddr:   mr.Addr(),
		JWTSecret:   "seed-secret",
	}

	require.NoError(t, run(context.Background(), cfg, "users.json"))
	assert.Error(t, run(context.Background(), cfg, "missing.json"))
}
