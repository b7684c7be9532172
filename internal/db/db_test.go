package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paywallet/internal/model"
)

func TestOpen_UnsupportedDriver(t *testing.T) {
	gormDB, err := Open("oracle", "dsn")
	assert.Error(t, err)
	assert.Nil(t, gormDB)
}

func TestOpen_SQLiteMigrateResetClose(t *testing.T) {
	gormDB, err := Open(DriverSQLite, "file::memory:")
	require.NoError(t, err)

	require.NoError(t, Migrate(gormDB))
	assert.True(t, gormDB.Migrator().HasTable(&model.User{}))
	assert.True(t, gormDB.Migrator().HasTable(&model.Account{}))

	require.NoError(t, Reset(gormDB))
	assert.False(t, gormDB.Migrator().HasTable(&model.User{}))
	assert.False(t, gormDB.Migrator().HasTable(&model.Account{}))

	assert.NoError(t, Close(gormDB))
}

func TestOpenWithRetry(t *testing.T) {
	ctx := context.Background()

	_, err := OpenWithRetry(ctx, "oracle", "dsn", 3)
	assert.ErrorContains(t, err, "unsupported")

	_, err = OpenWithRetry(ctx, DriverMySQL, "not a dsn", 0)
	assert.Error(t, err)

	gormDB, err := OpenWithRetry(ctx, DriverSQLite, "file::memory:", 2)
	require.NoError(t, err)
	assert.NoError(t, Close(gormDB))
}
