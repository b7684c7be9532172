package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paywallet/internal/cache"
)

func TestJWTService_RoundTripWithoutExpiry(t *testing.T) {
	svc := NewJWTService("test-secret", 0)
	userID := uuid.New()

	token, err := svc.GenerateToken(userID)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.SubjectID())
	assert.NotEmpty(t, claims.ID)
	assert.Nil(t, claims.ExpiresAt)
	assert.Equal(t, time.Duration(0), claims.RemainingTTL(time.Now()))
}

func TestJWTService_TokensAreUnique(t *testing.T) {
	svc := NewJWTService("test-secret", 0)
	userID := uuid.New()

	first, err := svc.GenerateToken(userID)
	require.NoError(t, err)
	second, err := svc.GenerateToken(userID)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestJWTService_Expiry(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour)
	issued := time.Now()
	svc.now = func() time.Time { return issued }

	token, err := svc.GenerateToken(uuid.New())
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	require.NotNil(t, claims.ExpiresAt)
	assert.InDelta(t, time.Hour.Seconds(), claims.RemainingTTL(issued).Seconds(), 1)

	svc.now = func() time.Time { return issued.Add(2 * time.Hour) }
	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestJWTService_RejectsInvalidTokens(t *testing.T) {
	svc := NewJWTService("test-secret", 0)
	token, err := svc.GenerateToken(uuid.New())
	require.NoError(t, err)

	other := NewJWTService("other-secret", 0)
	noUser, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{UserID: "not-a-uuid"}).
		SignedString([]byte("test-secret"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		svc   *JWTService
	}{
		{"wrong secret", token, other},
		{"tampered", token + "x", svc},
		{"garbage", "abc.def.ghi", svc},
		{"empty", "", svc},
		{"bad user id", noUser, svc},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := tt.svc.ValidateToken(tt.token)
			assert.Error(t, err)
			assert.Nil(t, claims)
		})
	}
}

func TestTokenStore_RevokeAndCheck(t *testing.T) {
	mr := miniredis.RunT(t)
	client := cache.New(mr.Addr(), "", 0)
	defer client.Close()
	store := NewTokenStore(client)
	ctx := context.Background()

	revoked, err := store.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, store.Revoke(ctx, "jti-1", time.Minute))

	revoked, err = store.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)
	assert.Equal(t, time.Minute, mr.TTL(revokedTokenKeyPrefix+"jti-1"))
}

func TestTokenStore_RevokeFailsWhenRedisDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := cache.New(mr.Addr(), "", 0)
	defer client.Close()
	store := NewTokenStore(client)
	ctx := context.Background()

	mr.Close()
	err := store.Revoke(ctx, "jti-1", time.Minute)
	assert.ErrorIs(t, err, cache.ErrUnavailable)
}
