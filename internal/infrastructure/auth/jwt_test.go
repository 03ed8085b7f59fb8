package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront/backend/internal/infrastructure/config"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:                 "test-secret-key-for-jwt-signing-32ch",
		RefreshSecret:          "test-refresh-secret-key-32-characters",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 168 * time.Hour,
		Issuer:                 "storefront-backend",
	}
}

func TestGenerateTokenPair(t *testing.T) {
	svc := NewJWTService(testJWTConfig())
	userID := uuid.New()

	pair, err := svc.GenerateTokenPair(userID, "ana@example.com")
	require.NoError(t, err)

	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)
	assert.Equal(t, "Bearer", pair.TokenType)
	assert.True(t, pair.RefreshTokenExpiresAt.After(pair.AccessTokenExpiresAt))
}

func TestValidateAccessToken(t *testing.T) {
	svc := NewJWTService(testJWTConfig())
	userID := uuid.New()

	pair, err := svc.GenerateTokenPair(userID, "ana@example.com")
	require.NoError(t, err)

	t.Run("valid token", func(t *testing.T) {
		claims, err := svc.ValidateAccessToken(pair.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, userID.String(), claims.UserID)
		assert.Equal(t, "ana@example.com", claims.Email)
		assert.Equal(t, TokenTypeAccess, claims.TokenType)
		assert.NotEmpty(t, claims.ID)
	})

	t.Run("refresh token rejected as access token", func(t *testing.T) {
		_, err := svc.ValidateAccessToken(pair.RefreshToken)
		assert.Error(t, err)
	})

	t.Run("garbage token rejected", func(t *testing.T) {
		_, err := svc.ValidateAccessToken("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("token signed with different secret rejected", func(t *testing.T) {
		otherCfg := testJWTConfig()
		otherCfg.Secret = "a-completely-different-secret-key-32ch"
		other := NewJWTService(otherCfg)

		otherPair, err := other.GenerateTokenPair(userID, "ana@example.com")
		require.NoError(t, err)

		_, err = svc.ValidateAccessToken(otherPair.AccessToken)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestValidateRefreshToken(t *testing.T) {
	svc := NewJWTService(testJWTConfig())
	userID := uuid.New()

	pair, err := svc.GenerateTokenPair(userID, "ana@example.com")
	require.NoError(t, err)

	claims, err := svc.ValidateRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeRefresh, claims.TokenType)
	assert.Equal(t, userID.String(), claims.UserID)

	_, err = svc.ValidateRefreshToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidTokenType)
}

func TestExpiredToken(t *testing.T) {
	cfg := testJWTConfig()
	cfg.AccessTokenExpiration = -time.Minute
	svc := NewJWTService(cfg)

	pair, err := svc.GenerateTokenPair(uuid.New(), "ana@example.com")
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestClaimsRemainingTTL(t *testing.T) {
	svc := NewJWTService(testJWTConfig())

	pair, err := svc.GenerateTokenPair(uuid.New(), "")
	require.NoError(t, err)

	claims, err := svc.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)

	ttl := claims.GetRemainingTTL()
	assert.Greater(t, ttl, 14*time.Minute)
	assert.LessOrEqual(t, ttl, 15*time.Minute)
}
