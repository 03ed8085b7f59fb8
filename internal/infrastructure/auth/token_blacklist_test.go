package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryTokenBlacklist(t *testing.T) {
	ctx := context.Background()
	blacklist := NewInMemoryTokenBlacklist()

	t.Run("unknown jti is not blacklisted", func(t *testing.T) {
		blacklisted, err := blacklist.IsBlacklisted(ctx, "unknown")
		require.NoError(t, err)
		assert.False(t, blacklisted)
	})

	t.Run("added jti is blacklisted", func(t *testing.T) {
		require.NoError(t, blacklist.AddToBlacklist(ctx, "jti-1", time.Minute))

		blacklisted, err := blacklist.IsBlacklisted(ctx, "jti-1")
		require.NoError(t, err)
		assert.True(t, blacklisted)
	})

	t.Run("expired entry is dropped", func(t *testing.T) {
		require.NoError(t, blacklist.AddToBlacklist(ctx, "jti-2", -time.Second))

		blacklisted, err := blacklist.IsBlacklisted(ctx, "jti-2")
		require.NoError(t, err)
		assert.False(t, blacklisted)
	})
}
