package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newMiniCache(t *testing.T) (RevocationCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := New(rdb, "")
	t.Cleanup(func() { _ = c.Close() })

	return c, mr
}

func TestRedisCache_MarkAndCheck(t *testing.T) {
	c, mr := newMiniCache(t)
	ctx := context.Background()

	ok, err := c.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, c.MarkRevoked(ctx, "jti-1", time.Minute))

	ok, err = c.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	require.True(t, ok)

	require.True(t, mr.Exists("auth:revoked:jti-1"))
	require.Equal(t, time.Minute, mr.TTL("auth:revoked:jti-1"))
}

func TestRedisCache_EntryExpiresWithToken(t *testing.T) {
	c, mr := newMiniCache(t)
	ctx := context.Background()

	require.NoError(t, c.MarkRevoked(ctx, "jti-2", 10*time.Second))
	mr.FastForward(11 * time.Second)

	ok, err := c.IsRevoked(ctx, "jti-2")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRedisCache_NonPositiveTTL_NoOp(t *testing.T) {
	c, mr := newMiniCache(t)

	require.NoError(t, c.MarkRevoked(context.Background(), "jti-3", 0))
	require.False(t, mr.Exists("auth:revoked:jti-3"))
}

func TestRedisCache_ErrorWhenServerDown(t *testing.T) {
	c, mr := newMiniCache(t)
	mr.Close()

	_, err := c.IsRevoked(context.Background(), "jti-4")
	require.Error(t, err)
}

func TestNewRedisCache_BadURL(t *testing.T) {
	_, err := NewRedisCache(context.Background(), "not-a-url", "")
	require.Error(t, err)
}

func TestNewRedisCache_OK(t *testing.T) {
	mr := miniredis.RunT(t)

	c, err := NewRedisCache(context.Background(), "redis://"+mr.Addr()+"/0", "p:")
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.MarkRevoked(context.Background(), "x", time.Minute))
	require.True(t, mr.Exists("p:x"))
}
