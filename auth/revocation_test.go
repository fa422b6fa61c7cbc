package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisRevoker(t *testing.T) (*RedisRevoker, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := NewRedisClient(srv.Addr(), "", 0)
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, PingRedis(context.Background(), client))
	return NewRedisRevoker(client), srv
}

func TestRedisRevoker(t *testing.T) {
	ctx := context.Background()
	revoker, srv := newRedisRevoker(t)

	revoked, err := revoker.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, revoker.Revoke(ctx, "jti-1", time.Now().Add(time.Hour)))

	revoked, err = revoker.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	srv.FastForward(2 * time.Hour)

	revoked, err = revoker.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked, "entry lives only as long as the token")
}

func TestRedisRevoker_SkipsExpiredAndEmpty(t *testing.T) {
	ctx := context.Background()
	revoker, srv := newRedisRevoker(t)

	require.NoError(t, revoker.Revoke(ctx, "old", time.Now().Add(-time.Minute)))
	require.NoError(t, revoker.Revoke(ctx, "", time.Now().Add(time.Hour)))
	assert.Empty(t, srv.Keys())
}

func TestRedisRevoker_Unavailable(t *testing.T) {
	revoker, srv := newRedisRevoker(t)
	srv.Close()

	_, err := revoker.IsRevoked(context.Background(), "jti")
	assert.Error(t, err)
}

func TestNopRevoker(t *testing.T) {
	var r Revoker = NopRevoker{}
	require.NoError(t, r.Revoke(context.Background(), "x", time.Now().Add(time.Hour)))
	revoked, err := r.IsRevoked(context.Background(), "x")
	require.NoError(t, err)
	assert.False(t, revoked)
}
