package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) (*AppSessionStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewAppSessionStore(rdb, time.Hour), mr
}

func TestAppSessionStore_CreateResolve(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)

	require.NoError(t, s.Create(ctx, "sid-1", "user-1"))

	uid, err := s.Resolve(ctx, "sid-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", uid)

	as, err := s.Get(ctx, "sid-1")
	require.NoError(t, err)
	assert.Equal(t, int64(3600), as.ExpiresAt-as.IssuedAt)
}

func TestAppSessionStore_MissingAndExpired(t *testing.T) {
	ctx := context.Background()
	s, mr := newStore(t)

	_, err := s.Resolve(ctx, "nope")
	assert.ErrorIs(t, err, ErrNoSession)

	require.NoError(t, s.Create(ctx, "sid-1", "user-1"))
	mr.FastForward(2 * time.Hour)
	_, err = s.Resolve(ctx, "sid-1")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestAppSessionStore_DeleteAndRevoke(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)

	require.NoError(t, s.Create(ctx, "a", "user-1"))
	require.NoError(t, s.Create(ctx, "b", "user-1"))
	require.NoError(t, s.Create(ctx, "c", "user-2"))

	require.NoError(t, s.Delete(ctx, "a"))
	_, err := s.Resolve(ctx, "a")
	assert.ErrorIs(t, err, ErrNoSession)

	require.NoError(t, s.RevokeAllForUser(ctx, "user-1"))
	_, err = s.Resolve(ctx, "b")
	assert.ErrorIs(t, err, ErrNoSession)

	uid, err := s.Resolve(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, "user-2", uid)
}
