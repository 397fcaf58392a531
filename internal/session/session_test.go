package session

import (
	"context"
	"testing"
	"time"

	"github.com/Baaaki/car-marketplace/internal/models"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisStore(client, ttl), mr
}

var alice = models.PublicUser{ID: 1, Username: "alice", Email: "alice@example.com", Role: models.RoleUser}

func TestRedisStore_CreateAndGet(t *testing.T) {
	store, mr := setupStore(t, time.Hour)
	ctx := context.Background()

	sess, err := store.Create(ctx, alice)
	require.NoError(t, err)
	assert.NotEmpty(t, sess.ID)
	assert.True(t, mr.Exists("session:"+sess.ID))
	assert.Greater(t, mr.TTL("session:"+sess.ID), time.Duration(0))

	got, err := store.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, alice, got.User)
}

func TestRedisStore_UniqueTokens(t *testing.T) {
	store, _ := setupStore(t, time.Hour)
	ctx := context.Background()

	a, err := store.Create(ctx, alice)
	require.NoError(t, err)
	b, err := store.Create(ctx, alice)
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
}

func TestRedisStore_GetUnknown(t *testing.T) {
	store, _ := setupStore(t, time.Hour)

	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = store.Get(context.Background(), "")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRedisStore_Expiry(t *testing.T) {
	store, mr := setupStore(t, time.Minute)
	ctx := context.Background()

	sess, err := store.Create(ctx, alice)
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	_, err = store.Get(ctx, sess.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRedisStore_Destroy(t *testing.T) {
	store, _ := setupStore(t, time.Hour)
	ctx := context.Background()

	sess, err := store.Create(ctx, alice)
	require.NoError(t, err)

	require.NoError(t, store.Destroy(ctx, sess.ID))
	_, err = store.Get(ctx, sess.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	// Destroying twice or with no token is fine
	assert.NoError(t, store.Destroy(ctx, sess.ID))
	assert.NoError(t, store.Destroy(ctx, ""))
}
