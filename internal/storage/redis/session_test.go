package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/storefront/internal/session"
)

func getRedisClient(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		_ = client.Close()
		t.Skipf("Redis not available: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestSessionStore_PutLookupDelete(t *testing.T) {
	client := getRedisClient(t)
	ctx := context.Background()
	store := NewSessionStore(client)
	id := uuid.NewString()

	require.NoError(t, store.Put(ctx, id, 42, time.Minute))

	got, err := store.Lookup(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(42), got)

	ttl, err := client.TTL(ctx, sessionKeyPrefix+id).Result()
	require.NoError(t, err)
	assert.Positive(t, ttl)

	require.NoError(t, store.Delete(ctx, id))
	_, err = store.Lookup(ctx, id)
	require.ErrorIs(t, err, session.ErrNotFound)

	// Deleting twice is fine.
	require.NoError(t, store.Delete(ctx, id))
}

func TestSessionStore_UnknownID(t *testing.T) {
	client := getRedisClient(t)
	store := NewSessionStore(client)

	_, err := store.Lookup(context.Background(), uuid.NewString())
	require.ErrorIs(t, err, session.ErrNotFound)
}
