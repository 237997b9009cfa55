package cart

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	cleanup := func() {
		client.Close()
		mr.Close()
	}

	return mr, client, cleanup
}

func TestRedisStore_LoadMissing(t *testing.T) {
	_, rdb, cleanup := setupTestRedis(t)
	defer cleanup()

	store := NewRedisStore(rdb, time.Hour)
	c, err := store.Load(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
}

func TestRedisStore_SaveLoad(t *testing.T) {
	mr, rdb, cleanup := setupTestRedis(t)
	defer cleanup()

	ctx := context.Background()
	store := NewRedisStore(rdb, time.Hour)

	c := New()
	c.Add(7, 2, price("19.99"))
	require.NoError(t, store.Save(ctx, 42, c))

	assert.True(t, mr.Exists("cart:user:42"))
	assert.Equal(t, time.Hour, mr.TTL("cart:user:42"))

	loaded, err := store.Load(ctx, 42)
	require.NoError(t, err)
	require.Equal(t, 1, loaded.Len())
	assert.True(t, loaded.Total().Equal(price("39.98")))

	// 其他用户互不影响
	other, err := store.Load(ctx, 43)
	require.NoError(t, err)
	assert.True(t, other.IsEmpty())
}

func TestRedisStore_SaveEmptyDeletes(t *testing.T) {
	mr, rdb, cleanup := setupTestRedis(t)
	defer cleanup()

	ctx := context.Background()
	store := NewRedisStore(rdb, time.Hour)

	c := New()
	c.Add(1, 1, price("1.00"))
	require.NoError(t, store.Save(ctx, 1, c))

	c.Clear()
	require.NoError(t, store.Save(ctx, 1, c))
	assert.False(t, mr.Exists("cart:user:1"))
}

func TestRedisStore_Expires(t *testing.T) {
	mr, rdb, cleanup := setupTestRedis(t)
	defer cleanup()

	ctx := context.Background()
	store := NewRedisStore(rdb, time.Minute)

	c := New()
	c.Add(1, 1, price("1.00"))
	require.NoError(t, store.Save(ctx, 1, c))

	mr.FastForward(2 * time.Minute)

	loaded, err := store.Load(ctx, 1)
	require.NoError(t, err)
	assert.True(t, loaded.IsEmpty())
}
