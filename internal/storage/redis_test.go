package storage

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) *RedisStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStoreWithClient(client, "mazebank:session")
}

func TestRedisStoreRoundTrip(t *testing.T) {
	store := newRedisStore(t)

	v, err := store.Get(KeyToken)
	require.NoError(t, err)
	assert.Empty(t, v, "missing keys read as empty")

	require.NoError(t, store.Set(KeyToken, "tok"))
	require.NoError(t, store.Set(KeyUserID, "9"))

	v, err = store.Get(KeyToken)
	require.NoError(t, err)
	assert.Equal(t, "tok", v)

	require.NoError(t, store.Delete(KeyToken))
	v, err = store.Get(KeyToken)
	require.NoError(t, err)
	assert.Empty(t, v)

	v, err = store.Get(KeyUserID)
	require.NoError(t, err)
	assert.Equal(t, "9", v)
}

func TestRedisStoreClear(t *testing.T) {
	store := newRedisStore(t)

	require.NoError(t, store.Set(KeyToken, "tok"))
	require.NoError(t, store.Set(KeyUserID, "9"))
	require.NoError(t, store.Clear())

	for _, key := range []string{KeyToken, KeyUserID} {
		v, err := store.Get(key)
		require.NoError(t, err)
		assert.Empty(t, v)
	}
}
