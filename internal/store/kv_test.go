package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *RedisKV) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewRedisKV(client)
}

func TestRedisKV_GetSetDel(t *testing.T) {
	mr, kv := setupTestRedis(t)
	ctx := context.Background()

	_, err := kv.Get(ctx, BlockUnitsKey("A", 0))
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, kv.Set(ctx, BlockUnitsKey("A", 0), `{"5_3":{"status":"danger"}}`, 10*time.Second))
	v, err := kv.Get(ctx, BlockUnitsKey("A", 0))
	require.NoError(t, err)
	assert.Equal(t, `{"5_3":{"status":"danger"}}`, v)

	mr.FastForward(11 * time.Second)
	_, err = kv.Get(ctx, BlockUnitsKey("A", 0))
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, kv.Set(ctx, BlockUnitsKey("B", 0), "{}", 0))
	require.NoError(t, kv.Del(ctx, BlockUnitsKey("B", 0)))
	_, err = kv.Get(ctx, BlockUnitsKey("B", 0))
	assert.ErrorIs(t, err, ErrMiss)

	assert.NoError(t, kv.Del(ctx))
}

func TestRedisKV_ScanKeys(t *testing.T) {
	_, kv := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, SessionKey("t1"), "{}", time.Hour))
	require.NoError(t, kv.Set(ctx, SessionKey("t2"), "{}", time.Hour))
	require.NoError(t, kv.Set(ctx, BlockUnitsKey("A", 0), "{}", time.Hour))

	keys, err := kv.ScanKeys(ctx, SessionKeyPattern)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{SessionKey("t1"), SessionKey("t2")}, keys)
}

func TestMemoryKV(t *testing.T) {
	kv := NewMemoryKV()
	now := time.Date(2025, 11, 27, 12, 0, 0, 0, time.UTC)
	kv.now = func() time.Time { return now }
	ctx := context.Background()

	_, err := kv.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, kv.Set(ctx, SessionKey("a"), "1", time.Minute))
	require.NoError(t, kv.Set(ctx, SessionKey("b"), "2", 0))
	require.NoError(t, kv.Set(ctx, BlockUnitsKey("C", 0), "3", 0))

	v, err := kv.Get(ctx, SessionKey("a"))
	require.NoError(t, err)
	assert.Equal(t, "1", v)

	keys, err := kv.ScanKeys(ctx, SessionKeyPattern)
	require.NoError(t, err)
	assert.Equal(t, []string{SessionKey("a"), SessionKey("b")}, keys)

	now = now.Add(time.Minute)
	_, err = kv.Get(ctx, SessionKey("a"))
	assert.ErrorIs(t, err, ErrMiss)
	keys, err = kv.ScanKeys(ctx, SessionKeyPattern)
	require.NoError(t, err)
	assert.Equal(t, []string{SessionKey("b")}, keys)

	require.NoError(t, kv.Del(ctx, SessionKey("b"), "never-set"))
	_, err = kv.Get(ctx, SessionKey("b"))
	assert.ErrorIs(t, err, ErrMiss)
}

func TestKV_Incr(t *testing.T) {
	_, redisKV := setupTestRedis(t)
	ctx := context.Background()

	for name, kv := range map[string]KV{"redis": redisKV, "memory": NewMemoryKV()} {
		t.Run(name, func(t *testing.T) {
			n, err := kv.Incr(ctx, BlockVersionKey("A"))
			require.NoError(t, err)
			assert.Equal(t, int64(1), n)
			n, err = kv.Incr(ctx, BlockVersionKey("A"))
			require.NoError(t, err)
			assert.Equal(t, int64(2), n)

			v, err := kv.Get(ctx, BlockVersionKey("A"))
			require.NoError(t, err)
			assert.Equal(t, "2", v)

			require.NoError(t, kv.Set(ctx, "not-a-number", "x", 0))
			_, err = kv.Incr(ctx, "not-a-number")
			assert.Error(t, err)
		})
	}
}
