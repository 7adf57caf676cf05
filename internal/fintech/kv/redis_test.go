package kv_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/seulahhh/Fintech-project/internal/fintech/kv"
)

func newTestStore(t *testing.T) (*kv.RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return kv.NewRedisFromClient(client), mr
}

func TestRedisStore_GetSet(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		_, err := store.Get(ctx, "absent")
		require.ErrorIs(t, err, kv.ErrKeyMissing)
	})

	t.Run("set then get", func(t *testing.T) {
		require.NoError(t, store.SetTTL(ctx, "refresh::abc", "user@example.com", time.Hour))

		got, err := store.Get(ctx, "refresh::abc")
		require.NoError(t, err)
		require.Equal(t, "user@example.com", got)
	})

	t.Run("value expires", func(t *testing.T) {
		require.NoError(t, store.SetTTL(ctx, "ephemeral", "v", time.Second))
		mr.FastForward(2 * time.Second)

		_, err := store.Get(ctx, "ephemeral")
		require.ErrorIs(t, err, kv.ErrKeyMissing)
	})
}

func TestRedisStore_DeleteExists(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SetTTL(ctx, "k", "v", 0))

	present, err := store.Exists(ctx, "k")
	require.NoError(t, err)
	require.True(t, present)

	require.NoError(t, store.Delete(ctx, "k"))

	present, err = store.Exists(ctx, "k")
	require.NoError(t, err)
	require.False(t, present)

	// deleting an absent key is fine
	require.NoError(t, store.Delete(ctx, "k"))
}

func TestRedisStore_IncrementExpire(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	n, err := store.Increment(ctx, "otp_attempts::user@example.com")
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	n, err = store.Increment(ctx, "otp_attempts::user@example.com")
	require.NoError(t, err)
	require.Equal(t, int64(2), n)

	require.NoError(t, store.Expire(ctx, "otp_attempts::user@example.com", 10*time.Second))
	mr.FastForward(11 * time.Second)

	n, err = store.Increment(ctx, "otp_attempts::user@example.com")
	require.NoError(t, err)
	require.Equal(t, int64(1), n)
}

func TestRedisStore_CompareAndDelete(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	t.Run("missing", func(t *testing.T) {
		res, err := store.CompareAndDelete(ctx, "refresh::gone", "user@example.com")
		require.NoError(t, err)
		require.Equal(t, kv.CadMissing, res)
	})

	t.Run("mismatch leaves key intact", func(t *testing.T) {
		require.NoError(t, store.SetTTL(ctx, "refresh::tok", "owner@example.com", time.Hour))

		res, err := store.CompareAndDelete(ctx, "refresh::tok", "thief@example.com")
		require.NoError(t, err)
		require.Equal(t, kv.CadMismatch, res)

		got, err := store.Get(ctx, "refresh::tok")
		require.NoError(t, err)
		require.Equal(t, "owner@example.com", got)
	})

	t.Run("match deletes exactly once", func(t *testing.T) {
		require.NoError(t, store.SetTTL(ctx, "refresh::once", "owner@example.com", time.Hour))

		res, err := store.CompareAndDelete(ctx, "refresh::once", "owner@example.com")
		require.NoError(t, err)
		require.Equal(t, kv.CadDeleted, res)

		res, err = store.CompareAndDelete(ctx, "refresh::once", "owner@example.com")
		require.NoError(t, err)
		require.Equal(t, kv.CadMissing, res)
	})
}
