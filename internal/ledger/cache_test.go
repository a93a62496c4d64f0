package ledger_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akaza138/sktexcot-accounting-test/internal/ledger"
)

func TestSummaryCache(t *testing.T) {
	ctx := context.Background()

	t.Run("KeysCarryVersion", func(t *testing.T) {
		mr := miniredis.RunT(t)
		cache := ledger.NewSummaryCache(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Minute)

		key, err := cache.BuildKey(ctx, "ledger", "summary")
		require.NoError(t, err)
		assert.Equal(t, "ledger:summary:1", key)

		require.NoError(t, cache.Bump(ctx))

		key, err = cache.BuildKey(ctx, "ledger", "summary")
		require.NoError(t, err)
		assert.Equal(t, "ledger:summary:2", key)
	})

	t.Run("FetchJSONLoadsOnce", func(t *testing.T) {
		mr := miniredis.RunT(t)
		cache := ledger.NewSummaryCache(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Minute)

		calls := 0
		loader := func(context.Context) (any, error) {
			calls++
			return map[string]int{"n": 7}, nil
		}

		var first, second map[string]int
		require.NoError(t, cache.FetchJSON(ctx, "k", &first, loader))
		require.NoError(t, cache.FetchJSON(ctx, "k", &second, loader))

		assert.Equal(t, 1, calls)
		assert.Equal(t, 7, second["n"])
		assert.True(t, mr.Exists("k"))
	})

	t.Run("NilCachePassesThrough", func(t *testing.T) {
		var cache *ledger.SummaryCache

		key, err := cache.BuildKey(ctx, "ledger", "summary")
		require.NoError(t, err)
		assert.Equal(t, "ledger:summary", key)

		var out string
		require.NoError(t, cache.FetchJSON(ctx, key, &out, func(context.Context) (any, error) {
			return "fresh", nil
		}))
		assert.Equal(t, "fresh", out)
		assert.NoError(t, cache.Bump(ctx))
	})

	t.Run("LoaderErrorPropagates", func(t *testing.T) {
		mr := miniredis.RunT(t)
		cache := ledger.NewSummaryCache(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Minute)

		var out string
		err := cache.FetchJSON(ctx, "k", &out, func(context.Context) (any, error) {
			return nil, errors.New("boom")
		})
		assert.EqualError(t, err, "boom")
		assert.False(t, mr.Exists("k"))
	})
}
