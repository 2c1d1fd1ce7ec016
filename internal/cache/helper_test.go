package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedThing struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func setupMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { SetClient(nil) })
	return mr
}

func TestGetSetJSON(t *testing.T) {
	setupMiniredis(t)
	ctx := context.Background()

	var missing cachedThing
	found, err := GetJSON(ctx, "thing:1", &missing)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, SetJSON(ctx, "thing:1", cachedThing{Name: "sub", Count: 2}, time.Minute))

	var got cachedThing
	found, err = GetJSON(ctx, "thing:1", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, cachedThing{Name: "sub", Count: 2}, got)
}

func TestCacheAside(t *testing.T) {
	setupMiniredis(t)
	ctx := context.Background()

	fetches := 0
	fetch := func(dest *cachedThing) func() error {
		return func() error {
			fetches++
			*dest = cachedThing{Name: "amp", Count: 7}
			return nil
		}
	}

	var first cachedThing
	require.NoError(t, CacheAside(ctx, "thing:2", &first, time.Minute, fetch(&first)))
	assert.Equal(t, 1, fetches)
	assert.Equal(t, "amp", first.Name)

	// Second read is served from the cache.
	var second cachedThing
	require.NoError(t, CacheAside(ctx, "thing:2", &second, time.Minute, fetch(&second)))
	assert.Equal(t, 1, fetches)
	assert.Equal(t, first, second)
}

func TestCacheAside_Expiry(t *testing.T) {
	mr := setupMiniredis(t)
	ctx := context.Background()

	fetches := 0
	var out cachedThing
	fetch := func() error {
		fetches++
		out = cachedThing{Name: "amp"}
		return nil
	}

	require.NoError(t, CacheAside(ctx, "thing:3", &out, time.Minute, fetch))
	mr.FastForward(2 * time.Minute)
	require.NoError(t, CacheAside(ctx, "thing:3", &out, time.Minute, fetch))
	assert.Equal(t, 2, fetches, "expired entry triggers a refetch")
}

func TestInvalidate(t *testing.T) {
	setupMiniredis(t)
	ctx := context.Background()

	require.NoError(t, SetJSON(ctx, ArticleKey("box-build"), cachedThing{Name: "a"}, time.Minute))
	require.NoError(t, SetJSON(ctx, TrendingKey, []cachedThing{}, time.Minute))

	InvalidateArticle(ctx, "box-build")

	var got cachedThing
	found, err := GetJSON(ctx, ArticleKey("box-build"), &got)
	require.NoError(t, err)
	assert.False(t, found)

	var list []cachedThing
	found, err = GetJSON(ctx, TrendingKey, &list)
	require.NoError(t, err)
	assert.False(t, found, "listing caches are dropped with the article")
}

func TestNilClientIsNoop(t *testing.T) {
	SetClient(nil)
	ctx := context.Background()

	require.NoError(t, SetJSON(ctx, "k", cachedThing{}, time.Minute))

	var got cachedThing
	found, err := GetJSON(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, found)

	fetched := false
	require.NoError(t, CacheAside(ctx, "k", &got, time.Minute, func() error {
		fetched = true
		return nil
	}))
	assert.True(t, fetched, "without Redis every read goes to the source")
}
