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

	type payload struct {
		Name string `json:"name"`
	}

	found, err := GetJSON(ctx, "k", &payload{})
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, SetJSON(ctx, "k", payload{Name: "anna"}, time.Minute))

	var got payload
	found, err = GetJSON(ctx, "k", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "anna", got.Name)
}

func TestCacheAsideFetchesOnceAndServesHits(t *testing.T) {
	setupMiniredis(t)
	ctx := context.Background()

	calls := 0
	fetch := func(dest *string) func() error {
		return func() error {
			calls++
			*dest = "computed"
			return nil
		}
	}

	var v string
	require.NoError(t, CacheAside(ctx, "feed:1:20", &v, time.Minute, fetch(&v)))
	assert.Equal(t, "computed", v)
	assert.Equal(t, 1, calls)

	var v2 string
	require.NoError(t, CacheAside(ctx, "feed:1:20", &v2, time.Minute, fetch(&v2)))
	assert.Equal(t, "computed", v2)
	assert.Equal(t, 1, calls) // served from cache
}

func TestCacheAsideWithoutClientAlwaysFetches(t *testing.T) {
	SetClient(nil)
	ctx := context.Background()

	calls := 0
	var v int
	for i := 0; i < 2; i++ {
		require.NoError(t, CacheAside(ctx, "k", &v, time.Minute, func() error {
			calls++
			v = 42
			return nil
		}))
	}
	assert.Equal(t, 42, v)
	assert.Equal(t, 2, calls)
}

func TestPathRevalidatorDropsViewAndFeedKeys(t *testing.T) {
	mr := setupMiniredis(t)
	ctx := context.Background()

	require.NoError(t, SetJSON(ctx, FeedKey(1, 20), "page1", time.Minute))
	require.NoError(t, SetJSON(ctx, FeedKey(2, 20), "page2", time.Minute))
	require.NoError(t, SetJSON(ctx, ViewKey("/thread/abc"), "view", time.Minute))
	require.NoError(t, SetJSON(ctx, "unrelated", "keep", time.Minute))

	PathRevalidator{}.Revalidate(ctx, "/thread/abc")

	assert.False(t, mr.Exists(FeedKey(1, 20)))
	assert.False(t, mr.Exists(FeedKey(2, 20)))
	assert.False(t, mr.Exists(ViewKey("/thread/abc")))
	assert.True(t, mr.Exists("unrelated"))
}

func TestFeedKey(t *testing.T) {
	assert.Equal(t, "feed:2:25", FeedKey(2, 25))
	assert.Equal(t, "view:/feed", ViewKey("/feed"))
}
