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

func testClient(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestGetJSON_Miss(t *testing.T) {
	rdb := testClient(t)
	var out map[string]string
	err := GetJSON(context.Background(), rdb, "nope", &out)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestSetGetJSON_RoundTrip(t *testing.T) {
	rdb := testClient(t)
	ctx := context.Background()

	in := map[string]int{"a": 1, "b": 2}
	require.NoError(t, SetJSON(ctx, rdb, "k", in, time.Minute))

	var out map[string]int
	require.NoError(t, GetJSON(ctx, rdb, "k", &out))
	assert.Equal(t, in, out)
}

func TestAside_LoadsOnMissThenHits(t *testing.T) {
	rdb := testClient(t)
	ctx := context.Background()

	calls := 0
	load := func(context.Context) ([]string, error) {
		calls++
		return []string{"x", "y"}, nil
	}

	got, err := Aside(ctx, rdb, "feed:test", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, got)
	assert.Equal(t, 1, calls)

	got, err = Aside(ctx, rdb, "feed:test", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, got)
	assert.Equal(t, 1, calls, "second call should be served from cache")
}

func TestAside_NilClientAlwaysLoads(t *testing.T) {
	calls := 0
	load := func(context.Context) (int, error) {
		calls++
		return 42, nil
	}

	for i := 0; i < 2; i++ {
		got, err := Aside(context.Background(), nil, "k", time.Minute, load)
		require.NoError(t, err)
		assert.Equal(t, 42, got)
	}
	assert.Equal(t, 2, calls)
}

func TestInvalidate(t *testing.T) {
	rdb := testClient(t)
	ctx := context.Background()

	require.NoError(t, SetJSON(ctx, rdb, "k1", "v", time.Minute))
	Invalidate(ctx, rdb, "k1")

	var out string
	assert.ErrorIs(t, GetJSON(ctx, rdb, "k1", &out), ErrCacheMiss)
}
