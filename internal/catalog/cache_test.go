package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_GetOrFetch(t *testing.T) {
	cache := NewCache(time.Minute)
	calls := 0
	fetch := func(ctx context.Context) (any, error) {
		calls++
		return "value", nil
	}

	value, hit, err := cache.GetOrFetch(context.Background(), "k", fetch)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "value", value)
	assert.Equal(t, 1, calls)

	value, hit, err = cache.GetOrFetch(context.Background(), "k", fetch)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "value", value)
	assert.Equal(t, 1, calls, "fresh entry should not re-fetch")
}

func TestCache_GetOrFetch_Error(t *testing.T) {
	cache := NewCache(time.Minute)
	upstreamErr := errors.New("upstream down")

	_, hit, err := cache.GetOrFetch(context.Background(), "k", func(ctx context.Context) (any, error) {
		return nil, upstreamErr
	})
	assert.ErrorIs(t, err, upstreamErr)
	assert.False(t, hit)
	assert.Equal(t, 0, cache.Len())
}

func TestCache_ServesStaleOnFetchError(t *testing.T) {
	cache := NewCache(time.Nanosecond)

	_, _, err := cache.GetOrFetch(context.Background(), "k", func(ctx context.Context) (any, error) {
		return "old", nil
	})
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	value, hit, err := cache.GetOrFetch(context.Background(), "k", func(ctx context.Context) (any, error) {
		return nil, errors.New("upstream down")
	})
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "old", value)
}

func TestCache_RefreshStale(t *testing.T) {
	cache := NewCache(time.Nanosecond)

	okCalls := 0
	_, _, err := cache.GetOrFetch(context.Background(), "ok", func(ctx context.Context) (any, error) {
		okCalls++
		return okCalls, nil
	})
	require.NoError(t, err)

	_, _, err = cache.GetOrFetch(context.Background(), "other", func(ctx context.Context) (any, error) {
		return "v", nil
	})
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	refreshed, dropped := cache.RefreshStale(context.Background())
	assert.Equal(t, 2, refreshed)
	assert.Equal(t, 0, dropped)
	assert.Equal(t, 2, okCalls)
	assert.Equal(t, 2, cache.Len())
}

func TestCache_RefreshStale_DropsFailing(t *testing.T) {
	cache := NewCache(time.Nanosecond)

	calls := 0
	_, _, err := cache.GetOrFetch(context.Background(), "flaky", func(ctx context.Context) (any, error) {
		calls++
		if calls > 1 {
			return nil, errors.New("upstream down")
		}
		return "first", nil
	})
	require.NoError(t, err)
	require.Equal(t, 1, cache.Len())

	time.Sleep(5 * time.Millisecond)

	refreshed, dropped := cache.RefreshStale(context.Background())
	assert.Equal(t, 0, refreshed)
	assert.Equal(t, 1, dropped)
	assert.Equal(t, 0, cache.Len())
}

func TestCache_RefreshStale_SkipsFresh(t *testing.T) {
	cache := NewCache(time.Hour)

	calls := 0
	_, _, err := cache.GetOrFetch(context.Background(), "k", func(ctx context.Context) (any, error) {
		calls++
		return "v", nil
	})
	require.NoError(t, err)

	refreshed, dropped := cache.RefreshStale(context.Background())
	assert.Equal(t, 0, refreshed)
	assert.Equal(t, 0, dropped)
	assert.Equal(t, 1, calls)
}

func TestCache_Invalidate(t *testing.T) {
	cache := NewCache(time.Minute)

	_, _, err := cache.GetOrFetch(context.Background(), "a", func(ctx context.Context) (any, error) {
		return 1, nil
	})
	require.NoError(t, err)
	_, _, err = cache.GetOrFetch(context.Background(), "b", func(ctx context.Context) (any, error) {
		return 2, nil
	})
	require.NoError(t, err)
	require.Equal(t, 2, cache.Len())

	cache.Invalidate()
	assert.Equal(t, 0, cache.Len())
}
