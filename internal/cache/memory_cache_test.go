package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemoryCacheRoundTrip(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	require.NoError(t, c.SetJSON(ctx, "k", map[string]string{"a": "b"}, time.Minute))

	var got map[string]string
	hit, err := c.GetJSON(ctx, "k", &got)
	require.NoError(t, err)
	require.True(t, hit)
	require.Equal(t, "b", got["a"])
}

func TestMemoryCacheMiss(t *testing.T) {
	c := NewMemoryCache()

	var got string
	hit, err := c.GetJSON(context.Background(), "absent", &got)
	require.NoError(t, err)
	require.False(t, hit)
}

func TestMemoryCacheTTLExpiry(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	now := time.Now()
	c.now = func() time.Time { return now }

	require.NoError(t, c.SetJSON(ctx, "k", "v", 30*time.Minute))

	var got string
	hit, _ := c.GetJSON(ctx, "k", &got)
	require.True(t, hit)

	// Past the TTL the entry is treated as absent.
	now = now.Add(31 * time.Minute)
	hit, err := c.GetJSON(ctx, "k", &got)
	require.NoError(t, err)
	require.False(t, hit)
}

func TestMemoryCacheDel(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	require.NoError(t, c.SetJSON(ctx, "k", "v", time.Minute))
	require.NoError(t, c.Del(ctx, "k"))

	var got string
	hit, _ := c.GetJSON(ctx, "k", &got)
	require.False(t, hit)
}
