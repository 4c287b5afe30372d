package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"logiroute/internal/model"
)

func TestMemoryCacheExpiry(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()
	res := model.RouteResult{Summary: model.RouteSummary{TotalTimeMinutes: 30, OptimizedBy: "time"}}

	c.Set(ctx, "k", res, 20*time.Millisecond)
	got, ok := c.Get(ctx, "k")
	require.True(t, ok)
	require.Equal(t, res, got)

	time.Sleep(30 * time.Millisecond)
	_, ok = c.Get(ctx, "k")
	require.False(t, ok)
}

func TestMemoryCacheZeroTTLDisables(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()
	c.Set(ctx, "k", model.RouteResult{}, 0)
	_, ok := c.Get(ctx, "k")
	require.False(t, ok)
}

func TestMemoryCacheMissingKey(t *testing.T) {
	_, ok := NewMemoryCache().Get(context.Background(), "absent")
	require.False(t, ok)
}
