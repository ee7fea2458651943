package cache

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/mpstock/internal/config"
	"github.com/andresuchdata/mpstock/internal/domain"
)

func TestBuildViewKey(t *testing.T) {
	sel := domain.DefaultSelection()

	key := buildViewKey("2025-01-15 10:00", sel)
	assert.True(t, strings.HasPrefix(key, viewKeyPrefix+":"))

	// equivalent selections share a key
	assert.Equal(t, key, buildViewKey("2025-01-15 10:00", domain.Selection{}))

	other := sel
	other.Sort = other.Sort.Toggle(domain.SortDaysLeft)
	assert.NotEqual(t, key, buildViewKey("2025-01-15 10:00", other))

	other = sel
	other.Marketplace = domain.MarketplaceOzon
	assert.NotEqual(t, key, buildViewKey("2025-01-15 10:00", other))

	assert.NotEqual(t, key, buildViewKey("2025-01-15 11:00", sel))
}

func TestNewViewCache_DisabledIsNoop(t *testing.T) {
	c, err := NewViewCache(config.CacheConfig{Enabled: false})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, c.SetView(ctx, "v1", domain.DefaultSelection(), &domain.View{Version: "v1"}))

	view, ok, err := c.GetView(ctx, "v1", domain.DefaultSelection())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, view)
	assert.NoError(t, c.InvalidateAll(ctx))
}

func TestBuildRedisOptions(t *testing.T) {
	opts, err := buildRedisOptions(config.CacheConfig{RedisPassword: "secret", RedisDB: 2})
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:6379", opts.Addr)
	assert.Equal(t, "secret", opts.Password)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, redisDialTimeout, opts.DialTimeout)

	opts, err = buildRedisOptions(config.CacheConfig{RedisURL: "redis://cache.internal:6380/1?dial_timeout=10s"})
	require.NoError(t, err)
	assert.Equal(t, "cache.internal:6380", opts.Addr)
	assert.Equal(t, 1, opts.DB)
	assert.Equal(t, 10*time.Second, opts.DialTimeout)

	_, err = buildRedisOptions(config.CacheConfig{RedisURL: "://bad"})
	assert.Error(t, err)
}

func TestViewTTL(t *testing.T) {
	assert.Equal(t, defaultCacheTTL, viewTTL(0))
	assert.Equal(t, defaultCacheTTL, viewTTL(-5))
	assert.Equal(t, 90*time.Second, viewTTL(90))
}
