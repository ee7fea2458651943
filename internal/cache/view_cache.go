package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/andresuchdata/mpstock/internal/config"
	"github.com/andresuchdata/mpstock/internal/domain"
)

const (
	viewKeyPrefix     = "monitoring:view"
	viewScanBatchSize = 100
)

// ViewCache stores computed views per snapshot content hash and selection.
type ViewCache interface {
	GetView(ctx context.Context, version string, sel domain.Selection) (*domain.View, bool, error)
	SetView(ctx context.Context, version string, sel domain.Selection, view *domain.View) error
	InvalidateAll(ctx context.Context) error
}

type redisViewCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopViewCache struct{}

func NewViewCache(cfg config.CacheConfig) (ViewCache, error) {
	if !cfg.Enabled {
		return &noopViewCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return NewRedisViewCache(client, ttl), nil
}

// NewRedisViewCache wraps an existing client.
func NewRedisViewCache(client *redis.Client, ttl time.Duration) ViewCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &redisViewCache{client: client, ttl: ttl}
}

func NewNoopViewCache() ViewCache {
	return &noopViewCache{}
}

func (c *redisViewCache) GetView(ctx context.Context, version string, sel domain.Selection) (*domain.View, bool, error) {
	key := buildViewKey(version, sel)

	payload, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var view domain.View
	if err := json.Unmarshal(payload, &view); err != nil {
		return nil, false, fmt.Errorf("decode view cache: %w", err)
	}

	return &view, true, nil
}

func (c *redisViewCache) SetView(ctx context.Context, version string, sel domain.Selection, view *domain.View) error {
	key := buildViewKey(version, sel)
	payload, err := json.Marshal(view)
	if err != nil {
		return fmt.Errorf("encode view cache: %w", err)
	}

	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisViewCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, viewKeyPrefix, viewScanBatchSize)
}

func (n *noopViewCache) GetView(ctx context.Context, version string, sel domain.Selection) (*domain.View, bool, error) {
	return nil, false, nil
}

func (n *noopViewCache) SetView(ctx context.Context, version string, sel domain.Selection, view *domain.View) error {
	return nil
}

func (n *noopViewCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func buildViewKey(version string, sel domain.Selection) string {
	return fmt.Sprintf("%s:%s", viewKeyPrefix, selectionHash(version, sel))
}

func selectionHash(version string, sel domain.Selection) string {
	sel = sel.Normalize()

	direction := "desc"
	if sel.Sort.Ascending {
		direction = "asc"
	}

	parts := []string{
		"version=" + strings.TrimSpace(version),
		"marketplace=" + string(sel.Marketplace),
		"period=" + string(sel.Period),
		"status=" + string(sel.Status),
		"sort=" + string(sel.Sort.Column) + ":" + direction,
	}

	raw := strings.Join(parts, "|")
	sum := sha1.Sum([]byte(raw))
	return hex.EncodeToString(sum[:])
}
