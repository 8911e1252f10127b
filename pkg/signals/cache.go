package signals

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ekaya-inc/upstart-engine/pkg/models"
)

// Cache stores live adapter results per platform and keyword.
type Cache interface {
	// Get returns the cached signals and whether there was a hit.
	Get(ctx context.Context, platform models.Platform, keyword string) ([]models.CommunitySignal, bool, error)
	Set(ctx context.Context, platform models.Platform, keyword string, signals []models.CommunitySignal) error
}

// RedisCache is a Cache backed by Redis string keys with a TTL.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisCache creates a cache whose entries expire after ttl.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl, prefix: "upstart:signals"}
}

var _ Cache = (*RedisCache)(nil)

func (c *RedisCache) key(platform models.Platform, keyword string) string {
	return fmt.Sprintf("%s:%s:%s", c.prefix, platform, strings.ToLower(strings.TrimSpace(keyword)))
}

// Get implements Cache.
func (c *RedisCache) Get(ctx context.Context, platform models.Platform, keyword string) ([]models.CommunitySignal, bool, error) {
	data, err := c.client.Get(ctx, c.key(platform, keyword)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read signal cache: %w", err)
	}

	var signals []models.CommunitySignal
	if err := json.Unmarshal(data, &signals); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached signals: %w", err)
	}
	return signals, true, nil
}

// Set implements Cache.
func (c *RedisCache) Set(ctx context.Context, platform models.Platform, keyword string, signals []models.CommunitySignal) error {
	data, err := json.Marshal(signals)
	if err != nil {
		return fmt.Errorf("failed to encode signals: %w", err)
	}
	if err := c.client.Set(ctx, c.key(platform, keyword), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write signal cache: %w", err)
	}
	return nil
}
