package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/esc4n0rx/abastececd/internal/config"
	"github.com/esc4n0rx/abastececd/internal/domain"
)

const (
	positionsKeyPrefix     = "positions:grouped"
	positionsScanBatchSize = 100
)

// PositionCache stores filtered, aisle-grouped position listings keyed by a
// hash of the filter. Any write to the underlying datasets must invalidate
// the whole prefix.
type PositionCache interface {
	GetGrouped(ctx context.Context, filter domain.PositionFilter) ([]domain.AisleGroup, bool, error)
	SetGrouped(ctx context.Context, filter domain.PositionFilter, groups []domain.AisleGroup) error
	InvalidateAll(ctx context.Context) error
}

type redisPositionCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopPositionCache struct{}

func NewPositionCache(cfg config.CacheConfig) (PositionCache, error) {
	if !cfg.Enabled {
		return &noopPositionCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisPositionCache{
		client: client,
		ttl:    ttl,
	}, nil
}

func NewNoopPositionCache() PositionCache {
	return &noopPositionCache{}
}

func (c *redisPositionCache) GetGrouped(ctx context.Context, filter domain.PositionFilter) ([]domain.AisleGroup, bool, error) {
	key := buildPositionsKey(filter)

	payload, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var groups []domain.AisleGroup
	if err := json.Unmarshal(payload, &groups); err != nil {
		return nil, false, fmt.Errorf("decode positions cache: %w", err)
	}

	return groups, true, nil
}

func (c *redisPositionCache) SetGrouped(ctx context.Context, filter domain.PositionFilter, groups []domain.AisleGroup) error {
	key := buildPositionsKey(filter)
	payload, err := json.Marshal(groups)
	if err != nil {
		return fmt.Errorf("encode positions cache: %w", err)
	}

	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisPositionCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, positionsKeyPrefix, positionsScanBatchSize)
}

func (n *noopPositionCache) GetGrouped(ctx context.Context, filter domain.PositionFilter) ([]domain.AisleGroup, bool, error) {
	return nil, false, nil
}

func (n *noopPositionCache) SetGrouped(ctx context.Context, filter domain.PositionFilter, groups []domain.AisleGroup) error {
	return nil
}

func (n *noopPositionCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func buildPositionsKey(filter domain.PositionFilter) string {
	return fmt.Sprintf("%s:%s", positionsKeyPrefix, positionFilterHash(filter))
}

func positionFilterHash(filter domain.PositionFilter) string {
	var parts []string

	if v := normalizeFilterValue(filter.Aisle); v != "" {
		parts = append(parts, "aisle="+v)
	}
	if v := normalizeFilterValue(filter.Urgency); v != "" {
		parts = append(parts, "urgency="+v)
	}
	if v := normalizeFilterValue(filter.Depot); v != "" {
		parts = append(parts, "depot="+v)
	}
	if v := strings.TrimSpace(filter.Search); v != "" {
		parts = append(parts, "search="+strings.ToLower(v))
	}

	if len(parts) == 0 {
		return "default"
	}

	sort.Strings(parts)
	raw := strings.Join(parts, "|")
	sum := sha1.Sum([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// normalizeFilterValue treats blank and the "all" wildcard as no filter,
// matching the repository's handling.
func normalizeFilterValue(v string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "all" {
		return ""
	}
	return v
}
