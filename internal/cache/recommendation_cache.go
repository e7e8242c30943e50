package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/expirywise/backend-go/internal/config"
	"github.com/expirywise/backend-go/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	recommendationSummaryKeyPrefix = "recommendations:summary"
	recommendationScanBatchSize    = 100
)

// RecommendationCache caches the dashboard's action summary per filter.
type RecommendationCache interface {
	GetSummary(ctx context.Context, filter domain.RecommendationFilter) ([]domain.ActionSummary, bool, error)
	SetSummary(ctx context.Context, filter domain.RecommendationFilter, summaries []domain.ActionSummary) error
	InvalidateAll(ctx context.Context) error
}

type redisRecommendationCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopRecommendationCache struct{}

func NewRecommendationCache(cfg config.CacheConfig) (RecommendationCache, error) {
	if !cfg.Enabled {
		return &noopRecommendationCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisRecommendationCache{client: client, ttl: ttl}, nil
}

func NewNoopRecommendationCache() RecommendationCache {
	return &noopRecommendationCache{}
}

func (c *redisRecommendationCache) GetSummary(ctx context.Context, filter domain.RecommendationFilter) ([]domain.ActionSummary, bool, error) {
	key := buildSummaryKey(filter)

	payload, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var summaries []domain.ActionSummary
	if err := json.Unmarshal(payload, &summaries); err != nil {
		return nil, false, fmt.Errorf("decode recommendation summary cache: %w", err)
	}

	return summaries, true, nil
}

func (c *redisRecommendationCache) SetSummary(ctx context.Context, filter domain.RecommendationFilter, summaries []domain.ActionSummary) error {
	key := buildSummaryKey(filter)
	payload, err := json.Marshal(summaries)
	if err != nil {
		return fmt.Errorf("encode recommendation summary cache: %w", err)
	}

	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisRecommendationCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, recommendationSummaryKeyPrefix, recommendationScanBatchSize)
}

func (n *noopRecommendationCache) GetSummary(ctx context.Context, filter domain.RecommendationFilter) ([]domain.ActionSummary, bool, error) {
	return nil, false, nil
}

func (n *noopRecommendationCache) SetSummary(ctx context.Context, filter domain.RecommendationFilter, summaries []domain.ActionSummary) error {
	return nil
}

func (n *noopRecommendationCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func buildSummaryKey(filter domain.RecommendationFilter) string {
	parts := []string{filter.Category, filter.RiskLevel, filter.Action}
	sum := sha1.Sum([]byte(strings.Join(parts, "|")))
	return fmt.Sprintf("%s:%s", recommendationSummaryKeyPrefix, hex.EncodeToString(sum[:]))
}
