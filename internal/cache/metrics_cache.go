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

	"github.com/andresuchdata/invwatch/internal/config"
	"github.com/andresuchdata/invwatch/internal/domain"
)

const (
	metricsKeyPrefix   = "inventory:metrics"
	kpiKeyPrefix       = "inventory:kpi"
	cacheScanBatchSize = 100
)

// MetricsCache memoizes derived tables keyed by (reference date,
// filter, policy). Derived state is never persisted; the cache only
// spares recomputation within its TTL.
type MetricsCache interface {
	GetMetrics(ctx context.Context, date time.Time, filter domain.Filter, policy domain.Policy) ([]domain.SKUMetrics, bool, error)
	SetMetrics(ctx context.Context, date time.Time, filter domain.Filter, policy domain.Policy, metrics []domain.SKUMetrics) error
	GetKPI(ctx context.Context, date time.Time, filter domain.Filter, policy domain.Policy) (*domain.KPISummary, bool, error)
	SetKPI(ctx context.Context, date time.Time, filter domain.Filter, policy domain.Policy, kpi *domain.KPISummary) error
	InvalidateAll(ctx context.Context) error
}

type redisMetricsCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopMetricsCache struct{}

// NewMetricsCache returns a redis-backed cache when enabled, a noop
// cache otherwise.
func NewMetricsCache(cfg config.CacheConfig) (MetricsCache, error) {
	if !cfg.Enabled {
		return &noopMetricsCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisMetricsCache{client: client, ttl: ttl}, nil
}

// NewNoopMetricsCache returns the disabled cache.
func NewNoopMetricsCache() MetricsCache {
	return &noopMetricsCache{}
}

func (c *redisMetricsCache) GetMetrics(ctx context.Context, date time.Time, filter domain.Filter, policy domain.Policy) ([]domain.SKUMetrics, bool, error) {
	var metrics []domain.SKUMetrics
	ok, err := c.get(ctx, buildKey(metricsKeyPrefix, date, filter, policy), &metrics)
	return metrics, ok, err
}

func (c *redisMetricsCache) SetMetrics(ctx context.Context, date time.Time, filter domain.Filter, policy domain.Policy, metrics []domain.SKUMetrics) error {
	return c.set(ctx, buildKey(metricsKeyPrefix, date, filter, policy), metrics)
}

func (c *redisMetricsCache) GetKPI(ctx context.Context, date time.Time, filter domain.Filter, policy domain.Policy) (*domain.KPISummary, bool, error) {
	var kpi domain.KPISummary
	ok, err := c.get(ctx, buildKey(kpiKeyPrefix, date, filter, policy), &kpi)
	if !ok || err != nil {
		return nil, ok, err
	}
	return &kpi, true, nil
}

func (c *redisMetricsCache) SetKPI(ctx context.Context, date time.Time, filter domain.Filter, policy domain.Policy, kpi *domain.KPISummary) error {
	return c.set(ctx, buildKey(kpiKeyPrefix, date, filter, policy), kpi)
}

func (c *redisMetricsCache) InvalidateAll(ctx context.Context) error {
	if err := deleteKeysWithPrefix(ctx, c.client, metricsKeyPrefix, cacheScanBatchSize); err != nil {
		return err
	}
	return deleteKeysWithPrefix(ctx, c.client, kpiKeyPrefix, cacheScanBatchSize)
}

func (c *redisMetricsCache) get(ctx context.Context, key string, dest interface{}) (bool, error) {
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get failed: %w", err)
	}

	if err := json.Unmarshal(payload, dest); err != nil {
		return false, fmt.Errorf("decode cached payload: %w", err)
	}
	return true, nil
}

func (c *redisMetricsCache) set(ctx context.Context, key string, value interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode cache payload: %w", err)
	}

	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (n *noopMetricsCache) GetMetrics(ctx context.Context, date time.Time, filter domain.Filter, policy domain.Policy) ([]domain.SKUMetrics, bool, error) {
	return nil, false, nil
}

func (n *noopMetricsCache) SetMetrics(ctx context.Context, date time.Time, filter domain.Filter, policy domain.Policy, metrics []domain.SKUMetrics) error {
	return nil
}

func (n *noopMetricsCache) GetKPI(ctx context.Context, date time.Time, filter domain.Filter, policy domain.Policy) (*domain.KPISummary, bool, error) {
	return nil, false, nil
}

func (n *noopMetricsCache) SetKPI(ctx context.Context, date time.Time, filter domain.Filter, policy domain.Policy, kpi *domain.KPISummary) error {
	return nil
}

func (n *noopMetricsCache) InvalidateAll(ctx context.Context) error {
	return nil
}

// buildKey hashes the normalized query parameters so every distinct
// (date, filter, policy) combination gets its own entry.
func buildKey(prefix string, date time.Time, filter domain.Filter, policy domain.Policy) string {
	return fmt.Sprintf("%s:%s", prefix, paramsHash(date, filter, policy))
}

func paramsHash(date time.Time, filter domain.Filter, policy domain.Policy) string {
	parts := []string{
		"date=" + date.Format(domain.DateOnly),
		fmt.Sprintf("dos_basis=%d", policy.DOSBasisDays),
		fmt.Sprintf("shortage=%.2f", policy.ShortageDays),
		fmt.Sprintf("overstock=%.2f", policy.OverstockDays),
		fmt.Sprintf("lead=%d", policy.LeadTimeDays),
		fmt.Sprintf("target=%d", policy.TargetCoverDays),
		fmt.Sprintf("safety=%d", policy.SafetyStockDays),
		fmt.Sprintf("moq=%d", policy.MOQ),
	}

	if filter.Category != "" {
		parts = append(parts, "category="+strings.ToLower(strings.TrimSpace(filter.Category)))
	}
	if filter.Warehouse != "" {
		parts = append(parts, "warehouse="+strings.ToLower(strings.TrimSpace(filter.Warehouse)))
	}
	if filter.SKU != "" {
		parts = append(parts, "sku="+strings.ToLower(strings.TrimSpace(filter.SKU)))
	}

	sort.Strings(parts)
	sum := sha1.Sum([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}
