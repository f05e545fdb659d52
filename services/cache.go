package services

import (
	"AlterMoodGo/analytics"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/patrickmn/go-cache"
)

// ReportCache 报表缓存，Get 未命中时返回 (nil, false, nil)
type ReportCache interface {
	Get(ctx context.Context, key string) (*analytics.Report, bool, error)
	Set(ctx context.Context, key string, report *analytics.Report, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// ReportKey 报表缓存键，day 为当前周期最后一天，跨天后自然失效
func ReportKey(ownerID, subjectID string, p analytics.Period, day string) string {
	return fmt.Sprintf("analytics:%s:%s:%s:%s", ownerID, subjectID, p, day)
}

// RedisReportCache 多实例部署时共享的缓存
type RedisReportCache struct {
	client *redis.Client
}

func NewRedisReportCache(client *redis.Client) *RedisReportCache {
	return &RedisReportCache{client: client}
}

func (c *RedisReportCache) Get(ctx context.Context, key string) (*analytics.Report, bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read report cache: %w", err)
	}

	var report analytics.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached report: %w", err)
	}
	return &report, true, nil
}

func (c *RedisReportCache) Set(ctx context.Context, key string, report *analytics.Report, ttl time.Duration) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write report cache: %w", err)
	}
	return nil
}

func (c *RedisReportCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

// MemoryReportCache 单实例或本地开发时使用的进程内缓存
type MemoryReportCache struct {
	store *cache.Cache
}

func NewMemoryReportCache(defaultTTL time.Duration) *MemoryReportCache {
	return &MemoryReportCache{store: cache.New(defaultTTL, 10*time.Minute)}
}

func (c *MemoryReportCache) Get(_ context.Context, key string) (*analytics.Report, bool, error) {
	v, ok := c.store.Get(key)
	if !ok {
		return nil, false, nil
	}
	report := v.(analytics.Report)
	return &report, true, nil
}

func (c *MemoryReportCache) Set(_ context.Context, key string, report *analytics.Report, ttl time.Duration) error {
	c.store.Set(key, *report, ttl)
	return nil
}

func (c *MemoryReportCache) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		c.store.Delete(k)
	}
	return nil
}

// ItemCount 当前缓存条目数
func (c *MemoryReportCache) ItemCount() int {
	return c.store.ItemCount()
}
