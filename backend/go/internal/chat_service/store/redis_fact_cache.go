package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisFactCache Redis 事实缓存，多个服务实例共享。
type RedisFactCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisFactCache 创建 Redis 事实缓存，ttl 为 0 时条目永不过期。
func NewRedisFactCache(client *redis.Client, ttl time.Duration) *RedisFactCache {
	return &RedisFactCache{client: client, ttl: ttl}
}

func factKey(entity string) string {
	return fmt.Sprintf("entity:%s:location", entity)
}

// Get 读取实体位置，未命中时第二个返回值为 false。
func (c *RedisFactCache) Get(ctx context.Context, entity string) (string, bool, error) {
	location, err := c.client.Get(ctx, factKey(entity)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return location, true, nil
}

// Set 写入实体位置。
func (c *RedisFactCache) Set(ctx context.Context, entity, location string) error {
	return c.client.Set(ctx, factKey(entity), location, c.ttl).Err()
}
