package redis

import (
	"context"
	"fmt"
	"log"
	"time"

	"moihub_chatbot/backend/go/internal/config"

	"github.com/go-redis/redis/v8"
)

// NewClient 使用配置创建 Redis 客户端，并用 Ping 检查连接是否成功。
func NewClient(ctx context.Context, cfg *config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("无法连接到 Redis: %w", err)
	}

	log.Println("✅ 成功连接到 Redis!")
	return rdb, nil
}
