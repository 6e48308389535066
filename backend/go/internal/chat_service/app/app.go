package app

import (
	"context"
	"errors"
	"fmt"

	"moihub_chatbot/backend/go/internal/chat_service/matcher"
	"moihub_chatbot/backend/go/internal/chat_service/service"
	"moihub_chatbot/backend/go/internal/chat_service/store"
	"moihub_chatbot/backend/go/internal/config"
	"moihub_chatbot/backend/go/internal/database/kafka"
	mongodb "moihub_chatbot/backend/go/internal/database/mongo"
	redisdb "moihub_chatbot/backend/go/internal/database/redis"
	"moihub_chatbot/backend/go/pkg/logger"
)

// App 持有组装好的 KnowledgeService 以及需要在退出时释放的资源。
type App struct {
	Service *service.KnowledgeService
	Store   store.KnowledgeStore

	closers []func(context.Context) error
}

// New 按配置依次初始化存储、事实缓存、匹配器、解析器和事件发布器。
// 任一步失败时，已打开的资源会被释放。
func New(ctx context.Context, cfg *config.AppConfig, log *logger.Logger) (a *App, err error) {
	a = &App{}
	defer func() {
		if err != nil {
			_ = a.Close(context.Background())
			a = nil
		}
	}()

	base, err := a.openStore(ctx, cfg)
	if err != nil {
		return a, err
	}

	knowledgeStore, err := a.wrapFactCache(ctx, cfg, base, log)
	if err != nil {
		return a, err
	}
	a.Store = knowledgeStore

	resolver := service.NewResolver(knowledgeStore, matcher.NewTokenMatcher(), cfg.Knowledge.Threshold(), log)

	var opts []service.Option
	if cfg.Databases.Kafka.Enabled {
		if err := kafka.EnsureTopic(&cfg.Databases.Kafka); err != nil {
			log.Warn(fmt.Sprintf("Kafka 主题检查失败，继续启动: %v", err))
		}
		publisher := kafka.NewEventPublisher(&cfg.Databases.Kafka)
		a.closers = append(a.closers, func(context.Context) error { return publisher.Close() })
		opts = append(opts, service.WithPublisher(publisher))
		log.Info("已启用 Kafka 知识事件发布")
	}

	a.Service = service.NewKnowledgeService(knowledgeStore, resolver, log, opts...)
	return a, nil
}

func (a *App) openStore(ctx context.Context, cfg *config.AppConfig) (store.KnowledgeStore, error) {
	switch cfg.Databases.Driver {
	case config.DriverMemory:
		return store.NewMemoryStore(), nil
	case config.DriverMongo:
		mcfg := cfg.Databases.MongoDB
		client, err := mongodb.Connect(ctx, &mcfg)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func(ctx context.Context) error { return mongodb.Close(ctx, client) })

		s := store.NewMongoStore(client.Database(mcfg.Database), mcfg.KnowledgeCollection, mcfg.EntityCollection)
		if err := s.EnsureIndexes(ctx); err != nil {
			return nil, fmt.Errorf("创建索引失败: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("未知的存储驱动: %s", cfg.Databases.Driver)
	}
}

func (a *App) wrapFactCache(ctx context.Context, cfg *config.AppConfig, base store.KnowledgeStore, log *logger.Logger) (store.KnowledgeStore, error) {
	rcfg := cfg.Databases.Redis
	if rcfg.Enabled {
		client, err := redisdb.NewClient(ctx, &rcfg)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func(context.Context) error { return client.Close() })

		ttl, err := config.ParseDuration(rcfg.TTL)
		if err != nil {
			return nil, fmt.Errorf("redis ttl 无效: %w", err)
		}
		return store.NewCachedStore(base, store.NewRedisFactCache(client, ttl), log), nil
	}

	// 进程内缓存只适合单进程部署，默认关闭
	if cfg.Knowledge.FactCacheCapacity > 0 {
		ttl, err := config.ParseDuration(cfg.Knowledge.FactCacheTTL)
		if err != nil {
			return nil, fmt.Errorf("fact cache ttl 无效: %w", err)
		}
		cache, err := store.NewLRUFactCache(cfg.Knowledge.FactCacheCapacity, ttl)
		if err != nil {
			return nil, err
		}
		log.Warn("已启用进程内事实缓存，多进程共享同一存储时可能在 ttl 内读到旧事实")
		return store.NewCachedStore(base, cache, log), nil
	}
	return base, nil
}

// Close 按打开的逆序释放资源。
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
