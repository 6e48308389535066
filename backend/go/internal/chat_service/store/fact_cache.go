package store

import (
	"context"
	"time"

	"moihub_chatbot/backend/go/internal/models"
	"moihub_chatbot/backend/go/pkg/logger"
	"moihub_chatbot/backend/go/pkg/util"
)

// FactCache 是实体位置事实的读缓存。
type FactCache interface {
	Get(ctx context.Context, entity string) (string, bool, error)
	Set(ctx context.Context, entity, location string) error
}

// CachedStore 在 KnowledgeStore 之上为事实读写加一层写穿缓存。
// 缓存故障只记录日志，读写始终以底层存储为准。
type CachedStore struct {
	KnowledgeStore
	cache  FactCache
	logger *logger.Logger
}

// NewCachedStore 创建一个 CachedStore。
func NewCachedStore(base KnowledgeStore, cache FactCache, log *logger.Logger) *CachedStore {
	return &CachedStore{KnowledgeStore: base, cache: cache, logger: log}
}

// GetFact 先查缓存，未命中时回源并回填。
func (s *CachedStore) GetFact(ctx context.Context, entity string) (*models.EntityFact, error) {
	location, ok, err := s.cache.Get(ctx, entity)
	if err != nil {
		s.warn("事实缓存读取失败", entity, err)
	} else if ok {
		return &models.EntityFact{Entity: entity, Location: location}, nil
	}

	fact, err := s.KnowledgeStore.GetFact(ctx, entity)
	if err != nil || fact == nil {
		return fact, err
	}
	if err := s.cache.Set(ctx, entity, fact.Location); err != nil {
		s.warn("事实缓存回填失败", entity, err)
	}
	return fact, nil
}

// UpsertFact 先写底层存储，成功后更新缓存。
func (s *CachedStore) UpsertFact(ctx context.Context, fact models.EntityFact) error {
	if err := s.KnowledgeStore.UpsertFact(ctx, fact); err != nil {
		return err
	}
	if err := s.cache.Set(ctx, fact.Entity, fact.Location); err != nil {
		s.warn("事实缓存写入失败", fact.Entity, err)
	}
	return nil
}

// Ping 透传给底层存储。
func (s *CachedStore) Ping(ctx context.Context) error {
	if p, ok := s.KnowledgeStore.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

func (s *CachedStore) warn(msg, entity string, err error) {
	if s.logger == nil {
		return
	}
	s.logger.WithPayload(map[string]interface{}{"entity": entity, "error": err.Error()}).Warn(msg)
}

// LRUFactCache 是进程内的 FactCache，未启用 Redis 时使用。
// 它看不到其他进程对同一存储的写入，多进程部署时只能依靠 ttl 收敛。
type LRUFactCache struct {
	lru *util.LRUCache[string, string]
}

// NewLRUFactCache 创建指定容量的进程内缓存，ttl 为 0 时条目不过期。
func NewLRUFactCache(capacity int, ttl time.Duration) (*LRUFactCache, error) {
	return newLRUFactCache(util.CacheConfig{Capacity: capacity, TTL: ttl})
}

func newLRUFactCache(cfg util.CacheConfig) (*LRUFactCache, error) {
	lru, err := util.NewWithConfig[string, string](cfg)
	if err != nil {
		return nil, err
	}
	return &LRUFactCache{lru: lru}, nil
}

func (c *LRUFactCache) Get(_ context.Context, entity string) (string, bool, error) {
	location, ok := c.lru.Get(entity)
	return location, ok, nil
}

func (c *LRUFactCache) Set(_ context.Context, entity, location string) error {
	c.lru.Put(entity, location)
	return nil
}
