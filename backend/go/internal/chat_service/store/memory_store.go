package store

import (
	"context"
	"sync"

	"moihub_chatbot/backend/go/internal/models"
)

// MemoryStore 是进程内的 KnowledgeStore 实现，用于本地开发（driver: memory）和测试。
// 互斥锁只保护内部数据结构，不提供跨调用的原子性。
type MemoryStore struct {
	mu      sync.RWMutex
	entries []models.QAEntry
	facts   map[string]string
}

// NewMemoryStore 创建一个空的 MemoryStore。
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{facts: make(map[string]string)}
}

func (s *MemoryStore) EntryExists(_ context.Context, question string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.entries {
		if e.Question == question {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryStore) InsertEntry(_ context.Context, entry models.QAEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return nil
}

func (s *MemoryStore) AllQuestions(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	questions := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		questions = append(questions, e.Question)
	}
	return questions, nil
}

func (s *MemoryStore) GetEntryByQuestion(_ context.Context, question string) (*models.QAEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.entries {
		if e.Question == question {
			found := e
			return &found, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) AllEntries(_ context.Context) ([]models.QAEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.QAEntry, len(s.entries))
	copy(out, s.entries)
	return out, nil
}

func (s *MemoryStore) GetFact(_ context.Context, entity string) (*models.EntityFact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	location, ok := s.facts[entity]
	if !ok {
		return nil, nil
	}
	return &models.EntityFact{Entity: entity, Location: location}, nil
}

func (s *MemoryStore) UpsertFact(_ context.Context, fact models.EntityFact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.facts[fact.Entity] = fact.Location
	return nil
}

// Ping 总是成功。
func (s *MemoryStore) Ping(context.Context) error {
	return nil
}
