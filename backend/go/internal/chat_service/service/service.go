package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"moihub_chatbot/backend/go/internal/chat_service/extractor"
	"moihub_chatbot/backend/go/internal/chat_service/store"
	"moihub_chatbot/backend/go/internal/models"
	"moihub_chatbot/backend/go/pkg/logger"

	"github.com/google/uuid"
)

// ErrInvalidInput 表示问题或答案缺失。
var ErrInvalidInput = errors.New("invalid input")

// LearnStatus 是 Learn 的结果状态。已存在不是错误。
type LearnStatus string

const (
	StatusLearned       LearnStatus = "learned"
	StatusAlreadyExists LearnStatus = "already_exists"
)

// Message 返回面向用户的提示语。
func (s LearnStatus) Message() string {
	switch s {
	case StatusAlreadyExists:
		return "This question already exists!"
	case StatusLearned:
		return "Chatbot has learned a new answer!"
	default:
		return string(s)
	}
}

// LearnResult 是 Learn 的返回值。
type LearnResult struct {
	Status LearnStatus         `json:"status"`
	Facts  []models.EntityFact `json:"facts,omitempty"`
}

// EventPublisher 发布知识变更事件。
type EventPublisher interface {
	Publish(ctx context.Context, event *models.KnowledgeEvent) error
}

// KnowledgeService 对外提供 Answer、Learn、ListAll 三个操作。
type KnowledgeService struct {
	store     store.KnowledgeStore
	resolver  *Resolver
	publisher EventPublisher
	logger    *logger.Logger
	now       func() time.Time
}

// Option 配置 KnowledgeService。
type Option func(*KnowledgeService)

// WithPublisher 设置事件发布器，nil 表示不发布。
func WithPublisher(p EventPublisher) Option {
	return func(s *KnowledgeService) {
		s.publisher = p
	}
}

// NewKnowledgeService 创建 KnowledgeService，存储句柄由调用方打开和关闭。
func NewKnowledgeService(s store.KnowledgeStore, r *Resolver, log *logger.Logger, opts ...Option) *KnowledgeService {
	svc := &KnowledgeService{
		store:    s,
		resolver: r,
		logger:   log,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Answer 返回问题的答案，没有答案时第二个返回值为 false。
func (s *KnowledgeService) Answer(ctx context.Context, question string) (string, bool, error) {
	if isBlank(question) {
		return "", false, fmt.Errorf("%w: question is required", ErrInvalidInput)
	}
	return s.resolver.Resolve(ctx, question)
}

// Learn 保存新的问答对，并从答案中抽取实体关系写入事实集合。
// 问题已存在时不做任何修改。
func (s *KnowledgeService) Learn(ctx context.Context, question, answer string) (*LearnResult, error) {
	if isBlank(question) || isBlank(answer) {
		return nil, fmt.Errorf("%w: both question and answer are required", ErrInvalidInput)
	}

	exists, err := s.store.EntryExists(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("check existing entry: %w", err)
	}
	if exists {
		return &LearnResult{Status: StatusAlreadyExists}, nil
	}

	if err := s.store.InsertEntry(ctx, models.QAEntry{Question: question, Answer: answer}); err != nil {
		return nil, fmt.Errorf("insert entry: %w", err)
	}

	var facts []models.EntityFact
	if rel, ok := extractor.ExtractRelations(answer); ok {
		facts = extractor.DeriveFacts(rel)
		for _, f := range facts {
			if err := s.store.UpsertFact(ctx, f); err != nil {
				return nil, fmt.Errorf("upsert entity fact: %w", err)
			}
		}
	}

	s.publish(ctx, question, answer, facts)
	return &LearnResult{Status: StatusLearned, Facts: facts}, nil
}

// ListAll 返回全部问答对。
func (s *KnowledgeService) ListAll(ctx context.Context) ([]models.QAEntry, error) {
	entries, err := s.store.AllEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	return entries, nil
}

// Ping 检查存储是否可用。
func (s *KnowledgeService) Ping(ctx context.Context) error {
	if p, ok := s.store.(store.Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

// publish 发布失败只记日志，不影响 Learn 的结果。
func (s *KnowledgeService) publish(ctx context.Context, question, answer string, facts []models.EntityFact) {
	if s.publisher == nil {
		return
	}
	event := &models.KnowledgeEvent{
		ID:         uuid.New().String(),
		Type:       models.KnowledgeEventLearned,
		Question:   question,
		Answer:     answer,
		Facts:      facts,
		OccurredAt: s.now().UTC(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil && s.logger != nil {
		s.logger.WithError(models.ErrorInfo{Message: err.Error(), Type: "publish_error"}).
			WithPayload(map[string]interface{}{"event_id": event.ID}).
			Warn("Failed to publish knowledge event")
	}
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
