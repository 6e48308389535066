package store

import (
	"context"

	"moihub_chatbot/backend/go/internal/models"
)

// KnowledgeStore 定义了问答对与实体位置事实的持久化接口。
//
// 实现不提供事务：InsertEntry 不会再次检查重复，
// 去重由调用方先调用 EntryExists 完成，并发写入同一问题时可能产生重复条目。
type KnowledgeStore interface {
	// EntryExists 按问题原文精确匹配（区分大小写）。
	EntryExists(ctx context.Context, question string) (bool, error)
	InsertEntry(ctx context.Context, entry models.QAEntry) error
	// AllQuestions 按存储的迭代顺序返回全部问题。
	AllQuestions(ctx context.Context) ([]string, error)
	// GetEntryByQuestion 不存在时返回 nil, nil。
	GetEntryByQuestion(ctx context.Context, question string) (*models.QAEntry, error)
	AllEntries(ctx context.Context) ([]models.QAEntry, error)

	// GetFact 按小写实体键查找，不存在时返回 nil, nil。
	GetFact(ctx context.Context, entity string) (*models.EntityFact, error)
	// UpsertFact 覆盖同一实体的已有事实。
	UpsertFact(ctx context.Context, fact models.EntityFact) error
}

// Pinger 由能够检查后端连通性的存储实现。
type Pinger interface {
	Ping(ctx context.Context) error
}
