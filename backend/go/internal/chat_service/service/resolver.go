package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"moihub_chatbot/backend/go/internal/chat_service/extractor"
	"moihub_chatbot/backend/go/internal/chat_service/matcher"
	"moihub_chatbot/backend/go/internal/chat_service/store"
	"moihub_chatbot/backend/go/internal/models"
	"moihub_chatbot/backend/go/pkg/logger"
)

// DefaultMatchThreshold 模糊匹配分数必须严格大于该值才算命中。
const DefaultMatchThreshold = 70

// whereIsPattern 只锚定开头，问号可选。
var whereIsPattern = regexp.MustCompile(`(?i)^where` + extractor.Space + `+is` + extractor.Space + `+(` + extractor.NameChars + `+)\??`)

// Resolver 按 "模糊直接匹配 → 实体位置推理 → 未知" 的顺序查找答案。
type Resolver struct {
	store     store.KnowledgeStore
	matcher   matcher.Matcher
	threshold float64
	logger    *logger.Logger
}

// NewResolver 创建 Resolver。threshold 为负数时使用 DefaultMatchThreshold，0 表示任何正分都算命中。
func NewResolver(s store.KnowledgeStore, m matcher.Matcher, threshold float64, log *logger.Logger) *Resolver {
	if threshold < 0 {
		threshold = DefaultMatchThreshold
	}
	return &Resolver{store: s, matcher: m, threshold: threshold, logger: log}
}

// Resolve 返回问题的答案；没有答案时第二个返回值为 false。
func (r *Resolver) Resolve(ctx context.Context, question string) (string, bool, error) {
	answer, ok, err := r.directMatch(ctx, question)
	if err != nil || ok {
		return answer, ok, err
	}

	entity, ok := parseWhereIs(question)
	if !ok {
		return "", false, nil
	}
	return r.locate(ctx, entity)
}

func (r *Resolver) directMatch(ctx context.Context, question string) (string, bool, error) {
	candidates, err := r.store.AllQuestions(ctx)
	if err != nil {
		return "", false, fmt.Errorf("load questions: %w", err)
	}
	best, ok := r.matcher.BestMatch(question, candidates)
	if !ok || best.Score <= r.threshold {
		return "", false, nil
	}

	entry, err := r.store.GetEntryByQuestion(ctx, best.Candidate)
	if err != nil {
		return "", false, fmt.Errorf("load matched entry: %w", err)
	}
	if entry == nil {
		return "", false, nil
	}
	r.debug("直接匹配命中", map[string]interface{}{"question": question, "match": best.Candidate, "score": best.Score})
	return entry.Answer, true, nil
}

// locate 先查实体事实，未命中时扫描全部问答对现场抽取，并把结果写回事实集合。
func (r *Resolver) locate(ctx context.Context, entity string) (string, bool, error) {
	key := extractor.EntityKey(entity)

	fact, err := r.store.GetFact(ctx, key)
	if err != nil {
		return "", false, fmt.Errorf("load entity fact: %w", err)
	}
	if fact != nil {
		r.debug("实体事实命中", map[string]interface{}{"entity": key})
		return fact.Location, true, nil
	}

	entries, err := r.store.AllEntries(ctx)
	if err != nil {
		return "", false, fmt.Errorf("scan knowledge base: %w", err)
	}
	for _, e := range entries {
		if !mentions(e, key) {
			continue
		}
		location, ok := extractor.ExtractLocationForTarget(e.Question, e.Answer, entity)
		if !ok {
			continue
		}
		if err := r.store.UpsertFact(ctx, models.EntityFact{Entity: key, Location: location}); err != nil {
			return "", false, fmt.Errorf("cache entity fact: %w", err)
		}
		r.debug("实体事实已现场抽取", map[string]interface{}{"entity": key, "location": location})
		return location, true, nil
	}
	return "", false, nil
}

func (r *Resolver) debug(msg string, payload map[string]interface{}) {
	if r.logger != nil {
		r.logger.WithPayload(payload).Debug(msg)
	}
}

// parseWhereIs 从 "Where is X?" 中取出实体名。
func parseWhereIs(question string) (string, bool) {
	m := whereIsPattern.FindStringSubmatch(question)
	if m == nil {
		return "", false
	}
	entity := strings.TrimSpace(m[1])
	if entity == "" {
		return "", false
	}
	return entity, true
}

func mentions(e models.QAEntry, key string) bool {
	return strings.Contains(strings.ToLower(e.Question), key) ||
		strings.Contains(strings.ToLower(e.Answer), key)
}
