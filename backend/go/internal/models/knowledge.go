package models

import "time"

// QAEntry 是知识库中的一条问答对。
// 结构体中不包含存储层的 _id 字段，因此导出时自然不会泄露内部标识。
type QAEntry struct {
	Question string `json:"question" bson:"question"`
	Answer   string `json:"answer" bson:"answer"`
}

// KnowledgeEventLearned 是新知识写入成功后发布的事件类型。
const KnowledgeEventLearned = "knowledge.learned"

// KnowledgeEvent 描述一次知识变更，序列化为 JSON 后发送到 Kafka。
type KnowledgeEvent struct {
	ID         string       `json:"id"`
	Type       string       `json:"type"`
	Question   string       `json:"question"`
	Answer     string       `json:"answer"`
	Facts      []EntityFact `json:"facts,omitempty"`
	OccurredAt time.Time    `json:"occurred_at"`
}
