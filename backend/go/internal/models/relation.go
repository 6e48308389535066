package models

// Relation 表示从答案文本中识别出的两个实体之间的空间关系，
// 例如 "Lagos is past Ibadan" 对应 {Source: "Lagos", Target: "Ibadan", Verb: "past"}。
type Relation struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Verb   string `json:"verb"`
}
