// Package extractor 从答案文本中识别 "X is past Y"、"X is near Y" 这类空间关系，
// 并推导出两个实体各自的位置描述。
//
// 实体名由字母、数字和空白组成，匹配是贪婪的且没有边界约束，
// 例如 "The old Lagos road is past Ibadan" 会把 "The old Lagos road" 整体当作实体。
// 这是已知的精度限制。
//
// 空白除 ASCII 空白外还包括 Unicode 空格分隔符（如不换行空格 U+00A0）。
package extractor

import (
	"regexp"
	"strings"

	"moihub_chatbot/backend/go/internal/models"
)

// 关系动词。
const (
	VerbPast = "past"
	VerbNear = "near"
)

// relationTemplate 描述一种关系模式以及从两个实体视角渲染事实的方式。
type relationTemplate struct {
	verb    string
	pattern *regexp.Regexp
	// forward 渲染第一个实体的视角，inverse 渲染第二个实体的视角。
	forward func(e1, e2 string) string
	inverse func(e2, e1 string) string
}

// 空白字符类与名称字符类。Go 的 \s 只匹配 ASCII 空白，这里补上 \p{Zs}。
const (
	// Space 匹配一个空白字符。
	Space = `[\s\p{Zs}]`
	// NameChars 匹配实体名中的一个字符。
	NameChars = `[a-zA-Z0-9\s\p{Zs}]`
)

func relationPattern(verb string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)(` + NameChars + `+)` + Space + `+is` + Space + `+` + verb + Space + `+(` + NameChars + `+)`)
}

// templates 按优先级排列，先匹配者胜出。
var templates = []relationTemplate{
	{
		verb:    VerbPast,
		pattern: relationPattern(VerbPast),
		forward: func(e1, e2 string) string { return e1 + " is past " + e2 },
		// past 的反向关系是 before
		inverse: func(e2, e1 string) string { return e2 + " is before " + e1 },
	},
	{
		verb:    VerbNear,
		pattern: relationPattern(VerbNear),
		forward: func(e1, e2 string) string { return e1 + " is near " + e2 },
		inverse: func(e2, e1 string) string { return e2 + " is near " + e1 },
	},
}

func (t relationTemplate) match(answer string) (models.Relation, bool) {
	m := t.pattern.FindStringSubmatch(answer)
	if m == nil {
		return models.Relation{}, false
	}
	return models.Relation{
		Source: strings.TrimSpace(m[1]),
		Target: strings.TrimSpace(m[2]),
		Verb:   t.verb,
	}, true
}

func templateFor(verb string) (relationTemplate, bool) {
	for _, t := range templates {
		if t.verb == verb {
			return t, true
		}
	}
	return relationTemplate{}, false
}

// EntityKey 返回实体的查找键。
func EntityKey(entity string) string {
	return strings.ToLower(entity)
}

// ExtractRelations 返回答案中第一个命中的关系。
func ExtractRelations(answer string) (models.Relation, bool) {
	for _, t := range templates {
		if rel, ok := t.match(answer); ok {
			return rel, true
		}
	}
	return models.Relation{}, false
}

// DeriveFacts 为关系中的两个实体各生成一条位置事实。
// 未知的关系动词返回 nil。
func DeriveFacts(rel models.Relation) []models.EntityFact {
	t, ok := templateFor(rel.Verb)
	if !ok {
		return nil
	}
	return []models.EntityFact{
		{Entity: EntityKey(rel.Source), Location: t.forward(rel.Source, rel.Target)},
		{Entity: EntityKey(rel.Target), Location: t.inverse(rel.Target, rel.Source)},
	}
}

// ExtractLocationForTarget 只渲染与 target 相关的那一句事实。
// 依次尝试各模式，模式命中但两个实体都不是 target 时继续尝试下一个模式。
// 当 target 是第二个实体时，句子使用调用方传入的 target 写法。
func ExtractLocationForTarget(question, answer, target string) (string, bool) {
	key := EntityKey(target)
	for _, t := range templates {
		rel, ok := t.match(answer)
		if !ok {
			continue
		}
		switch key {
		case EntityKey(rel.Source):
			return t.forward(rel.Source, rel.Target), true
		case EntityKey(rel.Target):
			return t.inverse(target, rel.Source), true
		}
	}
	return "", false
}
