// Package matcher 提供基于词元的模糊字符串相似度打分，分数范围 0-100。
package matcher

import (
	"sort"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
)

// Match 是一次最佳匹配的结果。
type Match struct {
	Candidate string
	Index     int
	Score     float64
}

// Matcher 从候选集中找出与查询最相似的一项。
// 相同输入必须得到相同结果。
type Matcher interface {
	BestMatch(query string, candidates []string) (Match, bool)
}

// TokenMatcher 分别在原始词序和排序后的词元上计算编辑相似度与 Indel 相似度，
// 取四者中的最大值作为分数，因此词序不同的问题也能得到高分。
type TokenMatcher struct{}

// NewTokenMatcher 创建默认的匹配器。
func NewTokenMatcher() *TokenMatcher {
	return &TokenMatcher{}
}

// BestMatch 返回分数最高的候选项；分数相同时取先出现者。
// 候选集为空时第二个返回值为 false。
func (m *TokenMatcher) BestMatch(query string, candidates []string) (Match, bool) {
	if len(candidates) == 0 {
		return Match{}, false
	}
	q := normalize(query)
	best := Match{Index: -1, Score: -1}
	for i, c := range candidates {
		s := score(q, normalize(c))
		if s > best.Score {
			best = Match{Candidate: c, Index: i, Score: s}
		}
	}
	return best, true
}

// Score 计算两个字符串的相似度。
func Score(a, b string) float64 {
	return score(normalize(a), normalize(b))
}

func score(a, b string) float64 {
	sa, sb := sortTokens(a), sortTokens(b)
	return max(ratio(a, b), ratio(sa, sb), indelRatio(a, b), indelRatio(sa, sb))
}

// ratio 为归一化的编辑距离相似度。任一方为空时为 0。
func ratio(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 100
	}
	la, lb := len([]rune(a)), len([]rune(b))
	longest := max(la, lb)
	dist := levenshtein.ComputeDistance(a, b)
	return 100 * (1 - float64(dist)/float64(longest))
}

// indelRatio 为 2*LCS/(len(a)+len(b))，只允许插入和删除。任一方为空时为 0。
func indelRatio(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	ra, rb := []rune(a), []rune(b)
	return 200 * float64(lcsLength(ra, rb)) / float64(len(ra)+len(rb))
}

// lcsLength 返回最长公共子序列的长度，只保留一行状态。
func lcsLength(a, b []rune) int {
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for _, ca := range a {
		for j, cb := range b {
			if ca == cb {
				cur[j+1] = prev[j] + 1
			} else {
				cur[j+1] = max(prev[j+1], cur[j])
			}
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}

// normalize 转小写，非字母数字字符视为分隔符，并折叠空白。
func normalize(s string) string {
	mapped := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, s)
	return strings.Join(strings.Fields(mapped), " ")
}

func sortTokens(s string) string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}
