package rules

import (
	"strings"

	"GrantRadar/internal/domain"
)

// Engine matches items against a keyword policy. Matching is an
// OR-of-substrings over the item text: any hit from the always-include
// set or from any group's alternatives qualifies the item. There is no
// tokenization, stemming, negation or weighting.
type Engine struct {
	keywords []string
}

// NewEngine flattens the policy into a single ordered keyword list.
// Always-include keywords come first, then each group's alternatives in
// declaration order; that order defines the order of matched tags.
func NewEngine(policy domain.RulePolicy) *Engine {
	keywords := make([]string, 0, len(policy.AlwaysInclude))
	keywords = append(keywords, policy.AlwaysInclude...)
	for _, group := range policy.MatchGroups {
		keywords = append(keywords, group.Any...)
	}
	return &Engine{keywords: keywords}
}

// Match returns every policy keyword contained in the item's text,
// case-insensitively, deduplicated in insertion order. An empty result
// means the item is of no interest.
func (e *Engine) Match(item domain.RawItem) []string {
	haystack := strings.ToLower(item.Title + " " + item.Summary + " " + item.Content)

	var matched []string
	hit := map[string]struct{}{}
	for _, keyword := range e.keywords {
		needle := strings.ToLower(strings.TrimSpace(keyword))
		if needle == "" {
			continue
		}
		if _, ok := hit[keyword]; ok {
			continue
		}
		if strings.Contains(haystack, needle) {
			hit[keyword] = struct{}{}
			matched = append(matched, keyword)
		}
	}

	return matched
}
