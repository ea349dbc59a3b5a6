// Package rank implements the fixed-weight search scoring heuristic.
// Scoring is deterministic and stateless; it is recomputed per query with
// no external index.
package rank

import (
	"sort"
	"strings"

	"bizbranches/pkg/model"
)

// Weights for each independently evaluated condition. Conditions are not
// exclusive, so one record can accumulate several.
const (
	WeightCategoryExact    = 100
	WeightCategoryContains = 50
	WeightSubcategory      = 40
	WeightNamePrefix       = 30
	WeightNameContains     = 20
	WeightDescription      = 5
)

// MinQueryLen is the minimum effective query length; shorter queries
// short-circuit to an empty result set rather than erroring.
const MinQueryLen = 2

// Score sums the weights of every condition the business satisfies for
// query. The query must already be lowercased and trimmed.
func Score(b *model.Business, query string) int {
	name := strings.ToLower(b.Name)
	category := strings.ToLower(b.Category)
	subcategory := strings.ToLower(b.Subcategory)
	description := strings.ToLower(b.Description)

	score := 0
	if category == query {
		score += WeightCategoryExact
	}
	if strings.Contains(category, query) {
		score += WeightCategoryContains
	}
	if subcategory != "" && strings.Contains(subcategory, query) {
		score += WeightSubcategory
	}
	if strings.HasPrefix(name, query) {
		score += WeightNamePrefix
	}
	if strings.Contains(name, query) {
		score += WeightNameContains
	}
	if strings.Contains(description, query) {
		score += WeightDescription
	}
	return score
}

// Rank orders candidates by (score desc, createdAt desc) and drops
// non-matching records. The input slice is not modified.
func Rank(candidates []*model.Business, query string) []*model.Business {
	query = strings.ToLower(strings.TrimSpace(query))
	if len(query) < MinQueryLen {
		return nil
	}

	type scored struct {
		b     *model.Business
		score int
	}

	matches := make([]scored, 0, len(candidates))
	for _, b := range candidates {
		if s := Score(b, query); s > 0 {
			matches = append(matches, scored{b: b, score: s})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].score != matches[j].score {
			return matches[i].score > matches[j].score
		}
		return matches[i].b.CreatedAt.After(matches[j].b.CreatedAt)
	})

	out := make([]*model.Business, len(matches))
	for i, m := range matches {
		out[i] = m.b
	}
	return out
}
