package recommend

import (
	"math/rand/v2"
	"strings"

	"github.com/ashureev/skinmatch/internal/domain"
	"github.com/ashureev/skinmatch/internal/textnorm"
)

// Query is a stateless recommendation request.
type Query struct {
	Category    string
	SkinType    string
	Problems    []string
	Ingredients []string
	Brand       string
	Prefs       Prefs
	PageSize    int
	// Rand drives the tie shuffle. A nil Rand draws a fresh random source.
	Rand *rand.Rand
}

// Recommend filters one category of the catalog:
//
//  1. resolve the category alias, unknown categories return nothing
//  2. keep rows whose skin-type text contains the skin type
//  3. keep rows containing any requested ingredient, with no fallback
//  4. keep rows matching any problem, falling back to the previous set
//  5. apply preference flags and brand equality
//  6. apply the skin-type safety rule
//  7. drop duplicate (name, brand) rows
//  8. shuffle, then stable sort by safety score
//  9. accept at most one row per brand, up to the page size
//
// Accepted rows carry their warning notes and benefit summary.
func (e *Engine) Recommend(q Query) []Recommendation {
	key, ok := e.lx.ResolveCategory(q.Category)
	if !ok {
		return nil
	}
	rows := e.catalog.Products(key)
	if len(rows) == 0 {
		return nil
	}

	if skin := textnorm.Normalize(q.SkinType); skin != "" {
		rows = filter(rows, func(p domain.Product) bool {
			return strings.Contains(textnorm.Normalize(p.SkinTypes), skin)
		})
	}

	if ings := normalizedTerms(q.Ingredients); len(ings) > 0 {
		rows = filter(rows, func(p domain.Product) bool {
			return containsAnyFold(textnorm.Normalize(p.Ingredients), ings)
		})
		if len(rows) == 0 {
			return nil
		}
	}

	rows = e.filterProblems(rows, normalizedTerms(q.Problems))

	rows = filter(rows, func(p domain.Product) bool {
		if !q.Prefs.accept(p) {
			return false
		}
		return q.Brand == "" || strings.EqualFold(strings.TrimSpace(p.Brand), strings.TrimSpace(q.Brand))
	})
	if len(rows) == 0 {
		return nil
	}

	sensitive := e.isSensitive(q.SkinType)
	rows = filter(rows, func(p domain.Product) bool { return safetyRule(sensitive, p) })
	if len(rows) == 0 {
		return nil
	}

	r := q.Rand
	if r == nil {
		r = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	limit := q.PageSize
	if limit <= 0 {
		limit = e.topK
	}
	accepted := brandCap(rank(dedup(rows), r), limit)

	out := make([]Recommendation, 0, len(accepted))
	for _, p := range accepted {
		out = append(out, e.recommendation(p))
	}
	return out
}

func normalizedTerms(in []string) []string {
	var out []string
	for _, s := range in {
		if n := textnorm.Normalize(s); n != "" {
			out = append(out, n)
		}
	}
	return out
}
