package recommend

import (
	"cmp"
	"slices"
	"strings"

	"github.com/ashureev/skinmatch/internal/domain"
	"github.com/ashureev/skinmatch/internal/textnorm"
)

const defaultPage = 3

// Dry skin without an acne concern skips products marketed for acne.
const (
	drySkinType = "kering"
	acneProblem = "jerawat"
)

var acneNameWords = []string{"acne", "pimple"}

// ConversationQuery is the accumulated state of a conversation turn.
type ConversationQuery struct {
	Category    string
	SkinTypes   []string
	Problems    []string
	Ingredients []string
	Brand       string
	Offset      int
	PageSize    int
	Seed        uint64
}

// ConversationResult is one page of a conversational recommendation.
type ConversationResult struct {
	Items      []Recommendation
	Total      int
	Offset     int
	NextOffset int
	Exhausted  bool
}

// Empty reports whether the filter found nothing at all.
func (r ConversationResult) Empty() bool {
	return r.Total == 0
}

// Problems returns the problem list used for category: problems the
// category ignores are dropped, unless that leaves nothing.
func (e *Engine) Problems(category string, problems []string) []string {
	c, ok := e.lx.Category(category)
	if !ok || len(c.DropProblems) == 0 {
		return problems
	}
	kept := make([]string, 0, len(problems))
	for _, p := range problems {
		if !slices.Contains(c.DropProblems, p) {
			kept = append(kept, p)
		}
	}
	if len(kept) == 0 {
		return problems
	}
	return kept
}

// Converse filters the session's category and returns the page at Offset.
// The list is re-filtered on every call; only the offset carries over.
func (e *Engine) Converse(q ConversationQuery) ConversationResult {
	pageSize := q.PageSize
	if pageSize <= 0 {
		pageSize = defaultPage
	}
	ordered := e.conversationList(q)
	sequence := pageSequence(ordered, pageSize)

	res := ConversationResult{Total: len(sequence), Offset: q.Offset}
	if q.Offset >= len(sequence) {
		res.Exhausted = q.Offset > 0
		res.NextOffset = 0
		return res
	}

	window := brandRun(sequence[q.Offset:], pageSize)
	res.NextOffset = q.Offset + len(window)
	slices.SortStableFunc(window, func(a, b domain.Product) int {
		return cmp.Compare(b.SafetyScore(), a.SafetyScore())
	})
	res.Items = make([]Recommendation, 0, len(window))
	for _, p := range window {
		res.Items = append(res.Items, e.recommendation(p))
	}
	return res
}

func (e *Engine) conversationList(q ConversationQuery) []domain.Product {
	rows := e.catalog.Products(q.Category)
	if len(rows) == 0 {
		return nil
	}
	problems := e.Problems(q.Category, q.Problems)
	sensitive := e.isSensitive(q.SkinTypes...)
	dry := slices.Contains(q.SkinTypes, drySkinType) && !slices.Contains(problems, acneProblem)
	brand := strings.ToLower(strings.TrimSpace(q.Brand))
	avoid := e.lx.SensitiveAvoid()

	rows = filter(rows, func(p domain.Product) bool {
		ing := textnorm.DatasetText(p.Ingredients)
		if len(q.Ingredients) > 0 && !containsAnyFold(ing, q.Ingredients) {
			return false
		}
		if brand != "" && !strings.Contains(textnorm.DatasetText(p.Brand), brand) {
			return false
		}
		if len(q.SkinTypes) > 0 && !containsAnyFold(textnorm.DatasetText(p.SkinTypes), q.SkinTypes) {
			return false
		}
		if sensitive && containsAnyFold(ing, avoid) {
			return false
		}
		if dry && containsAnyFold(strings.ToLower(p.Name), acneNameWords) {
			return false
		}
		return true
	})

	rows = e.filterProblems(rows, problems)
	rows = filter(rows, func(p domain.Product) bool { return e.priorityMatch(problems, p) })
	rows = filter(rows, func(p domain.Product) bool { return safetyRule(sensitive, p) })
	return rank(dedup(rows), seededRand(q.Seed))
}

// priorityMatch requires a recommended ingredient for one of the problems
// when any problem has a configured list.
func (e *Engine) priorityMatch(problems []string, p domain.Product) bool {
	hasRule := false
	source := textnorm.DatasetText(p.Ingredients) + " " + textnorm.DatasetText(p.Problems)
	for _, prob := range problems {
		s, ok := e.lx.Suggestion(prob)
		if !ok || len(s.Recommended) == 0 {
			continue
		}
		hasRule = true
		if containsAnyFold(source, s.Recommended) {
			return true
		}
	}
	return !hasRule
}

// pageSequence partitions ordered rows into consecutive pages of at most
// size rows with distinct brands, preserving order within each page, and
// returns the pages concatenated.
func pageSequence(ordered []domain.Product, size int) []domain.Product {
	out := make([]domain.Product, 0, len(ordered))
	remaining := ordered
	for len(remaining) > 0 {
		seen := make(map[string]struct{}, size)
		var rest []domain.Product
		taken := 0
		for _, p := range remaining {
			b := brandKey(p)
			if _, dup := seen[b]; dup || taken >= size {
				rest = append(rest, p)
				continue
			}
			seen[b] = struct{}{}
			out = append(out, p)
			taken++
		}
		remaining = rest
	}
	return out
}

// brandRun returns the longest prefix of rows, up to size, with distinct brands.
func brandRun(rows []domain.Product, size int) []domain.Product {
	seen := make(map[string]struct{}, size)
	var out []domain.Product
	for _, p := range rows {
		if len(out) >= size {
			break
		}
		b := brandKey(p)
		if _, dup := seen[b]; dup {
			break
		}
		seen[b] = struct{}{}
		out = append(out, p)
	}
	return out
}
