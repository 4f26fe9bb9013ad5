package recommend

import (
	"strings"

	"github.com/ashureev/skinmatch/internal/domain"
)

// BrowseQuery is the simple catalog search used by listing pages.
type BrowseQuery struct {
	Search     string
	Brands     []string
	Categories []string
	Prefs      Prefs
	Limit      int
}

// Browse searches the catalog by name or ingredient text, brand, category
// and preference flags. It applies no ranking and no brand cap.
func (e *Engine) Browse(q BrowseQuery) []domain.Product {
	rows := e.browseRows(q.Categories)

	if s := strings.ToLower(strings.TrimSpace(q.Search)); s != "" {
		rows = filter(rows, func(p domain.Product) bool {
			return strings.Contains(strings.ToLower(p.Name), s) ||
				strings.Contains(strings.ToLower(p.Ingredients), s)
		})
	}

	if brands := nonEmpty(q.Brands); len(brands) > 0 {
		rows = filter(rows, func(p domain.Product) bool {
			for _, b := range brands {
				if strings.EqualFold(strings.TrimSpace(p.Brand), b) {
					return true
				}
			}
			return false
		})
	}

	rows = filter(rows, q.Prefs.accept)
	rows = dedup(rows)

	limit := q.Limit
	if limit <= 0 || limit > e.browseLimit {
		limit = e.browseLimit
	}
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows
}

func (e *Engine) browseRows(categories []string) []domain.Product {
	var keys []string
	for _, c := range nonEmpty(categories) {
		if key, ok := e.lx.ResolveCategory(c); ok {
			keys = append(keys, key)
		}
	}
	// Unknown or missing categories search the whole catalog.
	if len(keys) == 0 {
		return e.catalog.All()
	}
	var rows []domain.Product
	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		if seen[k] {
			continue
		}
		seen[k] = true
		rows = append(rows, e.catalog.Products(k)...)
	}
	return rows
}

func nonEmpty(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
