// Package recommend filters, ranks and pages the product catalog.
package recommend

import (
	"cmp"
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/ashureev/skinmatch/internal/domain"
	"github.com/ashureev/skinmatch/internal/lexicon"
	"github.com/ashureev/skinmatch/internal/textnorm"
)

const (
	// DefaultTopK is the stateless result size when none is requested.
	DefaultTopK = 10
	// DefaultBrowseLimit caps browse results.
	DefaultBrowseLimit = 60
)

const (
	noteFragrance     = "Produk ini mengandung fragrance, sebaiknya dihindari jika kulit sangat sensitif."
	noteAlcohol       = "Produk ini mengandung alkohol, perhatikan bila kulit mudah kering atau iritasi."
	noteComedogenic   = "Produk ini berpotensi comedogenic, kurang cocok jika mudah berjerawat."
	defaultBenefitMsg = "Membantu merawat dan menjaga kesehatan kulit."
	maxBenefits       = 4
)

// Prefs are the boolean safety preferences. A true field requires the
// matching flag on the product.
type Prefs struct {
	AlcoholFree    bool `json:"alcohol_free"`
	FragranceFree  bool `json:"fragrance_free"`
	NonComedogenic bool `json:"non_comedogenic"`
}

func (p Prefs) accept(prod domain.Product) bool {
	if p.AlcoholFree && !prod.AlcoholFree {
		return false
	}
	if p.FragranceFree && !prod.FragranceFree {
		return false
	}
	if p.NonComedogenic && !prod.NonComedogenic {
		return false
	}
	return true
}

// Recommendation is an accepted product with its derived fields.
type Recommendation struct {
	domain.Product
	SafetyScore int      `json:"safety_score"`
	Notes       []string `json:"note"`
	Benefits    string   `json:"manfaat_singkat"`
}

// Engine runs queries against one catalog. It is safe for concurrent use.
type Engine struct {
	lx          *lexicon.Lexicon
	catalog     *domain.Catalog
	topK        int
	browseLimit int
}

// Option configures an Engine.
type Option func(*Engine)

// WithTopK overrides DefaultTopK.
func WithTopK(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.topK = n
		}
	}
}

// WithBrowseLimit overrides DefaultBrowseLimit.
func WithBrowseLimit(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.browseLimit = n
		}
	}
}

// NewEngine builds an engine over catalog.
func NewEngine(lx *lexicon.Lexicon, catalog *domain.Catalog, opts ...Option) *Engine {
	e := &Engine{
		lx:          lx,
		catalog:     catalog,
		topK:        DefaultTopK,
		browseLimit: DefaultBrowseLimit,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Catalog returns the catalog the engine reads.
func (e *Engine) Catalog() *domain.Catalog {
	return e.catalog
}

// Notes returns the warning notes of p in fixed order: fragrance, alcohol,
// comedogenic, then the catalog note.
func Notes(p domain.Product) []string {
	notes := []string{}
	if !p.FragranceFree {
		notes = append(notes, noteFragrance)
	}
	if !p.AlcoholFree {
		notes = append(notes, noteAlcohol)
	}
	if !p.NonComedogenic {
		notes = append(notes, noteComedogenic)
	}
	if n := strings.TrimSpace(p.Note); n != "" && !strings.EqualFold(n, "nan") {
		notes = append(notes, n)
	}
	return notes
}

func (e *Engine) recommendation(p domain.Product) Recommendation {
	return Recommendation{
		Product:     p,
		SafetyScore: p.SafetyScore(),
		Notes:       Notes(p),
		Benefits:    e.Benefits(p),
	}
}

// isSensitive reports whether any tag is the sensitive skin type.
func (e *Engine) isSensitive(tags ...string) bool {
	for _, t := range tags {
		if textnorm.Normalize(t) == e.lx.SensitiveSkinType {
			return true
		}
	}
	return false
}

// safetyRule requires every flag for sensitive skin and alcohol-free plus
// non-comedogenic otherwise.
func safetyRule(sensitive bool, p domain.Product) bool {
	if sensitive {
		return p.AlcoholFree && p.FragranceFree && p.NonComedogenic
	}
	return p.AlcoholFree && p.NonComedogenic
}

func dedup(rows []domain.Product) []domain.Product {
	seen := make(map[domain.ProductKey]struct{}, len(rows))
	out := rows[:0:0]
	for _, p := range rows {
		if _, ok := seen[p.Key()]; ok {
			continue
		}
		seen[p.Key()] = struct{}{}
		out = append(out, p)
	}
	return out
}

// rank shuffles rows then stable-sorts them by descending safety score, so
// the random order survives among equal scores.
func rank(rows []domain.Product, r *rand.Rand) []domain.Product {
	out := slices.Clone(rows)
	r.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	slices.SortStableFunc(out, func(a, b domain.Product) int {
		return cmp.Compare(b.SafetyScore(), a.SafetyScore())
	})
	return out
}

func seededRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func brandKey(p domain.Product) string {
	return strings.ToLower(strings.TrimSpace(p.Brand))
}

// brandCap walks rows in order and accepts at most one product per brand,
// stopping after limit accepted rows.
func brandCap(rows []domain.Product, limit int) []domain.Product {
	seen := make(map[string]struct{})
	var out []domain.Product
	for _, p := range rows {
		if len(out) >= limit {
			break
		}
		b := brandKey(p)
		if _, ok := seen[b]; ok {
			continue
		}
		seen[b] = struct{}{}
		out = append(out, p)
	}
	return out
}

func filter(rows []domain.Product, keep func(domain.Product) bool) []domain.Product {
	var out []domain.Product
	for _, p := range rows {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

// problemMatches reports whether any of the user's problems matches the
// product's problem text. A problem that resolves to a master group matches
// on any token of the group's variants; every problem also matches on its
// own tokens.
func (e *Engine) problemMatches(problems []string, productProblems string) bool {
	rowTokens := textnorm.Tokenize(productProblems)
	if len(rowTokens) == 0 {
		return false
	}
	for _, up := range problems {
		if _, variants, ok := e.lx.ProblemMaster(up); ok {
			for _, v := range variants {
				if sharesToken(textnorm.Tokenize(v), rowTokens) {
					return true
				}
			}
		}
		if sharesToken(textnorm.Tokenize(up), rowTokens) {
			return true
		}
	}
	return false
}

func sharesToken(a, b map[string]struct{}) bool {
	for tok := range a {
		if _, ok := b[tok]; ok {
			return true
		}
	}
	return false
}

// filterProblems keeps rows matching any problem. When nothing matches the
// problem constraint is dropped and rows are returned unchanged.
func (e *Engine) filterProblems(rows []domain.Product, problems []string) []domain.Product {
	if len(problems) == 0 {
		return rows
	}
	matched := filter(rows, func(p domain.Product) bool {
		return e.problemMatches(problems, p.Problems)
	})
	if len(matched) == 0 {
		return rows
	}
	return matched
}

func containsAnyFold(text string, terms []string) bool {
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" && strings.Contains(text, t) {
			return true
		}
	}
	return false
}
