// Package extract maps free text onto session entities: category, skin type,
// problems, brand and ingredients.
package extract

import (
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"github.com/ashureev/skinmatch/internal/domain"
	"github.com/ashureev/skinmatch/internal/lexicon"
	"github.com/ashureev/skinmatch/internal/textnorm"
)

const (
	// DefaultPageSize is used when a turn names no count.
	DefaultPageSize = 3
	// MaxPageSize bounds a page size parsed from text.
	MaxPageSize = 10
	// FuzzyCutoff is the minimum similarity for a fuzzy category match.
	FuzzyCutoff = 0.8
)

// Extractor applies the lexicon tables to a turn.
type Extractor struct {
	lx          *lexicon.Lexicon
	maxPageSize int
	fuzzyWords  []fuzzyWord
}

type fuzzyWord struct {
	word     string
	category string
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithMaxPageSize overrides MaxPageSize.
func WithMaxPageSize(n int) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.maxPageSize = n
		}
	}
}

// New builds an extractor over lx.
func New(lx *lexicon.Lexicon, opts ...Option) *Extractor {
	e := &Extractor{lx: lx, maxPageSize: MaxPageSize}
	for _, c := range lx.Categories {
		for _, kw := range c.Keywords {
			e.fuzzyWords = append(e.fuzzyWords, fuzzyWord{word: kw, category: c.Key})
		}
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract updates s from raw in a fixed order: category, skin type,
// problems, brand, ingredients. Entities already on the session are never
// removed.
func (e *Extractor) Extract(raw string, s *domain.Session) {
	clean := textnorm.Normalize(raw)

	if key, ok := e.Category(clean); ok {
		s.SetCategory(key)
	} else if s.Category == "" {
		if key, ok := e.fuzzyCategory(clean); ok {
			s.SetCategory(key)
		}
	}

	if tags := e.SkinType(clean); len(tags) > 0 {
		s.SetSkinType(tags)
	}

	changed := false
	for _, p := range e.Problems(clean) {
		changed = s.AddProblem(p) || changed
	}
	for _, d := range e.ProblemDisplays(clean) {
		s.AddProblemDisplay(d)
	}
	if textnorm.ContainsAny(clean, e.lx.Brightening.Keywords) {
		changed = s.AddProblem(e.lx.Brightening.Problem) || changed
		s.AddProblemDisplay(e.lx.Brightening.Display)
	}

	if b, ok := e.Brand(clean); ok && b != s.Brand {
		s.Brand = b
		changed = true
	}

	for _, ing := range e.lx.MatchIngredients(raw) {
		changed = s.AddIngredient(ing) || changed
	}

	// A narrower filter invalidates the cursor.
	if changed {
		s.Offset = 0
	}
}

// Category returns the first category, in table order, whose keyword occurs
// in the normalized text.
func (e *Extractor) Category(clean string) (string, bool) {
	for _, c := range e.lx.Categories {
		if textnorm.ContainsAny(clean, c.Keywords) {
			return c.Key, true
		}
	}
	return "", false
}

// Categories returns every category named in the normalized text.
func (e *Extractor) Categories(clean string) []string {
	var out []string
	for _, c := range e.lx.Categories {
		if textnorm.ContainsAny(clean, c.Keywords) {
			out = append(out, c.Key)
		}
	}
	return out
}

// fuzzyCategory matches each word against the category keyword vocabulary
// and adopts the category of the closest keyword above FuzzyCutoff. Earlier
// words win over later ones.
func (e *Extractor) fuzzyCategory(clean string) (string, bool) {
	for _, w := range textnorm.Words(clean) {
		best, bestScore := "", 0.0
		for _, fw := range e.fuzzyWords {
			if score := similarity(w, fw.word); score >= FuzzyCutoff && score > bestScore {
				best, bestScore = fw.category, score
			}
		}
		if best != "" {
			return best, true
		}
	}
	return "", false
}

func similarity(a, b string) float64 {
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	longest := max(la, lb)
	if longest == 0 {
		return 0
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
}

// SkinType returns the skin type tags named in the normalized text. A
// compound phrase yields its fixed tag set; otherwise every matching skin
// type is returned in table order.
func (e *Extractor) SkinType(clean string) []string {
	for _, c := range e.lx.CompoundSkinTypes {
		if c.Phrase != "" && strings.Contains(clean, c.Phrase) {
			return c.Tags
		}
	}
	var tags []string
	for _, st := range e.lx.SkinTypes {
		if textnorm.ContainsAny(clean, st.Keywords) {
			tags = append(tags, st.Key)
		}
	}
	return tags
}

// Problems returns the canonical problem tags named in the text, leaving out
// tags that describe a skin type.
func (e *Extractor) Problems(clean string) []string {
	var out []string
	for _, p := range e.lx.Problems {
		if p.SkinType {
			continue
		}
		if textnorm.ContainsAny(clean, p.Keywords) {
			out = append(out, p.Key)
		}
	}
	return out
}

// ProblemDisplays returns the user-facing problem phrases for the text.
func (e *Extractor) ProblemDisplays(clean string) []string {
	var out []string
	produced := make(map[string]bool)
	for _, r := range e.lx.ProblemDisplays {
		if r.Unless != "" && produced[r.Unless] {
			continue
		}
		if textnorm.ContainsAny(clean, r.Keywords) {
			out = append(out, r.Display)
			produced[r.Display] = true
		}
	}
	return out
}

// Brand returns the first supported brand named in the text.
func (e *Extractor) Brand(clean string) (string, bool) {
	for _, b := range e.lx.Brands {
		if textnorm.ContainsKeyword(clean, b) {
			return b, true
		}
	}
	return "", false
}

// Ingredients returns the canonical ingredients named in raw.
func (e *Extractor) Ingredients(raw string) []string {
	return e.lx.MatchIngredients(raw)
}

// PageSize returns the first integer literal in raw clamped to
// [1, max page size], or fallback when raw has none.
func (e *Extractor) PageSize(raw string, fallback int) int {
	n, ok := textnorm.FirstInt(raw)
	if !ok {
		n = fallback
		if n < 1 {
			n = DefaultPageSize
		}
	}
	return min(max(n, 1), e.maxPageSize)
}
