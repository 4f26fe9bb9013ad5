package agent

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/ashureev/skinmatch/internal/domain"
	"github.com/ashureev/skinmatch/internal/extract"
	"github.com/ashureev/skinmatch/internal/intent"
	"github.com/ashureev/skinmatch/internal/lexicon"
	"github.com/ashureev/skinmatch/internal/recommend"
	"github.com/ashureev/skinmatch/internal/textnorm"
)

var (
	quickPairWords   = []string{"boleh digabung", "barengan"}
	brandListWords   = []string{"produk", "apa saja"}
	benefitAskWords  = []string{"manfaat", "fungsi", "buat apa"}
	morningWords     = []string{"pagi", "day"}
	eveningWords     = []string{"malam", "night"}
	maxBrandProducts = 3
)

// Engine is the rule-based turn processor. It holds no per-session state and
// is safe for concurrent use across sessions.
type Engine struct {
	lx         *lexicon.Lexicon
	rec        *recommend.Engine
	extractor  *extract.Extractor
	classifier *intent.Classifier
	guard      *intent.Guard
	pageSize   int
	seed       func() uint64
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithDefaultPageSize sets the page size of a fresh recommendation.
func WithDefaultPageSize(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.pageSize = n
		}
	}
}

// WithMaxPageSize bounds page sizes parsed from messages.
func WithMaxPageSize(n int) EngineOption {
	return func(e *Engine) {
		e.extractor = extract.New(e.lx, extract.WithMaxPageSize(n))
	}
}

// WithSeedSource sets where reset sessions draw their shuffle seed.
func WithSeedSource(f func() uint64) EngineOption {
	return func(e *Engine) {
		if f != nil {
			e.seed = f
		}
	}
}

// NewEngine wires the extractor, classifier and gibberish guard over lx, and
// filters with rec.
func NewEngine(lx *lexicon.Lexicon, rec *recommend.Engine, opts ...EngineOption) *Engine {
	e := &Engine{
		lx:         lx,
		rec:        rec,
		extractor:  extract.New(lx),
		classifier: intent.NewClassifier(lx),
		guard:      intent.NewGuard(lx),
		pageSize:   extract.DefaultPageSize,
		seed:       rand.Uint64,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ProcessTurn handles one message. The caller must hold s exclusively.
func (e *Engine) ProcessTurn(ctx context.Context, s *domain.Session, raw string) (Turn, error) {
	if err := ctx.Err(); err != nil {
		return Turn{}, fmt.Errorf("process turn: %w", err)
	}
	if e == nil || e.rec == nil || s == nil || s.Catalog.Empty() {
		return Turn{}, fmt.Errorf("process turn: %w", ErrNotInitialized)
	}

	s.LastRawInput = raw
	clean := textnorm.Normalize(raw)
	label := e.classifier.Classify(raw)
	turn := Turn{Intent: label}

	if label == intent.Reset {
		s.Reset(e.seed())
		turn.Reply = replyReset
		turn.Reset = true
		return turn, nil
	}

	if e.guard.IsGibberish(raw) {
		turn.Reply = gibberishReply(raw)
		turn.Gibberish = true
		return turn, nil
	}

	current := e.extractor.Ingredients(raw)
	e.extractor.Extract(raw, s)
	focus := focusIngredients(current, s.Ingredients)

	switch {
	case label == intent.IngredientInteraction && len(s.Ingredients) >= 2:
		turn.Reply = e.interactionReply(focus, !textnorm.ContainsAny(clean, quickPairWords))
		return turn, nil

	case label == intent.IngredientSafety && len(s.Ingredients) > 0:
		turn.Reply = e.safetyReply(focus)
		return turn, nil

	case label == intent.IngredientInfo || label == intent.ProductOrIngredientInfo:
		turn.Reply = e.infoReply(s, clean, focus)
		return turn, nil

	case label == intent.Routine:
		turn.Reply = routineReply(clean)
		return turn, nil

	case label == intent.MoreRecommend:
		if s.Category == "" {
			turn.Reply = replyAskCategoryFirst
			return turn, nil
		}
		s.PageSize = e.extractor.PageSize(raw, s.PageSize)
		e.recommendTurn(s, clean, &turn)
		return turn, nil

	case label == intent.Recommend || label == intent.RecommendByIngredient ||
		(label == intent.Unknown && (s.HasSkinType() || len(s.Problems) > 0)):
		s.PageSize = e.extractor.PageSize(raw, e.pageSize)
		e.freshRecommendation(s, clean, &turn)
		return turn, nil
	}

	if s.HasSkinType() && len(s.Problems) > 0 && s.Category != "" {
		if s.PageSize <= 0 {
			s.PageSize = e.pageSize
		}
		e.recommendTurn(s, clean, &turn)
		return turn, nil
	}

	turn.Reply = replyFallback
	return turn, nil
}

// freshRecommendation asks for whatever the list still needs, or lists the
// first page once skin type and category are known.
func (e *Engine) freshRecommendation(s *domain.Session, clean string, turn *Turn) {
	if !s.HasSkinType() {
		turn.Reply = askSkinTypeReply(slices.Concat(s.Ingredients, s.ProblemDisplay))
		return
	}
	if len(s.Ingredients) > 0 && s.Category == "" {
		if reply, ok := e.ingredientCategoriesReply(s.Ingredients); ok {
			turn.Reply = reply
			return
		}
	}
	if len(s.Problems) == 0 && s.Category == "" {
		turn.Reply = askProblemsReply(e.opening(s, clean), s.SkinType)
		return
	}
	if s.Category == "" {
		turn.Reply = replyAskCategory
		return
	}
	e.recommendTurn(s, clean, turn)
}

// recommendTurn lists the page at the session offset and advances it.
func (e *Engine) recommendTurn(s *domain.Session, clean string, turn *Turn) {
	problems := e.rec.Problems(s.Category, s.Problems)
	res := e.rec.Converse(recommend.ConversationQuery{
		Category:    s.Category,
		SkinTypes:   s.SkinType,
		Problems:    problems,
		Ingredients: s.Ingredients,
		Brand:       s.Brand,
		Offset:      s.Offset,
		PageSize:    s.PageSize,
		Seed:        s.Seed,
	})

	switch {
	case res.Empty():
		turn.Reply = e.notFoundReply(s.Category, s.Brand)
		return
	case res.Exhausted:
		s.Offset = 0
		turn.Reply = replyExhausted
		turn.Exhausted = true
		return
	}

	s.Offset = res.NextOffset
	turn.Items = res.Items
	turn.Reply = e.listReply(listContext{
		opening:     e.opening(s, clean),
		category:    s.Category,
		skinTypes:   s.SkinType,
		problems:    problems,
		displays:    s.ProblemDisplay,
		rawProblems: s.Problems,
		ingredients: s.Ingredients,
		items:       res.Items,
	})
}

// ingredientCategoriesReply names the categories holding the ingredients,
// from the catalog first and the lexicon second.
func (e *Engine) ingredientCategoriesReply(ingredients []string) (string, bool) {
	if cats := e.rec.CategoriesWith(ingredients); len(cats) > 0 {
		return categoriesWithReply(ingredients, e.labels(cats)), true
	}
	ing, ok := e.lx.Ingredient(ingredients[0])
	if !ok || len(ing.Categories) == 0 {
		return "", false
	}
	return lexiconCategoriesReply(displayName(ing), e.labels(ing.Categories)), true
}

func (e *Engine) infoReply(s *domain.Session, clean string, focus []string) string {
	if s.Brand != "" {
		if textnorm.ContainsAny(clean, brandListWords) && !textnorm.ContainsAny(clean, benefitAskWords) {
			if reply, ok := e.brandListReply(s.Brand, s.Category); ok {
				return reply
			}
		}
		p, ok := e.rec.BestBrandProduct(s.Brand, clean)
		if !ok {
			return replyAskProductName
		}
		return educationalReply(p, e.rec.ProductBenefits(p))
	}
	if len(focus) > 0 {
		return e.ingredientInfoReply(focus[0])
	}
	return replyAskInfoTarget
}

func (e *Engine) brandListReply(brand, category string) (string, bool) {
	var names []string
	for _, p := range e.rec.BrandProducts(brand, category) {
		if full := p.FullName(); !slices.Contains(names, full) {
			names = append(names, full)
		}
		if len(names) >= maxBrandProducts {
			break
		}
	}
	if len(names) == 0 {
		return "", false
	}
	return brandProductsReply(brand, names), true
}

func (e *Engine) labels(keys []string) []string {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, e.lx.CategoryLabel(k))
	}
	return out
}

// focusIngredients orders the ingredients named this turn first, followed by
// the rest of the session's ingredients.
func focusIngredients(current, session []string) []string {
	out := slices.Clone(current)
	for _, ing := range session {
		if !slices.Contains(out, ing) {
			out = append(out, ing)
		}
	}
	return out
}
