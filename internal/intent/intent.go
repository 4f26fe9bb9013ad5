// Package intent assigns one label to a turn with an ordered keyword cascade.
package intent

import (
	"github.com/ashureev/skinmatch/internal/lexicon"
	"github.com/ashureev/skinmatch/internal/textnorm"
)

// Label is the intent of a single turn.
type Label string

const (
	Reset                   Label = "RESET"
	IngredientInteraction   Label = "INGREDIENT_INTERACTION"
	Routine                 Label = "ROUTINE"
	IngredientSafety        Label = "INGREDIENT_SAFETY"
	IngredientInfo          Label = "INGREDIENT_INFO"
	ProductOrIngredientInfo Label = "PRODUCT_OR_INGREDIENT_INFO"
	RecommendByIngredient   Label = "RECOMMEND_BY_INGREDIENT"
	MoreRecommend           Label = "MORE_RECOMMEND"
	Recommend               Label = "RECOMMEND"
	Unknown                 Label = "UNKNOWN"
)

// Labels lists every label in cascade order.
var Labels = []Label{
	Reset, IngredientInteraction, Routine, IngredientSafety, IngredientInfo,
	ProductOrIngredientInfo, RecommendByIngredient, MoreRecommend, Recommend, Unknown,
}

var (
	resetWords       = []string{"reset", "ulang", "hapus", "mulai lagi"}
	interactionWords = []string{"boleh digabung", "barengan", "gabung", "tumpuk", "campur"}
	routineWords     = []string{"urutan", "pagi", "malam"}
	safetyWords      = []string{"aman"}
	infoWords        = []string{"fungsi", "manfaat", "buat apa", "gunanya"}
	productWords     = []string{"produk", "rekomendasi"}
	moreWords        = []string{
		"lainnya", "yang lain", "produk lain", "mau yang lain",
		"lagi", "tambah", "rekomendasi lainnya",
	}
	adviceWords = []string{"rekomendasi", "saran", "pakai apa", "dong"}
)

// Rule is one step of the cascade. Match receives normalized text.
type Rule struct {
	Label Label
	Match func(text string) bool
}

// Classifier evaluates its rules top-down; the first match wins.
type Classifier struct {
	lx    *lexicon.Lexicon
	rules []Rule
}

// NewClassifier builds the cascade over the lexicon tables.
func NewClassifier(lx *lexicon.Lexicon) *Classifier {
	c := &Classifier{lx: lx}
	hasAny := func(words []string) func(string) bool {
		return func(text string) bool { return textnorm.ContainsAny(text, words) }
	}
	c.rules = []Rule{
		{Reset, hasAny(resetWords)},
		{IngredientInteraction, hasAny(interactionWords)},
		{Routine, hasAny(routineWords)},
		{IngredientSafety, hasAny(safetyWords)},
		{IngredientInfo, func(text string) bool {
			return textnorm.ContainsAny(text, infoWords) && c.hasIngredient(text)
		}},
		{ProductOrIngredientInfo, hasAny(infoWords)},
		{RecommendByIngredient, func(text string) bool {
			return textnorm.ContainsAny(text, productWords) && c.hasIngredient(text)
		}},
		{MoreRecommend, hasAny(moreWords)},
		{Recommend, c.mentionsRecommendation},
		{IngredientInfo, c.hasIngredient},
	}
	return c
}

// Rules returns the cascade in evaluation order.
func (c *Classifier) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	copy(out, c.rules)
	return out
}

// Classify returns the label of the first rule that matches raw.
func (c *Classifier) Classify(raw string) Label {
	text := textnorm.Normalize(raw)
	for _, r := range c.rules {
		if r.Match(text) {
			return r.Label
		}
	}
	return Unknown
}

func (c *Classifier) hasIngredient(text string) bool {
	return len(c.lx.MatchIngredients(text)) > 0
}

func (c *Classifier) mentionsRecommendation(text string) bool {
	for _, cat := range c.lx.Categories {
		if textnorm.ContainsAny(text, cat.Keywords) {
			return true
		}
	}
	for _, st := range c.lx.SkinTypes {
		if textnorm.ContainsAny(text, st.Keywords) {
			return true
		}
	}
	for _, p := range c.lx.Problems {
		if textnorm.ContainsAny(text, p.Keywords) {
			return true
		}
	}
	return textnorm.ContainsAny(text, adviceWords)
}
