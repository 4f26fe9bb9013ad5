// Package lexicon holds the read-only keyword, synonym and rule tables the
// recommender matches text against.
package lexicon

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/ashureev/skinmatch/internal/textnorm"
	"gopkg.in/yaml.v3"
)

//go:embed data/lexicon.yaml
var defaultData []byte

// ErrEmptyTable is returned when a required table has no entries.
var ErrEmptyTable = errors.New("lexicon table is empty")

// Verdict classifies how an ingredient behaves on sensitive skin.
type Verdict string

const (
	VerdictSafe    Verdict = "safe"
	VerdictAvoid   Verdict = "avoid"
	VerdictUnknown Verdict = "unknown"
)

// StrategyRule is one phrase of the per-category recommendation narrative.
// An empty WhenProblems list applies unconditionally.
type StrategyRule struct {
	Phrase       string   `yaml:"phrase"`
	WhenProblems []string `yaml:"when_problems"`
}

// Category describes one product category and the words that select it.
type Category struct {
	Key          string         `yaml:"key"`
	Label        string         `yaml:"label"`
	Keywords     []string       `yaml:"keywords"`
	Aliases      []string       `yaml:"aliases"`
	BaseBenefits []string       `yaml:"base_benefits"`
	Strategy     []StrategyRule `yaml:"strategy"`
	DropProblems []string       `yaml:"drop_problems"`
}

// SkinType maps a canonical skin-type tag to its keywords.
type SkinType struct {
	Key      string   `yaml:"key"`
	Keywords []string `yaml:"keywords"`
	Strategy string   `yaml:"strategy"`
}

// CompoundSkinType maps a phrase to a fixed set of tags.
type CompoundSkinType struct {
	Phrase string   `yaml:"phrase"`
	Tags   []string `yaml:"tags"`
}

// Problem maps a canonical problem tag to its keywords. Entries flagged as
// SkinType double as skin types and never enter a session's problem list.
type Problem struct {
	Key      string   `yaml:"key"`
	Keywords []string `yaml:"keywords"`
	SkinType bool     `yaml:"skin_type"`
}

// DisplayRule produces a user-facing problem phrase. The phrase is skipped
// when the Unless display was already produced from the same text.
type DisplayRule struct {
	Display  string   `yaml:"display"`
	Keywords []string `yaml:"keywords"`
	Unless   string   `yaml:"unless"`
}

// Brightening implies a problem tag from brightening vocabulary.
type Brightening struct {
	Keywords []string `yaml:"keywords"`
	Problem  string   `yaml:"problem"`
	Display  string   `yaml:"display"`
}

// ProblemGroup is a master problem and the variants that denote it.
type ProblemGroup struct {
	Master   string   `yaml:"master"`
	Variants []string `yaml:"variants"`
}

// IngredientInfo is the educational record for an ingredient.
type IngredientInfo struct {
	Display          string  `yaml:"display"`
	Function         string  `yaml:"function"`
	SuitableFor      string  `yaml:"suitable_for"`
	NotSuitableFor   string  `yaml:"not_suitable_for"`
	SensitiveNote    string  `yaml:"sensitive_note"`
	SensitiveVerdict Verdict `yaml:"sensitive_verdict"`
}

// Ingredient is a canonical ingredient with its synonyms.
type Ingredient struct {
	Name       string         `yaml:"name"`
	Synonyms   []string       `yaml:"synonyms"`
	Categories []string       `yaml:"categories"`
	Info       IngredientInfo `yaml:"info"`

	patterns []*regexp.Regexp
}

// Interaction describes what happens when two ingredients are combined.
type Interaction struct {
	Pair     []string `yaml:"pair"`
	Safety   string   `yaml:"safety"`
	Function string   `yaml:"function"`
	Usage    string   `yaml:"usage"`
	Warning  string   `yaml:"warning"`
}

// Suggestion lists ingredients to look for and to avoid for a problem.
type Suggestion struct {
	Problem     string   `yaml:"problem"`
	Recommended []string `yaml:"recommended"`
	Avoid       []string `yaml:"avoid"`
}

// BenefitRule gives the benefit phrases of an ingredient mention.
type BenefitRule struct {
	Ingredient string   `yaml:"ingredient"`
	Benefits   []string `yaml:"benefits"`
}

// Lexicon is the full set of static tables. It is immutable after Load.
type Lexicon struct {
	Categories        []Category         `yaml:"categories"`
	SkinTypes         []SkinType         `yaml:"skin_types"`
	CompoundSkinTypes []CompoundSkinType `yaml:"compound_skin_types"`
	SensitiveSkinType string             `yaml:"sensitive_skin_type"`
	Problems          []Problem          `yaml:"problems"`
	ProblemDisplays   []DisplayRule      `yaml:"problem_displays"`
	Brightening       Brightening        `yaml:"brightening"`
	ProblemGroups     []ProblemGroup     `yaml:"problem_groups"`
	Ingredients       []Ingredient       `yaml:"ingredients"`
	Interactions      []Interaction      `yaml:"interactions"`
	Suggestions       []Suggestion       `yaml:"suggestions"`
	BenefitRules      []BenefitRule      `yaml:"benefit_rules"`
	Brands            []string           `yaml:"brands"`
	NavigationPhrases []string           `yaml:"navigation_phrases"`
	InfoWords         []string           `yaml:"info_words"`
	OpeningVariants   []string           `yaml:"opening_variants"`

	categoryByKey     map[string]int
	ingredientByName  map[string]int
	interactionByPair map[string]int
	suggestionByProb  map[string]int
	groupVariants     []groupVariants
}

type groupVariants struct {
	master string
	clean  []string
	tokens []map[string]struct{}
}

// Default parses the embedded tables.
func Default() (*Lexicon, error) {
	return Parse(defaultData)
}

// MustDefault is Default for tests and static initialisation.
func MustDefault() *Lexicon {
	lx, err := Default()
	if err != nil {
		panic("lexicon: " + err.Error())
	}
	return lx
}

// Load reads tables from path, or the embedded tables when path is empty.
func Load(path string) (*Lexicon, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lexicon %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML tables, normalizes keywords and builds lookup indexes.
func Parse(data []byte) (*Lexicon, error) {
	var lx Lexicon
	if err := yaml.Unmarshal(data, &lx); err != nil {
		return nil, fmt.Errorf("decode lexicon: %w", err)
	}
	if err := lx.Validate(); err != nil {
		return nil, err
	}
	if err := lx.index(); err != nil {
		return nil, err
	}
	return &lx, nil
}

// Validate checks that every table the engine depends on is populated.
func (lx *Lexicon) Validate() error {
	checks := []struct {
		name string
		n    int
	}{
		{"categories", len(lx.Categories)},
		{"skin_types", len(lx.SkinTypes)},
		{"problems", len(lx.Problems)},
		{"problem_groups", len(lx.ProblemGroups)},
		{"ingredients", len(lx.Ingredients)},
		{"interactions", len(lx.Interactions)},
		{"brands", len(lx.Brands)},
		{"opening_variants", len(lx.OpeningVariants)},
	}
	for _, c := range checks {
		if c.n == 0 {
			return fmt.Errorf("%s: %w", c.name, ErrEmptyTable)
		}
	}
	for _, it := range lx.Interactions {
		if len(it.Pair) != 2 {
			return fmt.Errorf("interaction %v: pair must name exactly two ingredients", it.Pair)
		}
	}
	return nil
}

func normalizeAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if n := textnorm.Normalize(s); n != "" {
			out = append(out, n)
		}
	}
	return out
}

func (lx *Lexicon) index() error {
	lx.categoryByKey = make(map[string]int, len(lx.Categories))
	for i := range lx.Categories {
		c := &lx.Categories[i]
		c.Keywords = normalizeAll(c.Keywords)
		c.Aliases = normalizeAll(c.Aliases)
		lx.categoryByKey[c.Key] = i
	}
	for i := range lx.SkinTypes {
		lx.SkinTypes[i].Keywords = normalizeAll(lx.SkinTypes[i].Keywords)
	}
	for i := range lx.CompoundSkinTypes {
		lx.CompoundSkinTypes[i].Phrase = textnorm.Normalize(lx.CompoundSkinTypes[i].Phrase)
	}
	for i := range lx.Problems {
		lx.Problems[i].Keywords = normalizeAll(lx.Problems[i].Keywords)
	}
	for i := range lx.ProblemDisplays {
		lx.ProblemDisplays[i].Keywords = normalizeAll(lx.ProblemDisplays[i].Keywords)
	}
	lx.Brightening.Keywords = normalizeAll(lx.Brightening.Keywords)
	lx.Brands = normalizeAll(lx.Brands)
	lx.NavigationPhrases = normalizeAll(lx.NavigationPhrases)
	lx.InfoWords = normalizeAll(lx.InfoWords)

	lx.ingredientByName = make(map[string]int, len(lx.Ingredients))
	for i := range lx.Ingredients {
		ing := &lx.Ingredients[i]
		ing.patterns = make([]*regexp.Regexp, 0, len(ing.Synonyms))
		for _, syn := range ing.Synonyms {
			syn = strings.ToLower(strings.TrimSpace(syn))
			if syn == "" {
				continue
			}
			re, err := regexp.Compile(`\b` + regexp.QuoteMeta(syn) + `\b`)
			if err != nil {
				return fmt.Errorf("compile synonym %q: %w", syn, err)
			}
			ing.patterns = append(ing.patterns, re)
		}
		lx.ingredientByName[ing.Name] = i
	}

	lx.interactionByPair = make(map[string]int, len(lx.Interactions))
	for i := range lx.Interactions {
		it := &lx.Interactions[i]
		sort.Strings(it.Pair)
		lx.interactionByPair[pairKey(it.Pair[0], it.Pair[1])] = i
	}

	lx.suggestionByProb = make(map[string]int, len(lx.Suggestions))
	for i, s := range lx.Suggestions {
		lx.suggestionByProb[s.Problem] = i
	}

	lx.groupVariants = make([]groupVariants, 0, len(lx.ProblemGroups))
	for _, g := range lx.ProblemGroups {
		gv := groupVariants{master: g.Master}
		for _, v := range g.Variants {
			clean := textnorm.Normalize(v)
			if clean == "" {
				continue
			}
			gv.clean = append(gv.clean, clean)
			gv.tokens = append(gv.tokens, textnorm.Tokenize(clean))
		}
		lx.groupVariants = append(lx.groupVariants, gv)
	}
	return nil
}

func pairKey(a, b string) string {
	return a + "\x00" + b
}

// Category returns the category with the given key.
func (lx *Lexicon) Category(key string) (Category, bool) {
	i, ok := lx.categoryByKey[key]
	if !ok {
		return Category{}, false
	}
	return lx.Categories[i], true
}

// CategoryKeys returns the category keys in table order.
func (lx *Lexicon) CategoryKeys() []string {
	keys := make([]string, len(lx.Categories))
	for i, c := range lx.Categories {
		keys[i] = c.Key
	}
	return keys
}

// CategoryLabel returns the display label of a category key.
func (lx *Lexicon) CategoryLabel(key string) string {
	if c, ok := lx.Category(key); ok && c.Label != "" {
		return c.Label
	}
	if key == "" {
		return ""
	}
	return strings.ToUpper(key[:1]) + key[1:]
}

// ResolveCategory maps a free-text category name to its key using exact
// alias equality on normalized text.
func (lx *Lexicon) ResolveCategory(name string) (string, bool) {
	clean := textnorm.Normalize(name)
	if clean == "" {
		return "", false
	}
	for _, c := range lx.Categories {
		if clean == c.Key {
			return c.Key, true
		}
		for _, a := range c.Aliases {
			if clean == a {
				return c.Key, true
			}
		}
	}
	return "", false
}

// Ingredient returns the canonical ingredient record.
func (lx *Lexicon) Ingredient(name string) (Ingredient, bool) {
	i, ok := lx.ingredientByName[name]
	if !ok {
		return Ingredient{}, false
	}
	return lx.Ingredients[i], true
}

// MatchIngredients returns the canonical names whose synonyms occur as whole
// words in the lower-cased text, in table order.
func (lx *Lexicon) MatchIngredients(text string) []string {
	lower := strings.ToLower(text)
	var found []string
	for _, ing := range lx.Ingredients {
		for _, re := range ing.patterns {
			if re.MatchString(lower) {
				found = append(found, ing.Name)
				break
			}
		}
	}
	return found
}

// CanonicalIngredient maps a synonym or canonical name to its canonical name.
func (lx *Lexicon) CanonicalIngredient(term string) (string, bool) {
	term = strings.ToLower(strings.TrimSpace(term))
	for _, ing := range lx.Ingredients {
		if strings.ToLower(ing.Name) == term {
			return ing.Name, true
		}
		for _, syn := range ing.Synonyms {
			if strings.ToLower(syn) == term {
				return ing.Name, true
			}
		}
	}
	return "", false
}

// Interaction looks up the record for two canonical ingredient names. The
// lookup does not depend on argument order.
func (lx *Lexicon) Interaction(a, b string) (Interaction, bool) {
	if b < a {
		a, b = b, a
	}
	i, ok := lx.interactionByPair[pairKey(a, b)]
	if !ok {
		return Interaction{}, false
	}
	return lx.Interactions[i], true
}

// Suggestion returns the ingredient suggestion for a problem tag.
func (lx *Lexicon) Suggestion(problem string) (Suggestion, bool) {
	i, ok := lx.suggestionByProb[problem]
	if !ok {
		return Suggestion{}, false
	}
	return lx.Suggestions[i], true
}

// SensitiveAvoid returns the ingredients to exclude for sensitive skin.
func (lx *Lexicon) SensitiveAvoid() []string {
	s, ok := lx.Suggestion(lx.SensitiveSkinType)
	if !ok {
		return nil
	}
	return s.Avoid
}

// SkinStrategy returns the narrative phrase attached to a skin type.
func (lx *Lexicon) SkinStrategy(key string) string {
	for _, st := range lx.SkinTypes {
		if st.Key == key {
			return st.Strategy
		}
	}
	return ""
}

// ProblemMaster resolves a normalized problem phrase to its master group:
// exact variant equality first, then any shared token.
func (lx *Lexicon) ProblemMaster(problem string) (string, []string, bool) {
	clean := textnorm.Normalize(problem)
	if clean == "" {
		return "", nil, false
	}
	for _, g := range lx.groupVariants {
		for _, v := range g.clean {
			if v == clean {
				return g.master, g.clean, true
			}
		}
	}
	tokens := textnorm.Tokenize(clean)
	for _, g := range lx.groupVariants {
		for _, vt := range g.tokens {
			for tok := range tokens {
				if _, ok := vt[tok]; ok {
					return g.master, g.clean, true
				}
			}
		}
	}
	return "", nil, false
}

// Vocabulary returns the single-word vocabulary used to tell real requests
// from noise: skin types, problem keys and keywords, category words, info words and every
// ingredient synonym token.
func (lx *Lexicon) Vocabulary() map[string]struct{} {
	vocab := make(map[string]struct{})
	add := func(phrases ...string) {
		for _, p := range phrases {
			for _, w := range textnorm.Words(p) {
				vocab[w] = struct{}{}
			}
		}
	}
	for _, st := range lx.SkinTypes {
		add(st.Key)
		add(st.Keywords...)
	}
	for _, p := range lx.Problems {
		add(p.Key)
		add(p.Keywords...)
	}
	for _, d := range lx.ProblemDisplays {
		add(d.Keywords...)
	}
	for _, c := range lx.Categories {
		add(c.Key)
		add(c.Keywords...)
	}
	add(lx.InfoWords...)
	for _, ing := range lx.Ingredients {
		add(ing.Synonyms...)
	}
	return vocab
}
