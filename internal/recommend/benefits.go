package recommend

import (
	"slices"
	"strings"

	"github.com/ashureev/skinmatch/internal/domain"
	"github.com/ashureev/skinmatch/internal/textnorm"
)

// Benefits summarizes p in one Indonesian sentence: the category's base
// benefits followed by ingredient benefits, at most four phrases.
func (e *Engine) Benefits(p domain.Product) string {
	var phrases []string
	add := func(b string) {
		if b != "" && !slices.Contains(phrases, b) {
			phrases = append(phrases, b)
		}
	}

	if key, ok := e.lx.ResolveCategory(p.Category); ok {
		if c, ok := e.lx.Category(key); ok {
			for _, b := range c.BaseBenefits {
				add(b)
			}
		}
	}
	ingredients := strings.ToLower(p.Ingredients)
	for _, rule := range e.lx.BenefitRules {
		if rule.Ingredient != "" && strings.Contains(ingredients, rule.Ingredient) {
			for _, b := range rule.Benefits {
				add(b)
			}
		}
	}
	return JoinBenefits(phrases)
}

// JoinBenefits joins phrases as "a.", "a dan b." or "a, b, dan c.", keeping
// at most four phrases.
func JoinBenefits(phrases []string) string {
	if len(phrases) == 0 {
		return defaultBenefitMsg
	}
	if len(phrases) > maxBenefits {
		phrases = phrases[:maxBenefits]
	}
	switch len(phrases) {
	case 1:
		return phrases[0] + "."
	case 2:
		return phrases[0] + " dan " + strings.ToLower(phrases[1]) + "."
	default:
		last := len(phrases) - 1
		return strings.Join(phrases[:last], ", ") + ", dan " + strings.ToLower(phrases[last]) + "."
	}
}

// ProductBenefits returns one comma-joined phrase per benefit rule whose
// ingredient occurs in p, in rule order and without repeats.
func (e *Engine) ProductBenefits(p domain.Product) []string {
	ingredients := strings.ToLower(p.Ingredients)
	var out []string
	for _, rule := range e.lx.BenefitRules {
		if rule.Ingredient == "" || !strings.Contains(ingredients, rule.Ingredient) {
			continue
		}
		phrase := strings.ToLower(strings.Join(rule.Benefits, ", "))
		if !slices.Contains(out, phrase) {
			out = append(out, phrase)
		}
	}
	return out
}

// CategoriesWith returns, in catalog order, the categories holding at least
// one product that contains any of the ingredients.
func (e *Engine) CategoriesWith(ingredients []string) []string {
	if len(ingredients) == 0 {
		return nil
	}
	var out []string
	for _, key := range e.catalog.Categories() {
		for _, p := range e.catalog.Products(key) {
			if containsAnyFold(textnorm.DatasetText(p.Ingredients), ingredients) {
				out = append(out, key)
				break
			}
		}
	}
	return out
}
