package recommend

import (
	"strings"

	"github.com/ashureev/skinmatch/internal/domain"
	"github.com/ashureev/skinmatch/internal/textnorm"
)

// BrandProducts returns the products whose brand contains brand, limited to
// category when it is set.
func (e *Engine) BrandProducts(brand, category string) []domain.Product {
	brand = strings.ToLower(strings.TrimSpace(brand))
	if brand == "" {
		return nil
	}
	var out []domain.Product
	for _, key := range e.catalog.Categories() {
		if category != "" && !strings.EqualFold(key, category) {
			continue
		}
		for _, p := range e.catalog.Products(key) {
			if strings.Contains(strings.ToLower(p.Brand), brand) {
				out = append(out, p)
			}
		}
	}
	return out
}

// BestBrandProduct returns the product of brand whose full name shares the
// most words with text. Ties keep the earlier product; no shared word means
// no match.
func (e *Engine) BestBrandProduct(brand, text string) (domain.Product, bool) {
	words := textnorm.Words(text)
	var best domain.Product
	bestScore := 0
	for _, p := range e.BrandProducts(brand, "") {
		full := strings.ToLower(p.FullName())
		score := 0
		for _, w := range words {
			if strings.Contains(full, w) {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = p, score
		}
	}
	return best, bestScore > 0
}
