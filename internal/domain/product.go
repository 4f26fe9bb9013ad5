// Package domain defines the core data types shared across the service.
package domain

import (
	"sort"
	"strings"
)

// Product is a catalog row. Products are read-only once loaded.
type Product struct {
	Name           string `json:"nama" yaml:"name"`
	Brand          string `json:"brand" yaml:"brand"`
	Category       string `json:"kategori" yaml:"category"`
	Ingredients    string `json:"kandungan" yaml:"ingredients"`
	SkinTypes      string `json:"jenis_kulit" yaml:"skin_types"`
	Problems       string `json:"masalah_kulit" yaml:"problems"`
	AlcoholFree    bool   `json:"alcohol_free" yaml:"alcohol_free"`
	FragranceFree  bool   `json:"fragrance_free" yaml:"fragrance_free"`
	NonComedogenic bool   `json:"non_comedogenic" yaml:"non_comedogenic"`
	Note           string `json:"catatan,omitempty" yaml:"note"`
	Benefit        string `json:"manfaat,omitempty" yaml:"benefit"`
}

// ProductKey identifies a product for deduplication.
type ProductKey struct {
	Name  string
	Brand string
}

// Key returns the (name, brand) identity of p.
func (p Product) Key() ProductKey {
	return ProductKey{Name: p.Name, Brand: p.Brand}
}

// FullName is the brand followed by the product name.
func (p Product) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(p.Brand) + " " + strings.TrimSpace(p.Name))
}

// SafetyScore counts the safety flags that are true (0-3).
func (p Product) SafetyScore() int {
	score := 0
	for _, ok := range []bool{p.AlcoholFree, p.FragranceFree, p.NonComedogenic} {
		if ok {
			score++
		}
	}
	return score
}

// Catalog maps category keys to ordered product lists. It is built once and
// shared read-only by every session.
type Catalog struct {
	order    []string
	products map[string][]Product
}

// NewCatalog copies the given lists into a catalog. The category order is
// the order of keys, followed by any remaining categories in sorted order.
func NewCatalog(byCategory map[string][]Product, keys ...string) *Catalog {
	c := &Catalog{products: make(map[string][]Product, len(byCategory))}
	seen := make(map[string]bool, len(byCategory))
	for _, k := range keys {
		if _, ok := byCategory[k]; ok && !seen[k] {
			c.order = append(c.order, k)
			seen[k] = true
		}
	}
	var rest []string
	for k := range byCategory {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	c.order = append(c.order, rest...)
	for k, list := range byCategory {
		rows := make([]Product, len(list))
		copy(rows, list)
		for i := range rows {
			if rows[i].Category == "" {
				rows[i].Category = k
			}
		}
		c.products[k] = rows
	}
	return c
}

// Categories returns the category keys in catalog order.
func (c *Catalog) Categories() []string {
	if c == nil {
		return nil
	}
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Products returns the rows of one category. The returned slice must not be
// modified.
func (c *Catalog) Products(category string) []Product {
	if c == nil {
		return nil
	}
	return c.products[category]
}

// All returns every product in catalog order.
func (c *Catalog) All() []Product {
	if c == nil {
		return nil
	}
	var out []Product
	for _, k := range c.order {
		out = append(out, c.products[k]...)
	}
	return out
}

// Len is the total number of products.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	n := 0
	for _, list := range c.products {
		n += len(list)
	}
	return n
}

// Empty reports whether the catalog has no products.
func (c *Catalog) Empty() bool {
	return c.Len() == 0
}

// Brands returns the sorted set of non-empty brand names.
func (c *Catalog) Brands() []string {
	if c == nil {
		return nil
	}
	set := make(map[string]struct{})
	for _, list := range c.products {
		for _, p := range list {
			if b := strings.TrimSpace(p.Brand); b != "" {
				set[b] = struct{}{}
			}
		}
	}
	out := make([]string, 0, len(set))
	for b := range set {
		out = append(out, b)
	}
	sort.Strings(out)
	return out
}
