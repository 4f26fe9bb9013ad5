package store

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ashureev/skinmatch/internal/domain"
)

type catalogFile struct {
	Categories yaml.Node `yaml:"categories"`
}

// LoadCatalogFile reads a YAML catalog from path.
func LoadCatalogFile(path string) (*domain.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	c, err := DecodeCatalog(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("load catalog %s: %w", path, err)
	}
	return c, nil
}

// DecodeCatalog parses a YAML document of the form
// `categories: {key: [product...]}`. Category order follows the document.
func DecodeCatalog(r io.Reader) (*domain.Catalog, error) {
	var doc catalogFile
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, ErrEmptyCatalog
		}
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	node := doc.Categories
	if node.Kind == 0 {
		return nil, ErrEmptyCatalog
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("decode catalog: line %d: categories must be a mapping", node.Line)
	}

	byCategory := make(map[string][]domain.Product, len(node.Content)/2)
	keys := make([]string, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		var rows []domain.Product
		if err := node.Content[i+1].Decode(&rows); err != nil {
			return nil, fmt.Errorf("decode category %q: %w", key, err)
		}
		for j := range rows {
			rows[j].Category = key
		}
		byCategory[key] = rows
		keys = append(keys, key)
	}

	c := domain.NewCatalog(byCategory, keys...)
	if c.Empty() {
		return nil, ErrEmptyCatalog
	}
	return c, nil
}

// EncodeCatalog writes c in the format DecodeCatalog reads.
func EncodeCatalog(w io.Writer, c *domain.Catalog) error {
	root := yaml.Node{Kind: yaml.MappingNode}
	for _, key := range c.Categories() {
		var rows yaml.Node
		if err := rows.Encode(c.Products(key)); err != nil {
			return fmt.Errorf("encode category %q: %w", key, err)
		}
		root.Content = append(root.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: key}, &rows)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(map[string]*yaml.Node{"categories": &root}); err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	return enc.Close()
}
