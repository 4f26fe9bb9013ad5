// Package store loads and persists the product catalog.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ashureev/skinmatch/internal/domain"
)

// ErrEmptyCatalog is returned when a catalog source holds no products.
var ErrEmptyCatalog = errors.New("store: catalog is empty")

// CatalogRepository defines the interface for persisting the product catalog.
type CatalogRepository interface {
	// LoadCatalog reads every product, preserving per-category row order.
	LoadCatalog(ctx context.Context) (*domain.Catalog, error)

	// ReplaceCatalog atomically swaps the stored catalog for c.
	ReplaceCatalog(ctx context.Context, c *domain.Catalog) error

	// Ping verifies database connectivity and returns an error if the database is unreachable.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}

// Source names where a catalog is read from.
const (
	SourceYAML   = "yaml"
	SourceSQLite = "sqlite"
)

// Load reads the catalog from the named source: a YAML file at yamlPath or
// the SQLite database at dbPath.
func Load(ctx context.Context, source, yamlPath, dbPath string) (*domain.Catalog, error) {
	switch source {
	case SourceYAML:
		return LoadCatalogFile(yamlPath)
	case SourceSQLite:
		db, err := NewSQLite(dbPath)
		if err != nil {
			return nil, err
		}
		defer func() {
			if closeErr := db.Close(); closeErr != nil {
				slog.Warn("failed to close catalog database", "error", closeErr)
			}
		}()
		return db.LoadCatalog(ctx)
	default:
		return nil, fmt.Errorf("unknown catalog source %q", source)
	}
}
