package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ashureev/skinmatch/internal/domain"
	"github.com/ashureev/skinmatch/internal/shared"
)

const (
	replaceAttempts  = 3
	replaceBaseDelay = 100 * time.Millisecond
)

// SQLiteStore implements CatalogRepository using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens (and if needed creates) the catalog database at dbPath.
func NewSQLite(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// Open database with WAL mode for better concurrency.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS categories (
		name TEXT PRIMARY KEY,
		position INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS products (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		category TEXT NOT NULL,
		position INTEGER NOT NULL,
		name TEXT NOT NULL,
		brand TEXT NOT NULL DEFAULT '',
		ingredients TEXT NOT NULL DEFAULT '',
		skin_types TEXT NOT NULL DEFAULT '',
		problems TEXT NOT NULL DEFAULT '',
		alcohol_free INTEGER NOT NULL DEFAULT 0,
		fragrance_free INTEGER NOT NULL DEFAULT 0,
		non_comedogenic INTEGER NOT NULL DEFAULT 0,
		note TEXT NOT NULL DEFAULT '',
		benefit TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_products_order ON products(category, position);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// LoadCatalog reads all products ordered by (category, position). Categories
// keep the order they were stored in.
func (s *SQLiteStore) LoadCatalog(ctx context.Context) (*domain.Catalog, error) {
	keys, err := s.categoryOrder(ctx)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT category, name, brand, ingredients, skin_types, problems,
		       alcohol_free, fragrance_free, non_comedogenic, note, benefit
		FROM products ORDER BY category, position`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close product rows", "error", closeErr)
		}
	}()

	byCategory := make(map[string][]domain.Product)
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(
			&p.Category, &p.Name, &p.Brand, &p.Ingredients, &p.SkinTypes, &p.Problems,
			&p.AlcoholFree, &p.FragranceFree, &p.NonComedogenic, &p.Note, &p.Benefit,
		); err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		byCategory[p.Category] = append(byCategory[p.Category], p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	c := domain.NewCatalog(byCategory, keys...)
	if c.Empty() {
		return nil, ErrEmptyCatalog
	}
	return c, nil
}

func (s *SQLiteStore) categoryOrder(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM categories ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close category rows", "error", closeErr)
		}
	}()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scan category row: %w", err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return keys, nil
}

// ReplaceCatalog deletes the stored catalog and writes c in one transaction.
// Implements retry logic with exponential backoff to handle SQLITE_BUSY errors.
func (s *SQLiteStore) ReplaceCatalog(ctx context.Context, c *domain.Catalog) error {
	if c.Empty() {
		return ErrEmptyCatalog
	}
	return shared.RetryOnConflict(ctx, "replace catalog", replaceAttempts, replaceBaseDelay, func() error {
		return s.replaceOnce(ctx, c)
	})
}

func (s *SQLiteStore) replaceOnce(ctx context.Context, c *domain.Catalog) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				slog.Warn("failed to roll back catalog replace", "error", rbErr)
			}
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM products`); err != nil {
		return fmt.Errorf("clear products: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM categories`); err != nil {
		return fmt.Errorf("clear categories: %w", err)
	}

	catStmt, err := tx.PrepareContext(ctx, `INSERT INTO categories (name, position) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare category insert: %w", err)
	}
	defer catStmt.Close()

	prodStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO products (
			category, position, name, brand, ingredients, skin_types, problems,
			alcohol_free, fragrance_free, non_comedogenic, note, benefit
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare product insert: %w", err)
	}
	defer prodStmt.Close()

	for ci, key := range c.Categories() {
		if _, err = catStmt.ExecContext(ctx, key, ci); err != nil {
			return fmt.Errorf("insert category %q: %w", key, err)
		}
		for pi, p := range c.Products(key) {
			if _, err = prodStmt.ExecContext(ctx,
				key, pi, p.Name, p.Brand, p.Ingredients, p.SkinTypes, p.Problems,
				p.AlcoholFree, p.FragranceFree, p.NonComedogenic, p.Note, p.Benefit,
			); err != nil {
				return fmt.Errorf("insert product %q: %w", p.FullName(), err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit catalog: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}

var _ CatalogRepository = (*SQLiteStore)(nil)
