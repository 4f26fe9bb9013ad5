package store

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashureev/skinmatch/internal/domain"
)

const sampleYAML = `
categories:
  toner:
    - name: Fresh Toner
      brand: Wardah
      ingredients: Niacinamide, Zinc
      skin_types: berminyak, kombinasi
      problems: jerawat, pori besar
      alcohol_free: true
      non_comedogenic: true
    - name: Calm Toner
      brand: Azarine
      ingredients: Centella
      skin_types: sensitif
      problems: kemerahan
      alcohol_free: true
      fragrance_free: true
      non_comedogenic: true
      benefit: Menenangkan kulit
  facial wash:
    - name: Gentle Wash
      brand: Cetaphil
      ingredients: Glycerin
      skin_types: normal, kering
      problems: kulit kering
`

func TestDecodeCatalog(t *testing.T) {
	t.Parallel()

	c, err := DecodeCatalog(strings.NewReader(sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, []string{"toner", "facial wash"}, c.Categories())
	assert.Equal(t, 3, c.Len())

	toner := c.Products("toner")
	require.Len(t, toner, 2)
	assert.Equal(t, "Fresh Toner", toner[0].Name)
	assert.Equal(t, "toner", toner[0].Category)
	assert.True(t, toner[1].FragranceFree)
	assert.Equal(t, "Menenangkan kulit", toner[1].Benefit)
}

func TestDecodeCatalogErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		doc     string
		isEmpty bool
	}{
		{"empty document", "", true},
		{"no categories", "other: 1\n", true},
		{"categories without rows", "categories:\n  toner: []\n", true},
		{"categories not a mapping", "categories: [a, b]\n", false},
		{"rows not a list", "categories:\n  toner: nope\n", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := DecodeCatalog(strings.NewReader(tt.doc))
			require.Error(t, err)
			assert.Equal(t, tt.isEmpty, err == ErrEmptyCatalog, "got %v", err)
		})
	}
}

func TestEncodeCatalogRoundTrip(t *testing.T) {
	t.Parallel()

	c, err := DecodeCatalog(strings.NewReader(sampleYAML))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, EncodeCatalog(&buf, c))

	again, err := DecodeCatalog(&buf)
	require.NoError(t, err)
	assert.Equal(t, c.Categories(), again.Categories())
	assert.Equal(t, c.All(), again.All())
}

func TestLoadCatalogFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o600))

	c, err := LoadCatalogFile(path)
	require.NoError(t, err)
	assert.Equal(t, 3, c.Len())

	_, err = LoadCatalogFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestSQLiteStoreReplaceAndLoad(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db, err := NewSQLite(filepath.Join(t.TempDir(), "nested", "skinmatch.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.Ping(ctx))

	_, err = db.LoadCatalog(ctx)
	require.ErrorIs(t, err, ErrEmptyCatalog)

	c, err := DecodeCatalog(strings.NewReader(sampleYAML))
	require.NoError(t, err)
	require.NoError(t, db.ReplaceCatalog(ctx, c))

	loaded, err := db.LoadCatalog(ctx)
	require.NoError(t, err)
	assert.Equal(t, c.Categories(), loaded.Categories())
	assert.Equal(t, c.All(), loaded.All())

	smaller := domain.NewCatalog(map[string][]domain.Product{
		"serum": {{Name: "Glow Serum", Brand: "Somethinc", AlcoholFree: true}},
	})
	require.NoError(t, db.ReplaceCatalog(ctx, smaller))

	loaded, err = db.LoadCatalog(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"serum"}, loaded.Categories())
	require.Len(t, loaded.All(), 1)
	assert.True(t, loaded.All()[0].AlcoholFree)
	assert.Equal(t, "serum", loaded.All()[0].Category)
}

func TestSQLiteStoreRejectsEmptyReplace(t *testing.T) {
	t.Parallel()

	db, err := NewSQLite(filepath.Join(t.TempDir(), "skinmatch.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	err = db.ReplaceCatalog(context.Background(), domain.NewCatalog(nil))
	require.ErrorIs(t, err, ErrEmptyCatalog)
}

func TestLoadBySource(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "catalog.yaml")
	dbPath := filepath.Join(dir, "skinmatch.db")
	require.NoError(t, os.WriteFile(yamlPath, []byte(sampleYAML), 0o600))

	fromYAML, err := Load(ctx, SourceYAML, yamlPath, dbPath)
	require.NoError(t, err)

	db, err := NewSQLite(dbPath)
	require.NoError(t, err)
	require.NoError(t, db.ReplaceCatalog(ctx, fromYAML))
	require.NoError(t, db.Close())

	fromDB, err := Load(ctx, SourceSQLite, yamlPath, dbPath)
	require.NoError(t, err)
	assert.Equal(t, fromYAML.All(), fromDB.All())

	_, err = Load(ctx, "csv", yamlPath, dbPath)
	require.Error(t, err)
}
