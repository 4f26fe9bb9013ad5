package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashureev/skinmatch/internal/recommend"
)

const testCatalogYAML = `
categories:
  toner:
    - name: Fresh Toner
      brand: Wardah
      ingredients: Niacinamide
      skin_types: berminyak
      problems: jerawat
      alcohol_free: true
      non_comedogenic: true
    - name: Calm Toner
      brand: Azarine
      ingredients: Centella
      skin_types: sensitif, normal
      problems: kemerahan
      alcohol_free: true
      fragrance_free: true
      non_comedogenic: true
`

func writeCatalog(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testCatalogYAML), 0o600))
	return path
}

func run(t *testing.T, stdin string, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetArgs(append(args, "--no-color"))
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	require.NoError(t, cmd.Execute(), out.String())
	return out.String()
}

func TestRecommendJSON(t *testing.T) {
	out := run(t, "", "recommend", "--catalog", writeCatalog(t), "--source", "yaml",
		"--category", "toner", "--skin", "sensitif", "--json")

	var items []recommend.Recommendation
	require.NoError(t, json.Unmarshal([]byte(out), &items))
	require.Len(t, items, 1)
	assert.Equal(t, "Calm Toner", items[0].Name)
	assert.Equal(t, 3, items[0].SafetyScore)
}

func TestRecommendRequiresCategory(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetArgs([]string{"recommend", "--catalog", writeCatalog(t)})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	require.Error(t, cmd.Execute())
}

func TestImportThenRecommendFromSQLite(t *testing.T) {
	catalog := writeCatalog(t)
	db := filepath.Join(t.TempDir(), "skinmatch.db")

	out := run(t, "", "import", catalog, "--db", db)
	assert.Contains(t, out, "Imported 2 products in 1 categories")

	out = run(t, "", "recommend", "--source", "sqlite", "--db", db, "--category", "toner", "--skin", "berminyak")
	assert.Contains(t, out, "Wardah Fresh Toner")
	assert.NotContains(t, out, "Azarine Calm Toner")
}

func TestChat(t *testing.T) {
	out := run(t, "halo\nrekomendasi toner\nexit\nnot reached\n",
		"chat", "--catalog", writeCatalog(t), "--source", "yaml", "--show-intent")

	assert.Contains(t, out, "Skinmatch siap membantu (2 produk)")
	assert.Contains(t, out, "[UNKNOWN]")
	assert.Contains(t, out, "[RECOMMEND]")
	assert.Contains(t, out, "jenis kulit kamu")
	assert.NotContains(t, out, "not reached")
}

func TestLexiconValidate(t *testing.T) {
	out := run(t, "", "lexicon", "validate")
	assert.Contains(t, out, "ingredients:")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(out), "ok"))
}

func TestLexiconDump(t *testing.T) {
	out := run(t, "", "lexicon", "dump")
	assert.Contains(t, out, "categories:")
	assert.Contains(t, out, "interactions:")
}
