package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"case and punctuation", "Serum, buat KULIT berminyak!!", "serum buat kulit berminyak"},
		{"collapse whitespace", "  toner\t\tdan   serum \n", "toner dan serum"},
		{"diacritics", "Crème Brûlée", "creme brulee"},
		{"hyphen becomes space", "d-panthenol", "d panthenol"},
		{"digits kept", "SPF 50+", "spf 50"},
		{"only symbols", "?!?!", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, Normalize(tc.in))
		})
	}
}

func TestTokenize(t *testing.T) {
	t.Parallel()

	got := Tokenize("Serum serum TONER")
	assert.Len(t, got, 2)
	assert.Contains(t, got, "serum")
	assert.Contains(t, got, "toner")
	assert.Empty(t, Tokenize(""))
}

func TestContainsKeyword(t *testing.T) {
	t.Parallel()

	assert.True(t, ContainsKeyword("kulit kusamnya parah", "kusam"))
	assert.True(t, ContainsKeyword("takut sun damage", "sun"))
	assert.False(t, ContainsKeyword("cari sunscreen", "sun"))
	assert.False(t, ContainsKeyword("apa saja piece nya", "pie"))
	assert.True(t, ContainsKeyword("bekas pie di pipi", "pie"))
	assert.False(t, ContainsKeyword("apa saja", ""))
	assert.True(t, ContainsAny("pakai facial wash", []string{"toner", "facial wash"}))
}

func TestHasPhrase(t *testing.T) {
	t.Parallel()

	assert.True(t, HasPhrase("mau yang lain dong", "yang lain"))
	assert.False(t, HasPhrase("mauyang lain", "mau"))
	assert.False(t, HasPhrase("", "mau"))
}

func TestDatasetText(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "non comedogenic skin barrier", DatasetText("Non-Comedogenic skin_barrier"))
}

func TestFirstInt(t *testing.T) {
	t.Parallel()

	n, ok := FirstInt("kasih 5 serum dong")
	assert.True(t, ok)
	assert.Equal(t, 5, n)

	_, ok = FirstInt("serum spf50")
	assert.False(t, ok)
}
