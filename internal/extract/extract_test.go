package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashureev/skinmatch/internal/domain"
	"github.com/ashureev/skinmatch/internal/lexicon"
)

func newExtractor(t *testing.T) *Extractor {
	t.Helper()
	lx, err := lexicon.Default()
	require.NoError(t, err)
	return New(lx)
}

func TestExtractAccumulatesAcrossTurns(t *testing.T) {
	t.Parallel()

	e := newExtractor(t)
	s := domain.NewSession("s1", nil, 1)

	e.Extract("Kulitku berminyak dan berjerawat", s)
	assert.Equal(t, []string{"berminyak"}, s.SkinType)
	assert.Equal(t, []string{"jerawat"}, s.Problems)
	assert.Equal(t, []string{"jerawat"}, s.ProblemDisplay)
	assert.Empty(t, s.Category)

	e.Extract("cari serum yang ada niacinamide dari Wardah", s)
	assert.Equal(t, "serum", s.Category)
	assert.Equal(t, "wardah", s.Brand)
	assert.Equal(t, []string{"Niacinamide"}, s.Ingredients)
	assert.Equal(t, []string{"berminyak"}, s.SkinType, "skin type survives a turn that does not mention it")

	e.Extract("sama vitamin c ya", s)
	assert.Equal(t, []string{"Niacinamide", "Vitamin C"}, s.Ingredients)
}

func TestExtractCategoryChangeResetsOffsetOnly(t *testing.T) {
	t.Parallel()

	e := newExtractor(t)
	s := domain.NewSession("s1", nil, 1)
	e.Extract("serum buat kulit kering yang kusam, ada ceramide", s)
	s.Brand = "avoskin"
	s.Offset = 6

	before := s.State()
	e.Extract("kalau toner?", s)

	assert.Equal(t, "toner", s.Category)
	assert.Zero(t, s.Offset)
	assert.Equal(t, before.SkinType, s.SkinType)
	assert.Equal(t, before.Problems, s.Problems)
	assert.Equal(t, before.Ingredients, s.Ingredients)
	assert.Equal(t, before.Brand, s.Brand)
}

func TestExtractNewEntityResetsOffset(t *testing.T) {
	t.Parallel()

	e := newExtractor(t)
	s := domain.NewSession("s1", nil, 1)
	e.Extract("serum buat kulit berminyak, ada retinol?", s)

	tests := []struct {
		in        string
		wantReset bool
	}{
		{"yang lain", false},
		{"kalau retinol?", false},
		{"ada yang buat komedo?", true},
		{"sama niacinamide", true},
		{"dari emina", true},
		{"dari emina lagi", false},
	}
	for _, tt := range tests {
		s.Offset = 4
		e.Extract(tt.in, s)
		if tt.wantReset {
			assert.Zero(t, s.Offset, tt.in)
		} else {
			assert.Equal(t, 4, s.Offset, tt.in)
		}
	}
}

func TestExtractShortKeywordsMatchWholeWords(t *testing.T) {
	t.Parallel()

	e := newExtractor(t)
	s := domain.NewSession("s1", nil, 1)
	e.Extract("sunscreen buat kulit berminyak", s)
	assert.Equal(t, "sunscreen", s.Category)
	assert.NotContains(t, s.Problems, "uv", "uv must not match inside sunscreen")

	e.Extract("takut kena uv", s)
	assert.Contains(t, s.Problems, "uv")
}

func TestExtractCompoundSkinType(t *testing.T) {
	t.Parallel()

	e := newExtractor(t)
	tests := []struct {
		in   string
		want []string
	}{
		{"kulitku kombinasi", []string{"berminyak", "kering"}},
		{"normal berminyak", []string{"normal", "berminyak"}},
		{"normal kering", []string{"normal", "kering"}},
		{"kering dan sensitif", []string{"kering", "sensitif"}},
		{"oily skin", []string{"berminyak"}},
		{"mau serum", nil},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, e.SkinType(tc.in))
		})
	}
}

func TestExtractProblemDisplays(t *testing.T) {
	t.Parallel()

	e := newExtractor(t)

	assert.Equal(t, []string{"bekas jerawat"}, e.ProblemDisplays("bekas jerawat di pipi"))
	assert.Equal(t, []string{"jerawat", "komedo"}, e.ProblemDisplays("jerawat dan komedo"))
	assert.Equal(t, []string{"flek hitam"}, e.ProblemDisplays("ada flek"))
	assert.Empty(t, e.ProblemDisplays("apa saja piece nya"))
}

func TestExtractBrighteningImpliesDullness(t *testing.T) {
	t.Parallel()

	e := newExtractor(t)
	s := domain.NewSession("s1", nil, 1)
	e.Extract("mau yang mencerahkan", s)

	assert.Equal(t, []string{"kusam"}, s.Problems)
	assert.Equal(t, []string{"kulit kusam"}, s.ProblemDisplay)

	e.Extract("kulit kusam banget", s)
	assert.Equal(t, []string{"kusam"}, s.Problems)
	assert.Equal(t, []string{"kulit kusam"}, s.ProblemDisplay)
}

func TestExtractSkinTypeProblemsStayOutOfProblems(t *testing.T) {
	t.Parallel()

	e := newExtractor(t)
	assert.Empty(t, e.Problems("kulit sensitif dan berminyak"))
	assert.Equal(t, []string{"uv"}, e.Problems("takut kena sinar matahari"))
}

func TestExtractFuzzyCategory(t *testing.T) {
	t.Parallel()

	e := newExtractor(t)

	s := domain.NewSession("s1", nil, 1)
	e.Extract("kasih sunscren dong", s)
	assert.Equal(t, "sunscreen", s.Category)

	s = domain.NewSession("s2", nil, 1)
	s.SetCategory("toner")
	e.Extract("moisturiser", s)
	assert.Equal(t, "toner", s.Category, "fuzzy match only fills an empty category")

	s = domain.NewSession("s3", nil, 1)
	e.Extract("halo apa kabar", s)
	assert.Empty(t, s.Category)
}

func TestExtractBrandOverwrites(t *testing.T) {
	t.Parallel()

	e := newExtractor(t)
	s := domain.NewSession("s1", nil, 1)
	e.Extract("ada dari emina?", s)
	assert.Equal(t, "emina", s.Brand)
	e.Extract("kalau azarine?", s)
	assert.Equal(t, "azarine", s.Brand)
	e.Extract("yang lain", s)
	assert.Equal(t, "azarine", s.Brand)
}

func TestPageSize(t *testing.T) {
	t.Parallel()

	e := newExtractor(t)
	assert.Equal(t, 3, e.PageSize("yang lain", 0))
	assert.Equal(t, 4, e.PageSize("yang lain", 4))
	assert.Equal(t, 5, e.PageSize("kasih 5 lagi", 3))
	assert.Equal(t, MaxPageSize, e.PageSize("kasih 50 lagi", 3))
	assert.Equal(t, 1, e.PageSize("0 aja", 3))

	small := New(lexicon.MustDefault(), WithMaxPageSize(4))
	assert.Equal(t, 4, small.PageSize("kasih 9", 3))
}
