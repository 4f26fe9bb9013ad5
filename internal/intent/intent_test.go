package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ashureev/skinmatch/internal/lexicon"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	c := NewClassifier(lexicon.MustDefault())
	tests := []struct {
		in   string
		want Label
	}{
		{"reset", Reset},
		{"Mulai lagi ya", Reset},
		{"niacinamide sama retinol boleh digabung?", IngredientInteraction},
		{"urutan skincare pagi", Routine},
		{"retinol aman buat kulit sensitif?", IngredientSafety},
		{"manfaat niacinamide apa", IngredientInfo},
		{"manfaat wardah lightening serum", ProductOrIngredientInfo},
		{"rekomendasi produk niacinamide", RecommendByIngredient},
		{"yang lain dong", MoreRecommend},
		{"serum buat kulit berminyak", Recommend},
		{"ada saran?", Recommend},
		{"retinol", IngredientInfo},
		{"halo", Unknown},
		{"", Unknown},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, c.Classify(tc.in))
		})
	}
}

func TestClassifyPriority(t *testing.T) {
	t.Parallel()

	c := NewClassifier(lexicon.MustDefault())

	assert.Equal(t, Reset, c.Classify("hapus retinol boleh digabung"), "reset beats every other rule")
	assert.Equal(t, Routine, c.Classify("ceramide buat malam"), "routine beats ingredient info")
	assert.Equal(t, IngredientSafety, c.Classify("manfaat retinol aman gak"), "safety beats info")
	assert.Equal(t, MoreRecommend, c.Classify("serum lainnya"), "more beats recommend")
}

func TestShortIngredientSynonymIsWholeWord(t *testing.T) {
	t.Parallel()

	c := NewClassifier(lexicon.MustDefault())
	assert.Equal(t, Unknown, c.Classify("haha"))
	assert.Equal(t, IngredientInfo, c.Classify("ha itu apa"))
}

func TestRulesOrder(t *testing.T) {
	t.Parallel()

	var got []Label
	for _, r := range NewClassifier(lexicon.MustDefault()).Rules() {
		got = append(got, r.Label)
	}
	assert.Equal(t, []Label{
		Reset, IngredientInteraction, Routine, IngredientSafety, IngredientInfo,
		ProductOrIngredientInfo, RecommendByIngredient, MoreRecommend, Recommend, IngredientInfo,
	}, got)
}

func TestEachRuleMatchesInIsolation(t *testing.T) {
	t.Parallel()

	examples := map[Label]string{
		Reset:                   "ulang",
		IngredientInteraction:   "campur",
		Routine:                 "urutan",
		IngredientSafety:        "aman",
		ProductOrIngredientInfo: "gunanya",
		RecommendByIngredient:   "produk retinol",
		MoreRecommend:           "tambah",
		Recommend:               "pelembab",
	}
	for _, r := range NewClassifier(lexicon.MustDefault()).Rules() {
		in, ok := examples[r.Label]
		if !ok {
			continue
		}
		assert.True(t, r.Match(in), "%s should match %q", r.Label, in)
	}
}

func TestGuard(t *testing.T) {
	t.Parallel()

	g := NewGuard(lexicon.MustDefault())
	tests := []struct {
		in   string
		want bool
	}{
		{"xd", true},
		{"", true},
		{"?!", true},
		{"asdf qwer", true},
		{"asdf qwer zxcv", false},
		{"serum", false},
		{"kulit berminyak", false},
		{"retinol", false},
		{"yang lain", false},
		{"next", false},
		{"Jerawat", false},
		{"manfaat", false},
		{"komedo", false},
		{"aku bruntusan", false},
		{"melasma", false},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, g.IsGibberish(tc.in))
		})
	}
}
