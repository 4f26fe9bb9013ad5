package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversePaging(t *testing.T) {
	t.Parallel()

	e := newTestEngine()
	q := ConversationQuery{Category: "serum", SkinTypes: []string{"berminyak"}, PageSize: 2, Seed: 7}

	first := e.Converse(q)
	require.Len(t, first.Items, 2)
	assert.Equal(t, 3, first.Total)
	assert.Equal(t, 2, first.NextOffset)
	assert.False(t, first.Exhausted)
	assert.Equal(t, "Wardah Brightening Serum", names(first.Items)[0])
	assert.Contains(t, names(first.Items), "Emina Acne Serum")

	q.Offset = first.NextOffset
	second := e.Converse(q)
	assert.Equal(t, []string{"Wardah Glow Serum"}, names(second.Items))
	assert.Equal(t, 3, second.NextOffset)

	q.Offset = second.NextOffset
	done := e.Converse(q)
	assert.Empty(t, done.Items)
	assert.True(t, done.Exhausted)
	assert.Zero(t, done.NextOffset)
}

func TestConverseNothingFoundIsNotExhausted(t *testing.T) {
	t.Parallel()

	res := newTestEngine().Converse(ConversationQuery{Category: "serum", Brand: "elsheskin"})
	assert.True(t, res.Empty())
	assert.False(t, res.Exhausted)

	res = newTestEngine().Converse(ConversationQuery{Category: "moisturizer"})
	assert.True(t, res.Empty())
}

func TestConverseBrandCapAcrossPages(t *testing.T) {
	t.Parallel()

	e := newTestEngine()
	q := ConversationQuery{Category: "serum", SkinTypes: []string{"berminyak"}, Problems: []string{"kusam"}, PageSize: 3, Seed: 1}

	first := e.Converse(q)
	assert.Equal(t, []string{"Wardah Brightening Serum"}, names(first.Items))
	assert.Equal(t, 2, first.Total)

	q.Offset = first.NextOffset
	assert.Equal(t, []string{"Wardah Glow Serum"}, names(e.Converse(q).Items))
}

func TestConverseSensitiveAvoidList(t *testing.T) {
	t.Parallel()

	got := newTestEngine().Converse(ConversationQuery{Category: "serum", SkinTypes: []string{"sensitif"}, PageSize: 5, Seed: 3})
	assert.ElementsMatch(t, []string{"Wardah Brightening Serum", "Azarine Barrier Serum"}, names(got.Items))
}

func TestConverseDrySkinSkipsAcneProducts(t *testing.T) {
	t.Parallel()

	e := newTestEngine()

	got := e.Converse(ConversationQuery{Category: "serum", SkinTypes: []string{"kering"}, PageSize: 5, Seed: 3})
	assert.NotContains(t, names(got.Items), "Emina Acne Serum")
	assert.Len(t, got.Items, 3)

	got = e.Converse(ConversationQuery{Category: "serum", SkinTypes: []string{"kering"}, Problems: []string{"jerawat"}, PageSize: 5, Seed: 3})
	assert.Equal(t, []string{"Emina Acne Serum"}, names(got.Items))
}

func TestConverseIngredientFilter(t *testing.T) {
	t.Parallel()

	got := newTestEngine().Converse(ConversationQuery{Category: "serum", Ingredients: []string{"Ceramide"}, PageSize: 5, Seed: 3})
	assert.ElementsMatch(t, []string{"Avoskin Retinol Night Serum", "Azarine Barrier Serum"}, names(got.Items))

	none := newTestEngine().Converse(ConversationQuery{Category: "serum", Ingredients: []string{"Peptide"}})
	assert.True(t, none.Empty())
}

func TestConverseIsDeterministicForASeed(t *testing.T) {
	t.Parallel()

	e := newTestEngine()
	q := ConversationQuery{Category: "serum", PageSize: 5, Seed: 42}
	assert.Equal(t, names(e.Converse(q).Items), names(e.Converse(q).Items))
}

func TestConverseMonotonicPerPage(t *testing.T) {
	t.Parallel()

	e := newTestEngine()
	for seed := uint64(0); seed < 20; seed++ {
		for _, size := range []int{1, 2, 3, 4} {
			q := ConversationQuery{Category: "serum", PageSize: size, Seed: seed}
			for {
				res := e.Converse(q)
				if len(res.Items) == 0 {
					break
				}
				assert.LessOrEqual(t, len(res.Items), size)
				brands := make(map[string]bool)
				for i, r := range res.Items {
					assert.False(t, brands[r.Brand])
					brands[r.Brand] = true
					if i > 0 {
						assert.GreaterOrEqual(t, res.Items[i-1].SafetyScore, r.SafetyScore)
					}
				}
				q.Offset = res.NextOffset
			}
		}
	}
}

func TestProblemsForCategory(t *testing.T) {
	t.Parallel()

	e := newTestEngine()
	assert.Equal(t, []string{"kusam"}, e.Problems("sunscreen", []string{"uv", "kusam"}))
	assert.Equal(t, []string{"uv"}, e.Problems("sunscreen", []string{"uv"}))
	assert.Equal(t, []string{"uv", "kusam"}, e.Problems("serum", []string{"uv", "kusam"}))
}
