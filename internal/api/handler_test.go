//nolint:revive // "api" package name is intentionally concise for this layer.
package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashureev/skinmatch/internal/domain"
	"github.com/ashureev/skinmatch/internal/lexicon"
	"github.com/ashureev/skinmatch/internal/recommend"
)

func TestJSON(t *testing.T) {
	w := httptest.NewRecorder()
	data := map[string]string{"foo": "bar"}

	JSON(w, http.StatusOK, data)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	var got map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if got["foo"] != "bar" {
		t.Errorf("Expected foo=bar, got %v", got["foo"])
	}
}

func TestError(t *testing.T) {
	w := httptest.NewRecorder()
	Error(w, http.StatusBadRequest, "nope")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"nope"}`, w.Body.String())
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	catalog := domain.NewCatalog(map[string][]domain.Product{
		"toner": {
			{Name: "Fresh Toner", Brand: "Wardah", Ingredients: "Niacinamide", SkinTypes: "berminyak, sensitif", Problems: "jerawat", AlcoholFree: true, NonComedogenic: true},
			{Name: "Calm Toner", Brand: "Azarine", Ingredients: "Centella", SkinTypes: "sensitif, normal", Problems: "kemerahan", AlcoholFree: true, FragranceFree: true, NonComedogenic: true},
		},
		"serum": {
			{Name: "Glow Serum", Brand: "Wardah", Ingredients: "Vitamin C", SkinTypes: "normal", Problems: "kusam", AlcoholFree: true, FragranceFree: true, NonComedogenic: true},
		},
	})
	r := chi.NewRouter()
	NewHandler(recommend.NewEngine(lexicon.MustDefault(), catalog), 0).RegisterRoutes(r)
	return r
}

func TestHandleRecommend(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantNames  []string
	}{
		{"sensitive skin", `{"category":"toner","jenis_kulit":"sensitif"}`, http.StatusOK, []string{"Calm Toner"}},
		{"problem as string", `{"category":"toner","masalah_kulit":"jerawat"}`, http.StatusOK, []string{"Fresh Toner"}},
		{"problem as list", `{"category":"toner","masalah_kulit":["kemerahan"]}`, http.StatusOK, []string{"Calm Toner"}},
		{"unknown category", `{"category":"lipstick"}`, http.StatusOK, []string{}},
		{"missing category", `{}`, http.StatusBadRequest, nil},
		{"malformed", `{`, http.StatusBadRequest, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/rekomendasi", strings.NewReader(tt.body)))

			require.Equal(t, tt.wantStatus, w.Code)
			if tt.wantNames == nil {
				return
			}
			var resp RecommendResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
			got := []string{}
			for _, item := range resp.Items {
				got = append(got, item.Name)
			}
			assert.ElementsMatch(t, tt.wantNames, got)
		})
	}
}

func TestHandleRecommendBodyTooLarge(t *testing.T) {
	t.Parallel()

	catalog := domain.NewCatalog(map[string][]domain.Product{"toner": {{Name: "A", Brand: "B"}}})
	r := chi.NewRouter()
	NewHandler(recommend.NewEngine(lexicon.MustDefault(), catalog), 16).RegisterRoutes(r)

	w := httptest.NewRecorder()
	body := `{"category":"toner","jenis_kulit":"` + strings.Repeat("x", 64) + `"}`
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/rekomendasi", strings.NewReader(body)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestHandleProducts(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	tests := []struct {
		query string
		want  int
	}{
		{"", 3},
		{"?category=toner", 2},
		{"?brand=wardah", 2},
		{"?q=centella", 1},
		{"?fragrance_free=yes&category=toner", 1},
		{"?limit=1", 1},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			t.Parallel()
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/produk"+tt.query, nil))
			require.Equal(t, http.StatusOK, w.Code)

			var resp ProductsResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
			assert.Equal(t, tt.want, resp.Count)
			assert.Len(t, resp.Items, tt.want)
		})
	}
}

func TestHandleBrands(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	newTestRouter(t).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/brands", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"brands":["Azarine","Wardah"]}`, w.Body.String())
}
