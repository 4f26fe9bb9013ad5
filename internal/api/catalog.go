package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ashureev/skinmatch/internal/domain"
	"github.com/ashureev/skinmatch/internal/recommend"
)

const maxTopK = 50

// StringList decodes either a JSON string or an array of strings.
type StringList []string

// UnmarshalJSON implements json.Unmarshaler.
func (l *StringList) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		if one = strings.TrimSpace(one); one != "" {
			*l = StringList{one}
		} else {
			*l = nil
		}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*l = many
	return nil
}

// RecommendRequest is the body of POST /api/rekomendasi.
type RecommendRequest struct {
	Category    string          `json:"category"`
	SkinType    string          `json:"jenis_kulit"`
	Problems    StringList      `json:"masalah_kulit"`
	Ingredients StringList      `json:"ingredients"`
	Brand       string          `json:"brand"`
	Preferences recommend.Prefs `json:"preferences"`
	TopK        int             `json:"top_k"`
}

// RecommendResponse lists the accepted products.
type RecommendResponse struct {
	Items []recommend.Recommendation `json:"items"`
}

// ProductsResponse is the browse result.
type ProductsResponse struct {
	Items []domain.Product `json:"items"`
	Count int              `json:"count"`
}

// BrandsResponse lists every brand in the catalog.
type BrandsResponse struct {
	Brands []string `json:"brands"`
}

// HandleRecommend handles POST /api/rekomendasi requests.
func (h *Handler) HandleRecommend(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	var req RecommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			Error(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Category) == "" {
		Error(w, http.StatusBadRequest, "category is required")
		return
	}

	topK := req.TopK
	if topK > maxTopK {
		topK = maxTopK
	}
	items := h.rec.Recommend(recommend.Query{
		Category:    req.Category,
		SkinType:    req.SkinType,
		Problems:    req.Problems,
		Ingredients: req.Ingredients,
		Brand:       req.Brand,
		Prefs:       req.Preferences,
		PageSize:    topK,
	})
	if items == nil {
		items = []recommend.Recommendation{}
	}
	JSON(w, http.StatusOK, RecommendResponse{Items: items})
}

// HandleProducts handles GET /api/produk requests.
func (h *Handler) HandleProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	items := h.rec.Browse(recommend.BrowseQuery{
		Search:     q.Get("q"),
		Brands:     q["brand"],
		Categories: q["category"],
		Prefs: recommend.Prefs{
			AlcoholFree:    isTrue(q.Get("alcohol_free")),
			FragranceFree:  isTrue(q.Get("fragrance_free")),
			NonComedogenic: isTrue(q.Get("non_comedogenic")),
		},
		Limit: limit,
	})
	if items == nil {
		items = []domain.Product{}
	}
	JSON(w, http.StatusOK, ProductsResponse{Items: items, Count: len(items)})
}

// HandleBrands handles GET /api/brands requests.
func (h *Handler) HandleBrands(w http.ResponseWriter, r *http.Request) {
	brands := h.rec.Catalog().Brands()
	if brands == nil {
		brands = []string{}
	}
	JSON(w, http.StatusOK, BrandsResponse{Brands: brands})
}

// RegisterRoutes registers catalog routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/api/rekomendasi", h.HandleRecommend)
	r.Get("/api/produk", h.HandleProducts)
	r.Get("/api/brands", h.HandleBrands)
}

func isTrue(v string) bool {
	switch strings.ToUpper(strings.TrimSpace(v)) {
	case "YES", "TRUE", "1", "ON":
		return true
	default:
		return false
	}
}
