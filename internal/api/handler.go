// Package api provides HTTP handlers for the catalog endpoints and the JSON
// helpers shared by every handler.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/ashureev/skinmatch/internal/recommend"
)

// defaultMaxRequestBodySize is the default maximum allowed request body size (1MB).
const defaultMaxRequestBodySize = 1 << 20

// Handler serves catalog queries.
type Handler struct {
	rec         *recommend.Engine
	maxBodySize int64
}

// NewHandler creates a Handler over rec. A non-positive maxBodySize uses the
// 1MB default.
func NewHandler(rec *recommend.Engine, maxBodySize int64) *Handler {
	if maxBodySize <= 0 {
		maxBodySize = defaultMaxRequestBodySize
	}
	return &Handler{
		rec:         rec,
		maxBodySize: maxBodySize,
	}
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}
