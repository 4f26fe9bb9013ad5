package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ashureev/skinmatch/internal/identity"
)

func TestCORS(t *testing.T) {
	t.Parallel()

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	tests := []struct {
		name       string
		allowed    []string
		origin     string
		method     string
		wantOrigin string
		wantCreds  string
		wantStatus int
	}{
		{"explicit origin", []string{"https://app.example"}, "https://app.example", http.MethodPost, "https://app.example", "true", http.StatusTeapot},
		{"wildcard has no credentials", []string{"*"}, "https://other.example", http.MethodGet, "https://other.example", "", http.StatusTeapot},
		{"disallowed origin", []string{"https://app.example"}, "https://evil.example", http.MethodGet, "", "", http.StatusTeapot},
		{"preflight short-circuits", []string{"*"}, "https://app.example", http.MethodOptions, "https://app.example", "", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := httptest.NewRequest(tt.method, "/api/chatbot", nil)
			r.Header.Set("Origin", tt.origin)
			w := httptest.NewRecorder()

			CORS(tt.allowed)(next).ServeHTTP(w, r)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantOrigin, w.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, tt.wantCreds, w.Header().Get("Access-Control-Allow-Credentials"))
			if tt.wantOrigin != "" {
				assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), identity.SessionHeaderName)
			}
		})
	}
}
