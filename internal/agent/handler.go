package agent

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/ashureev/skinmatch/internal/api"
	"github.com/ashureev/skinmatch/internal/config"
	"github.com/ashureev/skinmatch/internal/identity"
)

// defaultMaxRequestBodySize is the default maximum allowed request body size (1MB).
const defaultMaxRequestBodySize = 1 << 20 // 1MB

// Handler serves the chat endpoints.
type Handler struct {
	agent       *Service
	rateLimiter *RateLimiter
	maxBodySize int64
}

// RateLimiter implements a per-client sliding-window rate limiter keyed by
// client address.
type RateLimiter struct {
	mu       sync.Mutex
	requests map[string][]time.Time
	limit    int
	window   time.Duration
	done     chan struct{}
	stopOnce sync.Once
}

// NewRateLimiter creates a new rate limiter and starts the background eviction goroutine.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		requests: make(map[string][]time.Time),
		limit:    limit,
		window:   window,
		done:     make(chan struct{}),
	}
	rl.startEviction()
	return rl
}

// Allow checks if a request is allowed for the given key.
func (r *RateLimiter) Allow(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-r.window)

	var recent []time.Time
	for _, t := range r.requests[key] {
		if t.After(cutoff) {
			recent = append(recent, t)
		}
	}

	if len(recent) >= r.limit {
		r.requests[key] = recent
		return false
	}

	r.requests[key] = append(recent, now)
	return true
}

// Stop ends the eviction goroutine.
func (r *RateLimiter) Stop() {
	r.stopOnce.Do(func() { close(r.done) })
}

// startEviction runs a background goroutine that periodically removes expired
// keys from the requests map, preventing unbounded memory growth.
func (r *RateLimiter) startEviction() {
	go func() {
		ticker := time.NewTicker(r.window)
		defer ticker.Stop()
		for {
			select {
			case <-r.done:
				return
			case <-ticker.C:
				r.evict()
			}
		}
	}()
}

func (r *RateLimiter) evict() {
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := time.Now().Add(-r.window)
	for key, times := range r.requests {
		var fresh []time.Time
		for _, t := range times {
			if t.After(cutoff) {
				fresh = append(fresh, t)
			}
		}
		if len(fresh) == 0 {
			delete(r.requests, key)
		} else {
			r.requests[key] = fresh
		}
	}
}

// NewHandler creates a chat handler. A nil cfg uses defaults.
func NewHandler(agent *Service, cfg *config.Config) *Handler {
	rateLimitRequests := 30
	rateLimitWindow := time.Minute
	maxBodySize := int64(defaultMaxRequestBodySize)

	if cfg != nil {
		if cfg.RateLimit.RequestsPerWindow > 0 {
			rateLimitRequests = cfg.RateLimit.RequestsPerWindow
		}
		if cfg.RateLimit.WindowDuration > 0 {
			rateLimitWindow = cfg.RateLimit.WindowDuration
		}
		if cfg.MaxRequestBody > 0 {
			maxBodySize = cfg.MaxRequestBody
		}
	}

	return &Handler{
		agent:       agent,
		rateLimiter: NewRateLimiter(rateLimitRequests, rateLimitWindow),
		maxBodySize: maxBodySize,
	}
}

// HandleChat handles POST /api/chatbot requests.
func (h *Handler) HandleChat(w http.ResponseWriter, r *http.Request) {
	if !h.rateLimiter.Allow(identity.IPFromRequest(r)) {
		api.Error(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}

	var req ChatRequest
	if !h.decode(w, r, &req) {
		return
	}
	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		api.Error(w, http.StatusBadRequest, "message is required")
		return
	}
	if req.SessionID = identity.SanitizeSessionID(req.SessionID); req.SessionID == "" {
		req.SessionID = identity.SessionIDFromContext(r.Context())
	}

	slog.Info("chat request",
		"session_id", req.SessionID,
		"request_id", chiMiddleware.GetReqID(r.Context()),
		"message_length", len(req.Message),
	)

	resp, err := h.agent.Chat(r.Context(), req)
	if err != nil {
		if errors.Is(err, ErrNotInitialized) {
			slog.Error("chat unavailable", "session_id", req.SessionID, "error", err)
			api.Error(w, http.StatusServiceUnavailable, "catalog not initialized")
			return
		}
		slog.Error("chat turn failed", "session_id", req.SessionID, "error", err)
		api.Error(w, http.StatusInternalServerError, "failed to process message")
		return
	}

	w.Header().Set(identity.SessionHeaderName, resp.SessionID)
	api.JSON(w, http.StatusOK, resp)
}

// HandleReset handles POST /api/chatbot/reset requests.
func (h *Handler) HandleReset(w http.ResponseWriter, r *http.Request) {
	var req ResetRequest
	if r.ContentLength != 0 && !h.decode(w, r, &req) {
		return
	}
	id := identity.SanitizeSessionID(req.SessionID)
	if id == "" && !identity.IssuedFromContext(r.Context()) {
		id = identity.SessionIDFromContext(r.Context())
	}
	if id == "" {
		api.Error(w, http.StatusBadRequest, "session_id is required")
		return
	}
	if !h.agent.Reset(id) {
		api.Error(w, http.StatusNotFound, "session not found")
		return
	}
	api.JSON(w, http.StatusOK, ResetResponse{Status: "ok", Message: replyReset})
}

// HandleState handles GET /api/chatbot/state requests.
func (h *Handler) HandleState(w http.ResponseWriter, r *http.Request) {
	id := identity.SanitizeSessionID(r.URL.Query().Get(identity.SessionQueryParam))
	if id == "" && !identity.IssuedFromContext(r.Context()) {
		id = identity.SessionIDFromContext(r.Context())
	}
	state, ok := h.agent.State(id)
	if !ok {
		api.Error(w, http.StatusNotFound, "session not found")
		return
	}
	api.JSON(w, http.StatusOK, state)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			api.Error(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// RegisterRoutes registers chat routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/chatbot", func(r chi.Router) {
		r.Post("/", h.HandleChat)
		r.Post("/reset", h.HandleReset)
		r.Get("/state", h.HandleState)
	})
}

// Close releases handler resources.
func (h *Handler) Close() {
	h.rateLimiter.Stop()
	if h.agent != nil {
		h.agent.Close()
	}
}

// GetService returns the underlying agent service.
func (h *Handler) GetService() *Service {
	return h.agent
}
