package domain

import (
	"slices"
	"sync"
	"time"
)

// Session holds the accumulated conversation state for one session id.
// Callers mutate it only while holding its lock (see session.Store.Acquire).
type Session struct {
	mu sync.Mutex

	ID             string
	SkinType       []string
	Problems       []string
	ProblemDisplay []string
	Ingredients    []string
	Brand          string
	Category       string
	Offset         int
	PageSize       int
	LastRawInput   string
	Seed           uint64
	Catalog        *Catalog
	CreatedAt      time.Time
	LastActive     time.Time
}

// SessionState is a read-only copy of a session's entities.
type SessionState struct {
	ID             string    `json:"session_id"`
	SkinType       []string  `json:"skin_type"`
	Problems       []string  `json:"problems"`
	ProblemDisplay []string  `json:"problem_display"`
	Ingredients    []string  `json:"ingredients"`
	Brand          string    `json:"brand,omitempty"`
	Category       string    `json:"current_category,omitempty"`
	Offset         int       `json:"pagination_offset"`
	PageSize       int       `json:"page_size"`
	LastRawInput   string    `json:"last_raw_input,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	LastActive     time.Time `json:"last_active"`
}

// NewSession returns a fresh session bound to catalog.
func NewSession(id string, catalog *Catalog, seed uint64) *Session {
	now := time.Now()
	return &Session{
		ID:         id,
		Seed:       seed,
		Catalog:    catalog,
		CreatedAt:  now,
		LastActive: now,
	}
}

// Lock acquires exclusive access to the session.
func (s *Session) Lock() { s.mu.Lock() }

// TryLock acquires the session only if it is free.
func (s *Session) TryLock() bool { return s.mu.TryLock() }

// Unlock releases the session.
func (s *Session) Unlock() { s.mu.Unlock() }

// Reset clears every entity and the paging cursor. The catalog reference and
// the session id survive.
func (s *Session) Reset(seed uint64) {
	s.SkinType = nil
	s.Problems = nil
	s.ProblemDisplay = nil
	s.Ingredients = nil
	s.Brand = ""
	s.Category = ""
	s.Offset = 0
	s.PageSize = 0
	s.LastRawInput = ""
	s.Seed = seed
}

// HasSkinType reports whether a skin type has been recorded.
func (s *Session) HasSkinType() bool {
	return len(s.SkinType) > 0
}

// SetCategory records the active category and resets the paging cursor when
// it changes.
func (s *Session) SetCategory(key string) {
	if key == s.Category {
		return
	}
	s.Category = key
	s.Offset = 0
}

// SetSkinType records the skin type tags and resets the paging cursor when
// they change.
func (s *Session) SetSkinType(tags []string) {
	if slices.Equal(tags, s.SkinType) {
		return
	}
	s.SkinType = slices.Clone(tags)
	s.Offset = 0
}

// AddProblem appends a canonical problem tag if it is not yet present.
func (s *Session) AddProblem(tag string) bool {
	return appendUnique(&s.Problems, tag)
}

// AddProblemDisplay appends a user-facing problem phrase if it is not yet present.
func (s *Session) AddProblemDisplay(phrase string) bool {
	return appendUnique(&s.ProblemDisplay, phrase)
}

// AddIngredient appends a canonical ingredient name if it is not yet present.
func (s *Session) AddIngredient(name string) bool {
	return appendUnique(&s.Ingredients, name)
}

// Touch marks the session as used now.
func (s *Session) Touch(now time.Time) {
	s.LastActive = now
}

// State copies the session entities.
func (s *Session) State() SessionState {
	return SessionState{
		ID:             s.ID,
		SkinType:       slices.Clone(s.SkinType),
		Problems:       slices.Clone(s.Problems),
		ProblemDisplay: slices.Clone(s.ProblemDisplay),
		Ingredients:    slices.Clone(s.Ingredients),
		Brand:          s.Brand,
		Category:       s.Category,
		Offset:         s.Offset,
		PageSize:       s.PageSize,
		LastRawInput:   s.LastRawInput,
		CreatedAt:      s.CreatedAt,
		LastActive:     s.LastActive,
	}
}

func appendUnique(list *[]string, v string) bool {
	if v == "" || slices.Contains(*list, v) {
		return false
	}
	*list = append(*list, v)
	return true
}
