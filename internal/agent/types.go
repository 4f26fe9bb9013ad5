// Package agent runs the conversational recommender: one turn at a time over
// a per-session state, plus its HTTP transport and transcript logging.
package agent

import (
	"errors"

	"github.com/ashureev/skinmatch/internal/intent"
	"github.com/ashureev/skinmatch/internal/recommend"
)

// ErrNotInitialized is returned when a turn arrives before a catalog is bound.
var ErrNotInitialized = errors.New("agent: catalog not initialized")

// ChatRequest represents a chat request to the agent.
type ChatRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Message   string `json:"message"`
}

// ChatResponse represents a chat response from the agent.
type ChatResponse struct {
	SessionID string       `json:"session_id"`
	Reply     string       `json:"reply"`
	Intent    intent.Label `json:"intent"`
}

// ResetRequest asks for a session's entities to be cleared.
type ResetRequest struct {
	SessionID string `json:"session_id"`
}

// ResetResponse acknowledges a reset.
type ResetResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Turn is the outcome of one processed message.
type Turn struct {
	Reply     string
	Intent    intent.Label
	Items     []recommend.Recommendation // products listed in Reply, if any
	Reset     bool
	Gibberish bool
	Exhausted bool
}
