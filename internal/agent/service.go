package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ashureev/skinmatch/internal/domain"
	"github.com/ashureev/skinmatch/internal/metrics"
	"github.com/ashureev/skinmatch/internal/session"
)

const chatChannel = "chat_http"

// Service runs chat turns against the session store.
type Service struct {
	processor Processor
	store     *session.Store
	metrics   *metrics.Metrics
	log       ConversationLogger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithMetrics records turn metrics on m.
func WithMetrics(m *metrics.Metrics) ServiceOption {
	return func(s *Service) { s.metrics = m }
}

// WithConversationLogger writes a transcript of every turn.
func WithConversationLogger(l ConversationLogger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// NewService creates a chat service over processor and store.
func NewService(processor Processor, store *session.Store, opts ...ServiceOption) *Service {
	s := &Service{
		processor: processor,
		store:     store,
		log:       noopConversationLogger{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Chat processes a user message. A missing session id starts a new session;
// turns of one session run one at a time.
func (s *Service) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	id := strings.TrimSpace(req.SessionID)
	if id == "" {
		id = uuid.NewString()
	}

	sess, release, created := s.store.Acquire(id)
	defer release()
	if created {
		s.metrics.SetActiveSessions(s.store.Len())
		slog.Info("chat session created", "session_id", id)
	}

	s.logEvent(id, "outbound", "chat_user_message", req.Message, nil)

	start := time.Now()
	turn, err := s.processor.ProcessTurn(ctx, sess, req.Message)
	if err != nil {
		return nil, fmt.Errorf("chat session %s: %w", id, err)
	}
	s.metrics.ObserveTurn(string(turn.Intent), time.Since(start))
	if len(turn.Items) > 0 {
		s.metrics.ObserveRecommendations(len(turn.Items))
	}

	slog.Debug("chat turn processed",
		"session_id", id,
		"intent", turn.Intent,
		"items", len(turn.Items),
		"offset", sess.Offset,
	)
	s.logEvent(id, "inbound", "chat_assistant_message", turn.Reply, map[string]any{
		"intent":    turn.Intent,
		"items":     len(turn.Items),
		"reset":     turn.Reset,
		"gibberish": turn.Gibberish,
		"exhausted": turn.Exhausted,
	})

	return &ChatResponse{SessionID: id, Reply: turn.Reply, Intent: turn.Intent}, nil
}

// Reset clears the entities of an existing session. It reports false when
// the id is unknown.
func (s *Service) Reset(id string) bool {
	ok := s.store.Reset(id)
	if ok {
		s.logEvent(id, "outbound", "chat_reset", "", nil)
	}
	return ok
}

// State returns a snapshot of a session.
func (s *Service) State(id string) (domain.SessionState, bool) {
	sess, ok := s.store.Get(id)
	if !ok {
		return domain.SessionState{}, false
	}
	sess.Lock()
	defer sess.Unlock()
	return sess.State(), true
}

// Close flushes the transcript logger.
func (s *Service) Close() {
	if err := s.log.Close(); err != nil {
		slog.Warn("failed to close conversation logger", "error", err)
	}
}

func (s *Service) logEvent(sessionID, direction, eventType, content string, meta map[string]any) {
	s.log.Log(ConversationLogEvent{
		Timestamp:  time.Now().UTC().Format(time.RFC3339Nano),
		SessionID:  sessionID,
		Channel:    chatChannel,
		Direction:  direction,
		EventType:  eventType,
		ContentRaw: content,
		Content:    cleanForReadability(content),
		Meta:       meta,
	})
}
