package agent

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"unicode"
)

// ConversationLogConfig controls transcript logging.
type ConversationLogConfig struct {
	Enabled   bool
	Dir       string
	QueueSize int
}

// ConversationLogEvent is one transcript line.
type ConversationLogEvent struct {
	Timestamp  string         `json:"ts"`
	SessionID  string         `json:"session_id"`
	Channel    string         `json:"channel"`
	Direction  string         `json:"direction"`
	EventType  string         `json:"event_type"`
	ContentRaw string         `json:"content_raw,omitempty"`
	Content    string         `json:"content,omitempty"`
	Meta       map[string]any `json:"meta,omitempty"`
}

// ConversationLogger records transcript events without blocking the caller.
type ConversationLogger interface {
	Log(event ConversationLogEvent)
	Close() error
}

type noopConversationLogger struct{}

func (noopConversationLogger) Log(ConversationLogEvent) {}
func (noopConversationLogger) Close() error             { return nil }

var (
	ansiPattern     = regexp.MustCompile(`\x1b\[[0-9;?]*[ -/]*[@-~]`)
	emphasisPattern = regexp.MustCompile(`\*\*|__`)
	fileNamePattern = regexp.MustCompile(`[^A-Za-z0-9._-]`)
)

// fileConversationLogger appends NDJSON lines to <dir>/<session>.ndjson from
// a single writer goroutine.
type fileConversationLogger struct {
	dir    string
	logger *slog.Logger
	queue  chan ConversationLogEvent

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

// NewConversationLogger starts a transcript writer. A disabled config yields
// a logger that discards everything.
func NewConversationLogger(cfg ConversationLogConfig, logger *slog.Logger) (ConversationLogger, error) {
	if !cfg.Enabled {
		return noopConversationLogger{}, nil
	}
	if cfg.Dir == "" {
		return nil, fmt.Errorf("conversation log dir is required")
	}
	if err := os.MkdirAll(cfg.Dir, 0o750); err != nil {
		return nil, fmt.Errorf("create conversation log dir: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	size := cfg.QueueSize
	if size <= 0 {
		size = 1000
	}

	l := &fileConversationLogger{
		dir:    cfg.Dir,
		logger: logger,
		queue:  make(chan ConversationLogEvent, size),
		done:   make(chan struct{}),
	}
	go l.run()
	return l, nil
}

// Log enqueues event. A full queue drops it.
func (l *fileConversationLogger) Log(event ConversationLogEvent) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return
	}
	select {
	case l.queue <- event:
	default:
		l.logger.Warn("conversation log queue full, dropping event",
			"session_id", event.SessionID,
			"event_type", event.EventType,
		)
	}
}

// Close drains pending events and stops the writer.
func (l *fileConversationLogger) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	close(l.queue)
	l.mu.Unlock()

	<-l.done
	return nil
}

func (l *fileConversationLogger) run() {
	defer close(l.done)
	for event := range l.queue {
		if err := l.write(event); err != nil {
			l.logger.Warn("failed to write conversation log", "session_id", event.SessionID, "error", err)
		}
	}
}

func (l *fileConversationLogger) write(event ConversationLogEvent) error {
	line, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	path := filepath.Join(l.dir, sessionFileName(event.SessionID))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o640)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		_ = f.Close()
		return fmt.Errorf("append %s: %w", path, err)
	}
	return f.Close()
}

func sessionFileName(id string) string {
	id = fileNamePattern.ReplaceAllString(strings.TrimSpace(id), "_")
	if id == "" || strings.Trim(id, ".") == "" {
		id = "unknown"
	}
	return id + ".ndjson"
}

// cleanForReadability strips terminal escapes, markdown emphasis and other
// control characters, keeping line breaks.
func cleanForReadability(s string) string {
	s = ansiPattern.ReplaceAllString(s, "")
	s = emphasisPattern.ReplaceAllString(s, "")
	s = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
