// Package config provides application configuration.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Catalog sources.
const (
	CatalogSourceYAML   = "yaml"
	CatalogSourceSQLite = "sqlite"
)

// Config holds all application configuration.
type Config struct {
	Port        string
	FrontendURL string
	LogLevel    string

	CatalogSource string
	CatalogPath   string
	DBPath        string
	LexiconPath   string // empty = embedded tables

	Session         SessionConfig
	Recommend       RecommendConfig
	RateLimit       RateLimitConfig
	MaxRequestBody  int64
	ConversationLog ConversationLogConfig
	MetricsEnabled  bool
}

// SessionConfig controls the in-memory session store.
type SessionConfig struct {
	TTL           time.Duration // 0 = never evict
	SweepInterval time.Duration
}

// RecommendConfig bounds list sizes.
type RecommendConfig struct {
	DefaultPageSize int
	MaxPageSize     int
	TopK            int
	BrowseLimit     int
}

// RateLimitConfig configures the chat sliding-window limiter.
type RateLimitConfig struct {
	RequestsPerWindow int
	WindowDuration    time.Duration
}

// ConversationLogConfig controls JSON conversation logging.
type ConversationLogConfig struct {
	Enabled   bool
	Dir       string
	QueueSize int
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	queueSize := getEnvInt("CONVERSATION_LOG_QUEUE_SIZE", 1000)
	if queueSize <= 0 {
		queueSize = 1000
	}

	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		FrontendURL:   getEnv("FRONTEND_URL", ""),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		CatalogSource: strings.ToLower(getEnv("CATALOG_SOURCE", CatalogSourceYAML)),
		CatalogPath:   getEnv("CATALOG_PATH", "./data/catalog.yaml"),
		DBPath:        getEnv("DB_PATH", "./data/skinmatch.db"),
		LexiconPath:   getEnv("LEXICON_PATH", ""),
		Session: SessionConfig{
			TTL:           getEnvDuration("SESSION_TTL", 0),
			SweepInterval: getEnvDuration("SESSION_SWEEP_INTERVAL", 5*time.Minute),
		},
		Recommend: RecommendConfig{
			DefaultPageSize: getEnvInt("DEFAULT_PAGE_SIZE", 3),
			MaxPageSize:     getEnvInt("MAX_PAGE_SIZE", 10),
			TopK:            getEnvInt("RECOMMEND_TOP_K", 10),
			BrowseLimit:     getEnvInt("BROWSE_LIMIT", 60),
		},
		RateLimit: RateLimitConfig{
			RequestsPerWindow: getEnvInt("RATE_LIMIT_REQUESTS", 30),
			WindowDuration:    getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),
		},
		MaxRequestBody: int64(getEnvInt("MAX_REQUEST_BODY_SIZE", 1<<20)),
		ConversationLog: ConversationLogConfig{
			Enabled:   getEnvBool("CONVERSATION_LOG_ENABLED", false),
			Dir:       getEnv("CONVERSATION_LOG_DIR", "./data/logs/conversations"),
			QueueSize: queueSize,
		},
		MetricsEnabled: getEnvBool("METRICS_ENABLED", true),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	switch c.CatalogSource {
	case CatalogSourceYAML:
		if c.CatalogPath == "" {
			return fmt.Errorf("CATALOG_PATH cannot be empty when CATALOG_SOURCE=yaml")
		}
	case CatalogSourceSQLite:
		if c.DBPath == "" {
			return fmt.Errorf("DB_PATH cannot be empty when CATALOG_SOURCE=sqlite")
		}
	default:
		return fmt.Errorf("CATALOG_SOURCE must be %q or %q, got %q", CatalogSourceYAML, CatalogSourceSQLite, c.CatalogSource)
	}
	if c.Session.TTL < 0 {
		return fmt.Errorf("SESSION_TTL must be >= 0")
	}
	if c.Session.TTL > 0 && c.Session.SweepInterval <= 0 {
		return fmt.Errorf("SESSION_SWEEP_INTERVAL must be > 0 when SESSION_TTL is set")
	}
	if c.Recommend.DefaultPageSize <= 0 || c.Recommend.MaxPageSize <= 0 {
		return fmt.Errorf("DEFAULT_PAGE_SIZE and MAX_PAGE_SIZE must be > 0")
	}
	if c.Recommend.DefaultPageSize > c.Recommend.MaxPageSize {
		return fmt.Errorf("DEFAULT_PAGE_SIZE (%d) exceeds MAX_PAGE_SIZE (%d)", c.Recommend.DefaultPageSize, c.Recommend.MaxPageSize)
	}
	if c.Recommend.TopK <= 0 || c.Recommend.BrowseLimit <= 0 {
		return fmt.Errorf("RECOMMEND_TOP_K and BROWSE_LIMIT must be > 0")
	}
	if c.RateLimit.RequestsPerWindow <= 0 || c.RateLimit.WindowDuration <= 0 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS and RATE_LIMIT_WINDOW must be > 0")
	}
	if c.MaxRequestBody <= 0 {
		return fmt.Errorf("MAX_REQUEST_BODY_SIZE must be > 0")
	}
	if c.ConversationLog.Enabled && c.ConversationLog.Dir == "" {
		return fmt.Errorf("CONVERSATION_LOG_DIR cannot be empty")
	}
	if c.ConversationLog.QueueSize <= 0 {
		return fmt.Errorf("CONVERSATION_LOG_QUEUE_SIZE must be > 0")
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.FrontendURL == "" ||
		strings.Contains(c.FrontendURL, "localhost") ||
		strings.Contains(c.FrontendURL, "127.0.0.1")
}

// AllowedOrigins returns the CORS origins for the configured frontend.
func (c *Config) AllowedOrigins() []string {
	if c.FrontendURL == "" {
		return []string{"*"}
	}
	var out []string
	for _, o := range strings.Split(c.FrontendURL, ",") {
		if o = strings.TrimRight(strings.TrimSpace(o), "/"); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// SlogLevel maps LogLevel onto a slog level; unknown names mean info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return d
}
