// Skinmatch - skincare recommendation chat server
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/ashureev/skinmatch/internal/agent"
	"github.com/ashureev/skinmatch/internal/api"
	"github.com/ashureev/skinmatch/internal/config"
	"github.com/ashureev/skinmatch/internal/identity"
	"github.com/ashureev/skinmatch/internal/lexicon"
	"github.com/ashureev/skinmatch/internal/metrics"
	"github.com/ashureev/skinmatch/internal/middleware"
	"github.com/ashureev/skinmatch/internal/recommend"
	"github.com/ashureev/skinmatch/internal/session"
	"github.com/ashureev/skinmatch/internal/store"
	"github.com/ashureev/skinmatch/web"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	slog.Info("Starting server", "port", cfg.Port, "dev", cfg.IsDevelopment())

	// Load lookup tables and the catalog.
	lx, err := lexicon.Load(cfg.LexiconPath)
	if err != nil {
		slog.Error("Failed to load lexicon", "path", cfg.LexiconPath, "error", err)
		os.Exit(1)
	}

	catalog, err := store.Load(context.Background(), cfg.CatalogSource, cfg.CatalogPath, cfg.DBPath)
	if err != nil {
		slog.Error("Failed to load catalog", "source", cfg.CatalogSource, "error", err)
		os.Exit(1)
	}
	slog.Info("Catalog loaded", "source", cfg.CatalogSource, "categories", len(catalog.Categories()), "products", catalog.Len())

	// Initialize services.
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New(reg)
	}

	rec := recommend.NewEngine(lx, catalog,
		recommend.WithTopK(cfg.Recommend.TopK),
		recommend.WithBrowseLimit(cfg.Recommend.BrowseLimit),
	)
	engine := agent.NewEngine(lx, rec,
		agent.WithDefaultPageSize(cfg.Recommend.DefaultPageSize),
		agent.WithMaxPageSize(cfg.Recommend.MaxPageSize),
	)
	sessions := session.NewStore(catalog)

	conversationLogger, err := agent.NewConversationLogger(agent.ConversationLogConfig{
		Enabled:   cfg.ConversationLog.Enabled,
		Dir:       cfg.ConversationLog.Dir,
		QueueSize: cfg.ConversationLog.QueueSize,
	}, logger)
	if err != nil {
		slog.Error("Failed to initialize conversation logger", "error", err)
		os.Exit(1)
	}

	svc := agent.NewService(engine, sessions,
		agent.WithMetrics(m),
		agent.WithConversationLogger(conversationLogger),
	)

	// Initialize handlers.
	catalogHandler := api.NewHandler(rec, cfg.MaxRequestBody)
	agentHandler := agent.NewHandler(svc, cfg)
	defer agentHandler.Close()

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	r.Use(middleware.CORS(cfg.AllowedOrigins()))
	r.Use(identity.Middleware(cfg.IsDevelopment()))

	catalogHandler.RegisterRoutes(r)
	agentHandler.RegisterRoutes(r)
	if cfg.MetricsEnabled {
		r.Handle("/metrics", metrics.Handler(reg))
	}

	// Serve embedded chat page (SPA catch-all).
	r.Handle("/*", web.Handler())

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second, // 2 minutes for idle connections
	}

	// Start session eviction worker.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	session.StartEvictionWorker(ctx, sessions, cfg.Session.SweepInterval, cfg.Session.TTL, logger, func(string) {
		m.AddEvicted(1)
		m.SetActiveSessions(sessions.Len())
	})

	// Start server.
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}
