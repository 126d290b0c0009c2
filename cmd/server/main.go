// Insight - Lesson Session Analysis Service
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
	"github.com/kardelen-edu/insight/internal/analysis"
	"github.com/kardelen-edu/insight/internal/api"
	"github.com/kardelen-edu/insight/internal/config"
	"github.com/kardelen-edu/insight/internal/eventlog"
	"github.com/kardelen-edu/insight/internal/llm"
	"github.com/kardelen-edu/insight/internal/middleware"
	"github.com/kardelen-edu/insight/internal/store"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting server", "port", cfg.Port, "store", cfg.StoreBackend, "llm", cfg.LLM.Provider)

	// Initialize stores.
	var (
		sessions store.SessionStore
		reports  store.ReportStore
	)
	switch cfg.StoreBackend {
	case "mongo":
		connectCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		m, err := store.NewMongo(connectCtx, cfg.MongoURI, cfg.MongoDB)
		cancel()
		if err != nil {
			slog.Error("Failed to connect to MongoDB", "error", err)
			os.Exit(1)
		}
		sessions = m
		reports = m
		slog.Info("MongoDB connected", "db", cfg.MongoDB)
	case "fixture":
		sessions = store.NewFixtureSessions(cfg.FixtureSessionsPath)
		reports = store.NewMemory()
		slog.Info("Fixture store initialized", "path", cfg.FixtureSessionsPath)
	}
	defer func() {
		if closeErr := sessions.Close(); closeErr != nil {
			slog.Error("Failed to close session store", "error", closeErr)
		}
	}()

	// Initialize the LLM event log (optional).
	var (
		auditLog *eventlog.SQLite
		recorder eventlog.Recorder
	)
	if cfg.EventLog.Enabled {
		auditLog, err = eventlog.NewSQLite(cfg.EventLog.DBPath)
		if err != nil {
			slog.Error("Failed to initialize LLM event log", "error", err)
			os.Exit(1)
		}
		defer func() {
			if closeErr := auditLog.Close(); closeErr != nil {
				slog.Error("Failed to close LLM event log", "error", closeErr)
			}
		}()
		recorder = auditLog
		slog.Info("LLM event log enabled", "path", cfg.EventLog.DBPath)
	}

	// Initialize the LLM provider.
	provider, err := llm.New(llm.Config{
		Provider: cfg.LLM.Provider,
		OpenAI: llm.OpenAIConfig{
			APIKey: cfg.LLM.APIKey,
			Model:  cfg.LLM.Model,
		},
	}, recorder)
	if err != nil {
		slog.Error("Failed to initialize LLM provider", "error", err)
		os.Exit(1)
	}
	slog.Info("LLM provider initialized", "provider", cfg.LLM.Provider, "model", provider.ModelID())

	// Initialize services.
	analyzer := analysis.NewAnalyzer(provider)
	workflow := analysis.NewWorkflow(sessions, reports, analyzer, cfg.StrictStepTypes)

	// Initialize handlers.
	analysisHandler := api.NewAnalysisHandler(workflow)
	healthHandler := api.NewHealthHandler(sessions)

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/ping"))
	r.Use(middleware.CORS([]string{"*"}))

	healthHandler.RegisterHealth(r)
	analysisHandler.RegisterRoutes(r)

	// Create server.
	// Note: analysis handlers block on LLM calls, so the write timeout is generous.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start the event log retention worker.
	if auditLog != nil && cfg.EventLog.RetentionDays > 0 {
		maxAge := time.Duration(cfg.EventLog.RetentionDays) * 24 * time.Hour
		eventlog.StartRetentionWorker(ctx, auditLog, maxAge)
	}

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
