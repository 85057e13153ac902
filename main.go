package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"golang.org/x/sync/errgroup"

	database "github.com/harborview-labs/concierge/app/db"
	appLogger "github.com/harborview-labs/concierge/app/logger"
	"github.com/harborview-labs/concierge/app/observability/metrics"
	"github.com/harborview-labs/concierge/app/tracer"
	"github.com/harborview-labs/concierge/config"
	"github.com/harborview-labs/concierge/internal/api/recommend"
	"github.com/harborview-labs/concierge/internal/recengine"
	api "github.com/harborview-labs/concierge/internal/router"
)

func main() {
	// --- Initial Loading ---
	// Use standard log until slog is configured, in case godotenv fails
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: .env file not found or error loading:", err)
	}

	cfg, err := config.InitConfig()
	if err != nil {
		log.Fatalf("FATAL: Error initializing config: %v", err)
	}

	// --- Logger Setup ---
	logger := setupLogger()
	slog.SetDefault(logger)

	// --- Application Context & Shutdown ---
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// --- Observability ---
	metricsHandler, err := tracer.InitTracingAndMetrics()
	if err != nil {
		logger.Error("Failed to initialize tracing and metrics", slog.Any("error", err))
		os.Exit(1)
	}
	metrics.InitAppMetrics()

	// --- Table Source Setup ---
	repo, cleanup, err := setupRepository(ctx, &cfg, logger)
	if err != nil {
		logger.Error("Failed to set up table repository", slog.Any("error", err))
		os.Exit(1)
	}
	defer cleanup()

	// --- Dependency Injection ---
	engine := recengine.NewEngine(logger, nil)
	if cfg.Engine.TopN > 0 {
		engine.TopN = cfg.Engine.TopN
	}
	if cfg.Engine.FallbackSample > 0 {
		engine.FallbackSample = cfg.Engine.FallbackSample
	}
	recommendService := recommend.NewService(repo, engine, logger)
	recommendHandler := recommend.NewHandler(recommendService, logger)

	// --- Router Setup ---
	mainRouter := api.SetupRouter(&api.Config{
		RecommendHandler: recommendHandler,
	})

	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(appLogger.StructuredLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.StripSlashes)
	router.Use(middleware.Timeout(cfg.Server.Timeout))
	router.Use(middleware.Compress(5, "application/json"))
	router.Mount("/", mainRouter)

	// --- HTTP Servers ---
	serverAddress := fmt.Sprintf(":%s", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         serverAddress,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", metricsHandler)
	metricsSrv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Handlers.Prometheus.Port),
		Handler: metricsMux,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", serverAddress))
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		logger.Info("Starting metrics server", slog.String("address", metricsSrv.Addr))
		err := metricsSrv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		// Block until shutdown signal or a server failure, then stop both
		// listeners gracefully.
		<-gctx.Done()
		logger.Info("Shutdown signal received, starting graceful shutdown...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server graceful shutdown failed", slog.Any("error", err))
		} else {
			logger.Info("HTTP server gracefully stopped")
		}
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Metrics server graceful shutdown failed", slog.Any("error", err))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server exited with error", slog.Any("error", err))
	}
	logger.Info("Application shut down complete.")
}

// setupRepository picks the configured table source: the Postgres pool
// for deployments, or a local SQLite snapshot file for development.
func setupRepository(ctx context.Context, cfg *config.Config, logger *slog.Logger) (recommend.Repository, func(), error) {
	switch cfg.Repositories.Backend {
	case "sqlite":
		repo, err := recommend.OpenSQLiteRepository(cfg.Repositories.SQLite.Path, logger)
		if err != nil {
			return nil, nil, err
		}
		return repo, func() { repo.Close() }, nil

	default:
		dbConfig, err := database.NewDatabaseConfig(cfg, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("generating database config: %w", err)
		}

		// Run migrations *before* initializing the main pool
		if err := database.RunMigrations(dbConfig.ConnectionURL, logger); err != nil {
			return nil, nil, fmt.Errorf("running migrations: %w", err)
		}

		pool, err := database.Init(dbConfig.ConnectionURL, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("initializing database pool: %w", err)
		}
		if !database.WaitForDB(ctx, pool, logger) {
			pool.Close()
			return nil, nil, errors.New("database not ready after waiting")
		}

		repo := recommend.NewPostgresRepository(pool, logger, cfg.Repositories.SnapshotTTL)
		return repo, pool.Close, nil
	}
}

// setupLogger configures and returns the application logger.
func setupLogger() *slog.Logger {
	var logger *slog.Logger
	env := os.Getenv("APP_ENV")

	if env == "development" || env == "" { // Default to development if not set
		// Colored logs for development
		tintOpts := &tint.Options{
			Level:      slog.LevelDebug, // More verbose in dev
			TimeFormat: time.Kitchen,
			AddSource:  true, // Show file:line
		}
		logger = slog.New(tint.NewHandler(os.Stdout, tintOpts))
		log.Println("Initialized development logger (tint)")
	} else {
		// JSON logs for production or other environments
		jsonOpts := &slog.HandlerOptions{
			Level:     slog.LevelInfo,
			AddSource: false,
		}
		logger = slog.New(slog.NewJSONHandler(os.Stdout, jsonOpts))
		log.Println("Initialized production logger (JSON)")
	}
	return logger
}
