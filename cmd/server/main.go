// Dog Trainer - voice skill backend
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

	"github.com/ashureev/dogtrainer/internal/api"
	"github.com/ashureev/dogtrainer/internal/config"
	"github.com/ashureev/dogtrainer/internal/dialog"
	"github.com/ashureev/dogtrainer/internal/middleware"
	"github.com/ashureev/dogtrainer/internal/store"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
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

	slog.Info("Starting server", "port", cfg.Port, "store", cfg.StoreBackend, "dev", cfg.IsDevelopment())

	// Initialize dependencies.
	repo, err := newRepository(cfg)
	if err != nil {
		slog.Error("Failed to initialize profile store", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			slog.Error("Failed to close profile store", "error", closeErr)
		}
	}()

	if err := repo.Ping(context.Background()); err != nil {
		slog.Error("Profile store health check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Profile store connected")

	if cfg.SkillAppID == "" {
		slog.Warn("SKILL_APP_ID not set, application-id check disabled")
	}

	// Initialize services and handlers.
	engine := dialog.NewEngine(repo, logger)
	skillHandler := api.NewSkillHandler(engine, cfg)
	healthHandler := api.NewHealthHandler(repo)

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/ping"))

	// Public routes.
	healthHandler.RegisterHealth(r)

	// Skill webhook, gated on the platform's signature headers.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireSignatureHeaders(cfg.IsDevelopment()))
		skillHandler.RegisterRoutes(r)
	})

	// Create server.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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

// newRepository selects the profile store backend from configuration.
func newRepository(cfg *config.Config) (store.Repository, error) {
	if cfg.StoreBackend == config.BackendRedis {
		return store.NewRedis(cfg.RedisAddr)
	}
	return store.NewSQLite(cfg.DBPath)
}
