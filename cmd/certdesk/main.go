// Package main is the entry point for the certdesk certificate server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"certdesk/internal/cache"
	"certdesk/internal/config"
	"certdesk/internal/database"
	"certdesk/internal/handlers"
	"certdesk/internal/router"
	"certdesk/internal/service"
	"certdesk/internal/storage"
	"certdesk/internal/store"
)

func main() {
	// Structured logger for the whole process.
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
	)

	// Connect to PostgreSQL.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run pending migrations.
	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Object storage: S3 when configured, local filesystem otherwise.
	var files storage.Store
	if cfg.S3Configured() {
		files = storage.NewS3(cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket)
		slog.Info("s3 storage configured", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
	} else {
		files, err = storage.NewLocal(cfg.StorageDir)
		if err != nil {
			slog.Error("failed to initialize local storage", "error", err)
			os.Exit(1)
		}
		slog.Info("local storage configured", "dir", cfg.StorageDir)
	}

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(db, files); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	// Connect to Valkey for the stats cache. The service degrades to
	// uncached stats if Valkey is unavailable.
	var statsCache *cache.StatsCache
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Warn("valkey unavailable, stats caching disabled", "error", err)
		statsCache = cache.NewStatsCache(nil, 0)
	} else {
		defer valkeyClient.Close()
		statsCache = cache.NewStatsCache(valkeyClient, cache.DefaultStatsTTL)
	}

	// Initialize data stores.
	templateStore := store.NewTemplateStore(db)
	certificateStore := store.NewCertificateStore(db)
	backgroundStore := store.NewBackgroundStore(db)

	// Wire the issuance service.
	certService := service.NewCertificates(templateStore, certificateStore, backgroundStore, files)

	// Create handler groups with their dependencies.
	certHandlers := handlers.NewCertificates(certService, statsCache)
	templateHandlers := handlers.NewTemplates(templateStore, backgroundStore)
	backgroundHandlers := handlers.NewBackgrounds(backgroundStore, files)
	dashboardHandlers := handlers.NewDashboard(templateStore, certificateStore, statsCache)

	// Set up the Chi router with all middleware and routes.
	r := router.New(certHandlers, templateHandlers, backgroundHandlers, dashboardHandlers, cfg.GenerateRateLimit)

	// Create the HTTP server with sensible timeouts. WriteTimeout covers
	// PDF rendering plus an S3 round trip on the generate endpoint.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	// Give active requests up to 30 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
