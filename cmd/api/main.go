package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/saturnino-fabrica-de-software/vision-service/internal/api"
	"github.com/saturnino-fabrica-de-software/vision-service/internal/config"
	"github.com/saturnino-fabrica-de-software/vision-service/internal/database"
	"github.com/saturnino-fabrica-de-software/vision-service/internal/face"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Environment, cfg.LogLevel)
	slog.SetDefault(logger)

	logger.Info("starting vision service",
		slog.String("environment", cfg.Environment),
		slog.Int("port", cfg.Port),
		slog.String("primary_model", cfg.PrimaryModel),
		slog.String("face_detector", cfg.FaceDetector),
		slog.Duration("model_timeout", cfg.ModelTimeout),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Models are built now and loaded in the background
	caps, err := face.NewCapabilities(cfg)
	if err != nil {
		return fmt.Errorf("failed to build capabilities: %w", err)
	}
	go caps.LoadAll(ctx, logger)

	// Optional reference store
	var pool *pgxpool.Pool
	if cfg.StoreEnabled() {
		if cfg.AutoMigrate {
			status, err := database.MigrateUp(ctx, cfg.DatabaseURL, logger)
			if err != nil {
				return fmt.Errorf("failed to migrate database: %w", err)
			}
			logger.Info("database migrated", slog.Uint64("version", uint64(status.Version)))
		}

		pool, err = database.NewPool(ctx, database.DefaultPoolConfig(cfg.DatabaseURL))
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()
		logger.Info("reference store enabled")
	} else {
		logger.Info("reference store disabled (DATABASE_URL not set)")
	}

	// Setup router
	router := api.NewRouter(logger, &api.Dependencies{
		Capabilities: caps,
		DB:           pool,
		Threshold:    cfg.VerifyThreshold,
		RequireFace:  cfg.RequireFaceOnReference,
		MaxBodyBytes: cfg.MaxBodyBytes,
	})
	router.Setup()

	// Start server in goroutine
	errChan := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		logger.Info("server listening", slog.String("addr", addr))
		if err := router.Listen(addr); err != nil {
			errChan <- err
		}
	}()

	// Wait for shutdown signal or error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	}

	logger.Info("shutting down server...")
	done := make(chan error, 1)
	go func() { done <- router.Shutdown() }()

	select {
	case err := <-done:
		if err != nil {
			logger.Error("shutdown error", slog.Any("error", err))
		}
	case <-time.After(10 * time.Second):
		logger.Warn("shutdown timed out")
	}

	logger.Info("server stopped")

	return nil
}
