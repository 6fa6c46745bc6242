package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/saturnino-fabrica-de-software/identika/internal/api"
	"github.com/saturnino-fabrica-de-software/identika/internal/config"
	"github.com/saturnino-fabrica-de-software/identika/internal/database"
	"github.com/saturnino-fabrica-de-software/identika/internal/identify"
	"github.com/saturnino-fabrica-de-software/identika/internal/repository"
	"github.com/saturnino-fabrica-de-software/identika/internal/training"
	"github.com/saturnino-fabrica-de-software/identika/internal/vision/factory"
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
	logger := config.NewLogger(cfg.Environment)
	slog.SetDefault(logger)

	logger.Info("starting Identika API",
		slog.String("environment", cfg.Environment),
		slog.Int("port", cfg.Port),
		slog.String("vision_provider", cfg.VisionProvider),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Database pool
	pool, err := database.NewPool(ctx, database.DefaultPoolConfig(cfg.DatabaseURL))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	// Repositories
	productRepo := repository.NewProductRepository(pool)
	validationRepo := repository.NewValidationRepository(pool)
	thresholdRepo := repository.NewThresholdConfigRepository(pool)

	// Threshold configuration store and controller
	configStore := training.NewConfigStore(thresholdRepo, logger)
	controller := training.NewController(validationRepo, thresholdRepo, configStore, logger)

	// Vision providers
	analyzer, err := factory.NewAnalyzer(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create vision analyzer: %w", err)
	}
	embedder := factory.NewEmbeddingGenerator(cfg)

	// Identification service
	identifyService := identify.NewService(productRepo, configStore, analyzer, embedder, logger)

	// Setup router
	router := api.NewRouter(logger, &api.Dependencies{
		IdentifyService: identifyService,
		ConfigStore:     configStore,
		Controller:      controller,
		RetrainInterval: cfg.RetrainInterval,
		DB:              pool,
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

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("shutting down server...")
	if err := router.Shutdown(); err != nil {
		logger.Error("shutdown error", slog.Any("error", err))
	}

	<-shutdownCtx.Done()
	logger.Info("server stopped")

	return nil
}
