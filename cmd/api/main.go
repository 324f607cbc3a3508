package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/saturnino-fabrica-de-software/emotion-detection-api/internal/api"
	"github.com/saturnino-fabrica-de-software/emotion-detection-api/internal/classifier"
	"github.com/saturnino-fabrica-de-software/emotion-detection-api/internal/config"
	"github.com/saturnino-fabrica-de-software/emotion-detection-api/internal/imagecodec"
	"github.com/saturnino-fabrica-de-software/emotion-detection-api/internal/metrics"
	"github.com/saturnino-fabrica-de-software/emotion-detection-api/internal/provider/synthetic"
	"github.com/saturnino-fabrica-de-software/emotion-detection-api/internal/service"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// .env is optional; real environment variables win
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Environment)
	slog.SetDefault(logger)

	logger.Info("starting emotion detection API",
		slog.String("environment", cfg.Environment),
		slog.Int("port", cfg.Port),
		slog.String("classifier", cfg.ClassifierProvider),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Probe the classifier once; the result is fixed for the process lifetime
	selection, err := classifier.Select(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to select classifier: %w", err)
	}

	collector := metrics.NewCollector(metrics.WithRuntimeCollectors())
	collector.SetClassifierAvailable(selection.Available)

	emotionService := service.NewEmotionService(
		selection.Classifier,
		selection.Available,
		synthetic.New(),
		imagecodec.NewDecoder(cfg.MaxImageDimension),
		logger,
	).WithRecorder(collector)

	// Setup router
	router := api.NewRouter(logger, &api.Dependencies{
		Service:   emotionService,
		Selection: selection,
		Metrics:   collector,
	}, api.Options{
		MaxBodyBytes:     cfg.MaxBodyBytes,
		CORSAllowOrigins: cfg.CORSAllowOrigins,
		DocsHost:         fmt.Sprintf("localhost:%d", cfg.Port),
	})
	router.Setup()

	// Start server in goroutine
	errChan := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		logger.Info("server listening",
			slog.String("addr", addr),
			slog.Bool("deepface_available", selection.Available),
			slog.String("classifier", selection.Backend()),
		)
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
	if err := router.Shutdown(shutdownTimeout); err != nil {
		logger.Error("shutdown error", slog.Any("error", err))
	}

	logger.Info("server stopped")

	return nil
}
