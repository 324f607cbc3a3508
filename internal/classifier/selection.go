package classifier

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/saturnino-fabrica-de-software/emotion-detection-api/internal/config"
	"github.com/saturnino-fabrica-de-software/emotion-detection-api/internal/provider"
	"github.com/saturnino-fabrica-de-software/emotion-detection-api/internal/provider/deepface"
	"github.com/saturnino-fabrica-de-software/emotion-detection-api/internal/provider/rekognition"
	"github.com/saturnino-fabrica-de-software/emotion-detection-api/internal/provider/synthetic"
)

// ProviderType defines supported emotion classifier types
type ProviderType string

const (
	// ProviderTypeDeepFace is the DeepFace provider (local server)
	ProviderTypeDeepFace ProviderType = "deepface"
	// ProviderTypeRekognition is the AWS Rekognition provider (cloud)
	ProviderTypeRekognition ProviderType = "rekognition"
	// ProviderTypeSynthetic always generates random results
	ProviderTypeSynthetic ProviderType = "synthetic"
)

const defaultProbeTimeout = 5 * time.Second

// Selection is the outcome of the startup probe. It never changes afterwards.
type Selection struct {
	// Classifier serves /analyze; it is the synthetic generator when Available is false
	Classifier provider.EmotionClassifier
	// Available reports whether a real classifier answered the probe
	Available bool
}

// Backend names the selected classifier
func (s Selection) Backend() string {
	return s.Classifier.Name()
}

// Select builds the configured classifier and probes it once.
// A failed probe degrades to the synthetic generator; only an unknown
// provider type is an error.
//
// Environment variables:
//   - CLASSIFIER_PROVIDER: "deepface", "rekognition" or "synthetic" (default: "deepface")
//   - DEEPFACE_URL: DeepFace API URL (default: "http://localhost:5005")
//   - DEEPFACE_PROBE_TIMEOUT: time budget of the startup probe (default: 5s)
//   - AWS_REGION: AWS region for Rekognition (default: "us-east-1")
//   - AWS_ACCESS_KEY_ID: AWS credentials (via AWS SDK credential chain)
//   - AWS_SECRET_ACCESS_KEY: AWS credentials (via AWS SDK credential chain)
func Select(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Selection, error) {
	fallback := Selection{Classifier: synthetic.New()}

	var (
		classifier provider.EmotionClassifier
		err        error
	)

	switch ProviderType(cfg.ClassifierProvider) {
	case ProviderTypeDeepFace, "":
		classifier = createDeepFaceProvider(cfg)

	case ProviderTypeRekognition:
		classifier, err = createRekognitionProvider(ctx, cfg)
		if err != nil {
			logger.Warn("classifier unavailable, using synthetic results",
				"classifier", ProviderTypeRekognition,
				"error", err,
			)
			return fallback, nil
		}

	case ProviderTypeSynthetic:
		logger.Info("synthetic classifier selected")
		return fallback, nil

	default:
		return Selection{}, fmt.Errorf("unknown classifier provider: %s (supported: %s, %s, %s)",
			cfg.ClassifierProvider, ProviderTypeDeepFace, ProviderTypeRekognition, ProviderTypeSynthetic)
	}

	if prober, ok := classifier.(provider.Prober); ok {
		timeout := cfg.DeepFaceProbeTimeout
		if timeout <= 0 {
			timeout = defaultProbeTimeout
		}

		probeCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		if err := prober.Ping(probeCtx); err != nil {
			logger.Warn("classifier unavailable, using synthetic results",
				"classifier", classifier.Name(),
				"error", err,
			)
			return fallback, nil
		}
	}

	logger.Info("classifier available", "classifier", classifier.Name())

	return Selection{Classifier: classifier, Available: true}, nil
}

// createRekognitionProvider creates an AWS Rekognition provider instance
func createRekognitionProvider(ctx context.Context, cfg *config.Config) (*rekognition.Provider, error) {
	rekogConfig := rekognition.DefaultConfig()
	if cfg.AWSRegion != "" {
		rekogConfig.Region = cfg.AWSRegion
	}

	prov, err := rekognition.NewProvider(ctx, rekogConfig)
	if err != nil {
		return nil, fmt.Errorf("create rekognition provider: %w", err)
	}

	return prov, nil
}

// createDeepFaceProvider creates a DeepFace provider instance
func createDeepFaceProvider(cfg *config.Config) *deepface.Provider {
	deepfaceConfig := deepface.DefaultConfig()

	if cfg.DeepFaceURL != "" {
		deepfaceConfig.BaseURL = cfg.DeepFaceURL
	}
	if cfg.DeepFaceTimeout > 0 {
		deepfaceConfig.Timeout = cfg.DeepFaceTimeout
	}
	if cfg.DeepFaceDetector != "" {
		deepfaceConfig.Detector = cfg.DeepFaceDetector
	}
	deepfaceConfig.RetryCount = cfg.DeepFaceRetryCount

	return deepface.NewProvider(deepfaceConfig)
}
