package provider

import (
	"context"

	"github.com/saturnino-fabrica-de-software/emotion-detection-api/internal/domain"
	"github.com/saturnino-fabrica-de-software/emotion-detection-api/internal/imagecodec"
)

// EmotionClassifier define a interface para provedores de classificação de emoções
type EmotionClassifier interface {
	// Name identifica o backend ("deepface", "rekognition", "synthetic")
	Name() string

	// AnalyzeEmotion classifica as emoções das faces encontradas no frame.
	// Retorna um resultado por face; qualquer erro é uma falha do classificador
	AnalyzeEmotion(ctx context.Context, frame *imagecodec.Frame) ([]domain.EmotionAnalysis, error)
}

// Prober is implemented by classifiers that can check their backend before
// the service starts taking traffic
type Prober interface {
	Ping(ctx context.Context) error
}
