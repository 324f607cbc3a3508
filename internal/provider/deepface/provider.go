package deepface

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/saturnino-fabrica-de-software/emotion-detection-api/internal/domain"
	"github.com/saturnino-fabrica-de-software/emotion-detection-api/internal/imagecodec"
	"github.com/saturnino-fabrica-de-software/emotion-detection-api/internal/provider"
)

const jpegDataURLPrefix = "data:image/jpeg;base64,"

// Provider implements provider.EmotionClassifier using DeepFace API
type Provider struct {
	client *Client
}

// NewProvider creates a new DeepFace provider
func NewProvider(config Config) *Provider {
	return &Provider{
		client: NewClient(config),
	}
}

// Name identifies the backend
func (p *Provider) Name() string {
	return "deepface"
}

// Ping checks that the DeepFace server answers
func (p *Provider) Ping(ctx context.Context) error {
	return p.client.Ping(ctx)
}

// AnalyzeEmotion sends the frame to DeepFace and converts the face results
func (p *Provider) AnalyzeEmotion(ctx context.Context, frame *imagecodec.Frame) ([]domain.EmotionAnalysis, error) {
	encoded, err := frame.JPEG()
	if err != nil {
		return nil, fmt.Errorf("analyze emotion: %w", err)
	}

	resp, err := p.client.AnalyzeEmotion(ctx, jpegDataURLPrefix+base64.StdEncoding.EncodeToString(encoded))
	if err != nil {
		return nil, fmt.Errorf("analyze emotion: %w", err)
	}

	if len(resp.Results) == 0 {
		return nil, ErrNoFaceInResponse
	}

	first, err := toAnalysis(resp.Results[0])
	if err != nil {
		return nil, fmt.Errorf("face 0: %w", err)
	}

	// Only the first face decides the outcome; malformed later faces are dropped.
	analyses := []domain.EmotionAnalysis{first}
	for _, result := range resp.Results[1:] {
		if analysis, err := toAnalysis(result); err == nil {
			analyses = append(analyses, analysis)
		}
	}

	return analyses, nil
}

// toAnalysis converts DeepFace percentages into a normalized score set.
// The dominant label is recomputed from the normalized scores.
func toAnalysis(result AnalyzeResult) (domain.EmotionAnalysis, error) {
	if len(result.Emotion) == 0 {
		return domain.EmotionAnalysis{}, ErrNoEmotionScores
	}

	scores := make(domain.EmotionScores, len(result.Emotion))
	for label, value := range result.Emotion {
		emotion, err := domain.ParseEmotion(strings.ToLower(label))
		if err != nil {
			return domain.EmotionAnalysis{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
		}
		scores[emotion] = value
	}

	normalized, err := scores.Normalize()
	if err != nil {
		return domain.EmotionAnalysis{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	return domain.EmotionAnalysis{
		Emotion:         normalized,
		DominantEmotion: normalized.Dominant(),
		Region: domain.Region{
			X: max(result.Region.X, 0),
			Y: max(result.Region.Y, 0),
			W: max(result.Region.W, 0),
			H: max(result.Region.H, 0),
		},
	}, nil
}

// Ensure Provider implements the provider interfaces
var (
	_ provider.EmotionClassifier = (*Provider)(nil)
	_ provider.Prober            = (*Provider)(nil)
)
