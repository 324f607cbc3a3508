package rekognition

import (
	"context"
	"fmt"
	"math"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"

	"github.com/saturnino-fabrica-de-software/emotion-detection-api/internal/domain"
	"github.com/saturnino-fabrica-de-software/emotion-detection-api/internal/imagecodec"
	"github.com/saturnino-fabrica-de-software/emotion-detection-api/internal/provider"
)

const (
	// maxImageSize is the maximum image size supported by AWS Rekognition (5MB)
	maxImageSize = 5 * 1024 * 1024
	// minImageSize is the minimum image size for valid processing
	minImageSize = 100
)

// emotionLabels maps Rekognition emotion types onto the canonical label set.
// CALM and CONFUSED both count towards neutral; UNKNOWN is dropped.
var emotionLabels = map[types.EmotionName]domain.Emotion{
	types.EmotionNameAngry:     domain.EmotionAngry,
	types.EmotionNameDisgusted: domain.EmotionDisgust,
	types.EmotionNameFear:      domain.EmotionFear,
	types.EmotionNameHappy:     domain.EmotionHappy,
	types.EmotionNameSad:       domain.EmotionSad,
	types.EmotionNameSurprised: domain.EmotionSurprise,
	types.EmotionNameCalm:      domain.EmotionNeutral,
	types.EmotionNameConfused:  domain.EmotionNeutral,
}

// Provider implements provider.EmotionClassifier using AWS Rekognition
type Provider struct {
	client *Client
}

// Ensure Provider implements the provider interfaces at compile time
var (
	_ provider.EmotionClassifier = (*Provider)(nil)
	_ provider.Prober            = (*Provider)(nil)
)

// NewProvider creates a new Rekognition provider using the default AWS credential chain
func NewProvider(ctx context.Context, cfg Config) (*Provider, error) {
	client, err := NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create rekognition client: %w", err)
	}

	return &Provider{client: client}, nil
}

// Name identifies the backend
func (p *Provider) Name() string {
	return "rekognition"
}

// Ping verifies that AWS credentials can be resolved
func (p *Provider) Ping(ctx context.Context) error {
	return p.client.CheckCredentials(ctx)
}

// validateImage checks if image data is valid for Rekognition processing
func validateImage(image []byte) error {
	if len(image) == 0 {
		return ErrInvalidImage
	}
	if len(image) < minImageSize {
		return fmt.Errorf("%w: image too small (%d bytes, minimum %d)", ErrInvalidImage, len(image), minImageSize)
	}
	if len(image) > maxImageSize {
		return fmt.Errorf("%w: image too large (%d bytes, maximum %d)", ErrInvalidImage, len(image), maxImageSize)
	}
	return nil
}

// AnalyzeEmotion detects faces with their emotion attributes.
// A frame without faces is reported as ErrNoFaceDetected.
func (p *Provider) AnalyzeEmotion(ctx context.Context, frame *imagecodec.Frame) ([]domain.EmotionAnalysis, error) {
	image, err := frame.JPEG()
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}

	if err := validateImage(image); err != nil {
		return nil, err
	}

	output, err := p.client.DetectFaces(ctx, &rekognition.DetectFacesInput{
		Image: &types.Image{
			Bytes: image,
		},
		Attributes: []types.Attribute{types.AttributeEmotions},
	})
	if err != nil {
		return nil, err
	}

	if len(output.FaceDetails) == 0 {
		return nil, ErrNoFaceDetected
	}

	width, height := frame.Width(), frame.Height()

	first, err := toAnalysis(output.FaceDetails[0], width, height)
	if err != nil {
		return nil, fmt.Errorf("face 0: %w", err)
	}

	// Later faces without usable scores are skipped.
	analyses := []domain.EmotionAnalysis{first}
	for _, detail := range output.FaceDetails[1:] {
		if analysis, err := toAnalysis(detail, width, height); err == nil {
			analyses = append(analyses, analysis)
		}
	}

	return analyses, nil
}

// toAnalysis converts one FaceDetail. Bounding box ratios are scaled by the
// frame dimensions.
func toAnalysis(detail types.FaceDetail, width, height int) (domain.EmotionAnalysis, error) {
	scores := make(domain.EmotionScores, len(domain.Emotions))
	for _, emotion := range detail.Emotions {
		label, ok := emotionLabels[emotion.Type]
		if !ok {
			continue
		}
		scores[label] += float64(aws.ToFloat32(emotion.Confidence))
	}

	normalized, err := scores.Normalize()
	if err != nil {
		return domain.EmotionAnalysis{}, fmt.Errorf("%w: %v", ErrNoEmotionScores, err)
	}

	return domain.EmotionAnalysis{
		Emotion:         normalized,
		DominantEmotion: normalized.Dominant(),
		Region:          toRegion(detail.BoundingBox, width, height),
	}, nil
}

func toRegion(box *types.BoundingBox, width, height int) domain.Region {
	if box == nil {
		return domain.Region{}
	}

	scale := func(ratio *float32, size int) int {
		return max(int(math.Round(float64(aws.ToFloat32(ratio))*float64(size))), 0)
	}

	return domain.Region{
		X: scale(box.Left, width),
		Y: scale(box.Top, height),
		W: scale(box.Width, width),
		H: scale(box.Height, height),
	}
}
