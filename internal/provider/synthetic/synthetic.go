package synthetic

import (
	"context"
	"math/rand/v2"

	"github.com/saturnino-fabrica-de-software/emotion-detection-api/internal/domain"
	"github.com/saturnino-fabrica-de-software/emotion-detection-api/internal/imagecodec"
	"github.com/saturnino-fabrica-de-software/emotion-detection-api/internal/provider"
)

// Score ranges used before renormalization. The dominant floor sits above the
// background ceiling, so the chosen label stays the argmax after dividing by
// the sum.
const (
	minBackground = 0.01
	maxBackground = 0.15
	minDominant   = 0.6
	maxDominant   = 0.95
)

// Provider implementa provider.EmotionClassifier gerando resultados aleatórios plausíveis
type Provider struct {
	float64 func() float64
	intN    func(int) int
}

// New cria um gerador usando a fonte global de math/rand/v2, segura para uso concorrente
func New() *Provider {
	return &Provider{
		float64: rand.Float64,
		intN:    rand.IntN,
	}
}

// NewWithRand cria um gerador determinístico. r não é seguro para uso concorrente
func NewWithRand(r *rand.Rand) *Provider {
	return &Provider{
		float64: r.Float64,
		intN:    r.IntN,
	}
}

// Name identifies the backend
func (p *Provider) Name() string {
	return "synthetic"
}

// AnalyzeEmotion ignores the frame and returns one generated result
func (p *Provider) AnalyzeEmotion(ctx context.Context, frame *imagecodec.Frame) ([]domain.EmotionAnalysis, error) {
	return []domain.EmotionAnalysis{p.Generate()}, nil
}

// Generate draws a background score for every label, redraws one random
// label as dominant and divides everything by the total.
func (p *Provider) Generate() domain.EmotionAnalysis {
	scores := make(domain.EmotionScores, len(domain.Emotions))
	for _, e := range domain.Emotions {
		scores[e] = p.uniform(minBackground, maxBackground)
	}

	dominant := domain.Emotions[p.intN(len(domain.Emotions))]
	scores[dominant] = p.uniform(minDominant, maxDominant)

	total := scores.Sum()
	for e, v := range scores {
		scores[e] = v / total
	}

	return domain.EmotionAnalysis{
		Emotion:         scores,
		DominantEmotion: dominant,
		Region:          domain.PlaceholderRegion,
	}
}

func (p *Provider) uniform(lo, hi float64) float64 {
	return lo + (hi-lo)*p.float64()
}

var _ provider.EmotionClassifier = (*Provider)(nil)
