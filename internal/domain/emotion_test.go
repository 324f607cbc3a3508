package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEmotion(t *testing.T) {
	for _, e := range Emotions {
		got, err := ParseEmotion(string(e))
		require.NoError(t, err)
		assert.Equal(t, e, got)
	}

	_, err := ParseEmotion("Happy")
	assert.ErrorIs(t, err, ErrUnknownEmotion)

	_, err = ParseEmotion("calm")
	assert.ErrorIs(t, err, ErrUnknownEmotion)
}

func TestEmotionScores_Normalize(t *testing.T) {
	tests := []struct {
		name    string
		scores  EmotionScores
		wantErr error
		check   func(t *testing.T, got EmotionScores)
	}{
		{
			name: "percentages are scaled to unit sum",
			scores: EmotionScores{
				EmotionAngry: 10, EmotionDisgust: 0, EmotionFear: 5,
				EmotionHappy: 70, EmotionSad: 5, EmotionSurprise: 5, EmotionNeutral: 5,
			},
			check: func(t *testing.T, got EmotionScores) {
				assert.InDelta(t, 0.7, got[EmotionHappy], 1e-9)
				assert.InDelta(t, 0.1, got[EmotionAngry], 1e-9)
			},
		},
		{
			name:   "missing labels are filled with zero",
			scores: EmotionScores{EmotionSad: 2},
			check: func(t *testing.T, got EmotionScores) {
				assert.Len(t, got, len(Emotions))
				assert.InDelta(t, 1.0, got[EmotionSad], 1e-9)
				assert.Zero(t, got[EmotionNeutral])
			},
		},
		{
			name:    "zero sum",
			scores:  EmotionScores{EmotionSad: 0},
			wantErr: ErrEmptyScores,
		},
		{
			name:    "negative score",
			scores:  EmotionScores{EmotionSad: 1, EmotionHappy: -0.1},
			wantErr: ErrInvalidScore,
		},
		{
			name:    "nan score",
			scores:  EmotionScores{EmotionSad: math.NaN()},
			wantErr: ErrInvalidScore,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.scores.Normalize()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, 1.0, got.Sum(), ScoreTolerance)
			if tt.check != nil {
				tt.check(t, got)
			}
		})
	}
}

func TestEmotionScores_Dominant(t *testing.T) {
	scores := EmotionScores{
		EmotionAngry: 0.1, EmotionDisgust: 0.05, EmotionFear: 0.05,
		EmotionHappy: 0.1, EmotionSad: 0.5, EmotionSurprise: 0.1, EmotionNeutral: 0.1,
	}
	assert.Equal(t, EmotionSad, scores.Dominant())

	// ties go to the first label in canonical order
	tied := EmotionScores{EmotionFear: 0.5, EmotionNeutral: 0.5}
	assert.Equal(t, EmotionFear, tied.Dominant())
}

func TestRegion_Scale(t *testing.T) {
	r := Region{X: 10, Y: 20, W: 100, H: 50}

	assert.Equal(t, r, r.Scale(1))
	assert.Equal(t, r, r.Scale(0))
	assert.Equal(t, Region{X: 25, Y: 50, W: 250, H: 125}, r.Scale(2.5))
}

func TestEmotionAnalysis_Validate(t *testing.T) {
	valid := func() EmotionAnalysis {
		return EmotionAnalysis{
			Emotion: EmotionScores{
				EmotionAngry: 0.05, EmotionDisgust: 0.05, EmotionFear: 0.05,
				EmotionHappy: 0.6, EmotionSad: 0.1, EmotionSurprise: 0.05, EmotionNeutral: 0.1,
			},
			DominantEmotion: EmotionHappy,
			Region:          PlaceholderRegion,
		}
	}

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	t.Run("missing label", func(t *testing.T) {
		a := valid()
		delete(a.Emotion, EmotionFear)
		a.Emotion[EmotionHappy] += 0.05
		assert.ErrorIs(t, a.Validate(), ErrMissingEmotion)
	})

	t.Run("extra label", func(t *testing.T) {
		a := valid()
		a.Emotion["contempt"] = 0
		assert.ErrorIs(t, a.Validate(), ErrUnknownEmotion)
	})

	t.Run("not normalized", func(t *testing.T) {
		a := valid()
		a.Emotion[EmotionHappy] = 60
		assert.ErrorIs(t, a.Validate(), ErrScoresNotNormal)
	})

	t.Run("dominant is not argmax", func(t *testing.T) {
		a := valid()
		a.DominantEmotion = EmotionSad
		assert.ErrorIs(t, a.Validate(), ErrDominantNotArgmax)
	})

	t.Run("empty dominant", func(t *testing.T) {
		a := valid()
		a.DominantEmotion = ""
		assert.ErrorIs(t, a.Validate(), ErrDominantNotArgmax)
	})
}
