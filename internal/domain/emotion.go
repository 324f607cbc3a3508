package domain

import (
	"errors"
	"fmt"
	"math"
)

// Emotion é um dos rótulos de emoção suportados pelo contrato da API
type Emotion string

const (
	EmotionAngry    Emotion = "angry"
	EmotionDisgust  Emotion = "disgust"
	EmotionFear     Emotion = "fear"
	EmotionHappy    Emotion = "happy"
	EmotionSad      Emotion = "sad"
	EmotionSurprise Emotion = "surprise"
	EmotionNeutral  Emotion = "neutral"
)

// Emotions lists every label in canonical order. Ties in Dominant are
// resolved by this order.
var Emotions = []Emotion{
	EmotionAngry,
	EmotionDisgust,
	EmotionFear,
	EmotionHappy,
	EmotionSad,
	EmotionSurprise,
	EmotionNeutral,
}

// ScoreTolerance is the allowed distance between the sum of a normalized
// score set and 1.0.
const ScoreTolerance = 1e-6

var (
	ErrUnknownEmotion    = errors.New("unknown emotion label")
	ErrInvalidScore      = errors.New("emotion score must be a non-negative finite number")
	ErrEmptyScores       = errors.New("emotion scores sum to zero")
	ErrMissingEmotion    = errors.New("emotion score set is missing a label")
	ErrScoresNotNormal   = errors.New("emotion scores do not sum to 1")
	ErrDominantNotArgmax = errors.New("dominant emotion is not the highest score")
)

// ParseEmotion resolves a label. Matching is exact: classifier adapters are
// responsible for mapping their own vocabulary first.
func ParseEmotion(s string) (Emotion, error) {
	for _, e := range Emotions {
		if string(e) == s {
			return e, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownEmotion, s)
}

// EmotionScores maps each label to its score
type EmotionScores map[Emotion]float64

// Sum returns the total of all scores.
func (s EmotionScores) Sum() float64 {
	var total float64
	for _, v := range s {
		total += v
	}
	return total
}

// Normalize returns a new set holding every label, each divided by the sum.
// Labels absent from s get 0.
func (s EmotionScores) Normalize() (EmotionScores, error) {
	var total float64
	for e, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return nil, fmt.Errorf("%w: %s=%v", ErrInvalidScore, e, v)
		}
		total += v
	}
	if total == 0 {
		return nil, ErrEmptyScores
	}

	out := make(EmotionScores, len(Emotions))
	for _, e := range Emotions {
		out[e] = s[e] / total
	}
	return out, nil
}

// Dominant returns the label with the highest score.
func (s EmotionScores) Dominant() Emotion {
	best := Emotions[0]
	for _, e := range Emotions[1:] {
		if s[e] > s[best] {
			best = e
		}
	}
	return best
}

// Region is a bounding box in source image pixels
type Region struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// PlaceholderRegion is reported when no real detection happened.
var PlaceholderRegion = Region{X: 0, Y: 0, W: 224, H: 224}

// Scale multiplies every coordinate by factor, rounding to the nearest pixel.
func (r Region) Scale(factor float64) Region {
	if factor == 1 || factor <= 0 {
		return r
	}
	scale := func(v int) int {
		return int(math.Round(float64(v) * factor))
	}
	return Region{X: scale(r.X), Y: scale(r.Y), W: scale(r.W), H: scale(r.H)}
}

// EmotionAnalysis is the per-face classification result
type EmotionAnalysis struct {
	Emotion         EmotionScores `json:"emotion"`
	DominantEmotion Emotion       `json:"dominant_emotion"`
	Region          Region        `json:"region"`
}

// Validate checks the score set invariants: all labels present, sum of 1 and
// dominant equal to the argmax.
func (a EmotionAnalysis) Validate() error {
	for _, e := range Emotions {
		v, ok := a.Emotion[e]
		if !ok {
			return fmt.Errorf("%w: %s", ErrMissingEmotion, e)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return fmt.Errorf("%w: %s=%v", ErrInvalidScore, e, v)
		}
	}
	if len(a.Emotion) != len(Emotions) {
		return fmt.Errorf("%w: %d labels", ErrUnknownEmotion, len(a.Emotion))
	}

	if sum := a.Emotion.Sum(); math.Abs(sum-1) > ScoreTolerance {
		return fmt.Errorf("%w: sum=%v", ErrScoresNotNormal, sum)
	}

	if a.Emotion[a.DominantEmotion] < a.Emotion[a.Emotion.Dominant()] {
		return fmt.Errorf("%w: %s", ErrDominantNotArgmax, a.DominantEmotion)
	}
	return nil
}
