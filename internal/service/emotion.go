package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/saturnino-fabrica-de-software/emotion-detection-api/internal/domain"
	"github.com/saturnino-fabrica-de-software/emotion-detection-api/internal/imagecodec"
	"github.com/saturnino-fabrica-de-software/emotion-detection-api/internal/provider"
)

// Source tells where a result came from. It is sent as the X-Emotion-Source header.
type Source string

const (
	SourceClassifier Source = "classifier"
	SourceSynthetic  Source = "synthetic"
)

// Recorder receives analysis metrics
type Recorder interface {
	ObserveAnalysis(source string, fallback bool, dominant domain.Emotion, elapsed time.Duration)
	IncClassifierFault(classifier string)
}

type Result struct {
	Analysis domain.EmotionAnalysis
	Source   Source
	// Fallback is set when the classifier failed and a synthetic result replaced it
	Fallback bool
}

type EmotionService struct {
	classifier provider.EmotionClassifier
	available  bool
	fallback   provider.EmotionClassifier
	decoder    *imagecodec.Decoder
	recorder   Recorder
	logger     *slog.Logger
}

// NewEmotionService wires the startup classifier. When available is false the
// classifier is expected to be the synthetic generator itself.
func NewEmotionService(
	classifier provider.EmotionClassifier,
	available bool,
	fallback provider.EmotionClassifier,
	decoder *imagecodec.Decoder,
	logger *slog.Logger,
) *EmotionService {
	return &EmotionService{
		classifier: classifier,
		available:  available,
		fallback:   fallback,
		decoder:    decoder,
		logger:     logger,
	}
}

func (s *EmotionService) WithRecorder(recorder Recorder) *EmotionService {
	s.recorder = recorder
	return s
}

// Analyze decodes the payload and classifies it. Decode problems are
// returned as domain.ErrInvalidImage; classifier faults never surface.
func (s *EmotionService) Analyze(ctx context.Context, payload string) (*Result, error) {
	frame, err := s.decoder.Load(payload)
	if err != nil {
		if isDecodeError(err) {
			return nil, domain.ErrInvalidImage.WithError(err)
		}
		return nil, fmt.Errorf("load image: %w", err)
	}

	s.logger.DebugContext(ctx, "image decoded",
		"format", frame.Format,
		"width", frame.Width(),
		"height", frame.Height(),
		"scale", frame.Scale,
	)

	start := time.Now()

	if !s.available {
		result, err := s.synthesize(ctx, false)
		if err != nil {
			return nil, err
		}
		s.observe(result, start)
		return result, nil
	}

	analysis, err := s.classify(ctx, frame)
	if err != nil {
		s.logger.Error("classifier fault, using synthetic result",
			"classifier", s.classifier.Name(),
			"error", err,
		)
		if s.recorder != nil {
			s.recorder.IncClassifierFault(s.classifier.Name())
		}

		result, err := s.synthesize(ctx, true)
		if err != nil {
			return nil, err
		}
		s.observe(result, start)
		return result, nil
	}

	result := &Result{Analysis: analysis, Source: SourceClassifier}
	s.observe(result, start)
	return result, nil
}

// classify runs the real classifier and keeps the first face only
func (s *EmotionService) classify(ctx context.Context, frame *imagecodec.Frame) (domain.EmotionAnalysis, error) {
	analyses, err := s.classifier.AnalyzeEmotion(ctx, frame)
	if err != nil {
		return domain.EmotionAnalysis{}, err
	}
	if len(analyses) == 0 {
		return domain.EmotionAnalysis{}, errors.New("classifier returned no results")
	}

	analysis := analyses[0]
	if err := analysis.Validate(); err != nil {
		return domain.EmotionAnalysis{}, fmt.Errorf("classifier result: %w", err)
	}

	analysis.Region = analysis.Region.Scale(frame.Scale)
	return analysis, nil
}

func (s *EmotionService) synthesize(ctx context.Context, fallback bool) (*Result, error) {
	analyses, err := s.fallback.AnalyzeEmotion(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("synthetic result: %w", err)
	}
	if len(analyses) == 0 {
		return nil, errors.New("synthetic result: empty")
	}

	analysis := analyses[0]
	if err := analysis.Validate(); err != nil {
		s.logger.Warn("synthetic result breaks score invariants", "error", err)
	}

	return &Result{Analysis: analysis, Source: SourceSynthetic, Fallback: fallback}, nil
}

func (s *EmotionService) observe(result *Result, start time.Time) {
	if s.recorder == nil {
		return
	}
	s.recorder.ObserveAnalysis(string(result.Source), result.Fallback, result.Analysis.DominantEmotion, time.Since(start))
}

func isDecodeError(err error) bool {
	return errors.Is(err, imagecodec.ErrEmptyPayload) ||
		errors.Is(err, imagecodec.ErrInvalidBase64) ||
		errors.Is(err, imagecodec.ErrUndecodableImage)
}
