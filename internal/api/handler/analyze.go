package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/emotion-detection-api/internal/domain"
	"github.com/saturnino-fabrica-de-software/emotion-detection-api/internal/service"
)

// HeaderEmotionSource carries service.Source on successful analyses
const HeaderEmotionSource = "X-Emotion-Source"

// EmotionService interface for the service
type EmotionService interface {
	Analyze(ctx context.Context, payload string) (*service.Result, error)
}

// AnalyzeHandler handles emotion analysis requests
type AnalyzeHandler struct {
	service EmotionService
	logger  *slog.Logger
}

// NewAnalyzeHandler creates a new AnalyzeHandler instance
func NewAnalyzeHandler(service EmotionService, logger *slog.Logger) *AnalyzeHandler {
	return &AnalyzeHandler{
		service: service,
		logger:  logger,
	}
}

// AnalyzeResponse is keyed by result index; only "0" is ever populated
type AnalyzeResponse struct {
	Results map[string]domain.EmotionAnalysis `json:"results"`
}

// Analyze handles POST /analyze
func (h *AnalyzeHandler) Analyze(c *fiber.Ctx) error {
	payload, err := parseImagePayload(c.Body())
	if err != nil {
		return err
	}

	result, err := h.service.Analyze(c.UserContext(), payload)
	if err != nil {
		return err
	}

	h.logger.Debug("emotion analyzed",
		"source", result.Source,
		"fallback", result.Fallback,
		"dominant_emotion", result.Analysis.DominantEmotion,
		"request_id", c.GetRespHeader(fiber.HeaderXRequestID),
	)

	c.Set(HeaderEmotionSource, string(result.Source))
	return c.JSON(AnalyzeResponse{
		Results: map[string]domain.EmotionAnalysis{"0": result.Analysis},
	})
}

// parseImagePayload reads {"img": "..."} from the raw body whatever the
// Content-Type. An empty body, a null body and a null img all count as a
// missing image.
func parseImagePayload(body []byte) (string, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return "", domain.ErrMissingImage
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return "", domain.ErrBadRequest.WithError(err)
	}

	raw, ok := fields["img"]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return "", domain.ErrMissingImage
	}

	var img string
	if err := json.Unmarshal(raw, &img); err != nil {
		return "", domain.ErrBadRequest.WithError(err)
	}

	return img, nil
}
