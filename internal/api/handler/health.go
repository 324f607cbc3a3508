package handler

import (
	"github.com/gofiber/fiber/v2"
)

const serviceName = "emotion-detection-api"

// HealthHandler reports the startup classifier state. The values never change
// after construction.
type HealthHandler struct {
	available  bool
	classifier string
}

func NewHealthHandler(available bool, classifier string) *HealthHandler {
	return &HealthHandler{
		available:  available,
		classifier: classifier,
	}
}

type HealthResponse struct {
	Status            string `json:"status"`
	DeepFaceAvailable bool   `json:"deepface_available"`
	Service           string `json:"service"`
	Classifier        string `json:"classifier"`
}

type ReadyResponse struct {
	Status string `json:"status"`
}

type CapabilitiesResponse struct {
	Message           string   `json:"message"`
	DeepFaceAvailable bool     `json:"deepface_available"`
	Endpoints         []string `json:"endpoints"`
}

func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{
		Status:            "healthy",
		DeepFaceAvailable: h.available,
		Service:           serviceName,
		Classifier:        h.classifier,
	})
}

func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	return c.JSON(ReadyResponse{
		Status: "ready",
	})
}

// Test lists the public endpoints
func (h *HealthHandler) Test(c *fiber.Ctx) error {
	return c.JSON(CapabilitiesResponse{
		Message:           "DeepFace emotion detection service is running",
		DeepFaceAvailable: h.available,
		Endpoints:         []string{"/health", "/analyze", "/test"},
	})
}
