package handler

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestHealthHandler_Health(t *testing.T) {
	tests := []struct {
		name       string
		available  bool
		classifier string
	}{
		{"deepface reachable", true, "deepface"},
		{"synthetic only", false, "synthetic"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			handler := NewHealthHandler(tt.available, tt.classifier)
			app.Get("/health", handler.Health)

			req := httptest.NewRequest("GET", "/health", nil)
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("Failed to test: %v", err)
			}

			if resp.StatusCode != 200 {
				t.Errorf("Status = %d, want 200", resp.StatusCode)
			}

			body, _ := io.ReadAll(resp.Body)
			var result HealthResponse
			if err := json.Unmarshal(body, &result); err != nil {
				t.Fatalf("Failed to parse response: %v", err)
			}

			if result.Status != "healthy" {
				t.Errorf("Status = %s, want healthy", result.Status)
			}
			if result.Service != "emotion-detection-api" {
				t.Errorf("Service = %s, want emotion-detection-api", result.Service)
			}
			if result.DeepFaceAvailable != tt.available {
				t.Errorf("DeepFaceAvailable = %v, want %v", result.DeepFaceAvailable, tt.available)
			}
			if result.Classifier != tt.classifier {
				t.Errorf("Classifier = %s, want %s", result.Classifier, tt.classifier)
			}
		})
	}
}

func TestHealthHandler_HealthIsStable(t *testing.T) {
	app := fiber.New()
	app.Get("/health", NewHealthHandler(true, "deepface").Health)

	var first string
	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
		if err != nil {
			t.Fatalf("Failed to test: %v", err)
		}
		body, _ := io.ReadAll(resp.Body)
		if i == 0 {
			first = string(body)
			continue
		}
		if string(body) != first {
			t.Errorf("response %d = %s, want %s", i, body, first)
		}
	}
}

func TestHealthHandler_Ready(t *testing.T) {
	app := fiber.New()
	handler := NewHealthHandler(false, "synthetic")
	app.Get("/ready", handler.Ready)

	req := httptest.NewRequest("GET", "/ready", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to test: %v", err)
	}

	if resp.StatusCode != 200 {
		t.Errorf("Status = %d, want 200", resp.StatusCode)
	}

	body, _ := io.ReadAll(resp.Body)
	var result ReadyResponse
	if err := json.Unmarshal(body, &result); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}

	if result.Status != "ready" {
		t.Errorf("Status = %s, want ready", result.Status)
	}
}

func TestHealthHandler_Test(t *testing.T) {
	app := fiber.New()
	app.Get("/test", NewHealthHandler(true, "deepface").Test)

	resp, err := app.Test(httptest.NewRequest("GET", "/test", nil))
	if err != nil {
		t.Fatalf("Failed to test: %v", err)
	}

	body, _ := io.ReadAll(resp.Body)
	var result CapabilitiesResponse
	if err := json.Unmarshal(body, &result); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}

	if result.Message != "DeepFace emotion detection service is running" {
		t.Errorf("Message = %q", result.Message)
	}
	if !result.DeepFaceAvailable {
		t.Error("DeepFaceAvailable = false, want true")
	}
	want := []string{"/health", "/analyze", "/test"}
	if len(result.Endpoints) != len(want) {
		t.Fatalf("Endpoints = %v, want %v", result.Endpoints, want)
	}
	for i := range want {
		if result.Endpoints[i] != want[i] {
			t.Errorf("Endpoints[%d] = %s, want %s", i, result.Endpoints[i], want[i])
		}
	}
}
