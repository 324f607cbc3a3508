package docs

import (
	"github.com/go-swagno/swagno"
	"github.com/go-swagno/swagno/components/endpoint"
	"github.com/go-swagno/swagno/components/http/response"
	"github.com/go-swagno/swagno/components/mime"
)

// AnalyzeRequest represents the body of an analysis request
type AnalyzeRequest struct {
	Img string `json:"img" example:"data:image/jpeg;base64,/9j/4AAQSkZJRgABAQ..."`
}

// EmotionScores holds one normalized score per label
type EmotionScores struct {
	Angry    float64 `json:"angry" example:"0.02"`
	Disgust  float64 `json:"disgust" example:"0.01"`
	Fear     float64 `json:"fear" example:"0.04"`
	Happy    float64 `json:"happy" example:"0.81"`
	Sad      float64 `json:"sad" example:"0.03"`
	Surprise float64 `json:"surprise" example:"0.05"`
	Neutral  float64 `json:"neutral" example:"0.04"`
}

// Region is the face bounding box in source image pixels
type Region struct {
	X int `json:"x" example:"0"`
	Y int `json:"y" example:"0"`
	W int `json:"w" example:"224"`
	H int `json:"h" example:"224"`
}

// EmotionResult is a single classification result
type EmotionResult struct {
	Emotion         EmotionScores `json:"emotion"`
	DominantEmotion string        `json:"dominant_emotion" example:"happy"`
	Region          Region        `json:"region"`
}

// AnalyzeResults holds the first (and only) result under key "0"
type AnalyzeResults struct {
	First EmotionResult `json:"0"`
}

// AnalyzeResponse represents the response of a successful analysis
type AnalyzeResponse struct {
	Results AnalyzeResults `json:"results"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status            string `json:"status" example:"healthy"`
	DeepFaceAvailable bool   `json:"deepface_available" example:"true"`
	Service           string `json:"service" example:"emotion-detection-api"`
	Classifier        string `json:"classifier" example:"deepface"`
}

// ReadyResponse represents the readiness response
type ReadyResponse struct {
	Status string `json:"status" example:"ready"`
}

// CapabilitiesResponse represents the /test response
type CapabilitiesResponse struct {
	Message           string   `json:"message" example:"DeepFace emotion detection service is running"`
	DeepFaceAvailable bool     `json:"deepface_available" example:"true"`
	Endpoints         []string `json:"endpoints" example:"/health,/analyze,/test"`
}

// ErrorDetail represents a standard error payload
type ErrorDetail struct {
	Code    string `json:"code" example:"INVALID_IMAGE"`
	Message string `json:"message" example:"Invalid image data"`
}

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

func errorResponse(code, message, status, description string) response.Response {
	return response.New(ErrorResponse{Error: ErrorDetail{Code: code, Message: message}}, status, description)
}

// NewSwagger creates and configures the Swagger documentation
func NewSwagger(host string) *swagno.Swagger {
	sw := swagno.New(swagno.Config{
		Title:       "Emotion Detection API",
		Version:     "v1.0.0",
		Description: "Classifies the facial emotion of a base64 encoded image. Falls back to synthetic results when no classifier is reachable.",
		Host:        host,
		Path:        "/",
	})

	endpoints := []*endpoint.EndPoint{
		// POST /analyze - Analyze emotion
		endpoint.New(
			endpoint.POST,
			"/analyze",
			endpoint.WithTags("Emotion"),
			endpoint.WithSummary("Analyze the emotion of a face image"),
			endpoint.WithDescription("Accepts raw base64 or a data URL in the img field. The X-Emotion-Source response header is classifier or synthetic."),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithBody(AnalyzeRequest{}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(AnalyzeResponse{}, "200", "Emotion analyzed"),
			}),
			endpoint.WithErrors([]response.Response{
				errorResponse("MISSING_IMAGE", "No image data provided", "400", "Bad Request"),
				errorResponse("INVALID_IMAGE", "Invalid image data", "400", "Bad Request"),
				errorResponse("BAD_REQUEST", "Invalid request", "400", "Bad Request"),
				errorResponse("HTTP_ERROR", "Request Entity Too Large", "413", "Payload Too Large"),
				errorResponse("INTERNAL_ERROR", "Internal server error", "500", "Internal Server Error"),
			}),
		),

		// GET /health - Health check
		endpoint.New(
			endpoint.GET,
			"/health",
			endpoint.WithTags("Health"),
			endpoint.WithSummary("Health check"),
			endpoint.WithDescription("Reports whether a real classifier answered the startup probe"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(HealthResponse{}, "200", "Service is healthy"),
			}),
		),

		// GET /ready - Readiness check
		endpoint.New(
			endpoint.GET,
			"/ready",
			endpoint.WithTags("Health"),
			endpoint.WithSummary("Readiness check"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(ReadyResponse{}, "200", "Service is ready"),
			}),
		),

		// GET /test - Capabilities
		endpoint.New(
			endpoint.GET,
			"/test",
			endpoint.WithTags("Health"),
			endpoint.WithSummary("Service capabilities"),
			endpoint.WithDescription("Lists the public endpoints"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(CapabilitiesResponse{}, "200", "Service is running"),
			}),
		),

		// GET /metrics - Prometheus metrics
		endpoint.New(
			endpoint.GET,
			"/metrics",
			endpoint.WithTags("Observability"),
			endpoint.WithSummary("Prometheus metrics"),
			endpoint.WithProduce([]mime.MIME{mime.MIME("text/plain")}),
		),
	}

	sw.AddEndpoints(endpoints)

	return sw
}
