package api

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"

	swagger "github.com/go-swagno/swagno-fiber/swagger"
	"github.com/saturnino-fabrica-de-software/emotion-detection-api/internal/api/docs"
	"github.com/saturnino-fabrica-de-software/emotion-detection-api/internal/api/handler"
	"github.com/saturnino-fabrica-de-software/emotion-detection-api/internal/api/middleware"
	"github.com/saturnino-fabrica-de-software/emotion-detection-api/internal/classifier"
	"github.com/saturnino-fabrica-de-software/emotion-detection-api/internal/metrics"
)

type Dependencies struct {
	Service   handler.EmotionService
	Selection classifier.Selection
	Metrics   *metrics.Collector
}

type Options struct {
	MaxBodyBytes     int
	CORSAllowOrigins string
	DocsHost         string
}

type Router struct {
	app    *fiber.App
	logger *slog.Logger
	deps   *Dependencies
	opts   Options
}

func NewRouter(logger *slog.Logger, deps *Dependencies, opts Options) *Router {
	app := fiber.New(fiber.Config{
		ErrorHandler:          middleware.ErrorHandler(logger),
		AppName:               "Emotion Detection API",
		BodyLimit:             opts.MaxBodyBytes,
		DisableStartupMessage: true,
	})

	return &Router{
		app:    app,
		logger: logger,
		deps:   deps,
		opts:   opts,
	}
}

func (r *Router) Setup() {
	// Global middlewares
	r.app.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))
	r.app.Use(middleware.Logger(r.logger))
	if r.deps.Metrics != nil {
		r.app.Use(middleware.Metrics(r.deps.Metrics))
	}
	// Recover sits inside Logger and Metrics so panics are logged and counted as 500s
	r.app.Use(middleware.Recover(r.logger))
	r.app.Use(cors.New(cors.Config{
		AllowOrigins:  r.opts.CORSAllowOrigins,
		AllowMethods:  "GET,POST,OPTIONS",
		AllowHeaders:  "Origin,Content-Type,Accept",
		ExposeHeaders: handler.HeaderEmotionSource + "," + fiber.HeaderXRequestID,
	}))

	// Swagger documentation
	sw := docs.NewSwagger(r.opts.DocsHost)
	swagger.SwaggerHandler(r.app, sw.MustToJson())

	// Health and capability endpoints
	healthHandler := handler.NewHealthHandler(r.deps.Selection.Available, r.deps.Selection.Backend())
	r.app.Get("/health", healthHandler.Health)
	r.app.Get("/ready", healthHandler.Ready)
	r.app.Get("/test", healthHandler.Test)

	// Emotion analysis
	analyzeHandler := handler.NewAnalyzeHandler(r.deps.Service, r.logger)
	r.app.Post("/analyze", analyzeHandler.Analyze)

	if r.deps.Metrics != nil {
		r.app.Get("/metrics", adaptor.HTTPHandler(r.deps.Metrics.Handler()))
	}
}

func (r *Router) App() *fiber.App {
	return r.app
}

func (r *Router) Listen(addr string) error {
	return r.app.Listen(addr)
}

// Shutdown stops accepting connections and waits up to timeout for in-flight requests
func (r *Router) Shutdown(timeout time.Duration) error {
	return r.app.ShutdownWithTimeout(timeout)
}
