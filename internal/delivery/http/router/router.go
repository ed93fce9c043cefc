package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"traffic-recorder/internal/config"
	"traffic-recorder/internal/delivery/http/handler"
	"traffic-recorder/internal/domain/entity"
)

type Router struct {
	app              *fiber.App
	config           *config.Config
	healthHandler    *handler.HealthHandler
	eventHandler     *handler.EventHandler
	logHandler       *handler.LogHandler
	recordingHandler *handler.RecordingHandler
}

func NewRouter(
	cfg *config.Config,
	healthHandler *handler.HealthHandler,
	eventHandler *handler.EventHandler,
	logHandler *handler.LogHandler,
	recordingHandler *handler.RecordingHandler,
) *Router {
	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		ErrorHandler:          customErrorHandler,
		DisableStartupMessage: !cfg.IsDevelopment(),
	})

	return &Router{
		app:              app,
		config:           cfg,
		healthHandler:    healthHandler,
		eventHandler:     eventHandler,
		logHandler:       logHandler,
		recordingHandler: recordingHandler,
	}
}

func (r *Router) Setup() *fiber.App {
	// Middleware
	r.app.Use(recover.New())
	r.app.Use(requestid.New())
	r.app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	if r.config.IsDevelopment() {
		r.app.Use(logger.New(logger.Config{
			Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
		}))
	}

	// Health check route
	r.app.Get("/health", r.healthHandler.Health)

	if r.config.Metrics.Enabled {
		r.app.Get(r.config.Metrics.Path, adaptor.HTTPHandler(promhttp.Handler()))
	}

	// API v1 routes
	api := r.app.Group("/api/v1")
	{
		api.Post("/events", r.eventHandler.Ingest)

		// Log routes
		logs := api.Group("/logs")
		{
			logs.Get("", r.logHandler.GetLogs)
			logs.Delete("", r.logHandler.ClearLogs)
			logs.Get("/stream", r.logHandler.StreamLogs)
			logs.Get("/:id", r.logHandler.GetLog)
		}

		api.Get("/recording", r.recordingHandler.GetRecording)
		api.Put("/recording", r.recordingHandler.SetRecording)
		api.Get("/indicator", r.recordingHandler.GetIndicator)
	}

	return r.app
}

func (r *Router) GetApp() *fiber.App {
	return r.app
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(entity.NewErrorResponse(errorCode(code), err.Error()))
}

func errorCode(status int) string {
	switch status {
	case fiber.StatusNotFound:
		return "NOT_FOUND"
	case fiber.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case fiber.StatusBadRequest:
		return "BAD_REQUEST"
	default:
		return "INTERNAL_ERROR"
	}
}
