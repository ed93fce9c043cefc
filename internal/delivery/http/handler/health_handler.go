package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"traffic-recorder/internal/capture"
	"traffic-recorder/internal/config"
	"traffic-recorder/internal/domain/entity"
)

const Version = "1.0.0"

type HealthHandler struct {
	driver  string
	queue   *capture.Queue
	tracker *capture.Tracker
}

func NewHealthHandler(cfg *config.Config, queue *capture.Queue, tracker *capture.Tracker) *HealthHandler {
	driver := cfg.Store.Driver
	if driver == "" {
		driver = config.StoreDriverMemory
	}
	return &HealthHandler{
		driver:  driver,
		queue:   queue,
		tracker: tracker,
	}
}

type HealthResponse struct {
	Status          string    `json:"status"`
	Timestamp       time.Time `json:"timestamp"`
	Version         string    `json:"version"`
	Store           string    `json:"store"`
	QueueDepth      int       `json:"queue_depth"`
	TrackedRequests int       `json:"tracked_requests"`
}

// Health godoc
// @Summary Health check
// @Description Check if the service is healthy
// @Tags health
// @Accept json
// @Produce json
// @Success 200 {object} entity.APIResponse
// @Router /health [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.JSON(entity.NewSuccessResponse(HealthResponse{
		Status:          "healthy",
		Timestamp:       time.Now(),
		Version:         Version,
		Store:           h.driver,
		QueueDepth:      h.queue.Len(),
		TrackedRequests: h.tracker.Len(),
	}, "Service is healthy"))
}
