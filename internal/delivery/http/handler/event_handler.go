package handler

import (
	"bytes"
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"traffic-recorder/internal/domain/entity"
	"traffic-recorder/internal/usecase"
)

type EventHandler struct {
	usecase usecase.IngestUsecase
	logger  *zap.Logger
}

func NewEventHandler(usecase usecase.IngestUsecase, logger *zap.Logger) *EventHandler {
	return &EventHandler{
		usecase: usecase,
		logger:  logger,
	}
}

// Ingest godoc
// @Summary Ingest lifecycle notifications
// @Description Accepts one lifecycle envelope or an array of them. Envelopes are
//
//	handled in order; the response counts what happened to each.
//
// @Tags events
// @Accept json
// @Produce json
// @Param request body entity.EventEnvelope true "Envelope or array of envelopes"
// @Success 202 {object} entity.APIResponse
// @Failure 400 {object} entity.APIResponse
// @Router /api/v1/events [post]
func (h *EventHandler) Ingest(c *fiber.Ctx) error {
	ctx := c.UserContext()

	body := bytes.TrimSpace(c.Body())
	if len(body) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(
			entity.NewErrorResponse("BAD_REQUEST", "Request body is required"),
		)
	}

	var envelopes []entity.EventEnvelope
	if body[0] == '[' {
		if err := json.Unmarshal(body, &envelopes); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(
				entity.NewErrorResponse("BAD_REQUEST", "Invalid request body: "+err.Error()),
			)
		}
	} else {
		var envelope entity.EventEnvelope
		if err := json.Unmarshal(body, &envelope); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(
				entity.NewErrorResponse("BAD_REQUEST", "Invalid request body: "+err.Error()),
			)
		}
		// a lone envelope with a bad phase is a client error, not a tally entry
		if _, err := envelope.ToEvent(); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(
				entity.NewErrorResponse("INVALID_PHASE", err.Error()),
			)
		}
		envelopes = append(envelopes, envelope)
	}

	result := h.usecase.Ingest(ctx, envelopes)

	return c.Status(fiber.StatusAccepted).JSON(entity.NewSuccessResponse(result, "Events processed"))
}
