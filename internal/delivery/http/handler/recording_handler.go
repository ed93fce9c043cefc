package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"traffic-recorder/internal/domain/entity"
	"traffic-recorder/internal/usecase"
)

type RecordingHandler struct {
	usecase usecase.RecordingUsecase
	logger  *zap.Logger
}

func NewRecordingHandler(usecase usecase.RecordingUsecase, logger *zap.Logger) *RecordingHandler {
	return &RecordingHandler{
		usecase: usecase,
		logger:  logger,
	}
}

type RecordingRequest struct {
	Recording *bool `json:"recording"`
}

type RecordingResponse struct {
	Recording bool `json:"recording"`
}

// GetRecording godoc
// @Summary Read the recording flag
// @Tags recording
// @Produce json
// @Success 200 {object} entity.APIResponse
// @Router /api/v1/recording [get]
func (h *RecordingHandler) GetRecording(c *fiber.Ctx) error {
	recording, err := h.usecase.IsRecording(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(
			entity.NewErrorResponse("INTERNAL_ERROR", err.Error()),
		)
	}

	return c.JSON(entity.NewSuccessResponse(RecordingResponse{Recording: recording}, "OK"))
}

// SetRecording godoc
// @Summary Turn recording on or off
// @Tags recording
// @Accept json
// @Produce json
// @Param request body RecordingRequest true "Recording flag"
// @Success 200 {object} entity.APIResponse
// @Failure 400 {object} entity.APIResponse
// @Router /api/v1/recording [put]
func (h *RecordingHandler) SetRecording(c *fiber.Ctx) error {
	var req RecordingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(
			entity.NewErrorResponse("BAD_REQUEST", "Invalid request body: "+err.Error()),
		)
	}
	if req.Recording == nil {
		return c.Status(fiber.StatusBadRequest).JSON(
			entity.NewErrorResponse("BAD_REQUEST", "recording is required"),
		)
	}

	if err := h.usecase.SetRecording(c.UserContext(), *req.Recording); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(
			entity.NewErrorResponse("INTERNAL_ERROR", err.Error()),
		)
	}

	message := "Recording stopped"
	if *req.Recording {
		message = "Recording started"
	}
	return c.JSON(entity.NewSuccessResponse(RecordingResponse{Recording: *req.Recording}, message))
}

// GetIndicator returns the recording badge
func (h *RecordingHandler) GetIndicator(c *fiber.Ctx) error {
	return c.JSON(entity.NewSuccessResponse(h.usecase.Indicator(), "OK"))
}
