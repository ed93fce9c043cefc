package handler

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"traffic-recorder/internal/config"
	"traffic-recorder/internal/domain/entity"
	"traffic-recorder/internal/usecase"
)

const streamKeepAlive = 15 * time.Second

type LogHandler struct {
	usecase usecase.LogUsecase
	maxLogs int
	logger  *zap.Logger
}

func NewLogHandler(usecase usecase.LogUsecase, cfg *config.Config, logger *zap.Logger) *LogHandler {
	return &LogHandler{
		usecase: usecase,
		maxLogs: cfg.Capture.MaxLogs,
		logger:  logger,
	}
}

// GetLogs returns the captured logs, newest first
func (h *LogHandler) GetLogs(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", h.maxLogs)
	if limit <= 0 || limit > h.maxLogs {
		limit = h.maxLogs
	}

	logs, err := h.usecase.ListLogs(c.UserContext(), limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(
			entity.NewErrorResponse("INTERNAL_ERROR", err.Error()),
		)
	}

	return c.JSON(entity.NewListResponse(logs, len(logs), limit))
}

// GetLog returns one log by correlation id
func (h *LogHandler) GetLog(c *fiber.Ctx) error {
	record, err := h.usecase.GetLog(c.UserContext(), c.Params("id"))
	if err != nil {
		if errors.Is(err, usecase.ErrLogNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(
				entity.NewErrorResponse("NOT_FOUND", "Log not found"),
			)
		}
		return c.Status(fiber.StatusInternalServerError).JSON(
			entity.NewErrorResponse("INTERNAL_ERROR", err.Error()),
		)
	}

	return c.JSON(entity.NewSuccessResponse(record, "OK"))
}

// ClearLogs empties the log list
func (h *LogHandler) ClearLogs(c *fiber.Ctx) error {
	if err := h.usecase.ClearLogs(c.UserContext()); err != nil {
		h.logger.Error("Failed to clear logs", zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(
			entity.NewErrorResponse("CLEAR_FAILED", err.Error()),
		)
	}

	return c.JSON(entity.NewSuccessResponse(nil, "Logs cleared"))
}

// StreamLogs pushes the full list as a server-sent event after every change.
// The current list is sent first.
func (h *LogHandler) StreamLogs(c *fiber.Ctx) error {
	ctx, cancel := context.WithCancel(context.Background())

	snapshot, err := h.usecase.ListLogs(c.UserContext(), 0)
	if err != nil {
		cancel()
		return c.Status(fiber.StatusInternalServerError).JSON(
			entity.NewErrorResponse("INTERNAL_ERROR", err.Error()),
		)
	}

	updates, err := h.usecase.WatchLogs(ctx)
	if err != nil {
		cancel()
		return c.Status(fiber.StatusInternalServerError).JSON(
			entity.NewErrorResponse("INTERNAL_ERROR", err.Error()),
		)
	}

	clientID := uuid.NewString()
	logger := h.logger.With(zap.String("client_id", clientID))
	logger.Info("Log stream opened")

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer cancel()
		defer logger.Info("Log stream closed")

		if err := writeEvent(w, "logs", snapshot); err != nil {
			return
		}

		ticker := time.NewTicker(streamKeepAlive)
		defer ticker.Stop()

		for {
			select {
			case logs, ok := <-updates:
				if !ok {
					return
				}
				if err := writeEvent(w, "logs", logs); err != nil {
					return
				}
			case <-ticker.C:
				if _, err := fmt.Fprint(w, ": keepalive\n\n"); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					return
				}
			}
		}
	}))

	return nil
}

func writeEvent(w *bufio.Writer, name string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, data); err != nil {
		return err
	}
	return w.Flush()
}
