package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/daveenci-ai/leadchat-backend/internal/engine"
)

// PostMessage is the only mutating entry point during an active
// conversation. The session is created on its first message; the widget
// may omit session_id and keep the generated one from the response.
func PostMessage(orch *engine.Orchestrator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req struct {
			SessionID string `json:"session_id"`
			Message   string `json:"message"`
		}

		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid request body",
			})
		}

		if req.Message == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Message is required",
			})
		}

		if req.SessionID == "" {
			req.SessionID = uuid.New().String()
		}

		resp, stage, err := orch.PostMessage(c.Context(), req.SessionID, req.Message)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		return c.JSON(fiber.Map{
			"session_id": req.SessionID,
			"response":   resp,
			"stage":      stage,
		})
	}
}

// FinalizeSession closes a session and returns its summary. When the
// save fails the summary is still included so no work is lost.
func FinalizeSession(orch *engine.Orchestrator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionID := c.Params("id")

		summary, err := orch.FinalizeSession(c.Context(), sessionID)
		if err != nil {
			switch {
			case errors.Is(err, engine.ErrSessionNotFound):
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
					"error": "Session not found",
				})
			case errors.Is(err, engine.ErrPersistence):
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
					"error":   err.Error(),
					"summary": summary,
				})
			default:
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error": err.Error(),
				})
			}
		}

		return c.JSON(summary)
	}
}

// GetSessionContext returns a read-only context snapshot for the
// dashboard.
func GetSessionContext(orch *engine.Orchestrator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionID := c.Params("id")

		snapshot, err := orch.GetContext(sessionID)
		if err != nil {
			if errors.Is(err, engine.ErrSessionNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
					"error": "Session not found",
				})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		return c.JSON(snapshot)
	}
}
