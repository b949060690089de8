package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/daveenci-ai/leadchat-backend/internal/repository"
)

// ListSummaries returns persisted chat summaries, newest first.
func ListSummaries(repo repository.SummaryRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit := c.QueryInt("limit", 50)
		offset := c.QueryInt("offset", 0)

		summaries, err := repo.List(c.Context(), limit, offset)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		return c.JSON(fiber.Map{
			"summaries": summaries,
		})
	}
}

// GetSummary returns one persisted summary by id.
func GetSummary(repo repository.SummaryRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			// a malformed id cannot name a summary; don't let it reach
			// the uuid column
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Summary not found",
			})
		}

		summary, err := repo.Get(c.Context(), id)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		if summary == nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Summary not found",
			})
		}

		return c.JSON(summary)
	}
}
