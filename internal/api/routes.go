package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/daveenci-ai/leadchat-backend/internal/api/handlers"
	"github.com/daveenci-ai/leadchat-backend/internal/api/middleware"
	"github.com/daveenci-ai/leadchat-backend/internal/engine"
	"github.com/daveenci-ai/leadchat-backend/internal/repository"
)

// SetupRoutes configures all API routes
func SetupRoutes(app *fiber.App, orch *engine.Orchestrator, summaries repository.SummaryRepository, adminSecret string) {
	api := app.Group("/api/v1")

	// Conversation engine
	chat := api.Group("/chat")
	chat.Post("/messages", handlers.PostMessage(orch))
	chat.Post("/sessions/:id/finalize", handlers.FinalizeSession(orch))
	chat.Get("/sessions/:id/context", handlers.GetSessionContext(orch))

	// Admin dashboard
	admin := api.Group("/admin", middleware.AdminRequired(adminSecret))
	admin.Get("/summaries", handlers.ListSummaries(summaries))
	admin.Get("/summaries/:id", handlers.GetSummary(summaries))

	// Health check
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"service": "leadchat-backend",
		})
	})
}
