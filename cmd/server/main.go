package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"

	"github.com/daveenci-ai/leadchat-backend/internal/api"
	"github.com/daveenci-ai/leadchat-backend/internal/config"
	"github.com/daveenci-ai/leadchat-backend/internal/database"
	"github.com/daveenci-ai/leadchat-backend/internal/engine"
	"github.com/daveenci-ai/leadchat-backend/internal/providers"
	"github.com/daveenci-ai/leadchat-backend/internal/providers/openai"
	"github.com/daveenci-ai/leadchat-backend/internal/providers/scripted"
	"github.com/daveenci-ai/leadchat-backend/internal/repository/postgres"
)

func main() {
	rollback := flag.Bool("rollback", false, "roll back the most recent database migration and exit")
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}

	if *rollback {
		if err := database.RollbackMigration(cfg.Database); err != nil {
			log.WithError(err).Fatal("Failed to roll back migration")
		}
		log.Info("Rolled back last migration")
		return
	}

	// Connect to database
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	// Run migrations
	if err := database.RunMigrations(cfg.Database); err != nil {
		log.WithError(err).Fatal("Failed to run migrations")
	}

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "LeadChat Backend",
		ErrorHandler: customErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     getOrigins(cfg),
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, OPTIONS",
		AllowCredentials: true,
	}))

	// Generation backend
	registry := providers.NewRegistry()
	registry.Register("scripted", scripted.NewProvider(0.9))
	if cfg.LLM.APIKey != "" {
		openaiProvider, err := openai.NewProvider(cfg.LLM)
		if err != nil {
			log.WithError(err).Fatal("Failed to initialize OpenAI provider")
		}
		registry.Register("openai", openaiProvider)
	}

	provider := registry.Get(cfg.LLM.Provider)
	if provider == nil {
		log.WithField("provider", cfg.LLM.Provider).Warn("Configured provider unavailable, using scripted backend")
		provider = registry.Get("scripted")
	}

	// Engine wiring
	store := engine.NewContextStore()
	summaryRepo := postgres.NewSummaryRepository(db.DB)
	generator := engine.NewGenerator(provider, cfg.LLM, cfg.Engine.BookingLink, log)
	qualifier := engine.NewQualifier(engine.DefaultWeights)
	orchestrator := engine.NewOrchestrator(store, engine.NewExtractor(), generator, qualifier, summaryRepo, log)

	// Abandonment sweep
	go func() {
		ticker := time.NewTicker(cfg.Engine.SweepInterval())
		defer ticker.Stop()
		for range ticker.C {
			orchestrator.SweepAbandoned(context.Background(), cfg.Engine.InactivityTimeout())
		}
	}()

	// Setup routes
	api.SetupRoutes(app, orchestrator, summaryRepo, cfg.Admin.JWTSecret)

	if cfg.Admin.JWTSecret == "" {
		log.Warn("LEADCHAT_JWT_SECRET is not set; admin endpoints are disabled")
	}

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.WithField("addr", addr).Info("LeadChat Backend starting")
	if err := app.Listen(addr); err != nil {
		log.WithError(err).Fatal("Failed to start server")
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}

func getOrigins(cfg *config.Config) string {
	if cfg.Server.CORSOrigins != "" {
		return cfg.Server.CORSOrigins
	}
	return "https://daveenci.ai,http://localhost:3000,http://localhost:5173"
}
