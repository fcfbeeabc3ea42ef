package http

import (
	"time"

	"github.com/finder-market/backend/internal/config"
	"github.com/finder-market/backend/internal/http/handlers"
	"github.com/finder-market/backend/internal/middleware"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func SetupRouter(
	app *fiber.App,
	cfg *config.Config,
	log *zap.Logger,
	rdb *redis.Client,
	userHandler *handlers.UserHandler,
	contractHandler *handlers.ContractHandler,
	submissionHandler *handlers.SubmissionHandler,
	finderHandler *handlers.FinderHandler,
	adminHandler *handlers.AdminHandler,
	wsHub *handlers.WSHub,
) {
	// Global middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
	}))
	app.Use(middleware.RequestIDMiddleware())
	app.Use(middleware.LoggerMiddleware(log))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api/v1")

	api.Use(middleware.RateLimitMiddleware(rdb, 100, time.Minute))

	// Protected endpoints
	protected := api.Group("", middleware.AuthMiddleware(cfg, log))

	// User
	protected.Get("/me", userHandler.GetMe)
	protected.Post("/me/ping", userHandler.Ping)

	// Contracts
	protected.Post("/contracts", contractHandler.CreateContract)
	protected.Get("/contracts", contractHandler.ListContracts)
	protected.Get("/contracts/:id", contractHandler.GetContract)
	protected.Post("/contracts/:id/fund", contractHandler.FundEscrow)
	protected.Post("/contracts/:id/dispute", contractHandler.OpenDispute)
	protected.Get("/contracts/:id/events", contractHandler.GetContractEvents)
	protected.Post("/contracts/:id/submissions", submissionHandler.SubmitWork)

	// Submission review
	protected.Post("/submissions/:id/accept", submissionHandler.AcceptSubmission)
	protected.Post("/submissions/:id/reject", submissionHandler.RejectSubmission)

	// Finder
	protected.Get("/finders/me/balance", finderHandler.GetBalance)
	protected.Get("/finders/me/level", finderHandler.GetLevel)
	protected.Get("/levels", finderHandler.ListLevels)

	// Admin
	admin := protected.Group("/admin", middleware.AdminMiddleware(cfg))
	admin.Get("/fund-config", adminHandler.GetFundConfig)
	admin.Put("/fund-config", adminHandler.UpdateFundConfig)
	admin.Post("/fund/process-now", adminHandler.ProcessNow)

	// WebSocket
	app.Use("/ws", handlers.WSUpgradeMiddleware())
	app.Get("/ws", websocket.New(wsHub.HandleWS))
}
