package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/finder-market/backend/internal/config"
	"github.com/finder-market/backend/internal/db"
	"github.com/finder-market/backend/internal/events"
	apphttp "github.com/finder-market/backend/internal/http"
	"github.com/finder-market/backend/internal/http/handlers"
	"github.com/finder-market/backend/internal/repositories"
	"github.com/finder-market/backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	cfg.Validate(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, log)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	// Run migrations
	if err := db.RunMigrations(ctx, pool, "migrations", log); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	// Redis
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	// Repositories
	userRepo := repositories.NewUserRepo(pool)
	contractRepo := repositories.NewContractRepo(pool)
	submissionRepo := repositories.NewSubmissionRepo(pool)
	finderRepo := repositories.NewFinderRepo(pool)
	levelRepo := repositories.NewLevelRepo(pool)
	fundConfigRepo := repositories.NewFundConfigRepo(pool)
	auditRepo := repositories.NewAuditRepo(pool)

	// Events
	publisher := events.NewRedisPublisher(rdb, log)
	subscriber := events.NewRedisSubscriber(rdb, log)

	// Services
	strikeClient := services.NewStrikeClient(cfg.StrikeInternalURL, log)
	finderService := services.NewFinderService(finderRepo, contractRepo, levelRepo, fundConfigRepo, auditRepo, publisher, log)
	contractService := services.NewContractService(contractRepo, submissionRepo, finderRepo, fundConfigRepo, auditRepo, publisher, log)
	reviewService := services.NewReviewService(contractRepo, submissionRepo, finderRepo, fundConfigRepo, auditRepo, publisher, strikeClient, finderService, cfg.DecisionWindow(), log)
	fundService := services.NewFundService(contractRepo, submissionRepo, fundConfigRepo, auditRepo, publisher, reviewService, finderService, log)

	// Handlers
	userHandler := handlers.NewUserHandler(userRepo, log)
	contractHandler := handlers.NewContractHandler(contractService, cfg, log)
	submissionHandler := handlers.NewSubmissionHandler(reviewService, log)
	finderHandler := handlers.NewFinderHandler(finderService, log)
	adminHandler := handlers.NewAdminHandler(fundService, log)
	wsHub := handlers.NewWSHub(cfg, subscriber, log)

	// Start WS hub
	wsHub.Start(ctx)

	// Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})

	apphttp.SetupRouter(app, cfg, log, rdb, userHandler, contractHandler, submissionHandler, finderHandler, adminHandler, wsHub)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")
		cancel()
		_ = app.Shutdown()
	}()

	addr := fmt.Sprintf(":%s", cfg.APIPort)
	log.Info("starting API server", zap.String("addr", addr))
	if err := app.Listen(addr); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}
