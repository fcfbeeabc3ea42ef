package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/finder-market/backend/internal/config"
	"github.com/finder-market/backend/internal/db"
	"github.com/finder-market/backend/internal/events"
	"github.com/finder-market/backend/internal/repositories"
	"github.com/finder-market/backend/internal/services"
	"go.uber.org/zap"
)

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, log)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	// Repos
	contractRepo := repositories.NewContractRepo(pool)
	submissionRepo := repositories.NewSubmissionRepo(pool)
	finderRepo := repositories.NewFinderRepo(pool)
	levelRepo := repositories.NewLevelRepo(pool)
	fundConfigRepo := repositories.NewFundConfigRepo(pool)
	auditRepo := repositories.NewAuditRepo(pool)

	// Services
	publisher := events.NewRedisPublisher(rdb, log)
	strikeClient := services.NewStrikeClient(cfg.StrikeInternalURL, log)
	finderService := services.NewFinderService(finderRepo, contractRepo, levelRepo, fundConfigRepo, auditRepo, publisher, log)
	reviewService := services.NewReviewService(contractRepo, submissionRepo, finderRepo, fundConfigRepo, auditRepo, publisher, strikeClient, finderService, cfg.DecisionWindow(), log)
	fundService := services.NewFundService(contractRepo, submissionRepo, fundConfigRepo, auditRepo, publisher, reviewService, finderService, log)

	log.Info("fund worker started", zap.Duration("sweep_interval", cfg.SweepInterval))

	sweepTicker := time.NewTicker(cfg.SweepInterval)
	defer sweepTicker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// First sweep right away instead of waiting a full interval.
	runSweep(ctx, fundService, log)

	for {
		select {
		case <-sweepTicker.C:
			runSweep(ctx, fundService, log)
		case <-sigCh:
			log.Info("shutting down fund worker")
			cancel()
			return
		case <-ctx.Done():
			return
		}
	}
}

func runSweep(ctx context.Context, fundService *services.FundService, log *zap.Logger) {
	report, err := fundService.RunSweep(ctx)
	if err != nil {
		log.Error("sweep failed", zap.Error(err))
		return
	}
	if report.AutoAccepted > 0 || report.Credited > 0 {
		log.Info("sweep results",
			zap.Int("auto_accepted", report.AutoAccepted),
			zap.Int("credited", report.Credited))
	}
}
