package services

import (
	"context"

	"github.com/finder-market/backend/internal/apperror"
	"github.com/finder-market/backend/internal/earnings"
	"github.com/finder-market/backend/internal/events"
	"github.com/finder-market/backend/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type FinderService struct {
	finders    FinderStore
	contracts  ContractStore
	levels     LevelStore
	fundConfig FundConfigStore
	audit      AuditStore
	publisher  events.Publisher
	log        *zap.Logger
}

func NewFinderService(
	finders FinderStore,
	contracts ContractStore,
	levels LevelStore,
	fundConfig FundConfigStore,
	audit AuditStore,
	publisher events.Publisher,
	log *zap.Logger,
) *FinderService {
	return &FinderService{
		finders:    finders,
		contracts:  contracts,
		levels:     levels,
		fundConfig: fundConfig,
		audit:      audit,
		publisher:  publisher,
		log:        log,
	}
}

// GetBalance returns the finder's withdrawable balance plus the net
// earnings of completed contracts still inside the holding period. The
// pending figure is derived on read, never stored.
func (s *FinderService) GetBalance(ctx context.Context, finderID uuid.UUID) (*models.FinderBalance, error) {
	finder, err := s.finders.GetByUserID(ctx, finderID)
	if err != nil {
		return nil, err
	}

	pending := int64(0)
	uncredited, err := s.contracts.ListCompletedUncredited(ctx, finderID)
	if err != nil {
		return nil, err
	}
	for _, c := range uncredited {
		if c.EscrowStatus != models.EscrowStatusHeld {
			continue
		}
		pending += earnings.Calculate(c.Amount, c.FeeBPS).NetEarnings
	}

	return &models.FinderBalance{
		AvailableBalance: finder.AvailableBalance,
		PendingBalance:   pending,
		JobsCompleted:    finder.JobsCompleted,
		AverageRating:    finder.AverageRating(),
	}, nil
}

// GetLevel returns the finder's current level, resolving it on the fly if
// no level has been assigned yet.
func (s *FinderService) GetLevel(ctx context.Context, finderID uuid.UUID) (*models.FinderLevel, error) {
	finder, err := s.finders.GetByUserID(ctx, finderID)
	if err != nil {
		return nil, err
	}
	if finder.CurrentLevelID != nil {
		return s.levels.GetByID(ctx, *finder.CurrentLevelID)
	}

	levels, err := s.levels.List(ctx)
	if err != nil {
		return nil, err
	}
	level := models.EvaluateLevel(finder.JobsCompleted, finder.AverageRating(), levels)
	if level == nil {
		return nil, apperror.New(apperror.ErrCodeNotFound, "no active levels configured")
	}
	return level, nil
}

func (s *FinderService) ListLevels(ctx context.Context) ([]models.FinderLevel, error) {
	return s.levels.List(ctx)
}

// RecalculateLevel re-derives the finder's level from their stats. Moving
// up additionally requires the fund config minimums; demotions and the
// first assignment always apply.
func (s *FinderService) RecalculateLevel(ctx context.Context, finderID uuid.UUID) error {
	finder, err := s.finders.GetByUserID(ctx, finderID)
	if err != nil {
		return err
	}

	levels, err := s.levels.List(ctx)
	if err != nil {
		return err
	}
	target := models.EvaluateLevel(finder.JobsCompleted, finder.AverageRating(), levels)
	if target == nil {
		return nil
	}
	if finder.CurrentLevelID != nil && *finder.CurrentLevelID == target.ID {
		return nil
	}

	if finder.CurrentLevelID != nil {
		current, err := s.levels.GetByID(ctx, *finder.CurrentLevelID)
		if err != nil {
			return err
		}
		if target.SortOrder > current.SortOrder && !s.meetsAdvancementMinimums(ctx, finder) {
			return nil
		}
	}

	if err := s.finders.SetLevel(ctx, finderID, target.ID); err != nil {
		return err
	}

	auditErr := s.audit.Log(ctx, models.AuditLog{
		ActorType:  "system",
		Action:     "level.changed",
		EntityType: "finder",
		EntityID:   &finderID,
		Meta: map[string]any{
			"level_id":   target.ID.String(),
			"level_name": target.Name,
		},
	})
	if auditErr != nil {
		s.log.Error("failed to write audit log",
			zap.String("finder_id", finderID.String()), zap.Error(auditErr))
	}

	pubErr := s.publisher.Publish(ctx, events.StreamContracts, events.Event{
		Type: events.EventLevelChanged,
		Payload: map[string]any{
			"finder_id":  finderID.String(),
			"level_id":   target.ID.String(),
			"level_name": target.Name,
		},
	})
	if pubErr != nil {
		s.log.Error("failed to publish level event",
			zap.String("finder_id", finderID.String()), zap.Error(pubErr))
	}

	return nil
}

func (s *FinderService) meetsAdvancementMinimums(ctx context.Context, finder *models.Finder) bool {
	cfg, err := s.fundConfig.Get(ctx)
	if err != nil {
		if !apperror.IsConfigUnavailable(err) {
			s.log.Error("failed to load fund config", zap.Error(err))
		}
		cfg = models.DefaultFundConfig()
	}
	return finder.JobsCompleted >= cfg.MinimumJobsCompleted &&
		finder.AverageRating() >= cfg.MinimumRating
}
