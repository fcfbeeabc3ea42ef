package services

import (
	"context"

	"github.com/finder-market/backend/internal/apperror"
	"github.com/finder-market/backend/internal/earnings"
	"github.com/finder-market/backend/internal/events"
	"github.com/finder-market/backend/internal/models"
	"github.com/finder-market/backend/internal/repositories"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const sweepBatchSize = 200

// AutoAccepter is the slice of the review workflow the fund worker drives.
type AutoAccepter interface {
	AutoAccept(ctx context.Context, sub models.OrderSubmission, cfg *models.AutonomousFundConfig) (bool, error)
}

// FundService is the autonomous fund: it force-accepts submissions the
// client ignored past the decision deadline, then credits finders whose
// holding period has elapsed. Both phases are conditional updates, so
// overlapping sweeps cannot double-pay.
type FundService struct {
	contracts   ContractStore
	submissions SubmissionStore
	fundConfig  FundConfigStore
	audit       AuditStore
	publisher   events.Publisher
	review      AutoAccepter
	levels      LevelRecalculator
	log         *zap.Logger
}

func NewFundService(
	contracts ContractStore,
	submissions SubmissionStore,
	fundConfig FundConfigStore,
	audit AuditStore,
	publisher events.Publisher,
	review AutoAccepter,
	levels LevelRecalculator,
	log *zap.Logger,
) *FundService {
	return &FundService{
		contracts:   contracts,
		submissions: submissions,
		fundConfig:  fundConfig,
		audit:       audit,
		publisher:   publisher,
		review:      review,
		levels:      levels,
		log:         log,
	}
}

type SweepReport struct {
	AutoAccepted int `json:"auto_accepted"`
	Credited     int `json:"credited"`
}

// RunSweep executes one full sweep cycle. The config is re-read every
// cycle so admin changes take effect without a restart.
func (s *FundService) RunSweep(ctx context.Context) (*SweepReport, error) {
	cfg, err := s.fundConfig.Get(ctx)
	if err != nil {
		if !apperror.IsConfigUnavailable(err) {
			return nil, err
		}
		s.log.Warn("fund config not set, sweeping with defaults")
		cfg = models.DefaultFundConfig()
	}

	report := &SweepReport{}

	report.AutoAccepted, err = s.releaseOverdue(ctx, cfg)
	if err != nil {
		return report, err
	}

	if cfg.AutoCreditEnabled {
		report.Credited, err = s.creditReleased(ctx)
		if err != nil {
			return report, err
		}
	} else {
		s.log.Info("auto credit disabled, skipping credit phase")
	}

	s.log.Info("sweep finished",
		zap.Int("auto_accepted", report.AutoAccepted),
		zap.Int("credited", report.Credited))
	return report, nil
}

// ProcessNow is the admin's manual trigger; it runs the same sweep the
// ticker does.
func (s *FundService) ProcessNow(ctx context.Context, adminID uuid.UUID) (*SweepReport, error) {
	report, err := s.RunSweep(ctx)
	if report != nil {
		auditErr := s.audit.Log(ctx, models.AuditLog{
			ActorUserID: &adminID,
			ActorType:   "admin",
			Action:      "fund.sweep",
			EntityType:  "fund",
			Meta:        report,
		})
		if auditErr != nil {
			s.log.Error("failed to write audit log", zap.Error(auditErr))
		}
	}
	return report, err
}

// releaseOverdue is phase one: silence is acceptance. A failure on one
// submission never stalls the rest of the batch.
func (s *FundService) releaseOverdue(ctx context.Context, cfg *models.AutonomousFundConfig) (int, error) {
	subs, err := s.submissions.ListOverdueDecisions(ctx, sweepBatchSize)
	if err != nil {
		return 0, err
	}

	accepted := 0
	for _, sub := range subs {
		ok, err := s.review.AutoAccept(ctx, sub, cfg)
		if err != nil {
			s.log.Error("auto accept failed",
				zap.String("submission_id", sub.ID.String()), zap.Error(err))
			continue
		}
		if ok {
			accepted++
		}
	}
	return accepted, nil
}

// creditReleased is phase two: pay out contracts whose holding period has
// elapsed. The credit itself is a conditional transaction, so a contract
// picked up by two overlapping sweeps is paid exactly once.
func (s *FundService) creditReleased(ctx context.Context) (int, error) {
	contracts, err := s.contracts.ListCreditable(ctx, sweepBatchSize)
	if err != nil {
		return 0, err
	}

	credited := 0
	for _, c := range contracts {
		split := earnings.Calculate(c.Amount, c.FeeBPS)
		ok, err := s.contracts.Credit(ctx, c.ID, split.PlatformFee, split.NetEarnings)
		if err != nil {
			s.log.Error("credit failed",
				zap.String("contract_id", c.ID.String()), zap.Error(err))
			continue
		}
		if !ok {
			// Lost to a concurrent sweep or a late dispute.
			continue
		}
		credited++

		contractID := c.ID
		auditErr := s.audit.Log(ctx, models.AuditLog{
			ActorType:  "system",
			Action:     "funds.credited",
			EntityType: "contract",
			EntityID:   &contractID,
			Meta: map[string]any{
				"platform_fee": split.PlatformFee,
				"net_earnings": split.NetEarnings,
			},
		})
		if auditErr != nil {
			s.log.Error("failed to write audit log",
				zap.String("contract_id", c.ID.String()), zap.Error(auditErr))
		}

		pubErr := s.publisher.Publish(ctx, events.StreamContracts, events.Event{
			Type: events.EventFundsCredited,
			Payload: map[string]any{
				"contract_id":  c.ID.String(),
				"finder_id":    c.FinderID.String(),
				"net_earnings": split.NetEarnings,
			},
		})
		if pubErr != nil {
			s.log.Error("failed to publish credit event",
				zap.String("contract_id", c.ID.String()), zap.Error(pubErr))
		}

		if err := s.levels.RecalculateLevel(ctx, c.FinderID); err != nil {
			s.log.Error("level recalculation failed",
				zap.String("finder_id", c.FinderID.String()), zap.Error(err))
		}
	}
	return credited, nil
}

// GetConfig returns the effective fund config, falling back to defaults
// when the admin has not set one.
func (s *FundService) GetConfig(ctx context.Context) (*models.AutonomousFundConfig, error) {
	cfg, err := s.fundConfig.Get(ctx)
	if err != nil {
		if apperror.IsConfigUnavailable(err) {
			return models.DefaultFundConfig(), nil
		}
		return nil, err
	}
	return cfg, nil
}

// UpdateConfig applies a partial admin update and audits it.
func (s *FundService) UpdateConfig(ctx context.Context, adminID uuid.UUID, in repositories.UpdateFundConfigInput) (*models.AutonomousFundConfig, error) {
	if in.FeePercentage != nil && (*in.FeePercentage < 0 || *in.FeePercentage > 100) {
		return nil, apperror.New(apperror.ErrCodeValidation, "fee percentage must be between 0 and 100")
	}
	if in.HoldingPeriodHours != nil && *in.HoldingPeriodHours < 0 {
		return nil, apperror.New(apperror.ErrCodeValidation, "holding period cannot be negative")
	}
	if in.MinimumRating != nil && (*in.MinimumRating < 0 || *in.MinimumRating > 5) {
		return nil, apperror.New(apperror.ErrCodeValidation, "minimum rating must be between 0 and 5")
	}
	if in.MinimumJobsCompleted != nil && *in.MinimumJobsCompleted < 0 {
		return nil, apperror.New(apperror.ErrCodeValidation, "minimum jobs completed cannot be negative")
	}

	cfg, err := s.fundConfig.Update(ctx, in)
	if err != nil {
		return nil, err
	}

	auditErr := s.audit.Log(ctx, models.AuditLog{
		ActorUserID: &adminID,
		ActorType:   "admin",
		Action:      "fund_config.updated",
		EntityType:  "fund",
		Meta:        in,
	})
	if auditErr != nil {
		s.log.Error("failed to write audit log", zap.Error(auditErr))
	}

	return cfg, nil
}
