package repositories

import (
	"context"
	"errors"

	"github.com/finder-market/backend/internal/apperror"
	"github.com/finder-market/backend/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type FundConfigRepo struct {
	pool *pgxpool.Pool
}

func NewFundConfigRepo(pool *pgxpool.Pool) *FundConfigRepo {
	return &FundConfigRepo{pool: pool}
}

// Get returns the singleton config row. A missing row yields a
// CONFIG_UNAVAILABLE error; callers fall back to models.DefaultFundConfig
// instead of failing money math.
func (r *FundConfigRepo) Get(ctx context.Context) (*models.AutonomousFundConfig, error) {
	var c models.AutonomousFundConfig
	err := r.pool.QueryRow(ctx, `
		SELECT holding_period_hours, auto_credit_enabled, minimum_rating,
		       minimum_jobs_completed, fee_percentage, updated_at
		FROM autonomous_fund_config WHERE id = true
	`).Scan(&c.HoldingPeriodHours, &c.AutoCreditEnabled, &c.MinimumRating,
		&c.MinimumJobsCompleted, &c.FeePercentage, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.New(apperror.ErrCodeConfigUnavailable, "autonomous fund config not set")
		}
		return nil, err
	}
	return &c, nil
}

// UpdateFundConfigInput carries a partial admin update; nil fields keep
// their current (or default) value.
type UpdateFundConfigInput struct {
	HoldingPeriodHours   *int     `json:"holding_period_hours,omitempty"`
	AutoCreditEnabled    *bool    `json:"auto_credit_enabled,omitempty"`
	MinimumRating        *float64 `json:"minimum_rating,omitempty"`
	MinimumJobsCompleted *int     `json:"minimum_jobs_completed,omitempty"`
	FeePercentage        *float64 `json:"fee_percentage,omitempty"`
}

func (r *FundConfigRepo) Update(ctx context.Context, in UpdateFundConfigInput) (*models.AutonomousFundConfig, error) {
	def := models.DefaultFundConfig()
	var c models.AutonomousFundConfig
	err := r.pool.QueryRow(ctx, `
		INSERT INTO autonomous_fund_config (id, holding_period_hours, auto_credit_enabled,
		                                    minimum_rating, minimum_jobs_completed, fee_percentage)
		VALUES (true, COALESCE($1, $6), COALESCE($2, $7), COALESCE($3, $8), COALESCE($4, $9), COALESCE($5, $10))
		ON CONFLICT (id) DO UPDATE SET
			holding_period_hours = COALESCE($1, autonomous_fund_config.holding_period_hours),
			auto_credit_enabled = COALESCE($2, autonomous_fund_config.auto_credit_enabled),
			minimum_rating = COALESCE($3, autonomous_fund_config.minimum_rating),
			minimum_jobs_completed = COALESCE($4, autonomous_fund_config.minimum_jobs_completed),
			fee_percentage = COALESCE($5, autonomous_fund_config.fee_percentage),
			updated_at = now()
		RETURNING holding_period_hours, auto_credit_enabled, minimum_rating,
		          minimum_jobs_completed, fee_percentage, updated_at
	`, in.HoldingPeriodHours, in.AutoCreditEnabled, in.MinimumRating, in.MinimumJobsCompleted, in.FeePercentage,
		def.HoldingPeriodHours, def.AutoCreditEnabled, def.MinimumRating, def.MinimumJobsCompleted, def.FeePercentage,
	).Scan(&c.HoldingPeriodHours, &c.AutoCreditEnabled, &c.MinimumRating,
		&c.MinimumJobsCompleted, &c.FeePercentage, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
