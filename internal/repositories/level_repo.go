package repositories

import (
	"context"
	"errors"

	"github.com/finder-market/backend/internal/apperror"
	"github.com/finder-market/backend/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const levelColumns = `
	id, name, min_jobs_completed, min_rating, min_review_percentage,
	monthly_tokens, token_bonus_per_proposal, vip_invitations_per_month,
	sort_order, is_active, created_at`

type LevelRepo struct {
	pool *pgxpool.Pool
}

func NewLevelRepo(pool *pgxpool.Pool) *LevelRepo {
	return &LevelRepo{pool: pool}
}

func scanLevel(row pgx.Row) (*models.FinderLevel, error) {
	var l models.FinderLevel
	err := row.Scan(&l.ID, &l.Name, &l.MinJobsCompleted, &l.MinRating, &l.MinReviewPercentage,
		&l.MonthlyTokens, &l.TokenBonusPerProposal, &l.VIPInvitationsPerMonth,
		&l.SortOrder, &l.IsActive, &l.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.New(apperror.ErrCodeNotFound, "level not found")
		}
		return nil, err
	}
	return &l, nil
}

func (r *LevelRepo) List(ctx context.Context) ([]models.FinderLevel, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT`+levelColumns+` FROM finder_levels ORDER BY sort_order ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var levels []models.FinderLevel
	for rows.Next() {
		l, err := scanLevel(rows)
		if err != nil {
			return nil, err
		}
		levels = append(levels, *l)
	}
	return levels, rows.Err()
}

func (r *LevelRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.FinderLevel, error) {
	return scanLevel(r.pool.QueryRow(ctx,
		`SELECT`+levelColumns+` FROM finder_levels WHERE id = $1`, id))
}
