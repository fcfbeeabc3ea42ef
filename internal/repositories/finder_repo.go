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

type FinderRepo struct {
	pool *pgxpool.Pool
}

func NewFinderRepo(pool *pgxpool.Pool) *FinderRepo {
	return &FinderRepo{pool: pool}
}

func (r *FinderRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Finder, error) {
	var f models.Finder
	err := r.pool.QueryRow(ctx, `
		SELECT user_id, available_balance, jobs_completed, rating_sum, rating_count,
		       current_level_id, updated_at
		FROM finders WHERE user_id = $1
	`, userID).Scan(&f.UserID, &f.AvailableBalance, &f.JobsCompleted, &f.RatingSum,
		&f.RatingCount, &f.CurrentLevelID, &f.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.ErrFinderNotFound
		}
		return nil, err
	}
	return &f, nil
}

// EnsureExists creates an empty finder profile on first contact.
func (r *FinderRepo) EnsureExists(ctx context.Context, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO finders (user_id) VALUES ($1)
		ON CONFLICT (user_id) DO NOTHING
	`, userID)
	return err
}

// AddRating stores the rating and folds it into the finder's aggregates in
// one transaction. The contract_id unique constraint enforces one rating
// per contract.
func (r *FinderRepo) AddRating(ctx context.Context, rating *models.Rating) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO ratings (contract_id, finder_id, client_id, rating, feedback)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, rating.ContractID, rating.FinderID, rating.ClientID, rating.Rating, rating.Feedback,
	).Scan(&rating.ID, &rating.CreatedAt)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		UPDATE finders
		SET rating_sum = rating_sum + $2, rating_count = rating_count + 1, updated_at = now()
		WHERE user_id = $1
	`, rating.FinderID, rating.Rating)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *FinderRepo) SetLevel(ctx context.Context, userID, levelID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE finders SET current_level_id = $2, updated_at = now() WHERE user_id = $1
	`, userID, levelID)
	return err
}
