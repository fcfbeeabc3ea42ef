package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/finder-market/backend/internal/apperror"
	"github.com/finder-market/backend/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const submissionColumns = `
	id, contract_id, finder_id, submission_text, attachment_paths, status,
	client_feedback, submitted_at, reviewed_at, decision_due_at, release_due_at`

type SubmissionRepo struct {
	pool *pgxpool.Pool
}

func NewSubmissionRepo(pool *pgxpool.Pool) *SubmissionRepo {
	return &SubmissionRepo{pool: pool}
}

func scanSubmission(row pgx.Row) (*models.OrderSubmission, error) {
	var s models.OrderSubmission
	err := row.Scan(&s.ID, &s.ContractID, &s.FinderID, &s.SubmissionText, &s.AttachmentPaths,
		&s.Status, &s.ClientFeedback, &s.SubmittedAt, &s.ReviewedAt, &s.DecisionDueAt, &s.ReleaseDueAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.ErrSubmissionNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *SubmissionRepo) Create(ctx context.Context, s *models.OrderSubmission) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO order_submissions (contract_id, finder_id, submission_text, attachment_paths, status, decision_due_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, submitted_at
	`, s.ContractID, s.FinderID, s.SubmissionText, s.AttachmentPaths, s.Status, s.DecisionDueAt,
	).Scan(&s.ID, &s.SubmittedAt)
}

func (r *SubmissionRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.OrderSubmission, error) {
	return scanSubmission(r.pool.QueryRow(ctx,
		`SELECT`+submissionColumns+` FROM order_submissions WHERE id = $1`, id))
}

func (r *SubmissionRepo) ListByContract(ctx context.Context, contractID uuid.UUID) ([]models.OrderSubmission, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT`+submissionColumns+`
		FROM order_submissions WHERE contract_id = $1
		ORDER BY submitted_at DESC
	`, contractID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []models.OrderSubmission
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, *s)
	}
	return subs, rows.Err()
}

// HasOpenSubmission reports whether the contract already has work awaiting
// review or already accepted. Rejected submissions do not count.
func (r *SubmissionRepo) HasOpenSubmission(ctx context.Context, contractID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM order_submissions
			WHERE contract_id = $1 AND status IN ('submitted', 'accepted')
		)
	`, contractID).Scan(&exists)
	return exists, err
}

// Accept transitions submitted -> accepted as a conditional update so that
// accept, reject and the worker's auto-release cannot all win. The decision
// deadline is cleared and the release countdown set in the same statement.
// Returns nil, false when the submission was no longer in submitted state.
func (r *SubmissionRepo) Accept(ctx context.Context, id uuid.UUID, feedback *string, releaseDueAt time.Time) (*models.OrderSubmission, bool, error) {
	s, err := scanSubmission(r.pool.QueryRow(ctx, `
		UPDATE order_submissions
		SET status = 'accepted', reviewed_at = now(), client_feedback = $2,
		    decision_due_at = NULL, release_due_at = $3
		WHERE id = $1 AND status = 'submitted'
		RETURNING`+submissionColumns+`
	`, id, feedback, releaseDueAt))
	if err != nil {
		if errors.Is(err, apperror.ErrSubmissionNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return s, true, nil
}

// Reject transitions submitted -> rejected under the same race rules as
// Accept. The submission stays in the table as history.
func (r *SubmissionRepo) Reject(ctx context.Context, id uuid.UUID, feedback string) (*models.OrderSubmission, bool, error) {
	s, err := scanSubmission(r.pool.QueryRow(ctx, `
		UPDATE order_submissions
		SET status = 'rejected', reviewed_at = now(), client_feedback = $2,
		    decision_due_at = NULL
		WHERE id = $1 AND status = 'submitted'
		RETURNING`+submissionColumns+`
	`, id, feedback))
	if err != nil {
		if errors.Is(err, apperror.ErrSubmissionNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return s, true, nil
}

// ListOverdueDecisions returns submissions the client has sat on past the
// decision deadline; the worker force-accepts them.
func (r *SubmissionRepo) ListOverdueDecisions(ctx context.Context, limit int) ([]models.OrderSubmission, error) {
	if limit <= 0 {
		limit = 200
	}
	rows, err := r.pool.Query(ctx, `
		SELECT`+submissionColumns+`
		FROM order_submissions
		WHERE status = 'submitted' AND decision_due_at <= now()
		ORDER BY decision_due_at ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []models.OrderSubmission
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, *s)
	}
	return subs, rows.Err()
}
