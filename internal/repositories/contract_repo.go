package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/finder-market/backend/internal/apperror"
	"github.com/finder-market/backend/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const contractColumns = `
	id, request_id, proposal_id, finder_id, client_id, amount, fee_bps,
	escrow_status, is_completed, credited, platform_fee, net_earnings,
	created_at, funded_at, completed_at, credited_at, updated_at`

type ContractRepo struct {
	pool *pgxpool.Pool
}

func NewContractRepo(pool *pgxpool.Pool) *ContractRepo {
	return &ContractRepo{pool: pool}
}

func scanContract(row pgx.Row) (*models.Contract, error) {
	var c models.Contract
	err := row.Scan(&c.ID, &c.RequestID, &c.ProposalID, &c.FinderID, &c.ClientID,
		&c.Amount, &c.FeeBPS, &c.EscrowStatus, &c.IsCompleted, &c.Credited,
		&c.PlatformFee, &c.NetEarnings,
		&c.CreatedAt, &c.FundedAt, &c.CompletedAt, &c.CreditedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.ErrContractNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *ContractRepo) Create(ctx context.Context, c *models.Contract) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO contracts (request_id, proposal_id, finder_id, client_id, amount, fee_bps, escrow_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`, c.RequestID, c.ProposalID, c.FinderID, c.ClientID, c.Amount, c.FeeBPS, c.EscrowStatus,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

func (r *ContractRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Contract, error) {
	return scanContract(r.pool.QueryRow(ctx,
		`SELECT`+contractColumns+` FROM contracts WHERE id = $1`, id))
}

type ContractFilter struct {
	ClientID *uuid.UUID
	FinderID *uuid.UUID
	Status   *string
	Limit    int
	Offset   int
}

func (r *ContractRepo) List(ctx context.Context, f ContractFilter) ([]models.Contract, error) {
	query := `SELECT` + contractColumns + ` FROM contracts`
	args := []any{}
	argIdx := 1
	where := []string{}

	if f.ClientID != nil {
		where = append(where, fmt.Sprintf("client_id = $%d", argIdx))
		args = append(args, *f.ClientID)
		argIdx++
	}
	if f.FinderID != nil {
		where = append(where, fmt.Sprintf("finder_id = $%d", argIdx))
		args = append(args, *f.FinderID)
		argIdx++
	}
	if f.Status != nil {
		where = append(where, fmt.Sprintf("escrow_status = $%d", argIdx))
		args = append(args, *f.Status)
		argIdx++
	}

	if len(where) > 0 {
		query += " WHERE "
		for i, w := range where {
			if i > 0 {
				query += " AND "
			}
			query += w
		}
	}

	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, limit, f.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contracts []models.Contract
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, err
		}
		contracts = append(contracts, *c)
	}
	return contracts, rows.Err()
}

// MarkFunded moves a pending contract to held. Returns false when the
// contract was not pending (lost the race or already funded).
func (r *ContractRepo) MarkFunded(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE contracts SET escrow_status = 'held', funded_at = now(), updated_at = now()
		WHERE id = $1 AND escrow_status = 'pending'
	`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// MarkCompleted flips is_completed exactly once. A second call affects no
// rows and reports false, which callers treat as a no-op.
func (r *ContractRepo) MarkCompleted(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE contracts SET is_completed = true, completed_at = now(), updated_at = now()
		WHERE id = $1 AND is_completed = false AND escrow_status = 'held'
	`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// MarkDisputed moves a held contract to disputed.
func (r *ContractRepo) MarkDisputed(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE contracts SET escrow_status = 'disputed', updated_at = now()
		WHERE id = $1 AND escrow_status = 'held'
	`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// ListCreditable returns completed, uncredited, undisputed contracts whose
// accepted submission's release countdown has elapsed.
func (r *ContractRepo) ListCreditable(ctx context.Context, limit int) ([]models.Contract, error) {
	if limit <= 0 {
		limit = 200
	}
	rows, err := r.pool.Query(ctx, `
		SELECT c.id, c.request_id, c.proposal_id, c.finder_id, c.client_id, c.amount, c.fee_bps,
		       c.escrow_status, c.is_completed, c.credited, c.platform_fee, c.net_earnings,
		       c.created_at, c.funded_at, c.completed_at, c.credited_at, c.updated_at
		FROM contracts c
		JOIN order_submissions s ON s.contract_id = c.id AND s.status = 'accepted'
		WHERE c.is_completed = true
		  AND c.credited = false
		  AND c.escrow_status = 'held'
		  AND s.release_due_at <= now()
		ORDER BY s.release_due_at ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contracts []models.Contract
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, err
		}
		contracts = append(contracts, *c)
	}
	return contracts, rows.Err()
}

// Credit releases a contract's escrow and pays the finder in a single
// transaction: the credited flag, the balance increment and the completed
// jobs counter move together or not at all. Returns false when another
// sweep already credited the contract (or it became disputed).
func (r *ContractRepo) Credit(ctx context.Context, id uuid.UUID, platformFee, netEarnings int64) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	var finderID uuid.UUID
	err = tx.QueryRow(ctx, `
		UPDATE contracts
		SET escrow_status = 'released', credited = true, credited_at = now(),
		    platform_fee = $2, net_earnings = $3, updated_at = now()
		WHERE id = $1 AND credited = false AND escrow_status = 'held'
		RETURNING finder_id
	`, id, platformFee, netEarnings).Scan(&finderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}

	_, err = tx.Exec(ctx, `
		UPDATE finders
		SET available_balance = available_balance + $2,
		    jobs_completed = jobs_completed + 1,
		    updated_at = now()
		WHERE user_id = $1
	`, finderID, netEarnings)
	if err != nil {
		return false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// ListCompletedUncredited returns a finder's contracts still inside the
// holding period; used to derive the pending balance.
func (r *ContractRepo) ListCompletedUncredited(ctx context.Context, finderID uuid.UUID) ([]models.Contract, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT`+contractColumns+`
		FROM contracts
		WHERE finder_id = $1 AND is_completed = true AND credited = false
		ORDER BY completed_at ASC
	`, finderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contracts []models.Contract
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, err
		}
		contracts = append(contracts, *c)
	}
	return contracts, rows.Err()
}
