package services

import (
	"context"
	"time"

	"github.com/finder-market/backend/internal/models"
	"github.com/finder-market/backend/internal/repositories"
	"github.com/google/uuid"
)

// Store interfaces over the repository layer. Services depend on these so
// tests can swap in mocks without a database.

type ContractStore interface {
	Create(ctx context.Context, c *models.Contract) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Contract, error)
	List(ctx context.Context, f repositories.ContractFilter) ([]models.Contract, error)
	MarkFunded(ctx context.Context, id uuid.UUID) (bool, error)
	MarkCompleted(ctx context.Context, id uuid.UUID) (bool, error)
	MarkDisputed(ctx context.Context, id uuid.UUID) (bool, error)
	ListCreditable(ctx context.Context, limit int) ([]models.Contract, error)
	Credit(ctx context.Context, id uuid.UUID, platformFee, netEarnings int64) (bool, error)
	ListCompletedUncredited(ctx context.Context, finderID uuid.UUID) ([]models.Contract, error)
}

type SubmissionStore interface {
	Create(ctx context.Context, s *models.OrderSubmission) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.OrderSubmission, error)
	ListByContract(ctx context.Context, contractID uuid.UUID) ([]models.OrderSubmission, error)
	HasOpenSubmission(ctx context.Context, contractID uuid.UUID) (bool, error)
	Accept(ctx context.Context, id uuid.UUID, feedback *string, releaseDueAt time.Time) (*models.OrderSubmission, bool, error)
	Reject(ctx context.Context, id uuid.UUID, feedback string) (*models.OrderSubmission, bool, error)
	ListOverdueDecisions(ctx context.Context, limit int) ([]models.OrderSubmission, error)
}

type FinderStore interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Finder, error)
	EnsureExists(ctx context.Context, userID uuid.UUID) error
	AddRating(ctx context.Context, rating *models.Rating) error
	SetLevel(ctx context.Context, userID, levelID uuid.UUID) error
}

type LevelStore interface {
	List(ctx context.Context) ([]models.FinderLevel, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.FinderLevel, error)
}

type FundConfigStore interface {
	Get(ctx context.Context) (*models.AutonomousFundConfig, error)
	Update(ctx context.Context, in repositories.UpdateFundConfigInput) (*models.AutonomousFundConfig, error)
}

type AuditStore interface {
	Log(ctx context.Context, entry models.AuditLog) error
	GetByEntity(ctx context.Context, entityType string, entityID uuid.UUID, limit, offset int) ([]models.AuditLog, error)
}

// LevelRecalculator re-derives a finder's level after their stats move.
type LevelRecalculator interface {
	RecalculateLevel(ctx context.Context, finderID uuid.UUID) error
}

// StrikeChecker asks the strike subsystem whether a finder may act. Only
// boolean answers cross this boundary.
type StrikeChecker interface {
	CanApply(ctx context.Context, userID uuid.UUID) (bool, error)
	CanMessage(ctx context.Context, userID uuid.UUID) (bool, error)
}
