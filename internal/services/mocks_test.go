package services

import (
	"context"
	"time"

	"github.com/finder-market/backend/internal/events"
	"github.com/finder-market/backend/internal/models"
	"github.com/finder-market/backend/internal/repositories"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type mockContractStore struct {
	mock.Mock
}

func (m *mockContractStore) Create(ctx context.Context, c *models.Contract) error {
	args := m.Called(ctx, c)
	if args.Error(0) == nil {
		c.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *mockContractStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Contract, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Contract), args.Error(1)
}

func (m *mockContractStore) List(ctx context.Context, f repositories.ContractFilter) ([]models.Contract, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Contract), args.Error(1)
}

func (m *mockContractStore) MarkFunded(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockContractStore) MarkCompleted(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockContractStore) MarkDisputed(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockContractStore) ListCreditable(ctx context.Context, limit int) ([]models.Contract, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Contract), args.Error(1)
}

func (m *mockContractStore) Credit(ctx context.Context, id uuid.UUID, platformFee, netEarnings int64) (bool, error) {
	args := m.Called(ctx, id, platformFee, netEarnings)
	return args.Bool(0), args.Error(1)
}

func (m *mockContractStore) ListCompletedUncredited(ctx context.Context, finderID uuid.UUID) ([]models.Contract, error) {
	args := m.Called(ctx, finderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Contract), args.Error(1)
}

type mockSubmissionStore struct {
	mock.Mock
}

func (m *mockSubmissionStore) Create(ctx context.Context, s *models.OrderSubmission) error {
	args := m.Called(ctx, s)
	if args.Error(0) == nil {
		s.ID = uuid.New()
		s.SubmittedAt = time.Now()
	}
	return args.Error(0)
}

func (m *mockSubmissionStore) GetByID(ctx context.Context, id uuid.UUID) (*models.OrderSubmission, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.OrderSubmission), args.Error(1)
}

func (m *mockSubmissionStore) ListByContract(ctx context.Context, contractID uuid.UUID) ([]models.OrderSubmission, error) {
	args := m.Called(ctx, contractID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.OrderSubmission), args.Error(1)
}

func (m *mockSubmissionStore) HasOpenSubmission(ctx context.Context, contractID uuid.UUID) (bool, error) {
	args := m.Called(ctx, contractID)
	return args.Bool(0), args.Error(1)
}

func (m *mockSubmissionStore) Accept(ctx context.Context, id uuid.UUID, feedback *string, releaseDueAt time.Time) (*models.OrderSubmission, bool, error) {
	args := m.Called(ctx, id, feedback, releaseDueAt)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.OrderSubmission), args.Bool(1), args.Error(2)
}

func (m *mockSubmissionStore) Reject(ctx context.Context, id uuid.UUID, feedback string) (*models.OrderSubmission, bool, error) {
	args := m.Called(ctx, id, feedback)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.OrderSubmission), args.Bool(1), args.Error(2)
}

func (m *mockSubmissionStore) ListOverdueDecisions(ctx context.Context, limit int) ([]models.OrderSubmission, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.OrderSubmission), args.Error(1)
}

type mockFinderStore struct {
	mock.Mock
}

func (m *mockFinderStore) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Finder, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Finder), args.Error(1)
}

func (m *mockFinderStore) EnsureExists(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *mockFinderStore) AddRating(ctx context.Context, rating *models.Rating) error {
	args := m.Called(ctx, rating)
	return args.Error(0)
}

func (m *mockFinderStore) SetLevel(ctx context.Context, userID, levelID uuid.UUID) error {
	args := m.Called(ctx, userID, levelID)
	return args.Error(0)
}

type mockLevelStore struct {
	mock.Mock
}

func (m *mockLevelStore) List(ctx context.Context) ([]models.FinderLevel, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.FinderLevel), args.Error(1)
}

func (m *mockLevelStore) GetByID(ctx context.Context, id uuid.UUID) (*models.FinderLevel, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FinderLevel), args.Error(1)
}

type mockFundConfigStore struct {
	mock.Mock
}

func (m *mockFundConfigStore) Get(ctx context.Context) (*models.AutonomousFundConfig, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AutonomousFundConfig), args.Error(1)
}

func (m *mockFundConfigStore) Update(ctx context.Context, in repositories.UpdateFundConfigInput) (*models.AutonomousFundConfig, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AutonomousFundConfig), args.Error(1)
}

type mockAuditStore struct {
	mock.Mock
}

func (m *mockAuditStore) Log(ctx context.Context, entry models.AuditLog) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *mockAuditStore) GetByEntity(ctx context.Context, entityType string, entityID uuid.UUID, limit, offset int) ([]models.AuditLog, error) {
	args := m.Called(ctx, entityType, entityID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.AuditLog), args.Error(1)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, stream string, event events.Event) error {
	args := m.Called(ctx, stream, event)
	return args.Error(0)
}

type mockStrikeChecker struct {
	mock.Mock
}

func (m *mockStrikeChecker) CanApply(ctx context.Context, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func (m *mockStrikeChecker) CanMessage(ctx context.Context, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

type mockLevelRecalculator struct {
	mock.Mock
}

func (m *mockLevelRecalculator) RecalculateLevel(ctx context.Context, finderID uuid.UUID) error {
	args := m.Called(ctx, finderID)
	return args.Error(0)
}

type mockAutoAccepter struct {
	mock.Mock
}

func (m *mockAutoAccepter) AutoAccept(ctx context.Context, sub models.OrderSubmission, cfg *models.AutonomousFundConfig) (bool, error) {
	args := m.Called(ctx, sub, cfg)
	return args.Bool(0), args.Error(1)
}
