package services

import (
	"context"
	"testing"

	"github.com/finder-market/backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

type finderFixture struct {
	finders    *mockFinderStore
	contracts  *mockContractStore
	levels     *mockLevelStore
	fundConfig *mockFundConfigStore
	audit      *mockAuditStore
	publisher  *mockPublisher
	svc        *FinderService
}

func newFinderFixture() *finderFixture {
	f := &finderFixture{
		finders:    new(mockFinderStore),
		contracts:  new(mockContractStore),
		levels:     new(mockLevelStore),
		fundConfig: new(mockFundConfigStore),
		audit:      new(mockAuditStore),
		publisher:  new(mockPublisher),
	}
	f.svc = NewFinderService(f.finders, f.contracts, f.levels, f.fundConfig,
		f.audit, f.publisher, zap.NewNop())
	return f
}

func ratingPtr(v float64) *float64 { return &v }

func threeTiers() (low, mid, high models.FinderLevel) {
	low = models.FinderLevel{ID: uuid.New(), Name: "Novice", SortOrder: 1, IsActive: true}
	mid = models.FinderLevel{ID: uuid.New(), Name: "Pathfinder", MinJobsCompleted: 5, MinRating: ratingPtr(3.5), SortOrder: 2, IsActive: true}
	high = models.FinderLevel{ID: uuid.New(), Name: "Meister", MinJobsCompleted: 10, MinRating: ratingPtr(4.5), SortOrder: 3, IsActive: true}
	return
}

func TestGetBalance_PendingExcludesDisputed(t *testing.T) {
	f := newFinderFixture()
	ctx := context.Background()
	finderID := uuid.New()

	finder := &models.Finder{
		UserID:           finderID,
		AvailableBalance: 50000,
		JobsCompleted:    3,
		RatingSum:        12,
		RatingCount:      3,
	}
	held := models.Contract{ID: uuid.New(), FinderID: finderID, Amount: 100000, FeeBPS: 500,
		EscrowStatus: models.EscrowStatusHeld, IsCompleted: true}
	disputed := models.Contract{ID: uuid.New(), FinderID: finderID, Amount: 200000, FeeBPS: 500,
		EscrowStatus: models.EscrowStatusDisputed, IsCompleted: true}

	f.finders.On("GetByUserID", ctx, finderID).Return(finder, nil)
	f.contracts.On("ListCompletedUncredited", ctx, finderID).Return([]models.Contract{held, disputed}, nil)

	balance, err := f.svc.GetBalance(ctx, finderID)

	assert.NoError(t, err)
	assert.Equal(t, int64(50000), balance.AvailableBalance)
	assert.Equal(t, int64(95000), balance.PendingBalance) // only the held contract
	assert.Equal(t, 3, balance.JobsCompleted)
	assert.InDelta(t, 4.0, balance.AverageRating, 0.001)
}

func TestRecalculateLevel_Promotes(t *testing.T) {
	f := newFinderFixture()
	ctx := context.Background()
	finderID := uuid.New()
	low, mid, high := threeTiers()

	finder := &models.Finder{
		UserID:         finderID,
		JobsCompleted:  12,
		RatingSum:      46,
		RatingCount:    10, // avg 4.6
		CurrentLevelID: &mid.ID,
	}

	f.finders.On("GetByUserID", ctx, finderID).Return(finder, nil)
	f.levels.On("List", ctx).Return([]models.FinderLevel{low, mid, high}, nil)
	f.levels.On("GetByID", ctx, mid.ID).Return(&mid, nil)
	f.fundConfig.On("Get", ctx).Return(models.DefaultFundConfig(), nil)
	f.finders.On("SetLevel", ctx, finderID, high.ID).Return(nil)
	f.audit.On("Log", ctx, mock.AnythingOfType("models.AuditLog")).Return(nil)
	f.publisher.On("Publish", ctx, mock.Anything, mock.Anything).Return(nil)

	err := f.svc.RecalculateLevel(ctx, finderID)

	assert.NoError(t, err)
	f.finders.AssertCalled(t, "SetLevel", ctx, finderID, high.ID)
}

func TestRecalculateLevel_PromotionGatedByConfigMinimums(t *testing.T) {
	f := newFinderFixture()
	ctx := context.Background()
	finderID := uuid.New()
	low, mid, high := threeTiers()

	finder := &models.Finder{
		UserID:         finderID,
		JobsCompleted:  12,
		RatingSum:      46,
		RatingCount:    10,
		CurrentLevelID: &mid.ID,
	}
	cfg := models.DefaultFundConfig()
	cfg.MinimumJobsCompleted = 20 // stats qualify for Meister but platform minimum blocks it

	f.finders.On("GetByUserID", ctx, finderID).Return(finder, nil)
	f.levels.On("List", ctx).Return([]models.FinderLevel{low, mid, high}, nil)
	f.levels.On("GetByID", ctx, mid.ID).Return(&mid, nil)
	f.fundConfig.On("Get", ctx).Return(cfg, nil)

	err := f.svc.RecalculateLevel(ctx, finderID)

	assert.NoError(t, err)
	f.finders.AssertNotCalled(t, "SetLevel", mock.Anything, mock.Anything, mock.Anything)
}

func TestRecalculateLevel_DemotionIgnoresMinimums(t *testing.T) {
	f := newFinderFixture()
	ctx := context.Background()
	finderID := uuid.New()
	low, mid, high := threeTiers()

	finder := &models.Finder{
		UserID:         finderID,
		JobsCompleted:  12,
		RatingSum:      30,
		RatingCount:    10, // avg 3.0 drops below Pathfinder
		CurrentLevelID: &high.ID,
	}

	f.finders.On("GetByUserID", ctx, finderID).Return(finder, nil)
	f.levels.On("List", ctx).Return([]models.FinderLevel{low, mid, high}, nil)
	f.levels.On("GetByID", ctx, high.ID).Return(&high, nil)
	f.finders.On("SetLevel", ctx, finderID, low.ID).Return(nil)
	f.audit.On("Log", ctx, mock.AnythingOfType("models.AuditLog")).Return(nil)
	f.publisher.On("Publish", ctx, mock.Anything, mock.Anything).Return(nil)

	err := f.svc.RecalculateLevel(ctx, finderID)

	assert.NoError(t, err)
	f.finders.AssertCalled(t, "SetLevel", ctx, finderID, low.ID)
	f.fundConfig.AssertNotCalled(t, "Get", mock.Anything)
}

func TestRecalculateLevel_NoChangeIsNoOp(t *testing.T) {
	f := newFinderFixture()
	ctx := context.Background()
	finderID := uuid.New()
	low, mid, high := threeTiers()

	finder := &models.Finder{
		UserID:         finderID,
		JobsCompleted:  6,
		RatingSum:      40,
		RatingCount:    10,
		CurrentLevelID: &mid.ID,
	}

	f.finders.On("GetByUserID", ctx, finderID).Return(finder, nil)
	f.levels.On("List", ctx).Return([]models.FinderLevel{low, mid, high}, nil)

	err := f.svc.RecalculateLevel(ctx, finderID)

	assert.NoError(t, err)
	f.finders.AssertNotCalled(t, "SetLevel", mock.Anything, mock.Anything, mock.Anything)
	f.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}

func TestRecalculateLevel_FirstAssignment(t *testing.T) {
	f := newFinderFixture()
	ctx := context.Background()
	finderID := uuid.New()
	low, mid, high := threeTiers()

	finder := &models.Finder{UserID: finderID}

	f.finders.On("GetByUserID", ctx, finderID).Return(finder, nil)
	f.levels.On("List", ctx).Return([]models.FinderLevel{low, mid, high}, nil)
	f.finders.On("SetLevel", ctx, finderID, low.ID).Return(nil)
	f.audit.On("Log", ctx, mock.AnythingOfType("models.AuditLog")).Return(nil)
	f.publisher.On("Publish", ctx, mock.Anything, mock.Anything).Return(nil)

	err := f.svc.RecalculateLevel(ctx, finderID)

	assert.NoError(t, err)
	f.finders.AssertCalled(t, "SetLevel", ctx, finderID, low.ID)
}
