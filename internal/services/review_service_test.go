package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/finder-market/backend/internal/apperror"
	"github.com/finder-market/backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

type reviewFixture struct {
	contracts   *mockContractStore
	submissions *mockSubmissionStore
	finders     *mockFinderStore
	fundConfig  *mockFundConfigStore
	audit       *mockAuditStore
	publisher   *mockPublisher
	strikes     *mockStrikeChecker
	levels      *mockLevelRecalculator
	svc         *ReviewService
}

func newReviewFixture() *reviewFixture {
	f := &reviewFixture{
		contracts:   new(mockContractStore),
		submissions: new(mockSubmissionStore),
		finders:     new(mockFinderStore),
		fundConfig:  new(mockFundConfigStore),
		audit:       new(mockAuditStore),
		publisher:   new(mockPublisher),
		strikes:     new(mockStrikeChecker),
		levels:      new(mockLevelRecalculator),
	}
	f.svc = NewReviewService(f.contracts, f.submissions, f.finders, f.fundConfig,
		f.audit, f.publisher, f.strikes, f.levels, 120*time.Hour, zap.NewNop())
	return f
}

func heldContract(clientID, finderID uuid.UUID) *models.Contract {
	return &models.Contract{
		ID:           uuid.New(),
		ClientID:     clientID,
		FinderID:     finderID,
		Amount:       100000,
		FeeBPS:       500,
		EscrowStatus: models.EscrowStatusHeld,
	}
}

func TestSubmitWork_Success(t *testing.T) {
	f := newReviewFixture()
	ctx := context.Background()
	clientID, finderID := uuid.New(), uuid.New()
	contract := heldContract(clientID, finderID)

	f.contracts.On("GetByID", ctx, contract.ID).Return(contract, nil)
	f.strikes.On("CanApply", ctx, finderID).Return(true, nil)
	f.submissions.On("HasOpenSubmission", ctx, contract.ID).Return(false, nil)
	f.submissions.On("Create", ctx, mock.AnythingOfType("*models.OrderSubmission")).Return(nil)
	f.audit.On("Log", ctx, mock.AnythingOfType("models.AuditLog")).Return(nil)

	sub, err := f.svc.SubmitWork(ctx, finderID, SubmitWorkInput{
		ContractID:     contract.ID,
		SubmissionText: "final deliverable",
	})

	assert.NoError(t, err)
	assert.NotNil(t, sub)
	assert.Equal(t, models.SubmissionStatusSubmitted, sub.Status)
	if assert.NotNil(t, sub.DecisionDueAt) {
		assert.WithinDuration(t, time.Now().Add(120*time.Hour), *sub.DecisionDueAt, time.Minute)
	}
	assert.Nil(t, sub.ReleaseDueAt)
}

func TestSubmitWork_UnfundedEscrow(t *testing.T) {
	f := newReviewFixture()
	ctx := context.Background()
	clientID, finderID := uuid.New(), uuid.New()
	contract := heldContract(clientID, finderID)
	contract.EscrowStatus = models.EscrowStatusPending

	f.contracts.On("GetByID", ctx, contract.ID).Return(contract, nil)

	_, err := f.svc.SubmitWork(ctx, finderID, SubmitWorkInput{
		ContractID:     contract.ID,
		SubmissionText: "too early",
	})

	assert.Error(t, err)
	assert.True(t, apperror.IsEscrowNotFunded(err))
	f.submissions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSubmitWork_WrongFinder(t *testing.T) {
	f := newReviewFixture()
	ctx := context.Background()
	contract := heldContract(uuid.New(), uuid.New())

	f.contracts.On("GetByID", ctx, contract.ID).Return(contract, nil)

	_, err := f.svc.SubmitWork(ctx, uuid.New(), SubmitWorkInput{
		ContractID:     contract.ID,
		SubmissionText: "not mine",
	})

	assert.Error(t, err)
	var appErr *apperror.AppError
	assert.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.ErrCodeForbidden, appErr.Code)
}

func TestSubmitWork_OpenSubmissionConflict(t *testing.T) {
	f := newReviewFixture()
	ctx := context.Background()
	clientID, finderID := uuid.New(), uuid.New()
	contract := heldContract(clientID, finderID)

	f.contracts.On("GetByID", ctx, contract.ID).Return(contract, nil)
	f.strikes.On("CanApply", ctx, finderID).Return(true, nil)
	f.submissions.On("HasOpenSubmission", ctx, contract.ID).Return(true, nil)

	_, err := f.svc.SubmitWork(ctx, finderID, SubmitWorkInput{
		ContractID:     contract.ID,
		SubmissionText: "duplicate",
	})

	assert.True(t, apperror.IsConflict(err))
	f.submissions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSubmitWork_StrikeServiceDownFailsOpen(t *testing.T) {
	f := newReviewFixture()
	ctx := context.Background()
	clientID, finderID := uuid.New(), uuid.New()
	contract := heldContract(clientID, finderID)

	f.contracts.On("GetByID", ctx, contract.ID).Return(contract, nil)
	f.strikes.On("CanApply", ctx, finderID).Return(false, errors.New("connection refused"))
	f.submissions.On("HasOpenSubmission", ctx, contract.ID).Return(false, nil)
	f.submissions.On("Create", ctx, mock.AnythingOfType("*models.OrderSubmission")).Return(nil)
	f.audit.On("Log", ctx, mock.AnythingOfType("models.AuditLog")).Return(nil)

	sub, err := f.svc.SubmitWork(ctx, finderID, SubmitWorkInput{
		ContractID:     contract.ID,
		SubmissionText: "delivered anyway",
	})

	assert.NoError(t, err)
	assert.NotNil(t, sub)
}

func TestSubmitWork_StrikeBlocked(t *testing.T) {
	f := newReviewFixture()
	ctx := context.Background()
	clientID, finderID := uuid.New(), uuid.New()
	contract := heldContract(clientID, finderID)

	f.contracts.On("GetByID", ctx, contract.ID).Return(contract, nil)
	f.strikes.On("CanApply", ctx, finderID).Return(false, nil)

	_, err := f.svc.SubmitWork(ctx, finderID, SubmitWorkInput{
		ContractID:     contract.ID,
		SubmissionText: "blocked",
	})

	assert.Error(t, err)
	var appErr *apperror.AppError
	assert.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.ErrCodeForbidden, appErr.Code)
}

func TestAcceptSubmission_WithRating(t *testing.T) {
	f := newReviewFixture()
	ctx := context.Background()
	clientID, finderID := uuid.New(), uuid.New()
	contract := heldContract(clientID, finderID)
	sub := &models.OrderSubmission{
		ID:         uuid.New(),
		ContractID: contract.ID,
		FinderID:   finderID,
		Status:     models.SubmissionStatusSubmitted,
	}
	accepted := *sub
	accepted.Status = models.SubmissionStatusAccepted

	f.submissions.On("GetByID", ctx, sub.ID).Return(sub, nil)
	f.contracts.On("GetByID", ctx, contract.ID).Return(contract, nil)
	f.fundConfig.On("Get", ctx).Return(models.DefaultFundConfig(), nil)
	f.submissions.On("Accept", ctx, sub.ID, (*string)(nil), mock.MatchedBy(func(due time.Time) bool {
		return due.After(time.Now().Add(71 * time.Hour))
	})).Return(&accepted, true, nil)
	f.contracts.On("MarkCompleted", ctx, contract.ID).Return(true, nil)
	f.finders.On("AddRating", ctx, mock.AnythingOfType("*models.Rating")).Return(nil)
	f.levels.On("RecalculateLevel", ctx, finderID).Return(nil)
	f.audit.On("Log", ctx, mock.AnythingOfType("models.AuditLog")).Return(nil)
	f.publisher.On("Publish", ctx, mock.Anything, mock.Anything).Return(nil)

	rating := 5
	result, err := f.svc.AcceptSubmission(ctx, clientID, sub.ID, AcceptSubmissionInput{Rating: &rating})

	assert.NoError(t, err)
	assert.True(t, result.RatingRecorded)
	assert.Equal(t, models.SubmissionStatusAccepted, result.Submission.Status)
	f.contracts.AssertCalled(t, "MarkCompleted", ctx, contract.ID)
}

func TestAcceptSubmission_RatingFailureDoesNotRollBack(t *testing.T) {
	f := newReviewFixture()
	ctx := context.Background()
	clientID, finderID := uuid.New(), uuid.New()
	contract := heldContract(clientID, finderID)
	sub := &models.OrderSubmission{
		ID:         uuid.New(),
		ContractID: contract.ID,
		FinderID:   finderID,
		Status:     models.SubmissionStatusSubmitted,
	}
	accepted := *sub
	accepted.Status = models.SubmissionStatusAccepted

	f.submissions.On("GetByID", ctx, sub.ID).Return(sub, nil)
	f.contracts.On("GetByID", ctx, contract.ID).Return(contract, nil)
	f.fundConfig.On("Get", ctx).Return(models.DefaultFundConfig(), nil)
	f.submissions.On("Accept", ctx, sub.ID, (*string)(nil), mock.AnythingOfType("time.Time")).Return(&accepted, true, nil)
	f.contracts.On("MarkCompleted", ctx, contract.ID).Return(true, nil)
	f.finders.On("AddRating", ctx, mock.AnythingOfType("*models.Rating")).Return(errors.New("ratings table down"))
	f.audit.On("Log", ctx, mock.AnythingOfType("models.AuditLog")).Return(nil)
	f.publisher.On("Publish", ctx, mock.Anything, mock.Anything).Return(nil)

	rating := 4
	result, err := f.svc.AcceptSubmission(ctx, clientID, sub.ID, AcceptSubmissionInput{Rating: &rating})

	assert.NoError(t, err)
	assert.False(t, result.RatingRecorded)
	assert.Equal(t, models.SubmissionStatusAccepted, result.Submission.Status)
	f.levels.AssertNotCalled(t, "RecalculateLevel", mock.Anything, mock.Anything)
}

func TestAcceptSubmission_LostRace(t *testing.T) {
	f := newReviewFixture()
	ctx := context.Background()
	clientID, finderID := uuid.New(), uuid.New()
	contract := heldContract(clientID, finderID)
	sub := &models.OrderSubmission{
		ID:         uuid.New(),
		ContractID: contract.ID,
		FinderID:   finderID,
		Status:     models.SubmissionStatusSubmitted,
	}

	f.submissions.On("GetByID", ctx, sub.ID).Return(sub, nil)
	f.contracts.On("GetByID", ctx, contract.ID).Return(contract, nil)
	f.fundConfig.On("Get", ctx).Return(models.DefaultFundConfig(), nil)
	f.submissions.On("Accept", ctx, sub.ID, (*string)(nil), mock.AnythingOfType("time.Time")).Return(nil, false, nil)

	_, err := f.svc.AcceptSubmission(ctx, clientID, sub.ID, AcceptSubmissionInput{})

	assert.True(t, apperror.IsConflict(err))
	f.contracts.AssertNotCalled(t, "MarkCompleted", mock.Anything, mock.Anything)
}

func TestAcceptSubmission_AlreadyReviewed(t *testing.T) {
	f := newReviewFixture()
	ctx := context.Background()
	clientID, finderID := uuid.New(), uuid.New()
	contract := heldContract(clientID, finderID)
	sub := &models.OrderSubmission{
		ID:         uuid.New(),
		ContractID: contract.ID,
		FinderID:   finderID,
		Status:     models.SubmissionStatusRejected,
	}

	f.submissions.On("GetByID", ctx, sub.ID).Return(sub, nil)
	f.contracts.On("GetByID", ctx, contract.ID).Return(contract, nil)

	_, err := f.svc.AcceptSubmission(ctx, clientID, sub.ID, AcceptSubmissionInput{})

	assert.True(t, apperror.IsInvalidState(err))
}

func TestAcceptSubmission_InvalidRating(t *testing.T) {
	f := newReviewFixture()
	ctx := context.Background()

	rating := 6
	_, err := f.svc.AcceptSubmission(ctx, uuid.New(), uuid.New(), AcceptSubmissionInput{Rating: &rating})

	assert.True(t, apperror.IsValidation(err))
}

func TestRejectSubmission_FeedbackRequired(t *testing.T) {
	f := newReviewFixture()
	ctx := context.Background()

	_, err := f.svc.RejectSubmission(ctx, uuid.New(), uuid.New(), "   ")

	assert.True(t, apperror.IsValidation(err))
	f.submissions.AssertNotCalled(t, "Reject", mock.Anything, mock.Anything, mock.Anything)
}

func TestRejectSubmission_Success(t *testing.T) {
	f := newReviewFixture()
	ctx := context.Background()
	clientID, finderID := uuid.New(), uuid.New()
	contract := heldContract(clientID, finderID)
	sub := &models.OrderSubmission{
		ID:         uuid.New(),
		ContractID: contract.ID,
		FinderID:   finderID,
		Status:     models.SubmissionStatusSubmitted,
	}
	rejected := *sub
	rejected.Status = models.SubmissionStatusRejected

	f.submissions.On("GetByID", ctx, sub.ID).Return(sub, nil)
	f.contracts.On("GetByID", ctx, contract.ID).Return(contract, nil)
	f.submissions.On("Reject", ctx, sub.ID, "needs revision").Return(&rejected, true, nil)
	f.audit.On("Log", ctx, mock.AnythingOfType("models.AuditLog")).Return(nil)
	f.publisher.On("Publish", ctx, mock.Anything, mock.Anything).Return(nil)

	result, err := f.svc.RejectSubmission(ctx, clientID, sub.ID, "needs revision")

	assert.NoError(t, err)
	assert.Equal(t, models.SubmissionStatusRejected, result.Status)
	// Escrow is untouched by a rejection; the finder may resubmit.
	f.contracts.AssertNotCalled(t, "MarkCompleted", mock.Anything, mock.Anything)
	f.contracts.AssertNotCalled(t, "MarkDisputed", mock.Anything, mock.Anything)
}

func TestAutoAccept_SkipsDisputedContract(t *testing.T) {
	f := newReviewFixture()
	ctx := context.Background()
	clientID, finderID := uuid.New(), uuid.New()
	contract := heldContract(clientID, finderID)
	contract.EscrowStatus = models.EscrowStatusDisputed
	sub := models.OrderSubmission{
		ID:         uuid.New(),
		ContractID: contract.ID,
		FinderID:   finderID,
		Status:     models.SubmissionStatusSubmitted,
	}

	f.contracts.On("GetByID", ctx, contract.ID).Return(contract, nil)

	ok, err := f.svc.AutoAccept(ctx, sub, models.DefaultFundConfig())

	assert.NoError(t, err)
	assert.False(t, ok)
	f.submissions.AssertNotCalled(t, "Accept", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAutoAccept_ForcesAcceptance(t *testing.T) {
	f := newReviewFixture()
	ctx := context.Background()
	clientID, finderID := uuid.New(), uuid.New()
	contract := heldContract(clientID, finderID)
	sub := models.OrderSubmission{
		ID:         uuid.New(),
		ContractID: contract.ID,
		FinderID:   finderID,
		Status:     models.SubmissionStatusSubmitted,
	}
	accepted := sub
	accepted.Status = models.SubmissionStatusAccepted

	f.contracts.On("GetByID", ctx, contract.ID).Return(contract, nil)
	f.submissions.On("Accept", ctx, sub.ID, (*string)(nil), mock.AnythingOfType("time.Time")).Return(&accepted, true, nil)
	f.contracts.On("MarkCompleted", ctx, contract.ID).Return(true, nil)
	f.audit.On("Log", ctx, mock.MatchedBy(func(entry models.AuditLog) bool {
		return entry.ActorType == "system" && entry.Action == "submission.auto_accepted"
	})).Return(nil)
	f.publisher.On("Publish", ctx, mock.Anything, mock.Anything).Return(nil)

	ok, err := f.svc.AutoAccept(ctx, sub, models.DefaultFundConfig())

	assert.NoError(t, err)
	assert.True(t, ok)
	f.contracts.AssertCalled(t, "MarkCompleted", ctx, contract.ID)
}

func TestAutoAccept_LostToClientReview(t *testing.T) {
	f := newReviewFixture()
	ctx := context.Background()
	clientID, finderID := uuid.New(), uuid.New()
	contract := heldContract(clientID, finderID)
	sub := models.OrderSubmission{
		ID:         uuid.New(),
		ContractID: contract.ID,
		FinderID:   finderID,
		Status:     models.SubmissionStatusSubmitted,
	}

	f.contracts.On("GetByID", ctx, contract.ID).Return(contract, nil)
	f.submissions.On("Accept", ctx, sub.ID, (*string)(nil), mock.AnythingOfType("time.Time")).Return(nil, false, nil)

	ok, err := f.svc.AutoAccept(ctx, sub, models.DefaultFundConfig())

	assert.NoError(t, err)
	assert.False(t, ok)
	f.contracts.AssertNotCalled(t, "MarkCompleted", mock.Anything, mock.Anything)
}
