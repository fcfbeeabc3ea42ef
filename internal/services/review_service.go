package services

import (
	"context"
	"strings"
	"time"

	"github.com/finder-market/backend/internal/apperror"
	"github.com/finder-market/backend/internal/events"
	"github.com/finder-market/backend/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ReviewService struct {
	contracts      ContractStore
	submissions    SubmissionStore
	finders        FinderStore
	fundConfig     FundConfigStore
	audit          AuditStore
	publisher      events.Publisher
	strikes        StrikeChecker
	levels         LevelRecalculator
	decisionWindow time.Duration
	log            *zap.Logger
}

func NewReviewService(
	contracts ContractStore,
	submissions SubmissionStore,
	finders FinderStore,
	fundConfig FundConfigStore,
	audit AuditStore,
	publisher events.Publisher,
	strikes StrikeChecker,
	levels LevelRecalculator,
	decisionWindow time.Duration,
	log *zap.Logger,
) *ReviewService {
	return &ReviewService{
		contracts:      contracts,
		submissions:    submissions,
		finders:        finders,
		fundConfig:     fundConfig,
		audit:          audit,
		publisher:      publisher,
		strikes:        strikes,
		levels:         levels,
		decisionWindow: decisionWindow,
		log:            log,
	}
}

type SubmitWorkInput struct {
	ContractID      uuid.UUID
	SubmissionText  string
	AttachmentPaths []string
}

// SubmitWork files the finder's deliverable against a held contract and
// starts the client decision countdown. Submitting against unfunded escrow
// is refused before anything is written.
func (s *ReviewService) SubmitWork(ctx context.Context, finderID uuid.UUID, in SubmitWorkInput) (*models.OrderSubmission, error) {
	if strings.TrimSpace(in.SubmissionText) == "" {
		return nil, apperror.New(apperror.ErrCodeValidation, "submission text is required")
	}

	contract, err := s.contracts.GetByID(ctx, in.ContractID)
	if err != nil {
		return nil, err
	}
	if contract.FinderID != finderID {
		return nil, apperror.New(apperror.ErrCodeForbidden, "only the contract's finder can submit work")
	}

	switch contract.EscrowStatus {
	case models.EscrowStatusPending:
		return nil, apperror.New(apperror.ErrCodeEscrowNotFunded, "escrow is not funded yet")
	case models.EscrowStatusHeld:
		// ok
	default:
		return nil, apperror.Newf(apperror.ErrCodeInvalidState,
			"cannot submit work in %s state", contract.EscrowStatus)
	}
	if contract.IsCompleted {
		return nil, apperror.New(apperror.ErrCodeInvalidState, "contract is already completed")
	}

	// Strike checks fail open: an unreachable strike service must not stop
	// legitimate deliveries.
	allowed, err := s.strikes.CanApply(ctx, finderID)
	if err != nil {
		s.log.Warn("strike check failed, allowing submission",
			zap.String("finder_id", finderID.String()), zap.Error(err))
	} else if !allowed {
		return nil, apperror.New(apperror.ErrCodeForbidden, "finder is blocked from submitting work")
	}

	open, err := s.submissions.HasOpenSubmission(ctx, in.ContractID)
	if err != nil {
		return nil, err
	}
	if open {
		return nil, apperror.New(apperror.ErrCodeConflict, "contract already has a submission awaiting review")
	}

	decisionDueAt := time.Now().Add(s.decisionWindow)
	sub := &models.OrderSubmission{
		ContractID:      in.ContractID,
		FinderID:        finderID,
		SubmissionText:  in.SubmissionText,
		AttachmentPaths: in.AttachmentPaths,
		Status:          models.SubmissionStatusSubmitted,
		DecisionDueAt:   &decisionDueAt,
	}
	if err := s.submissions.Create(ctx, sub); err != nil {
		return nil, err
	}

	s.logAudit(ctx, &finderID, "user", "submission.created", contract.ID, map[string]any{
		"submission_id":   sub.ID.String(),
		"decision_due_at": decisionDueAt,
	})

	return sub, nil
}

type AcceptSubmissionInput struct {
	Feedback       *string
	Rating         *int
	RatingFeedback *string
}

type AcceptResult struct {
	Submission     *models.OrderSubmission `json:"submission"`
	RatingRecorded bool                    `json:"rating_recorded"`
}

// AcceptSubmission approves the work, marks the contract completed and
// starts the fund-release countdown. An optional rating rides along; a
// rating failure is reported in the result but never undoes the acceptance.
func (s *ReviewService) AcceptSubmission(ctx context.Context, clientID, submissionID uuid.UUID, in AcceptSubmissionInput) (*AcceptResult, error) {
	if in.Rating != nil && (*in.Rating < 1 || *in.Rating > 5) {
		return nil, apperror.New(apperror.ErrCodeValidation, "rating must be between 1 and 5")
	}

	sub, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	contract, err := s.contracts.GetByID(ctx, sub.ContractID)
	if err != nil {
		return nil, err
	}
	if contract.ClientID != clientID {
		return nil, apperror.New(apperror.ErrCodeForbidden, "only the contract's client can review submissions")
	}
	if contract.EscrowStatus != models.EscrowStatusHeld {
		return nil, apperror.Newf(apperror.ErrCodeInvalidState,
			"cannot review work while escrow is %s", contract.EscrowStatus)
	}
	if !models.IsValidSubmissionTransition(sub.Status, models.SubmissionStatusAccepted) {
		return nil, apperror.Newf(apperror.ErrCodeInvalidState,
			"submission is already %s", sub.Status)
	}

	accepted, err := s.accept(ctx, &clientID, "user", "submission.accepted", contract, sub.ID, in.Feedback)
	if err != nil {
		return nil, err
	}
	if accepted == nil {
		return nil, apperror.New(apperror.ErrCodeConflict, "submission was reviewed concurrently")
	}

	result := &AcceptResult{Submission: accepted}

	if in.Rating != nil {
		rating := &models.Rating{
			ContractID: contract.ID,
			FinderID:   contract.FinderID,
			ClientID:   clientID,
			Rating:     *in.Rating,
			Feedback:   in.RatingFeedback,
		}
		if err := s.finders.AddRating(ctx, rating); err != nil {
			s.log.Warn("rating not recorded, acceptance stands",
				zap.String("contract_id", contract.ID.String()), zap.Error(err))
		} else {
			result.RatingRecorded = true
			if err := s.levels.RecalculateLevel(ctx, contract.FinderID); err != nil {
				s.log.Error("level recalculation failed",
					zap.String("finder_id", contract.FinderID.String()), zap.Error(err))
			}
		}
	}

	return result, nil
}

// RejectSubmission sends the work back. Feedback is mandatory: the finder
// must know what to fix before resubmitting.
func (s *ReviewService) RejectSubmission(ctx context.Context, clientID, submissionID uuid.UUID, feedback string) (*models.OrderSubmission, error) {
	if strings.TrimSpace(feedback) == "" {
		return nil, apperror.New(apperror.ErrCodeValidation, "rejection feedback is required")
	}

	sub, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	contract, err := s.contracts.GetByID(ctx, sub.ContractID)
	if err != nil {
		return nil, err
	}
	if contract.ClientID != clientID {
		return nil, apperror.New(apperror.ErrCodeForbidden, "only the contract's client can review submissions")
	}
	if !models.IsValidSubmissionTransition(sub.Status, models.SubmissionStatusRejected) {
		return nil, apperror.Newf(apperror.ErrCodeInvalidState,
			"submission is already %s", sub.Status)
	}

	rejected, ok, err := s.submissions.Reject(ctx, submissionID, feedback)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperror.New(apperror.ErrCodeConflict, "submission was reviewed concurrently")
	}

	s.logAudit(ctx, &clientID, "user", "submission.rejected", contract.ID, map[string]any{
		"submission_id": submissionID.String(),
	})
	s.publishReviewed(ctx, contract.ID, submissionID, models.SubmissionStatusRejected)

	return rejected, nil
}

// AutoAccept is the worker's forced acceptance of a submission the client
// sat on past the decision deadline. Losing the conditional update to a
// concurrent client review is a silent no-op.
func (s *ReviewService) AutoAccept(ctx context.Context, sub models.OrderSubmission, cfg *models.AutonomousFundConfig) (bool, error) {
	contract, err := s.contracts.GetByID(ctx, sub.ContractID)
	if err != nil {
		return false, err
	}
	// A dispute opened after submission pauses the clock.
	if contract.EscrowStatus != models.EscrowStatusHeld {
		return false, nil
	}

	accepted, err := s.acceptWithConfig(ctx, nil, "system", "submission.auto_accepted", contract, sub.ID, nil, cfg)
	if err != nil {
		return false, err
	}
	return accepted != nil, nil
}

func (s *ReviewService) accept(ctx context.Context, actor *uuid.UUID, actorType, action string, contract *models.Contract, submissionID uuid.UUID, feedback *string) (*models.OrderSubmission, error) {
	cfg, err := s.fundConfig.Get(ctx)
	if err != nil {
		if !apperror.IsConfigUnavailable(err) {
			return nil, err
		}
		cfg = models.DefaultFundConfig()
	}
	return s.acceptWithConfig(ctx, actor, actorType, action, contract, submissionID, feedback, cfg)
}

func (s *ReviewService) acceptWithConfig(ctx context.Context, actor *uuid.UUID, actorType, action string, contract *models.Contract, submissionID uuid.UUID, feedback *string, cfg *models.AutonomousFundConfig) (*models.OrderSubmission, error) {
	releaseDueAt := time.Now().Add(cfg.HoldingPeriod())
	accepted, ok, err := s.submissions.Accept(ctx, submissionID, feedback, releaseDueAt)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	completed, err := s.contracts.MarkCompleted(ctx, contract.ID)
	if err != nil {
		return nil, err
	}
	if !completed {
		s.log.Warn("contract completion was a no-op",
			zap.String("contract_id", contract.ID.String()))
	}

	s.logAudit(ctx, actor, actorType, action, contract.ID, map[string]any{
		"submission_id":  submissionID.String(),
		"release_due_at": releaseDueAt,
	})
	s.publishReviewed(ctx, contract.ID, submissionID, models.SubmissionStatusAccepted)

	return accepted, nil
}

func (s *ReviewService) logAudit(ctx context.Context, actor *uuid.UUID, actorType, action string, contractID uuid.UUID, meta any) {
	err := s.audit.Log(ctx, models.AuditLog{
		ActorUserID: actor,
		ActorType:   actorType,
		Action:      action,
		EntityType:  "contract",
		EntityID:    &contractID,
		Meta:        meta,
	})
	if err != nil {
		s.log.Error("failed to write audit log",
			zap.String("action", action),
			zap.String("contract_id", contractID.String()),
			zap.Error(err))
	}
}

func (s *ReviewService) publishReviewed(ctx context.Context, contractID, submissionID uuid.UUID, status string) {
	err := s.publisher.Publish(ctx, events.StreamContracts, events.Event{
		Type: events.EventSubmissionReviewed,
		Payload: map[string]any{
			"contract_id":   contractID.String(),
			"submission_id": submissionID.String(),
			"status":        status,
		},
	})
	if err != nil {
		s.log.Error("failed to publish review event",
			zap.String("contract_id", contractID.String()),
			zap.Error(err))
	}
}
