package services

import (
	"context"

	"github.com/finder-market/backend/internal/apperror"
	"github.com/finder-market/backend/internal/earnings"
	"github.com/finder-market/backend/internal/events"
	"github.com/finder-market/backend/internal/models"
	"github.com/finder-market/backend/internal/repositories"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ContractService struct {
	contracts   ContractStore
	submissions SubmissionStore
	finders     FinderStore
	fundConfig  FundConfigStore
	audit       AuditStore
	publisher   events.Publisher
	log         *zap.Logger
}

func NewContractService(
	contracts ContractStore,
	submissions SubmissionStore,
	finders FinderStore,
	fundConfig FundConfigStore,
	audit AuditStore,
	publisher events.Publisher,
	log *zap.Logger,
) *ContractService {
	return &ContractService{
		contracts:   contracts,
		submissions: submissions,
		finders:     finders,
		fundConfig:  fundConfig,
		audit:       audit,
		publisher:   publisher,
		log:         log,
	}
}

type CreateContractInput struct {
	RequestID  uuid.UUID
	ProposalID uuid.UUID
	FinderID   uuid.UUID
	Amount     int64 // minor units
}

// CreateContract opens a pending contract between the calling client and a
// finder. The fee rate is snapshotted from the current platform config so
// later admin changes never reprice this contract.
func (s *ContractService) CreateContract(ctx context.Context, clientID uuid.UUID, in CreateContractInput) (*models.Contract, error) {
	if in.Amount <= 0 {
		return nil, apperror.New(apperror.ErrCodeValidation, "amount must be positive")
	}
	if in.FinderID == clientID {
		return nil, apperror.New(apperror.ErrCodeValidation, "client and finder must be different users")
	}

	feeBPS := earnings.DefaultFeeBPS
	if cfg, err := s.fundConfig.Get(ctx); err == nil {
		feeBPS = earnings.FeePercentToBPS(cfg.FeePercentage)
	} else if !apperror.IsConfigUnavailable(err) {
		return nil, err
	}

	if err := s.finders.EnsureExists(ctx, in.FinderID); err != nil {
		return nil, err
	}

	contract := &models.Contract{
		RequestID:    in.RequestID,
		ProposalID:   in.ProposalID,
		FinderID:     in.FinderID,
		ClientID:     clientID,
		Amount:       in.Amount,
		FeeBPS:       feeBPS,
		EscrowStatus: models.EscrowStatusPending,
	}
	if err := s.contracts.Create(ctx, contract); err != nil {
		return nil, err
	}

	s.logAudit(ctx, &clientID, "user", "contract.created", contract.ID, map[string]any{
		"amount":  contract.Amount,
		"fee_bps": contract.FeeBPS,
	})

	return contract, nil
}

// FundEscrow moves the contract from pending to held on behalf of the
// client. Funding is idempotency-safe: a second call hits the conditional
// update and reports a state conflict instead of double funding.
func (s *ContractService) FundEscrow(ctx context.Context, clientID, contractID uuid.UUID) (*models.Contract, error) {
	contract, err := s.contracts.GetByID(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if contract.ClientID != clientID {
		return nil, apperror.New(apperror.ErrCodeForbidden, "only the contract's client can fund escrow")
	}
	if !models.IsValidEscrowTransition(contract.EscrowStatus, models.EscrowStatusHeld) {
		return nil, apperror.Newf(apperror.ErrCodeInvalidState,
			"cannot fund escrow in %s state", contract.EscrowStatus)
	}

	ok, err := s.contracts.MarkFunded(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperror.New(apperror.ErrCodeConflict, "contract is no longer pending")
	}

	s.logAudit(ctx, &clientID, "user", "escrow.funded", contractID, map[string]any{
		"amount": contract.Amount,
	})
	s.publishStatus(ctx, contractID, models.EscrowStatusPending, models.EscrowStatusHeld)

	return s.contracts.GetByID(ctx, contractID)
}

// OpenDispute freezes a held escrow. Disputed contracts are invisible to
// the autonomous fund until resolved out of band.
func (s *ContractService) OpenDispute(ctx context.Context, clientID, contractID uuid.UUID) (*models.Contract, error) {
	contract, err := s.contracts.GetByID(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if contract.ClientID != clientID {
		return nil, apperror.New(apperror.ErrCodeForbidden, "only the contract's client can open a dispute")
	}
	if !models.IsValidEscrowTransition(contract.EscrowStatus, models.EscrowStatusDisputed) {
		return nil, apperror.Newf(apperror.ErrCodeInvalidState,
			"cannot dispute escrow in %s state", contract.EscrowStatus)
	}

	ok, err := s.contracts.MarkDisputed(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperror.New(apperror.ErrCodeConflict, "contract is no longer held")
	}

	s.logAudit(ctx, &clientID, "user", "escrow.disputed", contractID, nil)
	s.publishStatus(ctx, contractID, models.EscrowStatusHeld, models.EscrowStatusDisputed)

	return s.contracts.GetByID(ctx, contractID)
}

// GetContract returns the contract with its submission history. Only the
// two parties (and admins) may look.
func (s *ContractService) GetContract(ctx context.Context, userID uuid.UUID, isAdmin bool, contractID uuid.UUID) (*models.ContractWithSubmissions, error) {
	contract, err := s.contracts.GetByID(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && contract.ClientID != userID && contract.FinderID != userID {
		return nil, apperror.New(apperror.ErrCodeForbidden, "not a party to this contract")
	}

	subs, err := s.submissions.ListByContract(ctx, contractID)
	if err != nil {
		return nil, err
	}
	return &models.ContractWithSubmissions{Contract: *contract, Submissions: subs}, nil
}

// ListContracts returns the caller's contracts filtered by their role in
// them.
func (s *ContractService) ListContracts(ctx context.Context, userID uuid.UUID, role string, status *string, limit, offset int) ([]models.Contract, error) {
	filter := repositories.ContractFilter{Status: status, Limit: limit, Offset: offset}
	switch role {
	case models.RoleClient:
		filter.ClientID = &userID
	case models.RoleFinder:
		filter.FinderID = &userID
	case models.RoleAdmin:
		// no party filter
	default:
		return nil, apperror.New(apperror.ErrCodeForbidden, "unknown role")
	}
	return s.contracts.List(ctx, filter)
}

// GetContractEvents returns the audit trail for a contract.
func (s *ContractService) GetContractEvents(ctx context.Context, userID uuid.UUID, isAdmin bool, contractID uuid.UUID, limit, offset int) ([]models.AuditLog, error) {
	contract, err := s.contracts.GetByID(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && contract.ClientID != userID && contract.FinderID != userID {
		return nil, apperror.New(apperror.ErrCodeForbidden, "not a party to this contract")
	}
	return s.audit.GetByEntity(ctx, "contract", contractID, limit, offset)
}

func (s *ContractService) logAudit(ctx context.Context, actor *uuid.UUID, actorType, action string, contractID uuid.UUID, meta any) {
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

func (s *ContractService) publishStatus(ctx context.Context, contractID uuid.UUID, from, to string) {
	err := s.publisher.Publish(ctx, events.StreamContracts, events.Event{
		Type: events.EventEscrowStatusChanged,
		Payload: map[string]any{
			"contract_id": contractID.String(),
			"from":        from,
			"to":          to,
		},
	})
	if err != nil {
		s.log.Error("failed to publish escrow status event",
			zap.String("contract_id", contractID.String()),
			zap.Error(err))
	}
}
