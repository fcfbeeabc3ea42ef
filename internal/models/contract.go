package models

import (
	"time"

	"github.com/google/uuid"
)

// Escrow statuses
const (
	EscrowStatusPending  = "pending"
	EscrowStatusHeld     = "held"
	EscrowStatusDisputed = "disputed"
	EscrowStatusReleased = "released"
)

// Valid escrow transitions: from -> []to
var ValidEscrowTransitions = map[string][]string{
	EscrowStatusPending:  {EscrowStatusHeld},
	EscrowStatusHeld:     {EscrowStatusDisputed, EscrowStatusReleased},
	EscrowStatusDisputed: {EscrowStatusReleased},
	EscrowStatusReleased: {},
}

func IsValidEscrowTransition(from, to string) bool {
	allowed, ok := ValidEscrowTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// Contract is the agreed engagement between a client and a finder for a
// fixed amount. Amount is in currency minor units and never changes after
// creation. FeeBPS is snapshotted from the platform fee setting at
// creation time so later admin changes do not reprice funded work.
type Contract struct {
	ID           uuid.UUID  `json:"id"`
	RequestID    uuid.UUID  `json:"request_id"`
	ProposalID   uuid.UUID  `json:"proposal_id"`
	FinderID     uuid.UUID  `json:"finder_id"`
	ClientID     uuid.UUID  `json:"client_id"`
	Amount       int64      `json:"amount"` // minor units
	FeeBPS       int        `json:"fee_bps"`
	EscrowStatus string     `json:"escrow_status"`
	IsCompleted  bool       `json:"is_completed"`
	Credited     bool       `json:"credited"`
	PlatformFee  *int64     `json:"platform_fee,omitempty"` // recorded at credit
	NetEarnings  *int64     `json:"net_earnings,omitempty"` // recorded at credit
	CreatedAt    time.Time  `json:"created_at"`
	FundedAt     *time.Time `json:"funded_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	CreditedAt   *time.Time `json:"credited_at,omitempty"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// ContractWithSubmissions embeds Contract plus its submission history,
// newest first.
type ContractWithSubmissions struct {
	Contract
	Submissions []OrderSubmission `json:"submissions,omitempty"`
}
