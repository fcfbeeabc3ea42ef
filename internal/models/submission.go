package models

import (
	"time"

	"github.com/google/uuid"
)

// Submission statuses
const (
	SubmissionStatusSubmitted = "submitted"
	SubmissionStatusAccepted  = "accepted"
	SubmissionStatusRejected  = "rejected"
)

// Valid submission transitions: from -> []to. Accept, reject and the
// worker's auto-release all race on the submitted state; the repository
// enforces the transition as a conditional update so only one wins.
var ValidSubmissionTransitions = map[string][]string{
	SubmissionStatusSubmitted: {SubmissionStatusAccepted, SubmissionStatusRejected},
	SubmissionStatusAccepted:  {},
	SubmissionStatusRejected:  {},
}

func IsValidSubmissionTransition(from, to string) bool {
	allowed, ok := ValidSubmissionTransitions[from]
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

// OrderSubmission is a finder's deliverable submitted against a contract.
// DecisionDueAt is the client-silence deadline (set while submitted);
// ReleaseDueAt is the fund-release countdown (set at acceptance). They are
// separate fields on purpose: exactly one countdown is active for a given
// status.
type OrderSubmission struct {
	ID              uuid.UUID  `json:"id"`
	ContractID      uuid.UUID  `json:"contract_id"`
	FinderID        uuid.UUID  `json:"finder_id"`
	SubmissionText  string     `json:"submission_text"`
	AttachmentPaths []string   `json:"attachment_paths,omitempty"`
	Status          string     `json:"status"`
	ClientFeedback  *string    `json:"client_feedback,omitempty"`
	SubmittedAt     time.Time  `json:"submitted_at"`
	ReviewedAt      *time.Time `json:"reviewed_at,omitempty"`
	DecisionDueAt   *time.Time `json:"decision_due_at,omitempty"`
	ReleaseDueAt    *time.Time `json:"release_due_at,omitempty"`
}
