package models

import (
	"time"

	"github.com/google/uuid"
)

// Finder holds the per-finder balance and performance stats the
// settlement engine maintains. AvailableBalance only grows through the
// credit transaction; pending earnings are derived by query, never stored.
type Finder struct {
	UserID           uuid.UUID  `json:"user_id"`
	AvailableBalance int64      `json:"available_balance"` // minor units
	JobsCompleted    int        `json:"jobs_completed"`
	RatingSum        int        `json:"rating_sum"`
	RatingCount      int        `json:"rating_count"`
	CurrentLevelID   *uuid.UUID `json:"current_level_id,omitempty"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// AverageRating returns 0 for an unrated finder.
func (f *Finder) AverageRating() float64 {
	if f.RatingCount == 0 {
		return 0
	}
	return float64(f.RatingSum) / float64(f.RatingCount)
}

// Rating is the client's 1-5 score for a contract. One per contract.
type Rating struct {
	ID         uuid.UUID `json:"id"`
	ContractID uuid.UUID `json:"contract_id"`
	FinderID   uuid.UUID `json:"finder_id"`
	ClientID   uuid.UUID `json:"client_id"`
	Rating     int       `json:"rating"`
	Feedback   *string   `json:"feedback,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// FinderBalance is the balance view returned to the finder: withdrawable
// funds plus net earnings still inside the holding period.
type FinderBalance struct {
	AvailableBalance int64   `json:"available_balance"`
	PendingBalance   int64   `json:"pending_balance"`
	JobsCompleted    int     `json:"jobs_completed"`
	AverageRating    float64 `json:"average_rating"`
}
