package models

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// FinderLevel is a performance tier. SortOrder is injective: higher order
// means a higher tier. MinRating takes precedence over
// MinReviewPercentage; the percentage form is converted to the 5-star
// scale by dividing by 20.
type FinderLevel struct {
	ID                     uuid.UUID `json:"id"`
	Name                   string    `json:"name"`
	MinJobsCompleted       int       `json:"min_jobs_completed"`
	MinRating              *float64  `json:"min_rating,omitempty"`
	MinReviewPercentage    *float64  `json:"min_review_percentage,omitempty"`
	MonthlyTokens          int       `json:"monthly_tokens"`
	TokenBonusPerProposal  int       `json:"token_bonus_per_proposal"`
	VIPInvitationsPerMonth int       `json:"vip_invitations_per_month"`
	SortOrder              int       `json:"sort_order"`
	IsActive               bool      `json:"is_active"`
	CreatedAt              time.Time `json:"created_at"`
}

// ResolvedMinRating returns the rating threshold on the 5-star scale.
func (l *FinderLevel) ResolvedMinRating() float64 {
	if l.MinRating != nil {
		return *l.MinRating
	}
	if l.MinReviewPercentage != nil {
		return *l.MinReviewPercentage / 20
	}
	return 0
}

// EvaluateLevel maps a finder's stats to the highest active level whose
// thresholds are met. If nothing qualifies the lowest-order active level
// is the floor: every finder has some level. Returns nil only when there
// are no active levels at all.
func EvaluateLevel(jobsCompleted int, averageRating float64, levels []FinderLevel) *FinderLevel {
	active := make([]FinderLevel, 0, len(levels))
	for _, l := range levels {
		if l.IsActive {
			active = append(active, l)
		}
	}
	if len(active) == 0 {
		return nil
	}

	sort.Slice(active, func(i, j int) bool {
		return active[i].SortOrder > active[j].SortOrder
	})

	for i := range active {
		l := &active[i]
		if jobsCompleted >= l.MinJobsCompleted && averageRating >= l.ResolvedMinRating() {
			out := *l
			return &out
		}
	}

	floor := active[len(active)-1]
	return &floor
}
