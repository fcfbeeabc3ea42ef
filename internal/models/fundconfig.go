package models

import "time"

// Defaults used when the admin has not configured the fund service yet.
// Earnings must always be computable, so a missing config row is never an
// error for money math.
const (
	DefaultFeePercentage       = 5.0
	DefaultHoldingPeriodHours  = 72  // 3-day release countdown
	DefaultDecisionWindowHours = 120 // 5-day client-silence deadline
)

// AutonomousFundConfig is the admin-mutable singleton driving unattended
// crediting. The worker re-reads it at the start of every sweep cycle;
// MinimumRating/MinimumJobsCompleted gate level advancement only, never
// the crediting itself.
type AutonomousFundConfig struct {
	HoldingPeriodHours   int       `json:"holding_period_hours"`
	AutoCreditEnabled    bool      `json:"auto_credit_enabled"`
	MinimumRating        float64   `json:"minimum_rating"`
	MinimumJobsCompleted int       `json:"minimum_jobs_completed"`
	FeePercentage        float64   `json:"fee_percentage"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// DefaultFundConfig is the documented fallback for a missing config row.
func DefaultFundConfig() *AutonomousFundConfig {
	return &AutonomousFundConfig{
		HoldingPeriodHours:   DefaultHoldingPeriodHours,
		AutoCreditEnabled:    true,
		MinimumRating:        0,
		MinimumJobsCompleted: 0,
		FeePercentage:        DefaultFeePercentage,
	}
}

func (c *AutonomousFundConfig) HoldingPeriod() time.Duration {
	return time.Duration(c.HoldingPeriodHours) * time.Hour
}
