package dto

type CreateContractRequest struct {
	RequestID  string `json:"request_id"`
	ProposalID string `json:"proposal_id"`
	FinderID   string `json:"finder_id"`
	Amount     int64  `json:"amount"` // minor units
}

type SubmitWorkRequest struct {
	SubmissionText  string   `json:"submission_text"`
	AttachmentPaths []string `json:"attachment_paths,omitempty"`
}

type AcceptSubmissionRequest struct {
	Feedback       *string `json:"feedback,omitempty"`
	Rating         *int    `json:"rating,omitempty"`
	RatingFeedback *string `json:"rating_feedback,omitempty"`
}

type RejectSubmissionRequest struct {
	Feedback string `json:"feedback"`
}

type UpdateFundConfigRequest struct {
	HoldingPeriodHours   *int     `json:"holding_period_hours,omitempty"`
	AutoCreditEnabled    *bool    `json:"auto_credit_enabled,omitempty"`
	MinimumRating        *float64 `json:"minimum_rating,omitempty"`
	MinimumJobsCompleted *int     `json:"minimum_jobs_completed,omitempty"`
	FeePercentage        *float64 `json:"fee_percentage,omitempty"`
}
