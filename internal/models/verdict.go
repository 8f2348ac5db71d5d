package models

import "time"

type VerdictStatus string

const (
	VerdictNotSubmitted VerdictStatus = "not_submitted"
	VerdictPending      VerdictStatus = "pending"
	VerdictEligible     VerdictStatus = "eligible"
	VerdictNotEligible  VerdictStatus = "not_eligible"
)

// Verdict sources.
const (
	VerdictSourceLedger  = "ledger"
	VerdictSourceGateway = "gateway"
	VerdictSourceReceipt = "receipt"
)

// VerdictView is what checkEligibility returns. Pointer fields are nil when the authority did not release them.
type VerdictView struct {
	Identity     string          `json:"identity"`
	Status       VerdictStatus   `json:"status"`
	Eligible     *bool           `json:"eligible,omitempty"`
	TotalPoints  *int            `json:"totalPoints,omitempty"`
	Breakdown    *ScoreBreakdown `json:"breakdown,omitempty"`
	Grade        string          `json:"grade,omitempty"`
	PassingScore int             `json:"passingScore"`
	SubmittedAt  *time.Time      `json:"submittedAt,omitempty"`
	Source       string          `json:"source,omitempty"`
}

func (v VerdictView) ToMap() map[string]interface{} {
	out := map[string]interface{}{
		"identity":      v.Identity,
		"verdictStatus": string(v.Status),
		"passingScore":  v.PassingScore,
		"verdictSource": v.Source,
		"grade":         v.Grade,
	}
	if v.Eligible != nil {
		out["eligible"] = *v.Eligible
	}
	if v.TotalPoints != nil {
		out["totalPoints"] = *v.TotalPoints
	}
	if v.Breakdown != nil {
		for k, val := range v.Breakdown.ToMap() {
			out[k] = val
		}
	}
	if v.SubmittedAt != nil {
		out["submittedAt"] = v.SubmittedAt.Format(time.RFC3339)
	}
	return out
}
