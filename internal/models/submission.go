package models

import "time"

// EncryptedPayload holds one opaque channel per attribute. Only the ledger authority reads it.
type EncryptedPayload struct {
	Scheme          string `json:"scheme"`
	Age             []byte `json:"age"`
	Region          []byte `json:"region"`
	Income          []byte `json:"income"`
	Exam            []byte `json:"exam"`
	Extracurricular []byte `json:"extracurricular"`
	Interview       []byte `json:"interview"`
}

// Channels returns the channels in contract argument order.
func (p EncryptedPayload) Channels() [][]byte {
	return [][]byte{p.Age, p.Region, p.Income, p.Exam, p.Extracurricular, p.Interview}
}

// SubmissionStatus reports whether the ledger confirmation was observed.
type SubmissionStatus string

const (
	SubmissionPending   SubmissionStatus = "pending"
	SubmissionConfirmed SubmissionStatus = "confirmed"
)

// SubmissionReceipt is the only state the client keeps after a submission.
type SubmissionReceipt struct {
	ReceiptID   string           `json:"receiptId"`
	Identity    string           `json:"identity"`
	TxHash      string           `json:"txHash"`
	Status      SubmissionStatus `json:"status"`
	BlockNumber uint64           `json:"blockNumber,omitempty"`
	SubmittedAt time.Time        `json:"submittedAt"`
	ConfirmedAt *time.Time       `json:"confirmedAt,omitempty"`
	// Preview is the client-side evaluation; the ledger recomputes authoritatively.
	Preview ScoreBreakdown `json:"preview"`
}

func (r SubmissionReceipt) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"receiptId":          r.ReceiptID,
		"identity":           r.Identity,
		"txHash":             r.TxHash,
		"submissionStatus":   string(r.Status),
		"submittedAt":        r.SubmittedAt.Format(time.RFC3339),
		"previewTotalPoints": r.Preview.TotalPoints,
		"previewEligible":    r.Preview.IsEligible,
	}
}

// SubmissionRecord is what the ledger authority stores for an identity.
type SubmissionRecord struct {
	Identity    string         `json:"identity"`
	Breakdown   ScoreBreakdown `json:"breakdown"`
	SubmittedAt time.Time      `json:"submittedAt"`
}
