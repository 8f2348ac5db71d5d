package submitapplication

import (
	"eligibility-workers/internal/common/validation"
	"eligibility-workers/internal/eligibility/scoring"
	"eligibility-workers/internal/models"
)

func GetOutputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"receiptId", "identity", "txHash", "submissionStatus", "submittedAt"},
		Properties: map[string]validation.Property{
			"receiptId": {
				Type:        "string",
				Description: "Client-side receipt id",
				Format:      "uuid",
			},
			"identity": {
				Type:        "string",
				Description: "Wallet address that signed the submission",
				Pattern:     "^0x[0-9a-fA-F]{40}$",
			},
			"txHash": {
				Type:        "string",
				Description: "Submission transaction hash",
				Pattern:     "^0x[0-9a-fA-F]{64}$",
			},
			"submissionStatus": {
				Type: "string",
				Enum: []string{string(models.SubmissionPending), string(models.SubmissionConfirmed)},
			},
			"submittedAt": {
				Type:   "string",
				Format: "date-time",
			},
			"previewTotalPoints": validation.Range("Client-side preview of the total", 0, scoring.MaxTotal),
			"previewEligible": {
				Type:        "boolean",
				Description: "Client-side preview of the verdict",
			},
		},
		AdditionalProperties: false,
	}
}
