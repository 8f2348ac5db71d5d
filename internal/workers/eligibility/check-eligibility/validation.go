package checkeligibility

import (
	"eligibility-workers/internal/common/validation"
	"eligibility-workers/internal/eligibility/scoring"
	"eligibility-workers/internal/models"
)

const addressPattern = "^0x[0-9a-fA-F]{40}$"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type: "object",
		Properties: map[string]validation.Property{
			"identity": {
				Type:        "string",
				Description: "Address to look up; defaults to the wallet's address",
				Pattern:     addressPattern,
			},
		},
		AdditionalProperties: true,
	}
}

func GetOutputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"identity", "verdictStatus", "passingScore"},
		Properties: map[string]validation.Property{
			"identity": {Type: "string", Pattern: addressPattern},
			"verdictStatus": {
				Type: "string",
				Enum: []string{
					string(models.VerdictNotSubmitted),
					string(models.VerdictPending),
					string(models.VerdictEligible),
					string(models.VerdictNotEligible),
				},
			},
			"eligible":     {Type: "boolean"},
			"totalPoints":  validation.Range("Total released by the ledger", 0, scoring.MaxTotal),
			"passingScore": validation.Range("Eligibility threshold", scoring.PassingThreshold, scoring.PassingThreshold),
			"grade":        {Type: "string"},
			"verdictSource": {
				Type: "string",
				Enum: []string{"", models.VerdictSourceLedger, models.VerdictSourceGateway, models.VerdictSourceReceipt},
			},
			"agePoints":             validation.Range("Age component", 0, scoring.MaxAgePoints),
			"examPoints":            validation.Range("Exam component", 0, scoring.MaxExamPoints),
			"incomePoints":          validation.Range("Income component", 0, scoring.MaxIncomePoints),
			"extracurricularPoints": validation.Range("Extracurricular component", 0, scoring.MaxExtracurricularPoints),
			"interviewPoints":       validation.Range("Interview component", 0, scoring.MaxInterviewPoints),
			"isEligible":            {Type: "boolean"},
			"submittedAt":           {Type: "string", Format: "date-time"},
		},
		AdditionalProperties: false,
	}
}
