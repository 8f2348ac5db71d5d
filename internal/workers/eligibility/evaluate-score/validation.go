package evaluatescore

import (
	"eligibility-workers/internal/common/validation"
	"eligibility-workers/internal/eligibility/scoring"
)

func GetOutputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"totalPoints", "isEligible", "grade", "passingScore"},
		Properties: map[string]validation.Property{
			"agePoints":             validation.Range("Age component", 0, scoring.MaxAgePoints),
			"examPoints":            validation.Range("Exam component", 0, scoring.MaxExamPoints),
			"incomePoints":          validation.Range("Income component", 0, scoring.MaxIncomePoints),
			"extracurricularPoints": validation.Range("Extracurricular component", 0, scoring.MaxExtracurricularPoints),
			"interviewPoints":       validation.Range("Interview component", 0, scoring.MaxInterviewPoints),
			"totalPoints":           validation.Range("Sum of components", 0, scoring.MaxTotal),
			"isEligible": {
				Type:        "boolean",
				Description: "totalPoints >= passingScore",
			},
			"grade": {
				Type:        "string",
				Description: "Letter grade for totalPoints",
				Enum:        []string{"A+", "A", "B+", "B", "C", "D"},
			},
			"passingScore": validation.Range("Eligibility threshold", scoring.PassingThreshold, scoring.PassingThreshold),
		},
		AdditionalProperties: false,
	}
}
