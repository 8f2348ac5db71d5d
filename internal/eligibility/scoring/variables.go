package scoring

import (
	"encoding/json"

	apperrors "eligibility-workers/internal/common/errors"
	"eligibility-workers/internal/common/validation"
	"eligibility-workers/internal/models"
)

// AttributesSchema checks the shape of attribute job variables. Presence and domains are left to Validate
// so that every problem is reported together.
func AttributesSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type: "object",
		Properties: map[string]validation.Property{
			"age":                  {Type: "integer", Description: "Applicant age in full years"},
			"birthDate":            {Type: "string", Description: "Used when age is absent", Pattern: `^\d{4}-\d{2}-\d{2}$`},
			"regionCode":           {Type: "integer", Description: "Region or country code"},
			"incomeBracket":        {Type: "integer", Description: "Household income bracket, 1 is lowest"},
			"examScore":            {Type: "integer", Description: "Exam score"},
			"extracurricularScore": {Type: "integer", Description: "Extracurricular rating"},
			"interviewScore":       {Type: "integer", Description: "Interview rating"},
		},
		AdditionalProperties: true,
	}
}

// RawFromVariables decodes attribute job variables. Missing fields stay nil.
func RawFromVariables(vars map[string]interface{}) (models.RawAttributes, error) {
	result := validation.ValidateInput(vars, AttributesSchema())
	if !result.Valid {
		fields := make(map[string]string, len(result.Errors))
		for _, e := range result.Errors {
			fields[e.Field] = e.Message
		}
		return models.RawAttributes{}, apperrors.NewValidationError(fields)
	}

	data, err := json.Marshal(vars)
	if err != nil {
		return models.RawAttributes{}, apperrors.NewInputParsingError(err.Error())
	}
	var raw models.RawAttributes
	if err := json.Unmarshal(data, &raw); err != nil {
		return models.RawAttributes{}, apperrors.NewInputParsingError(err.Error())
	}
	return raw, nil
}
