package scoring

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "eligibility-workers/internal/common/errors"
)

func TestRawFromVariables(t *testing.T) {
	raw, err := RawFromVariables(map[string]interface{}{
		"age":                  float64(15),
		"regionCode":           float64(7),
		"incomeBracket":        float64(2),
		"examScore":            float64(85),
		"extracurricularScore": float64(8),
		"interviewScore":       float64(9),
		"applicationId":        "unrelated process variable",
	})
	require.NoError(t, err)
	require.NotNil(t, raw.Age)
	assert.Equal(t, 15, *raw.Age)
	assert.Equal(t, 85, *raw.ExamScore)
	assert.Empty(t, raw.BirthDate)
}

func TestRawFromVariables_MissingFieldsStayNil(t *testing.T) {
	raw, err := RawFromVariables(map[string]interface{}{"birthDate": "2010-05-01"})
	require.NoError(t, err)
	assert.Nil(t, raw.Age)
	assert.Nil(t, raw.ExamScore)
	assert.Equal(t, "2010-05-01", raw.BirthDate)
}

func TestRawFromVariables_RejectsWrongTypes(t *testing.T) {
	_, err := RawFromVariables(map[string]interface{}{
		"age":       "fifteen",
		"examScore": 85.5,
		"birthDate": "01/05/2010",
	})
	require.Error(t, err)

	var stdErr *apperrors.StandardError
	require.True(t, errors.As(err, &stdErr))
	assert.Equal(t, apperrors.ErrCodeValidationFailed, stdErr.Code)
	fields := stdErr.Metadata["fields"].(map[string]string)
	assert.Contains(t, fields, "age")
	assert.Contains(t, fields, "examScore")
	assert.Contains(t, fields, "birthDate")
}
