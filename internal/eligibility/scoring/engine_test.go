package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "eligibility-workers/internal/common/errors"
	"eligibility-workers/internal/models"
)

func intPtr(v int) *int { return &v }

func rawOf(age, region, income, exam, extra, interview int) models.RawAttributes {
	return models.RawAttributes{
		Age:                  intPtr(age),
		RegionCode:           intPtr(region),
		IncomeBracket:        intPtr(income),
		ExamScore:            intPtr(exam),
		ExtracurricularScore: intPtr(extra),
		InterviewScore:       intPtr(interview),
	}
}

var now = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

func TestEvaluate_Scenarios(t *testing.T) {
	tests := []struct {
		name string
		raw  models.RawAttributes
		want models.ScoreBreakdown
	}{
		{
			name: "scenario A",
			raw:  rawOf(15, 44, 2, 85, 8, 9),
			want: models.ScoreBreakdown{Age: 20, Exam: 30, Income: 15, Extracurricular: 8, Interview: 9, TotalPoints: 82, IsEligible: true},
		},
		{
			name: "scenario B",
			raw:  rawOf(28, 1, 4, 92, 7, 10),
			want: models.ScoreBreakdown{Age: 15, Exam: 40, Income: 5, Extracurricular: 7, Interview: 10, TotalPoints: 77, IsEligible: true},
		},
		{
			name: "scenario C",
			raw:  rawOf(70, 7, 5, 50, 2, 3),
			want: models.ScoreBreakdown{Age: 0, Exam: 0, Income: 5, Extracurricular: 2, Interview: 3, TotalPoints: 10, IsEligible: false},
		},
		{
			name: "exactly at threshold",
			raw:  rawOf(12, 0, 1, 70, 10, 0),
			want: models.ScoreBreakdown{Age: 20, Exam: 20, Income: 20, Extracurricular: 10, Interview: 0, TotalPoints: 70, IsEligible: true},
		},
		{
			name: "one below threshold",
			raw:  rawOf(12, 0, 1, 70, 9, 0),
			want: models.ScoreBreakdown{Age: 20, Exam: 20, Income: 20, Extracurricular: 9, Interview: 0, TotalPoints: 69, IsEligible: false},
		},
		{
			name: "maximum",
			raw:  rawOf(10, 0, 1, 100, 10, 10),
			want: models.ScoreBreakdown{Age: 20, Exam: 40, Income: 20, Extracurricular: 10, Interview: 10, TotalPoints: 100, IsEligible: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attrs, err := Validate(tt.raw, now)
			require.NoError(t, err)
			assert.Equal(t, tt.want, Evaluate(attrs))
		})
	}
}

func TestEvaluate_Deterministic(t *testing.T) {
	attrs, err := Validate(rawOf(33, 12, 3, 77, 6, 4), now)
	require.NoError(t, err)
	assert.Equal(t, Evaluate(attrs), Evaluate(attrs))
}

func TestEvaluate_TotalAlwaysInRange(t *testing.T) {
	for age := 0; age <= MaxAge; age += 7 {
		for exam := 0; exam <= MaxExamScore; exam += 9 {
			for income := MinIncomeBracket; income <= MaxIncomeBracket; income++ {
				b := Evaluate(models.NewApplicantAttributes(age, 0, income, exam, 10, 10))
				require.GreaterOrEqual(t, b.TotalPoints, 0)
				require.LessOrEqual(t, b.TotalPoints, MaxTotal)
				require.Equal(t, b.TotalPoints >= PassingThreshold, b.IsEligible)
				require.Equal(t, b.Age+b.Exam+b.Income+b.Extracurricular+b.Interview, b.TotalPoints)
			}
		}
	}
}

func TestEvaluate_ClampsSubScores(t *testing.T) {
	b := Evaluate(models.NewApplicantAttributes(20, 0, 1, 95, 15, -3))
	assert.Equal(t, 10, b.Extracurricular)
	assert.Equal(t, 0, b.Interview)
}

func TestAgePoints_Boundaries(t *testing.T) {
	tests := []struct {
		age  int
		want int
	}{
		{4, 0}, {5, 15}, {9, 15}, {10, 20}, {18, 20}, {19, 15}, {30, 15},
		{31, 10}, {50, 10}, {51, 10}, {65, 10}, {66, 0}, {0, 0}, {120, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, AgePoints(tt.age), "age %d", tt.age)
	}
}

func TestExamPoints_Boundaries(t *testing.T) {
	tests := []struct {
		score int
		want  int
	}{
		{100, 40}, {90, 40}, {89, 30}, {80, 30}, {79, 20}, {70, 20}, {69, 10}, {60, 10}, {59, 0}, {0, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ExamPoints(tt.score), "exam %d", tt.score)
	}
}

func TestIncomePoints(t *testing.T) {
	assert.Equal(t, 20, IncomePoints(1))
	assert.Equal(t, 15, IncomePoints(2))
	assert.Equal(t, 10, IncomePoints(3))
	assert.Equal(t, 5, IncomePoints(4))
	assert.Equal(t, 5, IncomePoints(5))
	assert.Equal(t, 0, IncomePoints(6))
}

func TestGrade(t *testing.T) {
	assert.Equal(t, "A+", Grade(90))
	assert.Equal(t, "A", Grade(82))
	assert.Equal(t, "B+", Grade(77))
	assert.Equal(t, "B", Grade(60))
	assert.Equal(t, "C", Grade(50))
	assert.Equal(t, "D", Grade(10))
}

func TestValidate_MissingFields(t *testing.T) {
	_, err := Validate(models.RawAttributes{ExamScore: intPtr(80)}, now)

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	stdErr := apperrors.AsStandard(err)
	fields := stdErr.Metadata["fields"].(map[string]string)
	assert.Len(t, fields, 5)
	assert.Contains(t, fields, "age")
	assert.Contains(t, fields, "regionCode")
	assert.Contains(t, fields, "incomeBracket")
	assert.Contains(t, fields, "extracurricularScore")
	assert.Contains(t, fields, "interviewScore")
}

func TestValidate_OutOfDomain(t *testing.T) {
	tests := []struct {
		name  string
		raw   models.RawAttributes
		field string
	}{
		{"age too high", rawOf(121, 0, 1, 50, 1, 1), "age"},
		{"negative age", rawOf(-1, 0, 1, 50, 1, 1), "age"},
		{"negative region", rawOf(20, -5, 1, 50, 1, 1), "regionCode"},
		{"region too wide", rawOf(20, 70000, 1, 50, 1, 1), "regionCode"},
		{"income zero", rawOf(20, 0, 0, 50, 1, 1), "incomeBracket"},
		{"income six", rawOf(20, 0, 6, 50, 1, 1), "incomeBracket"},
		{"exam over 100", rawOf(20, 0, 1, 101, 1, 1), "examScore"},
		{"extracurricular over 10", rawOf(20, 0, 1, 50, 11, 1), "extracurricularScore"},
		{"interview negative", rawOf(20, 0, 1, 50, 1, -1), "interviewScore"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Validate(tt.raw, now)
			require.Error(t, err)
			fields := apperrors.AsStandard(err).Metadata["fields"].(map[string]string)
			assert.Contains(t, fields, tt.field)
		})
	}
}

func TestValidate_DerivesAgeFromBirthDate(t *testing.T) {
	raw := rawOf(0, 1, 2, 85, 8, 9)
	raw.Age = nil
	raw.BirthDate = "2011-10-19"

	attrs, err := Validate(raw, now)
	require.NoError(t, err)
	assert.Equal(t, 14, attrs.Age())

	raw.BirthDate = "2011-10-18"
	attrs, err = Validate(raw, now)
	require.NoError(t, err)
	assert.Equal(t, 15, attrs.Age())
}

func TestValidate_BadBirthDate(t *testing.T) {
	raw := rawOf(0, 1, 2, 85, 8, 9)
	raw.Age = nil

	raw.BirthDate = "18/10/2011"
	_, err := Validate(raw, now)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	raw.BirthDate = "2030-01-01"
	_, err = Validate(raw, now)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}
