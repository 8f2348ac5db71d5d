package scoring

import (
	"fmt"
	"time"

	apperrors "eligibility-workers/internal/common/errors"
	"eligibility-workers/internal/models"
)

// Attribute domains.
const (
	MinAge           = 0
	MaxAge           = 120
	MaxRegionCode    = 65535
	MinIncomeBracket = 1
	MaxIncomeBracket = 5
	MaxExamScore     = 100
	MaxSubScore      = 10
)

const birthDateLayout = "2006-01-02"

// Validate checks every field and reports all problems at once. A partial record is never scored.
// When Age is absent it is derived from BirthDate as full years at now.
func Validate(raw models.RawAttributes, now time.Time) (models.ApplicantAttributes, error) {
	problems := make(map[string]string)

	age, ok := resolveAge(raw, now, problems)
	if ok {
		checkRange(problems, "age", age, MinAge, MaxAge)
	}

	region := required(problems, "regionCode", raw.RegionCode)
	income := required(problems, "incomeBracket", raw.IncomeBracket)
	exam := required(problems, "examScore", raw.ExamScore)
	extra := required(problems, "extracurricularScore", raw.ExtracurricularScore)
	interview := required(problems, "interviewScore", raw.InterviewScore)

	if raw.RegionCode != nil {
		checkRange(problems, "regionCode", region, 0, MaxRegionCode)
	}
	if raw.IncomeBracket != nil {
		checkRange(problems, "incomeBracket", income, MinIncomeBracket, MaxIncomeBracket)
	}
	if raw.ExamScore != nil {
		checkRange(problems, "examScore", exam, 0, MaxExamScore)
	}
	if raw.ExtracurricularScore != nil {
		checkRange(problems, "extracurricularScore", extra, 0, MaxSubScore)
	}
	if raw.InterviewScore != nil {
		checkRange(problems, "interviewScore", interview, 0, MaxSubScore)
	}

	if len(problems) > 0 {
		return models.ApplicantAttributes{}, apperrors.NewValidationError(problems)
	}
	return models.NewApplicantAttributes(age, region, income, exam, extra, interview), nil
}

func resolveAge(raw models.RawAttributes, now time.Time, problems map[string]string) (int, bool) {
	if raw.Age != nil {
		return *raw.Age, true
	}
	if raw.BirthDate == "" {
		problems["age"] = "is required"
		return 0, false
	}
	born, err := time.Parse(birthDateLayout, raw.BirthDate)
	if err != nil {
		problems["birthDate"] = "must be a date in YYYY-MM-DD format"
		return 0, false
	}
	if born.After(now) {
		problems["birthDate"] = "must not be in the future"
		return 0, false
	}
	return AgeAt(born, now), true
}

// AgeAt returns completed years between born and now.
func AgeAt(born, now time.Time) int {
	years := now.Year() - born.Year()
	if now.Month() < born.Month() || (now.Month() == born.Month() && now.Day() < born.Day()) {
		years--
	}
	return years
}

func required(problems map[string]string, field string, v *int) int {
	if v == nil {
		problems[field] = "is required"
		return 0
	}
	return *v
}

func checkRange(problems map[string]string, field string, v, lo, hi int) {
	if v < lo || v > hi {
		problems[field] = fmt.Sprintf("must be between %d and %d", lo, hi)
	}
}
