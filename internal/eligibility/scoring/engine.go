// Package scoring turns validated applicant attributes into a point breakdown and verdict.
// Nothing here performs I/O; the same attributes always yield the same breakdown.
package scoring

import "eligibility-workers/internal/models"

// PassingThreshold is the minimum total for an eligible verdict.
const PassingThreshold = 70

// Component maxima. They sum to MaxTotal.
const (
	MaxAgePoints             = 20
	MaxExamPoints            = 40
	MaxIncomePoints          = 20
	MaxExtracurricularPoints = 10
	MaxInterviewPoints       = 10
	MaxTotal                 = 100
)

// Evaluate scores validated attributes. It has no failure path.
func Evaluate(a models.ApplicantAttributes) models.ScoreBreakdown {
	b := models.ScoreBreakdown{
		Age:             AgePoints(a.Age()),
		Exam:            ExamPoints(a.ExamScore()),
		Income:          IncomePoints(a.IncomeBracket()),
		Extracurricular: clamp(a.ExtracurricularScore(), 0, MaxExtracurricularPoints),
		Interview:       clamp(a.InterviewScore(), 0, MaxInterviewPoints),
	}
	b.TotalPoints = clamp(b.Age+b.Exam+b.Income+b.Extracurricular+b.Interview, 0, MaxTotal)
	b.IsEligible = b.TotalPoints >= PassingThreshold
	return b
}

// AgePoints uses closed, disjoint bands checked from the top down.
func AgePoints(age int) int {
	switch {
	case age >= 51 && age <= 65:
		return 10
	case age >= 31 && age <= 50:
		return 10
	case age >= 19 && age <= 30:
		return 15
	case age >= 10 && age <= 18:
		return 20
	case age >= 5 && age <= 9:
		return 15
	default:
		return 0
	}
}

// ExamPoints awards the highest qualifying bracket.
func ExamPoints(score int) int {
	switch {
	case score >= 90:
		return 40
	case score >= 80:
		return 30
	case score >= 70:
		return 20
	case score >= 60:
		return 10
	default:
		return 0
	}
}

// IncomePoints favours lower brackets. Out-of-domain brackets score nothing; Validate rejects them first.
func IncomePoints(bracket int) int {
	switch bracket {
	case 1:
		return 20
	case 2:
		return 15
	case 3:
		return 10
	case 4, 5:
		return 5
	default:
		return 0
	}
}

// Grade maps a total to the letter shown next to a released verdict.
func Grade(total int) string {
	switch {
	case total >= 90:
		return "A+"
	case total >= 80:
		return "A"
	case total >= 70:
		return "B+"
	case total >= 60:
		return "B"
	case total >= 50:
		return "C"
	default:
		return "D"
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
