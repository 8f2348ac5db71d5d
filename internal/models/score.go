package models

// ScoreBreakdown is recomputed on every evaluation and never persisted client-side.
type ScoreBreakdown struct {
	Age             int  `json:"age"`
	Exam            int  `json:"exam"`
	Income          int  `json:"income"`
	Extracurricular int  `json:"extracurricular"`
	Interview       int  `json:"interview"`
	TotalPoints     int  `json:"totalPoints"`
	IsEligible      bool `json:"isEligible"`
}

// ToMap flattens the breakdown into job variables.
func (b ScoreBreakdown) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"agePoints":             b.Age,
		"examPoints":            b.Exam,
		"incomePoints":          b.Income,
		"extracurricularPoints": b.Extracurricular,
		"interviewPoints":       b.Interview,
		"totalPoints":           b.TotalPoints,
		"isEligible":            b.IsEligible,
	}
}
