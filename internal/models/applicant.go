package models

// RawAttributes is applicant input as it arrives from a form or job variables.
// Nil fields are missing, never defaulted.
type RawAttributes struct {
	Age                  *int   `json:"age,omitempty"`
	BirthDate            string `json:"birthDate,omitempty"` // 2006-01-02, used when Age is nil
	RegionCode           *int   `json:"regionCode,omitempty"`
	IncomeBracket        *int   `json:"incomeBracket,omitempty"`
	ExamScore            *int   `json:"examScore,omitempty"`
	ExtracurricularScore *int   `json:"extracurricularScore,omitempty"`
	InterviewScore       *int   `json:"interviewScore,omitempty"`
}

// ApplicantAttributes is a validated, immutable attribute set.
// Only scoring.Validate constructs one with fields in domain.
type ApplicantAttributes struct {
	age                  int
	regionCode           int
	incomeBracket        int
	examScore            int
	extracurricularScore int
	interviewScore       int
}

// NewApplicantAttributes builds the value without domain checks. Callers outside scoring
// must go through scoring.Validate.
func NewApplicantAttributes(age, regionCode, incomeBracket, examScore, extracurricular, interview int) ApplicantAttributes {
	return ApplicantAttributes{
		age:                  age,
		regionCode:           regionCode,
		incomeBracket:        incomeBracket,
		examScore:            examScore,
		extracurricularScore: extracurricular,
		interviewScore:       interview,
	}
}

func (a ApplicantAttributes) Age() int                  { return a.age }
func (a ApplicantAttributes) RegionCode() int           { return a.regionCode }
func (a ApplicantAttributes) IncomeBracket() int        { return a.incomeBracket }
func (a ApplicantAttributes) ExamScore() int            { return a.examScore }
func (a ApplicantAttributes) ExtracurricularScore() int { return a.extracurricularScore }
func (a ApplicantAttributes) InterviewScore() int       { return a.interviewScore }
