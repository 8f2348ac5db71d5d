package evaluatescore

import (
	"time"

	"eligibility-workers/internal/common/logger"
	"eligibility-workers/internal/models"
)

type Input struct {
	Attributes models.RawAttributes
}

type Output struct {
	Breakdown    models.ScoreBreakdown `json:"breakdown"`
	Grade        string                `json:"grade"`
	PassingScore int                   `json:"passingScore"`
}

// ToVariables flattens the output into process variables.
func (o *Output) ToVariables() map[string]interface{} {
	vars := o.Breakdown.ToMap()
	vars["grade"] = o.Grade
	vars["passingScore"] = o.PassingScore
	return vars
}

type ServiceDependencies struct {
	Logger logger.Logger
	Now    func() time.Time
}
