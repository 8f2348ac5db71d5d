package evaluatescore

import (
	"context"
	"time"

	"eligibility-workers/internal/common/logger"
	"eligibility-workers/internal/eligibility/scoring"
)

// Service previews a score without touching the wallet or the ledger.
type Service struct {
	logger logger.Logger
	now    func() time.Time
}

func NewService(deps ServiceDependencies) *Service {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Service{logger: deps.Logger, now: now}
}

func (s *Service) Execute(_ context.Context, input *Input) (*Output, error) {
	attrs, err := scoring.Validate(input.Attributes, s.now())
	if err != nil {
		return nil, err
	}

	breakdown := scoring.Evaluate(attrs)

	s.logger.Info("Score evaluated", map[string]interface{}{
		"totalPoints": breakdown.TotalPoints,
		"isEligible":  breakdown.IsEligible,
	})

	return &Output{
		Breakdown:    breakdown,
		Grade:        scoring.Grade(breakdown.TotalPoints),
		PassingScore: scoring.PassingThreshold,
	}, nil
}
