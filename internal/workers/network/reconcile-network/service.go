package reconcilenetwork

import (
	"context"

	"eligibility-workers/internal/common/logger"
	"eligibility-workers/internal/eligibility/network"
	"eligibility-workers/internal/models"
)

type Service struct {
	logger  logger.Logger
	network network.Checker
}

func NewService(deps ServiceDependencies) *Service {
	log := deps.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Service{logger: log, network: deps.Network}
}

// Execute brings the wallet onto the target network, or only inspects it when input.CheckOnly is set.
// A check-only mismatch is reported in the state, not as an error.
func (s *Service) Execute(ctx context.Context, input *Input) (models.NetworkState, error) {
	if input.CheckOnly {
		return s.network.CheckNetwork(ctx)
	}

	state, err := s.network.Reconcile(ctx)
	if err != nil {
		return state, err
	}
	s.logger.Info("Wallet network reconciled", map[string]interface{}{
		"activeChainId": state.ActiveChainID,
		"targetNetwork": state.TargetDisplayName,
	})
	return state, nil
}
