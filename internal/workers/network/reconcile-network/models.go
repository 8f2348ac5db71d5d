package reconcilenetwork

import (
	"eligibility-workers/internal/common/logger"
	"eligibility-workers/internal/eligibility/network"
)

type Input struct {
	// CheckOnly reports the state without asking the wallet to switch or add a chain.
	CheckOnly bool `json:"checkOnly"`
}

type ServiceDependencies struct {
	Logger  logger.Logger
	Network network.Checker
}
