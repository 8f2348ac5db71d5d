package checkeligibility

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"eligibility-workers/internal/common/gateway"
	"eligibility-workers/internal/common/ledger"
	"eligibility-workers/internal/common/logger"
	"eligibility-workers/internal/eligibility/audit"
	"eligibility-workers/internal/eligibility/events"
	"eligibility-workers/internal/eligibility/network"
	"eligibility-workers/internal/eligibility/receipts"
)

type Input struct {
	// Identity is the address to look up. Empty means the wallet's own address.
	Identity string `json:"identity,omitempty"`
}

// IdentitySource returns the authenticated wallet address.
type IdentitySource interface {
	Address(ctx context.Context) (common.Address, error)
}

type ServiceDependencies struct {
	Logger   logger.Logger
	Network  network.Checker
	Wallet   IdentitySource
	Ledger   ledger.Authority
	Gateway  gateway.Decrypter
	Receipts receipts.Store
	Audit    audit.Recorder
	Events   events.Publisher
	// VerdictMode is config.VerdictModeDisclosed or config.VerdictModeEncrypted.
	VerdictMode string
	Now         func() time.Time
}
