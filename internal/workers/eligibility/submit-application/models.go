package submitapplication

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"eligibility-workers/internal/common/ledger"
	"eligibility-workers/internal/common/logger"
	"eligibility-workers/internal/eligibility/audit"
	"eligibility-workers/internal/eligibility/encoding"
	"eligibility-workers/internal/eligibility/events"
	"eligibility-workers/internal/eligibility/network"
	"eligibility-workers/internal/eligibility/receipts"
	"eligibility-workers/internal/models"
)

type Input struct {
	Attributes models.RawAttributes
}

// AccountSource resolves the applicant identity from the wallet.
type AccountSource interface {
	RequestAccounts(ctx context.Context) ([]common.Address, error)
}

type ServiceDependencies struct {
	Logger   logger.Logger
	Network  network.Checker
	Wallet   AccountSource
	Ledger   ledger.Authority
	Encoder  encoding.Encoder
	Receipts receipts.Store
	Audit    audit.Recorder
	Events   events.Publisher
	// AutoReconcile lets Submit switch the wallet to the target chain before giving up.
	AutoReconcile bool
	Now           func() time.Time
}
