package checkeligibility

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"eligibility-workers/internal/common/config"
	"eligibility-workers/internal/common/errors"
	"eligibility-workers/internal/common/gateway"
	"eligibility-workers/internal/common/ledger"
	"eligibility-workers/internal/common/logger"
	"eligibility-workers/internal/common/metrics"
	"eligibility-workers/internal/eligibility/audit"
	"eligibility-workers/internal/eligibility/events"
	"eligibility-workers/internal/eligibility/network"
	"eligibility-workers/internal/eligibility/receipts"
	"eligibility-workers/internal/eligibility/scoring"
	"eligibility-workers/internal/models"
)

const bookkeepingTimeout = 5 * time.Second

// Service is the Verdict Client. It reports only what the ledger authority has released.
type Service struct {
	logger   logger.Logger
	network  network.Checker
	wallet   IdentitySource
	ledger   ledger.Authority
	gateway  gateway.Decrypter
	receipts receipts.Store
	audit    audit.Recorder
	events   events.Publisher
	mode     string
	now      func() time.Time
}

func NewService(deps ServiceDependencies) (*Service, error) {
	mode := deps.VerdictMode
	if mode == "" {
		mode = config.VerdictModeDisclosed
	}
	if mode == config.VerdictModeEncrypted && deps.Gateway == nil {
		return nil, errors.NewConfigurationError("encrypted verdict mode requires a decryption gateway")
	}

	s := &Service{
		logger:   deps.Logger,
		network:  deps.Network,
		wallet:   deps.Wallet,
		ledger:   deps.Ledger,
		gateway:  deps.Gateway,
		receipts: deps.Receipts,
		audit:    deps.Audit,
		events:   deps.Events,
		mode:     mode,
		now:      deps.Now,
	}
	if s.logger == nil {
		s.logger = logger.NewNoOpLogger()
	}
	if s.audit == nil {
		s.audit = audit.NoopRecorder{}
	}
	if s.events == nil {
		s.events = events.NoopPublisher{}
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s, nil
}

// CheckEligibility returns the released verdict for identity, or for the wallet's own address when
// identity is empty. Decryption is always requested on behalf of the authenticated address.
func (s *Service) CheckEligibility(ctx context.Context, identity string) (view *models.VerdictView, err error) {
	defer func() {
		status := "error"
		if err == nil {
			status = string(view.Status)
		}
		metrics.VerdictChecks.WithLabelValues(status).Inc()
	}()

	state, err := s.network.CheckNetwork(ctx)
	if err != nil {
		return nil, err
	}
	if !state.IsReconciled {
		return nil, errors.NewNetworkMismatchError(state.ActiveChainID, state.TargetChainID, state.TargetDisplayName)
	}

	authenticated, err := s.wallet.Address(ctx)
	if err != nil {
		return nil, err
	}
	queried := authenticated.Hex()
	if identity != "" {
		if !common.IsHexAddress(identity) {
			return nil, errors.NewValidationError(map[string]string{"identity": "must be a 0x-prefixed 20-byte address"})
		}
		queried = common.HexToAddress(identity).Hex()
	}

	submitted, err := s.ledger.HasSubmitted(ctx, queried)
	if err != nil {
		return nil, err
	}

	switch {
	case !submitted:
		view = s.unsubmitted(ctx, queried)
	case s.mode == config.VerdictModeEncrypted:
		view, err = s.fromGateway(ctx, queried, authenticated.Hex())
	default:
		view, err = s.fromRecord(ctx, queried)
	}
	if err != nil {
		return nil, err
	}

	if submitted {
		s.confirmReceipt(ctx, queried)
	}
	s.bookkeep(ctx, view)
	return view, nil
}

// unsubmitted reports pending when this client sent a transaction the ledger has not recorded yet.
func (s *Service) unsubmitted(ctx context.Context, identity string) *models.VerdictView {
	view := &models.VerdictView{
		Identity:     identity,
		Status:       models.VerdictNotSubmitted,
		PassingScore: scoring.PassingThreshold,
	}
	if s.receipts == nil {
		return view
	}

	receipt, err := s.receipts.Get(ctx, identity)
	if err != nil {
		s.logger.Warn("Failed to read receipt", map[string]interface{}{"identity": identity, "error": err.Error()})
		return view
	}
	if receipt != nil && receipt.Status == models.SubmissionPending {
		submittedAt := receipt.SubmittedAt
		view.Status = models.VerdictPending
		view.Source = models.VerdictSourceReceipt
		view.SubmittedAt = &submittedAt
	}
	return view
}

func (s *Service) fromRecord(ctx context.Context, identity string) (*models.VerdictView, error) {
	record, err := s.ledger.GetRecord(ctx, identity)
	if err != nil {
		return nil, err
	}

	b := record.Breakdown
	submittedAt := record.SubmittedAt
	return &models.VerdictView{
		Identity:     identity,
		Status:       statusFor(b.IsEligible),
		Eligible:     &b.IsEligible,
		TotalPoints:  &b.TotalPoints,
		Breakdown:    &b,
		Grade:        scoring.Grade(b.TotalPoints),
		PassingScore: scoring.PassingThreshold,
		SubmittedAt:  &submittedAt,
		Source:       models.VerdictSourceLedger,
	}, nil
}

// fromGateway releases only the boolean verdict. A gateway failure is never read as "not eligible".
func (s *Service) fromGateway(ctx context.Context, identity, requester string) (*models.VerdictView, error) {
	blob, err := s.ledger.GetEncryptedVerdict(ctx, identity)
	if err != nil {
		return nil, err
	}

	result, err := s.gateway.Decrypt(ctx, blob, requester)
	if err != nil {
		return nil, err
	}

	eligible := result.Eligible
	return &models.VerdictView{
		Identity:     identity,
		Status:       statusFor(eligible),
		Eligible:     &eligible,
		PassingScore: scoring.PassingThreshold,
		Source:       models.VerdictSourceGateway,
	}, nil
}

// confirmReceipt flips a pending receipt once the ledger shows the submission. Ledger state does not
// carry the inclusion block, so the block number stays unknown.
func (s *Service) confirmReceipt(ctx context.Context, identity string) {
	if s.receipts == nil {
		return
	}
	receipt, err := s.receipts.Get(ctx, identity)
	if err != nil || receipt == nil || receipt.Status != models.SubmissionPending {
		return
	}
	if err := s.receipts.MarkConfirmed(ctx, identity, receipts.UnknownBlock, s.now()); err != nil {
		s.logger.Warn("Failed to confirm receipt", map[string]interface{}{"identity": identity, "error": err.Error()})
	}
}

func (s *Service) bookkeep(ctx context.Context, view *models.VerdictView) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), bookkeepingTimeout)
	defer cancel()

	entry := audit.Entry{
		EventType: audit.EventVerdictChecked,
		Identity:  view.Identity,
		Status:    string(view.Status),
		Details:   map[string]interface{}{"source": view.Source, "mode": s.mode},
	}
	if err := s.audit.Record(ctx, entry); err != nil {
		s.logger.Warn("Failed to write audit entry", map[string]interface{}{"identity": view.Identity, "error": err.Error()})
	}

	event := events.NewEvent(events.TypeVerdictChecked, view.Identity, "", string(view.Status))
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish event", map[string]interface{}{"identity": view.Identity, "error": err.Error()})
	}
}

func statusFor(eligible bool) models.VerdictStatus {
	if eligible {
		return models.VerdictEligible
	}
	return models.VerdictNotEligible
}
