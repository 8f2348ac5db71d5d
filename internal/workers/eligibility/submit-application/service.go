package submitapplication

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/google/uuid"

	"eligibility-workers/internal/common/errors"
	"eligibility-workers/internal/common/ledger"
	"eligibility-workers/internal/common/logger"
	"eligibility-workers/internal/common/metrics"
	"eligibility-workers/internal/eligibility/audit"
	"eligibility-workers/internal/eligibility/encoding"
	"eligibility-workers/internal/eligibility/events"
	"eligibility-workers/internal/eligibility/network"
	"eligibility-workers/internal/eligibility/receipts"
	"eligibility-workers/internal/eligibility/scoring"
	"eligibility-workers/internal/models"
)

const bookkeepingTimeout = 5 * time.Second

// Service is the Submission Client: it checks, encodes and transmits one application.
type Service struct {
	logger        logger.Logger
	network       network.Checker
	wallet        AccountSource
	ledger        ledger.Authority
	encoder       encoding.Encoder
	receipts      receipts.Store
	audit         audit.Recorder
	events        events.Publisher
	autoReconcile bool
	now           func() time.Time
}

func NewService(deps ServiceDependencies) *Service {
	s := &Service{
		logger:        deps.Logger,
		network:       deps.Network,
		wallet:        deps.Wallet,
		ledger:        deps.Ledger,
		encoder:       deps.Encoder,
		receipts:      deps.Receipts,
		audit:         deps.Audit,
		events:        deps.Events,
		autoReconcile: deps.AutoReconcile,
		now:           deps.Now,
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
	return s
}

// Submit validates, encodes and transmits raw for the wallet's identity. Nothing is sent unless
// the wallet is on the target network and the identity has no prior submission.
// When ctx ends before the ledger confirms, the receipt comes back pending.
func (s *Service) Submit(ctx context.Context, raw models.RawAttributes) (receipt *models.SubmissionReceipt, err error) {
	defer func() {
		metrics.Submissions.WithLabelValues(outcome(receipt, err)).Inc()
	}()

	attrs, err := scoring.Validate(raw, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.ensureNetwork(ctx); err != nil {
		return nil, err
	}

	accounts, err := s.wallet.RequestAccounts(ctx)
	if err != nil {
		return nil, err
	}
	identity := accounts[0].Hex()
	log := s.logger.WithFields(map[string]interface{}{"identity": identity})

	submitted, err := s.ledger.HasSubmitted(ctx, identity)
	if err != nil {
		return nil, err
	}
	if submitted {
		log.Warn("Identity already has a submission", nil)
		s.recordRejection(ctx, identity, "", errors.ErrCodeDuplicateSubmission)
		return nil, errors.NewDuplicateSubmissionError(identity)
	}

	payload, err := s.encoder.Encode(attrs)
	if err != nil {
		return nil, err
	}
	preview := scoring.Evaluate(attrs)

	txHash, err := s.ledger.Submit(ctx, identity, payload)
	if err != nil {
		s.recordRejection(ctx, identity, "", errors.CodeOf(err))
		return nil, err
	}
	log.Info("Submission sent", map[string]interface{}{"txHash": txHash, "scheme": s.encoder.Scheme()})

	receipt = &models.SubmissionReceipt{
		ReceiptID:   uuid.NewString(),
		Identity:    identity,
		TxHash:      txHash,
		Status:      models.SubmissionPending,
		SubmittedAt: s.now().UTC(),
		Preview:     preview,
	}

	conf, err := s.ledger.WaitForConfirmation(ctx, txHash)
	switch {
	case err == nil:
		confirmedAt := s.now().UTC()
		receipt.Status = models.SubmissionConfirmed
		receipt.BlockNumber = conf.BlockNumber
		receipt.ConfirmedAt = &confirmedAt
	case stderrors.Is(err, ledger.ErrConfirmationPending):
		log.Info("Confirmation not observed yet, returning pending receipt", map[string]interface{}{"txHash": txHash})
	default:
		s.recordRejection(ctx, identity, txHash, errors.CodeOf(err))
		return nil, err
	}

	s.bookkeep(ctx, receipt)
	return receipt, nil
}

func (s *Service) ensureNetwork(ctx context.Context) error {
	state, err := s.network.CheckNetwork(ctx)
	if err != nil {
		return err
	}
	if !state.IsReconciled && s.autoReconcile {
		if state, err = s.network.Reconcile(ctx); err != nil {
			return err
		}
	}
	if !state.IsReconciled {
		return errors.NewNetworkMismatchError(state.ActiveChainID, state.TargetChainID, state.TargetDisplayName)
	}
	return nil
}

// bookkeep stores the receipt and emits the audit row and event. Failures are logged only.
func (s *Service) bookkeep(ctx context.Context, receipt *models.SubmissionReceipt) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), bookkeepingTimeout)
	defer cancel()

	log := s.logger.WithFields(map[string]interface{}{"identity": receipt.Identity, "txHash": receipt.TxHash})

	if s.receipts != nil {
		if err := s.receipts.Save(ctx, receipt); err != nil {
			log.Warn("Failed to store receipt", map[string]interface{}{"error": err.Error()})
		}
	}

	eventType := audit.EventApplicationSubmitted
	if receipt.Status == models.SubmissionConfirmed {
		eventType = audit.EventSubmissionConfirmed
	}
	entry := audit.Entry{
		EventType: eventType,
		Identity:  receipt.Identity,
		TxHash:    receipt.TxHash,
		Status:    string(receipt.Status),
		Details: map[string]interface{}{
			"receiptId":   receipt.ReceiptID,
			"scheme":      s.encoder.Scheme(),
			"blockNumber": receipt.BlockNumber,
		},
	}
	if err := s.audit.Record(ctx, entry); err != nil {
		log.Warn("Failed to write audit entry", map[string]interface{}{"error": err.Error()})
	}

	event := events.NewEvent(events.TypeApplicationSubmitted, receipt.Identity, receipt.TxHash, string(receipt.Status))
	if err := s.events.Publish(ctx, event); err != nil {
		log.Warn("Failed to publish event", map[string]interface{}{"error": err.Error()})
	}
}

func (s *Service) recordRejection(ctx context.Context, identity, txHash string, code errors.ErrorCode) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), bookkeepingTimeout)
	defer cancel()

	entry := audit.Entry{
		EventType: audit.EventSubmissionRejected,
		Identity:  identity,
		TxHash:    txHash,
		Status:    "rejected",
		Details:   map[string]interface{}{"code": string(code)},
	}
	if err := s.audit.Record(ctx, entry); err != nil {
		s.logger.Warn("Failed to write audit entry", map[string]interface{}{"identity": identity, "error": err.Error()})
	}
}

func outcome(receipt *models.SubmissionReceipt, err error) string {
	if err == nil {
		return string(receipt.Status)
	}
	switch errors.CodeOf(err) {
	case errors.ErrCodeDuplicateSubmission:
		return "duplicate"
	case errors.ErrCodeNetworkMismatch, errors.ErrCodeManualActionRequired:
		return "mismatch"
	case errors.ErrCodeProviderRejected, errors.ErrCodeSubmissionReverted:
		return "rejected"
	default:
		return "failed"
	}
}
