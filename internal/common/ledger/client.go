// Package ledger is the boundary to the ledger authority: an eligibility contract reached over JSON-RPC.
// It stores one submission per identity and releases the verdict for it.
package ledger

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	apperrors "eligibility-workers/internal/common/errors"
	"eligibility-workers/internal/common/metrics"
	"eligibility-workers/internal/common/observability"
	"eligibility-workers/internal/common/wallet"
	"eligibility-workers/internal/models"
)

// ErrConfirmationPending is returned when the caller's context ends before a receipt is observed.
var ErrConfirmationPending = stderrors.New("transaction confirmation pending")

// Authority is the ledger capability used by the submission and verdict clients.
type Authority interface {
	Submit(ctx context.Context, identity string, payload models.EncryptedPayload) (string, error)
	WaitForConfirmation(ctx context.Context, txHash string) (*Confirmation, error)
	HasSubmitted(ctx context.Context, identity string) (bool, error)
	GetRecord(ctx context.Context, identity string) (*models.SubmissionRecord, error)
	GetEncryptedVerdict(ctx context.Context, identity string) ([]byte, error)
}

// Signer sends transactions on behalf of the applicant.
type Signer interface {
	SendTransaction(ctx context.Context, tx wallet.TxRequest) (common.Hash, error)
}

// Confirmation is an observed, successful transaction receipt.
type Confirmation struct {
	TxHash      string
	BlockNumber uint64
}

type txReceipt struct {
	Status      hexutil.Uint64 `json:"status"`
	BlockNumber hexutil.Uint64 `json:"blockNumber"`
	TxHash      common.Hash    `json:"transactionHash"`
}

type callMsg struct {
	To   common.Address `json:"to"`
	Data hexutil.Bytes  `json:"data"`
}

// Options configures a ContractClient.
type Options struct {
	Contract     common.Address
	PollInterval time.Duration
	Gas          uint64
}

// ContractClient implements Authority. Reads go through eth_call, writes through the wallet signer.
type ContractClient struct {
	rpc      wallet.Caller
	signer   Signer
	contract common.Address
	abi      abi.ABI
	poll     time.Duration
	gas      uint64
	tracer   trace.Tracer
}

func NewContractClient(caller wallet.Caller, signer Signer, opts Options) (*ContractClient, error) {
	if opts.Contract == (common.Address{}) {
		return nil, apperrors.NewConfigurationError("ledger contract address is the zero address")
	}
	parsed, err := ParseABI()
	if err != nil {
		return nil, fmt.Errorf("parse ledger abi: %w", err)
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = time.Second
	}
	return &ContractClient{
		rpc:      caller,
		signer:   signer,
		contract: opts.Contract,
		abi:      parsed,
		poll:     opts.PollInterval,
		gas:      opts.Gas,
		tracer:   observability.Tracer("ledger"),
	}, nil
}

// VerifyDeployment fails when no contract code lives at the configured address.
func (c *ContractClient) VerifyDeployment(ctx context.Context) error {
	var code hexutil.Bytes
	if err := c.rpc.CallContext(ctx, &code, "eth_getCode", c.contract, "latest"); err != nil {
		return apperrors.NewLedgerCallError("eth_getCode", err)
	}
	if len(code) == 0 {
		return apperrors.NewConfigurationError(fmt.Sprintf("no contract deployed at %s", c.contract.Hex()))
	}
	return nil
}

func (c *ContractClient) Submit(ctx context.Context, identity string, payload models.EncryptedPayload) (txHash string, err error) {
	ctx, span := c.tracer.Start(ctx, "ledger."+MethodSubmit, trace.WithAttributes(attribute.String("identity", identity)))
	defer func() { observability.EndSpan(span, err) }()
	defer c.observe(MethodSubmit, time.Now())

	from, err := parseIdentity(identity)
	if err != nil {
		return "", err
	}

	channels := payload.Channels()
	args := make([]interface{}, len(channels))
	for i, ch := range channels {
		args[i] = ch
	}
	data, err := c.abi.Pack(MethodSubmit, args...)
	if err != nil {
		return "", apperrors.NewEncryptionError(fmt.Errorf("pack %s: %w", MethodSubmit, err))
	}

	tx := wallet.TxRequest{From: from, To: c.contract, Data: data}
	if c.gas > 0 {
		gas := hexutil.Uint64(c.gas)
		tx.Gas = &gas
	}

	hash, err := c.signer.SendTransaction(ctx, tx)
	if err != nil {
		return "", mapSendError(identity, err)
	}
	return hash.Hex(), nil
}

// WaitForConfirmation polls for the receipt until it appears or ctx ends. No internal timeout applies.
func (c *ContractClient) WaitForConfirmation(ctx context.Context, txHash string) (*Confirmation, error) {
	hash := common.HexToHash(txHash)
	ticker := time.NewTicker(c.poll)
	defer ticker.Stop()

	for {
		var receipt *txReceipt
		err := c.rpc.CallContext(ctx, &receipt, "eth_getTransactionReceipt", hash)
		switch {
		case err == nil && receipt != nil:
			if receipt.Status == 0 {
				return nil, apperrors.NewSubmissionRevertedError(txHash, "receipt status 0")
			}
			return &Confirmation{TxHash: txHash, BlockNumber: uint64(receipt.BlockNumber)}, nil
		case err != nil && ctx.Err() == nil && !isTransport(err):
			return nil, apperrors.NewLedgerCallError("eth_getTransactionReceipt", err)
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %s", ErrConfirmationPending, txHash)
		case <-ticker.C:
		}
	}
}

func (c *ContractClient) HasSubmitted(ctx context.Context, identity string) (bool, error) {
	out, err := c.call(ctx, MethodHasSubmitted, identity)
	if err != nil {
		if isRevertErr(err) {
			return false, apperrors.NewLedgerCallError(MethodHasSubmitted, err)
		}
		return false, err
	}
	submitted, ok := out[0].(bool)
	if !ok {
		return false, apperrors.NewLedgerCallError(MethodHasSubmitted, fmt.Errorf("unexpected result type %T", out[0]))
	}
	return submitted, nil
}

func (c *ContractClient) GetRecord(ctx context.Context, identity string) (*models.SubmissionRecord, error) {
	out, err := c.call(ctx, MethodGetRecord, identity)
	if err != nil {
		if isRevertErr(err) {
			return nil, c.revertedRead(ctx, MethodGetRecord, identity, err)
		}
		return nil, err
	}
	if len(out) != 8 {
		return nil, apperrors.NewLedgerCallError(MethodGetRecord, fmt.Errorf("expected 8 outputs, got %d", len(out)))
	}

	submittedAt, _ := out[7].(uint64)
	if submittedAt == 0 {
		return nil, apperrors.NewRecordNotFoundError(identity)
	}

	points := make([]int, 6)
	for i := range points {
		v, ok := out[i].(uint8)
		if !ok {
			return nil, apperrors.NewLedgerCallError(MethodGetRecord, fmt.Errorf("output %d has type %T", i, out[i]))
		}
		points[i] = int(v)
	}
	eligible, _ := out[6].(bool)

	return &models.SubmissionRecord{
		Identity: identity,
		Breakdown: models.ScoreBreakdown{
			Age:             points[0],
			Exam:            points[1],
			Income:          points[2],
			Extracurricular: points[3],
			Interview:       points[4],
			TotalPoints:     points[5],
			IsEligible:      eligible,
		},
		SubmittedAt: time.Unix(int64(submittedAt), 0).UTC(),
	}, nil
}

func (c *ContractClient) GetEncryptedVerdict(ctx context.Context, identity string) ([]byte, error) {
	out, err := c.call(ctx, MethodGetEncryptedVerdict, identity)
	if err != nil {
		if isRevertErr(err) {
			return nil, c.revertedRead(ctx, MethodGetEncryptedVerdict, identity, err)
		}
		return nil, err
	}
	blob, ok := out[0].([]byte)
	if !ok || len(blob) == 0 {
		return nil, apperrors.NewRecordNotFoundError(identity)
	}
	return blob, nil
}

// revertError marks an eth_call that the contract rejected.
type revertError struct {
	method string
	reason string
}

func (e *revertError) Error() string {
	return fmt.Sprintf("%s reverted: %s", e.method, e.reason)
}

// revertedRead classifies a reverted read. Without a submission there is no record; with one,
// the contract refused a read it should serve.
func (c *ContractClient) revertedRead(ctx context.Context, method, identity string, err error) error {
	submitted, hasErr := c.HasSubmitted(ctx, identity)
	switch {
	case hasErr != nil:
		return hasErr
	case submitted:
		return apperrors.NewLedgerCallError(method, err)
	default:
		return apperrors.NewRecordNotFoundError(identity)
	}
}

func isRevertErr(err error) bool {
	var re *revertError
	return stderrors.As(err, &re)
}

func (c *ContractClient) call(ctx context.Context, method, identity string) (out []interface{}, err error) {
	ctx, span := c.tracer.Start(ctx, "ledger."+method, trace.WithAttributes(attribute.String("identity", identity)))
	defer func() { observability.EndSpan(span, err) }()
	defer c.observe(method, time.Now())

	addr, err := parseIdentity(identity)
	if err != nil {
		return nil, err
	}
	data, err := c.abi.Pack(method, addr)
	if err != nil {
		return nil, apperrors.NewLedgerCallError(method, err)
	}

	var result hexutil.Bytes
	if err := c.rpc.CallContext(ctx, &result, "eth_call", callMsg{To: c.contract, Data: data}, "latest"); err != nil {
		var rpcErr rpc.Error
		if stderrors.As(err, &rpcErr) && strings.Contains(strings.ToLower(rpcErr.Error()), "revert") {
			return nil, &revertError{method: method, reason: rpcErr.Error()}
		}
		return nil, apperrors.NewLedgerCallError(method, err)
	}
	if len(result) == 0 {
		return nil, apperrors.NewLedgerCallError(method, fmt.Errorf("empty result from %s", c.contract.Hex()))
	}

	out, err = c.abi.Unpack(method, result)
	if err != nil {
		return nil, apperrors.NewLedgerCallError(method, fmt.Errorf("unpack: %w", err))
	}
	if len(out) == 0 {
		return nil, apperrors.NewLedgerCallError(method, fmt.Errorf("no outputs"))
	}
	return out, nil
}

func (c *ContractClient) observe(method string, start time.Time) {
	metrics.LedgerCallDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
}

// mapSendError keeps wallet rejections and outages as they are and classifies reverts.
func mapSendError(identity string, err error) error {
	if reason, ok := wallet.IsRevert(err); ok {
		if strings.Contains(strings.ToLower(reason), "already submitted") {
			return apperrors.NewDuplicateSubmissionError(identity)
		}
		return apperrors.NewSubmissionRevertedError("", reason)
	}
	if apperrors.CodeOf(err) != "" {
		return err
	}
	return apperrors.NewLedgerCallError("eth_sendTransaction", err)
}

func parseIdentity(identity string) (common.Address, error) {
	if !common.IsHexAddress(identity) {
		return common.Address{}, apperrors.NewValidationError(map[string]string{"identity": "must be a 0x-prefixed 20-byte address"})
	}
	return common.HexToAddress(identity), nil
}

// isTransport reports errors worth polling through: anything that is not a JSON-RPC error response.
func isTransport(err error) bool {
	var rpcErr rpc.Error
	return !stderrors.As(err, &rpcErr)
}
