// Package wallet is the boundary to the signing wallet. It speaks the EIP-1193 method set over JSON-RPC
// and is injected into the clients that need an identity or a chain id.
package wallet

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"

	apperrors "eligibility-workers/internal/common/errors"
	"eligibility-workers/internal/models"
)

// Provider error codes.
const (
	CodeUserRejected = 4001
	CodeChainUnknown = 4902
)

// ErrChainNotAdded means the wallet does not know the requested chain.
var ErrChainNotAdded = stderrors.New("chain not added to wallet")

// Provider is the wallet capability. Implementations must not cache chain or account state.
type Provider interface {
	RequestAccounts(ctx context.Context) ([]common.Address, error)
	ChainID(ctx context.Context) (string, error)
	SwitchChain(ctx context.Context, chainID string) error
	AddChain(ctx context.Context, network models.NetworkDescriptor) error
	Address(ctx context.Context) (common.Address, error)
	SendTransaction(ctx context.Context, tx TxRequest) (common.Hash, error)
}

// TxRequest is the eth_sendTransaction parameter object.
type TxRequest struct {
	From  common.Address  `json:"from"`
	To    common.Address  `json:"to"`
	Data  hexutil.Bytes   `json:"data"`
	Gas   *hexutil.Uint64 `json:"gas,omitempty"`
	Value *hexutil.Big    `json:"value,omitempty"`
}

// Caller is satisfied by *rpc.Client.
type Caller interface {
	CallContext(ctx context.Context, result interface{}, method string, args ...interface{}) error
}

// ProviderError is a JSON-RPC error from the wallet other than rejection or unknown chain.
type ProviderError struct {
	Method  string
	Code    int
	Message string
	Data    interface{}
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("wallet %s failed with code %d: %s", e.Method, e.Code, e.Message)
}

// RPCProvider implements Provider against a JSON-RPC wallet endpoint.
type RPCProvider struct {
	rpc Caller
}

func NewRPCProvider(caller Caller) *RPCProvider {
	return &RPCProvider{rpc: caller}
}

// Dial connects to a wallet JSON-RPC endpoint.
func Dial(ctx context.Context, url string) (*RPCProvider, *rpc.Client, error) {
	client, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, nil, apperrors.NewProviderUnavailableError("dial", err)
	}
	return NewRPCProvider(client), client, nil
}

func (p *RPCProvider) RequestAccounts(ctx context.Context) ([]common.Address, error) {
	var accounts []common.Address
	if err := p.rpc.CallContext(ctx, &accounts, "eth_requestAccounts"); err != nil {
		return nil, mapError("eth_requestAccounts", err)
	}
	if len(accounts) == 0 {
		return nil, apperrors.NewProviderUnavailableError("eth_requestAccounts", stderrors.New("wallet returned no accounts"))
	}
	return accounts, nil
}

func (p *RPCProvider) ChainID(ctx context.Context) (string, error) {
	var chainID string
	if err := p.rpc.CallContext(ctx, &chainID, "eth_chainId"); err != nil {
		return "", mapError("eth_chainId", err)
	}
	return chainID, nil
}

func (p *RPCProvider) SwitchChain(ctx context.Context, chainID string) error {
	param := map[string]string{"chainId": chainID}
	if err := p.rpc.CallContext(ctx, nil, "wallet_switchEthereumChain", param); err != nil {
		return mapError("wallet_switchEthereumChain", err)
	}
	return nil
}

func (p *RPCProvider) AddChain(ctx context.Context, network models.NetworkDescriptor) error {
	param := addChainParam{
		ChainID:        network.ChainID,
		ChainName:      network.DisplayName,
		RPCURLs:        []string{network.RPCURL},
		NativeCurrency: network.NativeCurrency,
	}
	if network.BlockExplorerURL != "" {
		param.BlockExplorerURLs = []string{network.BlockExplorerURL}
	}
	if err := p.rpc.CallContext(ctx, nil, "wallet_addEthereumChain", param); err != nil {
		return mapError("wallet_addEthereumChain", err)
	}
	return nil
}

type addChainParam struct {
	ChainID           string                `json:"chainId"`
	ChainName         string                `json:"chainName"`
	RPCURLs           []string              `json:"rpcUrls"`
	NativeCurrency    models.NativeCurrency `json:"nativeCurrency"`
	BlockExplorerURLs []string              `json:"blockExplorerUrls,omitempty"`
}

// Address returns the active signer. It prompts for access when no account is exposed yet.
func (p *RPCProvider) Address(ctx context.Context) (common.Address, error) {
	var accounts []common.Address
	if err := p.rpc.CallContext(ctx, &accounts, "eth_accounts"); err != nil {
		return common.Address{}, mapError("eth_accounts", err)
	}
	if len(accounts) == 0 {
		requested, err := p.RequestAccounts(ctx)
		if err != nil {
			return common.Address{}, err
		}
		accounts = requested
	}
	return accounts[0], nil
}

func (p *RPCProvider) SendTransaction(ctx context.Context, tx TxRequest) (common.Hash, error) {
	var hash common.Hash
	if err := p.rpc.CallContext(ctx, &hash, "eth_sendTransaction", tx); err != nil {
		return common.Hash{}, mapError("eth_sendTransaction", err)
	}
	return hash, nil
}

// mapError turns wallet failures into typed errors. 4902 may arrive wrapped in a -32603 internal error.
func mapError(method string, err error) error {
	var rpcErr rpc.Error
	if !stderrors.As(err, &rpcErr) {
		return apperrors.NewProviderUnavailableError(method, err)
	}

	var data interface{}
	var dataErr rpc.DataError
	if stderrors.As(err, &dataErr) {
		data = dataErr.ErrorData()
	}

	switch {
	case rpcErr.ErrorCode() == CodeUserRejected:
		return apperrors.NewProviderRejectedError(method)
	case rpcErr.ErrorCode() == CodeChainUnknown, nestedCode(data) == CodeChainUnknown:
		return fmt.Errorf("%w: %s", ErrChainNotAdded, rpcErr.Error())
	case nestedCode(data) == CodeUserRejected:
		return apperrors.NewProviderRejectedError(method)
	}

	return &ProviderError{Method: method, Code: rpcErr.ErrorCode(), Message: rpcErr.Error(), Data: data}
}

func nestedCode(data interface{}) int {
	m, ok := data.(map[string]interface{})
	if !ok {
		return 0
	}
	orig, ok := m["originalError"].(map[string]interface{})
	if !ok {
		return 0
	}
	switch code := orig["code"].(type) {
	case float64:
		return int(code)
	case int:
		return code
	}
	return 0
}

// IsRevert reports whether a provider error describes a reverted execution.
func IsRevert(err error) (string, bool) {
	var pe *ProviderError
	if !stderrors.As(err, &pe) {
		return "", false
	}
	msg := strings.ToLower(pe.Message)
	if strings.Contains(msg, "revert") || pe.Code == 3 {
		return pe.Message, true
	}
	return "", false
}
