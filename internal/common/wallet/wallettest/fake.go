// Package wallettest runs an in-process JSON-RPC wallet for tests.
package wallettest

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rpc"
)

// RPCError is returned by fake handlers so the client sees a coded JSON-RPC error.
type RPCError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *RPCError) Error() string          { return e.Message }
func (e *RPCError) ErrorCode() int         { return e.Code }
func (e *RPCError) ErrorData() interface{} { return e.Data }

// Wallet is a scriptable wallet. Zero value knows no chains and has no accounts.
type Wallet struct {
	mu sync.Mutex

	Chain        string
	Accounts     []common.Address
	KnownChains  map[string]bool
	SwitchErr    error
	AddErr       error
	AccountsErr  error
	SendErr      error
	TxHash       common.Hash
	SwitchCalls  []string
	AddCalls     []map[string]interface{}
	Transactions []map[string]interface{}
}

// Server starts an RPC server exposing the wallet under the eth and wallet namespaces.
// Extra services may be registered on the returned server before dialing.
func (w *Wallet) Server() *rpc.Server {
	srv := rpc.NewServer()
	if err := srv.RegisterName("eth", &ethAPI{w}); err != nil {
		panic(err)
	}
	if err := srv.RegisterName("wallet", &walletAPI{w}); err != nil {
		panic(err)
	}
	return srv
}

// Dial returns an in-process client for srv.
func Dial(srv *rpc.Server) *rpc.Client {
	return rpc.DialInProc(srv)
}

func (w *Wallet) SetChain(chain string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.Chain = chain
}

type ethAPI struct{ w *Wallet }

func (a *ethAPI) ChainId() (string, error) {
	a.w.mu.Lock()
	defer a.w.mu.Unlock()
	return a.w.Chain, nil
}

func (a *ethAPI) Accounts() []common.Address {
	a.w.mu.Lock()
	defer a.w.mu.Unlock()
	return a.w.Accounts
}

func (a *ethAPI) RequestAccounts() ([]common.Address, error) {
	a.w.mu.Lock()
	defer a.w.mu.Unlock()
	if a.w.AccountsErr != nil {
		return nil, a.w.AccountsErr
	}
	return a.w.Accounts, nil
}

func (a *ethAPI) SendTransaction(tx map[string]interface{}) (common.Hash, error) {
	a.w.mu.Lock()
	defer a.w.mu.Unlock()
	if a.w.SendErr != nil {
		return common.Hash{}, a.w.SendErr
	}
	a.w.Transactions = append(a.w.Transactions, tx)
	return a.w.TxHash, nil
}

type walletAPI struct{ w *Wallet }

type switchParam struct {
	ChainID string `json:"chainId"`
}

func (a *walletAPI) SwitchEthereumChain(p switchParam) error {
	a.w.mu.Lock()
	defer a.w.mu.Unlock()
	a.w.SwitchCalls = append(a.w.SwitchCalls, p.ChainID)
	if a.w.SwitchErr != nil {
		return a.w.SwitchErr
	}
	if !a.w.KnownChains[p.ChainID] {
		return &RPCError{Code: 4902, Message: "Unrecognized chain ID"}
	}
	a.w.Chain = p.ChainID
	return nil
}

func (a *walletAPI) AddEthereumChain(p map[string]interface{}) error {
	a.w.mu.Lock()
	defer a.w.mu.Unlock()
	a.w.AddCalls = append(a.w.AddCalls, p)
	if a.w.AddErr != nil {
		return a.w.AddErr
	}
	id, _ := p["chainId"].(string)
	if a.w.KnownChains == nil {
		a.w.KnownChains = make(map[string]bool)
	}
	a.w.KnownChains[id] = true
	a.w.Chain = id
	return nil
}
