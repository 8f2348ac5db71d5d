package wallet

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "eligibility-workers/internal/common/errors"
	"eligibility-workers/internal/common/wallet/wallettest"
	"eligibility-workers/internal/models"
)

var applicant = common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")

func newProvider(t *testing.T, w *wallettest.Wallet) *RPCProvider {
	t.Helper()
	client := wallettest.Dial(w.Server())
	t.Cleanup(client.Close)
	return NewRPCProvider(client)
}

func TestRPCProvider_ChainIDAndAccounts(t *testing.T) {
	w := &wallettest.Wallet{Chain: "0x7a69", Accounts: []common.Address{applicant}}
	p := newProvider(t, w)
	ctx := context.Background()

	chainID, err := p.ChainID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "0x7a69", chainID)

	accounts, err := p.RequestAccounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []common.Address{applicant}, accounts)

	addr, err := p.Address(ctx)
	require.NoError(t, err)
	assert.Equal(t, applicant, addr)
}

func TestRPCProvider_RequestAccountsRejected(t *testing.T) {
	w := &wallettest.Wallet{AccountsErr: &wallettest.RPCError{Code: 4001, Message: "User rejected the request."}}
	p := newProvider(t, w)

	_, err := p.RequestAccounts(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrProviderRejected)
}

func TestRPCProvider_RequestAccountsEmpty(t *testing.T) {
	p := newProvider(t, &wallettest.Wallet{})

	_, err := p.RequestAccounts(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrProviderUnavailable)
}

func TestRPCProvider_SwitchChain(t *testing.T) {
	t.Run("known chain", func(t *testing.T) {
		w := &wallettest.Wallet{Chain: "0x1", KnownChains: map[string]bool{"0x7a69": true}}
		p := newProvider(t, w)

		require.NoError(t, p.SwitchChain(context.Background(), "0x7a69"))
		assert.Equal(t, "0x7a69", w.Chain)
	})

	t.Run("unknown chain", func(t *testing.T) {
		w := &wallettest.Wallet{Chain: "0x1"}
		p := newProvider(t, w)

		err := p.SwitchChain(context.Background(), "0x7a69")
		assert.ErrorIs(t, err, ErrChainNotAdded)
	})

	t.Run("unknown chain nested in internal error", func(t *testing.T) {
		w := &wallettest.Wallet{Chain: "0x1", SwitchErr: &wallettest.RPCError{
			Code:    -32603,
			Message: "Internal JSON-RPC error.",
			Data:    map[string]interface{}{"originalError": map[string]interface{}{"code": 4902}},
		}}
		p := newProvider(t, w)

		err := p.SwitchChain(context.Background(), "0x7a69")
		assert.ErrorIs(t, err, ErrChainNotAdded)
	})

	t.Run("user rejected", func(t *testing.T) {
		w := &wallettest.Wallet{SwitchErr: &wallettest.RPCError{Code: 4001, Message: "User rejected the request."}}
		p := newProvider(t, w)

		err := p.SwitchChain(context.Background(), "0x7a69")
		assert.ErrorIs(t, err, apperrors.ErrProviderRejected)
	})
}

func TestRPCProvider_AddChain(t *testing.T) {
	w := &wallettest.Wallet{Chain: "0x1"}
	p := newProvider(t, w)

	err := p.AddChain(context.Background(), models.NetworkDescriptor{
		ChainID:          "0x7a69",
		DisplayName:      "Hardhat Local",
		RPCURL:           "http://127.0.0.1:8545",
		NativeCurrency:   models.NativeCurrency{Name: "Ether", Symbol: "ETH", Decimals: 18},
		BlockExplorerURL: "",
	})
	require.NoError(t, err)

	require.Len(t, w.AddCalls, 1)
	call := w.AddCalls[0]
	assert.Equal(t, "0x7a69", call["chainId"])
	assert.Equal(t, "Hardhat Local", call["chainName"])
	assert.Equal(t, []interface{}{"http://127.0.0.1:8545"}, call["rpcUrls"])
	assert.NotContains(t, call, "blockExplorerUrls")
	assert.Equal(t, "0x7a69", w.Chain)
}

func TestRPCProvider_SendTransaction(t *testing.T) {
	hash := common.HexToHash("0xabc123")
	w := &wallettest.Wallet{TxHash: hash}
	p := newProvider(t, w)

	got, err := p.SendTransaction(context.Background(), TxRequest{From: applicant, To: common.HexToAddress("0x01"), Data: []byte{0xde, 0xad}})
	require.NoError(t, err)
	assert.Equal(t, hash, got)
	require.Len(t, w.Transactions, 1)
	assert.Equal(t, "0xdead", w.Transactions[0]["data"])
}

func TestRPCProvider_SendTransactionReverted(t *testing.T) {
	w := &wallettest.Wallet{SendErr: &wallettest.RPCError{Code: -32000, Message: "execution reverted: Already submitted"}}
	p := newProvider(t, w)

	_, err := p.SendTransaction(context.Background(), TxRequest{From: applicant})
	require.Error(t, err)

	reason, ok := IsRevert(err)
	assert.True(t, ok)
	assert.Contains(t, reason, "Already submitted")
}
