package network

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "eligibility-workers/internal/common/errors"
	"eligibility-workers/internal/common/logger"
	"eligibility-workers/internal/common/wallet"
	"eligibility-workers/internal/models"
)

type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) ChainID(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockProvider) SwitchChain(ctx context.Context, chainID string) error {
	return m.Called(ctx, chainID).Error(0)
}

func (m *MockProvider) AddChain(ctx context.Context, network models.NetworkDescriptor) error {
	return m.Called(ctx, network).Error(0)
}

var (
	local   = Presets["local"]
	sepolia = Presets["sepolia"]
)

func newReconciler(p Provider, target models.NetworkDescriptor) *Reconciler {
	return NewReconciler(p, target, logger.NewNoOpLogger())
}

func TestCheckNetwork(t *testing.T) {
	tests := []struct {
		name       string
		active     string
		reconciled bool
	}{
		{"same hex", "0x7a69", true},
		{"upper case hex", "0x7A69", true},
		{"decimal", "31337", true},
		{"different chain", "0x1", false},
		{"garbage", "not-a-chain", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := new(MockProvider)
			p.On("ChainID", mock.Anything).Return(tt.active, nil)

			state, err := newReconciler(p, local).CheckNetwork(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.reconciled, state.IsReconciled)
			assert.Equal(t, tt.active, state.ActiveChainID)
			assert.Equal(t, "0x7a69", state.TargetChainID)
			assert.Equal(t, "Hardhat Local", state.TargetDisplayName)
			if tt.reconciled {
				assert.Equal(t, models.NetworkStatusReconciled, state.Status)
			} else {
				assert.Equal(t, models.NetworkStatusMismatched, state.Status)
			}
		})
	}
}

func TestCheckNetwork_ProviderFailure(t *testing.T) {
	p := new(MockProvider)
	p.On("ChainID", mock.Anything).Return("", fmt.Errorf("connection refused"))

	state, err := newReconciler(p, local).CheckNetwork(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrProviderUnavailable)
	assert.False(t, state.IsReconciled)
	assert.Equal(t, models.NetworkStatusChecking, state.Status)
}

func TestReconcile_NoOpWhenReconciled(t *testing.T) {
	p := new(MockProvider)
	p.On("ChainID", mock.Anything).Return("0x7a69", nil)

	state, err := newReconciler(p, local).Reconcile(context.Background())
	require.NoError(t, err)
	assert.True(t, state.IsReconciled)
	p.AssertNotCalled(t, "SwitchChain", mock.Anything, mock.Anything)
	p.AssertNotCalled(t, "AddChain", mock.Anything, mock.Anything)
}

func TestReconcile_SwitchesWithoutAdding(t *testing.T) {
	p := new(MockProvider)
	p.On("ChainID", mock.Anything).Return("0x1", nil).Once()
	p.On("SwitchChain", mock.Anything, "0x7a69").Return(nil).Once()
	p.On("ChainID", mock.Anything).Return("0x7a69", nil).Once()

	state, err := newReconciler(p, local).Reconcile(context.Background())
	require.NoError(t, err)
	assert.True(t, state.IsReconciled)
	p.AssertExpectations(t)
	p.AssertNotCalled(t, "AddChain", mock.Anything, mock.Anything)
}

func TestReconcile_AddsUnknownPrivateChain(t *testing.T) {
	p := new(MockProvider)
	p.On("ChainID", mock.Anything).Return("0x1", nil).Once()
	p.On("SwitchChain", mock.Anything, "0x7a69").Return(fmt.Errorf("%w: Unrecognized chain ID", wallet.ErrChainNotAdded)).Once()
	p.On("AddChain", mock.Anything, local).Return(nil).Once()
	p.On("ChainID", mock.Anything).Return("0x7a69", nil).Once()

	state, err := newReconciler(p, local).Reconcile(context.Background())
	require.NoError(t, err)
	assert.True(t, state.IsReconciled)
	p.AssertExpectations(t)
}

func TestReconcile_AddedButNotSwitched(t *testing.T) {
	p := new(MockProvider)
	p.On("ChainID", mock.Anything).Return("0x1", nil).Twice()
	p.On("SwitchChain", mock.Anything, "0x7a69").Return(wallet.ErrChainNotAdded).Once()
	p.On("AddChain", mock.Anything, local).Return(nil).Once()
	p.On("SwitchChain", mock.Anything, "0x7a69").Return(nil).Once()
	p.On("ChainID", mock.Anything).Return("0x7a69", nil).Once()

	state, err := newReconciler(p, local).Reconcile(context.Background())
	require.NoError(t, err)
	assert.True(t, state.IsReconciled)
	p.AssertExpectations(t)
}

func TestReconcile_PublicChainNeedsManualAction(t *testing.T) {
	p := new(MockProvider)
	p.On("ChainID", mock.Anything).Return("0x7a69", nil)
	p.On("SwitchChain", mock.Anything, "0xaa36a7").Return(wallet.ErrChainNotAdded)

	state, err := newReconciler(p, sepolia).Reconcile(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrManualActionRequired)
	assert.Equal(t, models.NetworkStatusMismatched, state.Status)
	p.AssertNotCalled(t, "AddChain", mock.Anything, mock.Anything)
}

func TestReconcile_UserRejectsSwitch(t *testing.T) {
	p := new(MockProvider)
	p.On("ChainID", mock.Anything).Return("0x1", nil)
	p.On("SwitchChain", mock.Anything, "0x7a69").Return(apperrors.NewProviderRejectedError("wallet_switchEthereumChain"))

	_, err := newReconciler(p, local).Reconcile(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrProviderRejected)
	p.AssertNotCalled(t, "AddChain", mock.Anything, mock.Anything)
}

func TestReconcile_StillMismatched(t *testing.T) {
	p := new(MockProvider)
	p.On("ChainID", mock.Anything).Return("0x1", nil)
	p.On("SwitchChain", mock.Anything, "0x7a69").Return(nil)

	state, err := newReconciler(p, local).Reconcile(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNetworkMismatch)
	assert.False(t, state.IsReconciled)

	var stdErr *apperrors.StandardError
	require.True(t, errors.As(err, &stdErr))
	assert.Equal(t, "0x1", stdErr.Metadata["activeChainId"])
	assert.Equal(t, "0x7a69", stdErr.Metadata["targetChainId"])
}

func TestReconcile_AddChainFails(t *testing.T) {
	p := new(MockProvider)
	p.On("ChainID", mock.Anything).Return("0x1", nil)
	p.On("SwitchChain", mock.Anything, "0x7a69").Return(wallet.ErrChainNotAdded)
	p.On("AddChain", mock.Anything, local).Return(&wallet.ProviderError{Method: "wallet_addEthereumChain", Code: -32602, Message: "invalid params"})

	_, err := newReconciler(p, local).Reconcile(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrProviderUnavailable)
}

func TestMachine_RejectsIllegalTransitions(t *testing.T) {
	m := newMachine(local)
	assert.Error(t, m.to(models.NetworkStatusReconciled))
	require.NoError(t, m.to(models.NetworkStatusChecking))
	assert.Error(t, m.to(models.NetworkStatusChecking))
	require.NoError(t, m.to(models.NetworkStatusMismatched))
	assert.False(t, m.state.IsReconciled)
	require.NoError(t, m.to(models.NetworkStatusChecking))
	require.NoError(t, m.to(models.NetworkStatusReconciled))
	assert.True(t, m.state.IsReconciled)
}
