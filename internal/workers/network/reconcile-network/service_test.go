package reconcilenetwork

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"eligibility-workers/internal/common/errors"
	"eligibility-workers/internal/common/logger"
	"eligibility-workers/internal/models"
)

type MockChecker struct{ mock.Mock }

func (m *MockChecker) CheckNetwork(ctx context.Context) (models.NetworkState, error) {
	args := m.Called(ctx)
	return args.Get(0).(models.NetworkState), args.Error(1)
}

func (m *MockChecker) Reconcile(ctx context.Context) (models.NetworkState, error) {
	args := m.Called(ctx)
	return args.Get(0).(models.NetworkState), args.Error(1)
}

func sepoliaState(active string) models.NetworkState {
	s := models.NetworkState{ActiveChainID: active, TargetChainID: "0xaa36a7", TargetDisplayName: "Sepolia"}
	if active == s.TargetChainID {
		s.Status = models.NetworkStatusReconciled
		s.IsReconciled = true
	} else {
		s.Status = models.NetworkStatusMismatched
	}
	return s
}

func TestService_Execute_Reconciles(t *testing.T) {
	checker := new(MockChecker)
	checker.On("Reconcile", mock.Anything).Return(sepoliaState("0xaa36a7"), nil)

	state, err := NewService(ServiceDependencies{Logger: logger.NewTestLogger(t), Network: checker}).
		Execute(context.Background(), &Input{})
	require.NoError(t, err)
	assert.True(t, state.IsReconciled)
	checker.AssertNotCalled(t, "CheckNetwork", mock.Anything)
}

func TestService_Execute_CheckOnly(t *testing.T) {
	checker := new(MockChecker)
	checker.On("CheckNetwork", mock.Anything).Return(sepoliaState("0x1"), nil)

	state, err := NewService(ServiceDependencies{Network: checker}).
		Execute(context.Background(), &Input{CheckOnly: true})
	require.NoError(t, err)
	assert.False(t, state.IsReconciled)
	assert.Equal(t, models.NetworkStatusMismatched, state.Status)
	checker.AssertNotCalled(t, "Reconcile", mock.Anything)
}

func TestService_Execute_PropagatesReconcileErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"manual action", errors.NewManualActionRequiredError("Sepolia", "0xaa36a7"), errors.ErrManualActionRequired},
		{"rejected", errors.NewProviderRejectedError("wallet_switchEthereumChain"), errors.ErrProviderRejected},
		{"still mismatched", errors.NewNetworkMismatchError("0x1", "0xaa36a7", "Sepolia"), errors.ErrNetworkMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := new(MockChecker)
			checker.On("Reconcile", mock.Anything).Return(sepoliaState("0x1"), tt.err)

			_, err := NewService(ServiceDependencies{Network: checker}).Execute(context.Background(), &Input{})
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
