// Package network aligns the wallet's active chain with the configured target chain.
package network

import (
	"context"
	stderrors "errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	apperrors "eligibility-workers/internal/common/errors"
	"eligibility-workers/internal/common/logger"
	"eligibility-workers/internal/common/metrics"
	"eligibility-workers/internal/common/observability"
	"eligibility-workers/internal/common/wallet"
	"eligibility-workers/internal/models"
)

// Provider is the part of the wallet the reconciler drives.
type Provider interface {
	ChainID(ctx context.Context) (string, error)
	SwitchChain(ctx context.Context, chainID string) error
	AddChain(ctx context.Context, network models.NetworkDescriptor) error
}

// Checker is what the submission and verdict clients depend on.
type Checker interface {
	CheckNetwork(ctx context.Context) (models.NetworkState, error)
	Reconcile(ctx context.Context) (models.NetworkState, error)
}

var transitions = map[models.NetworkStatus][]models.NetworkStatus{
	models.NetworkStatusUnknown:    {models.NetworkStatusChecking},
	models.NetworkStatusChecking:   {models.NetworkStatusReconciled, models.NetworkStatusMismatched},
	models.NetworkStatusReconciled: {models.NetworkStatusChecking},
	models.NetworkStatusMismatched: {models.NetworkStatusChecking},
}

// machine tracks one reconciliation cycle. It is created per call and never shared.
type machine struct {
	state models.NetworkState
}

func newMachine(target models.NetworkDescriptor) *machine {
	return &machine{state: models.NetworkState{
		TargetChainID:     target.ChainID,
		TargetDisplayName: target.DisplayName,
		Status:            models.NetworkStatusUnknown,
	}}
}

func (m *machine) to(next models.NetworkStatus) error {
	for _, allowed := range transitions[m.state.Status] {
		if allowed == next {
			m.state.Status = next
			m.state.IsReconciled = next == models.NetworkStatusReconciled
			return nil
		}
	}
	return fmt.Errorf("illegal network transition %s -> %s", m.state.Status, next)
}

type Reconciler struct {
	provider Provider
	target   models.NetworkDescriptor
	log      logger.Logger
	tracer   trace.Tracer
}

func NewReconciler(provider Provider, target models.NetworkDescriptor, log logger.Logger) *Reconciler {
	return &Reconciler{
		provider: provider,
		target:   target,
		log:      log.WithFields(map[string]interface{}{"component": "network-reconciler"}),
		tracer:   observability.Tracer("wallet"),
	}
}

func (r *Reconciler) Target() models.NetworkDescriptor {
	return r.target
}

// CheckNetwork derives the current state from the wallet. A mismatch is a state, not an error.
func (r *Reconciler) CheckNetwork(ctx context.Context) (models.NetworkState, error) {
	m := newMachine(r.target)
	return r.check(ctx, m)
}

func (r *Reconciler) check(ctx context.Context, m *machine) (state models.NetworkState, err error) {
	ctx, span := r.tracer.Start(ctx, "wallet.eth_chainId")
	defer func() { observability.EndSpan(span, err) }()

	if err := m.to(models.NetworkStatusChecking); err != nil {
		return m.state, apperrors.AsStandard(err)
	}

	active, err := r.provider.ChainID(ctx)
	if err != nil {
		return m.state, normalize("eth_chainId", err)
	}
	m.state.ActiveChainID = active

	next := models.NetworkStatusMismatched
	if SameChain(active, r.target.ChainID) {
		next = models.NetworkStatusReconciled
	}
	if err := m.to(next); err != nil {
		return m.state, apperrors.AsStandard(err)
	}

	span.SetAttributes(
		attribute.String("activeChainId", active),
		attribute.String("targetChainId", r.target.ChainID),
		attribute.Bool("reconciled", m.state.IsReconciled),
	)
	return m.state, nil
}

// Reconcile switches the wallet to the target chain, adding it first when the wallet does not know it.
// It is a no-op when already reconciled.
func (r *Reconciler) Reconcile(ctx context.Context) (models.NetworkState, error) {
	m := newMachine(r.target)
	state, err := r.check(ctx, m)
	if err != nil {
		r.record("error")
		return state, err
	}
	if state.IsReconciled {
		r.record("already_reconciled")
		return state, nil
	}

	r.log.Info("Switching wallet network", map[string]interface{}{
		"activeChainId": state.ActiveChainID,
		"targetChainId": r.target.ChainID,
		"targetNetwork": r.target.DisplayName,
	})

	result := "switched"
	err = r.provider.SwitchChain(ctx, r.target.ChainID)
	if stderrors.Is(err, wallet.ErrChainNotAdded) {
		if r.target.Public {
			r.record("manual_action")
			return state, apperrors.NewManualActionRequiredError(r.target.DisplayName, r.target.ChainID)
		}
		r.log.Info("Target chain unknown to wallet, adding it", map[string]interface{}{"targetChainId": r.target.ChainID})
		result = "added"
		err = r.provider.AddChain(ctx, r.target)
	}
	if err != nil {
		err = normalize("reconcile", err)
		r.record(resultFor(err))
		return state, err
	}

	state, err = r.check(ctx, m)
	if err != nil {
		r.record("error")
		return state, err
	}
	if result == "added" && !state.IsReconciled {
		// Some wallets add the chain without switching to it.
		if err := r.provider.SwitchChain(ctx, r.target.ChainID); err != nil {
			err = normalize("wallet_switchEthereumChain", err)
			r.record(resultFor(err))
			return state, err
		}
		if state, err = r.check(ctx, m); err != nil {
			r.record("error")
			return state, err
		}
	}
	if !state.IsReconciled {
		r.record("mismatch")
		return state, apperrors.NewNetworkMismatchError(state.ActiveChainID, r.target.ChainID, r.target.DisplayName)
	}

	r.record(result)
	return state, nil
}

func (r *Reconciler) record(result string) {
	metrics.Reconciliations.WithLabelValues(result).Inc()
}

func resultFor(err error) string {
	switch apperrors.CodeOf(err) {
	case apperrors.ErrCodeProviderRejected:
		return "rejected"
	case apperrors.ErrCodeManualActionRequired:
		return "manual_action"
	}
	return "error"
}

// normalize keeps typed wallet errors and treats any other provider failure as the wallet being unavailable.
func normalize(method string, err error) error {
	if apperrors.CodeOf(err) != "" {
		return err
	}
	return apperrors.NewProviderUnavailableError(method, err)
}
