package checkeligibility

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"eligibility-workers/internal/common/camunda/camundatest"
	"eligibility-workers/internal/common/config"
	"eligibility-workers/internal/common/errors"
	"eligibility-workers/internal/common/logger"
	"eligibility-workers/internal/common/validation"
	"eligibility-workers/internal/models"
)

type MockVerdictChecker struct {
	mock.Mock
}

func (m *MockVerdictChecker) CheckEligibility(ctx context.Context, identity string) (*models.VerdictView, error) {
	args := m.Called(ctx, identity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.VerdictView), args.Error(1)
}

func createMockJob(key int64, variables map[string]interface{}) entities.Job {
	variablesJSON, _ := json.Marshal(variables)
	return entities.Job{ActivatedJob: &pb.ActivatedJob{
		Key:                key,
		Type:               TaskType,
		ProcessInstanceKey: key * 10,
		BpmnProcessId:      "scholarship-admission",
		ElementId:          "Activity_CheckEligibility",
		CustomHeaders:      "{}",
		Worker:             "test-worker",
		Retries:            3,
		Variables:          string(variablesJSON),
	}}
}

func newHandler(t *testing.T) *Handler {
	h, err := NewHandler(HandlerOptions{Logger: logger.NewNoOpLogger(), Service: new(MockVerdictChecker)})
	require.NoError(t, err)
	return h
}

func TestHandler_NewHandler(t *testing.T) {
	t.Run("verdict mode from ledger section", func(t *testing.T) {
		h, err := NewHandler(HandlerOptions{
			AppConfig: &config.Config{Ledger: config.LedgerConfig{VerdictMode: config.VerdictModeEncrypted}},
			Service:   new(MockVerdictChecker),
		})
		require.NoError(t, err)
		assert.Equal(t, config.VerdictModeEncrypted, h.GetConfig().VerdictMode)
	})

	t.Run("unknown verdict mode", func(t *testing.T) {
		_, err := NewHandler(HandlerOptions{
			AppConfig: &config.Config{Ledger: config.LedgerConfig{VerdictMode: "plaintext"}},
			Service:   new(MockVerdictChecker),
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "verdict_mode")
	})

	t.Run("requires service", func(t *testing.T) {
		_, err := NewHandler(HandlerOptions{})
		require.Error(t, err)
	})
}

func TestHandler_ParseInput(t *testing.T) {
	h := newHandler(t)

	input, err := h.parseInput(createMockJob(1, map[string]interface{}{}))
	require.NoError(t, err)
	assert.Empty(t, input.Identity)

	input, err = h.parseInput(createMockJob(2, map[string]interface{}{
		"identity": "0x70997970C51812dc3A010C7d01b50e0d17dc79C8",
	}))
	require.NoError(t, err)
	assert.Equal(t, "0x70997970C51812dc3A010C7d01b50e0d17dc79C8", input.Identity)
}

func TestHandler_ParseInput_RejectsMalformedIdentity(t *testing.T) {
	h := newHandler(t)

	for _, identity := range []interface{}{"0x1234", 42} {
		_, err := h.parseInput(createMockJob(3, map[string]interface{}{"identity": identity}))
		assert.ErrorIs(t, err, errors.ErrValidationFailed)
	}
}

func TestVerdictVariables_MatchOutputSchema(t *testing.T) {
	eligible := true
	total := 82
	breakdown := models.ScoreBreakdown{Age: 20, Exam: 30, Income: 15, Extracurricular: 8, Interview: 9, TotalPoints: 82, IsEligible: true}

	views := []models.VerdictView{
		{Identity: owner.Hex(), Status: models.VerdictNotSubmitted, PassingScore: 70},
		{Identity: owner.Hex(), Status: models.VerdictPending, PassingScore: 70, Source: models.VerdictSourceReceipt, SubmittedAt: &fixedNow},
		{Identity: owner.Hex(), Status: models.VerdictEligible, Eligible: &eligible, PassingScore: 70, Source: models.VerdictSourceGateway},
		{
			Identity: owner.Hex(), Status: models.VerdictEligible, Eligible: &eligible, TotalPoints: &total,
			Breakdown: &breakdown, Grade: "A", PassingScore: 70, SubmittedAt: &fixedNow, Source: models.VerdictSourceLedger,
		},
	}

	for _, v := range views {
		result := validation.ValidateInput(v.ToMap(), GetOutputSchema())
		assert.True(t, result.Valid, validation.FormatErrors(result.Errors))
	}
}

// stalledChecker runs until its context ends, like a ledger call that never answers.
type stalledChecker struct {
	deadline time.Time
}

func (s *stalledChecker) CheckEligibility(ctx context.Context, identity string) (*models.VerdictView, error) {
	s.deadline, _ = ctx.Deadline()
	<-ctx.Done()
	return nil, errors.NewLedgerCallError("getApplicationRecord", ctx.Err())
}

func TestHandler_Handle_FailsJobWhenServiceUsesItsBudget(t *testing.T) {
	checker := &stalledChecker{}
	h, err := NewHandler(HandlerOptions{
		Logger:  logger.NewNoOpLogger(),
		Service: checker,
		CustomConfig: &Config{
			Enabled:       true,
			MaxJobsActive: 1,
			Timeout:       400 * time.Millisecond,
			ServiceShare:  0.5,
			VerdictMode:   config.VerdictModeDisclosed,
		},
	})
	require.NoError(t, err)

	client := camundatest.NewJobClient()
	start := time.Now()
	h.Handle(client, createMockJob(7, map[string]interface{}{"identity": owner.Hex()}))

	assert.WithinDuration(t, start.Add(200*time.Millisecond), checker.deadline, 50*time.Millisecond)

	cmd, ok := client.Last()
	require.True(t, ok)
	assert.Equal(t, camundatest.Fail, cmd.Kind)
	assert.Equal(t, int64(7), cmd.JobKey)
	assert.Equal(t, int32(2), cmd.Retries)
	assert.NoError(t, cmd.CtxErr)
	assert.Equal(t, "LEDGER_CALL_FAILED", cmd.Variables["errorCode"])
}

func TestHandler_Handle_CompletesJob(t *testing.T) {
	service := new(MockVerdictChecker)
	service.On("CheckEligibility", mock.Anything, owner.Hex()).
		Return(&models.VerdictView{Identity: owner.Hex(), Status: models.VerdictNotSubmitted, PassingScore: 70}, nil)

	h, err := NewHandler(HandlerOptions{Logger: logger.NewNoOpLogger(), Service: service})
	require.NoError(t, err)

	client := camundatest.NewJobClient()
	h.Handle(client, createMockJob(8, map[string]interface{}{"identity": owner.Hex()}))

	cmd, ok := client.Last()
	require.True(t, ok)
	assert.Equal(t, camundatest.Complete, cmd.Kind)
	assert.Equal(t, string(models.VerdictNotSubmitted), cmd.Variables["verdictStatus"])
	service.AssertExpectations(t)
}

func TestConfig_ServiceBudget(t *testing.T) {
	cfg := createConfigFromAppConfig(&config.Config{
		Workers: map[string]config.WorkerConfig{
			configKey: {Enabled: true, Timeout: 20000, ServiceShare: 0.25},
		},
	}, nil)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 5*time.Second, cfg.ServiceBudget())

	assert.Equal(t, 24*time.Second, DefaultConfig().ServiceBudget())

	cfg.ServiceShare = 1.2
	assert.Error(t, cfg.Validate())
}
