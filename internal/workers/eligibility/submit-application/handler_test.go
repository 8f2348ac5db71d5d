package submitapplication

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

	"eligibility-workers/internal/common/config"
	"eligibility-workers/internal/common/errors"
	"eligibility-workers/internal/common/logger"
	"eligibility-workers/internal/common/validation"
	"eligibility-workers/internal/models"
)

type MockSubmitter struct {
	mock.Mock
}

func (m *MockSubmitter) Submit(ctx context.Context, raw models.RawAttributes) (*models.SubmissionReceipt, error) {
	args := m.Called(ctx, raw)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SubmissionReceipt), args.Error(1)
}

func createMockJob(key int64, variables map[string]interface{}) entities.Job {
	variablesJSON, _ := json.Marshal(variables)
	return entities.Job{ActivatedJob: &pb.ActivatedJob{
		Key:                key,
		Type:               TaskType,
		ProcessInstanceKey: key * 10,
		BpmnProcessId:      "scholarship-admission",
		ElementId:          "Activity_SubmitApplication",
		CustomHeaders:      "{}",
		Worker:             "test-worker",
		Retries:            3,
		Variables:          string(variablesJSON),
	}}
}

func TestHandler_NewHandler(t *testing.T) {
	t.Run("requires service", func(t *testing.T) {
		_, err := NewHandler(HandlerOptions{Logger: logger.NewNoOpLogger()})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "requires a submission service")
	})

	t.Run("rejects service share outside (0,1)", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.ServiceShare = 1
		_, err := NewHandler(HandlerOptions{CustomConfig: cfg, Service: new(MockSubmitter)})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "service_share")
	})

	t.Run("reads worker section", func(t *testing.T) {
		h, err := NewHandler(HandlerOptions{
			AppConfig: &config.Config{Workers: map[string]config.WorkerConfig{
				"submit-application": {Enabled: true, MaxJobsActive: 2, Timeout: 60000},
			}},
			Logger:  logger.NewNoOpLogger(),
			Service: new(MockSubmitter),
		})
		require.NoError(t, err)
		assert.Equal(t, TaskType, h.GetTaskType())
		assert.Equal(t, 2, h.GetConfig().MaxJobsActive)
		assert.Equal(t, time.Minute, h.GetConfig().Timeout)
		assert.Equal(t, 48*time.Second, h.GetConfig().ServiceBudget())
	})

	t.Run("reads service share from worker section", func(t *testing.T) {
		h, err := NewHandler(HandlerOptions{
			AppConfig: &config.Config{Workers: map[string]config.WorkerConfig{
				"submit-application": {Enabled: true, Timeout: 100000, ServiceShare: 0.5},
			}},
			Service: new(MockSubmitter),
		})
		require.NoError(t, err)
		assert.Equal(t, 0.5, h.GetConfig().ServiceShare)
		assert.Equal(t, 50*time.Second, h.GetConfig().ServiceBudget())
	})

	t.Run("rejects service share from worker section", func(t *testing.T) {
		_, err := NewHandler(HandlerOptions{
			AppConfig: &config.Config{Workers: map[string]config.WorkerConfig{
				"submit-application": {Enabled: true, ServiceShare: 1.5},
			}},
			Service: new(MockSubmitter),
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "service_share")
	})
}

func TestHandler_ParseInput(t *testing.T) {
	h, err := NewHandler(HandlerOptions{Logger: logger.NewNoOpLogger(), Service: new(MockSubmitter)})
	require.NoError(t, err)

	input, err := h.parseInput(createMockJob(1, map[string]interface{}{
		"birthDate":            "2011-01-15",
		"regionCode":           7,
		"incomeBracket":        2,
		"examScore":            85,
		"extracurricularScore": 8,
		"interviewScore":       9,
		"applicationId":        "APP-1",
	}))
	require.NoError(t, err)
	assert.Nil(t, input.Attributes.Age)
	assert.Equal(t, "2011-01-15", input.Attributes.BirthDate)
	assert.Equal(t, 85, *input.Attributes.ExamScore)
}

func TestHandler_ParseInput_Rejects(t *testing.T) {
	h, err := NewHandler(HandlerOptions{Logger: logger.NewNoOpLogger(), Service: new(MockSubmitter)})
	require.NoError(t, err)

	_, err = h.parseInput(createMockJob(2, map[string]interface{}{"birthDate": "15/01/2011"}))
	assert.ErrorIs(t, err, errors.ErrValidationFailed)

	_, err = h.parseInput(entities.Job{ActivatedJob: &pb.ActivatedJob{Key: 3, Variables: "{not json"}})
	assert.Equal(t, errors.ErrCodeInputParsingFailed, errors.CodeOf(err))
}

func TestReceiptVariables_MatchOutputSchema(t *testing.T) {
	receipt := models.SubmissionReceipt{
		ReceiptID:   "4b7d8f0e-0a53-4f8e-9d0b-1b9d5f6a2c11",
		Identity:    applicant.Hex(),
		TxHash:      txHash,
		Status:      models.SubmissionPending,
		SubmittedAt: fixedNow,
		Preview:     models.ScoreBreakdown{TotalPoints: 82, IsEligible: true},
	}

	result := validation.ValidateInput(receipt.ToMap(), GetOutputSchema())
	assert.True(t, result.Valid, validation.FormatErrors(result.Errors))
}
