package submitapplication

import (
	"context"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.opentelemetry.io/otel/trace"

	"eligibility-workers/internal/common/camunda"
	"eligibility-workers/internal/common/config"
	"eligibility-workers/internal/common/errors"
	"eligibility-workers/internal/common/logger"
	"eligibility-workers/internal/common/metrics"
	"eligibility-workers/internal/common/observability"
	"eligibility-workers/internal/eligibility/scoring"
	"eligibility-workers/internal/models"
)

const TaskType = "eligibility.application.submit"

// Submitter is the business logic behind the handler.
type Submitter interface {
	Submit(ctx context.Context, raw models.RawAttributes) (*models.SubmissionReceipt, error)
}

type Handler struct {
	config       *Config
	logger       logger.Logger
	camunda      *camunda.Client
	service      Submitter
	errorHandler *errors.ErrorHandler
	obs          *observability.Observability
	jobWorker    worker.JobWorker
}

type HandlerOptions struct {
	AppConfig     *config.Config
	Camunda       *camunda.Client
	CustomConfig  *Config
	Logger        logger.Logger
	Observability *observability.Observability
	Service       Submitter
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	workerConfig := createConfigFromAppConfig(opts.AppConfig, opts.CustomConfig)
	if err := workerConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", TaskType, err)
	}
	if opts.Service == nil {
		return nil, fmt.Errorf("%s requires a submission service", TaskType)
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewStructured("info", "json")
	}
	log = log.WithFields(map[string]interface{}{"worker": TaskType})

	return &Handler{
		config:       workerConfig,
		logger:       log,
		camunda:      opts.Camunda,
		service:      opts.Service,
		errorHandler: errors.NewErrorHandler(log),
		obs:          opts.Observability,
	}, nil
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	startTime := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()
	ctx, span := h.obs.StartJobSpan(ctx, TaskType, job.GetKey(), job.GetProcessInstanceKey())
	defer span.End()

	h.logger.Info("Processing application submission", map[string]interface{}{
		"jobKey":             job.GetKey(),
		"processInstanceKey": job.GetProcessInstanceKey(),
	})

	input, err := h.parseInput(job)
	if err != nil {
		h.fail(ctx, client, job, err, startTime)
		return
	}

	// The rest of the job timeout is kept for completing the job.
	serviceCtx, cancelService := context.WithTimeout(ctx, h.config.ServiceBudget())
	receipt, err := h.service.Submit(serviceCtx, input.Attributes)
	cancelService()
	if err != nil {
		h.fail(ctx, client, job, err, startTime)
		return
	}

	if err := camunda.CompleteJob(ctx, client, job.GetKey(), receipt.ToMap()); err != nil {
		h.logger.Error("Failed to complete job", map[string]interface{}{
			"jobKey": job.GetKey(),
			"txHash": receipt.TxHash,
			"error":  err.Error(),
		})
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(startTime).Seconds())
	h.record(ctx, "success", startTime)
	h.logger.Info("Application submitted", map[string]interface{}{
		"jobKey":    job.GetKey(),
		"receiptId": receipt.ReceiptID,
		"txHash":    receipt.TxHash,
		"status":    receipt.Status,
	})
}

func (h *Handler) parseInput(job entities.Job) (*Input, error) {
	variables, err := job.GetVariablesAsMap()
	if err != nil {
		return nil, errors.NewInputParsingError(err.Error())
	}

	raw, err := scoring.RawFromVariables(variables)
	if err != nil {
		return nil, err
	}
	return &Input{Attributes: raw}, nil
}

func (h *Handler) fail(ctx context.Context, client worker.JobClient, job entities.Job, err error, startTime time.Time) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(errors.AsStandard(err).Code)).Inc()
	h.record(ctx, "failed", startTime)
	trace.SpanFromContext(ctx).RecordError(err)
	h.errorHandler.HandleJobError(ctx, client, job, err)
}

func (h *Handler) record(ctx context.Context, status string, startTime time.Time) {
	if h.obs == nil {
		return
	}
	h.obs.RecordJobProcessed(ctx, TaskType, status)
	h.obs.RecordJobDuration(ctx, TaskType, time.Since(startTime), status)
}

func (h *Handler) Register() error {
	if h.camunda == nil {
		return fmt.Errorf("camunda client is required to register %s", TaskType)
	}
	h.jobWorker = camunda.StartWorker(
		h.camunda.GetClient(),
		h,
		camunda.WorkerConfig(h.config.Enabled, h.config.MaxJobsActive, h.config.Timeout),
		h.logger,
	)
	return nil
}

func (h *Handler) Close() {
	if h.jobWorker != nil {
		h.logger.Info("Shutting down worker gracefully", nil)
		h.jobWorker.Close()
		h.jobWorker = nil
	}
}

func (h *Handler) GetTaskType() string {
	return TaskType
}

func (h *Handler) IsEnabled() bool {
	return h.config.Enabled
}

func (h *Handler) GetConfig() *Config {
	return h.config
}
