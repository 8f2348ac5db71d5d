package errors

import (
	"context"
	"encoding/json"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

// Logger is the subset of logger.Logger the handler needs.
type Logger interface {
	Error(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
}

// ErrorHandler routes job failures either back to the engine with retries or out as BPMN errors.
type ErrorHandler struct {
	logger Logger
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// CommandTimeout bounds a fail or throw command. It runs detached from the job context, which may
// already be expired when the service gave up.
const CommandTimeout = 10 * time.Second

// Decision is what HandleJobError did with a failed job.
type Decision string

const (
	DecisionRetry Decision = "retry"
	DecisionThrow Decision = "throw"
)

// Decide returns the routing for err given the job's remaining retries.
func Decide(err error, remainingRetries int32) (Decision, *StandardError, *BPMNError) {
	stdErr := AsStandard(err)
	bpmnErr := ConvertToBPMNError(stdErr)
	if bpmnErr.Retries > 0 && remainingRetries > 1 {
		return DecisionRetry, stdErr, bpmnErr
	}
	return DecisionThrow, stdErr, bpmnErr
}

// HandleJobError fails the job with retries for transient codes, otherwise throws a BPMN error
// so the process can route to a user task or the verdict-check path.
func (h *ErrorHandler) HandleJobError(ctx context.Context, client worker.JobClient, job entities.Job, err error) Decision {
	decision, stdErr, bpmnErr := Decide(err, job.Retries)
	h.logError(job, stdErr, bpmnErr, decision)

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), CommandTimeout)
	defer cancel()

	if decision == DecisionRetry {
		h.failJobWithRetries(ctx, client, job, bpmnErr)
	} else {
		h.throwBPMNError(ctx, client, job, bpmnErr)
	}
	return decision
}

func (h *ErrorHandler) failJobWithRetries(ctx context.Context, client worker.JobClient, job entities.Job, bpmnErr *BPMNError) {
	// job.Retries is the remaining budget; never raise it above the code's own ceiling.
	retries := job.Retries - 1
	if int(retries) > bpmnErr.Retries {
		retries = int32(bpmnErr.Retries)
	}

	cmd := client.NewFailJobCommand().
		JobKey(job.Key).
		Retries(retries).
		ErrorMessage(bpmnErr.Message)

	if withVars, err := cmd.VariablesFromMap(bpmnErr.ToErrorVariables()); err == nil {
		if _, sendErr := withVars.Send(ctx); sendErr != nil {
			h.logSendFailure(job, "fail", sendErr)
		}
		return
	}

	if _, err := cmd.Send(ctx); err != nil {
		h.logSendFailure(job, "fail", err)
	}
}

func (h *ErrorHandler) throwBPMNError(ctx context.Context, client worker.JobClient, job entities.Job, bpmnErr *BPMNError) {
	cmd := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(bpmnErr.Code).
		ErrorMessage(bpmnErr.Message)

	if varsJSON, err := json.Marshal(bpmnErr.ToErrorVariables()); err == nil {
		if withVars, err := cmd.VariablesFromString(string(varsJSON)); err == nil {
			if _, sendErr := withVars.Send(ctx); sendErr != nil {
				h.logSendFailure(job, "throw", sendErr)
			}
			return
		}
	}

	if _, err := cmd.Send(ctx); err != nil {
		h.logSendFailure(job, "throw", err)
	}
}

func (h *ErrorHandler) logSendFailure(job entities.Job, command string, err error) {
	h.logger.Error("Failed to send job command", map[string]interface{}{
		"jobKey":  job.Key,
		"command": command,
		"error":   err.Error(),
	})
}

func (h *ErrorHandler) logError(job entities.Job, stdErr *StandardError, bpmnErr *BPMNError, decision Decision) {
	h.logger.Error("Job failed", map[string]interface{}{
		"jobKey":             job.Key,
		"jobType":            job.Type,
		"errorCode":          string(stdErr.Code),
		"bpmnErrorCode":      bpmnErr.Code,
		"message":            bpmnErr.Message,
		"details":            stdErr.Details,
		"retryable":          stdErr.Retryable,
		"userActionRequired": IsUserActionRequired(stdErr.Code),
		"decision":           string(decision),
		"errorCategory":      GetErrorCategory(stdErr.Code),
		"processInstanceKey": job.ProcessInstanceKey,
	})
}
