package camunda

import (
	"context"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"

	"eligibility-workers/internal/common/config"
	"eligibility-workers/internal/common/logger"
)

// JobHandler is implemented by every worker handler.
type JobHandler interface {
	Handle(client worker.JobClient, job entities.Job)
	GetTaskType() string
}

// StartWorker opens a job worker for the handler's task type. It returns nil when the worker is disabled.
func StartWorker(client zbc.Client, handler JobHandler, wcfg config.WorkerConfig, log logger.Logger) worker.JobWorker {
	taskType := handler.GetTaskType()
	if !wcfg.Enabled {
		log.Info("worker disabled", map[string]interface{}{"taskType": taskType})
		return nil
	}

	jobWorker := client.NewJobWorker().
		JobType(taskType).
		Handler(handler.Handle).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(time.Duration(wcfg.Timeout) * time.Millisecond).
		Open()

	log.Info("worker started", map[string]interface{}{
		"taskType":      taskType,
		"maxJobsActive": wcfg.MaxJobsActive,
		"timeout_ms":    wcfg.Timeout,
	})
	return jobWorker
}

// CompleteJob sends the complete command with variables, retrying transient broker failures.
func CompleteJob(ctx context.Context, client worker.JobClient, jobKey int64, variables map[string]interface{}) error {
	_, err := executeWithRetry(ctx, DefaultRetryConfig, func(ctx context.Context) (interface{}, error) {
		cmd, err := client.NewCompleteJobCommand().JobKey(jobKey).VariablesFromMap(variables)
		if err != nil {
			return nil, err
		}
		return cmd.Send(ctx)
	}, "complete-job")
	return err
}

// WorkerConfig converts a handler's timeout into the shared worker settings.
func WorkerConfig(enabled bool, maxJobsActive int, timeout time.Duration) config.WorkerConfig {
	return config.WorkerConfig{
		Enabled:       enabled,
		MaxJobsActive: maxJobsActive,
		Timeout:       int(timeout / time.Millisecond),
	}
}
