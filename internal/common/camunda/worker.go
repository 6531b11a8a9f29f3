// internal/common/camunda/worker.go
package camunda

import (
	"context"
	"time"

	"assistant-workers/internal/common/config"
	"assistant-workers/internal/common/metrics"

	"github.com/camunda/zeebe/clients/go/v8/pkg/commands"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"go.uber.org/zap"
)

// JobHandler is implemented by every worker package's Handler.
type JobHandler interface {
	Handle(client worker.JobClient, job entities.Job)
}

// JobHandlerFunc adapts a plain function to JobHandler.
type JobHandlerFunc func(client worker.JobClient, job entities.Job)

func (f JobHandlerFunc) Handle(client worker.JobClient, job entities.Job) {
	f(client, job)
}

type CamundaWorker struct {
	worker   worker.JobWorker
	logger   *zap.Logger
	taskType string
}

// NewWorker opens a job worker for taskType. Job activity, duration and
// outcome are tracked in the worker_* prometheus vectors.
func NewWorker(
	client zbc.Client,
	taskType string,
	wcfg config.WorkerConfig,
	handler JobHandler,
	logger *zap.Logger,
) *CamundaWorker {
	maxJobs := wcfg.MaxJobsActive
	if maxJobs <= 0 {
		maxJobs = 5
	}
	timeout := wcfg.Timeout
	if timeout <= 0 {
		timeout = 30000
	}

	jobWorker := client.NewJobWorker().
		JobType(taskType).
		Handler(instrument(taskType, handler)).
		MaxJobsActive(maxJobs).
		Timeout(config.GetDuration(timeout)).
		Open()

	logger.Info("worker started",
		zap.String("taskType", taskType),
		zap.Int("maxJobsActive", maxJobs),
		zap.Int("timeoutMs", timeout),
	)

	return &CamundaWorker{
		worker:   jobWorker,
		logger:   logger,
		taskType: taskType,
	}
}

func instrument(taskType string, handler JobHandler) worker.JobHandler {
	return func(client worker.JobClient, job entities.Job) {
		metrics.WorkerJobsActive.WithLabelValues(taskType).Inc()
		start := time.Now()
		defer func() {
			metrics.WorkerJobsActive.WithLabelValues(taskType).Dec()
			metrics.WorkerJobDuration.WithLabelValues(taskType).Observe(time.Since(start).Seconds())
		}()
		handler.Handle(countingClient{JobClient: client, taskType: taskType}, job)
	}
}

// countingClient counts the terminal command each job ends with.
type countingClient struct {
	worker.JobClient
	taskType string
}

func (c countingClient) NewCompleteJobCommand() commands.CompleteJobCommandStep1 {
	metrics.WorkerJobsCompleted.WithLabelValues(c.taskType).Inc()
	return c.JobClient.NewCompleteJobCommand()
}

func (c countingClient) NewFailJobCommand() commands.FailJobCommandStep1 {
	metrics.WorkerJobsFailed.WithLabelValues(c.taskType, "job_failed").Inc()
	return c.JobClient.NewFailJobCommand()
}

func (c countingClient) NewThrowErrorCommand() commands.ThrowErrorCommandStep1 {
	metrics.WorkerJobsFailed.WithLabelValues(c.taskType, "bpmn_error").Inc()
	return c.JobClient.NewThrowErrorCommand()
}

func (w *CamundaWorker) TaskType() string {
	return w.taskType
}

// Stop closes the job worker. The shared zbc client is owned by the caller.
func (w *CamundaWorker) Stop(ctx context.Context) {
	w.logger.Info("stopping worker", zap.String("taskType", w.taskType))
	done := make(chan struct{})
	go func() {
		w.worker.Close()
		w.worker.AwaitClose()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		w.logger.Warn("worker did not stop in time", zap.String("taskType", w.taskType))
	}
}
