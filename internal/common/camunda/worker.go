// internal/common/camunda/worker.go
package camunda

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"

	apperrors "resonate-workers/internal/common/errors"
	"resonate-workers/internal/common/logger"
	"resonate-workers/internal/common/validation"
)

// JobHandler is implemented by every task handler.
type JobHandler interface {
	Handle(client worker.JobClient, job entities.Job)
}

// JobErrorHandler reports a failed job back to the broker.
type JobErrorHandler interface {
	HandleJobError(ctx context.Context, client worker.JobClient, job entities.Job, err error)
}

// JobRecorder receives per-job telemetry.
type JobRecorder interface {
	RecordJobProcessed(ctx context.Context, taskType, status string)
	RecordJobDuration(ctx context.Context, taskType string, duration time.Duration, status string)
}

// Middleware wraps a job handler function.
type Middleware func(next worker.JobHandler) worker.JobHandler

// WorkerOptions controls job activation for one task type.
type WorkerOptions struct {
	Name          string
	MaxJobsActive int
	Timeout       time.Duration
}

type CamundaWorker struct {
	worker   worker.JobWorker
	logger   logger.Logger
	taskType string
}

// NewWorker opens a job worker for taskType. Middleware runs outermost first.
func NewWorker(
	client zbc.Client,
	taskType string,
	opts WorkerOptions,
	handler JobHandler,
	log logger.Logger,
	middleware ...Middleware,
) *CamundaWorker {
	h := Chain(handler.Handle, middleware...)

	step := client.NewJobWorker().
		JobType(taskType).
		Handler(h).
		MaxJobsActive(opts.MaxJobsActive)
	if opts.Name != "" {
		step = step.Name(opts.Name)
	}
	if opts.Timeout > 0 {
		step = step.Timeout(opts.Timeout)
	}

	return &CamundaWorker{
		worker:   step.Open(),
		logger:   log.WithFields(map[string]interface{}{"taskType": taskType}),
		taskType: taskType,
	}
}

// Chain applies middleware to h so that middleware[0] sees the job first.
func Chain(h worker.JobHandler, middleware ...Middleware) worker.JobHandler {
	for i := len(middleware) - 1; i >= 0; i-- {
		h = middleware[i](h)
	}
	return h
}

func (w *CamundaWorker) Start() {
	w.logger.Info("worker started", nil)
}

// Stop closes the job worker and waits for in-flight jobs. The shared Zeebe client
// is closed by its owner.
func (w *CamundaWorker) Stop() {
	w.logger.Info("stopping worker", nil)
	w.worker.Close()
	w.worker.AwaitClose()
}

// WithValidation rejects jobs whose variables do not satisfy the registered input
// schema for taskType. Rejected jobs never reach the handler.
func WithValidation(v *validation.Validator, taskType string, errs JobErrorHandler, log logger.Logger) Middleware {
	return func(next worker.JobHandler) worker.JobHandler {
		if v == nil || !v.HasSchema(taskType) {
			return next
		}
		return func(client worker.JobClient, job entities.Job) {
			result, err := v.ValidateVariables(taskType, job.Variables)
			if err != nil {
				errs.HandleJobError(context.Background(), client, job, apperrors.NewParseError(err))
				return
			}
			if !result.Valid {
				messages := result.GetErrorMessages()
				log.Warn("job variables failed schema validation", map[string]interface{}{
					"taskType": taskType,
					"jobKey":   job.Key,
					"errors":   messages,
				})
				errs.HandleJobError(context.Background(), client, job,
					apperrors.NewInputValidationFailedError(strings.Join(messages, "; ")))
				return
			}
			next(client, job)
		}
	}
}

// WithTelemetry records each activated job and how long the handler held it.
// Handlers report their own outcome, so the status is always "handled".
func WithTelemetry(rec JobRecorder, taskType string) Middleware {
	return func(next worker.JobHandler) worker.JobHandler {
		if rec == nil {
			return next
		}
		return func(client worker.JobClient, job entities.Job) {
			start := time.Now()
			defer func() {
				ctx := context.Background()
				rec.RecordJobProcessed(ctx, taskType, "handled")
				rec.RecordJobDuration(ctx, taskType, time.Since(start), "handled")
			}()
			next(client, job)
		}
	}
}

// WithRecovery turns a handler panic into an INTERNAL_ERROR for the job.
func WithRecovery(errs JobErrorHandler, log logger.Logger) Middleware {
	return func(next worker.JobHandler) worker.JobHandler {
		return func(client worker.JobClient, job entities.Job) {
			defer func() {
				if r := recover(); r != nil {
					log.Error("job handler panicked", map[string]interface{}{
						"jobKey": job.Key,
						"type":   job.Type,
						"panic":  fmt.Sprint(r),
						"stack":  string(debug.Stack()),
					})
					errs.HandleJobError(context.Background(), client, job,
						apperrors.NewInternalError(fmt.Errorf("panic: %v", r)))
				}
			}()
			next(client, job)
		}
	}
}
