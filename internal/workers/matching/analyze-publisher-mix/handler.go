// internal/workers/matching/analyze-publisher-mix/handler.go
package analyzepublishermix

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.opentelemetry.io/otel/attribute"

	apperrors "resonate-workers/internal/common/errors"
	"resonate-workers/internal/common/logger"
	"resonate-workers/internal/common/metrics"
	"resonate-workers/internal/common/observability"
	"resonate-workers/internal/matching"
)

const (
	TaskType = "analyze-publisher-mix"
)

var (
	ErrUnknownCandidate = errors.New("candidateId is not among the candidates")
)

type Handler struct {
	config *Config
	engine *matching.Engine
	errors *apperrors.ErrorHandler
	logger logger.Logger
}

func NewHandler(config *Config, engine *matching.Engine, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config: config,
		engine: engine,
		errors: apperrors.NewErrorHandler(log),
		logger: log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	timer := metrics.StartJob(TaskType)
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		timer.Failed(string(apperrors.ErrCodeParseError))
		h.errors.HandleJobError(context.Background(), client, job, apperrors.NewParseError(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		stdErr := apperrors.Normalize(err)
		timer.Failed(string(stdErr.Code))
		h.errors.HandleJobError(context.Background(), client, job, stdErr)
		return
	}

	timer.Completed()
	h.logger.Info("publisher mix analyzed", map[string]interface{}{
		"jobKey":             job.Key,
		"selected":           len(input.SelectedIDs),
		"geographicCoverage": output.Analysis.GeographicCoverage,
		"languageCoverage":   output.Analysis.LanguageCoverage,
		"durationMs":         output.DurationMs,
	})
	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	start := time.Now()

	_, span := observability.StartSpan(ctx, TaskType, "analyze mix",
		attribute.Int("selected", len(input.SelectedIDs)),
		attribute.Int("candidates", len(input.Candidates)))
	defer span.End()

	output := &Output{
		Analysis: h.engine.AnalyzeMix(input.SelectedIDs, input.Candidates, input.Target),
	}

	if candidateID := strings.TrimSpace(input.CandidateID); candidateID != "" {
		addValue, ok := h.engine.PublisherAddValue(candidateID, input.SelectedIDs, input.Candidates, input.Target)
		if !ok {
			err := fmt.Errorf("%w: %s", ErrUnknownCandidate, candidateID)
			span.RecordError(err)
			return nil, apperrors.NewInputValidationFailedError(err.Error())
		}
		output.AddValue = &addValue
	}

	output.DurationMs = time.Since(start).Milliseconds()
	return output, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	if _, err := cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
