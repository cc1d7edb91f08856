// internal/workers/matching/optimize-publisher-mix/handler.go
package optimizepublishermix

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	apperrors "resonate-workers/internal/common/errors"
	"resonate-workers/internal/common/logger"
	"resonate-workers/internal/common/metrics"
	"resonate-workers/internal/common/observability"
	"resonate-workers/internal/matching"
	"resonate-workers/internal/models"
)

const (
	TaskType = "optimize-publisher-mix"
)

var (
	ErrInvalidPriority       = errors.New("prioritize must be one of coverage, quality, cost")
	ErrInvalidPublisherCount = errors.New("publisher bounds are invalid")
)

// Notifier publishes optimization events. It is satisfied by the SNS client.
type Notifier interface {
	PublishEvent(ctx context.Context, eventType string, payload interface{}, attrs map[string]string) (string, error)
}

type Handler struct {
	config   *Config
	engine   *matching.Engine
	notifier Notifier
	errors   *apperrors.ErrorHandler
	logger   logger.Logger
}

// NewHandler builds the handler. notifier may be nil, which disables notifications.
func NewHandler(config *Config, engine *matching.Engine, notifier Notifier, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:   config,
		engine:   engine,
		notifier: notifier,
		errors:   apperrors.NewErrorHandler(log),
		logger:   log,
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
	h.logger.Info("publisher mix optimized", map[string]interface{}{
		"jobKey":       job.Key,
		"runId":        output.RunID,
		"budgetCents":  input.BudgetCents,
		"selected":     len(output.Recommended.SelectedPublishers),
		"alternatives": len(output.Results),
		"notified":     output.Notified,
		"durationMs":   output.DurationMs,
	})
	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	start := time.Now()
	runID := uuid.NewString()

	priority, err := parsePriority(input.Prioritize)
	if err != nil {
		return nil, apperrors.NewInputValidationFailedError(err.Error())
	}
	opts, err := h.optimizeOptions(input, priority)
	if err != nil {
		return nil, apperrors.NewInputValidationFailedError(err.Error())
	}

	ctx, span := observability.StartSpan(ctx, TaskType, "optimize mix",
		attribute.String("runId", runID),
		attribute.Int("candidates", len(input.Candidates)),
		attribute.Int64("budgetCents", input.BudgetCents))
	defer span.End()

	var results []models.OptimizationResult
	if priority != "" {
		r := h.engine.OptimizePublisherMix(input.Candidates, input.Target, opts)
		metrics.MixSelectedPublishers.WithLabelValues(string(priority)).Observe(float64(len(r.SelectedPublishers)))
		results = []models.OptimizationResult{r}
	} else {
		results = h.engine.GenerateOptimizationAlternatives(input.Candidates, input.Target, input.BudgetCents)
		for _, r := range results {
			metrics.MixSelectedPublishers.WithLabelValues("alternatives").Observe(float64(len(r.SelectedPublishers)))
		}
	}

	output := &Output{
		RunID:       runID,
		Recommended: results[0],
		Results:     results,
	}
	output.Notified = h.notify(ctx, input, output)
	output.DurationMs = time.Since(start).Milliseconds()
	return output, nil
}

func parsePriority(v string) (models.Priority, error) {
	switch p := models.Priority(strings.ToLower(strings.TrimSpace(v))); p {
	case "":
		return "", nil
	case models.PriorityCoverage, models.PriorityQuality, models.PriorityCost:
		return p, nil
	default:
		return "", fmt.Errorf("%w: got %q", ErrInvalidPriority, v)
	}
}

func (h *Handler) optimizeOptions(input *Input, priority models.Priority) (matching.OptimizeOptions, error) {
	opts := h.engine.DefaultOptimizeOptions(input.BudgetCents)
	if priority != "" {
		opts.Prioritize = priority
	}
	if input.MinPublishers != nil {
		if *input.MinPublishers < 0 {
			return opts, fmt.Errorf("%w: minPublishers %d is negative", ErrInvalidPublisherCount, *input.MinPublishers)
		}
		opts.MinPublishers = *input.MinPublishers
	}
	if input.MaxPublishers != nil {
		if *input.MaxPublishers < 1 {
			return opts, fmt.Errorf("%w: maxPublishers %d must be at least 1", ErrInvalidPublisherCount, *input.MaxPublishers)
		}
		opts.MaxPublishers = *input.MaxPublishers
	}
	if opts.MinPublishers > opts.MaxPublishers {
		return opts, fmt.Errorf("%w: minPublishers %d exceeds maxPublishers %d", ErrInvalidPublisherCount, opts.MinPublishers, opts.MaxPublishers)
	}
	return opts, nil
}

// notify publishes the recommended result for a campaign. Failures are logged and
// never fail the job.
func (h *Handler) notify(ctx context.Context, input *Input, output *Output) bool {
	campaignID := strings.TrimSpace(input.CampaignID)
	if h.notifier == nil || campaignID == "" {
		return false
	}
	if len(output.Recommended.SelectedPublishers) == 0 {
		return false
	}

	msg := MixRecommendation{
		RunID:        output.RunID,
		CampaignID:   campaignID,
		Market:       matching.LookupMarket(input.Target.Market).ID,
		BudgetCents:  input.BudgetCents,
		Result:       output.Recommended,
		Alternatives: len(output.Results) - 1,
		GeneratedAt:  time.Now().UTC(),
	}

	messageID, err := h.notifier.PublishEvent(ctx, h.config.NotifyEventType, msg, map[string]string{
		"campaignId": campaignID,
		"runId":      output.RunID,
	})
	if err != nil {
		stdErr := apperrors.NewNotificationSendFailedError(h.config.NotifyEventType, err)
		h.logger.Warn("failed to publish mix recommendation", map[string]interface{}{
			"runId":      output.RunID,
			"campaignId": campaignID,
			"errorCode":  stdErr.Code,
			"error":      err.Error(),
		})
		return false
	}

	h.logger.Debug("mix recommendation published", map[string]interface{}{
		"runId":     output.RunID,
		"messageId": messageID,
	})
	return true
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
