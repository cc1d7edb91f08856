// internal/workers/data-access/query-elasticsearch/handler.go
package queryelasticsearch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/elastic/go-elasticsearch/v8"

	apperrors "resonate-workers/internal/common/errors"
	"resonate-workers/internal/common/logger"
	"resonate-workers/internal/common/metrics"
	"resonate-workers/internal/models"
	"resonate-workers/internal/workers/data-access/query-elasticsearch/queries"
)

const (
	TaskType = "query-elasticsearch"
)

type Handler struct {
	config *Config
	client *elasticsearch.Client
	errors *apperrors.ErrorHandler
	logger logger.Logger
}

func NewHandler(config *Config, client *elasticsearch.Client, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config: config,
		client: client,
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
	h.logger.Info("search completed", map[string]interface{}{
		"jobKey":     job.Key,
		"queryType":  input.QueryType,
		"totalHits":  output.TotalHits,
		"durationMs": output.Took,
	})
	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, apperrors.NewInputValidationFailedError("input cannot be nil")
	}

	sq := h.searchQuery(input)
	result, err := queries.Execute(ctx, h.client, sq)
	if err != nil {
		return nil, h.mapError(ctx, sq, err)
	}

	return &Output{
		Data:      result.Data,
		TotalHits: result.TotalHits,
		MaxScore:  result.MaxScore,
		Took:      result.Took,
	}, nil
}

func (h *Handler) searchQuery(input *Input) queries.SearchQuery {
	sq := queries.SearchQuery{
		Index:       input.IndexName,
		QueryType:   models.QueryType(input.QueryType),
		Market:      input.Market,
		PublisherID: input.PublisherID,
		From:        input.Pagination.From,
		Size:        input.Pagination.Size,
	}
	if sq.Index == "" {
		sq.Index = h.config.Index
	}
	if target := input.Target; target != nil {
		sq.Neighborhoods = target.Neighborhoods()
		sq.Languages = target.Languages()
		sq.Ethnicities = target.Ethnicities()
		if sq.Market == "" {
			sq.Market = target.Market
		}
	}
	return sq
}

func (h *Handler) mapError(ctx context.Context, sq queries.SearchQuery, err error) error {
	queryType := string(sq.QueryType)

	var respErr *queries.ResponseError
	switch {
	case errors.Is(err, queries.ErrUnknownQueryType):
		return apperrors.NewInvalidQueryTypeError(queryType)
	case errors.Is(err, queries.ErrMissingParam):
		return apperrors.NewInputValidationFailedError(fmt.Sprintf("%s: %v", queryType, err))
	case errors.Is(err, queries.ErrMissingIndex):
		return apperrors.NewIndexNotFoundError(sq.Index)
	case errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded):
		return apperrors.NewSearchTimeoutError(queryType)
	case errors.As(err, &respErr) && respErr.IndexNotFound():
		return apperrors.NewIndexNotFoundError(sq.Index)
	case errors.Is(err, queries.ErrTransport):
		return apperrors.NewElasticsearchConnectionFailedError(err)
	default:
		return apperrors.NewSearchQueryFailedError(queryType, err)
	}
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
	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
