// internal/workers/matching/find-matching-publishers/handler.go
package findmatchingpublishers

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"resonate-workers/internal/common/database"
	apperrors "resonate-workers/internal/common/errors"
	"resonate-workers/internal/common/logger"
	"resonate-workers/internal/common/metrics"
	"resonate-workers/internal/common/observability"
	"resonate-workers/internal/matching"
	"resonate-workers/internal/models"
)

const (
	TaskType = "find-matching-publishers"
)

var (
	ErrInvalidMinScore   = errors.New("minScore must be between 0 and 100")
	ErrInvalidMaxResults = errors.New("maxResults must not be negative")
)

// ScoreRecorder receives the overall score of every scored publisher.
type ScoreRecorder interface {
	RecordMatchScore(ctx context.Context, market string, score int)
}

type Handler struct {
	config     *Config
	engine     *matching.Engine
	publishers PublisherSource
	scores     ScoreRecorder
	errors     *apperrors.ErrorHandler
	logger     logger.Logger
}

func NewHandler(config *Config, engine *matching.Engine, db *sql.DB, redis *redis.Client, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	store := database.NewPublisherStore(db, config.MaxPoolSize)
	return newHandler(config, engine, newCachedSource(store, redis, config.CacheTTL, config.CachePrefix, log), log)
}

func newHandler(config *Config, engine *matching.Engine, source PublisherSource, log logger.Logger) *Handler {
	return &Handler{
		config:     config,
		engine:     engine,
		publishers: source,
		errors:     apperrors.NewErrorHandler(log),
		logger:     log,
	}
}

// WithScoreRecorder forwards match scores to r in addition to the Prometheus metrics.
func (h *Handler) WithScoreRecorder(r ScoreRecorder) *Handler {
	h.scores = r
	return h
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
	h.logger.Info("publishers matched", map[string]interface{}{
		"jobKey":      job.Key,
		"market":      output.Market,
		"totalScored": output.TotalScored,
		"matches":     len(output.Matches),
		"durationMs":  output.DurationMs,
	})
	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	start := time.Now()

	opts, err := h.findOptions(input)
	if err != nil {
		return nil, apperrors.NewInputValidationFailedError(err.Error())
	}

	market := h.resolveMarket(input)
	publishers, err := h.loadPublishers(ctx, input, market)
	if err != nil {
		return nil, err
	}

	eligible := make([]models.PublisherProfile, 0, len(publishers))
	for _, p := range publishers {
		if matching.Eligible(p, opts) {
			eligible = append(eligible, p)
		}
	}

	results, err := h.scoreAll(ctx, input.Target, eligible)
	if err != nil {
		return nil, err
	}

	metrics.PublishersScored.WithLabelValues(market).Add(float64(len(results)))
	for _, r := range results {
		metrics.OverallScore.WithLabelValues(market).Observe(float64(r.OverallScore))
		if h.scores != nil {
			h.scores.RecordMatchScore(ctx, market, r.OverallScore)
		}
	}

	ranked := h.engine.RankMatches(results, opts)

	byID := make(map[string]models.PublisherProfile, len(eligible))
	for _, p := range eligible {
		byID[p.ID] = p
	}
	candidates := make([]models.MatchPublisherData, 0, len(ranked))
	for _, r := range ranked {
		candidates = append(candidates, models.MatchPublisherDataFromResult(byID[r.PublisherID], r))
	}

	return &Output{
		Matches:     ranked,
		Candidates:  candidates,
		Market:      market,
		TotalScored: len(results),
		DurationMs:  time.Since(start).Milliseconds(),
	}, nil
}

func (h *Handler) findOptions(input *Input) (matching.FindOptions, error) {
	opts := h.engine.DefaultFindOptions()
	opts.RequireVendorStatus = input.RequireVendorStatus

	if input.MinScore != nil {
		if *input.MinScore < 0 || *input.MinScore > 100 {
			return opts, fmt.Errorf("%w: got %d", ErrInvalidMinScore, *input.MinScore)
		}
		opts.MinScore = *input.MinScore
	}
	if input.MaxResults != nil {
		if *input.MaxResults < 0 {
			return opts, fmt.Errorf("%w: got %d", ErrInvalidMaxResults, *input.MaxResults)
		}
		if *input.MaxResults > 0 {
			opts.MaxResults = *input.MaxResults
		}
	}
	return opts, nil
}

func (h *Handler) resolveMarket(input *Input) string {
	market := strings.TrimSpace(input.Market)
	if market == "" {
		market = strings.TrimSpace(input.Target.Market)
	}
	if market == "" {
		market = h.config.DefaultMarket
	}
	return matching.LookupMarket(market).ID
}

func (h *Handler) loadPublishers(ctx context.Context, input *Input, market string) ([]models.PublisherProfile, error) {
	if len(input.Publishers) > 0 {
		return input.Publishers, nil
	}

	ctx, span := observability.StartSpan(ctx, TaskType, "load publishers", attribute.String("market", market))
	defer span.End()

	publishers, err := h.publishers.ListActive(ctx, market, input.PublisherIDs)
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, apperrors.NewJobTimeoutError("load publishers", err)
		}
		return nil, apperrors.NewPublisherLookupFailedError(market, err)
	}
	return publishers, nil
}

// scoreAll scores publishers concurrently and returns results in input order.
func (h *Handler) scoreAll(ctx context.Context, target models.TargetAudience, publishers []models.PublisherProfile) ([]models.MatchResult, error) {
	ctx, span := observability.StartSpan(ctx, TaskType, "score publishers", attribute.Int("publishers", len(publishers)))
	defer span.End()

	results := make([]models.MatchResult, len(publishers))

	g, gctx := errgroup.WithContext(ctx)
	if h.config.Concurrency > 0 {
		g.SetLimit(h.config.Concurrency)
	}
	for i := range publishers {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = h.engine.Score(target, publishers[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return nil, apperrors.NewJobTimeoutError("score publishers", err)
	}
	return results, nil
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
