// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"resonate-workers/internal/common/aws"
	"resonate-workers/internal/common/camunda"
	"resonate-workers/internal/common/config"
	"resonate-workers/internal/common/database"
	apperrors "resonate-workers/internal/common/errors"
	"resonate-workers/internal/common/logger"
	"resonate-workers/internal/common/observability"
	"resonate-workers/internal/common/validation"
	"resonate-workers/internal/matching"
	"resonate-workers/pkg/registry"

	// Data Access Workers (2)
	qe "resonate-workers/internal/workers/data-access/query-elasticsearch"
	qp "resonate-workers/internal/workers/data-access/query-postgresql"

	// Matching Workers (3)
	amp "resonate-workers/internal/workers/matching/analyze-publisher-mix"
	fmp "resonate-workers/internal/workers/matching/find-matching-publishers"
	omp "resonate-workers/internal/workers/matching/optimize-publisher-mix"
)

var connectRetry = &camunda.RetryConfig{
	MaxRetries: 10,
	BaseDelay:  2 * time.Second,
	MaxDelay:   30 * time.Second,
}

// connect retries fn with exponential backoff, logging every failed attempt.
func connect(ctx context.Context, name string, log *zap.Logger, fn func(context.Context) error) error {
	attempt := 0
	return camunda.RetryWithBackoff(ctx, connectRetry, nil, func(ctx context.Context) error {
		attempt++
		err := fn(ctx)
		if err != nil {
			log.Warn(fmt.Sprintf("%s failed, retrying...", name),
				zap.Error(err),
				zap.Int("attempt", attempt),
				zap.Int("maxRetries", connectRetry.MaxRetries),
			)
		}
		return err
	})
}

func main() {
	bootLog := logger.New("info", "console")

	cfg, err := config.Load()
	if err != nil {
		bootLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...",
		zap.String("environment", cfg.App.Environment),
		zap.String("version", cfg.App.Version),
	)

	obs := observability.New(cfg.Observability.ServiceName)
	defer obs.Shutdown()
	if cfg.Observability.TracingEnabled {
		if err := obs.EnableTracing(cfg.Observability.JaegerEndpoint); err != nil {
			zapLog.Warn("tracing disabled", zap.Error(err))
		}
	}

	ctx := context.Background()

	// --- Init Zeebe Client ---
	zeebe, err := camunda.NewClientWithConfig(&camunda.ClientConfig{
		GatewayAddress:         cfg.Camunda.BrokerAddress,
		UsePlaintextConnection: true,
		ConnectionTimeout:      10 * time.Second,
		RequestTimeout:         config.GetDuration(cfg.Camunda.RequestTimeout),
		RetryConfig:            connectRetry,
	})
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- Init PostgreSQL ---
	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		zapLog.Fatal("postgres client failed", zap.Error(err))
	}
	defer pg.Close()
	if err := connect(ctx, "PostgreSQL connection", zapLog, pg.Ping); err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Elasticsearch ---
	esClient, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
	if err != nil {
		zapLog.Fatal("elasticsearch client failed", zap.Error(err))
	}
	if err := connect(ctx, "Elasticsearch connection", zapLog, esClient.Ping); err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	if ok, err := esClient.IndexExists(ctx, cfg.Database.Elasticsearch.PublisherIndex); err == nil && !ok {
		zapLog.Warn("publisher index is missing; search jobs will fail with INDEX_NOT_FOUND",
			zap.String("index", cfg.Database.Elasticsearch.PublisherIndex))
	}
	zapLog.Info("Elasticsearch connected successfully")

	// --- Init Redis ---
	redis := database.NewRedis(cfg.Database.Redis)
	defer redis.Close()
	if err := connect(ctx, "Redis connection", zapLog, redis.Ping); err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	zapLog.Info("Redis connected successfully")

	// --- Mix recommendation notifications ---
	var notifier omp.Notifier
	if cfg.Integrations.AWS.SNS.Enabled {
		sns, err := aws.NewSNSClient(ctx, cfg.Integrations.AWS.Region, cfg.Integrations.AWS.SNS.TopicARN)
		if err != nil {
			zapLog.Fatal("sns client failed", zap.Error(err))
		}
		notifier = sns
		zapLog.Info("SNS notifications enabled", zap.String("topicArn", sns.TopicARN()))
	}

	// --- Input schemas ---
	reg, err := registry.LoadRegistry(cfg.Registry.Path)
	if err != nil {
		zapLog.Warn("activity registry not loaded; job variables are not schema-validated",
			zap.String("path", cfg.Registry.Path), zap.Error(err))
	}
	validator, err := validation.NewValidator(reg)
	if err != nil {
		zapLog.Fatal("invalid activity registry", zap.Error(err))
	}

	engine := matching.NewEngine(cfg.Matching)
	jobErrors := apperrors.NewErrorHandler(log)

	var workers []*camunda.CamundaWorker
	register := func(taskType string, handler camunda.JobHandler) {
		if !config.IsWorkerEnabled(cfg, taskType) {
			zapLog.Info("worker disabled", zap.String("taskType", taskType))
			return
		}
		wc := config.GetWorkerConfig(cfg, taskType)
		w := camunda.NewWorker(zeebe.GetClient(), taskType,
			camunda.WorkerOptions{
				Name:          cfg.App.Name,
				MaxJobsActive: wc.MaxJobsActive,
				Timeout:       config.GetDuration(wc.Timeout),
			},
			handler, log,
			camunda.WithTelemetry(obs, taskType),
			camunda.WithRecovery(jobErrors, log),
			camunda.WithValidation(validator, taskType, jobErrors, log),
		)
		w.Start()
		workers = append(workers, w)
	}
	timeout := func(taskType string) time.Duration {
		return config.GetDuration(config.GetWorkerConfig(cfg, taskType).Timeout)
	}

	// --- 1. Matching Workers (3) ---
	register(fmp.TaskType, fmp.NewHandler(
		&fmp.Config{
			Timeout:       timeout(fmp.TaskType),
			CacheTTL:      config.GetDuration(cfg.Publishers.CacheTTL),
			CachePrefix:   cfg.Publishers.CachePrefix,
			DefaultMarket: cfg.Publishers.DefaultMarket,
			MaxPoolSize:   cfg.Publishers.MaxPoolSize,
			Concurrency:   config.GetWorkerConfig(cfg, fmp.TaskType).Concurrency,
		},
		engine, pg.DB, redis.Client, log,
	).WithScoreRecorder(obs))

	register(amp.TaskType, amp.NewHandler(
		&amp.Config{Timeout: timeout(amp.TaskType)},
		engine, log,
	))

	register(omp.TaskType, omp.NewHandler(
		&omp.Config{
			Timeout:         timeout(omp.TaskType),
			NotifyEventType: omp.LoadConfig().NotifyEventType,
		},
		engine, notifier, log,
	))

	// --- 2. Data Access Workers (2) ---
	register(qp.TaskType, qp.NewHandler(
		&qp.Config{
			Timeout:     timeout(qp.TaskType),
			MaxPoolSize: cfg.Publishers.MaxPoolSize,
		},
		pg.DB, log,
	))

	register(qe.TaskType, qe.NewHandler(
		&qe.Config{
			Timeout: timeout(qe.TaskType),
			Index:   cfg.Database.Elasticsearch.PublisherIndex,
		},
		esClient.Client, log,
	))

	zapLog.Info("Workers registered", zap.Int("count", len(workers)))

	// --- Health & Metrics Server ---
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, map[string]interface{}{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		checks := map[string]string{}
		ready := true
		for name, ping := range map[string]func(context.Context) error{
			"zeebe":         zeebe.HealthCheck,
			"postgres":      pg.Ping,
			"elasticsearch": esClient.Ping,
			"redis":         redis.Ping,
		} {
			if err := ping(ctx); err != nil {
				checks[name] = err.Error()
				ready = false
				continue
			}
			checks[name] = "ok"
		}

		status, code := "ready", http.StatusOK
		if !ready {
			status, code = "not ready", http.StatusServiceUnavailable
		}
		writeStatus(w, code, map[string]interface{}{
			"status": status,
			"checks": checks,
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.HTTPPort),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping health server", zap.Error(err))
	}
	for _, w := range workers {
		w.Stop()
	}
	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

func writeStatus(w http.ResponseWriter, code int, body map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
