// internal/common/metrics/metrics.go
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	PublishersScored = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matching_publishers_scored_total",
			Help: "Total number of publisher profiles scored against a target audience",
		},
		[]string{"market"},
	)

	OverallScore = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "matching_overall_score",
			Help:    "Distribution of overall match scores",
			Buckets: prometheus.LinearBuckets(10, 10, 10),
		},
		[]string{"market"},
	)

	MixSelectedPublishers = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "matching_mix_selected_publishers",
			Help:    "Number of publishers selected per optimization",
			Buckets: prometheus.LinearBuckets(0, 1, 11),
		},
		[]string{"prioritize"},
	)

	PublisherCacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matching_publisher_cache_requests_total",
			Help: "Publisher pool cache lookups by result",
		},
		[]string{"result"},
	)
)

// JobTimer tracks one job from activation to completion or failure.
type JobTimer struct {
	taskType string
	start    time.Time
}

// StartJob marks a job active for taskType.
func StartJob(taskType string) *JobTimer {
	WorkerJobsActive.WithLabelValues(taskType).Inc()
	return &JobTimer{taskType: taskType, start: time.Now()}
}

func (t *JobTimer) Completed() {
	t.finish()
	WorkerJobsCompleted.WithLabelValues(t.taskType).Inc()
}

func (t *JobTimer) Failed(errorCode string) {
	t.finish()
	WorkerJobsFailed.WithLabelValues(t.taskType, errorCode).Inc()
}

func (t *JobTimer) finish() {
	WorkerJobsActive.WithLabelValues(t.taskType).Dec()
	WorkerJobDuration.WithLabelValues(t.taskType).Observe(time.Since(t.start).Seconds())
}
