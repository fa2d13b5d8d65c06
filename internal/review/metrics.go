package review

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Dedicated registry so the worker's /metrics endpoint exposes only review
// pipeline metrics, not the global default registry.
var registry = prometheus.NewRegistry()

var (
	reviewsReceived = promauto.With(registry).NewCounter(
		prometheus.CounterOpts{
			Name: "feathertree_reviews_received_total",
			Help: "Total number of review tasks received by the worker.",
		},
	)
	reviewsSucceeded = promauto.With(registry).NewCounter(
		prometheus.CounterOpts{
			Name: "feathertree_reviews_succeeded_total",
			Help: "Total number of review tasks that reached a scored verdict.",
		},
	)
	reviewsFailed = promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "feathertree_reviews_failed_total",
			Help: "Total number of failed review tasks, partitioned by failure reason.",
		},
		[]string{"reason"},
	)
	chaptersPublished = promauto.With(registry).NewCounter(
		prometheus.CounterOpts{
			Name: "feathertree_chapters_published_total",
			Help: "Total number of chapters published by the review pipeline.",
		},
	)
	chaptersRejected = promauto.With(registry).NewCounter(
		prometheus.CounterOpts{
			Name: "feathertree_chapters_rejected_total",
			Help: "Total number of chapters kept as drafts after scoring below the publish threshold.",
		},
	)
	judgeRequestDuration = promauto.With(registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "feathertree_judge_request_duration_seconds",
			Help:    "Duration of judge scoring calls, partitioned by outcome.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		},
		[]string{"status"},
	)
	promptTokens = promauto.With(registry).NewCounter(
		prometheus.CounterOpts{
			Name: "feathertree_judge_prompt_tokens_total",
			Help: "Total estimated tokens sent to the judge in evaluation prompts.",
		},
	)
	taskDuration = promauto.With(registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "feathertree_review_task_duration_seconds",
			Help:    "End-to-end duration of review task processing.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		},
	)
)

// Registry returns the registry backing the worker's /metrics endpoint.
func Registry() *prometheus.Registry {
	return registry
}

func metricsIncrementReceived()                 { reviewsReceived.Inc() }
func metricsIncrementSucceeded()                { reviewsSucceeded.Inc() }
func metricsIncrementFailed(reason string)      { reviewsFailed.WithLabelValues(reason).Inc() }
func metricsIncrementPublished()                { chaptersPublished.Inc() }
func metricsIncrementRejected()                 { chaptersRejected.Inc() }
func metricsAddPromptTokens(count int)          { promptTokens.Add(float64(count)) }
func metricsRecordTaskDuration(d time.Duration) { taskDuration.Observe(d.Seconds()) }

func metricsRecordJudgeRequest(status string, d time.Duration) {
	judgeRequestDuration.WithLabelValues(status).Observe(d.Seconds())
}
