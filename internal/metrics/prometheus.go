package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Pipeline stage labels
const (
	StageEmbed    = "embed"
	StageMatch    = "match"
	StageGenerate = "generate"
)

var (
	// HTTPRequestsTotal counts requests by route, method and status code.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "albumatlas_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)

	// HTTPRequestDuration tracks request latency by route.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "albumatlas_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	// RecommendationsTotal counts pipeline runs by outcome.
	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "albumatlas_recommendations_total",
			Help: "Total number of recommendation pipeline runs",
		},
		[]string{"outcome"},
	)

	// StageDuration tracks the latency of each external call.
	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "albumatlas_stage_duration_seconds",
			Help: "Duration of embed, match and generate calls in seconds",
			// Remote model calls run from tens of milliseconds to tens of seconds
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"stage"},
	)

	// StageErrorsTotal counts failed external calls by stage.
	StageErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "albumatlas_stage_errors_total",
			Help: "Total number of failed embed, match and generate calls",
		},
		[]string{"stage"},
	)

	// MatchesReturned tracks how many rows the vector store returned.
	MatchesReturned = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "albumatlas_matches_returned",
			Help:    "Number of matches returned per similarity search",
			Buckets: []float64{0, 1, 2, 3, 4, 8, 16},
		},
	)

	// GenerationTokensTotal counts tokens by model and direction.
	GenerationTokensTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "albumatlas_generation_tokens_total",
			Help: "Total number of generation tokens",
		},
		[]string{"model", "direction"},
	)

	// DocumentsIngestedTotal counts chunks written by ingest.
	DocumentsIngestedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "albumatlas_documents_ingested_total",
			Help: "Total number of document chunks stored",
		},
	)
)

// RecordHTTPRequest records a completed HTTP request
func RecordHTTPRequest(route, method, status string, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(route, method, status).Inc()
	HTTPRequestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// RecordStage records one external call
func RecordStage(stage string, duration time.Duration, err error) {
	StageDuration.WithLabelValues(stage).Observe(duration.Seconds())
	if err != nil {
		StageErrorsTotal.WithLabelValues(stage).Inc()
	}
}

// RecordMatches records the size of a similarity search result
func RecordMatches(count int) {
	MatchesReturned.Observe(float64(count))
}

// RecordDocumentsIngested records stored chunks
func RecordDocumentsIngested(count int) {
	DocumentsIngestedTotal.Add(float64(count))
}

func recordOutcome(success bool) {
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	RecommendationsTotal.WithLabelValues(outcome).Inc()
}

func recordTokens(model string, inputTokens, outputTokens int) {
	GenerationTokensTotal.WithLabelValues(model, "input").Add(float64(inputTokens))
	GenerationTokensTotal.WithLabelValues(model, "output").Add(float64(outputTokens))
}
