package metrics

import (
	"context"
	"time"

	"github.com/Conceptual-Machines/albumatlas/internal/models"
)

// Recorder fans metrics out to Prometheus, Sentry and CloudWatch.
// A nil Recorder still records Prometheus metrics.
type Recorder struct {
	cloudwatch *Client
	sentry     *SentryMetrics
}

// NewRecorder creates a recorder; either sink may be nil
func NewRecorder(cloudwatch *Client, sentryMetrics *SentryMetrics) *Recorder {
	return &Recorder{
		cloudwatch: cloudwatch,
		sentry:     sentryMetrics,
	}
}

// RecordAPIRequest records a completed HTTP request
func (r *Recorder) RecordAPIRequest(ctx context.Context, route, method string, statusCode int, duration time.Duration) {
	RecordHTTPRequest(route, method, statusCodeLabel(statusCode), duration)
	if r == nil {
		return
	}
	r.sentry.RecordAPIRequest(ctx, route, statusCode, duration)
	r.cloudwatch.RecordAPIRequest(route, statusCode, duration)
}

// RecordRecommendation records one pipeline run
func (r *Recorder) RecordRecommendation(ctx context.Context, duration time.Duration, success bool) {
	recordOutcome(success)
	if r == nil {
		return
	}
	r.sentry.RecordRecommendation(ctx, duration, success)
	r.cloudwatch.RecordRecommendation(duration, success)
}

// RecordTokenUsage records generation token counts
func (r *Recorder) RecordTokenUsage(ctx context.Context, model string, usage models.TokenUsage) {
	recordTokens(model, usage.InputTokens, usage.OutputTokens)
	if r == nil {
		return
	}
	r.sentry.RecordTokenUsage(ctx, model, usage)
	r.cloudwatch.RecordTokenUsage(model, usage)
}

func statusCodeLabel(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
