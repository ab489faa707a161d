package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Conceptual-Machines/albumatlas/internal/models"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_DisabledOutsideProduction(t *testing.T) {
	client, err := NewClient(context.Background(), "development")
	require.NoError(t, err)
	assert.False(t, client.Enabled())

	// Disabled clients never touch AWS
	client.RecordAPIRequest("/api/recommend", 200, time.Millisecond)
	client.RecordTokenUsage("gemini-2.0-flash", models.TokenUsage{TotalTokens: 10})
	client.RecordRecommendation(time.Second, true)
}

func TestNilSinksAreNoOps(t *testing.T) {
	var client *Client
	var sentryMetrics *SentryMetrics

	assert.False(t, client.Enabled())
	assert.NotPanics(t, func() {
		client.RecordRecommendation(time.Second, false)
		sentryMetrics.RecordRecommendation(context.Background(), time.Second, false)
	})
}

func TestRecordStage(t *testing.T) {
	before := testutil.ToFloat64(StageErrorsTotal.WithLabelValues(StageEmbed))

	RecordStage(StageEmbed, 10*time.Millisecond, nil)
	assert.InDelta(t, before, testutil.ToFloat64(StageErrorsTotal.WithLabelValues(StageEmbed)), 1e-9)

	RecordStage(StageEmbed, 10*time.Millisecond, errors.New("quota"))
	assert.InDelta(t, before+1, testutil.ToFloat64(StageErrorsTotal.WithLabelValues(StageEmbed)), 1e-9)
}

func TestRecorder_RecordRecommendation(t *testing.T) {
	recorder := NewRecorder(nil, NewSentryMetrics())

	successBefore := testutil.ToFloat64(RecommendationsTotal.WithLabelValues("success"))
	failureBefore := testutil.ToFloat64(RecommendationsTotal.WithLabelValues("failure"))

	recorder.RecordRecommendation(context.Background(), time.Second, true)
	recorder.RecordRecommendation(context.Background(), time.Second, false)

	var nilRecorder *Recorder
	nilRecorder.RecordRecommendation(context.Background(), time.Second, true)

	assert.InDelta(t, successBefore+2, testutil.ToFloat64(RecommendationsTotal.WithLabelValues("success")), 1e-9)
	assert.InDelta(t, failureBefore+1, testutil.ToFloat64(RecommendationsTotal.WithLabelValues("failure")), 1e-9)
}

func TestRecorder_RecordTokenUsage(t *testing.T) {
	recorder := NewRecorder(nil, nil)
	input := GenerationTokensTotal.WithLabelValues("test-model", "input")
	before := testutil.ToFloat64(input)

	recorder.RecordTokenUsage(context.Background(), "test-model", models.TokenUsage{InputTokens: 40, OutputTokens: 10, TotalTokens: 50})

	assert.InDelta(t, before+40, testutil.ToFloat64(input), 1e-9)
}

func TestStatusCodeLabel(t *testing.T) {
	assert.Equal(t, "2xx", statusCodeLabel(200))
	assert.Equal(t, "3xx", statusCodeLabel(304))
	assert.Equal(t, "4xx", statusCodeLabel(404))
	assert.Equal(t, "5xx", statusCodeLabel(500))
}
