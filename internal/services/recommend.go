package services

import (
	"context"
	"fmt"
	"time"

	"github.com/Conceptual-Machines/albumatlas/internal/logger"
	"github.com/Conceptual-Machines/albumatlas/internal/metrics"
	"github.com/Conceptual-Machines/albumatlas/internal/models"
	"github.com/Conceptual-Machines/albumatlas/internal/observability"
	"github.com/Conceptual-Machines/albumatlas/internal/prompt"
)

// ContextRetriever produces the context text for a query
type ContextRetriever interface {
	Retrieve(ctx context.Context, query string) (string, error)
}

// AnswerGenerator produces the answer for a context and query
type AnswerGenerator interface {
	Generate(ctx context.Context, contextText, query string) (*GenerationResult, error)
}

// Recommender runs the full pipeline: compose, retrieve, generate.
// It holds no per-request state and is shared by all requests.
type Recommender struct {
	retriever ContextRetriever
	generator AnswerGenerator
	metrics   *metrics.Recorder
	langfuse  *observability.LangfuseClient
}

// NewRecommender creates a new recommender; recorder and langfuse may be nil
func NewRecommender(
	retriever ContextRetriever,
	generator AnswerGenerator,
	recorder *metrics.Recorder,
	langfuse *observability.LangfuseClient,
) *Recommender {
	if langfuse == nil {
		langfuse = observability.GetClient()
	}
	return &Recommender{
		retriever: retriever,
		generator: generator,
		metrics:   recorder,
		langfuse:  langfuse,
	}
}

// Recommend composes the query from the preferences and answers it
func (r *Recommender) Recommend(ctx context.Context, input models.PreferenceInput) (*models.Recommendation, error) {
	return r.Ask(ctx, prompt.ComposeQuery(input))
}

// Ask answers an already composed query
func (r *Recommender) Ask(ctx context.Context, query string) (*models.Recommendation, error) {
	startTime := time.Now()
	fields := logger.Fields{"query": query}
	logger.Info("🎵 Processing query", fields)

	trace := r.langfuse.StartTrace(ctx, "album-recommendation", map[string]interface{}{
		"query": query,
	})
	defer trace.Finish()

	recommendation, err := r.run(ctx, trace, query)
	duration := time.Since(startTime)
	r.metrics.RecordRecommendation(ctx, duration, err == nil)

	if err != nil {
		fields["duration_ms"] = duration.Milliseconds()
		logger.Error("❌ Recommendation failed", err, fields)
		return nil, err
	}

	fields["duration_ms"] = duration.Milliseconds()
	fields["model"] = recommendation.Model
	fields["total_tokens"] = recommendation.Usage.TotalTokens
	fields["cost"] = observability.FormatCost(observability.CalculateCost(recommendation.Model, recommendation.Usage))
	logger.Info("✅ Generated response", fields)

	return recommendation, nil
}

func (r *Recommender) run(ctx context.Context, trace *observability.Trace, query string) (*models.Recommendation, error) {
	retrieveStart := time.Now()
	contextText, err := r.retriever.Retrieve(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("retrieval failed: %w", err)
	}
	trace.Span("retrieve", query, contextText, retrieveStart, nil)
	trace.SetMetadata(map[string]interface{}{
		"query":          query,
		"context_length": len(contextText),
	})
	logger.Debug("✅ Found nearest matches", logger.Fields{"context_length": len(contextText)})

	generation := trace.Generation("generate", nil)
	defer generation.Finish()

	result, err := r.generator.Generate(ctx, contextText, query)
	if err != nil {
		generation.SetLevel("ERROR")
		return nil, fmt.Errorf("generation failed: %w", err)
	}

	generation.LogCompletion(result.Model, result.Prompt, result.Text, result.Usage, nil)
	r.metrics.RecordTokenUsage(ctx, result.Model, result.Usage)

	return &models.Recommendation{
		Query:   query,
		Context: contextText,
		Answer:  result.Text,
		Model:   result.Model,
		Usage:   result.Usage,
	}, nil
}
