package cli

import (
	"context"
	"fmt"

	"github.com/Conceptual-Machines/albumatlas/internal/config"
	"github.com/Conceptual-Machines/albumatlas/internal/llm"
	"github.com/Conceptual-Machines/albumatlas/internal/metrics"
	"github.com/Conceptual-Machines/albumatlas/internal/observability"
	"github.com/Conceptual-Machines/albumatlas/internal/services"
	"github.com/Conceptual-Machines/albumatlas/internal/vectorstore"
)

// pipeline holds the long-lived clients shared by every request
type pipeline struct {
	store       vectorstore.Store
	embedder    llm.Embedder
	recommender *services.Recommender
}

func loadConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func newPipeline(ctx context.Context, cfg *config.Config, recorder *metrics.Recorder) (*pipeline, error) {
	factory := llm.NewProviderFactory(cfg)

	embedder, err := factory.GetEmbedder(ctx, cfg.EmbeddingProvider)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	provider, err := factory.GetProvider(ctx, cfg.GenerationProvider)
	if err != nil {
		return nil, fmt.Errorf("failed to create generation provider: %w", err)
	}

	store, err := vectorstore.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open vector store: %w", err)
	}

	retriever := services.NewRetriever(embedder, store, cfg.MatchThreshold, cfg.MatchCount)
	generator := services.NewGenerator(provider, services.GenerationParamsFromConfig(cfg))

	return &pipeline{
		store:       store,
		embedder:    embedder,
		recommender: services.NewRecommender(retriever, generator, recorder, observability.InitializeLangfuse(ctx, cfg)),
	}, nil
}

func (p *pipeline) Close() error {
	return p.store.Close()
}
