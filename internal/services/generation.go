package services

import (
	"context"
	"fmt"
	"time"

	"github.com/Conceptual-Machines/albumatlas/internal/llm"
	"github.com/Conceptual-Machines/albumatlas/internal/logger"
	"github.com/Conceptual-Machines/albumatlas/internal/metrics"
	"github.com/Conceptual-Machines/albumatlas/internal/models"
	"github.com/Conceptual-Machines/albumatlas/internal/prompt"
)

// GenerationResult is the answer plus what is needed to trace the call
type GenerationResult struct {
	Prompt string
	Text   string
	Model  string
	Usage  models.TokenUsage
}

// Generator asks the language model for a recommendation grounded in the retrieved context
type Generator struct {
	provider      llm.Provider
	promptBuilder *prompt.Builder
	params        GenerationParams
}

// NewGenerator creates a new generator
func NewGenerator(provider llm.Provider, params GenerationParams) *Generator {
	return &Generator{
		provider:      provider,
		promptBuilder: prompt.NewPromptBuilder(),
		params:        params,
	}
}

// Generate builds the prompt and makes exactly one provider call; the text is returned unmodified
func (g *Generator) Generate(ctx context.Context, contextText, query string) (*GenerationResult, error) {
	fullPrompt, err := g.promptBuilder.Build(contextText, query)
	if err != nil {
		return nil, fmt.Errorf("failed to build prompt: %w", err)
	}

	start := time.Now()
	resp, err := g.provider.Generate(ctx, &llm.GenerationRequest{
		Model:            g.params.Model,
		Prompt:           fullPrompt,
		Temperature:      g.params.Temperature,
		FrequencyPenalty: g.params.FrequencyPenalty,
		PresencePenalty:  g.params.PresencePenalty,
	})
	duration := time.Since(start)
	metrics.RecordStage(metrics.StageGenerate, duration, err)
	if err != nil {
		return nil, fmt.Errorf("failed to generate answer: %w", err)
	}

	logger.LogGenerationRequest(ctx, resp.Model, duration, resp.Usage, logger.Fields{
		"provider": g.provider.Name(),
	})

	return &GenerationResult{
		Prompt: fullPrompt,
		Text:   resp.Text,
		Model:  resp.Model,
		Usage:  resp.Usage,
	}, nil
}

// Provider returns the name of the underlying provider
func (g *Generator) Provider() string {
	return g.provider.Name()
}
