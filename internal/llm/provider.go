package llm

import (
	"context"

	"github.com/Conceptual-Machines/albumatlas/internal/models"
)

// Provider defines the interface for text generation services
type Provider interface {
	// Generate sends a single prompt and returns the generated text verbatim.
	// No streaming and no multi-turn state.
	Generate(ctx context.Context, request *GenerationRequest) (*GenerationResponse, error)

	// Name returns the provider name (e.g., "gemini", "openai")
	Name() string
}

// Embedder defines the interface for embedding services
type Embedder interface {
	// Embed returns the embedding of the full text in one call
	Embed(ctx context.Context, text string) ([]float32, error)

	// Name returns the provider name
	Name() string
}

// GenerationRequest contains all parameters needed for generation
type GenerationRequest struct {
	Model  string
	Prompt string

	// Sampling parameters; providers ignore the ones they do not support
	Temperature      float32
	FrequencyPenalty float32
	PresencePenalty  float32
}

// GenerationResponse contains the result from the LLM
type GenerationResponse struct {
	Text  string            `json:"text"`
	Model string            `json:"model"`
	Usage models.TokenUsage `json:"usage"`
}
