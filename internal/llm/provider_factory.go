package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/Conceptual-Machines/albumatlas/internal/config"
)

// ProviderFactory creates generation and embedding providers by name.
// Providers are created once and reused, so a single Gemini client can serve both roles.
type ProviderFactory struct {
	openaiAPIKey    string
	geminiAPIKey    string
	anthropicAPIKey string
	embeddingModel  string

	gemini *GeminiProvider
	openai *OpenAIProvider
}

// NewProviderFactory creates a new provider factory
func NewProviderFactory(cfg *config.Config) *ProviderFactory {
	return &ProviderFactory{
		openaiAPIKey:    cfg.OpenAIAPIKey,
		geminiAPIKey:    cfg.GeminiAPIKey,
		anthropicAPIKey: cfg.AnthropicAPIKey,
		embeddingModel:  cfg.EmbeddingModel,
	}
}

// GetProvider returns the generation provider for the given name
func (f *ProviderFactory) GetProvider(ctx context.Context, providerName string) (Provider, error) {
	switch strings.ToLower(providerName) {
	case config.ProviderGemini, "":
		return f.geminiProvider(ctx)
	case config.ProviderOpenAI:
		return f.openaiProvider()
	case config.ProviderAnthropic:
		if f.anthropicAPIKey == "" {
			return nil, fmt.Errorf("anthropic API key not configured")
		}
		return NewAnthropicProvider(f.anthropicAPIKey), nil
	default:
		return nil, fmt.Errorf("unknown provider: %s (allowed: gemini, openai, anthropic)", providerName)
	}
}

// GetEmbedder returns the embedding provider for the given name
func (f *ProviderFactory) GetEmbedder(ctx context.Context, providerName string) (Embedder, error) {
	switch strings.ToLower(providerName) {
	case config.ProviderGemini, "":
		return f.geminiProvider(ctx)
	case config.ProviderOpenAI:
		return f.openaiProvider()
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s (allowed: gemini, openai)", providerName)
	}
}

func (f *ProviderFactory) geminiProvider(ctx context.Context) (*GeminiProvider, error) {
	if f.gemini != nil {
		return f.gemini, nil
	}
	if f.geminiAPIKey == "" {
		return nil, fmt.Errorf("gemini API key not configured")
	}
	provider, err := NewGeminiProvider(ctx, f.geminiAPIKey, f.embeddingModel)
	if err != nil {
		return nil, err
	}
	f.gemini = provider
	return provider, nil
}

func (f *ProviderFactory) openaiProvider() (*OpenAIProvider, error) {
	if f.openai != nil {
		return f.openai, nil
	}
	if f.openaiAPIKey == "" {
		return nil, fmt.Errorf("openai API key not configured")
	}
	f.openai = NewOpenAIProvider(f.openaiAPIKey, f.embeddingModel)
	return f.openai, nil
}
