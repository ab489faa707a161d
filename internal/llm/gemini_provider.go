package llm

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/Conceptual-Machines/albumatlas/internal/models"
	"github.com/getsentry/sentry-go"
	"google.golang.org/genai"
)

const (
	providerNameGemini = "gemini"
	geminiUserRole     = "user"

	// DefaultGeminiModel is the generation model used when none is configured
	DefaultGeminiModel = "gemini-2.0-flash"
	// DefaultGeminiEmbeddingModel is the embedding model used when none is configured
	DefaultGeminiEmbeddingModel = "text-embedding-004"
)

// GeminiProvider implements Provider and Embedder using Google's Gemini API
type GeminiProvider struct {
	client         *genai.Client
	embeddingModel string
}

// NewGeminiProvider creates a new Gemini provider
func NewGeminiProvider(ctx context.Context, apiKey, embeddingModel string) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	if embeddingModel == "" {
		embeddingModel = DefaultGeminiEmbeddingModel
	}

	return &GeminiProvider{
		client:         client,
		embeddingModel: embeddingModel,
	}, nil
}

// Name returns the provider name
func (p *GeminiProvider) Name() string {
	return providerNameGemini
}

// Generate implements non-streaming generation using Gemini's API
func (p *GeminiProvider) Generate(ctx context.Context, request *GenerationRequest) (*GenerationResponse, error) {
	startTime := time.Now()
	model := request.Model
	if model == "" {
		model = DefaultGeminiModel
	}
	log.Printf("🎵 GEMINI GENERATION REQUEST STARTED (Model: %s)", model)

	transaction := sentry.StartTransaction(ctx, "gemini.generate")
	defer transaction.Finish()

	transaction.SetTag("model", model)
	transaction.SetTag("provider", providerNameGemini)

	contents := p.buildGeminiContents(request.Prompt)
	config := p.buildGenerationConfig(request)

	span := transaction.StartChild("gemini.api_call")
	apiStartTime := time.Now()
	result, err := p.client.Models.GenerateContent(ctx, model, contents, config)
	apiDuration := time.Since(apiStartTime)
	span.Finish()

	if err != nil {
		log.Printf("❌ GEMINI REQUEST FAILED after %v: %v", apiDuration, err)
		transaction.SetTag("success", "false")
		sentry.CaptureException(err)
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}

	log.Printf("⏱️  GEMINI API CALL COMPLETED in %v", apiDuration)

	response, err := p.processGeminiResponse(result, model)
	if err != nil {
		transaction.SetTag("success", "false")
		return nil, err
	}

	transaction.SetTag("success", "true")
	log.Printf("✅ GEMINI GENERATION COMPLETED in %v (output: %d chars)", time.Since(startTime), len(response.Text))
	return response, nil
}

// Embed requests one embedding for the whole text
func (p *GeminiProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	span := sentry.StartSpan(ctx, "gemini.embed")
	span.SetTag("model", p.embeddingModel)
	defer span.Finish()

	result, err := p.client.Models.EmbedContent(ctx, p.embeddingModel, p.buildGeminiContents(text), nil)
	if err != nil {
		span.Status = sentry.SpanStatusInternalError
		return nil, fmt.Errorf("gemini embedding request failed: %w", err)
	}

	if result == nil || len(result.Embeddings) == 0 || result.Embeddings[0] == nil {
		span.Status = sentry.SpanStatusInternalError
		return nil, fmt.Errorf("gemini embedding response contained no embeddings")
	}

	values := result.Embeddings[0].Values
	if len(values) == 0 {
		span.Status = sentry.SpanStatusInternalError
		return nil, fmt.Errorf("gemini embedding response contained an empty vector")
	}

	log.Printf("🧭 GEMINI EMBEDDING: model=%s dims=%d", p.embeddingModel, len(values))
	return values, nil
}

// buildGeminiContents wraps the prompt in a single user turn
func (p *GeminiProvider) buildGeminiContents(text string) []*genai.Content {
	return []*genai.Content{
		{
			Role:  geminiUserRole,
			Parts: []*genai.Part{{Text: text}},
		},
	}
}

// buildGenerationConfig maps the fixed sampling parameters onto Gemini's config
func (p *GeminiProvider) buildGenerationConfig(request *GenerationRequest) *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(request.Temperature),
		FrequencyPenalty: genai.Ptr(request.FrequencyPenalty),
		PresencePenalty:  genai.Ptr(request.PresencePenalty),
	}
}

// processGeminiResponse converts Gemini response to our GenerationResponse
func (p *GeminiProvider) processGeminiResponse(
	result *genai.GenerateContentResponse,
	model string,
) (*GenerationResponse, error) {
	if result == nil || len(result.Candidates) == 0 {
		return nil, fmt.Errorf("no candidates in Gemini response")
	}

	candidate := result.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return nil, fmt.Errorf("no parts in Gemini response")
	}

	var text strings.Builder
	for _, part := range candidate.Content.Parts {
		if part != nil {
			text.WriteString(part.Text)
		}
	}

	textOutput := text.String()
	log.Printf("📥 GEMINI RESPONSE: output_length=%d", len(textOutput))

	if textOutput == "" {
		return nil, fmt.Errorf("gemini response did not include any output text")
	}

	response := &GenerationResponse{
		Text:  textOutput,
		Model: model,
	}

	if result.UsageMetadata != nil {
		response.Usage = models.TokenUsage{
			InputTokens:  int(result.UsageMetadata.PromptTokenCount),
			OutputTokens: int(result.UsageMetadata.CandidatesTokenCount),
			TotalTokens:  int(result.UsageMetadata.TotalTokenCount),
		}
		log.Printf("📊 GEMINI USAGE: input=%d, output=%d, total=%d",
			response.Usage.InputTokens, response.Usage.OutputTokens, response.Usage.TotalTokens)
	}

	return response, nil
}
