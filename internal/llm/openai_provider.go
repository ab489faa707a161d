package llm

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/Conceptual-Machines/albumatlas/internal/models"
	"github.com/getsentry/sentry-go"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	providerNameOpenAI = "openai"

	// DefaultOpenAIModel is the chat model used when none is configured
	DefaultOpenAIModel = "gpt-4o-mini"
	// DefaultOpenAIEmbeddingModel is the embedding model used when none is configured
	DefaultOpenAIEmbeddingModel = "text-embedding-3-small"
)

// OpenAIProvider implements Provider and Embedder using OpenAI's Chat Completions and Embeddings APIs
type OpenAIProvider struct {
	client         *openai.Client
	embeddingModel string
}

// NewOpenAIProvider creates a new OpenAI provider.
// The SDK's automatic retries are disabled; a failed call fails the request.
func NewOpenAIProvider(apiKey, embeddingModel string, opts ...option.RequestOption) *OpenAIProvider {
	requestOpts := append([]option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}, opts...)
	client := openai.NewClient(requestOpts...)

	if embeddingModel == "" {
		embeddingModel = DefaultOpenAIEmbeddingModel
	}

	return &OpenAIProvider{
		client:         &client,
		embeddingModel: embeddingModel,
	}
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return providerNameOpenAI
}

// Generate implements non-streaming generation using the Chat Completions API
func (p *OpenAIProvider) Generate(ctx context.Context, request *GenerationRequest) (*GenerationResponse, error) {
	startTime := time.Now()
	params := p.buildRequestParams(request)
	log.Printf("🎵 OPENAI GENERATION REQUEST STARTED (Model: %s)", params.Model)

	transaction := sentry.StartTransaction(ctx, "openai.generate")
	defer transaction.Finish()

	transaction.SetTag("model", params.Model)
	transaction.SetTag("provider", providerNameOpenAI)

	span := transaction.StartChild("openai.api_call")
	apiStartTime := time.Now()
	resp, err := p.client.Chat.Completions.New(ctx, params)
	apiDuration := time.Since(apiStartTime)
	span.Finish()

	if err != nil {
		log.Printf("❌ OPENAI REQUEST FAILED after %v: %v", apiDuration, err)
		transaction.SetTag("success", "false")
		sentry.CaptureException(err)
		return nil, fmt.Errorf("openai request failed: %w", err)
	}

	log.Printf("⏱️  OPENAI API CALL COMPLETED in %v", apiDuration)

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		transaction.SetTag("success", "false")
		return nil, fmt.Errorf("openai response did not include any output text")
	}

	transaction.SetTag("success", "true")
	log.Printf("✅ OPENAI GENERATION COMPLETED in %v", time.Since(startTime))

	return &GenerationResponse{
		Text:  resp.Choices[0].Message.Content,
		Model: params.Model,
		Usage: models.TokenUsage{
			InputTokens:  int(resp.Usage.PromptTokens),
			OutputTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:  int(resp.Usage.TotalTokens),
		},
	}, nil
}

// Embed requests one embedding for the whole text
func (p *OpenAIProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	span := sentry.StartSpan(ctx, "openai.embed")
	span.SetTag("model", p.embeddingModel)
	defer span.Finish()

	resp, err := p.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input:          openai.EmbeddingNewParamsInputUnion{OfString: openai.String(text)},
		Model:          openai.EmbeddingModel(p.embeddingModel),
		EncodingFormat: openai.EmbeddingNewParamsEncodingFormatFloat,
	})
	if err != nil {
		span.Status = sentry.SpanStatusInternalError
		return nil, fmt.Errorf("openai embedding request failed: %w", err)
	}

	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		span.Status = sentry.SpanStatusInternalError
		return nil, fmt.Errorf("openai embedding response contained no embeddings")
	}

	values := make([]float32, len(resp.Data[0].Embedding))
	for i, v := range resp.Data[0].Embedding {
		values[i] = float32(v)
	}

	log.Printf("🧭 OPENAI EMBEDDING: model=%s dims=%d", p.embeddingModel, len(values))
	return values, nil
}

// buildRequestParams maps a generation request onto a single user message
func (p *OpenAIProvider) buildRequestParams(request *GenerationRequest) openai.ChatCompletionNewParams {
	model := request.Model
	if model == "" {
		model = DefaultOpenAIModel
	}

	return openai.ChatCompletionNewParams{
		Model: openai.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(request.Prompt),
		},
		Temperature:      openai.Float(float64(request.Temperature)),
		FrequencyPenalty: openai.Float(float64(request.FrequencyPenalty)),
		PresencePenalty:  openai.Float(float64(request.PresencePenalty)),
	}
}
