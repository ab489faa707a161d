package llm

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/Conceptual-Machines/albumatlas/internal/models"
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/getsentry/sentry-go"
)

const (
	providerNameAnthropic = "anthropic"

	// DefaultAnthropicModel is the Claude model used when none is configured
	DefaultAnthropicModel = "claude-3-5-haiku-latest"

	anthropicMaxTokens = 1024
)

// AnthropicProvider implements Provider using the Claude Messages API.
// Claude has no embeddings endpoint, so it only serves generation.
type AnthropicProvider struct {
	client *anthropic.Client
}

// NewAnthropicProvider creates a new Anthropic provider
func NewAnthropicProvider(apiKey string, opts ...option.RequestOption) *AnthropicProvider {
	requestOpts := append([]option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}, opts...)
	client := anthropic.NewClient(requestOpts...)

	return &AnthropicProvider{
		client: &client,
	}
}

// Name returns the provider name
func (p *AnthropicProvider) Name() string {
	return providerNameAnthropic
}

// Generate sends the prompt as a single user message.
// The Messages API has no frequency or presence penalty, only temperature is forwarded.
func (p *AnthropicProvider) Generate(ctx context.Context, request *GenerationRequest) (*GenerationResponse, error) {
	startTime := time.Now()
	params := p.buildRequestParams(request)
	log.Printf("🎵 ANTHROPIC GENERATION REQUEST STARTED (Model: %s)", params.Model)

	transaction := sentry.StartTransaction(ctx, "anthropic.generate")
	defer transaction.Finish()

	transaction.SetTag("model", string(params.Model))
	transaction.SetTag("provider", providerNameAnthropic)

	span := transaction.StartChild("anthropic.api_call")
	message, err := p.client.Messages.New(ctx, params)
	span.Finish()

	if err != nil {
		log.Printf("❌ ANTHROPIC REQUEST FAILED after %v: %v", time.Since(startTime), err)
		transaction.SetTag("success", "false")
		sentry.CaptureException(err)
		return nil, fmt.Errorf("anthropic request failed: %w", err)
	}

	var text strings.Builder
	for _, content := range message.Content {
		if content.Type == "text" {
			text.WriteString(content.Text)
		}
	}

	if text.Len() == 0 {
		transaction.SetTag("success", "false")
		return nil, fmt.Errorf("anthropic response did not include any text content")
	}

	transaction.SetTag("success", "true")
	log.Printf("✅ ANTHROPIC GENERATION COMPLETED in %v", time.Since(startTime))

	inputTokens := int(message.Usage.InputTokens)
	outputTokens := int(message.Usage.OutputTokens)

	return &GenerationResponse{
		Text:  text.String(),
		Model: string(params.Model),
		Usage: models.TokenUsage{
			InputTokens:  inputTokens,
			OutputTokens: outputTokens,
			TotalTokens:  inputTokens + outputTokens,
		},
	}, nil
}

func (p *AnthropicProvider) buildRequestParams(request *GenerationRequest) anthropic.MessageNewParams {
	model := request.Model
	if model == "" {
		model = DefaultAnthropicModel
	}

	return anthropic.MessageNewParams{
		Model:       anthropic.Model(model),
		MaxTokens:   int64(anthropicMaxTokens),
		Temperature: anthropic.Float(float64(request.Temperature)),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(request.Prompt)),
		},
	}
}
