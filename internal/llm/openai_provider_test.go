package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/openai/openai-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOpenAIProvider(t *testing.T) {
	provider := NewOpenAIProvider("test-api-key", "")
	require.NotNil(t, provider)
	assert.Equal(t, "openai", provider.Name())
	assert.NotNil(t, provider.client)
	assert.Equal(t, DefaultOpenAIEmbeddingModel, provider.embeddingModel)
}

func TestOpenAIProvider_BuildRequestParams(t *testing.T) {
	provider := NewOpenAIProvider("test-key", "")

	params := provider.buildRequestParams(&GenerationRequest{
		Prompt:           "Context: x\nQuestion: y",
		Temperature:      0.5,
		FrequencyPenalty: 0.5,
		PresencePenalty:  0.5,
	})

	assert.Equal(t, DefaultOpenAIModel, params.Model)
	assert.Len(t, params.Messages, 1)
	assert.InDelta(t, 0.5, params.Temperature.Value, 1e-9)
	assert.InDelta(t, 0.5, params.FrequencyPenalty.Value, 1e-9)
	assert.InDelta(t, 0.5, params.PresencePenalty.Value, 1e-9)

	params = provider.buildRequestParams(&GenerationRequest{Model: "gpt-4o"})
	assert.Equal(t, "gpt-4o", params.Model)
}

// newOpenAITestServer serves canned chat and embedding responses
func newOpenAITestServer(t *testing.T, status int, captured *map[string]any) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		if captured != nil {
			require.NoError(t, json.Unmarshal(body, captured))
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
			return
		}

		switch r.URL.Path {
		case "/chat/completions":
			_, _ = w.Write([]byte(`{
				"id": "chatcmpl-1",
				"object": "chat.completion",
				"created": 1,
				"model": "gpt-4o-mini",
				"choices": [{
					"index": 0,
					"finish_reason": "stop",
					"message": {"role": "assistant", "content": "Try **Dreamland** by **Glass Animals**."}
				}],
				"usage": {"prompt_tokens": 40, "completion_tokens": 10, "total_tokens": 50}
			}`))
		case "/embeddings":
			_, _ = w.Write([]byte(`{
				"object": "list",
				"model": "text-embedding-3-small",
				"data": [{"object": "embedding", "index": 0, "embedding": [0.25, -0.5, 1]}],
				"usage": {"prompt_tokens": 3, "total_tokens": 3}
			}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestOpenAIProvider_Generate(t *testing.T) {
	var captured map[string]any
	server := newOpenAITestServer(t, http.StatusOK, &captured)
	defer server.Close()

	provider := NewOpenAIProvider("test-key", "", option.WithBaseURL(server.URL+"/"))

	resp, err := provider.Generate(context.Background(), &GenerationRequest{
		Prompt:           "prompt text",
		Temperature:      0.5,
		FrequencyPenalty: 0.5,
		PresencePenalty:  0.5,
	})
	require.NoError(t, err)

	assert.Equal(t, "Try **Dreamland** by **Glass Animals**.", resp.Text)
	assert.Equal(t, 40, resp.Usage.InputTokens)
	assert.Equal(t, 10, resp.Usage.OutputTokens)
	assert.Equal(t, 50, resp.Usage.TotalTokens)

	assert.Equal(t, DefaultOpenAIModel, captured["model"])
	assert.InDelta(t, 0.5, captured["temperature"], 1e-9)
	assert.InDelta(t, 0.5, captured["frequency_penalty"], 1e-9)
	assert.InDelta(t, 0.5, captured["presence_penalty"], 1e-9)
}

func TestOpenAIProvider_Embed(t *testing.T) {
	var captured map[string]any
	server := newOpenAITestServer(t, http.StatusOK, &captured)
	defer server.Close()

	provider := NewOpenAIProvider("test-key", "", option.WithBaseURL(server.URL+"/"))

	vector, err := provider.Embed(context.Background(), "I like Magdalena Bay. ")
	require.NoError(t, err)

	assert.Equal(t, []float32{0.25, -0.5, 1}, vector)
	assert.Equal(t, "I like Magdalena Bay. ", captured["input"])
	assert.Equal(t, DefaultOpenAIEmbeddingModel, captured["model"])
}

func TestOpenAIProvider_ErrorsAreNotRetried(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
	}))
	defer server.Close()

	provider := NewOpenAIProvider("test-key", "", option.WithBaseURL(server.URL+"/"))

	_, err := provider.Embed(context.Background(), "anything")
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}
