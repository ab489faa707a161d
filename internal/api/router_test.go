package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Conceptual-Machines/albumatlas/internal/config"
	"github.com/Conceptual-Machines/albumatlas/internal/llm"
	"github.com/Conceptual-Machines/albumatlas/internal/metrics"
	"github.com/Conceptual-Machines/albumatlas/internal/models"
	"github.com/Conceptual-Machines/albumatlas/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recommenderFunc func(ctx context.Context, input models.PreferenceInput) (*models.Recommendation, error)

func (f recommenderFunc) Recommend(ctx context.Context, input models.PreferenceInput) (*models.Recommendation, error) {
	return f(ctx, input)
}

type failingEmbedder struct{ err error }

func (e failingEmbedder) Name() string { return "failing" }

func (e failingEmbedder) Embed(context.Context, string) ([]float32, error) { return nil, e.err }

type countingMatcher struct{ calls int }

func (m *countingMatcher) Match(context.Context, []float32, float64, int) ([]models.Match, error) {
	m.calls++
	return nil, nil
}

type countingProvider struct{ calls int }

func (p *countingProvider) Name() string { return "counting" }

func (p *countingProvider) Generate(context.Context, *llm.GenerationRequest) (*llm.GenerationResponse, error) {
	p.calls++
	return &llm.GenerationResponse{Text: "unused", Model: "counting-model"}, nil
}

func testConfig(staticDir string) *config.Config {
	return &config.Config{
		StaticDir:          staticDir,
		CORSOrigins:        []string{"*"},
		VectorStore:        config.VectorStoreSupabase,
		EmbeddingProvider:  config.ProviderGemini,
		GenerationProvider: config.ProviderGemini,
		MatchThreshold:     0.05,
		MatchCount:         4,
	}
}

func newTestRouter(t *testing.T, recommender recommenderFunc) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	return SetupRouter(testConfig(t.TempDir()), recommender, nil, "test")
}

func serve(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRouter_RecommendSuccess(t *testing.T) {
	router := newTestRouter(t, func(_ context.Context, input models.PreferenceInput) (*models.Recommendation, error) {
		return &models.Recommendation{Query: "I like " + input.Artist + ". ", Answer: "Dreamland"}, nil
	})

	req := httptest.NewRequest(http.MethodPost, "/api/recommend", strings.NewReader(`{"artist":"Magdalena Bay"}`))
	req.Header.Set("Content-Type", "application/json")
	w := serve(router, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	var resp models.RecommendResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "I like Magdalena Bay. ", resp.Query)
	assert.Equal(t, "Dreamland", resp.Recommendation)
}

func TestRouter_RecommendFailures(t *testing.T) {
	tests := []struct {
		name        string
		recommender recommenderFunc
		body        string
	}{
		{
			name: "embedding failure",
			recommender: func(context.Context, models.PreferenceInput) (*models.Recommendation, error) {
				return nil, errors.New("failed to embed query: connection refused")
			},
			body: `{"mood":"chill"}`,
		},
		{
			name: "invalid json",
			recommender: func(context.Context, models.PreferenceInput) (*models.Recommendation, error) {
				return &models.Recommendation{Answer: "should not be reached"}, nil
			},
			body: `not json`,
		},
		{
			name: "panic in pipeline",
			recommender: func(context.Context, models.PreferenceInput) (*models.Recommendation, error) {
				panic("nil pointer somewhere deep")
			},
			body: `{}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(t, tt.recommender)

			req := httptest.NewRequest(http.MethodPost, "/api/recommend", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := serve(router, req)

			assert.Equal(t, http.StatusInternalServerError, w.Code)
			assert.JSONEq(t,
				`{"success":false,"error":"Failed to generate recommendations. Please try again."}`,
				w.Body.String())
			assert.NotContains(t, w.Body.String(), "goroutine")
		})
	}
}

func TestRouter_HTMXRecommend(t *testing.T) {
	router := newTestRouter(t, func(context.Context, models.PreferenceInput) (*models.Recommendation, error) {
		return &models.Recommendation{Query: "I'm in the mood for something chill. ", Answer: "Try **Blonde**"}, nil
	})

	form := url.Values{"mood": {"chill"}}
	req := httptest.NewRequest(http.MethodPost, "/htmx/recommend", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := serve(router, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), `<strong class="markdown-bold">Blonde</strong>`)
}

func TestRouter_HomeAndStatic(t *testing.T) {
	router := newTestRouter(t, nil)

	w := serve(router, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `hx-post="/htmx/recommend"`)

	w = serve(router, httptest.NewRequest(http.MethodGet, "/static/style.css", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_StaticDirFallback(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "robots.txt"), []byte("User-agent: *"), 0o600))

	gin.SetMode(gin.TestMode)
	router := SetupRouter(testConfig(dir), nil, nil, "test")

	w := serve(router, httptest.NewRequest(http.MethodGet, "/robots.txt", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "User-agent: *", w.Body.String())

	w = serve(router, httptest.NewRequest(http.MethodGet, "/missing.txt", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = serve(router, httptest.NewRequest(http.MethodGet, "/../etc/passwd", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_Health(t *testing.T) {
	router := newTestRouter(t, nil)

	w := serve(router, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"healthy"`)
}

func TestRouter_PrometheusExposition(t *testing.T) {
	router := newTestRouter(t, nil)
	serve(router, httptest.NewRequest(http.MethodGet, "/health", nil))

	w := serve(router, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "albumatlas_http_requests_total")
	assert.Contains(t, w.Body.String(), `route="/health"`)
}

func TestRouter_CORSPreflight(t *testing.T) {
	router := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/recommend", nil)
	req.Header.Set("Origin", "https://albums.example.com")
	w := serve(router, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "POST")
}

func TestRouter_RecommendEmbeddingFailureThroughPipeline(t *testing.T) {
	matcher := &countingMatcher{}
	provider := &countingProvider{}
	recommender := services.NewRecommender(
		services.NewRetriever(failingEmbedder{err: errors.New("API key not valid")}, matcher, 0.05, 4),
		services.NewGenerator(provider, services.DefaultGenerationParams()),
		nil,
		nil,
	)

	gin.SetMode(gin.TestMode)
	router := SetupRouter(testConfig(t.TempDir()), recommender, nil, "test")

	req := httptest.NewRequest(http.MethodPost, "/api/recommend", strings.NewReader(`{"artist":"Magdalena Bay"}`))
	req.Header.Set("Content-Type", "application/json")
	w := serve(router, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t,
		`{"success":false,"error":"Failed to generate recommendations. Please try again."}`,
		w.Body.String())
	assert.NotContains(t, w.Body.String(), "API key")
	assert.Equal(t, 0, matcher.calls)
	assert.Equal(t, 0, provider.calls)
}

func TestRouter_PanicCountedAsServerError(t *testing.T) {
	counter := metrics.HTTPRequestsTotal.WithLabelValues("/api/recommend", http.MethodPost, "5xx")
	before := testutil.ToFloat64(counter)

	router := newTestRouter(t, func(context.Context, models.PreferenceInput) (*models.Recommendation, error) {
		panic("nil pointer somewhere deep")
	})

	req := httptest.NewRequest(http.MethodPost, "/api/recommend", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := serve(router, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.InDelta(t, before+1, testutil.ToFloat64(counter), 1e-9)
}
