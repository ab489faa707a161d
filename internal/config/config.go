package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Vector store backends
const (
	VectorStoreSupabase = "supabase"
	VectorStorePostgres = "postgres"
	VectorStoreQdrant   = "qdrant"
)

// Provider names
const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Config holds the application configuration
// Every value comes from the process environment (optionally seeded from .env)
type Config struct {
	// Environment
	Environment string
	Port        string
	StaticDir   string
	CORSOrigins []string

	// Vector store
	VectorStore      string // supabase, postgres or qdrant
	SupabaseURL      string
	SupabaseKey      string
	DatabaseURL      string // postgres backend
	QdrantAddr       string
	QdrantCollection string
	MatchFunction    string  // stored similarity-search procedure
	DocumentsTable   string  // table (or collection) written by ingest
	MatchThreshold   float64 // minimum similarity
	MatchCount       int     // maximum number of matches

	// LLM API Keys
	GeminiAPIKey    string
	OpenAIAPIKey    string
	AnthropicAPIKey string

	// Models
	EmbeddingProvider  string
	EmbeddingModel     string
	GenerationProvider string
	GenerationModel    string

	// Sampling parameters (held constant across requests)
	Temperature      float32
	FrequencyPenalty float32
	PresencePenalty  float32

	// Ingest
	ChunkSize    int
	ChunkOverlap int

	// Observability
	SentryDSN         string
	LangfusePublicKey string
	LangfuseSecretKey string
	LangfuseHost      string
	LangfuseEnabled   bool
}

func Load() *Config {
	return &Config{
		Environment:        getEnv("ENVIRONMENT", "development"),
		Port:               getEnv("PORT", "3000"),
		StaticDir:          getEnv("STATIC_DIR", "./static"),
		CORSOrigins:        getEnvList("CORS_ORIGINS", "*"),
		VectorStore:        strings.ToLower(getEnv("VECTOR_STORE", VectorStoreSupabase)),
		SupabaseURL:        getEnv("SUPABASE_URL", os.Getenv("supabaseUrl")),
		SupabaseKey:        getEnv("SUPABASE_KEY", os.Getenv("supabaseKey")),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		QdrantAddr:         getEnv("QDRANT_ADDR", "localhost:6334"),
		QdrantCollection:   getEnv("QDRANT_COLLECTION", "albums"),
		MatchFunction:      getEnv("MATCH_FUNCTION", "match_albums"),
		DocumentsTable:     getEnv("DOCUMENTS_TABLE", "albums"),
		MatchThreshold:     getEnvFloat("MATCH_THRESHOLD", 0.05),
		MatchCount:         getEnvInt("MATCH_COUNT", 4),
		GeminiAPIKey:       getEnv("GEMINI_API_KEY", os.Getenv("genAiApiKey")),
		OpenAIAPIKey:       getEnv("OPENAI_API_KEY", ""),
		AnthropicAPIKey:    getEnv("ANTHROPIC_API_KEY", ""),
		EmbeddingProvider:  strings.ToLower(getEnv("EMBEDDING_PROVIDER", ProviderGemini)),
		EmbeddingModel:     getEnv("EMBEDDING_MODEL", ""),
		GenerationProvider: strings.ToLower(getEnv("GENERATION_PROVIDER", ProviderGemini)),
		GenerationModel:    getEnv("GENERATION_MODEL", ""),
		Temperature:        float32(getEnvFloat("TEMPERATURE", 0.5)),
		FrequencyPenalty:   float32(getEnvFloat("FREQUENCY_PENALTY", 0.5)),
		PresencePenalty:    float32(getEnvFloat("PRESENCE_PENALTY", 0.5)),
		ChunkSize:          getEnvInt("CHUNK_SIZE", 250),
		ChunkOverlap:       getEnvInt("CHUNK_OVERLAP", 35),
		SentryDSN:          getEnv("SENTRY_DSN", ""),
		LangfusePublicKey:  getEnv("LANGFUSE_PUBLIC_KEY", ""),
		LangfuseSecretKey:  getEnv("LANGFUSE_SECRET_KEY", ""),
		LangfuseHost:       getEnv("LANGFUSE_HOST", "https://cloud.langfuse.com"),
		LangfuseEnabled:    getEnv("LANGFUSE_ENABLED", "false") == "true",
	}
}

// Validate reports every missing credential for the selected backends
func (c *Config) Validate() error {
	var errs []error

	switch c.VectorStore {
	case VectorStoreSupabase:
		if c.SupabaseURL == "" {
			errs = append(errs, errors.New("SUPABASE_URL is required"))
		}
		if c.SupabaseKey == "" {
			errs = append(errs, errors.New("SUPABASE_KEY is required"))
		}
	case VectorStorePostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required"))
		}
	case VectorStoreQdrant:
		if c.QdrantAddr == "" {
			errs = append(errs, errors.New("QDRANT_ADDR is required"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown VECTOR_STORE %q (allowed: supabase, postgres, qdrant)", c.VectorStore))
	}

	if err := c.requireAPIKey("EMBEDDING_PROVIDER", c.EmbeddingProvider, false); err != nil {
		errs = append(errs, err)
	}
	if err := c.requireAPIKey("GENERATION_PROVIDER", c.GenerationProvider, true); err != nil {
		errs = append(errs, err)
	}

	if c.MatchCount <= 0 {
		errs = append(errs, fmt.Errorf("MATCH_COUNT must be positive, got %d", c.MatchCount))
	}

	return errors.Join(errs...)
}

// IsProduction returns true when running in the production environment
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// APIKeyFor returns the configured API key for a provider name
func (c *Config) APIKeyFor(provider string) string {
	switch provider {
	case ProviderGemini:
		return c.GeminiAPIKey
	case ProviderOpenAI:
		return c.OpenAIAPIKey
	case ProviderAnthropic:
		return c.AnthropicAPIKey
	default:
		return ""
	}
}

func (c *Config) requireAPIKey(setting, provider string, allowAnthropic bool) error {
	switch provider {
	case ProviderGemini, ProviderOpenAI:
	case ProviderAnthropic:
		if !allowAnthropic {
			return fmt.Errorf("%s %q does not offer embeddings (allowed: gemini, openai)", setting, provider)
		}
	default:
		return fmt.Errorf("unknown %s %q", setting, provider)
	}
	if c.APIKeyFor(provider) == "" {
		return fmt.Errorf("%s API key is required for %s=%s", provider, setting, provider)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}

func getEnvList(key, defaultValue string) []string {
	var values []string
	for _, value := range strings.Split(getEnv(key, defaultValue), ",") {
		if value = strings.TrimSpace(value); value != "" {
			values = append(values, value)
		}
	}
	return values
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}
