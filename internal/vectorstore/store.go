package vectorstore

import (
	"context"
	"fmt"
	"regexp"

	"github.com/Conceptual-Machines/albumatlas/internal/config"
	"github.com/Conceptual-Machines/albumatlas/internal/models"
)

// Store is a vector store holding album description chunks
type Store interface {
	// Match returns up to count rows whose similarity to embedding is above threshold,
	// in the order the store returns them
	Match(ctx context.Context, embedding []float32, threshold float64, count int) ([]models.Match, error)

	// Insert stores pre-embedded documents
	Insert(ctx context.Context, documents []models.Document) error

	// Name returns the backend name (e.g., "supabase")
	Name() string

	Close() error
}

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// validateIdentifier guards table and function names that end up in SQL or URL paths
func validateIdentifier(kind, name string) error {
	if !identifierPattern.MatchString(name) {
		return fmt.Errorf("invalid %s name %q", kind, name)
	}
	return nil
}

// New creates the store selected by cfg.VectorStore
func New(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.VectorStore {
	case config.VectorStoreSupabase:
		return NewSupabaseStore(cfg.SupabaseURL, cfg.SupabaseKey, cfg.MatchFunction, cfg.DocumentsTable)
	case config.VectorStorePostgres:
		return NewPostgresStore(ctx, cfg.DatabaseURL, cfg.MatchFunction, cfg.DocumentsTable)
	case config.VectorStoreQdrant:
		return NewQdrantStore(cfg.QdrantAddr, cfg.QdrantCollection)
	default:
		return nil, fmt.Errorf("unknown vector store: %s (allowed: supabase, postgres, qdrant)", cfg.VectorStore)
	}
}
