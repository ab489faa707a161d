package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Conceptual-Machines/albumatlas/internal/llm"
	"github.com/Conceptual-Machines/albumatlas/internal/metrics"
	"github.com/Conceptual-Machines/albumatlas/internal/models"
)

// DefaultMatchCount is the number of matches requested from the vector store
const DefaultMatchCount = 4

// Matcher runs a similarity search against stored album descriptions
type Matcher interface {
	Match(ctx context.Context, embedding []float32, threshold float64, count int) ([]models.Match, error)
}

// Retriever turns a query into the context text handed to the generator
type Retriever struct {
	embedder  llm.Embedder
	store     Matcher
	threshold float64
	count     int
}

// NewRetriever creates a new retriever
func NewRetriever(embedder llm.Embedder, store Matcher, threshold float64, count int) *Retriever {
	if count <= 0 {
		count = DefaultMatchCount
	}
	return &Retriever{
		embedder:  embedder,
		store:     store,
		threshold: threshold,
		count:     count,
	}
}

// Retrieve embeds the query once, runs one similarity search and joins the matched contents
func (r *Retriever) Retrieve(ctx context.Context, query string) (string, error) {
	embedStart := time.Now()
	embedding, err := r.embedder.Embed(ctx, query)
	metrics.RecordStage(metrics.StageEmbed, time.Since(embedStart), err)
	if err != nil {
		return "", fmt.Errorf("failed to embed query: %w", err)
	}

	matchStart := time.Now()
	matches, err := r.store.Match(ctx, embedding, r.threshold, r.count)
	metrics.RecordStage(metrics.StageMatch, time.Since(matchStart), err)
	if err != nil {
		return "", fmt.Errorf("failed to find matches: %w", err)
	}
	metrics.RecordMatches(len(matches))

	return JoinContext(matches), nil
}

// JoinContext joins match contents with newlines in the order given
func JoinContext(matches []models.Match) string {
	contents := make([]string, 0, len(matches))
	for _, match := range matches {
		contents = append(contents, match.Content)
	}
	return strings.Join(contents, "\n")
}
