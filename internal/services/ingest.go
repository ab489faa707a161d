package services

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/Conceptual-Machines/albumatlas/internal/llm"
	"github.com/Conceptual-Machines/albumatlas/internal/logger"
	"github.com/Conceptual-Machines/albumatlas/internal/metrics"
	"github.com/Conceptual-Machines/albumatlas/internal/models"
)

// DocumentWriter stores pre-embedded documents
type DocumentWriter interface {
	Insert(ctx context.Context, documents []models.Document) error
}

// Ingester splits album descriptions, embeds every chunk and stores them
type Ingester struct {
	splitter *TextSplitter
	embedder llm.Embedder
	store    DocumentWriter
}

// NewIngester creates a new ingester
func NewIngester(splitter *TextSplitter, embedder llm.Embedder, store DocumentWriter) *Ingester {
	if splitter == nil {
		splitter = NewTextSplitter()
	}
	return &Ingester{
		splitter: splitter,
		embedder: embedder,
		store:    store,
	}
}

// IngestFile reads a UTF-8 text file and ingests its contents
func (i *Ingester) IngestFile(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return i.Ingest(ctx, string(data))
}

// Ingest stores every chunk of text and returns the number of chunks written.
// Nothing is written unless every chunk was embedded.
func (i *Ingester) Ingest(ctx context.Context, text string) (int, error) {
	chunks, err := i.splitter.Split(text)
	if err != nil {
		return 0, err
	}
	if len(chunks) == 0 {
		return 0, nil
	}

	logger.Info("📚 Embedding document chunks", logger.Fields{"chunks": len(chunks)})

	documents := make([]models.Document, 0, len(chunks))
	for idx, chunk := range chunks {
		start := time.Now()
		embedding, err := i.embedder.Embed(ctx, chunk)
		metrics.RecordStage(metrics.StageEmbed, time.Since(start), err)
		if err != nil {
			return 0, fmt.Errorf("failed to embed chunk %d: %w", idx, err)
		}
		documents = append(documents, models.Document{
			Content:   chunk,
			Embedding: embedding,
		})
	}

	if err := i.store.Insert(ctx, documents); err != nil {
		return 0, fmt.Errorf("failed to store chunks: %w", err)
	}

	metrics.RecordDocumentsIngested(len(documents))
	logger.Info("✅ Stored document chunks", logger.Fields{"chunks": len(documents)})
	return len(documents), nil
}
