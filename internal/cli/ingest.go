package cli

import (
	"context"
	"fmt"

	"github.com/Conceptual-Machines/albumatlas/internal/config"
	"github.com/Conceptual-Machines/albumatlas/internal/llm"
	"github.com/Conceptual-Machines/albumatlas/internal/services"
	"github.com/Conceptual-Machines/albumatlas/internal/vectorstore"
	"github.com/spf13/cobra"
)

// fileIngester loads a text file into the vector store
type fileIngester interface {
	IngestFile(ctx context.Context, path string) (int, error)
}

var (
	ingestChunkSize    int
	ingestChunkOverlap int
)

// buildIngester is replaced in tests
var buildIngester = func(ctx context.Context, chunkSize, chunkOverlap int) (fileIngester, func() error, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if chunkSize <= 0 {
		chunkSize = cfg.ChunkSize
	}
	if chunkOverlap < 0 {
		chunkOverlap = cfg.ChunkOverlap
	}

	embedder, err := llm.NewProviderFactory(cfg).GetEmbedder(ctx, cfg.EmbeddingProvider)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create embedder: %w", err)
	}
	store, err := vectorstore.New(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open vector store: %w", err)
	}

	splitter := services.NewTextSplitter(
		services.WithChunkSize(chunkSize),
		services.WithChunkOverlap(chunkOverlap),
	)
	return services.NewIngester(splitter, embedder, store), store.Close, nil
}

var ingestCmd = &cobra.Command{
	Use:   "ingest [file]",
	Short: "Load album descriptions into the vector store",
	Long: `Splits a UTF-8 text file into overlapping chunks, embeds every chunk
and stores the chunks with their embeddings in the configured vector store.
Nothing is stored unless every chunk was embedded.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().IntVar(&ingestChunkSize, "chunk-size", 0, "maximum chunk length in characters (default from CHUNK_SIZE)")
	ingestCmd.Flags().IntVar(&ingestChunkOverlap, "chunk-overlap", -1, "characters shared by neighbouring chunks (default from CHUNK_OVERLAP)")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	ingester, closeFn, err := buildIngester(ctx, ingestChunkSize, ingestChunkOverlap)
	if err != nil {
		return err
	}
	defer func() {
		if closeFn != nil {
			_ = closeFn()
		}
	}()

	count, err := ingester.IngestFile(ctx, args[0])
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Stored %d chunks from %s\n", count, args[0])
	return nil
}
