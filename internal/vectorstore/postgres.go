package vectorstore

import (
	"context"
	"fmt"

	"github.com/Conceptual-Machines/albumatlas/internal/models"
	"github.com/getsentry/sentry-go"
	pgvector "github.com/pgvector/pgvector-go"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// PostgresStore queries a pgvector-enabled Postgres database directly.
// It calls the same match function the Supabase RPC exposes, so both backends share one schema.
type PostgresStore struct {
	db            *gorm.DB
	matchFunction string
	table         string
}

// albumChunk is one row of the documents table
type albumChunk struct {
	ID        uint            `gorm:"primaryKey"`
	Content   string          `gorm:"type:text;not null"`
	Embedding pgvector.Vector `gorm:"type:vector"`
}

type matchResult struct {
	ID         string
	Content    string
	Similarity float64
}

// NewPostgresStore opens a connection pool to the database
func NewPostgresStore(ctx context.Context, dsn, matchFunction, table string) (*PostgresStore, error) {
	if err := validateIdentifier("match function", matchFunction); err != nil {
		return nil, err
	}
	if err := validateIdentifier("table", table); err != nil {
		return nil, err
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	return &PostgresStore{
		db:            db,
		matchFunction: matchFunction,
		table:         table,
	}, nil
}

// Name returns the backend name
func (s *PostgresStore) Name() string {
	return "postgres"
}

// Match runs the similarity-search function
func (s *PostgresStore) Match(ctx context.Context, embedding []float32, threshold float64, count int) ([]models.Match, error) {
	span := sentry.StartSpan(ctx, "postgres.match")
	span.SetTag("function", s.matchFunction)
	defer span.Finish()

	var rows []matchResult
	err := s.db.WithContext(ctx).
		Raw(matchQuery(s.matchFunction), pgvector.NewVector(embedding), threshold, count).
		Scan(&rows).Error
	if err != nil {
		span.Status = sentry.SpanStatusInternalError
		return nil, fmt.Errorf("postgres match failed: %w", err)
	}

	return toMatches(rows), nil
}

// Insert writes documents in one batch
func (s *PostgresStore) Insert(ctx context.Context, documents []models.Document) error {
	if len(documents) == 0 {
		return nil
	}

	chunks := make([]albumChunk, 0, len(documents))
	for _, doc := range documents {
		chunks = append(chunks, albumChunk{
			Content:   doc.Content,
			Embedding: pgvector.NewVector(doc.Embedding),
		})
	}

	if err := s.db.WithContext(ctx).Table(s.table).Create(&chunks).Error; err != nil {
		return fmt.Errorf("postgres insert failed: %w", err)
	}
	return nil
}

// Close closes the underlying connection pool
func (s *PostgresStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// matchQuery builds the call to the match function; the name is validated at construction
func matchQuery(function string) string {
	return fmt.Sprintf("SELECT id, content, similarity FROM %s(?, ?, ?)", function)
}

func toMatches(rows []matchResult) []models.Match {
	matches := make([]models.Match, 0, len(rows))
	for _, row := range rows {
		matches = append(matches, models.Match{
			ID:         row.ID,
			Content:    row.Content,
			Similarity: row.Similarity,
		})
	}
	return matches
}
