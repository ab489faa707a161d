package vectorstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/Conceptual-Machines/albumatlas/internal/models"
	"github.com/getsentry/sentry-go"
	"github.com/goccy/go-json"
	"github.com/supabase-community/postgrest-go"
)

const supabaseSchema = "public"

// SupabaseStore talks to Supabase through its PostgREST endpoints:
// similarity search is a stored procedure call, ingest is a table insert.
type SupabaseStore struct {
	restURL       string
	apiKey        string
	matchFunction string
	table         string
}

type matchRequest struct {
	QueryEmbedding []float32 `json:"query_embedding"`
	MatchThreshold float64   `json:"match_threshold"`
	MatchCount     int       `json:"match_count"`
}

// matchRow keeps the id raw since tables use either bigint or uuid keys
type matchRow struct {
	ID         json.RawMessage `json:"id"`
	Content    string          `json:"content"`
	Similarity float64         `json:"similarity"`
}

type insertRow struct {
	Content   string    `json:"content"`
	Embedding []float32 `json:"embedding"`
}

// postgrestError is the error body PostgREST returns with non-2xx responses
type postgrestError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
}

// NewSupabaseStore creates a new Supabase store
func NewSupabaseStore(baseURL, apiKey, matchFunction, table string) (*SupabaseStore, error) {
	if baseURL == "" || apiKey == "" {
		return nil, fmt.Errorf("supabase URL and key are required")
	}
	if err := validateIdentifier("match function", matchFunction); err != nil {
		return nil, err
	}
	if err := validateIdentifier("table", table); err != nil {
		return nil, err
	}

	store := &SupabaseStore{
		restURL:       strings.TrimRight(baseURL, "/") + "/rest/v1",
		apiKey:        apiKey,
		matchFunction: matchFunction,
		table:         table,
	}
	if _, err := store.client(); err != nil {
		return nil, err
	}
	return store, nil
}

// client builds a PostgREST client per call since it records errors on
// the client itself.
func (s *SupabaseStore) client() (*postgrest.Client, error) {
	client := postgrest.NewClient(s.restURL, supabaseSchema, map[string]string{"apikey": s.apiKey})
	if client.ClientError != nil {
		return nil, fmt.Errorf("invalid supabase URL: %w", client.ClientError)
	}
	return client.TokenAuth(s.apiKey), nil
}

// Name returns the backend name
func (s *SupabaseStore) Name() string {
	return "supabase"
}

// Match calls the similarity-search procedure
func (s *SupabaseStore) Match(ctx context.Context, embedding []float32, threshold float64, count int) ([]models.Match, error) {
	span := sentry.StartSpan(ctx, "supabase.rpc")
	span.SetTag("function", s.matchFunction)
	defer span.Finish()

	client, err := s.client()
	if err != nil {
		span.Status = sentry.SpanStatusInternalError
		return nil, err
	}

	body := client.Rpc(s.matchFunction, "", matchRequest{
		QueryEmbedding: embedding,
		MatchThreshold: threshold,
		MatchCount:     count,
	})
	if client.ClientError != nil {
		span.Status = sentry.SpanStatusInternalError
		return nil, fmt.Errorf("supabase rpc %s failed: %w", s.matchFunction, client.ClientError)
	}

	var rows []matchRow
	if err := json.Unmarshal([]byte(body), &rows); err != nil {
		span.Status = sentry.SpanStatusInternalError
		var pgErr postgrestError
		if json.Unmarshal([]byte(body), &pgErr) == nil && pgErr.Message != "" {
			return nil, fmt.Errorf("supabase rpc %s failed: (%s) %s", s.matchFunction, pgErr.Code, pgErr.Message)
		}
		return nil, fmt.Errorf("failed to decode match response: %w", err)
	}

	matches := make([]models.Match, 0, len(rows))
	for _, row := range rows {
		matches = append(matches, models.Match{
			ID:         strings.Trim(string(row.ID), `"`),
			Content:    row.Content,
			Similarity: row.Similarity,
		})
	}
	return matches, nil
}

// Insert writes documents to the table in a single request
func (s *SupabaseStore) Insert(ctx context.Context, documents []models.Document) error {
	if len(documents) == 0 {
		return nil
	}

	span := sentry.StartSpan(ctx, "supabase.insert")
	span.SetTag("table", s.table)
	defer span.Finish()

	rows := make([]insertRow, 0, len(documents))
	for _, doc := range documents {
		rows = append(rows, insertRow{Content: doc.Content, Embedding: doc.Embedding})
	}

	client, err := s.client()
	if err != nil {
		span.Status = sentry.SpanStatusInternalError
		return err
	}

	if _, _, err := client.From(s.table).Insert(rows, false, "", "minimal", "").Execute(); err != nil {
		span.Status = sentry.SpanStatusInternalError
		return fmt.Errorf("supabase insert into %s failed: %w", s.table, err)
	}
	return nil
}

// Close is a no-op; the PostgREST client holds no dedicated resources
func (s *SupabaseStore) Close() error {
	return nil
}
