package services

import (
	"context"
	"sync"

	"github.com/Conceptual-Machines/albumatlas/internal/llm"
	"github.com/Conceptual-Machines/albumatlas/internal/models"
)

// stubEmbedder records every text it embeds
type stubEmbedder struct {
	mu        sync.Mutex
	texts     []string
	embedding []float32
	err       error
}

func (s *stubEmbedder) Name() string { return "stub" }

func (s *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.texts = append(s.texts, text)
	if s.err != nil {
		return nil, s.err
	}
	return s.embedding, nil
}

// stubStore records match calls and inserted documents
type stubStore struct {
	matches    []models.Match
	matchErr   error
	insertErr  error
	calls      int
	embedding  []float32
	threshold  float64
	count      int
	documents  []models.Document
	insertions int
}

func (s *stubStore) Match(_ context.Context, embedding []float32, threshold float64, count int) ([]models.Match, error) {
	s.calls++
	s.embedding = embedding
	s.threshold = threshold
	s.count = count
	if s.matchErr != nil {
		return nil, s.matchErr
	}
	return s.matches, nil
}

func (s *stubStore) Insert(_ context.Context, documents []models.Document) error {
	s.insertions++
	if s.insertErr != nil {
		return s.insertErr
	}
	s.documents = append(s.documents, documents...)
	return nil
}

// stubProvider answers with a fixed text
type stubProvider struct {
	requests []*llm.GenerationRequest
	text     string
	err      error
}

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) Generate(_ context.Context, request *llm.GenerationRequest) (*llm.GenerationResponse, error) {
	s.requests = append(s.requests, request)
	if s.err != nil {
		return nil, s.err
	}
	return &llm.GenerationResponse{
		Text:  s.text,
		Model: "stub-model",
		Usage: models.TokenUsage{InputTokens: 100, OutputTokens: 20, TotalTokens: 120},
	}, nil
}
