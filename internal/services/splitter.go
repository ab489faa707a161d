package services

import (
	"fmt"
	"unicode/utf8"

	"github.com/tmc/langchaingo/textsplitter"
)

const (
	// DefaultChunkSize is the default maximum number of characters per chunk
	DefaultChunkSize = 250
	// DefaultChunkOverlap is the default number of characters shared by neighbouring chunks
	DefaultChunkOverlap = 35
)

var defaultSeparators = []string{"\n\n", "\n", " ", ""}

// TextSplitter splits text recursively: paragraph breaks first, then line
// breaks, then spaces, then single characters. Pieces are merged back into
// chunks of at most chunkSize characters with chunkOverlap characters carried
// over between neighbours. Separators stay attached to the piece that follows them.
type TextSplitter struct {
	chunkSize    int
	chunkOverlap int
	separators   []string
	splitter     textsplitter.RecursiveCharacter
}

// SplitterOption configures the splitter
type SplitterOption func(*TextSplitter)

// WithChunkSize sets the chunk size in characters
func WithChunkSize(size int) SplitterOption {
	return func(s *TextSplitter) {
		if size > 0 {
			s.chunkSize = size
		}
	}
}

// WithChunkOverlap sets the overlap between chunks in characters
func WithChunkOverlap(overlap int) SplitterOption {
	return func(s *TextSplitter) {
		if overlap >= 0 {
			s.chunkOverlap = overlap
		}
	}
}

// WithSeparators replaces the separator hierarchy
func WithSeparators(separators ...string) SplitterOption {
	return func(s *TextSplitter) {
		if len(separators) > 0 {
			s.separators = separators
		}
	}
}

// NewTextSplitter creates a splitter with the given options
func NewTextSplitter(opts ...SplitterOption) *TextSplitter {
	s := &TextSplitter{
		chunkSize:    DefaultChunkSize,
		chunkOverlap: DefaultChunkOverlap,
		separators:   defaultSeparators,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.chunkOverlap >= s.chunkSize {
		s.chunkOverlap = s.chunkSize / 4
	}

	s.splitter = textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(s.chunkSize),
		textsplitter.WithChunkOverlap(s.chunkOverlap),
		textsplitter.WithSeparators(s.separators),
		textsplitter.WithKeepSeparator(true),
		textsplitter.WithLenFunc(utf8.RuneCountInString),
	)
	return s
}

// Split returns the non-empty chunks of text in document order
func (s *TextSplitter) Split(text string) ([]string, error) {
	chunks, err := s.splitter.SplitText(text)
	if err != nil {
		return nil, fmt.Errorf("failed to split text: %w", err)
	}

	var out []string
	for _, chunk := range chunks {
		if chunk != "" {
			out = append(out, chunk)
		}
	}
	return out, nil
}
