package prompt

import "fmt"

const (
	contextLabel  = "Context: "
	questionLabel = "Question: "
)

// Builder assembles the single prompt sent to the generation service
type Builder struct {
	loader *Loader
}

// NewPromptBuilder creates a new prompt builder
func NewPromptBuilder() *Builder {
	return &Builder{loader: NewPromptLoader()}
}

// Build combines the fixed instructions, the retrieved context and the user query.
// The context is passed through unfiltered; excluding the named artist is left
// to the instructions.
func (b *Builder) Build(retrievedContext, question string) (string, error) {
	instructions, err := b.loader.GetSystemPrompt()
	if err != nil {
		return "", fmt.Errorf("failed to load system prompt: %w", err)
	}
	return instructions + "\n\n" + contextLabel + retrievedContext + "\n" + questionLabel + question, nil
}
