package models

// PreferenceInput holds the music preferences submitted through the form
type PreferenceInput struct {
	Mood       string `json:"mood" form:"mood"`
	Artist     string `json:"artist" form:"artist"`
	Album      string `json:"album" form:"album"`
	Additional string `json:"additional" form:"additional"`
}

// Match is a single row returned by the vector store similarity search
type Match struct {
	ID         string  `json:"id,omitempty"`
	Content    string  `json:"content"`
	Similarity float64 `json:"similarity,omitempty"`
}

// Document is a chunk of album description text ready to be stored
type Document struct {
	ID        string    `json:"id,omitempty"`
	Content   string    `json:"content"`
	Embedding []float32 `json:"embedding"`
}

// RecommendResponse is the JSON payload returned by POST /api/recommend
type RecommendResponse struct {
	Success        bool   `json:"success"`
	Query          string `json:"query,omitempty"`
	Recommendation string `json:"recommendation,omitempty"`
	Error          string `json:"error,omitempty"`
}

// Recommendation is the outcome of one run of the pipeline
type Recommendation struct {
	Query   string
	Context string
	Answer  string
	Model   string
	Usage   TokenUsage
}

// TokenUsage carries provider token counts for logging and metrics
type TokenUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}
