package handlers

import (
	"context"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/Conceptual-Machines/albumatlas/internal/logger"
	"github.com/Conceptual-Machines/albumatlas/internal/models"
	"github.com/Conceptual-Machines/albumatlas/internal/render"
	"github.com/Conceptual-Machines/albumatlas/internal/web/templates"
	"github.com/Conceptual-Machines/albumatlas/pkg/embedded"
	"github.com/a-h/templ"
	"github.com/gin-gonic/gin"
)

const (
	indexFile = "index.html"

	missingPreferencesMessage = "Please provide at least a mood, artist, or album you like!"
	recommendFailedMessage    = "Failed to generate recommendations. Please try again."
)

// Recommender runs the recommendation pipeline
type Recommender interface {
	Recommend(ctx context.Context, input models.PreferenceInput) (*models.Recommendation, error)
}

type WebHandler struct {
	recommender Recommender
	staticDir   string
}

// NewWebHandler creates the page handler; files in staticDir override the embedded assets
func NewWebHandler(recommender Recommender, staticDir string) *WebHandler {
	return &WebHandler{
		recommender: recommender,
		staticDir:   staticDir,
	}
}

// Home serves the entry page
func (h *WebHandler) Home(c *gin.Context) {
	if h.staticDir != "" {
		path := filepath.Join(h.staticDir, indexFile)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			c.File(path)
			return
		}
	}

	page, err := fs.ReadFile(embedded.Static(), indexFile)
	if err != nil {
		logger.Error("Failed to read embedded index page", err, logger.WithContext(c))
		c.String(http.StatusInternalServerError, "Failed to load page")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}

// Recommend handles the form post and answers with an HTML fragment.
// Errors are rendered as a fragment with status 200 so htmx swaps them in.
func (h *WebHandler) Recommend(c *gin.Context) {
	var input models.PreferenceInput
	if err := c.ShouldBind(&input); err != nil {
		logger.Warn("Invalid form submission", logger.WithContext(c))
		h.renderFragment(c, templates.RecommendationError(recommendFailedMessage))
		return
	}

	if isBlank(input.Mood) && isBlank(input.Artist) && isBlank(input.Album) {
		h.renderFragment(c, templates.RecommendationError(missingPreferencesMessage))
		return
	}

	recommendation, err := h.recommender.Recommend(c.Request.Context(), input)
	if err != nil {
		logger.Error("Error processing recommendation", err, logger.WithContext(c))
		h.renderFragment(c, templates.RecommendationError(recommendFailedMessage))
		return
	}

	h.renderFragment(c, templates.RecommendationResult(recommendation.Query, render.Markdown(recommendation.Answer)))
}

func (h *WebHandler) renderFragment(c *gin.Context, component templ.Component) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := component.Render(c.Request.Context(), c.Writer); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render template"})
	}
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
