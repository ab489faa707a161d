package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/Conceptual-Machines/albumatlas/internal/logger"
	"github.com/Conceptual-Machines/albumatlas/internal/models"
	"github.com/gin-gonic/gin"
)

// Recommender runs the recommendation pipeline
type Recommender interface {
	Recommend(ctx context.Context, input models.PreferenceInput) (*models.Recommendation, error)
}

type RecommendHandler struct {
	recommender Recommender
}

func NewRecommendHandler(recommender Recommender) *RecommendHandler {
	return &RecommendHandler{recommender: recommender}
}

// Recommend handles POST /api/recommend.
// Every failure, including a malformed body, is answered with 500 and the generic message.
func (h *RecommendHandler) Recommend(c *gin.Context) {
	var input models.PreferenceInput
	// An empty body is an empty preference set
	if err := c.ShouldBindJSON(&input); err != nil && !errors.Is(err, io.EOF) {
		h.fail(c, fmt.Errorf("invalid request body: %w", err))
		return
	}

	recommendation, err := h.recommender.Recommend(c.Request.Context(), input)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, models.RecommendResponse{
		Success:        true,
		Query:          recommendation.Query,
		Recommendation: recommendation.Answer,
	})
}

func (h *RecommendHandler) fail(c *gin.Context, err error) {
	logger.Error("Error processing recommendation", err, logger.WithContext(c))
	c.JSON(http.StatusInternalServerError, models.RecommendResponse{
		Success: false,
		Error:   recommendFailedMessage,
	})
}
