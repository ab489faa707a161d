package handlers

import (
	"net/http"

	"github.com/Conceptual-Machines/albumatlas/internal/config"
	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	cfg *config.Config
}

func NewHealthHandler(cfg *config.Config) *HealthHandler {
	return &HealthHandler{cfg: cfg}
}

// HealthCheck returns the health status of the API and the configured backends
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":              "healthy",
		"vector_store":        h.cfg.VectorStore,
		"embedding_provider":  h.cfg.EmbeddingProvider,
		"generation_provider": h.cfg.GenerationProvider,
	})
}
