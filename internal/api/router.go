package api

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/Conceptual-Machines/albumatlas/internal/api/handlers"
	apimiddleware "github.com/Conceptual-Machines/albumatlas/internal/api/middleware"
	"github.com/Conceptual-Machines/albumatlas/internal/config"
	"github.com/Conceptual-Machines/albumatlas/internal/metrics"
	webhandlers "github.com/Conceptual-Machines/albumatlas/internal/web/handlers"
	"github.com/Conceptual-Machines/albumatlas/pkg/embedded"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupRouter(cfg *config.Config, recommender handlers.Recommender, recorder *metrics.Recorder, version string) *gin.Engine {
	router := gin.New()

	// Request tracking, structured logging and request metrics.
	// Outermost so recovered panics are still counted as 5xx.
	router.Use(apimiddleware.RequestTracking(recorder))

	// Recovery middleware
	router.Use(apimiddleware.RecoverWithSentry())

	// Sentry middleware for error tracking
	router.Use(apimiddleware.SentryMiddleware())

	router.Use(apimiddleware.CORS(cfg.CORSOrigins))

	// Bundled assets (style.css)
	router.StaticFS("/static", http.FS(embedded.Static()))

	// Health check
	healthHandler := handlers.NewHealthHandler(cfg)
	router.GET("/health", healthHandler.HealthCheck)

	// Metrics endpoints
	metricsHandler := handlers.NewMetricsHandler(version, cfg)
	router.GET("/api/metrics", metricsHandler.GetMetrics)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Web pages
	webHandler := webhandlers.NewWebHandler(recommender, cfg.StaticDir)
	router.GET("/", webHandler.Home)
	router.POST("/htmx/recommend", webHandler.Recommend)

	// JSON API
	recommendHandler := handlers.NewRecommendHandler(recommender)
	router.POST("/api/recommend", recommendHandler.Recommend)

	// Files dropped into STATIC_DIR are served from the site root
	router.NoRoute(staticDirFallback(cfg.StaticDir))

	return router
}

func staticDirFallback(staticDir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if staticDir != "" && c.Request.Method == http.MethodGet {
			name := filepath.FromSlash(strings.TrimPrefix(c.Request.URL.Path, "/"))
			if name != "" && filepath.IsLocal(name) {
				path := filepath.Join(staticDir, name)
				if info, err := os.Stat(path); err == nil && !info.IsDir() {
					c.File(path)
					return
				}
			}
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	}
}
