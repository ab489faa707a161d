package middleware

import (
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS allows cross-origin calls from the configured origins.
// An empty list or "*" allows any origin. Other origins get 403.
func CORS(allowedOrigins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "HX-Request", "HX-Target", "HX-Current-URL"},
		ExposeHeaders: []string{"X-Request-ID"},
		MaxAge:        24 * time.Hour,
	}

	if len(allowedOrigins) == 0 || slices.Contains(allowedOrigins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		origins := slices.Clone(allowedOrigins)
		cfg.AllowOriginFunc = func(origin string) bool {
			return slices.Contains(origins, origin)
		}
	}

	return cors.New(cfg)
}
