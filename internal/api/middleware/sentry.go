package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Conceptual-Machines/albumatlas/internal/logger"
	"github.com/Conceptual-Machines/albumatlas/internal/metrics"
	"github.com/Conceptual-Machines/albumatlas/internal/models"
	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	sentryFlushTimeout = 2 * time.Second
	unmatchedRoute     = "unmatched"

	internalErrorMessage = "Failed to generate recommendations. Please try again."
)

// RequestTracking adds request ID and logging to all requests
func RequestTracking(recorder *metrics.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := uuid.New().String()
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)

		start := time.Now()

		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()

		if statusCode < http.StatusBadRequest {
			logger.LogAPIRequest(c, duration, statusCode, nil)
		} else {
			fields := logger.Fields{
				"request_id":  requestID,
				"duration_ms": duration.Milliseconds(),
				"status_code": statusCode,
				"method":      c.Request.Method,
				"path":        c.Request.URL.Path,
				"client_ip":   c.ClientIP(),
			}
			if statusCode >= http.StatusInternalServerError {
				logger.Error("Request failed with server error", fmt.Errorf("status %d", statusCode), fields)
			} else {
				logger.Warn("Request failed with client error", fields)
			}
		}

		// Route templates keep label cardinality bounded
		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		recorder.RecordAPIRequest(c.Request.Context(), route, c.Request.Method, statusCode, duration)
	}
}

// SentryMiddleware returns the Sentry middleware with custom configuration
func SentryMiddleware() gin.HandlerFunc {
	return sentrygin.New(sentrygin.Options{
		Repanic:         true,
		WaitForDelivery: false,
		Timeout:         sentryFlushTimeout,
	})
}

// RecoverWithSentry recovers from panics, reports them to Sentry and answers
// with the generic failure payload.
func RecoverWithSentry() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if recovered := recover(); recovered != nil {
				if hub := sentrygin.GetHubFromContext(c); hub != nil {
					hub.WithScope(func(scope *sentry.Scope) {
						scope.SetRequest(c.Request)
						scope.SetContext("request", map[string]interface{}{
							"request_id": c.GetString("request_id"),
							"method":     c.Request.Method,
							"path":       c.Request.URL.Path,
							"client_ip":  c.ClientIP(),
						})
						hub.RecoverWithContext(c.Request.Context(), recovered)
					})
				}

				logger.Error("Panic recovered", fmt.Errorf("panic: %v", recovered), logger.Fields{
					"request_id": c.GetString("request_id"),
					"path":       c.Request.URL.Path,
				})

				c.AbortWithStatusJSON(http.StatusInternalServerError, models.RecommendResponse{
					Success: false,
					Error:   internalErrorMessage,
				})
			}
		}()
		c.Next()
	}
}
