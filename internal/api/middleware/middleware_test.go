package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRecoverWithSentry(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestTracking(nil), RecoverWithSentry(), SentryMiddleware())
	router.GET("/boom", func(*gin.Context) {
		panic("secret internal state")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"success":false,"error":"Failed to generate recommendations. Please try again."}`, w.Body.String())
	assert.NotContains(t, w.Body.String(), "secret")
}

func TestRequestTracking_SetsRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestTracking(nil))
	router.GET("/ping", func(c *gin.Context) {
		assert.NotEmpty(t, c.GetString("request_id"))
		c.String(http.StatusOK, "pong")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, w.Header().Get("X-Request-ID"), 36)
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name       string
		allowed    []string
		method     string
		origin     string
		wantStatus int
		wantOrigin string
	}{
		{name: "wildcard", allowed: []string{"*"}, method: http.MethodGet, origin: "https://a.example", wantStatus: http.StatusOK, wantOrigin: "*"},
		{name: "empty list allows all", allowed: nil, method: http.MethodGet, origin: "https://a.example", wantStatus: http.StatusOK, wantOrigin: "*"},
		{name: "listed origin", allowed: []string{"https://a.example"}, method: http.MethodGet, origin: "https://a.example", wantStatus: http.StatusOK, wantOrigin: "https://a.example"},
		{name: "unlisted origin", allowed: []string{"https://a.example"}, method: http.MethodGet, origin: "https://b.example", wantStatus: http.StatusForbidden, wantOrigin: ""},
		{name: "no origin header", allowed: []string{"https://a.example"}, method: http.MethodGet, origin: "", wantStatus: http.StatusOK, wantOrigin: ""},
		{name: "listed preflight", allowed: []string{"https://a.example"}, method: http.MethodOptions, origin: "https://a.example", wantStatus: http.StatusNoContent, wantOrigin: "https://a.example"},
		{name: "unlisted preflight", allowed: []string{"https://a.example"}, method: http.MethodOptions, origin: "https://b.example", wantStatus: http.StatusForbidden, wantOrigin: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gin.SetMode(gin.TestMode)
			router := gin.New()
			router.Use(CORS(tt.allowed))
			router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

			req := httptest.NewRequest(tt.method, "/", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantOrigin, w.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}
