package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taleteller/internal/interfaces/http/dto"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestCorrelationKeepsValidRequestID(t *testing.T) {
	r := gin.New()
	r.Use(Correlation())
	var seen string
	r.GET("/x", func(c *gin.Context) { seen = c.GetString(dto.RequestIDKey) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(RequestIDHeader, "abc-123_x.y")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "abc-123_x.y", seen)
	assert.Equal(t, "abc-123_x.y", w.Header().Get(RequestIDHeader))
}

func TestCorrelationReplacesInvalidRequestID(t *testing.T) {
	r := gin.New()
	r.Use(Correlation())
	r.GET("/x", func(c *gin.Context) {})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(RequestIDHeader, "bad id\nwith newline")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	got := w.Header().Get(RequestIDHeader)
	assert.NotEmpty(t, got)
	assert.NotEqual(t, "bad id\nwith newline", got)
}

func TestValidRequestID(t *testing.T) {
	assert.True(t, validRequestID("req-1"))
	assert.False(t, validRequestID(""))
	assert.False(t, validRequestID("a b"))
	long := make([]byte, maxRequestIDLen+1)
	for i := range long {
		long[i] = 'a'
	}
	assert.False(t, validRequestID(string(long)))
}

func TestRecoveryReturnsGenericError(t *testing.T) {
	r := gin.New()
	r.Use(Correlation(), Recovery())
	r.GET("/boom", func(c *gin.Context) { panic("secret detail") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"error":"internal server error"`)
	assert.NotContains(t, w.Body.String(), "secret")
}

func TestBodyLimit(t *testing.T) {
	r := gin.New()
	r.Use(BodyLimit(8))
	r.POST("/x", func(c *gin.Context) {
		var body map[string]any
		if err := c.ShouldBindJSON(&body); err != nil {
			dto.BadRequest(c, "invalid request body")
			return
		}
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(`{"text":"far too long"}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCORSWildcardHasNoCredentials(t *testing.T) {
	r := gin.New()
	r.Use(CORS(CORSConfig{AllowedOrigins: []string{"*"}}))
	r.POST("/x", func(c *gin.Context) {})

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestMetricsSkipsListedPaths(t *testing.T) {
	r := gin.New()
	r.Use(Metrics("/health"))
	hit := false
	r.GET("/health", func(c *gin.Context) { hit = true })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.True(t, hit)
	assert.Equal(t, http.StatusOK, w.Code)
}
