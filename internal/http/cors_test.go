package http

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOrigins(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		origins  []string
		rejected []string
	}{
		{name: "empty", raw: ""},
		{name: "only separators", raw: " , ,"},
		{
			name:    "comma separated with whitespace",
			raw:     " https://app.example.com , http://localhost:3000 ",
			origins: []string{"https://app.example.com", "http://localhost:3000"},
		},
		{
			name:    "trailing slash is dropped",
			raw:     "https://app.example.com/",
			origins: []string{"https://app.example.com"},
		},
		{name: "wildcard", raw: "*", origins: []string{"*"}},
		{
			name:     "invalid entries are rejected",
			raw:      "https://ok.example.com,ftp://files.example.com,app.example.com,https://x.example.com/path",
			origins:  []string{"https://ok.example.com"},
			rejected: []string{"ftp://files.example.com", "app.example.com", "https://x.example.com/path"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			origins, rejected := parseOrigins(tt.raw)
			assert.Equal(t, tt.origins, origins)
			assert.Equal(t, tt.rejected, rejected)
		})
	}
}

func TestCreateCORSMiddleware(t *testing.T) {
	logger := slog.Default()

	t.Run("disabled", func(t *testing.T) {
		assert.Nil(t, createCORSMiddleware(false, "https://app.example.com", logger))
	})

	t.Run("enabled without origins", func(t *testing.T) {
		assert.Nil(t, createCORSMiddleware(true, "", logger))
	})

	t.Run("enabled with only invalid origins", func(t *testing.T) {
		assert.Nil(t, createCORSMiddleware(true, "not-an-origin", logger))
	})

	t.Run("enabled with origins", func(t *testing.T) {
		assert.NotNil(t, createCORSMiddleware(true, "https://app.example.com", logger))
	})
}

func newCORSRouter(t *testing.T, allowOrigins string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	middleware := createCORSMiddleware(true, allowOrigins, slog.Default())
	require.NotNil(t, middleware)

	router := gin.New()
	router.Use(middleware)
	router.POST("/v1/secrets/:id/reveal", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"secret": "s3cr3t"})
	})
	return router
}

func TestCORS_AllowedOrigin(t *testing.T) {
	router := newCORSRouter(t, "https://app.example.com")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/secrets/abc/reveal", nil)
	req.Header.Set("Origin", "https://app.example.com")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORS_DisallowedOrigin(t *testing.T) {
	router := newCORSRouter(t, "https://app.example.com")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/secrets/abc/reveal", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_Preflight(t *testing.T) {
	router := newCORSRouter(t, "https://app.example.com")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/v1/secrets/abc/reveal", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
}
