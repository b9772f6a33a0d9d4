package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newAuthedRouter(apiKey string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(APIKeyAuth(apiKey))
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	return r
}

func TestAPIKeyAuth_MissingKey(t *testing.T) {
	r := newAuthedRouter("secret")

	req := httptest.NewRequest("GET", "/ping", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "缺少 X-API-KEY")
}

func TestAPIKeyAuth_InvalidKey(t *testing.T) {
	r := newAuthedRouter("secret")

	req := httptest.NewRequest("GET", "/ping", nil)
	req.Header.Set(HeaderAPIKey, "wrong")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "无效的 X-API-KEY")
}

func TestAPIKeyAuth_ValidKey(t *testing.T) {
	r := newAuthedRouter("secret")

	req := httptest.NewRequest("GET", "/ping", nil)
	req.Header.Set(HeaderAPIKey, "secret")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
