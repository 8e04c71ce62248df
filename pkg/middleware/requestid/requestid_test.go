package requestid

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(seen *string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())
	r.GET("/", func(c *gin.Context) {
		*seen = Value(c)
		c.Status(http.StatusNoContent)
	})
	return r
}

func TestMiddlewareKeepsIncomingID(t *testing.T) {
	var seen string
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(Header, "req-123")

	newRouter(&seen).ServeHTTP(w, req)

	assert.Equal(t, "req-123", seen)
	assert.Equal(t, "req-123", w.Header().Get(Header))
}

func TestMiddlewareReplacesOversizedID(t *testing.T) {
	var seen string
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(Header, strings.Repeat("x", 200))

	newRouter(&seen).ServeHTTP(w, req)

	_, err := uuid.Parse(seen)
	require.NoError(t, err)
	assert.Equal(t, seen, w.Header().Get(Header))
}
