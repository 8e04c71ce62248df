package handler

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/elan-api/internal/middleware"
	"github.com/noah-isme/elan-api/internal/models"
)

type responseEnvelope struct {
	Data       json.RawMessage        `json:"data"`
	Error      map[string]interface{} `json:"error"`
	Pagination *models.Pagination     `json:"pagination"`
	Meta       map[string]interface{} `json:"meta"`
}

func newTestContext(method, target, body string, actor *models.Actor) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	c.Request = httptest.NewRequest(method, target, reader)
	if body != "" {
		c.Request.Header.Set("Content-Type", "application/json")
	}
	if actor != nil {
		c.Set(middleware.ContextActorKey, *actor)
		c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: actor.ID, Email: actor.Email})
	}
	return c, rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) responseEnvelope {
	t.Helper()
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope
}
