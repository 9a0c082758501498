package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestGetVapidPublicKey_ReturnsTheInjectedKey(t *testing.T) {
	req := require.New(t)
	gin.SetMode(gin.TestMode)

	h := NewPushHandler("BPubKey123")
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/vapid-public-key", nil)

	h.GetVapidPublicKey(c)

	req.Equal(http.StatusOK, rec.Code)
	req.JSONEq(`{"publicKey":"BPubKey123"}`, rec.Body.String())
}
