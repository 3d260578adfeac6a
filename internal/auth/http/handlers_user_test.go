package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/crm-obras-2n/crm-obras-backend/internal/auth"
)

func TestMe(t *testing.T) {
	gin.SetMode(gin.TestMode)

	anon := gin.New()
	Register(anon.Group(""))
	rr := httptest.NewRecorder()
	anon.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	dev := gin.New()
	dev.Use(auth.OptionalUser())
	Register(dev.Group(""))
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("X-User-Id", "ana")
	rr = httptest.NewRecorder()
	dev.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"ok":true,"uid":"ana","email":""}`, rr.Body.String())
}
