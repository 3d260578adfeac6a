package bootstrap

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/crm-obras-2n/crm-obras-backend/internal/clientes"
	"github.com/crm-obras-2n/crm-obras-backend/internal/excel"
	"github.com/crm-obras-2n/crm-obras-backend/internal/proyectos/repository"
	"github.com/crm-obras-2n/crm-obras-backend/internal/proyectos/service"
)

func testRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := service.NewProjectService(repository.NewMemoryRepository(), service.Options{})
	clients := clientes.NewMemoryRepo()
	return BuildRouter(RouterDeps{
		ServiceName: "crm-obras-backend",
		Version:     "test",
		CORSOrigins: []string{"http://localhost:5173"},
		RateRPS:     100,
		RateBurst:   100,
		Log:         zap.NewNop(),
		Projects:    svc,
		Clients:     clients,
		Importer:    excel.NewImporter(svc, clients, nil),
	})
}

func TestBuildRouter_Routes(t *testing.T) {
	r := testRouter()

	for _, path := range []string{
		"/health",
		"/healthz",
		"/api/v1/me",
		"/api/v1/proyectos",
		"/api/v1/panel",
		"/api/v1/panel/acciones",
		"/api/v1/panel/dashboard",
		"/api/v1/panel/kanban",
		"/api/v1/clientes",
		"/api/v1/proyectos/export/importantes",
	} {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rr.Code, path)
		assert.NotEmpty(t, rr.Header().Get("X-Request-Id"), path)
	}
}

func TestBuildRouter_DevUserIsActor(t *testing.T) {
	r := testRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.Header.Set("X-User-Id", "ana")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"uid":"ana"`)
}

func TestNewLogger(t *testing.T) {
	log, err := NewLogger("production", "debug")
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zap.DebugLevel))

	_, err = NewLogger("development", "loud")
	assert.Error(t, err)
}

func TestBuildRouter_RateLimitIgnoresForwardedFor(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := service.NewProjectService(repository.NewMemoryRepository(), service.Options{})
	build := func(proxies []string) *gin.Engine {
		return BuildRouter(RouterDeps{
			RateRPS:        0.001,
			RateBurst:      1,
			Log:            zap.NewNop(),
			TrustedProxies: proxies,
			Projects:       svc,
			Clients:        clientes.NewMemoryRepo(),
		})
	}
	get := func(r *gin.Engine, forwarded string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/proyectos", nil)
		req.RemoteAddr = "192.0.2.1:4321"
		req.Header.Set("X-Forwarded-For", forwarded)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		return rr.Code
	}

	r := build(nil)
	assert.Equal(t, http.StatusOK, get(r, "203.0.113.1"))
	assert.Equal(t, http.StatusTooManyRequests, get(r, "203.0.113.2"))

	r = build([]string{"192.0.2.1"})
	assert.Equal(t, http.StatusOK, get(r, "203.0.113.1"))
	assert.Equal(t, http.StatusOK, get(r, "203.0.113.2"))

	r = build([]string{"not-an-ip"})
	assert.Equal(t, http.StatusOK, get(r, "203.0.113.1"))
	assert.Equal(t, http.StatusTooManyRequests, get(r, "203.0.113.2"))
}
