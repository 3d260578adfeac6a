package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthCheck(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		checks HealthChecks
		status string
		db     string
		redis  string
	}{
		{name: "nothing configured", status: "healthy", db: "disabled", redis: "disabled"},
		{
			name: "all up",
			checks: HealthChecks{
				DB:    func(context.Context) error { return nil },
				Redis: func(context.Context) error { return nil },
			},
			status: "healthy", db: "up", redis: "up",
		},
		{
			name: "redis down",
			checks: HealthChecks{
				DB:    func(context.Context) error { return nil },
				Redis: func(context.Context) error { return errors.New("refused") },
			},
			status: "degraded", db: "up", redis: "down",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			NewHealthHandler("crm-obras-backend", "1.0.0", tt.checks).RegisterRoutes(r)

			for _, path := range []string{"/health", "/healthz"} {
				rr := httptest.NewRecorder()
				r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
				require.Equal(t, http.StatusOK, rr.Code)

				var resp HealthResponse
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
				assert.Equal(t, tt.status, resp.Status)
				assert.Equal(t, tt.db, resp.DB)
				assert.Equal(t, tt.redis, resp.Redis)
				assert.Equal(t, "disabled", resp.Firestore)
				assert.Equal(t, "crm-obras-backend", resp.Service)
			}
		})
	}
}
