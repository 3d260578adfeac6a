package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger reports whether a backing service is reachable.
type Pinger func(ctx context.Context) error

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
	Version   string    `json:"version"`
	Firestore string    `json:"firestore"`
	DB        string    `json:"db"`
	Redis     string    `json:"redis"`
}

type HealthChecks struct {
	Firestore Pinger
	DB        Pinger
	Redis     Pinger
}

type HealthHandler struct {
	serviceName string
	version     string
	checks      HealthChecks
}

func NewHealthHandler(serviceName, version string, checks HealthChecks) *HealthHandler {
	return &HealthHandler{
		serviceName: serviceName,
		version:     version,
		checks:      checks,
	}
}

// HealthCheck always answers 200; a dependency that is down only degrades
// the reported status.
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	resp := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Service:   h.serviceName,
		Version:   h.version,
		Firestore: ping(c.Request.Context(), h.checks.Firestore),
		DB:        ping(c.Request.Context(), h.checks.DB),
		Redis:     ping(c.Request.Context(), h.checks.Redis),
	}
	for _, s := range []string{resp.Firestore, resp.DB, resp.Redis} {
		if s == "down" {
			resp.Status = "degraded"
		}
	}
	c.JSON(http.StatusOK, resp)
}

func ping(ctx context.Context, p Pinger) string {
	if p == nil {
		return "disabled"
	}
	pingCtx, cancel := context.WithTimeout(ctx, 1*time.Second)
	defer cancel()

	if err := p(pingCtx); err != nil {
		return "down"
	}
	return "up"
}

func (h *HealthHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", h.HealthCheck)
	r.GET("/healthz", h.HealthCheck)
}
