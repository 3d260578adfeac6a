package bootstrap

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	httpapi "github.com/crm-obras-2n/crm-obras-backend/internal/api/http"
	"github.com/crm-obras-2n/crm-obras-backend/internal/api/http/middleware"
	"github.com/crm-obras-2n/crm-obras-backend/internal/auth"
	authhttp "github.com/crm-obras-2n/crm-obras-backend/internal/auth/http"
	authmw "github.com/crm-obras-2n/crm-obras-backend/internal/auth/middleware"
	"github.com/crm-obras-2n/crm-obras-backend/internal/clientes"
	"github.com/crm-obras-2n/crm-obras-backend/internal/panel"
	proyectoshttp "github.com/crm-obras-2n/crm-obras-backend/internal/proyectos/http"
	"github.com/crm-obras-2n/crm-obras-backend/internal/proyectos/service"
)

type RouterDeps struct {
	ServiceName string
	Version     string
	CORSOrigins []string
	RateRPS     float64
	RateBurst   int
	Log         *zap.Logger

	// TrustedProxies feed gin's ClientIP, which keys the rate limiter.
	TrustedProxies []string

	// Verifier checks Firebase ID tokens. Nil means AUTH_DISABLED.
	Verifier authmw.TokenVerifier

	Projects *service.ProjectService
	Clients  clientes.Repository
	Activity proyectoshttp.ActivityLister
	Importer proyectoshttp.Importer
	Health   httpapi.HealthChecks
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.New()
	if err := r.SetTrustedProxies(dep.TrustedProxies); err != nil {
		if dep.Log != nil {
			dep.Log.Warn("invalid trusted proxies, trusting none", zap.Strings("proxies", dep.TrustedProxies), zap.Error(err))
		}
		_ = r.SetTrustedProxies(nil)
	}
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware(dep.Log))
	r.Use(middleware.CORS(dep.CORSOrigins))

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.Health)
	healthHandler.RegisterRoutes(r)

	api := r.Group("/api/v1")
	if dep.RateRPS > 0 {
		api.Use(middleware.NewRateLimiter(dep.RateRPS, dep.RateBurst).Middleware())
	}
	if dep.Verifier != nil {
		api.Use(authmw.FirebaseAuthMiddleware(dep.Verifier))
	} else {
		api.Use(auth.OptionalUser())
	}

	authhttp.Register(api)

	proyectosHandler := proyectoshttp.New(dep.Projects, dep.Activity, dep.Importer, dep.Log)
	proyectosHandler.Register(api.Group("/proyectos"))

	panel.NewHandler(dep.Projects, dep.Log).Register(api.Group("/panel"))
	clientes.NewHandler(dep.Clients, dep.Log).Register(api.Group("/clientes"))

	return r
}

// RouterDepsFor fills RouterDeps from a wired App.
func RouterDepsFor(app *App, serviceName string) RouterDeps {
	cfg := app.Config
	dep := RouterDeps{
		ServiceName:    serviceName,
		Version:        cfg.App.Version,
		CORSOrigins:    cfg.Server.CORSOrigins,
		TrustedProxies: cfg.Server.TrustedProxies,
		RateRPS:        cfg.Server.RateLimitRPS,
		RateBurst:      cfg.Server.RateLimitBurst,
		Log:            app.Log,
		Projects:       app.Projects,
		Clients:        app.Clients,
		Importer:       app.Importer,
		Health:         app.HealthChecks(),
	}
	if app.Activity != nil {
		dep.Activity = app.Activity
	}
	if app.Firebase != nil && !cfg.Firebase.AuthDisabled {
		dep.Verifier = app.Firebase.Auth
	}
	return dep
}
