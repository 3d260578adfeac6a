package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/crm-obras-2n/crm-obras-backend/config"
	"github.com/crm-obras-2n/crm-obras-backend/internal/activity"
	httpapi "github.com/crm-obras-2n/crm-obras-backend/internal/api/http"
	"github.com/crm-obras-2n/crm-obras-backend/internal/auth"
	"github.com/crm-obras-2n/crm-obras-backend/internal/cache"
	"github.com/crm-obras-2n/crm-obras-backend/internal/clientes"
	"github.com/crm-obras-2n/crm-obras-backend/internal/excel"
	"github.com/crm-obras-2n/crm-obras-backend/internal/proyectos/repository"
	"github.com/crm-obras-2n/crm-obras-backend/internal/proyectos/service"
)

// App is the wired backend shared by the API server and crmctl.
type App struct {
	Config    *config.Config
	Log       *zap.Logger
	Firebase  *auth.Clients
	DB        *pgxpool.Pool
	Redis     *redis.Client
	Projects  *service.ProjectService
	Clients   clientes.Repository
	Activity  *activity.Store
	Importer  *excel.Importer
	Publisher *cache.Publisher
}

// NewApp opens every configured backing service. Without Firebase
// credentials outside production the repositories live in memory.
// Postgres and Redis are optional; failing to reach a configured one is an error.
func NewApp(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	app := &App{Config: cfg, Log: log}
	loc := cfg.Location()

	var repo repository.Repository
	switch {
	case cfg.Firebase.CredentialsPath != "":
		fb, err := auth.InitializeFirebase(ctx, &cfg.Firebase)
		if err != nil {
			return nil, err
		}
		app.Firebase = fb
		repo = repository.NewFirestoreRepository(fb.Firestore, cfg.Firebase.ProjectCollection, loc)
		app.Clients = clientes.NewFirestoreRepo(fb.Firestore, cfg.Firebase.ClientCollection)
	case cfg.App.Environment == "production":
		return nil, errors.New("FIREBASE_CREDENTIALS_PATH is required in production")
	default:
		log.Warn("no Firebase credentials, using in-memory repositories")
		repo = repository.NewMemoryRepository()
		app.Clients = clientes.NewMemoryRepo()
	}

	opts := service.Options{Logger: log, Location: loc}

	if cfg.Database.DSN != "" {
		pool, err := OpenDB(ctx, DBOptions{DSN: cfg.Database.DSN, MaxConns: int32(cfg.Database.MaxConns)})
		if err != nil {
			app.Close()
			return nil, err
		}
		app.DB = pool
		app.Activity = activity.NewStore(pool)
		if err := app.Activity.EnsureSchema(ctx); err != nil {
			app.Close()
			return nil, fmt.Errorf("activity schema: %w", err)
		}
		opts.Activity = app.Activity
	}

	rdb, err := OpenRedis(ctx, cfg.Redis)
	if err != nil {
		app.Close()
		return nil, err
	}
	if rdb != nil {
		app.Redis = rdb
		app.Publisher = cache.NewPublisher(rdb)
		opts.Cache = cache.NewProjectCache(rdb, cfg.Redis.CacheTTL)
		opts.Events = app.Publisher
		opts.EventsChannel = cache.EventsChannel
	}

	app.Projects = service.NewProjectService(repo, opts)
	app.Importer = excel.NewImporter(app.Projects, app.Clients, log)

	log.Info("backend wired",
		zap.Bool("firestore", app.Firebase != nil),
		zap.Bool("activity_log", app.DB != nil),
		zap.Bool("redis", app.Redis != nil),
		zap.String("timezone", loc.String()),
	)
	return app, nil
}

// HealthChecks pings whatever is configured.
func (a *App) HealthChecks() httpapi.HealthChecks {
	var hc httpapi.HealthChecks
	if a.Firebase != nil {
		col := a.Config.Firebase.ProjectCollection
		hc.Firestore = func(ctx context.Context) error {
			_, err := a.Firebase.Firestore.Collection(col).Limit(1).Documents(ctx).GetAll()
			return err
		}
	}
	if a.DB != nil {
		hc.DB = a.DB.Ping
	}
	if a.Redis != nil {
		hc.Redis = func(ctx context.Context) error { return a.Redis.Ping(ctx).Err() }
	}
	return hc
}

func (a *App) Close() {
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.Log.Warn("redis close", zap.Error(err))
		}
	}
	if a.DB != nil {
		a.DB.Close()
	}
	if err := a.Firebase.Close(); err != nil {
		a.Log.Warn("firestore close", zap.Error(err))
	}
}
