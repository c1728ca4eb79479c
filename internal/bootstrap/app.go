package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"greencode-backend/internal/account"
	"greencode-backend/internal/analyses"
	"greencode-backend/internal/analyses/engine"
	"greencode-backend/internal/shared/cache"
	rediscache "greencode-backend/internal/shared/cache/redis"
	"greencode-backend/internal/shared/config"
	"greencode-backend/internal/shared/events"
	natsevents "greencode-backend/internal/shared/events/nats"
	"greencode-backend/internal/shared/health"
	"greencode-backend/internal/shared/metrics"
	"greencode-backend/internal/shared/server"
	"greencode-backend/internal/shared/server/middleware"
	"greencode-backend/internal/shared/storage/db"
	"greencode-backend/internal/shared/storage/object"
	localstore "greencode-backend/internal/shared/storage/object/local"
	s3store "greencode-backend/internal/shared/storage/object/s3"
	"greencode-backend/internal/shared/telemetry"
	"greencode-backend/internal/usage"
	"greencode-backend/internal/users"
)

// App holds shared dependencies and the HTTP router built from them.
type App struct {
	Config          config.Config
	Router          *gin.Engine
	DB              *sql.DB
	Store           object.ObjectStore
	Cache           cache.Cache
	Events          events.Publisher
	Registry        *prometheus.Registry
	Metrics         *metrics.Metrics
	Health          *health.Service
	Analyzer        *engine.Analyzer
	AnalysesRepo    analyses.Repo
	UsersRepo       users.Repo
	UsageService    *usage.Service
	UsersService    *users.Service
	AnalysesService *analyses.Service
	AnalysisHandler *analyses.Handler
	UsageHandler    *usage.Handler
	UsersHandler    *users.Handler
	AccountHandler  *account.Handler
}

// Build prepares shared dependencies and wires routes. Optional backends
// (Postgres in dev, Redis, NATS) degrade to in-process fallbacks when unreachable.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	telemetry.SetLevel(cfg.LogLevel)
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	analyzer, err := buildAnalyzer(cfg)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	app := &App{
		Config:   cfg,
		DB:       sqlDB,
		Store:    store,
		Cache:    buildCache(cfg),
		Events:   buildEvents(cfg),
		Registry: registry,
		Metrics:  metrics.New(registry),
		Health:   health.NewService(),
		Analyzer: analyzer,
	}

	if err := buildServices(app); err != nil {
		return nil, err
	}
	registerHealthChecks(app)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:          app.Config,
		Registry:        app.Registry,
		Metrics:         app.Metrics,
		Health:          app.Health,
		RateLimiter:     middleware.NewRateLimiter(nil),
		AnalysisHandler: app.AnalysisHandler,
		UsageHandler:    app.UsageHandler,
		UserHandler:     app.UsersHandler,
		AccountHandler:  app.AccountHandler,
	})

	return app, nil
}

// Close releases connections held by the app.
func (a *App) Close() error {
	var errs []error
	if a.Events != nil {
		errs = append(errs, a.Events.Close())
	}
	if a.Cache != nil {
		errs = append(errs, a.Cache.Close())
	}
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}
	return errors.Join(errs...)
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if cfg.IsDev() {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if cfg.IsDev() {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}

	if cfg.IsDev() {
		if err := db.RunMigrations(ctx, sqlDB); err != nil {
			sqlDB.Close()
			log.Printf("bootstrap: migrations failed; using in-memory repositories: %v", err)
			return nil, nil
		}
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildAnalyzer(cfg config.Config) (*engine.Analyzer, error) {
	var (
		lib *engine.Library
		err error
	)
	if path := strings.TrimSpace(cfg.PatternLibraryPath); path != "" {
		lib, err = engine.LoadLibraryFile(path)
	} else {
		lib, err = engine.DefaultLibrary()
	}
	if err != nil {
		return nil, fmt.Errorf("load pattern library: %w", err)
	}
	return engine.NewAnalyzer(lib, engine.Config{NestedLoopProximity: cfg.NestedLoopProximity})
}

func buildCache(cfg config.Config) cache.Cache {
	if strings.TrimSpace(cfg.RedisURL) == "" {
		return nil
	}
	c, err := rediscache.NewRedisCache(cfg.RedisURL, cfg.ResultCacheTTL)
	if err != nil {
		log.Printf("bootstrap: redis unavailable; result cache disabled: %v", err)
		return nil
	}
	return c
}

func buildEvents(cfg config.Config) events.Publisher {
	if strings.TrimSpace(cfg.NATSURL) == "" {
		return nil
	}
	p, err := natsevents.NewNATSPublisher(cfg.NATSURL)
	if err != nil {
		log.Printf("bootstrap: nats unavailable; completion events disabled: %v", err)
		return nil
	}
	return p
}

func buildServices(app *App) error {
	var analysisRepo analyses.Repo
	var userRepo users.Repo
	var usageSvc *usage.Service

	if app.DB != nil {
		analysisRepo = &analyses.PGRepo{DB: app.DB}
		userRepo = &users.PGRepo{DB: app.DB}
		usageSvc = usage.NewPostgresService(usage.NewPGStore(app.DB))
	} else {
		analysisRepo = analyses.NewMemoryRepo()
		userRepo = users.NewMemoryRepo()
		usageSvc = usage.NewService()
	}

	userSvc := users.NewService(userRepo)
	analysisSvc := &analyses.Service{
		Analyzer: app.Analyzer,
		Repo:     analysisRepo,
		Usage:    usageSvc,
		Users:    userSvc,
		Store:    app.Store,
		Cache:    app.Cache,
		Events:   app.Events,
		Subject:  app.Config.NATSSubject,
		Metrics:  app.Metrics,
	}

	app.AnalysesRepo = analysisRepo
	app.UsersRepo = userRepo
	app.UsageService = usageSvc
	app.UsersService = userSvc
	app.AnalysesService = analysisSvc
	app.AnalysisHandler = analyses.NewHandler(analysisSvc)
	app.UsageHandler = usage.NewHandler(usageSvc)
	app.UsersHandler = users.NewHandler(userSvc)
	app.AccountHandler = account.NewHandler(account.NewService(analysisRepo, userSvc))

	if app.AnalysisHandler == nil || app.UsageHandler == nil || app.UsersHandler == nil {
		return errors.New("failed to initialize handlers")
	}
	return nil
}

type pinger interface {
	Ping(ctx context.Context) error
}

func registerHealthChecks(app *App) {
	if app.DB != nil {
		app.Health.Register("database", app.DB.PingContext)
	}
	if p, ok := app.Cache.(pinger); ok {
		app.Health.Register("cache", p.Ping)
	}
	if p, ok := app.Events.(pinger); ok {
		app.Health.Register("events", p.Ping)
	}
}
