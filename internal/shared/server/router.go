package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"greencode-backend/internal/account"
	"greencode-backend/internal/analyses"
	"greencode-backend/internal/shared/config"
	"greencode-backend/internal/shared/health"
	"greencode-backend/internal/shared/metrics"
	"greencode-backend/internal/shared/server/middleware"
	"greencode-backend/internal/shared/server/respond"
	"greencode-backend/internal/usage"
	"greencode-backend/internal/users"
)

const (
	rateGroupAnalyze = "ANALYZE"
	rateGroupDefault = "DEFAULT"
)

// RouterDeps carries the handlers and shared services the router mounts.
type RouterDeps struct {
	Config          config.Config
	Registry        *prometheus.Registry
	Metrics         *metrics.Metrics
	Health          *health.Service
	RateLimiter     *middleware.RateLimiter
	AnalysisHandler *analyses.Handler
	UsageHandler    *usage.Handler
	UserHandler     *users.Handler
	AccountHandler  *account.Handler
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.IsDev() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		deps.Metrics.Middleware(),
	)

	if deps.Registry != nil {
		r.GET("/metrics", metrics.Handler(deps.Registry))
	}

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		report := deps.Health.Status(c.Request.Context())
		status := http.StatusOK
		if !report.OK {
			status = http.StatusServiceUnavailable
		}
		respond.JSON(c, status, report)
	})

	authed := api.Group("")
	authed.Use(
		middleware.Auth(),
		middleware.RateLimit(rateLimitConfig(deps)),
	)
	registerMeRoutes(authed)
	if deps.AnalysisHandler != nil {
		deps.AnalysisHandler.RegisterRoutes(authed)
	}
	if deps.UsageHandler != nil {
		deps.UsageHandler.RegisterRoutes(authed)
	}
	if deps.UserHandler != nil {
		deps.UserHandler.RegisterRoutes(authed)
	}
	if deps.AccountHandler != nil {
		deps.AccountHandler.RegisterRoutes(authed)
	}
	if deps.Config.IsDev() && deps.UsageHandler != nil {
		deps.UsageHandler.RegisterDevRoutes(authed.Group("/dev"))
	}

	return r
}

func rateLimitConfig(deps RouterDeps) middleware.RateLimitConfig {
	rps := deps.Config.RateLimitRPS
	burst := deps.Config.RateLimitBurst
	return middleware.RateLimitConfig{
		DefaultGroup: rateGroupDefault,
		GroupFor: func(c *gin.Context) string {
			if c.Request.Method == http.MethodPost && c.FullPath() == "/api/v1/analyze" {
				return rateGroupAnalyze
			}
			return rateGroupDefault
		},
		Limiter: deps.RateLimiter,
		Rules: map[string]middleware.RateLimitRule{
			rateGroupAnalyze: {Rate: rps, Burst: burst},
			rateGroupDefault: {Rate: rps * 5, Burst: burst * 3},
		},
		OnLimited: deps.Metrics.RateLimited,
	}
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
