package api

import (
	"github.com/ayo6706/txledger/internal/api/handler"
	"github.com/ayo6706/txledger/internal/api/middleware"
	"github.com/ayo6706/txledger/internal/api/spec"
	"github.com/ayo6706/txledger/internal/config"
	"github.com/ayo6706/txledger/internal/idempotency"
	"github.com/ayo6706/txledger/internal/service"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
)

type Router struct {
	cfg       *config.Config
	logger    *zap.Logger
	batchSvc  *service.BatchService
	idemStore *idempotency.Store
	redis     redis.Cmdable
	auth      *middleware.JWTAuth
}

// NewRouter wires the HTTP surface. idemStore, redis and auth are optional.
func NewRouter(cfg *config.Config, logger *zap.Logger, batchSvc *service.BatchService, idemStore *idempotency.Store, redis redis.Cmdable, auth *middleware.JWTAuth) *Router {
	if logger == nil {
		logger = zap.L()
	}
	return &Router{
		cfg:       cfg,
		logger:    logger,
		batchSvc:  batchSvc,
		idemStore: idemStore,
		redis:     redis,
		auth:      auth,
	}
}

func (api *Router) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.TraceMiddleware)
	r.Use(middleware.RecoverMiddleware(api.logger))
	r.Use(middleware.LoggingMiddleware(api.logger))
	r.Use(middleware.MetricsMiddleware)

	healthHandler := handler.NewHealthHandler(api.redis)
	replayHandler := handler.NewReplayHandler(api.batchSvc, api.logger, api.cfg.MaxUploadBytes, api.cfg.OutputPrecision)

	// Public Routes
	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/openapi.yaml", spec.OpenAPIHandler())
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/openapi.yaml")))

	// Replay Routes
	r.Group(func(r chi.Router) {
		if api.cfg.MaxUploadBytes > 0 {
			r.Use(chiMiddleware.RequestSize(api.cfg.MaxUploadBytes))
		}
		if api.auth != nil {
			r.Use(api.auth.Middleware)
		}
		if api.cfg.RateLimitRPS > 0 {
			r.Use(middleware.RateLimiter(api.cfg.RateLimitRPS))
		}
		if api.idemStore != nil {
			r.Use(middleware.IdempotencyMiddleware(api.idemStore, api.logger))
		}

		r.Post("/v1/replays", replayHandler.CreateReplay)
	})

	return r
}
