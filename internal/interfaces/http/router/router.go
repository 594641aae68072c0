package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/turtacn/gridrisk/internal/application/dto"
	"github.com/turtacn/gridrisk/internal/config"
	"github.com/turtacn/gridrisk/internal/infrastructure/monitoring"
	"github.com/turtacn/gridrisk/internal/infrastructure/ratelimit"
	"github.com/turtacn/gridrisk/internal/interfaces/http/handlers"
	"github.com/turtacn/gridrisk/internal/interfaces/http/middleware"
	"github.com/turtacn/gridrisk/pkg/constants"
	"github.com/turtacn/gridrisk/pkg/errors"
	"github.com/turtacn/gridrisk/pkg/logger"
)

// Router HTTP 路由器
type Router struct {
	engine         *gin.Engine
	config         *config.Config
	logger         logger.Logger
	metrics        *monitoring.Metrics
	gatherer       prometheus.Gatherer
	healthHandler  *handlers.HealthHandler
	scoringHandler *handlers.ScoringHandler
	limiter        ratelimit.Limiter
	server         *http.Server
}

// NewRouter 创建路由器
func NewRouter(
	cfg *config.Config,
	log logger.Logger,
	metrics *monitoring.Metrics,
	gatherer prometheus.Gatherer,
	healthHandler *handlers.HealthHandler,
	scoringHandler *handlers.ScoringHandler,
	limiter ratelimit.Limiter,
) *Router {
	// 设置 Gin 模式
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := &Router{
		engine:         gin.New(),
		config:         cfg,
		logger:         log,
		metrics:        metrics,
		gatherer:       gatherer,
		healthHandler:  healthHandler,
		scoringHandler: scoringHandler,
		limiter:        limiter,
	}
	r.setupRoutes()
	r.server = &http.Server{
		Addr:           fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:        r.engine,
		ReadTimeout:    time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout:   time.Duration(cfg.Server.WriteTimeout) * time.Second,
		MaxHeaderBytes: 1 << 20, // 1MB
	}
	return r
}

// setupRoutes 设置路由
func (r *Router) setupRoutes() {
	// 全局中间件
	r.engine.Use(
		middleware.Recovery(r.logger),
		middleware.RequestID(),
		middleware.Observability(r.metrics),
		middleware.Logging(r.logger),
	)

	// CORS 配置
	r.engine.Use(cors.New(cors.Config{
		AllowOrigins:  r.config.Server.CORSOrigins,
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", constants.HeaderRequestID, "traceparent"},
		ExposeHeaders: []string{constants.HeaderRequestID, constants.HeaderTraceID, "Retry-After"},
		MaxAge:        12 * time.Hour,
	}))

	// 健康检查
	r.engine.GET("/health", r.healthHandler.ReadinessCheck)
	r.engine.GET("/health/live", r.healthHandler.LivenessCheck)
	r.engine.GET("/health/ready", r.healthHandler.ReadinessCheck)

	// Prometheus metrics
	if r.gatherer != nil {
		r.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})))
	}

	// Pprof 性能分析（仅在非生产环境）
	if r.config.Server.Environment != "production" {
		pprof.Register(r.engine)
	}

	// API 路由组
	v1 := r.engine.Group("/api/v1")
	scoring := v1.Group("")
	scoring.Use(middleware.RateLimit(r.config.RateLimit, r.limiter, r.logger))
	{
		scoring.POST("/scores", r.scoringHandler.ScoreFacts)
		scoring.POST("/entities/score", r.scoringHandler.ScoreEntities)
	}
	v1.GET("/entities/:entity_id/profile", r.scoringHandler.GetProfile)
	v1.GET("/reports/tiers", r.scoringHandler.TierSummary)

	// 404 处理
	r.engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.ErrorResponse(
			errors.NewError(constants.ErrCodeNotFound, http.StatusNotFound,
				"The requested resource was not found", c.Request.URL.Path),
			middleware.TraceID(c),
		))
	})
}

// Start 启动 HTTP 服务器，阻塞直到服务器关闭
func (r *Router) Start() error {
	r.logger.Info(context.Background(), "Starting HTTP server", logger.Fields{"address": r.server.Addr})

	if err := r.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop 停止 HTTP 服务器
func (r *Router) Stop(ctx context.Context) error {
	r.logger.Info(ctx, "Stopping HTTP server...")
	return r.server.Shutdown(ctx)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
