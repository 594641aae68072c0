package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/turtacn/gridrisk/internal/application"
	appservice "github.com/turtacn/gridrisk/internal/application/service"
	"github.com/turtacn/gridrisk/internal/config"
	"github.com/turtacn/gridrisk/internal/domain/repository"
	domainservice "github.com/turtacn/gridrisk/internal/domain/service"
	"github.com/turtacn/gridrisk/internal/infrastructure/messaging"
	"github.com/turtacn/gridrisk/internal/infrastructure/monitoring"
	"github.com/turtacn/gridrisk/internal/infrastructure/persistence/postgres"
	"github.com/turtacn/gridrisk/internal/infrastructure/persistence/redis"
	"github.com/turtacn/gridrisk/internal/infrastructure/ratelimit"
	"github.com/turtacn/gridrisk/internal/infrastructure/search"
	"github.com/turtacn/gridrisk/internal/infrastructure/secrets"
	"github.com/turtacn/gridrisk/internal/infrastructure/snapshot"
	"github.com/turtacn/gridrisk/internal/infrastructure/tables"
	grpcserver "github.com/turtacn/gridrisk/internal/interfaces/grpc"
	httprouter "github.com/turtacn/gridrisk/internal/interfaces/http/router"
	"github.com/turtacn/gridrisk/internal/interfaces/http/handlers"
	"github.com/turtacn/gridrisk/internal/interfaces/http/middleware"
	"github.com/turtacn/gridrisk/pkg/constants"
	"github.com/turtacn/gridrisk/pkg/logger"
)

const shutdownTimeout = 30 * time.Second

func main() {
	configFile := flag.String("config", "", "path to config.yaml")
	flag.Parse()

	// Load config
	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	appLogger, err := monitoring.NewZapLogger(&cfg.Log)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, appLogger); err != nil {
		appLogger.Error(context.Background(), "gridrisk server exited with error", err)
		os.Exit(1)
	}
	appLogger.Info(context.Background(), "gridrisk server stopped")
}

func run(ctx context.Context, cfg *config.Config, appLogger logger.Logger) error {
	// Resolve secrets before any connection is opened
	if err := secrets.ApplyDatabasePassword(ctx, cfg, appLogger); err != nil {
		return fmt.Errorf("resolve database password: %w", err)
	}

	// Initialize tracing
	tracing, err := monitoring.NewTracingManager(cfg, appLogger)
	if err != nil {
		return err
	}
	defer shutdownWith(appLogger, "tracing", tracing.Shutdown)

	// Initialize metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	promMetrics := monitoring.NewMetrics(registry)
	metrics := monitoring.NewMetricsAdapter(promMetrics)

	// Scoring tables; invalid tables abort startup
	tablesProvider, err := tables.NewProvider(cfg.Scoring, appLogger)
	if err != nil {
		return err
	}

	// Initialize database
	db, err := postgres.OpenGorm(&cfg.Database, appLogger)
	if err != nil {
		return err
	}
	defer closeGorm(db)
	if cfg.Database.AutoMigrate {
		if err := postgres.AutoMigrate(db); err != nil {
			return err
		}
	}
	factRepo := postgres.NewFactRepository(db, appLogger, metrics)
	profileRepo := postgres.NewRiskRepository(db, appLogger, metrics)

	probes := map[string]handlers.Probe{
		"database": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}

	// Initialize Redis
	var shared repository.ScoreSnapshot
	var limiter ratelimit.Limiter
	if cfg.Redis.Enabled {
		redisConn := redis.NewRedisConnection(&cfg.Redis, appLogger)
		if err := redisConn.Connect(ctx); err != nil {
			return err
		}
		defer redisConn.Close()
		shared = redis.NewSnapshotCache(redisConn, time.Duration(cfg.Redis.SnapshotTTL)*time.Second, appLogger)
		probes["redis"] = redisConn.Ping

		if cfg.RateLimit.Enabled && cfg.RateLimit.Distributed {
			redisLimiter, err := ratelimit.NewRedisLimiter(redisConn.Client, ratelimit.Config{
				RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
				Burst:             int64(cfg.RateLimit.Burst),
			}, middleware.NewClientRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst), appLogger)
			if err != nil {
				return err
			}
			limiter = redisLimiter
		}
	}
	scoreSnapshot := snapshot.NewTieredStore(profileRepo, shared, constants.SnapshotL1TTL, appLogger, metrics)

	// Downstream publishers
	var publishers []domainservice.ProfilePublisher
	if cfg.Kafka.Enabled {
		kafkaPublisher := messaging.NewKafkaProfilePublisher(cfg.Kafka, appLogger)
		defer kafkaPublisher.Close()
		publishers = append(publishers, kafkaPublisher)
	}
	if cfg.Search.Enabled {
		indexer, err := search.NewProfileIndexer(cfg.Search, appLogger)
		if err != nil {
			return err
		}
		publishers = append(publishers, indexer)
		probes["search"] = indexer.HealthCheck
	}

	// Initialize application services
	opts := domainservice.EngineOptions{IncludeNationality: cfg.Scoring.IncludeNationality}
	batchScorer := application.NewBatchScorer(tablesProvider, opts, cfg.Scoring.WorkerCount(), appLogger, metrics)
	resolver := application.NewRelatedScoreResolver(scoreSnapshot, tablesProvider, appLogger)
	scoringSvc := appservice.NewScoringAppService(
		batchScorer, resolver, factRepo, profileRepo, scoreSnapshot, publishers, cfg.Scoring, appLogger, metrics,
	)

	// Initialize HTTP handlers and router
	healthHandler := handlers.NewHealthHandler(probes, appLogger)
	router := httprouter.NewRouter(cfg, appLogger, promMetrics, registry, healthHandler,
		handlers.NewScoringHandler(scoringSvc, appLogger), limiter)

	grpcSrv := grpcserver.NewServer(healthHandler.Check, 10*time.Second, appLogger)
	lis, err := net.Listen("tcp", fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.GRPCPort))
	if err != nil {
		return fmt.Errorf("listen for gRPC: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(router.Start)
	g.Go(func() error { return grpcSrv.Serve(lis) })
	g.Go(func() error {
		grpcSrv.WatchReadiness(gctx)
		return nil
	})

	if reloading, ok := tablesProvider.(*tables.ReloadingTables); ok {
		g.Go(func() error { return reloading.Watch(gctx) })
	}

	if cfg.Kafka.Enabled && cfg.Kafka.RescoreTopic != "" {
		consumer := messaging.NewRescoreConsumer(cfg.Kafka, scoringSvc.RescoreEntities, appLogger)
		defer consumer.Close()
		g.Go(func() error { return consumer.Run(gctx) })
	}

	// 优雅关闭
	g.Go(func() error {
		<-gctx.Done()
		appLogger.Info(context.Background(), "Shutting down servers...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		grpcSrv.Stop(shutdownCtx)
		return router.Stop(shutdownCtx)
	})

	return g.Wait()
}

func shutdownWith(log logger.Logger, name string, fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := fn(ctx); err != nil {
		log.Warn(ctx, "shutdown failed", logger.Fields{"component": name, "error": err.Error()})
	}
}

func closeGorm(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

//Personal.AI order the ending
