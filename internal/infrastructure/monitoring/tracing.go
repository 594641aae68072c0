// Package monitoring 提供分布式追踪的实现
package monitoring

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/turtacn/gridrisk/internal/config"
	"github.com/turtacn/gridrisk/pkg/logger"
)

const defaultServiceName = "gridrisk-scoring"

// TracingManager owns the process-wide tracer provider. A disabled manager
// has no provider and Shutdown is a no-op.
// TracingManager 管理 OpenTelemetry 追踪
type TracingManager struct {
	provider *sdktrace.TracerProvider
	logger   logger.Logger
}

// NewTracingManager installs a Jaeger-backed provider and W3C propagation
// when tracing is enabled. Scoring spans are started by the application
// layer through the global provider.
func NewTracingManager(cfg *config.Config, log logger.Logger) (*TracingManager, error) {
	log = log.WithComponent("tracing")
	if !cfg.Tracing.Enabled {
		log.Info(context.Background(), "tracing disabled")
		return &TracingManager{logger: log}, nil
	}

	exporter, err := jaeger.New(jaeger.WithCollectorEndpoint(
		jaeger.WithEndpoint(cfg.Tracing.JaegerEndpoint),
	))
	if err != nil {
		return nil, fmt.Errorf("create jaeger exporter: %w", err)
	}

	res, err := serviceResource(cfg)
	if err != nil {
		return nil, fmt.Errorf("build trace resource: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(samplerFor(cfg.Tracing.SampleRatio)),
	)
	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	log.Info(context.Background(), "tracing enabled", logger.Fields{
		"endpoint":     cfg.Tracing.JaegerEndpoint,
		"service":      serviceName(cfg),
		"sample_ratio": cfg.Tracing.SampleRatio,
	})
	return &TracingManager{provider: provider, logger: log}, nil
}

// serviceResource 合并默认资源与服务属性
func serviceResource(cfg *config.Config) (*resource.Resource, error) {
	attrs := resource.NewSchemaless(
		attribute.String("service.name", serviceName(cfg)),
		attribute.String("deployment.environment", cfg.Server.Environment),
		attribute.String("gridrisk.tables_path", cfg.Scoring.TablesPath),
	)
	return resource.Merge(resource.Default(), attrs)
}

// samplerFor honours an upstream sampling decision and samples new roots at
// ratio. Ratios outside (0,1) clamp to never or always.
func samplerFor(ratio float64) sdktrace.Sampler {
	switch {
	case ratio <= 0:
		return sdktrace.ParentBased(sdktrace.NeverSample())
	case ratio >= 1:
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	default:
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))
	}
}

func serviceName(cfg *config.Config) string {
	if cfg.Tracing.ServiceName != "" {
		return cfg.Tracing.ServiceName
	}
	return defaultServiceName
}

// Shutdown flushes buffered spans.
func (tm *TracingManager) Shutdown(ctx context.Context) error {
	if tm.provider == nil {
		return nil
	}
	if err := tm.provider.Shutdown(ctx); err != nil {
		tm.logger.Error(ctx, "tracing shutdown failed", err)
		return err
	}
	tm.logger.Info(ctx, "tracing provider stopped")
	return nil
}
