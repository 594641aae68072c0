package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/turtacn/gridrisk/internal/infrastructure/monitoring"
	"github.com/turtacn/gridrisk/pkg/constants"
)

const tracerName = "github.com/turtacn/gridrisk/internal/interfaces/http"

// Observability returns a Gin middleware that integrates Prometheus metrics and OpenTelemetry tracing.
// For each HTTP request, it starts a server span and records request totals and duration,
// labelled with the route template to keep cardinality low.
// Observability 返回一个集成了 Prometheus 指标和 OpenTelemetry 跟踪的 Gin 中间件。
// 指标使用路由模板进行标记，以控制基数。
func Observability(metrics *monitoring.Metrics) gin.HandlerFunc {
	propagator := propagation.TraceContext{}
	tracer := otel.Tracer(tracerName)

	return func(c *gin.Context) {
		start := time.Now()

		path := c.FullPath()
		if path == "" {
			path = "not_found"
		}

		ctx := propagator.Extract(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))
		ctx, span := tracer.Start(ctx, c.Request.Method+" "+path, trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()

		if sc := span.SpanContext(); sc.HasTraceID() {
			traceID := sc.TraceID().String()
			c.Set(string(constants.ContextKeyTraceID), traceID)
			c.Header(constants.HeaderTraceID, traceID)
			ctx = context.WithValue(ctx, constants.ContextKeyTraceID, traceID)
		}
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		status := c.Writer.Status()
		if metrics != nil {
			metrics.ObserveRequest(path, c.Request.Method, status, time.Since(start))
		}
		span.SetAttributes(
			attribute.String("http.method", c.Request.Method),
			attribute.String("http.route", path),
			attribute.Int("http.status_code", status),
			attribute.String("http.client_ip", c.ClientIP()),
		)
	}
}
