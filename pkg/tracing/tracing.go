package tracing

import (
	"errors"
	"net/http"

	"gradebook_backend/internal/config"
	"gradebook_backend/internal/util"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
	"go.opentelemetry.io/otel/trace"
)

const defaultServiceName = "gradebook"

// Tracer 未初始化时使用全局的空操作 provider
var Tracer = otel.Tracer(defaultServiceName)

// 探活、指标与文档路由不产生 span
var untraced = map[string]bool{
	"/api/health":   true,
	"/metrics":      true,
	"/swagger/*any": true,
}

// InitTracer 按配置创建 jaeger 导出的 provider 并设为全局
func InitTracer(cfg *config.TracingConfig, mode string) (*sdktrace.TracerProvider, error) {
	if cfg.CollectorEndpoint == "" {
		return nil, errors.New("tracing enabled without collector_endpoint")
	}
	exporter, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(cfg.CollectorEndpoint)))
	if err != nil {
		return nil, err
	}

	tp := newProvider(sdktrace.NewBatchSpanProcessor(exporter), cfg.ServiceName, mode, cfg.SampleRatio)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	return tp, nil
}

func newProvider(processor sdktrace.SpanProcessor, serviceName, mode string, ratio float64) *sdktrace.TracerProvider {
	if serviceName == "" {
		serviceName = defaultServiceName
	}
	return sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(processor),
		sdktrace.WithSampler(sampler(ratio)),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(serviceName),
			semconv.DeploymentEnvironmentKey.String(mode),
		)),
	)
}

// sampler 上游已决定采样时沿用其决定
func sampler(ratio float64) sdktrace.Sampler {
	switch {
	case ratio >= 1:
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	case ratio <= 0:
		return sdktrace.ParentBased(sdktrace.NeverSample())
	default:
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))
	}
}

func GinMiddleware() gin.HandlerFunc {
	return middleware(Tracer)
}

func middleware(tracer trace.Tracer) gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if untraced[route] {
			c.Next()
			return
		}
		if route == "" {
			route = "unmatched"
		}

		ctx := otel.GetTextMapPropagator().Extract(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))
		ctx, span := tracer.Start(ctx, c.Request.Method+" "+route,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				semconv.HTTPMethodKey.String(c.Request.Method),
				semconv.HTTPRouteKey.String(route),
				semconv.HTTPClientIPKey.String(c.ClientIP()),
			),
		)
		defer span.End()

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		status := c.Writer.Status()
		span.SetAttributes(semconv.HTTPStatusCodeKey.Int(status))
		if user := util.GetUserFromContext(c); user != nil {
			span.SetAttributes(semconv.EnduserIDKey.String(user.UserID))
		}
		for _, err := range c.Errors {
			span.RecordError(err.Err)
		}
		if status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
	}
}
