package tracer

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
)

// TracerClient owns an OpenTelemetry tracer provider. Its Tracer is handed to
// slimgoose, which starts a span around every decorated method call that has
// pre hooks.
type TracerClient struct {
	provider *sdktrace.TracerProvider
}

// NewClient builds a tracer provider from cfg. Extra provider options are
// applied after the ones derived from cfg, which lets tests add a span
// processor.
//
//	tc, err := tracer.NewClient(tracer.Config{ServiceName: "billing", EnableExport: true})
//	if err != nil {
//	    return err
//	}
//	defer tc.Shutdown(context.Background())
//	sg := slimgoose.New(nil, slimgoose.WithTracer(tc.Tracer()))
func NewClient(cfg Config, opts ...sdktrace.TracerProviderOption) (*TracerClient, error) {
	var options []sdktrace.TracerProviderOption

	if cfg.EnableExport {
		exporter, err := otlptrace.New(context.Background(), otlptracehttp.NewClient())
		if err != nil {
			return nil, fmt.Errorf("failed to initialize OTLP exporter: %w", err)
		}
		options = append(options, sdktrace.WithBatcher(exporter))
	}

	options = append(options, sdktrace.WithResource(resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.DeploymentEnvironment(cfg.AppEnv),
		attribute.String("environment", cfg.AppEnv),
	)))
	options = append(options, opts...)

	tp := sdktrace.NewTracerProvider(options...)

	if cfg.SetGlobal {
		otel.SetTracerProvider(tp)
		otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))
	}

	return &TracerClient{provider: tp}, nil
}

// Tracer returns the slimgoose tracer of the provider.
func (c *TracerClient) Tracer() trace.Tracer {
	return c.provider.Tracer(DefaultTracerName)
}

// Provider returns the underlying tracer provider.
func (c *TracerClient) Provider() trace.TracerProvider {
	return c.provider
}

// Shutdown flushes pending spans and stops the provider.
func (c *TracerClient) Shutdown(ctx context.Context) error {
	if c.provider == nil {
		return nil
	}
	return c.provider.Shutdown(ctx)
}
