package otel

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// DefaultServiceName is reported when no service name is configured.
const DefaultServiceName = "ociaction"

// ProviderConfig configures NewTracerProvider.
type ProviderConfig struct {
	// Endpoint is a full OTLP/HTTP URL. Empty defers to the
	// OTEL_EXPORTER_OTLP_* environment variables.
	Endpoint    string
	ServiceName string
}

// NewTracerProvider returns a provider batching spans to an OTLP/HTTP
// collector. Callers own Shutdown.
func NewTracerProvider(ctx context.Context, cfg ProviderConfig) (*sdktrace.TracerProvider, error) {
	var opts []otlptracehttp.Option
	if endpoint := strings.TrimSpace(cfg.Endpoint); endpoint != "" {
		opts = append(opts, otlptracehttp.WithEndpointURL(endpoint))
	}
	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("otel: create otlp exporter: %w", err)
	}
	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(Resource(cfg.ServiceName)),
	), nil
}

// Resource describes this process to the collector.
func Resource(serviceName string) *resource.Resource {
	name := strings.TrimSpace(serviceName)
	if name == "" {
		name = DefaultServiceName
	}
	return resource.NewSchemaless(attribute.String("service.name", name))
}
