// Package telemetry configures the OpenTelemetry trace provider for the
// service.
package telemetry

import (
	"context"
	"fmt"

	"github.com/chainguard-dev/clog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

const serviceName = "triagebot"

// Config holds the configuration for telemetry
type Config struct {
	Enabled      bool
	OTLPEndpoint string
	Version      string
}

// Provider manages the trace provider lifecycle
type Provider struct {
	tracerProvider *sdktrace.TracerProvider
}

// NewProvider creates a telemetry provider. When telemetry is disabled the
// provider is inert and spans become no-ops
func NewProvider(ctx context.Context, cfg Config) (*Provider, error) {
	if !cfg.Enabled {
		clog.FromContext(ctx).Info("Telemetry disabled")
		return &Provider{}, nil
	}

	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(cfg.OTLPEndpoint))
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
	}

	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(serviceName),
		semconv.ServiceVersion(cfg.Version),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to build telemetry resource: %w", err)
	}

	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tracerProvider)

	clog.FromContext(ctx).With("endpoint", cfg.OTLPEndpoint).Info("Telemetry enabled")
	return &Provider{tracerProvider: tracerProvider}, nil
}

// Shutdown flushes pending spans and stops the provider
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.tracerProvider == nil {
		return nil
	}
	return p.tracerProvider.Shutdown(ctx)
}
