// Package observability provides OpenTelemetry-based tracing, metrics, and
// structured logging for the rangelist CLI.
package observability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	noopmetric "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"
)

const (
	tracerName = "rangelist"
	meterName  = "rangelist"

	shutdownTimeout = 5 * time.Second
)

// Supported exporter names.
const (
	ExporterNone       = "none"
	ExporterOTLP       = "otlp"
	ExporterPrometheus = "prometheus"
)

// Init-time errors.
var (
	ErrUnknownExporter = errors.New("unknown telemetry exporter")
	ErrNoPrometheus    = errors.New("prometheus exporter is not active")
	ErrMissingEndpoint = errors.New("otlp exporter requires an endpoint")
)

// Config holds observability configuration.
type Config struct {
	// ServiceName is the OTel resource service name.
	ServiceName string

	// ServiceVersion is the semantic version of the running binary.
	ServiceVersion string

	// Exporter selects the telemetry backend: "none", "otlp" or "prometheus".
	Exporter string

	// OTLPEndpoint is the OTLP gRPC collector address (e.g. "localhost:4317").
	OTLPEndpoint string

	// OTLPInsecure disables TLS for the OTLP gRPC connection.
	OTLPInsecure bool

	// LogLevel controls the minimum slog severity.
	LogLevel string

	// LogJSON enables JSON-formatted log output.
	LogJSON bool
}

// Providers holds the initialized observability providers.
type Providers struct {
	// Tracer is the named tracer for creating spans.
	Tracer trace.Tracer

	// Meter is the named meter for creating instruments.
	Meter metric.Meter

	// Logger is the context-aware structured logger.
	Logger *slog.Logger

	// Shutdown flushes all pending telemetry and releases resources.
	// Must be called before process exit.
	Shutdown func(ctx context.Context) error

	registry *prometheus.Registry
}

// Init initializes tracing, metrics, and structured logging per cfg. The
// "none" exporter yields no-op tracer and meter providers with zero export
// overhead.
func Init(ctx context.Context, cfg Config) (*Providers, error) {
	switch cfg.Exporter {
	case ExporterNone, ExporterOTLP, ExporterPrometheus:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownExporter, cfg.Exporter)
	}

	res, err := buildResource(ctx, cfg)
	if err != nil {
		return nil, err
	}

	tp, tpShutdown, err := buildTracerProvider(ctx, cfg, res)
	if err != nil {
		return nil, fmt.Errorf("build tracer provider: %w", err)
	}

	mp, registry, mpShutdown, err := buildMeterProvider(ctx, cfg, res)
	if err != nil {
		shutdownErr := tpShutdown(ctx)

		return nil, errors.Join(fmt.Errorf("build meter provider: %w", err), shutdownErr)
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	format := "text"
	if cfg.LogJSON {
		format = "json"
	}

	logger := NewLogger(cfg.LogLevel, format)
	if cfg.Exporter == ExporterOTLP {
		logger = slog.New(NewTracingHandler(logger.Handler()))
	}

	shutdown := func(shutdownCtx context.Context) error {
		deadlineCtx, cancel := context.WithTimeout(shutdownCtx, shutdownTimeout)
		defer cancel()

		return errors.Join(tpShutdown(deadlineCtx), mpShutdown(deadlineCtx))
	}

	return &Providers{
		Tracer:   tp.Tracer(tracerName),
		Meter:    mp.Meter(meterName),
		Logger:   logger,
		Shutdown: shutdown,
		registry: registry,
	}, nil
}

// PrometheusHandler returns the /metrics scrape handler. It errors unless
// Init ran with the "prometheus" exporter.
func (p *Providers) PrometheusHandler() (http.Handler, error) {
	if p.registry == nil {
		return nil, ErrNoPrometheus
	}

	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{}), nil
}

func buildResource(ctx context.Context, cfg Config) (*resource.Resource, error) {
	attrs := []resource.Option{
		resource.WithAttributes(semconv.ServiceName(cfg.ServiceName)),
	}

	if cfg.ServiceVersion != "" {
		attrs = append(attrs, resource.WithAttributes(semconv.ServiceVersion(cfg.ServiceVersion)))
	}

	res, err := resource.New(ctx, attrs...)
	if err != nil {
		return nil, fmt.Errorf("build otel resource: %w", err)
	}

	return res, nil
}

type shutdownFunc func(ctx context.Context) error

func noopShutdown(_ context.Context) error { return nil }

func buildTracerProvider(
	ctx context.Context, cfg Config, res *resource.Resource,
) (trace.TracerProvider, shutdownFunc, error) {
	if cfg.Exporter != ExporterOTLP {
		return nooptrace.NewTracerProvider(), noopShutdown, nil
	}

	if cfg.OTLPEndpoint == "" {
		return nil, nil, ErrMissingEndpoint
	}

	opts := []otlptracegrpc.Option{
		otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint),
	}

	if cfg.OTLPInsecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}

	exporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("create trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)

	return tp, tp.Shutdown, nil
}

func buildMeterProvider(
	ctx context.Context, cfg Config, res *resource.Resource,
) (metric.MeterProvider, *prometheus.Registry, shutdownFunc, error) {
	switch cfg.Exporter {
	case ExporterOTLP:
		opts := []otlpmetricgrpc.Option{
			otlpmetricgrpc.WithEndpoint(cfg.OTLPEndpoint),
		}

		if cfg.OTLPInsecure {
			opts = append(opts, otlpmetricgrpc.WithInsecure())
		}

		exporter, err := otlpmetricgrpc.New(ctx, opts...)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("create metric exporter: %w", err)
		}

		mp := sdkmetric.NewMeterProvider(
			sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)),
			sdkmetric.WithResource(res),
		)

		return mp, nil, mp.Shutdown, nil
	case ExporterPrometheus:
		// A dedicated registry avoids collector conflicts with any default
		// registry users.
		registry := prometheus.NewRegistry()

		exporter, err := promexporter.New(promexporter.WithRegisterer(registry))
		if err != nil {
			return nil, nil, nil, fmt.Errorf("create prometheus exporter: %w", err)
		}

		mp := sdkmetric.NewMeterProvider(
			sdkmetric.WithReader(exporter),
			sdkmetric.WithResource(res),
		)

		return mp, registry, mp.Shutdown, nil
	default:
		return noopmetric.NewMeterProvider(), nil, noopShutdown, nil
	}
}
