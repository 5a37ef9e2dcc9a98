package telemetry

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"strings"

	"unihub/internal/config"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/propagation"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	oteltrace "go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
)

type Telemetry struct {
	tracerProvider *trace.TracerProvider
	loggerProvider *sdklog.LoggerProvider
	config         config.TelemetryConfig
}

// New creates a telemetry instance with OTLP gRPC exporters for traces and
// logs. When disabled or no exporter URL is configured, all methods are no-ops.
func New(cfg config.TelemetryConfig) (*Telemetry, error) {
	if !cfg.Enabled || cfg.ExporterURL == "" {
		slog.Info("Telemetry disabled or no exporter URL provided")
		return &Telemetry{config: cfg}, nil
	}

	res := resource.NewSchemaless(
		attribute.String("service.name", cfg.ServiceName),
		attribute.String("service.version", cfg.ServiceVersion),
		attribute.String("deployment.environment", cfg.Environment),
	)

	traceExporter, err := otlptracegrpc.New(context.Background(), traceExporterOptions(cfg)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	logExporter, err := otlploggrpc.New(context.Background(), logExporterOptions(cfg)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create log exporter: %w", err)
	}

	tp := trace.NewTracerProvider(
		trace.WithBatcher(traceExporter),
		trace.WithResource(res),
		trace.WithSampler(trace.TraceIDRatioBased(cfg.SamplingRatio)),
	)

	lp := sdklog.NewLoggerProvider(
		sdklog.WithProcessor(sdklog.NewBatchProcessor(logExporter)),
		sdklog.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	global.SetLoggerProvider(lp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	slog.Info("Telemetry initialized",
		"service", cfg.ServiceName,
		"version", cfg.ServiceVersion,
		"environment", cfg.Environment,
		"endpoint", cfg.ExporterURL,
		"sampling_ratio", cfg.SamplingRatio,
	)

	return &Telemetry{
		tracerProvider: tp,
		loggerProvider: lp,
		config:         cfg,
	}, nil
}

func traceExporterOptions(cfg config.TelemetryConfig) []otlptracegrpc.Option {
	endpoint, local := cleanEndpoint(cfg.ExporterURL)

	if local {
		return []otlptracegrpc.Option{
			otlptracegrpc.WithEndpoint(endpoint),
			otlptracegrpc.WithTLSCredentials(insecure.NewCredentials()),
		}
	}

	return []otlptracegrpc.Option{
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithTLSCredentials(credentials.NewTLS(&tls.Config{})),
		otlptracegrpc.WithDialOption(authDialOptions(cfg)...),
	}
}

func logExporterOptions(cfg config.TelemetryConfig) []otlploggrpc.Option {
	endpoint, local := cleanEndpoint(cfg.ExporterURL)

	if local {
		return []otlploggrpc.Option{
			otlploggrpc.WithEndpoint(endpoint),
			otlploggrpc.WithTLSCredentials(insecure.NewCredentials()),
		}
	}

	return []otlploggrpc.Option{
		otlploggrpc.WithEndpoint(endpoint),
		otlploggrpc.WithTLSCredentials(credentials.NewTLS(&tls.Config{})),
		otlploggrpc.WithDialOption(authDialOptions(cfg)...),
	}
}

func cleanEndpoint(url string) (endpoint string, local bool) {
	endpoint = strings.TrimPrefix(url, "grpc://")
	endpoint = strings.TrimPrefix(endpoint, "http://")
	endpoint = strings.TrimPrefix(endpoint, "https://")

	local = strings.Contains(endpoint, "127.0.0.1") || strings.Contains(endpoint, "localhost")
	return endpoint, local
}

// authDialOptions attaches the bearer token to every exporter call when one is
// configured for the remote collector.
func authDialOptions(cfg config.TelemetryConfig) []grpc.DialOption {
	if cfg.APIToken == "" {
		return nil
	}

	return []grpc.DialOption{
		grpc.WithUnaryInterceptor(func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
			ctx = metadata.AppendToOutgoingContext(ctx,
				"authorization", fmt.Sprintf("Bearer %s", cfg.APIToken),
			)
			return invoker(ctx, method, req, reply, cc, opts...)
		}),
	}
}

// Shutdown flushes and stops the exporters.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var errs []error

	if t.tracerProvider != nil {
		if err := t.tracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("trace provider shutdown: %w", err))
		}
	}

	if t.loggerProvider != nil {
		if err := t.loggerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("log provider shutdown: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("telemetry shutdown errors: %v", errs)
	}

	return nil
}

// Tracer returns a tracer for the given name.
func (t *Telemetry) Tracer(name string) oteltrace.Tracer {
	return otel.Tracer(name)
}

// IsEnabled returns whether telemetry is active.
func (t *Telemetry) IsEnabled() bool {
	return t.config.Enabled && t.tracerProvider != nil
}
