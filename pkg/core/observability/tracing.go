package observability

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// TracerName is the instrumentation scope of engine spans.
const TracerName = "telecom_subsidy/pipeline"

// TracingConfig governs how tracing is initialised.
type TracingConfig struct {
	Enabled     bool    `toml:"enabled"`
	ServiceName string  `toml:"service_name"`
	Exporter    string  `toml:"exporter"` // stdout | file
	Path        string  `toml:"path"`     // used when Exporter == file
	SampleRatio float64 `toml:"sample_ratio" validate:"gte=0,lte=1"`
}

// InitTracing installs a global tracer provider. Disabled tracing installs
// a noop provider. The returned func flushes and stops the exporter.
func InitTracing(ctx context.Context, cfg TracingConfig, logger arbor.ILogger) (func(context.Context) error, error) {
	if !cfg.Enabled {
		otel.SetTracerProvider(noop.NewTracerProvider())
		otel.SetTextMapPropagator(propagation.TraceContext{})
		if logger != nil {
			logger.Debug().Msg("Tracing disabled")
		}
		return func(context.Context) error { return nil }, nil
	}

	exp, closer, err := exporterFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	service := cfg.ServiceName
	if service == "" {
		service = "subsidy-engine"
	}
	res, err := resource.New(ctx,
		resource.WithAttributes(
			attribute.String("service.name", service),
			attribute.String("service.namespace", "telecom_subsidy"),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}

	ratio := cfg.SampleRatio
	if ratio == 0 {
		ratio = 1
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))),
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	if logger != nil {
		logger.Info().
			Str("exporter", cfg.Exporter).
			Str("service_name", service).
			Float64("sample_ratio", ratio).
			Msg("Tracing enabled")
	}

	return func(ctx context.Context) error {
		err := tp.Shutdown(ctx)
		if closer != nil {
			if cerr := closer.Close(); err == nil {
				err = cerr
			}
		}
		return err
	}, nil
}

func exporterFromConfig(cfg TracingConfig) (sdktrace.SpanExporter, io.Closer, error) {
	switch strings.ToLower(cfg.Exporter) {
	case "stdout", "":
		exp, err := stdouttrace.New(
			stdouttrace.WithWriter(os.Stdout),
			stdouttrace.WithPrettyPrint(),
			stdouttrace.WithoutTimestamps(),
		)
		return exp, nil, err
	case "file":
		if cfg.Path == "" {
			return nil, nil, fmt.Errorf("tracing exporter file requires a path")
		}
		f, err := os.Create(cfg.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("open trace file: %w", err)
		}
		exp, err := stdouttrace.New(stdouttrace.WithWriter(f))
		if err != nil {
			f.Close()
			return nil, nil, err
		}
		return exp, f, nil
	default:
		return nil, nil, fmt.Errorf("unsupported tracing exporter: %s", cfg.Exporter)
	}
}

// Tracer returns the engine tracer from the global provider.
func Tracer() trace.Tracer {
	return otel.Tracer(TracerName)
}

// ShutdownWithTimeout calls shutdown with a bounded timeout and logs any
// failure instead of returning it.
func ShutdownWithTimeout(ctx context.Context, shutdown func(context.Context) error, logger arbor.ILogger) {
	if shutdown == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := shutdown(ctx); err != nil && logger != nil {
		logger.Warn().Err(err).Msg("Tracing shutdown failed")
	}
}
