// Package observability wires up the plugin's logging, tracing and
// metrics: structured logs via log/slog, OpenTelemetry spans around
// orchestrator-level network operations (not individual driver calls),
// and Prometheus counters/gauges for
// construction, teardown and namespace-worker liveness.
package observability

import (
	"context"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// Observability bundles the logger, tracer and metrics the rest of the
// plugin depends on.
type Observability struct {
	Logger  *slog.Logger
	Tracer  trace.Tracer
	Metrics *Metrics

	tracerProvider *sdktrace.TracerProvider
}

// New builds the logger at levelName ("debug", "info", "warn", "error"),
// installs an OpenTelemetry tracer provider (no exporter is registered by
// default — spans are created and can be sampled, but go nowhere until a
// caller adds a processor/exporter), and registers Prometheus metrics
// against reg (use prometheus.NewRegistry() for an isolated registry, or
// nil for the global default registry).
func New(levelName, serviceName string, reg prometheus.Registerer) (*Observability, error) {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLevel(levelName),
	}))

	tp := sdktrace.NewTracerProvider(sdktrace.WithSampler(sdktrace.AlwaysSample()))
	otel.SetTracerProvider(tp)
	tracer := tp.Tracer(serviceName)

	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	metrics := newMetrics(reg)

	return &Observability{
		Logger:         logger,
		Tracer:         tracer,
		Metrics:        metrics,
		tracerProvider: tp,
	}, nil
}

// Shutdown flushes and stops the tracer provider.
func (o *Observability) Shutdown(ctx context.Context) error {
	if o.tracerProvider == nil {
		return nil
	}
	return o.tracerProvider.Shutdown(ctx)
}

func parseLevel(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
