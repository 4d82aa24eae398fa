package oteltrace

import (
	"context"

	"github.com/martingallagher/warehouse/internal/observability"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type tracer struct{ t trace.Tracer }

// New wraps the globally registered OTel tracer. Exporter and provider
// setup (sdktrace.TracerProvider + otel.SetTracerProvider) is left to
// the deployment environment.
func New(name string) observability.TraceCtx {
	if name == "" {
		name = "warehouse"
	}
	return &tracer{t: otel.Tracer(name)}
}

func (t *tracer) Start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return t.t.Start(ctx, name, trace.WithAttributes(attrs...))
}
