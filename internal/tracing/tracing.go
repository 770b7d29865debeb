// Package tracing wires an optional OpenTelemetry tracer that writes spans
// for poll and refresh cycles to a file.
package tracing

import (
	"context"
	"io"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/rileyhilliard/gridctl"

var enabled atomic.Bool

// Setup installs a global tracer provider exporting to w when w is non-nil.
// It returns a shutdown function which should be deferred.
func Setup(w io.Writer) (func(context.Context) error, error) {
	if w == nil {
		enabled.Store(false)
		return func(context.Context) error { return nil }, nil
	}
	exp, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		return nil, err
	}
	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exp))
	otel.SetTracerProvider(tp)
	enabled.Store(true)
	return func(ctx context.Context) error {
		enabled.Store(false)
		return tp.Shutdown(ctx)
	}, nil
}

// Enabled reports whether Setup installed an exporter.
func Enabled() bool {
	return enabled.Load()
}

// StartSpan starts a span if tracing is enabled. The returned func ends it.
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, func()) {
	if !enabled.Load() {
		return ctx, func() {}
	}
	ctx, span := otel.Tracer(tracerName).Start(ctx, name, trace.WithAttributes(attrs...))
	return ctx, func() { span.End() }
}

// Annotate adds attributes to the span in ctx, if any.
func Annotate(ctx context.Context, attrs ...attribute.KeyValue) {
	if !enabled.Load() {
		return
	}
	trace.SpanFromContext(ctx).SetAttributes(attrs...)
}
