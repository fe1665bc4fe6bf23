package observability

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"cargofleet/internal/core"
)

const (
	tracerName   = "cargofleet/core"
	operationKey = "cargofleet.operation"
)

// Tracer adapts an OpenTelemetry tracer to core.Tracer.
type Tracer struct {
	tracer trace.Tracer
}

// NewTracer wraps tracer. A nil tracer uses the global provider.
func NewTracer(tracer trace.Tracer) *Tracer {
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}
	return &Tracer{tracer: tracer}
}

// Start implements core.Tracer.
func (t *Tracer) Start(ctx context.Context, operation string) (context.Context, core.TraceSpan) {
	ctx, span := t.tracer.Start(ctx, operation, trace.WithAttributes(attribute.String(operationKey, operation)))
	return ctx, otelSpan{span: span}
}

type otelSpan struct {
	span trace.Span
}

func (s otelSpan) End(err error) {
	if err != nil {
		s.span.RecordError(err)
		s.span.SetStatus(codes.Error, strings.TrimSpace(err.Error()))
	}
	s.span.End()
}

// SpanLog prints one line per finished span to a writer.
type SpanLog struct {
	mu sync.Mutex
	w  io.Writer
}

var _ sdktrace.SpanProcessor = (*SpanLog)(nil)

// NewSpanLogProvider returns a tracer provider printing finished spans to w.
func NewSpanLogProvider(w io.Writer) *sdktrace.TracerProvider {
	return sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(&SpanLog{w: w}))
}

func (l *SpanLog) OnStart(context.Context, sdktrace.ReadWriteSpan) {}

func (l *SpanLog) OnEnd(s sdktrace.ReadOnlySpan) {
	prefix := "[ok]"
	msg := ""
	if s.Status().Code == codes.Error {
		prefix = "[x]"
		msg = " " + s.Status().Description
	}
	elapsed := s.EndTime().Sub(s.StartTime()).Round(time.Microsecond)
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.w, "%s %s %s%s\n", prefix, s.Name(), elapsed, msg)
}

func (l *SpanLog) Shutdown(context.Context) error   { return nil }
func (l *SpanLog) ForceFlush(context.Context) error { return nil }
