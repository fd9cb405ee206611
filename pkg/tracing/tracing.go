// Package tracing records runtime activity as OpenTelemetry spans.
//
// Observer implements runtime.Observer. Actions and renders become spans
// stamped with the times the runtime measured, so they line up with the
// surrounding request or session spans of the host.
package tracing

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/reflow/pkg/runtime"
)

const defaultTracerName = "reflow"

// Config configures an Observer.
type Config struct {
	// TracerName is the name of the tracer (default: "reflow").
	TracerName string

	// Provider supplies the tracer (default: otel.GetTracerProvider()).
	Provider trace.TracerProvider

	// Attributes are added to every span, e.g. a session id.
	Attributes []attribute.KeyValue

	// SkipUnchanged drops spans for renders that produced no diff.
	SkipUnchanged bool
}

// Option configures an Observer.
type Option func(*Config)

// WithTracerName sets the tracer name.
func WithTracerName(name string) Option {
	return func(c *Config) {
		c.TracerName = name
	}
}

// WithProvider sets the tracer provider.
func WithProvider(p trace.TracerProvider) Option {
	return func(c *Config) {
		c.Provider = p
	}
}

// WithAttributes adds attributes to every span.
func WithAttributes(attrs ...attribute.KeyValue) Option {
	return func(c *Config) {
		c.Attributes = append(c.Attributes, attrs...)
	}
}

// WithSkipUnchanged drops spans for renders without a diff.
func WithSkipUnchanged(skip bool) Option {
	return func(c *Config) {
		c.SkipUnchanged = skip
	}
}

// Observer turns runtime events into spans.
type Observer struct {
	tracer trace.Tracer
	config Config
}

// New creates an Observer.
func New(opts ...Option) *Observer {
	config := Config{TracerName: defaultTracerName}
	for _, opt := range opts {
		opt(&config)
	}
	if config.Provider == nil {
		config.Provider = otel.GetTracerProvider()
	}
	return &Observer{
		tracer: config.Provider.Tracer(config.TracerName),
		config: config,
	}
}

func (o *Observer) span(name string, start time.Time, attrs []attribute.KeyValue) trace.Span {
	attrs = append(attrs, o.config.Attributes...)
	_, span := o.tracer.Start(context.Background(), name,
		trace.WithTimestamp(start),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
	return span
}

// ActionProcessed implements runtime.Observer.
func (o *Observer) ActionProcessed(s runtime.ActionStats) {
	span := o.span("reflow.action", s.Start, []attribute.KeyValue{
		attribute.Int("reflow.tasks", s.Tasks),
		attribute.Bool("reflow.state_changed", s.StateChanged),
	})
	span.End(trace.WithTimestamp(s.Start.Add(s.Duration)))
}

// RenderFinished implements runtime.Observer.
func (o *Observer) RenderFinished(s runtime.RenderStats) {
	if o.config.SkipUnchanged && !s.Changed {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.Int64("reflow.render_seq", int64(s.Seq)),
		attribute.Bool("reflow.changed", s.Changed),
		attribute.Int("reflow.handlers", s.Handlers),
	}
	total := 0
	for op, n := range s.Ops {
		attrs = append(attrs, attribute.Int("reflow.ops."+op.String(), n))
		total += n
	}
	attrs = append(attrs, attribute.Int("reflow.ops", total))

	span := o.span("reflow.render", s.Start, attrs)
	span.End(trace.WithTimestamp(s.Start.Add(s.Duration)))
}

// HandlerMissing implements runtime.Observer.
func (o *Observer) HandlerMissing(id string) {
	span := o.span("reflow.handler_missing", time.Now(), []attribute.KeyValue{
		attribute.String("reflow.handler_id", id),
	})
	span.End()
}

// TaskFailed implements runtime.Observer.
func (o *Observer) TaskFailed(err error) {
	span := o.span("reflow.task", time.Now(), nil)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.End()
}
