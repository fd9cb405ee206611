package tracing

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/vango-dev/reflow/pkg/runtime"
	"github.com/vango-dev/reflow/pkg/vdom"
)

var _ runtime.Observer = (*Observer)(nil)

func newObserver(t *testing.T, opts ...Option) (*Observer, *tracetest.InMemoryExporter) {
	t.Helper()
	exp := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exp))
	t.Cleanup(func() { tp.Shutdown(context.Background()) })
	return New(append([]Option{WithProvider(tp)}, opts...)...), exp
}

func attr(span tracetest.SpanStub, key string) (attribute.Value, bool) {
	for _, kv := range span.Attributes {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestRenderSpan(t *testing.T) {
	obs, exp := newObserver(t, WithAttributes(attribute.String("session_id", "s1")))

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	obs.RenderFinished(runtime.RenderStats{
		Seq:      3,
		Start:    start,
		Duration: 5 * time.Millisecond,
		Changed:  true,
		Handlers: 2,
		Ops:      map[vdom.Op]int{vdom.OpPatchChild: 1, vdom.OpSetAttribute: 2},
	})

	spans := exp.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	s := spans[0]
	if s.Name != "reflow.render" {
		t.Errorf("name = %q", s.Name)
	}
	if !s.StartTime.Equal(start) || !s.EndTime.Equal(start.Add(5*time.Millisecond)) {
		t.Errorf("span times = %v..%v", s.StartTime, s.EndTime)
	}
	if v, _ := attr(s, "reflow.ops"); v.AsInt64() != 3 {
		t.Errorf("reflow.ops = %v, want 3", v.AsInt64())
	}
	if v, _ := attr(s, "reflow.render_seq"); v.AsInt64() != 3 {
		t.Errorf("reflow.render_seq = %v, want 3", v.AsInt64())
	}
	if v, ok := attr(s, "session_id"); !ok || v.AsString() != "s1" {
		t.Errorf("session_id = %v", v.AsString())
	}
}

func TestSkipUnchanged(t *testing.T) {
	obs, exp := newObserver(t, WithSkipUnchanged(true))
	obs.RenderFinished(runtime.RenderStats{Changed: false, Start: time.Now()})
	if n := len(exp.GetSpans()); n != 0 {
		t.Errorf("got %d spans, want 0", n)
	}
}

func TestActionAndFailureSpans(t *testing.T) {
	obs, exp := newObserver(t)

	obs.ActionProcessed(runtime.ActionStats{Start: time.Now(), Tasks: 1, StateChanged: true})
	obs.TaskFailed(errors.New("fetch failed"))
	obs.HandlerMissing("h9")

	spans := exp.GetSpans()
	if len(spans) != 3 {
		t.Fatalf("got %d spans, want 3", len(spans))
	}
	if v, _ := attr(spans[0], "reflow.state_changed"); !v.AsBool() {
		t.Error("action span missing state_changed")
	}
	if spans[1].Status.Code != codes.Error || spans[1].Status.Description != "fetch failed" {
		t.Errorf("task span status = %+v", spans[1].Status)
	}
	if len(spans[1].Events) == 0 {
		t.Error("task span has no error event")
	}
	if v, _ := attr(spans[2], "reflow.handler_id"); v.AsString() != "h9" {
		t.Errorf("handler_id = %q", v.AsString())
	}
}
