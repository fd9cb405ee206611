package metrics

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/vango-dev/reflow/pkg/protocol"
	"github.com/vango-dev/reflow/pkg/runtime"
	"github.com/vango-dev/reflow/pkg/server"
	"github.com/vango-dev/reflow/pkg/vdom"
)

var (
	_ runtime.Observer = (*Metrics)(nil)
	_ server.Hooks     = (*Metrics)(nil)
)

func TestObserverCounts(t *testing.T) {
	m := New(WithRegistry(prometheus.NewRegistry()))

	m.ActionProcessed(runtime.ActionStats{Duration: time.Millisecond, Tasks: 2, StateChanged: true})
	m.ActionProcessed(runtime.ActionStats{StateChanged: false})
	m.RenderFinished(runtime.RenderStats{
		Changed: true,
		Ops:     map[vdom.Op]int{vdom.OpPatchChild: 1, vdom.OpReplaceChild: 2},
	})
	m.RenderFinished(runtime.RenderStats{Changed: false})
	m.HandlerMissing("h1")
	m.TaskFailed(errors.New("boom"))

	tests := []struct {
		name string
		c    prometheus.Collector
		want float64
	}{
		{"actions changed", m.actionsTotal.WithLabelValues("true"), 1},
		{"actions unchanged", m.actionsTotal.WithLabelValues("false"), 1},
		{"tasks", m.tasksEmitted, 2},
		{"task failures", m.taskFailures, 1},
		{"renders changed", m.rendersTotal.WithLabelValues("true"), 1},
		{"renders unchanged", m.rendersTotal.WithLabelValues("false"), 1},
		{"replace ops", m.diffOps.WithLabelValues("ReplaceChild"), 2},
		{"patch ops", m.diffOps.WithLabelValues("PatchChild"), 1},
		{"missing", m.handlersMissing, 1},
	}
	for _, tt := range tests {
		if got := testutil.ToFloat64(tt.c); got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestHooks(t *testing.T) {
	m := New(WithRegistry(prometheus.NewRegistry()))

	m.SessionOpened()
	m.SessionOpened()
	m.SessionClosed(time.Second)
	m.EventReceived()
	m.PatchSent(100)
	m.PatchSent(20)
	m.HandshakeFailed(protocol.HandshakeServerBusy)

	if got := testutil.ToFloat64(m.activeSessions); got != 1 {
		t.Errorf("active sessions = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.patchBytes); got != 120 {
		t.Errorf("patch bytes = %v, want 120", got)
	}
	if got := testutil.ToFloat64(m.eventsReceived); got != 1 {
		t.Errorf("events = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.handshakeFailure.WithLabelValues(protocol.HandshakeServerBusy.String())); got != 1 {
		t.Errorf("handshake failures = %v, want 1", got)
	}
}

func TestNamespace(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(WithRegistry(reg), WithNamespace("app"), WithConstLabels(prometheus.Labels{"instance": "a"}))
	m.HandlerMissing("x")

	const want = `
# HELP app_handlers_missing_total Total number of firings for unknown or stale handler ids
# TYPE app_handlers_missing_total counter
app_handlers_missing_total{instance="a"} 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(want), "app_handlers_missing_total"); err != nil {
		t.Error(err)
	}
}
