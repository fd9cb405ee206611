package runtime

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vango-dev/reflow/pkg/vdom"
	"github.com/vango-dev/reflow/pkg/view"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// manualScheduler queues render requests until the test flushes them.
type manualScheduler struct {
	pending []func()
}

func (s *manualScheduler) ScheduleRender(fn func()) {
	s.pending = append(s.pending, fn)
}

func (s *manualScheduler) flush() int {
	n := 0
	for len(s.pending) > 0 {
		fn := s.pending[0]
		s.pending = s.pending[1:]
		fn()
		n++
	}
	return n
}

// manualBridge runs task work synchronously and parks the continuation.
type manualBridge struct {
	ctxs    []context.Context
	resumes []func()
}

func (b *manualBridge) Spawn(ctx context.Context, work func(context.Context) func()) {
	b.ctxs = append(b.ctxs, ctx)
	b.resumes = append(b.resumes, work(ctx))
}

func (b *manualBridge) resumeAll() {
	rs := b.resumes
	b.resumes = nil
	for _, r := range rs {
		r()
	}
}

type recordingBackend struct {
	diffs []vdom.Diff
}

func (b *recordingBackend) Apply(d vdom.Diff) {
	b.diffs = append(b.diffs, d)
}

type countObserver struct {
	NopObserver
	renders []RenderStats
	missing []string
	failed  []error
}

func (o *countObserver) RenderFinished(s RenderStats) { o.renders = append(o.renders, s) }
func (o *countObserver) HandlerMissing(id string)     { o.missing = append(o.missing, id) }
func (o *countObserver) TaskFailed(err error)         { o.failed = append(o.failed, err) }

type counter struct {
	Count int
}

type action int

const (
	increment action = iota
	noop
)

// counterApp renders <div>{count}<button/></div>. withHandler binds a click
// handler on the button.
func counterApp(withHandler bool) Funcs[counter, action] {
	return Funcs[counter, action]{
		ReduceFn: func(s counter, a action) (counter, []Task[action]) {
			if a == increment {
				s.Count++
			}
			return s, nil
		},
		ViewFn: func(b *view.Builder[action], s counter) view.View[action] {
			var handlers []view.Handler[action]
			if withHandler {
				handlers = append(handlers, view.On("click", view.Emit(increment)))
			}
			return b.H("div", nil, nil,
				b.Text(strconv.Itoa(s.Count)),
				b.H("button", nil, handlers),
			)
		},
	}
}

type harness struct {
	rt      *Runtime[counter, action]
	sched   *manualScheduler
	bridge  *manualBridge
	backend *recordingBackend
	obs     *countObserver
}

func newHarness(t *testing.T, app App[counter, action], state counter) *harness {
	t.Helper()
	h := &harness{
		sched:   &manualScheduler{},
		bridge:  &manualBridge{},
		backend: &recordingBackend{},
		obs:     &countObserver{},
	}
	h.rt = New(app, state, h.backend, h.sched,
		WithLogger(testLogger()),
		WithObserver(h.obs),
		WithBridge(h.bridge),
		WithIDs(view.NewCounterIDs("h")),
	)
	return h
}

func TestStartRendersWholeTree(t *testing.T) {
	h := newHarness(t, counterApp(false), counter{})
	h.rt.Start()

	if got := h.sched.flush(); got != 1 {
		t.Fatalf("renders = %d, want 1", got)
	}
	if len(h.backend.diffs) != 1 {
		t.Fatalf("diffs = %d, want 1", len(h.backend.diffs))
	}
	d := h.backend.diffs[0]
	if d.Op != vdom.OpAddChild || d.Index != 0 {
		t.Fatalf("first diff = %v, want AddChild(0, ...)", d)
	}
	if !vdom.Equal(d.Node, h.rt.Env().Node()) {
		t.Errorf("added node does not match stored tree")
	}
}

func TestEndToEndIncrement(t *testing.T) {
	h := newHarness(t, counterApp(false), counter{})
	h.rt.Start()
	h.sched.flush()
	h.backend.diffs = nil

	h.rt.OnAction(increment)
	if got := h.sched.flush(); got != 1 {
		t.Fatalf("renders = %d, want 1", got)
	}

	want := []vdom.Diff{
		vdom.PatchChild(0, []vdom.Diff{
			vdom.ReplaceChild(0, vdom.Text("1")),
		}),
	}
	if diff := cmp.Diff(want, h.backend.diffs); diff != "" {
		t.Errorf("diffs mismatch (-want +got):\n%s", diff)
	}
	if h.rt.State().Count != 1 {
		t.Errorf("Count = %d, want 1", h.rt.State().Count)
	}
}

func TestEndToEndIncrementWithHandler(t *testing.T) {
	h := newHarness(t, counterApp(true), counter{})
	h.rt.Start()
	h.sched.flush()

	ids := vdom.HandlerIDs(h.rt.Env().Node())
	if len(ids) != 1 {
		t.Fatalf("handler ids = %v, want one", ids)
	}
	h.backend.diffs = nil

	if !h.rt.Invoke(ids[0], view.NullArg) {
		t.Fatal("Invoke returned false for a live handler")
	}
	h.sched.flush()

	if len(h.backend.diffs) != 1 {
		t.Fatalf("diffs = %d, want 1", len(h.backend.diffs))
	}
	counts := vdom.Count(h.backend.diffs[0])
	if counts[vdom.OpReplaceChild] != 1 {
		t.Errorf("ReplaceChild count = %d, want 1", counts[vdom.OpReplaceChild])
	}
	if counts[vdom.OpSetHandler] != 1 {
		t.Errorf("SetHandler count = %d, want 1", counts[vdom.OpSetHandler])
	}
	if counts[vdom.OpAddChild]+counts[vdom.OpRemoveChild] != 0 {
		t.Errorf("unexpected structural ops: %v", counts)
	}
}

func TestRenderCoalescing(t *testing.T) {
	h := newHarness(t, counterApp(false), counter{})
	h.rt.Start()
	h.sched.flush()
	h.obs.renders = nil

	h.rt.OnAction(increment)
	h.rt.OnAction(increment)

	if len(h.sched.pending) != 1 {
		t.Fatalf("pending renders = %d, want 1", len(h.sched.pending))
	}
	if !h.rt.Env().Scheduled() {
		t.Error("Scheduled() = false, want true")
	}

	h.sched.flush()
	if len(h.obs.renders) != 1 {
		t.Fatalf("renders = %d, want 1", len(h.obs.renders))
	}
	if h.rt.Env().Scheduled() {
		t.Error("Scheduled() = true after render, want false")
	}

	el := h.rt.Env().Node().Element
	if got := el.Children[0].Text; got != "2" {
		t.Errorf("rendered count = %q, want %q", got, "2")
	}
}

func TestEqualStateSkipsRender(t *testing.T) {
	h := newHarness(t, counterApp(false), counter{})
	h.rt.Start()
	h.sched.flush()

	h.rt.OnAction(noop)
	if len(h.sched.pending) != 0 {
		t.Errorf("pending renders = %d, want 0", len(h.sched.pending))
	}
	if h.rt.SetState(counter{}) {
		t.Error("SetState(equal) = true, want false")
	}
}

func TestHandlerFiresAtMostOnce(t *testing.T) {
	h := newHarness(t, counterApp(true), counter{})
	h.rt.Start()
	h.sched.flush()

	id := vdom.HandlerIDs(h.rt.Env().Node())[0]

	if !h.rt.Invoke(id, view.NullArg) {
		t.Fatal("first Invoke = false, want true")
	}
	if h.rt.Invoke(id, view.NullArg) {
		t.Fatal("second Invoke = true, want false")
	}
	h.sched.flush()

	if h.rt.State().Count != 1 {
		t.Errorf("Count = %d, want 1", h.rt.State().Count)
	}
	if diff := cmp.Diff([]string{id}, h.obs.missing); diff != "" {
		t.Errorf("missing handlers mismatch (-want +got):\n%s", diff)
	}
}

func TestStaleHandlerIgnored(t *testing.T) {
	h := newHarness(t, counterApp(true), counter{})
	h.rt.Start()
	h.sched.flush()

	old := vdom.HandlerIDs(h.rt.Env().Node())[0]

	// Re-render with a new state; the old id is superseded.
	h.rt.SetState(counter{Count: 5})
	h.sched.flush()

	if h.rt.Env().HasHandler(old) {
		t.Fatalf("handler %s survived a re-render", old)
	}
	if h.rt.Invoke(old, view.NullArg) {
		t.Error("Invoke(stale) = true, want false")
	}
	if h.rt.State().Count != 5 {
		t.Errorf("Count = %d, want 5", h.rt.State().Count)
	}
}

func TestHandlerMapMatchesTree(t *testing.T) {
	h := newHarness(t, counterApp(true), counter{})
	h.rt.Start()
	h.sched.flush()
	h.rt.OnAction(increment)
	h.sched.flush()

	ids := vdom.HandlerIDs(h.rt.Env().Node())
	if h.rt.Env().HandlerCount() != len(ids) {
		t.Fatalf("HandlerCount() = %d, want %d", h.rt.Env().HandlerCount(), len(ids))
	}
	for _, id := range ids {
		if !h.rt.Env().HasHandler(id) {
			t.Errorf("HasHandler(%s) = false, want true", id)
		}
	}
}

func TestRenderWithoutChangeSkipsBackend(t *testing.T) {
	h := newHarness(t, counterApp(false), counter{})
	h.rt.Start()
	h.sched.flush()
	h.backend.diffs = nil

	h.rt.Render()
	if len(h.backend.diffs) != 0 {
		t.Errorf("diffs = %v, want none", h.backend.diffs)
	}
	last := h.obs.renders[len(h.obs.renders)-1]
	if last.Changed {
		t.Error("Changed = true, want false")
	}
	if last.Ops != nil {
		t.Errorf("Ops = %v, want nil", last.Ops)
	}
}

type fetched struct {
	Value string
}

func taskApp(task Task[string]) Funcs[fetched, string] {
	return Funcs[fetched, string]{
		ReduceFn: func(s fetched, a string) (fetched, []Task[string]) {
			if a == "load" {
				return s, []Task[string]{task}
			}
			s.Value = a
			return s, nil
		},
		ViewFn: func(b *view.Builder[string], s fetched) view.View[string] {
			return b.Text(s.Value)
		},
	}
}

func newTaskRuntime(app App[fetched, string]) (*Runtime[fetched, string], *manualScheduler, *manualBridge, *countObserver) {
	sched := &manualScheduler{}
	bridge := &manualBridge{}
	obs := &countObserver{}
	rt := New(app, fetched{}, &recordingBackend{}, sched,
		WithLogger(testLogger()),
		WithObserver(obs),
		WithBridge(bridge),
	)
	return rt, sched, bridge, obs
}

func TestTaskResultReentersAsAction(t *testing.T) {
	rt, sched, bridge, _ := newTaskRuntime(taskApp(func(ctx context.Context) (string, error) {
		return "done", nil
	}))
	rt.Start()
	sched.flush()

	rt.OnAction("load")
	if len(bridge.resumes) != 1 {
		t.Fatalf("spawned = %d, want 1", len(bridge.resumes))
	}
	if rt.State().Value != "" {
		t.Fatalf("Value = %q before resume, want empty", rt.State().Value)
	}

	bridge.resumeAll()
	sched.flush()
	if rt.State().Value != "done" {
		t.Errorf("Value = %q, want %q", rt.State().Value, "done")
	}
}

func TestTaskResultDroppedAfterClose(t *testing.T) {
	rt, sched, bridge, _ := newTaskRuntime(taskApp(func(ctx context.Context) (string, error) {
		return "late", nil
	}))
	rt.Start()
	sched.flush()
	rt.OnAction("load")

	rt.Close()
	if err := bridge.ctxs[0].Err(); !errors.Is(err, context.Canceled) {
		t.Errorf("task ctx err = %v, want %v", err, context.Canceled)
	}

	bridge.resumeAll()
	sched.flush()
	if rt.State().Value != "" {
		t.Errorf("Value = %q, want empty", rt.State().Value)
	}
}

func TestTaskErrors(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name       string
		err        error
		wantFailed int
	}{
		{"no action", ErrNoAction, 0},
		{"wrapped no action", errors.Join(ErrNoAction), 0},
		{"failure", boom, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt, sched, bridge, obs := newTaskRuntime(taskApp(func(ctx context.Context) (string, error) {
				return "", tt.err
			}))
			rt.Start()
			sched.flush()
			rt.OnAction("load")
			bridge.resumeAll()

			if len(obs.failed) != tt.wantFailed {
				t.Errorf("TaskFailed calls = %d, want %d", len(obs.failed), tt.wantFailed)
			}
			if rt.State().Value != "" {
				t.Errorf("Value = %q, want empty", rt.State().Value)
			}
		})
	}
}

func TestCloseStopsRendering(t *testing.T) {
	h := newHarness(t, counterApp(false), counter{})
	h.rt.Start()
	h.sched.flush()
	h.backend.diffs = nil

	h.rt.OnAction(increment)
	h.rt.Close()
	h.sched.flush()

	if len(h.backend.diffs) != 0 {
		t.Errorf("diffs after close = %v, want none", h.backend.diffs)
	}
	if !h.rt.Closed() {
		t.Error("Closed() = false, want true")
	}
	h.rt.OnAction(increment)
	if h.rt.State().Count != 1 {
		t.Errorf("Count = %d, want 1", h.rt.State().Count)
	}
}

type versioned struct {
	Version int
	Scratch []string
}

func (v versioned) Equal(o versioned) bool {
	return v.Version == o.Version
}

func TestStatesEqual(t *testing.T) {
	if !statesEqual(versioned{Version: 1, Scratch: []string{"a"}}, versioned{Version: 1}) {
		t.Error("Equaler not used")
	}
	if statesEqual(counter{1}, counter{2}) {
		t.Error("statesEqual(counter{1}, counter{2}) = true, want false")
	}
	if !statesEqual(map[string]int{"a": 1}, map[string]int{"a": 1}) {
		t.Error("structural comparison failed for maps")
	}
}
