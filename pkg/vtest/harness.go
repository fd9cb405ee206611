package vtest

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/vango-dev/reflow/pkg/dom"
	"github.com/vango-dev/reflow/pkg/runtime"
	"github.com/vango-dev/reflow/pkg/view"
)

// maxFlush bounds Flush so that an application that requests a render from
// every render fails the test instead of hanging it.
const maxFlush = 1000

// Harness runs one application instance synchronously.
type Harness[S, A any] struct {
	t       testing.TB
	rt      *runtime.Runtime[S, A]
	doc     *dom.Document
	renders []func()
	tasks   []task
}

type task struct {
	ctx  context.Context
	work func(context.Context) func()
}

// New creates a harness for app starting at state. Handler ids are
// deterministic ("h1", "h2", ...) and logs are discarded unless opts say
// otherwise.
func New[S, A any](t testing.TB, app runtime.App[S, A], state S, opts ...runtime.Option) *Harness[S, A] {
	t.Helper()
	h := &Harness[S, A]{t: t, doc: dom.New()}
	defaults := []runtime.Option{
		runtime.WithIDs(view.NewCounterIDs("h")),
		runtime.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		runtime.WithBridge(h),
	}
	h.rt = runtime.New(app, state, h.doc, h, append(defaults, opts...)...)
	t.Cleanup(h.rt.Close)
	return h
}

// ScheduleRender implements runtime.Scheduler.
func (h *Harness[S, A]) ScheduleRender(fn func()) {
	h.renders = append(h.renders, fn)
}

// Spawn implements runtime.TaskBridge.
func (h *Harness[S, A]) Spawn(ctx context.Context, work func(context.Context) func()) {
	h.tasks = append(h.tasks, task{ctx: ctx, work: work})
}

// Runtime returns the runtime under test.
func (h *Harness[S, A]) Runtime() *runtime.Runtime[S, A] {
	return h.rt
}

// Document returns the document the runtime renders into.
func (h *Harness[S, A]) Document() *dom.Document {
	return h.doc
}

// State returns the current state.
func (h *Harness[S, A]) State() S {
	return h.rt.State()
}

// PendingRenders returns the number of queued render requests.
func (h *Harness[S, A]) PendingRenders() int {
	return len(h.renders)
}

// PendingTasks returns the number of tasks waiting for RunTasks.
func (h *Harness[S, A]) PendingTasks() int {
	return len(h.tasks)
}

// Start requests the first render and flushes it.
func (h *Harness[S, A]) Start() {
	h.t.Helper()
	h.rt.Start()
	h.Flush()
}

// Flush runs queued renders until none is left, then checks that the
// document matches the runtime's tree.
func (h *Harness[S, A]) Flush() {
	h.t.Helper()
	for i := 0; len(h.renders) > 0; i++ {
		if i == maxFlush {
			h.t.Fatalf("vtest: renders still pending after %d flushes", maxFlush)
		}
		fn := h.renders[0]
		h.renders = h.renders[1:]
		fn()
	}
	h.AssertConsistent()
}

// Dispatch feeds action to the runtime and flushes.
func (h *Harness[S, A]) Dispatch(action A) {
	h.t.Helper()
	h.rt.OnAction(action)
	h.Flush()
}

// RunTasks runs every queued task to completion, delivers the results in
// emission order and flushes. Tasks emitted while delivering are queued for
// the next call. It returns the number of tasks run.
func (h *Harness[S, A]) RunTasks() int {
	h.t.Helper()
	tasks := h.tasks
	h.tasks = nil
	for _, tk := range tasks {
		if resume := tk.work(tk.ctx); resume != nil {
			resume()
		}
	}
	h.Flush()
	return len(tasks)
}

// Fire fires the kind handler of the first node matching match. It fails the
// test when no such node exists and reports whether a handler ran.
func (h *Harness[S, A]) Fire(match func(*dom.Node) bool, kind string, arg view.Arg) bool {
	h.t.Helper()
	n, ok := h.doc.Find(match)
	if !ok {
		h.t.Fatalf("vtest: no node matches, document:\n%s", h.doc)
	}
	fired := dom.Fire(h.rt, n, kind, arg)
	h.Flush()
	return fired
}

// Click fires the click handler of the element whose id attribute is id.
func (h *Harness[S, A]) Click(id string) bool {
	h.t.Helper()
	return h.Fire(ByID(id), "click", nil)
}

// Input fires the input handler of the element with id, passing value.
func (h *Harness[S, A]) Input(id, value string) bool {
	h.t.Helper()
	return h.Fire(ByID(id), "input", view.StringArg(value))
}

// Node returns the element whose id attribute is id, failing the test when
// it is absent.
func (h *Harness[S, A]) Node(id string) *dom.Node {
	h.t.Helper()
	n, ok := h.doc.ByAttr("id", id)
	if !ok {
		h.t.Fatalf("vtest: no element with id %q, document:\n%s", id, h.doc)
	}
	return n
}

// ExpectText asserts the text content of the element with id.
func (h *Harness[S, A]) ExpectText(id, want string) {
	h.t.Helper()
	if got := h.Node(id).TextContent(); got != want {
		h.t.Errorf("text of #%s = %q, want %q", id, got, want)
	}
}

// ExpectMissing asserts that no element has id.
func (h *Harness[S, A]) ExpectMissing(id string) {
	h.t.Helper()
	if _, ok := h.doc.ByAttr("id", id); ok {
		h.t.Errorf("element #%s present, want absent", id)
	}
}

// HTML renders the document.
func (h *Harness[S, A]) HTML() string {
	return RenderToString(h.doc.VNode())
}

// AssertConsistent fails the test when the document differs from the tree
// the runtime last rendered.
func (h *Harness[S, A]) AssertConsistent() {
	h.t.Helper()
	if !h.doc.Matches(h.rt.Env().Node()) {
		h.t.Fatalf("vtest: document diverged from rendered tree\ndocument:\n%s\nrendered:\n%s",
			h.doc, RenderToString(h.rt.Env().Node()))
	}
}

// ByID matches elements whose id attribute is id.
func ByID(id string) func(*dom.Node) bool {
	return func(n *dom.Node) bool {
		v, ok := n.Attr("id")
		if !ok {
			return false
		}
		s, ok := v.Str()
		return ok && s == id
	}
}
