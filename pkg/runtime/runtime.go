package runtime

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/vango-dev/reflow/pkg/vdom"
	"github.com/vango-dev/reflow/pkg/view"
)

// Runtime runs one application instance.
type Runtime[S, A any] struct {
	env     *Env[S, A]
	app     App[S, A]
	backend Backend
	sched   Scheduler
	bridge  TaskBridge
	builder *view.Builder[A]
	logger  *slog.Logger
	obs     Observer

	ctx    context.Context
	cancel context.CancelFunc
	closed bool
	seq    uint64
}

// New creates a runtime for app starting at state. Diffs go to backend and
// render requests to sched. Nothing is rendered until Start.
func New[S, A any](app App[S, A], state S, backend Backend, sched Scheduler, opts ...Option) *Runtime[S, A] {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.Bridge == nil {
		if b, ok := sched.(TaskBridge); ok {
			o.Bridge = b
		} else {
			o.Bridge = schedulerBridge{sched: sched}
		}
	}
	if o.Observer == nil {
		o.Observer = NopObserver{}
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(o.Context)
	return &Runtime[S, A]{
		env:     NewEnv[S, A](state),
		app:     app,
		backend: backend,
		sched:   sched,
		bridge:  o.Bridge,
		builder: view.NewBuilder[A](o.IDs),
		logger:  o.Logger,
		obs:     o.Observer,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Env returns the instance state.
func (r *Runtime[S, A]) Env() *Env[S, A] {
	return r.env
}

// State returns the current application state.
func (r *Runtime[S, A]) State() S {
	return r.env.State()
}

// Context returns the instance context. It is cancelled by Close.
func (r *Runtime[S, A]) Context() context.Context {
	return r.ctx
}

// Start requests the first render. The stored tree starts out Null, so the
// first diff adds the whole view at position 0.
func (r *Runtime[S, A]) Start() {
	if r.closed {
		return
	}
	r.requestRender()
}

// OnAction feeds an action to the reducer, emits the reducer's tasks and
// stores the new state.
func (r *Runtime[S, A]) OnAction(action A) {
	if r.closed {
		r.logger.Debug("action after close dropped")
		return
	}

	start := time.Now()
	prev := r.env.State()
	next, tasks := r.app.Reduce(prev, action)

	for _, task := range tasks {
		if task != nil {
			r.emit(task)
		}
	}

	changed := r.SetState(next)
	r.obs.ActionProcessed(ActionStats{
		Start:        start,
		Duration:     time.Since(start),
		Tasks:        len(tasks),
		StateChanged: changed,
	})
}

// emit hands a task to the bridge. Its result re-enters through OnAction
// unless the instance was closed in the meantime.
func (r *Runtime[S, A]) emit(task Task[A]) {
	r.bridge.Spawn(r.ctx, func(ctx context.Context) func() {
		action, err := task(ctx)
		return func() {
			if err != nil {
				if errors.Is(err, ErrNoAction) {
					return
				}
				if r.ctx.Err() != nil && errors.Is(err, r.ctx.Err()) {
					r.logger.Debug("task cancelled", "error", err)
					return
				}
				r.logger.Error("task failed", "error", err)
				r.obs.TaskFailed(err)
				return
			}
			if r.ctx.Err() != nil {
				r.logger.Debug("task result after close dropped")
				return
			}
			r.OnAction(action)
		}
	})
}

// SetState stores state and schedules a render. A state equal to the current
// one is ignored. It reports whether the state changed.
func (r *Runtime[S, A]) SetState(state S) bool {
	if statesEqual(r.env.State(), state) {
		return false
	}
	r.env.setState(state)
	r.requestRender()
	return true
}

// requestRender schedules one render unless one is already pending.
func (r *Runtime[S, A]) requestRender() {
	if !r.env.markScheduled() {
		return
	}
	r.sched.ScheduleRender(r.scheduledRender)
}

func (r *Runtime[S, A]) scheduledRender() {
	if r.closed {
		return
	}
	r.Render()
}

// Render builds the view for the current state, replaces the handler map and
// hands the diff against the previous tree to the backend.
func (r *Runtime[S, A]) Render() {
	// Clear first so that a state change during view construction can still
	// schedule another render.
	r.env.clearScheduled()

	r.seq++
	start := time.Now()

	v := r.app.View(r.builder, r.env.State())
	r.env.setHandlers(v.Handlers)

	d, changed := vdom.Compare(r.env.Node(), v.Node)
	stats := RenderStats{
		Seq:      r.seq,
		Start:    start,
		Changed:  changed,
		Handlers: r.env.HandlerCount(),
	}
	if changed {
		r.env.setNode(v.Node)
		stats.Ops = vdom.Count(d)
		r.backend.Apply(d)
	}
	stats.Duration = time.Since(start)

	r.logger.Debug("rendered",
		"seq", stats.Seq,
		"changed", changed,
		"handlers", stats.Handlers,
		"duration", stats.Duration)
	r.obs.RenderFinished(stats)
}

// Invoke fires the handler registered under id with arg. The handler is
// consumed: firing the same id again before the next render does nothing.
// Unknown or stale ids are ignored. It reports whether a handler ran.
func (r *Runtime[S, A]) Invoke(id string, arg view.Arg) bool {
	if r.closed {
		return false
	}
	fn, ok := r.env.takeHandler(id)
	if !ok {
		r.logger.Debug("handler not found", "id", id)
		r.obs.HandlerMissing(id)
		return false
	}
	if action, ok := fn(arg); ok {
		r.OnAction(action)
	}
	return true
}

// PopHandler removes the handler registered under id without firing it, for
// backends that bind closures when a SetHandler diff is applied.
func (r *Runtime[S, A]) PopHandler(id string) (view.HandlerFunc[A], bool) {
	return r.env.takeHandler(id)
}

// Close stops the instance. Pending renders are skipped and task results
// arriving later are dropped.
func (r *Runtime[S, A]) Close() {
	if r.closed {
		return
	}
	r.closed = true
	r.cancel()
}

// Closed reports whether Close has been called.
func (r *Runtime[S, A]) Closed() bool {
	return r.closed
}
