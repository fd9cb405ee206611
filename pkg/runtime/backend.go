package runtime

import (
	"context"

	"github.com/vango-dev/reflow/pkg/vdom"
)

// Backend applies diffs to a live presentation tree. Apply is called once per
// render that produced a difference. Operations within one sibling list must
// be applied in the order given.
type Backend interface {
	Apply(d vdom.Diff)
}

// BackendFunc adapts a function to the Backend interface.
type BackendFunc func(d vdom.Diff)

// Apply implements Backend.
func (f BackendFunc) Apply(d vdom.Diff) {
	f(d)
}

// Scheduler requests a single future invocation of fn on the instance
// thread. Each request fires exactly once.
type Scheduler interface {
	ScheduleRender(fn func())
}

// SchedulerFunc adapts a function to the Scheduler interface.
type SchedulerFunc func(fn func())

// ScheduleRender implements Scheduler.
func (f SchedulerFunc) ScheduleRender(fn func()) {
	f(fn)
}

// TaskBridge runs work off the instance thread. The continuation returned by
// work must be run exactly once, on the instance thread.
type TaskBridge interface {
	Spawn(ctx context.Context, work func(ctx context.Context) (resume func()))
}

// schedulerBridge is the fallback TaskBridge: work runs on its own goroutine
// and resumes through the scheduler.
type schedulerBridge struct {
	sched Scheduler
}

func (b schedulerBridge) Spawn(ctx context.Context, work func(context.Context) func()) {
	go func() {
		resume := work(ctx)
		b.sched.ScheduleRender(resume)
	}()
}
