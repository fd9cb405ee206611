// Package runtime drives a reflow application.
//
// An application supplies a reducer and a view function (App). The Runtime
// owns the instance state (Env): the current application state, the last
// rendered tree, the handler map of that tree and the "render scheduled" flag.
//
// Control flow:
//
//	handler fires -> Invoke -> OnAction -> Reduce -> SetState
//	    -> ScheduleRender (coalesced) -> Render -> View -> Compare -> Backend.Apply
//
// Runtime is not safe for concurrent use. All calls for one instance must
// happen on a single logical thread, normally a Loop, which also serves as
// the Scheduler and the TaskBridge:
//
//	loop := runtime.NewLoop(logger)
//	rt := runtime.New(app, initial, backend, loop, runtime.WithLogger(logger))
//	loop.Post(rt.Start)
//	go loop.Run(ctx)
//
// Renders coalesce: any number of state changes before the scheduled render
// runs produce exactly one render, which observes the latest state.
package runtime
