package runtime

import (
	"github.com/vango-dev/reflow/pkg/vdom"
	"github.com/vango-dev/reflow/pkg/view"
)

// Env is the state of one running instance.
//
// The handler map's ids are exactly the handler ids reachable from the stored
// node, and scheduled is true iff a render has been requested but has not run
// yet. Fields are mutated only by the Runtime that owns the Env.
type Env[S, A any] struct {
	state     S
	node      vdom.Node
	handlers  view.HandlerMap[A]
	scheduled bool
}

// NewEnv creates an Env holding state, with nothing rendered yet.
func NewEnv[S, A any](state S) *Env[S, A] {
	return &Env[S, A]{
		state:    state,
		node:     vdom.Null(),
		handlers: view.HandlerMap[A]{},
	}
}

// State returns the current application state.
func (e *Env[S, A]) State() S {
	return e.state
}

// Node returns the last rendered tree. Callers must not modify it.
func (e *Env[S, A]) Node() vdom.Node {
	return e.node
}

// Scheduled reports whether a render is pending.
func (e *Env[S, A]) Scheduled() bool {
	return e.scheduled
}

// HandlerCount returns the number of live handlers.
func (e *Env[S, A]) HandlerCount() int {
	return e.handlers.Len()
}

// HasHandler reports whether id is live.
func (e *Env[S, A]) HasHandler(id string) bool {
	return e.handlers.Has(id)
}

func (e *Env[S, A]) setState(s S) {
	e.state = s
}

func (e *Env[S, A]) setNode(n vdom.Node) {
	e.node = n
}

func (e *Env[S, A]) setHandlers(m view.HandlerMap[A]) {
	if m == nil {
		m = view.HandlerMap[A]{}
	}
	e.handlers = m
}

func (e *Env[S, A]) takeHandler(id string) (view.HandlerFunc[A], bool) {
	return e.handlers.Take(id)
}

// markScheduled sets the flag and reports whether it was previously clear.
func (e *Env[S, A]) markScheduled() bool {
	if e.scheduled {
		return false
	}
	e.scheduled = true
	return true
}

func (e *Env[S, A]) clearScheduled() {
	e.scheduled = false
}
