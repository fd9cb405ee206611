package server

import (
	"github.com/vango-dev/reflow/pkg/runtime"
	"github.com/vango-dev/reflow/pkg/vdom"
	"github.com/vango-dev/reflow/pkg/view"
)

// Instance is a running application bound to one session. Every method is
// called on the session's loop. *runtime.Runtime implements it.
type Instance interface {
	Start()
	Invoke(id string, arg view.Arg) bool
	Close()
}

// Program creates application instances. It hides the state and action types
// so that the server stays non-generic.
type Program interface {
	// Initial renders the initial state for server-side first paint.
	// Handler ids in the result are not live.
	Initial() vdom.Node

	// NewInstance creates an instance whose diffs go to backend and whose
	// renders and tasks run on loop.
	NewInstance(backend runtime.Backend, loop *runtime.Loop, opts ...runtime.Option) Instance
}

type program[S, A any] struct {
	app     runtime.App[S, A]
	initial func() S
}

// NewProgram wraps app. initial is called once per session and once per
// server-rendered page.
func NewProgram[S, A any](app runtime.App[S, A], initial func() S) Program {
	return &program[S, A]{app: app, initial: initial}
}

func (p *program[S, A]) Initial() vdom.Node {
	b := view.NewBuilder[A](nil)
	return p.app.View(b, p.initial()).Node
}

func (p *program[S, A]) NewInstance(backend runtime.Backend, loop *runtime.Loop, opts ...runtime.Option) Instance {
	return runtime.New(p.app, p.initial(), backend, loop, opts...)
}
