package runtime

import (
	"context"
	"errors"
	"reflect"

	"github.com/vango-dev/reflow/pkg/view"
)

// ErrNoAction is returned by a Task that completed without producing an
// action. The runtime drops such results silently.
var ErrNoAction = errors.New("runtime: task produced no action")

// Task is a deferred computation that eventually yields an action.
// It runs off the instance thread; its result re-enters through OnAction.
type Task[A any] func(ctx context.Context) (A, error)

// App is the contract an application implements.
//
// Reduce must be deterministic for identical inputs. View must not mutate
// state or trigger actions, and must yield structurally identical output when
// called again with the same state, because renders may be coalesced.
type App[S, A any] interface {
	Reduce(state S, action A) (S, []Task[A])
	View(b *view.Builder[A], state S) view.View[A]
}

// Funcs adapts a pair of functions to the App interface.
type Funcs[S, A any] struct {
	ReduceFn func(state S, action A) (S, []Task[A])
	ViewFn   func(b *view.Builder[A], state S) view.View[A]
}

// Reduce implements App.
func (f Funcs[S, A]) Reduce(state S, action A) (S, []Task[A]) {
	return f.ReduceFn(state, action)
}

// View implements App.
func (f Funcs[S, A]) View(b *view.Builder[A], state S) view.View[A] {
	return f.ViewFn(b, state)
}

// Equaler is implemented by states that define their own equality.
type Equaler[S any] interface {
	Equal(other S) bool
}

// statesEqual compares two states structurally.
func statesEqual[S any](a, b S) bool {
	if e, ok := any(a).(Equaler[S]); ok {
		return e.Equal(b)
	}
	return reflect.DeepEqual(a, b)
}
