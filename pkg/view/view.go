package view

import (
	"sort"

	"github.com/vango-dev/reflow/pkg/vdom"
)

// HandlerFunc is an event callback. It returns an action when the event
// should be dispatched.
type HandlerFunc[A any] func(arg Arg) (A, bool)

// Emit returns a handler that always dispatches a.
func Emit[A any](a A) HandlerFunc[A] {
	return func(Arg) (A, bool) {
		return a, true
	}
}

// Map returns a handler that converts the argument into an action.
func Map[A any](fn func(Arg) A) HandlerFunc[A] {
	return func(arg Arg) (A, bool) {
		return fn(arg), true
	}
}

// Handler is a callback waiting to be bound to an event kind.
type Handler[A any] struct {
	Kind string
	Fn   HandlerFunc[A]
}

// On creates a Handler for the given event kind.
func On[A any](kind string, fn HandlerFunc[A]) Handler[A] {
	return Handler[A]{Kind: kind, Fn: fn}
}

// HandlerMap maps handler ids to callbacks. A handler is taken out of the
// map when it fires, so each id dispatches at most once.
type HandlerMap[A any] map[string]HandlerFunc[A]

// Take removes and returns the handler registered under id.
func (m HandlerMap[A]) Take(id string) (HandlerFunc[A], bool) {
	fn, ok := m[id]
	if ok {
		delete(m, id)
	}
	return fn, ok
}

// Has reports whether id is registered.
func (m HandlerMap[A]) Has(id string) bool {
	_, ok := m[id]
	return ok
}

// Len returns the number of registered handlers.
func (m HandlerMap[A]) Len() int {
	return len(m)
}

// IDs returns the registered ids in sorted order.
func (m HandlerMap[A]) IDs() []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// merge moves every entry of src into m.
func (m HandlerMap[A]) merge(src HandlerMap[A]) {
	for id, fn := range src {
		m[id] = fn
	}
}

// View is the output of rendering: a tree and the handlers its bindings
// refer to.
type View[A any] struct {
	Node     vdom.Node
	Handlers HandlerMap[A]
}

// Views is a list of views spread in place among an element's children.
type Views[A any] []View[A]

// Child is a View or a Views list.
type Child[A any] interface {
	appendTo(nodes []vdom.Node, handlers HandlerMap[A]) []vdom.Node
}

func (v View[A]) appendTo(nodes []vdom.Node, handlers HandlerMap[A]) []vdom.Node {
	handlers.merge(v.Handlers)
	return append(nodes, v.Node)
}

func (vs Views[A]) appendTo(nodes []vdom.Node, handlers HandlerMap[A]) []vdom.Node {
	for _, v := range vs {
		nodes = v.appendTo(nodes, handlers)
	}
	return nodes
}

// Text creates a text view.
func Text[A any](s string) View[A] {
	return View[A]{Node: vdom.Text(s), Handlers: HandlerMap[A]{}}
}

// Null creates a view that renders nothing.
func Null[A any]() View[A] {
	return View[A]{Node: vdom.Null(), Handlers: HandlerMap[A]{}}
}

// Maybe returns *v, or Null when v is nil.
func Maybe[A any](v *View[A]) View[A] {
	if v == nil {
		return Null[A]()
	}
	return *v
}

// If returns v when cond holds and Null otherwise.
func If[A any](cond bool, v View[A]) View[A] {
	if !cond {
		return Null[A]()
	}
	return v
}

// Range renders one view per item.
func Range[T, A any](items []T, fn func(item T, index int) View[A]) Views[A] {
	out := make(Views[A], len(items))
	for i, item := range items {
		out[i] = fn(item, i)
	}
	return out
}
