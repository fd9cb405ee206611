package view

import (
	"fmt"

	"github.com/vango-dev/reflow/pkg/vdom"
)

// Builder constructs element views. It owns the id source that names the
// handlers of every element it builds.
type Builder[A any] struct {
	ids IDSource
}

// NewBuilder creates a builder drawing handler ids from ids.
// A nil source falls back to random ids.
func NewBuilder[A any](ids IDSource) *Builder[A] {
	if ids == nil {
		ids = NewRandomIDs()
	}
	return &Builder[A]{ids: ids}
}

// IDs returns the builder's id source.
func (b *Builder[A]) IDs() IDSource {
	return b.ids
}

// H builds an element view. Each handler gets a fresh id; the resulting
// handler map holds those ids plus every child's handlers.
func (b *Builder[A]) H(name string, attrs []vdom.Attr, handlers []Handler[A], children ...Child[A]) View[A] {
	hm := make(HandlerMap[A], len(handlers))

	var bindings []vdom.Binding
	if len(handlers) > 0 {
		bindings = make([]vdom.Binding, 0, len(handlers))
	}
	for _, h := range handlers {
		id := b.ids.NextID()
		hm[id] = h.Fn
		bindings = append(bindings, vdom.Binding{Kind: h.Kind, ID: id})
	}

	var nodes []vdom.Node
	for _, c := range children {
		if c == nil {
			continue
		}
		nodes = c.appendTo(nodes, hm)
	}

	return View[A]{
		Node:     vdom.Elem(name, attrs, bindings, nodes...),
		Handlers: hm,
	}
}

// El builds an element view from a mixed argument list.
// Arguments can be: nil, vdom.Attr, []vdom.Attr, Handler[A], []Handler[A],
// View[A], *View[A], Views[A], []View[A], or string (a text child).
// Any other argument type panics.
func (b *Builder[A]) El(name string, args ...any) View[A] {
	var (
		attrs    []vdom.Attr
		handlers []Handler[A]
		children []Child[A]
	)

	for _, arg := range args {
		switch v := arg.(type) {
		case nil:
			// Ignore nil (allows conditional arguments)
			continue
		case vdom.Attr:
			attrs = append(attrs, v)
		case []vdom.Attr:
			attrs = append(attrs, v...)
		case Handler[A]:
			handlers = append(handlers, v)
		case []Handler[A]:
			handlers = append(handlers, v...)
		case View[A]:
			children = append(children, v)
		case *View[A]:
			children = append(children, Maybe(v))
		case Views[A]:
			children = append(children, v)
		case []View[A]:
			children = append(children, Views[A](v))
		case string:
			children = append(children, Text[A](v))
		default:
			panic(fmt.Sprintf("view: unsupported argument %T for <%s>", arg, name))
		}
	}

	return b.H(name, attrs, handlers, children...)
}

// Text creates a text view.
func (b *Builder[A]) Text(s string) View[A] {
	return Text[A](s)
}

// Textf creates a formatted text view.
func (b *Builder[A]) Textf(format string, args ...any) View[A] {
	return Text[A](fmt.Sprintf(format, args...))
}

// Null creates a view that renders nothing.
func (b *Builder[A]) Null() View[A] {
	return Null[A]()
}
