// Package vdom provides the virtual tree and the diff engine for reflow.
//
// The virtual tree is an in-memory description of the UI. A render produces a
// fresh tree which is compared against the previously rendered one; the
// comparison yields a Diff, a tree of primitive edit operations that a
// rendering backend applies to its live presentation tree.
//
// # Core Types
//
// Node is one position in the tree: a Text leaf, an Element, or Null, an
// explicit placeholder that renders nothing. Element carries a name, ordered
// attributes (Attr), ordered event bindings (Binding) and ordered children.
// Attribute values are either strings or booleans (Value).
//
// # Diffing
//
// Diff compares two trees. Element children are reconciled positionally,
// after a single pass that drops keyed children whose key no longer appears
// among the new children:
//
//	old := vdom.Elem("ul", nil, nil,
//	    vdom.Elem("li", []vdom.Attr{vdom.A("key", "a")}, nil),
//	    vdom.Elem("li", []vdom.Attr{vdom.A("key", "b")}, nil),
//	)
//	next := vdom.Elem("ul", nil, nil,
//	    vdom.Elem("li", []vdom.Attr{vdom.A("key", "a")}, nil),
//	)
//	d, ok := vdom.Diff(old, next) // PatchChild(0, [RemoveChild(1)])
//
// Indices inside a Diff refer to the target as it stands once every earlier
// operation for the same sibling list has been applied, in emitted order.
package vdom
