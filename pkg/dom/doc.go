// Package dom is an in-memory retained tree that applies vdom diffs.
//
// A Document is a Backend for the runtime. It keeps a mutable copy of the
// rendered tree, resolves positions exactly the way the diff engine counts
// them (Null children occupy no slot) and treats any position it cannot
// resolve as a broken invariant: Apply panics with an *ApplyError.
//
// Documents are used by tests and by the vtest harness to check that a
// sequence of diffs reproduces the latest rendered view, and to fire the
// handlers bound to elements.
package dom
