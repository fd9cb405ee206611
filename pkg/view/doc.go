// Package view builds views: a virtual tree paired with the handler map that
// dispatches its events.
//
// Handlers are addressed indirectly. When an element is built, each handler
// closure is given a fresh id drawn from the Builder's IDSource; the tree
// stores only (event kind, id) bindings and the closure goes into the
// HandlerMap under that id. Building a parent merges the handler maps of its
// children, so the root view carries the dispatch table for the whole tree.
//
//	b := view.NewBuilder[Action](view.NewRandomIDs())
//	v := b.El("div",
//	    b.Text(strconv.Itoa(count)),
//	    b.El("button",
//	        view.On("click", view.Emit(Increment)),
//	        "increment",
//	    ),
//	)
package view
