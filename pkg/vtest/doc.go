// Package vtest provides a synchronous harness for testing reflow
// applications.
//
// A Harness drives a runtime.Runtime without goroutines: render requests and
// deferred tasks are queued and only run when the test says so, and every
// diff is applied to an in-memory dom.Document.
//
// # Quick Start
//
//	func TestCounter(t *testing.T) {
//	    h := vtest.New[int, string](t, counterApp{}, 0)
//	    h.Start()
//	    h.ExpectText("value", "0")
//
//	    h.Click("inc")
//	    h.ExpectText("value", "1")
//	}
//
// # Deferred tasks
//
// Tasks emitted by the reducer are held until RunTasks:
//
//	h.Dispatch(LoadClicked{})
//	h.ExpectText("status", "loading")
//	h.RunTasks()
//	h.ExpectText("status", "done")
//
// # Render Assertions
//
// The package-level helpers render a vdom.Node to HTML and assert on it:
//
//	vtest.ExpectContains(t, node, "Welcome")
//	vtest.ExpectElement(t, node, "button")
package vtest
