// Package render converts vdom trees into HTML.
//
// It is used for the server-side first paint: the page is rendered from the
// initial view, and the live session then streams diffs against the same
// tree.
//
//   - Text and attribute values are escaped.
//   - Void elements (input, br, img, ...) have no closing tag.
//   - Boolean attributes render bare when true and are omitted when false.
//   - The "key" attribute is not rendered.
//   - Handler bindings render as data-on-<kind>="<handler id>".
//   - Null nodes render nothing.
//
// To render a tree to a string:
//
//	r := render.NewRenderer(render.RendererConfig{})
//	html, err := r.RenderToString(node)
//
// To render a complete HTML document:
//
//	err := r.RenderPage(w, render.PageData{Title: "Counter", Body: node})
package render
