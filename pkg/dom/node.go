package dom

import (
	"github.com/vango-dev/reflow/pkg/vdom"
)

// Node is a live node of a Document.
type Node struct {
	Kind     vdom.Kind
	Text     string
	Name     string
	Attrs    []vdom.Attr
	Handlers []vdom.Binding
	Children []*Node
	Parent   *Node
}

// build converts a vdom node into a live node. Null children are skipped.
func build(n vdom.Node, parent *Node) *Node {
	switch n.Kind {
	case vdom.KindText:
		return &Node{Kind: vdom.KindText, Text: n.Text, Parent: parent}
	case vdom.KindElement:
		e := n.Element
		node := &Node{
			Kind:     vdom.KindElement,
			Name:     e.Name,
			Attrs:    dedupeAttrs(e.Attrs),
			Handlers: dedupeHandlers(e.Handlers),
			Parent:   parent,
		}
		for _, c := range e.Children {
			if c.IsNull() {
				continue
			}
			node.Children = append(node.Children, build(c, node))
		}
		return node
	default:
		return nil
	}
}

// Attr returns the value of key.
func (n *Node) Attr(key string) (vdom.Value, bool) {
	for _, a := range n.Attrs {
		if a.Key == key {
			return a.Value, true
		}
	}
	return vdom.Value{}, false
}

// Handler returns the handler id bound to kind.
func (n *Node) Handler(kind string) (string, bool) {
	for _, h := range n.Handlers {
		if h.Kind == kind {
			return h.ID, true
		}
	}
	return "", false
}

// TextContent returns the concatenated text of n and its descendants.
func (n *Node) TextContent() string {
	if n.Kind == vdom.KindText {
		return n.Text
	}
	var s string
	for _, c := range n.Children {
		s += c.TextContent()
	}
	return s
}

// VNode converts n back into a vdom tree.
func (n *Node) VNode() vdom.Node {
	if n == nil {
		return vdom.Null()
	}
	if n.Kind == vdom.KindText {
		return vdom.Text(n.Text)
	}
	children := make([]vdom.Node, len(n.Children))
	for i, c := range n.Children {
		children[i] = c.VNode()
	}
	var attrs []vdom.Attr
	if len(n.Attrs) > 0 {
		attrs = append(attrs, n.Attrs...)
	}
	var handlers []vdom.Binding
	if len(n.Handlers) > 0 {
		handlers = append(handlers, n.Handlers...)
	}
	return vdom.Elem(n.Name, attrs, handlers, children...)
}

func (n *Node) setAttr(key string, v vdom.Value) {
	for i := range n.Attrs {
		if n.Attrs[i].Key == key {
			n.Attrs[i].Value = v
			return
		}
	}
	n.Attrs = append(n.Attrs, vdom.Attr{Key: key, Value: v})
}

func (n *Node) removeAttr(key string) bool {
	for i := range n.Attrs {
		if n.Attrs[i].Key == key {
			n.Attrs = append(n.Attrs[:i], n.Attrs[i+1:]...)
			return true
		}
	}
	return false
}

func (n *Node) setHandler(kind, id string) {
	for i := range n.Handlers {
		if n.Handlers[i].Kind == kind {
			n.Handlers[i].ID = id
			return
		}
	}
	n.Handlers = append(n.Handlers, vdom.Binding{Kind: kind, ID: id})
}

func (n *Node) removeHandler(kind string) bool {
	for i := range n.Handlers {
		if n.Handlers[i].Kind == kind {
			n.Handlers = append(n.Handlers[:i], n.Handlers[i+1:]...)
			return true
		}
	}
	return false
}

// dedupeAttrs keeps one entry per key, holding the last value written, at
// the position the key first appeared.
func dedupeAttrs(attrs []vdom.Attr) []vdom.Attr {
	if len(attrs) == 0 {
		return nil
	}
	out := make([]vdom.Attr, 0, len(attrs))
	pos := make(map[string]int, len(attrs))
	for _, a := range attrs {
		if i, ok := pos[a.Key]; ok {
			out[i].Value = a.Value
			continue
		}
		pos[a.Key] = len(out)
		out = append(out, a)
	}
	return out
}

func dedupeHandlers(hs []vdom.Binding) []vdom.Binding {
	if len(hs) == 0 {
		return nil
	}
	out := make([]vdom.Binding, 0, len(hs))
	pos := make(map[string]int, len(hs))
	for _, h := range hs {
		if i, ok := pos[h.Kind]; ok {
			out[i].ID = h.ID
			continue
		}
		pos[h.Kind] = len(out)
		out = append(out, h)
	}
	return out
}
