package vdom

// Clone returns a deep copy of n.
func Clone(n Node) Node {
	if n.Kind != KindElement || n.Element == nil {
		return n
	}
	e := n.Element
	c := &Element{Name: e.Name}
	if e.Attrs != nil {
		c.Attrs = append(make([]Attr, 0, len(e.Attrs)), e.Attrs...)
	}
	if e.Handlers != nil {
		c.Handlers = append(make([]Binding, 0, len(e.Handlers)), e.Handlers...)
	}
	if e.Children != nil {
		c.Children = make([]Node, len(e.Children))
		for i, child := range e.Children {
			c.Children[i] = Clone(child)
		}
	}
	return Node{Kind: KindElement, Element: c}
}

// Equal reports whether two trees are structurally identical, including
// attribute and handler order.
func Equal(a, b Node) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindText:
		return a.Text == b.Text
	case KindElement:
		return elementsEqual(a.Element, b.Element)
	default:
		return true
	}
}

func elementsEqual(a, b *Element) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Name != b.Name ||
		len(a.Attrs) != len(b.Attrs) ||
		len(a.Handlers) != len(b.Handlers) ||
		len(a.Children) != len(b.Children) {
		return false
	}
	for i := range a.Attrs {
		if a.Attrs[i].Key != b.Attrs[i].Key || !a.Attrs[i].Value.Equal(b.Attrs[i].Value) {
			return false
		}
	}
	for i := range a.Handlers {
		if a.Handlers[i] != b.Handlers[i] {
			return false
		}
	}
	for i := range a.Children {
		if !Equal(a.Children[i], b.Children[i]) {
			return false
		}
	}
	return true
}

// Walk calls fn for n and every descendant in document order.
// Returning false from fn skips the node's children.
func Walk(n Node, fn func(Node) bool) {
	if !fn(n) {
		return
	}
	if n.Kind == KindElement && n.Element != nil {
		for _, child := range n.Element.Children {
			Walk(child, fn)
		}
	}
}

// HandlerIDs returns every handler id bound anywhere in n, in document order.
func HandlerIDs(n Node) []string {
	var ids []string
	Walk(n, func(node Node) bool {
		if node.Kind == KindElement && node.Element != nil {
			for _, h := range node.Element.Handlers {
				ids = append(ids, h.ID)
			}
		}
		return true
	})
	return ids
}
