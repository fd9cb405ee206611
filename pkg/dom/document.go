package dom

import (
	"fmt"
	"strings"

	"github.com/vango-dev/reflow/pkg/vdom"
	"github.com/vango-dev/reflow/pkg/view"
)

// ApplyError describes a diff that does not fit the live tree.
type ApplyError struct {
	Op    vdom.Op
	Index int
	Len   int   // Number of children at the failing level
	Path  []int // Child positions from the container to the failing level
	Msg   string
}

func (e *ApplyError) Error() string {
	return fmt.Sprintf("dom: %s at %v index %d (len %d): %s", e.Op, e.Path, e.Index, e.Len, e.Msg)
}

// Invoker fires handlers by id. *runtime.Runtime implements it.
type Invoker interface {
	Invoke(id string, arg view.Arg) bool
}

// Document is a retained tree. The rendered view lives at position 0 of a
// container that is not itself part of the view.
//
// A Document is not safe for concurrent use.
type Document struct {
	container *Node
	applied   int
}

// New creates an empty document.
func New() *Document {
	return &Document{container: &Node{Kind: vdom.KindElement, Name: "#container"}}
}

// Apply implements runtime.Backend. It panics with *ApplyError when d
// addresses a position that does not exist.
func (doc *Document) Apply(d vdom.Diff) {
	apply(doc.container, d, nil)
	doc.applied++
}

// Applied returns the number of diffs applied so far.
func (doc *Document) Applied() int {
	return doc.applied
}

// Root returns the rendered root, or nil when nothing is rendered.
func (doc *Document) Root() *Node {
	if len(doc.container.Children) == 0 {
		return nil
	}
	return doc.container.Children[0]
}

// VNode returns the rendered tree as a vdom node.
func (doc *Document) VNode() vdom.Node {
	return doc.Root().VNode()
}

func apply(parent *Node, d vdom.Diff, path []int) {
	n := len(parent.Children)
	fail := func(msg string) {
		panic(&ApplyError{Op: d.Op, Index: d.Index, Len: n, Path: append([]int(nil), path...), Msg: msg})
	}

	switch d.Op {
	case vdom.OpAddChild:
		if d.Index < 0 || d.Index > n {
			fail("insert position out of range")
		}
		child := build(d.Node, parent)
		if child == nil {
			return
		}
		parent.Children = append(parent.Children, nil)
		copy(parent.Children[d.Index+1:], parent.Children[d.Index:])
		parent.Children[d.Index] = child

	case vdom.OpReplaceChild:
		if d.Index < 0 || d.Index >= n {
			fail("no child to replace")
		}
		child := build(d.Node, parent)
		if child == nil {
			parent.Children = append(parent.Children[:d.Index], parent.Children[d.Index+1:]...)
			return
		}
		parent.Children[d.Index].Parent = nil
		parent.Children[d.Index] = child

	case vdom.OpRemoveChild:
		if d.Index < 0 || d.Index >= n {
			fail("no child to remove")
		}
		parent.Children[d.Index].Parent = nil
		parent.Children = append(parent.Children[:d.Index], parent.Children[d.Index+1:]...)

	case vdom.OpPatchChild:
		if d.Index < 0 || d.Index >= n {
			fail("no child to patch")
		}
		target := parent.Children[d.Index]
		if target.Kind != vdom.KindElement {
			fail("patch target is not an element")
		}
		sub := append(path, d.Index)
		for _, c := range d.Children {
			apply(target, c, sub)
		}

	case vdom.OpSetAttribute:
		parent.setAttr(d.Key, d.Value)

	case vdom.OpRemoveAttribute:
		if !parent.removeAttr(d.Key) {
			fail("attribute " + d.Key + " not set")
		}

	case vdom.OpSetHandler:
		parent.setHandler(d.Kind, d.ID)

	case vdom.OpRemoveHandler:
		if !parent.removeHandler(d.Kind) {
			fail("handler " + d.Kind + " not bound")
		}

	default:
		fail("unknown op")
	}
}

// Lookup returns the node at path, starting from the rendered root.
// An empty path is the root itself.
func (doc *Document) Lookup(path ...int) (*Node, bool) {
	n := doc.Root()
	if n == nil {
		return nil, false
	}
	for _, i := range path {
		if i < 0 || i >= len(n.Children) {
			return nil, false
		}
		n = n.Children[i]
	}
	return n, true
}

// Find returns the first element in document order for which match holds.
func (doc *Document) Find(match func(*Node) bool) (*Node, bool) {
	var found *Node
	var walk func(n *Node) bool
	walk = func(n *Node) bool {
		if match(n) {
			found = n
			return true
		}
		for _, c := range n.Children {
			if walk(c) {
				return true
			}
		}
		return false
	}
	if root := doc.Root(); root != nil {
		walk(root)
	}
	return found, found != nil
}

// ByAttr returns the first element whose attribute key has the string value.
func (doc *Document) ByAttr(key, value string) (*Node, bool) {
	return doc.Find(func(n *Node) bool {
		v, ok := n.Attr(key)
		if !ok {
			return false
		}
		s, ok := v.Str()
		return ok && s == value
	})
}

// Fire dispatches kind on n through inv. It reports false when no handler is
// bound or the handler is no longer live.
func Fire(inv Invoker, n *Node, kind string, arg view.Arg) bool {
	if n == nil {
		return false
	}
	id, ok := n.Handler(kind)
	if !ok {
		return false
	}
	return inv.Invoke(id, arg)
}

// Matches reports whether the document holds the same tree as v. Null
// children are ignored and attributes and handlers compare as sets where
// the last write for a key wins.
func (doc *Document) Matches(v vdom.Node) bool {
	return matches(doc.Root(), v)
}

func matches(n *Node, v vdom.Node) bool {
	switch v.Kind {
	case vdom.KindNull:
		return n == nil
	case vdom.KindText:
		return n != nil && n.Kind == vdom.KindText && n.Text == v.Text
	}
	if n == nil || n.Kind != vdom.KindElement || n.Name != v.Element.Name {
		return false
	}

	want := dedupeAttrs(v.Element.Attrs)
	if len(want) != len(n.Attrs) {
		return false
	}
	for _, a := range want {
		got, ok := n.Attr(a.Key)
		if !ok || !got.Equal(a.Value) {
			return false
		}
	}

	wantH := dedupeHandlers(v.Element.Handlers)
	if len(wantH) != len(n.Handlers) {
		return false
	}
	for _, h := range wantH {
		if id, ok := n.Handler(h.Kind); !ok || id != h.ID {
			return false
		}
	}

	i := 0
	for _, c := range v.Element.Children {
		if c.IsNull() {
			continue
		}
		if i >= len(n.Children) || !matches(n.Children[i], c) {
			return false
		}
		i++
	}
	return i == len(n.Children)
}

// String renders the tree in a compact indented form for test failures.
func (doc *Document) String() string {
	var b strings.Builder
	if root := doc.Root(); root != nil {
		dump(&b, root, 0)
	}
	return b.String()
}

func dump(b *strings.Builder, n *Node, depth int) {
	b.WriteString(strings.Repeat("  ", depth))
	if n.Kind == vdom.KindText {
		fmt.Fprintf(b, "%q\n", n.Text)
		return
	}
	b.WriteString("<" + n.Name)
	for _, a := range n.Attrs {
		fmt.Fprintf(b, " %s=%q", a.Key, a.Value.String())
	}
	for _, h := range n.Handlers {
		fmt.Fprintf(b, " on%s=%s", h.Kind, h.ID)
	}
	b.WriteString(">\n")
	for _, c := range n.Children {
		dump(b, c, depth+1)
	}
}
