package vdom

// Kind is the node type discriminator.
type Kind uint8

const (
	KindNull    Kind = iota // Renders nothing
	KindText                // Plain text leaf
	KindElement             // Tagged node
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "Null"
	case KindText:
		return "Text"
	case KindElement:
		return "Element"
	default:
		return "Unknown"
	}
}

// KeyAttr is the reserved attribute that marks an element as keyed.
const KeyAttr = "key"

// Node is one position of the virtual tree.
// The zero Node is Null.
type Node struct {
	Kind    Kind     // Node type
	Text    string   // For KindText
	Element *Element // For KindElement
}

// Attr is a single attribute.
type Attr struct {
	Key   string
	Value Value
}

// Binding ties a logical event kind to a handler id.
type Binding struct {
	Kind string // "click", "input", etc.
	ID   string // Opaque handler id
}

// Element is a tagged node.
type Element struct {
	Name     string
	Attrs    []Attr
	Handlers []Binding
	Children []Node
}

// Null returns the placeholder node that renders nothing.
func Null() Node {
	return Node{Kind: KindNull}
}

// Text creates a text node.
func Text(s string) Node {
	return Node{Kind: KindText, Text: s}
}

// Elem creates an element node.
func Elem(name string, attrs []Attr, handlers []Binding, children ...Node) Node {
	return Node{Kind: KindElement, Element: &Element{
		Name:     name,
		Attrs:    attrs,
		Handlers: handlers,
		Children: children,
	}}
}

// A creates a string attribute.
func A(key, value string) Attr {
	return Attr{Key: key, Value: String(value)}
}

// Flag creates a boolean attribute.
func Flag(key string, on bool) Attr {
	return Attr{Key: key, Value: Bool(on)}
}

// On creates a handler binding.
func On(kind, id string) Binding {
	return Binding{Kind: kind, ID: id}
}

// IsNull reports whether the node renders nothing.
func (n Node) IsNull() bool {
	return n.Kind == KindNull
}

// Key returns the reconciliation key of an element node.
func (n Node) Key() (string, bool) {
	if n.Kind != KindElement || n.Element == nil {
		return "", false
	}
	return n.Element.Key()
}

// Key returns the value of the "key" attribute when it is a string.
// A boolean key does not make the element keyed.
func (e *Element) Key() (string, bool) {
	for _, a := range e.Attrs {
		if a.Key == KeyAttr {
			return a.Value.Str()
		}
	}
	return "", false
}

// Attr returns the last value written for key.
func (e *Element) Attr(key string) (Value, bool) {
	var (
		v     Value
		found bool
	)
	for _, a := range e.Attrs {
		if a.Key == key {
			v, found = a.Value, true
		}
	}
	return v, found
}

// Handler returns the last handler id bound to kind.
func (e *Element) Handler(kind string) (string, bool) {
	var (
		id    string
		found bool
	)
	for _, h := range e.Handlers {
		if h.Kind == kind {
			id, found = h.ID, true
		}
	}
	return id, found
}
