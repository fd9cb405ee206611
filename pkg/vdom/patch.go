package vdom

import (
	"fmt"
	"strings"
)

// Op is the type of a diff operation.
type Op uint8

const (
	OpSetAttribute    Op = 0x01 // Set/update attribute
	OpRemoveAttribute Op = 0x02 // Remove attribute
	OpAddChild        Op = 0x03 // Insert node at index
	OpReplaceChild    Op = 0x04 // Replace node at index
	OpRemoveChild     Op = 0x05 // Remove node at index
	OpPatchChild      Op = 0x06 // Recurse into child at index
	OpSetHandler      Op = 0x07 // Bind handler id to event kind
	OpRemoveHandler   Op = 0x08 // Unbind handler from event kind
)

// String returns the string representation of the Op.
func (op Op) String() string {
	switch op {
	case OpSetAttribute:
		return "SetAttribute"
	case OpRemoveAttribute:
		return "RemoveAttribute"
	case OpAddChild:
		return "AddChild"
	case OpReplaceChild:
		return "ReplaceChild"
	case OpRemoveChild:
		return "RemoveChild"
	case OpPatchChild:
		return "PatchChild"
	case OpSetHandler:
		return "SetHandler"
	case OpRemoveHandler:
		return "RemoveHandler"
	default:
		return "Unknown"
	}
}

// Diff is one edit operation. PatchChild diffs carry the edits for the
// child at Index in Children. A Diff holds no reference to the trees it was
// computed from.
type Diff struct {
	Op       Op
	Index    int    // Child position (AddChild, ReplaceChild, RemoveChild, PatchChild)
	Key      string // Attribute key (SetAttribute, RemoveAttribute)
	Value    Value  // Attribute value (SetAttribute)
	Kind     string // Event kind (SetHandler, RemoveHandler)
	ID       string // Handler id (SetHandler, RemoveHandler)
	Node     Node   // New subtree (AddChild, ReplaceChild)
	Children []Diff // Nested edits (PatchChild)
}

// SetAttribute creates a SetAttribute diff.
func SetAttribute(key string, value Value) Diff {
	return Diff{Op: OpSetAttribute, Key: key, Value: value}
}

// RemoveAttribute creates a RemoveAttribute diff.
func RemoveAttribute(key string) Diff {
	return Diff{Op: OpRemoveAttribute, Key: key}
}

// AddChild creates an AddChild diff.
func AddChild(index int, n Node) Diff {
	return Diff{Op: OpAddChild, Index: index, Node: n}
}

// ReplaceChild creates a ReplaceChild diff.
func ReplaceChild(index int, n Node) Diff {
	return Diff{Op: OpReplaceChild, Index: index, Node: n}
}

// RemoveChild creates a RemoveChild diff.
func RemoveChild(index int) Diff {
	return Diff{Op: OpRemoveChild, Index: index}
}

// PatchChild creates a PatchChild diff.
func PatchChild(index int, edits []Diff) Diff {
	return Diff{Op: OpPatchChild, Index: index, Children: edits}
}

// SetHandler creates a SetHandler diff.
func SetHandler(kind, id string) Diff {
	return Diff{Op: OpSetHandler, Kind: kind, ID: id}
}

// RemoveHandler creates a RemoveHandler diff.
func RemoveHandler(kind, id string) Diff {
	return Diff{Op: OpRemoveHandler, Kind: kind, ID: id}
}

// String returns a compact, single-line rendering of the diff.
func (d Diff) String() string {
	switch d.Op {
	case OpSetAttribute:
		return fmt.Sprintf("SetAttribute(%s=%q)", d.Key, d.Value.String())
	case OpRemoveAttribute:
		return fmt.Sprintf("RemoveAttribute(%s)", d.Key)
	case OpAddChild, OpReplaceChild:
		return fmt.Sprintf("%s(%d, %s)", d.Op, d.Index, describe(d.Node))
	case OpRemoveChild:
		return fmt.Sprintf("RemoveChild(%d)", d.Index)
	case OpPatchChild:
		parts := make([]string, len(d.Children))
		for i, c := range d.Children {
			parts[i] = c.String()
		}
		return fmt.Sprintf("PatchChild(%d, [%s])", d.Index, strings.Join(parts, ", "))
	case OpSetHandler, OpRemoveHandler:
		return fmt.Sprintf("%s(%s, %s)", d.Op, d.Kind, d.ID)
	default:
		return "Unknown"
	}
}

func describe(n Node) string {
	switch n.Kind {
	case KindText:
		return fmt.Sprintf("%q", n.Text)
	case KindElement:
		if n.Element == nil {
			return "<nil>"
		}
		return "<" + n.Element.Name + ">"
	default:
		return "null"
	}
}

// Count tallies the primitive operations in d, PatchChild included.
func Count(d Diff) map[Op]int {
	counts := make(map[Op]int)
	count(d, counts)
	return counts
}

func count(d Diff, counts map[Op]int) {
	counts[d.Op]++
	for _, c := range d.Children {
		count(c, counts)
	}
}
