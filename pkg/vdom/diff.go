package vdom

// Compare compares two trees and returns the diff that transforms the rendered
// old tree into next, addressing it as position 0 of its container.
// It returns false when there is no observable difference.
//
// old is only read. Nodes carried by AddChild and ReplaceChild are copies, so
// the returned diff shares nothing with either tree.
func Compare(old, next Node) (Diff, bool) {
	return CompareAt(old, next, 0)
}

// CompareAt is Compare for a node rendered at position index of its parent.
func CompareAt(old, next Node, index int) (Diff, bool) {
	switch {
	case old.Kind == KindNull && next.Kind == KindNull:
		return Diff{}, false

	case old.Kind == KindNull:
		return AddChild(index, Clone(next)), true

	case next.Kind == KindNull:
		return RemoveChild(index), true

	case old.Kind == KindText && next.Kind == KindText:
		// Text is compared by value and never patched in place
		if old.Text == next.Text {
			return Diff{}, false
		}
		return ReplaceChild(index, next), true

	case old.Kind == KindElement && next.Kind == KindElement:
		return diffElement(old.Element, next, index)

	default:
		return ReplaceChild(index, Clone(next)), true
	}
}

// diffElement compares two elements rendered at index.
func diffElement(prev *Element, next Node, index int) (Diff, bool) {
	el := next.Element

	// A key mismatch means a different element, whatever the structure
	if pk, ok := prev.Key(); ok {
		if nk, ok := el.Key(); ok && pk != nk {
			return ReplaceChild(index, Clone(next)), true
		}
	}
	if prev.Name != el.Name {
		return ReplaceChild(index, Clone(next)), true
	}

	var edits []Diff
	edits = diffAttrs(edits, prev.Attrs, el.Attrs)
	edits = diffHandlers(edits, prev.Handlers, el.Handlers)
	edits = diffChildren(edits, prev.Children, el.Children)

	if len(edits) == 0 {
		return Diff{}, false
	}
	return PatchChild(index, edits), true
}

// diffAttrs appends attribute edits. The old list is read as a map where the
// last write for a key wins; leftover keys are removed in the order they first
// appear in the old list.
func diffAttrs(edits []Diff, prev, next []Attr) []Diff {
	old := make(map[string]Value, len(prev))
	order := make([]string, 0, len(prev))
	for _, a := range prev {
		if _, seen := old[a.Key]; !seen {
			order = append(order, a.Key)
		}
		old[a.Key] = a.Value
	}

	for _, a := range next {
		if v, ok := old[a.Key]; ok {
			delete(old, a.Key)
			if v.Equal(a.Value) {
				continue
			}
		}
		edits = append(edits, SetAttribute(a.Key, a.Value))
	}

	for _, key := range order {
		if _, ok := old[key]; ok {
			edits = append(edits, RemoveAttribute(key))
		}
	}
	return edits
}

// diffHandlers appends handler edits. Every new binding is set: closures are
// rebuilt on each render and have no identity to compare.
func diffHandlers(edits []Diff, prev, next []Binding) []Diff {
	old := make(map[string]string, len(prev))
	order := make([]string, 0, len(prev))
	for _, h := range prev {
		if _, seen := old[h.Kind]; !seen {
			order = append(order, h.Kind)
		}
		old[h.Kind] = h.ID
	}

	for _, h := range next {
		delete(old, h.Kind)
		edits = append(edits, SetHandler(h.Kind, h.ID))
	}

	for _, kind := range order {
		if id, ok := old[kind]; ok {
			edits = append(edits, RemoveHandler(kind, id))
		}
	}
	return edits
}

// diffChildren appends the edits reconciling two child lists.
//
// Keyed old children whose key is absent from next are removed first, in one
// pass. The survivors are then compared position by position against next.
// Moves are not detected: a keyed child that changes position is diffed
// against whatever survivor now occupies its slot.
//
// Positions count rendered slots only. Null children occupy none.
func diffChildren(edits []Diff, prev, next []Node) []Diff {
	keys := make(map[string]struct{}, len(next))
	for _, c := range next {
		if k, ok := c.Key(); ok {
			keys[k] = struct{}{}
		}
	}

	survivors := make([]Node, 0, len(prev))
	pos := 0
	for _, c := range prev {
		if k, ok := c.Key(); ok {
			if _, keep := keys[k]; !keep {
				edits = append(edits, RemoveChild(pos))
				continue
			}
		}
		survivors = append(survivors, c)
		if !c.IsNull() {
			pos++
		}
	}

	i := 0
	for j, c := range next {
		if j >= len(survivors) {
			if c.IsNull() {
				continue
			}
			edits = append(edits, AddChild(i, Clone(c)))
			i++
			continue
		}
		if d, ok := CompareAt(survivors[j], c, i); ok {
			edits = append(edits, d)
		}
		if !c.IsNull() {
			i++
		}
	}

	if len(survivors) > len(next) {
		for _, c := range survivors[len(next):] {
			if !c.IsNull() {
				edits = append(edits, RemoveChild(i))
			}
		}
	}
	return edits
}
