package vdom

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func keyed(name, key string, children ...Node) Node {
	return Elem(name, []Attr{A("key", key)}, nil, children...)
}

func TestCompareNullNull(t *testing.T) {
	if d, ok := Compare(Null(), Null()); ok {
		t.Errorf("Compare(Null, Null) = %v, want no diff", d)
	}
}

func TestCompareNullToNode(t *testing.T) {
	next := Elem("div", nil, nil, Text("hi"))
	d, ok := CompareAt(Null(), next, 3)
	if !ok {
		t.Fatal("expected a diff")
	}
	if diff := cmp.Diff(AddChild(3, next), d); diff != "" {
		t.Errorf("diff mismatch (-want +got):\n%s", diff)
	}
}

func TestCompareNodeToNull(t *testing.T) {
	d, ok := CompareAt(Text("x"), Null(), 2)
	if !ok {
		t.Fatal("expected a diff")
	}
	if d.Op != OpRemoveChild || d.Index != 2 {
		t.Errorf("got %v, want RemoveChild(2)", d)
	}
}

func TestCompareText(t *testing.T) {
	if _, ok := Compare(Text("a"), Text("a")); ok {
		t.Error("equal text should produce no diff")
	}

	d, ok := Compare(Text("a"), Text("b"))
	if !ok {
		t.Fatal("expected a diff")
	}
	if d.Op != OpReplaceChild || d.Node.Text != "b" {
		t.Errorf("got %v, want ReplaceChild(0, \"b\")", d)
	}
}

func TestCompareReplaceOnTypeChange(t *testing.T) {
	tests := []struct {
		name string
		old  Node
		next Node
	}{
		{"text to element", Text("a"), Elem("div", nil, nil)},
		{"element to text", Elem("div", nil, nil), Text("a")},
		{"tag change", Elem("div", nil, nil), Elem("span", nil, nil)},
		{"tag change with same attrs", Elem("div", []Attr{A("id", "x")}, nil), Elem("p", []Attr{A("id", "x")}, nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, ok := Compare(tt.old, tt.next)
			if !ok {
				t.Fatal("expected a diff")
			}
			if d.Op != OpReplaceChild {
				t.Errorf("Op = %v, want ReplaceChild", d.Op)
			}
			if !Equal(d.Node, tt.next) {
				t.Errorf("Node = %v, want %v", describe(d.Node), describe(tt.next))
			}
		})
	}
}

func TestCompareNoOp(t *testing.T) {
	trees := []Node{
		Null(),
		Text("hello"),
		Elem("div", nil, nil),
		Elem("div", []Attr{A("class", "card"), Flag("hidden", false)}, nil,
			Text("title"),
			Null(),
			Elem("ul", nil, nil,
				keyed("li", "a", Text("A")),
				keyed("li", "b", Text("B")),
			),
		),
	}

	for _, n := range trees {
		if d, ok := Compare(Clone(n), n); ok {
			t.Errorf("Compare(clone(%s), %s) = %v, want no diff", describe(n), describe(n), d)
		}
	}
}

func TestCompareAttributes(t *testing.T) {
	old := Elem("div", []Attr{A("a", "1"), A("b", "2")}, nil)
	next := Elem("div", []Attr{A("b", "2"), A("c", "3")}, nil)

	d, ok := Compare(old, next)
	if !ok {
		t.Fatal("expected a diff")
	}
	want := PatchChild(0, []Diff{
		SetAttribute("c", String("3")),
		RemoveAttribute("a"),
	})
	if diff := cmp.Diff(want, d); diff != "" {
		t.Errorf("diff mismatch (-want +got):\n%s", diff)
	}
}

func TestCompareAttributeValueKinds(t *testing.T) {
	old := Elem("input", []Attr{A("checked", "true")}, nil)
	next := Elem("input", []Attr{Flag("checked", true)}, nil)

	d, ok := Compare(old, next)
	if !ok {
		t.Fatal("string and bool values must differ")
	}
	if len(d.Children) != 1 || d.Children[0].Op != OpSetAttribute {
		t.Errorf("got %v, want one SetAttribute", d)
	}
}

func TestCompareAttributeDuplicateLastWins(t *testing.T) {
	old := Elem("div", []Attr{A("a", "1"), A("a", "2")}, nil)
	next := Elem("div", []Attr{A("a", "2")}, nil)

	if d, ok := Compare(old, next); ok {
		t.Errorf("got %v, want no diff (last write wins)", d)
	}
}

func TestCompareHandlersUnconditional(t *testing.T) {
	old := Elem("button", nil, []Binding{On("click", "h1")})
	next := Elem("button", nil, []Binding{On("click", "h2")})

	d, ok := Compare(old, next)
	if !ok {
		t.Fatal("expected a diff")
	}
	want := PatchChild(0, []Diff{SetHandler("click", "h2")})
	if diff := cmp.Diff(want, d); diff != "" {
		t.Errorf("diff mismatch (-want +got):\n%s", diff)
	}

	// Same id still produces SetHandler: there is no identity shortcut
	d, ok = Compare(old, Clone(old))
	if !ok || d.Children[0].Op != OpSetHandler {
		t.Errorf("got %v, want SetHandler for unchanged binding", d)
	}
}

func TestCompareHandlerRemoved(t *testing.T) {
	old := Elem("input", nil, []Binding{On("input", "h1"), On("keydown", "h2")})
	next := Elem("input", nil, []Binding{On("input", "h3")})

	d, _ := Compare(old, next)
	want := PatchChild(0, []Diff{
		SetHandler("input", "h3"),
		RemoveHandler("keydown", "h2"),
	})
	if diff := cmp.Diff(want, d); diff != "" {
		t.Errorf("diff mismatch (-want +got):\n%s", diff)
	}
}

func TestCompareKeyMismatchForcesReplace(t *testing.T) {
	old := keyed("li", "x", Text("same"))
	next := keyed("li", "y", Text("same"))

	d, ok := Compare(old, next)
	if !ok {
		t.Fatal("expected a diff")
	}
	if d.Op != OpReplaceChild {
		t.Errorf("Op = %v, want ReplaceChild", d.Op)
	}
}

func TestCompareOneSideKeyedPatches(t *testing.T) {
	old := Elem("li", nil, nil, Text("a"))
	next := keyed("li", "x", Text("a"))

	d, ok := Compare(old, next)
	if !ok {
		t.Fatal("expected a diff")
	}
	want := PatchChild(0, []Diff{SetAttribute("key", String("x"))})
	if diff := cmp.Diff(want, d); diff != "" {
		t.Errorf("diff mismatch (-want +got):\n%s", diff)
	}
}

func TestCompareKeyedRemoval(t *testing.T) {
	old := Elem("ul", nil, nil, keyed("li", "A"), keyed("li", "B"), keyed("li", "C"))
	next := Elem("ul", nil, nil, keyed("li", "A"), keyed("li", "C"))

	d, ok := Compare(old, next)
	if !ok {
		t.Fatal("expected a diff")
	}
	want := PatchChild(0, []Diff{RemoveChild(1)})
	if diff := cmp.Diff(want, d); diff != "" {
		t.Errorf("diff mismatch (-want +got):\n%s", diff)
	}
}

func TestCompareKeyedRemovalPositions(t *testing.T) {
	// Removal positions account for earlier removals in the same list
	old := Elem("ul", nil, nil,
		keyed("li", "A"), keyed("li", "B"), keyed("li", "C"), keyed("li", "D"))
	next := Elem("ul", nil, nil, keyed("li", "B"), keyed("li", "D"))

	d, _ := Compare(old, next)
	want := PatchChild(0, []Diff{RemoveChild(0), RemoveChild(1)})
	if diff := cmp.Diff(want, d); diff != "" {
		t.Errorf("diff mismatch (-want +got):\n%s", diff)
	}
}

func TestCompareKeyedMoveIsPositional(t *testing.T) {
	// No move detection: swapped keys replace both slots
	old := Elem("ul", nil, nil, keyed("li", "A"), keyed("li", "B"))
	next := Elem("ul", nil, nil, keyed("li", "B"), keyed("li", "A"))

	d, _ := Compare(old, next)
	if len(d.Children) != 2 {
		t.Fatalf("got %v, want two edits", d)
	}
	for i, c := range d.Children {
		if c.Op != OpReplaceChild || c.Index != i {
			t.Errorf("edit %d = %v, want ReplaceChild(%d)", i, c, i)
		}
	}
}

func TestCompareChildrenAppendAndTruncate(t *testing.T) {
	t.Run("append", func(t *testing.T) {
		old := Elem("div", nil, nil, Text("a"))
		next := Elem("div", nil, nil, Text("a"), Text("b"), Text("c"))

		d, _ := Compare(old, next)
		want := PatchChild(0, []Diff{
			AddChild(1, Text("b")),
			AddChild(2, Text("c")),
		})
		if diff := cmp.Diff(want, d); diff != "" {
			t.Errorf("diff mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("truncate", func(t *testing.T) {
		old := Elem("div", nil, nil, Text("a"), Text("b"), Text("c"))
		next := Elem("div", nil, nil, Text("a"))

		d, _ := Compare(old, next)
		want := PatchChild(0, []Diff{RemoveChild(1), RemoveChild(1)})
		if diff := cmp.Diff(want, d); diff != "" {
			t.Errorf("diff mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestCompareNullChildren(t *testing.T) {
	tests := []struct {
		name string
		old  []Node
		next []Node
		want []Diff
	}{
		{
			name: "null becomes text",
			old:  []Node{Text("a"), Null(), Text("c")},
			next: []Node{Text("a"), Text("b"), Text("c")},
			want: []Diff{AddChild(1, Text("b"))},
		},
		{
			name: "text becomes null",
			old:  []Node{Text("a"), Text("b"), Text("c")},
			next: []Node{Text("a"), Null(), Text("c")},
			want: []Diff{RemoveChild(1)},
		},
		{
			name: "null occupies no slot",
			old:  []Node{Null(), Text("b")},
			next: []Node{Null(), Text("c")},
			want: []Diff{ReplaceChild(0, Text("c"))},
		},
		{
			name: "trailing null is not added",
			old:  []Node{Text("a")},
			next: []Node{Text("a"), Null()},
			want: nil,
		},
		{
			name: "trailing null is not removed",
			old:  []Node{Text("a"), Null(), Text("b")},
			next: []Node{Text("a")},
			want: []Diff{RemoveChild(1)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, ok := Compare(Elem("div", nil, nil, tt.old...), Elem("div", nil, nil, tt.next...))
			if tt.want == nil {
				if ok {
					t.Errorf("got %v, want no diff", d)
				}
				return
			}
			if diff := cmp.Diff(PatchChild(0, tt.want), d); diff != "" {
				t.Errorf("diff mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCompareNestedPatch(t *testing.T) {
	old := Elem("div", nil, nil,
		Text("0"),
		Elem("section", nil, nil, Elem("p", []Attr{A("class", "a")}, nil)),
	)
	next := Elem("div", nil, nil,
		Text("0"),
		Elem("section", nil, nil, Elem("p", []Attr{A("class", "b")}, nil)),
	)

	d, _ := Compare(old, next)
	want := PatchChild(0, []Diff{
		PatchChild(1, []Diff{
			PatchChild(0, []Diff{SetAttribute("class", String("b"))}),
		}),
	})
	if diff := cmp.Diff(want, d); diff != "" {
		t.Errorf("diff mismatch (-want +got):\n%s", diff)
	}
}

func TestCompareDoesNotAliasNext(t *testing.T) {
	next := Elem("div", nil, nil, Text("a"))
	d, _ := Compare(Null(), next)

	d.Node.Element.Children[0] = Text("mutated")
	if next.Element.Children[0].Text != "a" {
		t.Error("diff node shares storage with the new tree")
	}
}

func TestCompareLeavesOldIntact(t *testing.T) {
	old := Elem("ul", nil, nil, keyed("li", "A"), keyed("li", "B"))
	snapshot := Clone(old)

	Compare(old, Elem("ul", nil, nil, keyed("li", "B")))
	if !Equal(old, snapshot) {
		t.Error("Compare mutated the old tree")
	}
}

func TestCount(t *testing.T) {
	d := PatchChild(0, []Diff{
		SetAttribute("a", String("1")),
		PatchChild(1, []Diff{RemoveChild(0), RemoveChild(0)}),
	})
	got := Count(d)
	want := map[Op]int{OpPatchChild: 2, OpSetAttribute: 1, OpRemoveChild: 2}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Count mismatch (-want +got):\n%s", diff)
	}
}
