package vdom

import "testing"

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindNull, "Null"},
		{KindText, "Text"},
		{KindElement, "Element"},
		{Kind(255), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.kind.String(); got != tt.want {
				t.Errorf("Kind.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestZeroNodeIsNull(t *testing.T) {
	var n Node
	if !n.IsNull() {
		t.Error("zero Node should be Null")
	}
}

func TestElementKey(t *testing.T) {
	tests := []struct {
		name   string
		node   Node
		want   string
		wantOK bool
	}{
		{"text", Text("a"), "", false},
		{"null", Null(), "", false},
		{"unkeyed", Elem("li", []Attr{A("id", "x")}, nil), "", false},
		{"keyed", Elem("li", []Attr{A("key", "x")}, nil), "x", true},
		{"bool key", Elem("li", []Attr{Flag("key", true)}, nil), "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.node.Key()
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("Key() = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestElementLookups(t *testing.T) {
	el := Elem("input", []Attr{A("value", "a"), A("value", "b")},
		[]Binding{On("input", "h1"), On("input", "h2")}).Element

	if v, ok := el.Attr("value"); !ok || v.String() != "b" {
		t.Errorf("Attr(value) = (%v, %v), want (b, true)", v, ok)
	}
	if _, ok := el.Attr("missing"); ok {
		t.Error("Attr(missing) should not be found")
	}
	if id, ok := el.Handler("input"); !ok || id != "h2" {
		t.Errorf("Handler(input) = (%v, %v), want (h2, true)", id, ok)
	}
}

func TestCloneIsDeep(t *testing.T) {
	orig := Elem("div", []Attr{A("class", "a")}, []Binding{On("click", "h1")},
		Elem("span", nil, nil, Text("x")))
	c := Clone(orig)

	if !Equal(orig, c) {
		t.Fatal("clone should equal original")
	}

	c.Element.Attrs[0] = A("class", "b")
	c.Element.Children[0].Element.Children[0] = Text("y")
	if orig.Element.Attrs[0].Value.String() != "a" {
		t.Error("attribute storage is shared")
	}
	if orig.Element.Children[0].Element.Children[0].Text != "x" {
		t.Error("grandchild storage is shared")
	}
}

func TestEqual(t *testing.T) {
	base := Elem("div", []Attr{A("a", "1")}, []Binding{On("click", "h1")}, Text("x"))
	tests := []struct {
		name  string
		other Node
		want  bool
	}{
		{"identical", Elem("div", []Attr{A("a", "1")}, []Binding{On("click", "h1")}, Text("x")), true},
		{"name", Elem("p", []Attr{A("a", "1")}, []Binding{On("click", "h1")}, Text("x")), false},
		{"attr value", Elem("div", []Attr{A("a", "2")}, []Binding{On("click", "h1")}, Text("x")), false},
		{"handler id", Elem("div", []Attr{A("a", "1")}, []Binding{On("click", "h2")}, Text("x")), false},
		{"child", Elem("div", []Attr{A("a", "1")}, []Binding{On("click", "h1")}, Text("y")), false},
		{"kind", Text("x"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Equal(base, tt.other); got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHandlerIDs(t *testing.T) {
	n := Elem("div", nil, []Binding{On("click", "a")},
		Elem("input", nil, []Binding{On("input", "b"), On("keydown", "c")}),
		Text("x"),
	)
	got := HandlerIDs(n)
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("HandlerIDs() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("HandlerIDs()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}
