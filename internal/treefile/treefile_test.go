package treefile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/vango-dev/reflow/internal/errors"
	"github.com/vango-dev/reflow/pkg/vdom"
)

func TestParse(t *testing.T) {
	src := `
tag: ul
key: list
attrs:
  class: items
  hidden: false
  tabindex: 3
on:
  click: h1
children:
  - tag: li
    key: a
    children: [first]
  - null
  - plain text
  - ~
`
	got, err := Parse([]byte(src), "tree.yaml")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	want := vdom.Elem("ul",
		[]vdom.Attr{
			vdom.A("key", "list"),
			vdom.A("class", "items"),
			vdom.Flag("hidden", false),
			vdom.A("tabindex", "3"),
		},
		[]vdom.Binding{vdom.On("click", "h1")},
		vdom.Elem("li", []vdom.Attr{vdom.A("key", "a")}, nil, vdom.Text("first")),
		vdom.Null(),
		vdom.Text("plain text"),
		vdom.Null(),
	)
	if !vdom.Equal(got, want) {
		t.Errorf("Parse mismatch\ngot:  %s\nwant: %s", dump(t, got), dump(t, want))
	}
}

func TestParseScalars(t *testing.T) {
	tests := []struct {
		src  string
		want vdom.Node
	}{
		{"", vdom.Null()},
		{"null", vdom.Null()},
		{"hello", vdom.Text("hello")},
		{"42", vdom.Text("42")},
		{"'quoted'", vdom.Text("quoted")},
	}
	for _, tt := range tests {
		got, err := Parse([]byte(tt.src), "x.yaml")
		if err != nil {
			t.Errorf("Parse(%q): %v", tt.src, err)
			continue
		}
		if !vdom.Equal(got, tt.want) {
			t.Errorf("Parse(%q) = %+v, want %+v", tt.src, got, tt.want)
		}
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code string
		line int
	}{
		{"malformed", "tag: [div", "E121", 0},
		{"no tag", "attrs:\n  a: b\n", "E122", 1},
		{"unknown field", "tag: div\nstyle: x\n", "E122", 2},
		{"sequence root", "- a\n- b\n", "E122", 1},
		{"children not list", "tag: div\nchildren: x\n", "E122", 2},
		{"empty handler", "tag: div\non:\n  click: ''\n", "E122", 3},
		{"attr mapping", "tag: div\nattrs:\n  a:\n    b: c\n", "E123", 4},
		{"attr null", "tag: div\nattrs:\n  a: null\n", "E123", 3},
		{"attrs list", "tag: div\nattrs: [a]\n", "E123", 2},
		{"nested", "tag: div\nchildren:\n  - tag: p\n    children:\n      - {attrs: {}}\n", "E122", 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src), "tree.yaml")
			if err == nil {
				t.Fatal("expected error")
			}
			if got := errors.Code(err); got != tt.code {
				t.Errorf("code = %q, want %q (%v)", got, tt.code, err)
			}
			if tt.line == 0 {
				return
			}
			e := errors.FromError(err, "")
			if e.Location == nil {
				t.Fatalf("no location on %v", err)
			}
			if e.Location.Line != tt.line {
				t.Errorf("line = %d, want %d", e.Location.Line, tt.line)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tree.yaml")
	if err := os.WriteFile(path, []byte("tag: p\nchildren: [hi]\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if want := vdom.Elem("p", nil, nil, vdom.Text("hi")); !vdom.Equal(got, want) {
		t.Errorf("Load = %+v", got)
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml")); errors.Code(err) != "E120" {
		t.Errorf("missing file: code = %q, want E120", errors.Code(err))
	}
}

func TestLoadErrorContext(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	src := "tag: div\nchildren:\n  - tag: p\n    colour: red\n"
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path)
	e := errors.FromError(err, "")
	if e == nil || e.Code != "E122" {
		t.Fatalf("err = %v, want E122", err)
	}
	if e.Location == nil || e.Location.Line != 4 || e.Location.Column != 5 {
		t.Errorf("location = %v, want %s:4:5", e.Location, path)
	}
	if len(e.Context) == 0 {
		t.Error("expected source context lines")
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	tree := vdom.Elem("form",
		[]vdom.Attr{vdom.A("key", "f"), vdom.A("action", "/go"), vdom.Flag("novalidate", true)},
		[]vdom.Binding{vdom.On("submit", "h9")},
		vdom.Elem("input", []vdom.Attr{vdom.A("value", "true")}, nil),
		vdom.Text("123"),
		vdom.Null(),
	)

	data, err := Marshal(tree)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	got, err := Parse(data, "round.yaml")
	if err != nil {
		t.Fatalf("Parse: %v\n%s", err, data)
	}
	if !vdom.Equal(got, tree) {
		t.Errorf("round trip mismatch\n%s", data)
	}
}

func dump(t *testing.T, n vdom.Node) string {
	t.Helper()
	data, err := Marshal(n)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}
