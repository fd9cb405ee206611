package render

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/vango-dev/reflow/pkg/vdom"
)

func TestRenderToString(t *testing.T) {
	tests := []struct {
		name string
		node vdom.Node
		want string
	}{
		{
			name: "text",
			node: vdom.Text("Hello, World!"),
			want: "Hello, World!",
		},
		{
			name: "text escaping",
			node: vdom.Text("<script>alert('xss')</script>"),
			want: "&lt;script&gt;alert(&#39;xss&#39;)&lt;/script&gt;",
		},
		{
			name: "null",
			node: vdom.Null(),
			want: "",
		},
		{
			name: "element",
			node: vdom.Elem("div", []vdom.Attr{vdom.A("class", "container")}, nil,
				vdom.Elem("h1", nil, nil, vdom.Text("Title")),
				vdom.Elem("p", nil, nil, vdom.Text("Content")),
			),
			want: `<div class="container"><h1>Title</h1><p>Content</p></div>`,
		},
		{
			name: "void element",
			node: vdom.Elem("input", []vdom.Attr{vdom.A("type", "text")}, nil),
			want: `<input type="text">`,
		},
		{
			name: "boolean attributes",
			node: vdom.Elem("input", []vdom.Attr{vdom.Flag("disabled", true), vdom.Flag("checked", false)}, nil),
			want: `<input disabled>`,
		},
		{
			name: "attribute escaping",
			node: vdom.Elem("a", []vdom.Attr{vdom.A("title", "a \"b\"\n<c>")}, nil),
			want: `<a title="a &quot;b&quot;&#10;&lt;c&gt;"></a>`,
		},
		{
			name: "key omitted",
			node: vdom.Elem("li", []vdom.Attr{vdom.A("key", "k1"), vdom.A("id", "x")}, nil),
			want: `<li id="x"></li>`,
		},
		{
			name: "duplicate attribute last wins",
			node: vdom.Elem("div", []vdom.Attr{vdom.A("class", "a"), vdom.A("id", "x"), vdom.A("class", "b")}, nil),
			want: `<div class="b" id="x"></div>`,
		},
		{
			name: "handlers",
			node: vdom.Elem("button", nil, []vdom.Binding{vdom.On("click", "h1")}, vdom.Text("+")),
			want: `<button data-on-click="h1">+</button>`,
		},
		{
			name: "null children",
			node: vdom.Elem("ul", nil, nil, vdom.Null(), vdom.Elem("li", nil, nil), vdom.Null()),
			want: `<ul><li></li></ul>`,
		},
	}

	r := NewRenderer(RendererConfig{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.RenderToString(tt.node)
			if err != nil {
				t.Fatalf("RenderToString() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("RenderToString() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderOmitHandlers(t *testing.T) {
	r := NewRenderer(RendererConfig{OmitHandlers: true})
	got, err := r.RenderToString(vdom.Elem("button", nil, []vdom.Binding{vdom.On("click", "h1")}))
	if err != nil {
		t.Fatal(err)
	}
	if got != "<button></button>" {
		t.Errorf("got %q", got)
	}
}

func TestRenderInvalidNames(t *testing.T) {
	tests := []vdom.Node{
		vdom.Elem("div onload=x", nil, nil),
		vdom.Elem("div", []vdom.Attr{vdom.A("a b", "c")}, nil),
		vdom.Elem("div", nil, []vdom.Binding{vdom.On("click\"", "h")}),
		vdom.Elem("", nil, nil),
	}
	r := NewRenderer(RendererConfig{})
	for _, node := range tests {
		if _, err := r.RenderToString(node); !errors.Is(err, ErrInvalidName) {
			t.Errorf("RenderToString(%v) error = %v, want %v", node, err, ErrInvalidName)
		}
	}
}

func TestRenderPretty(t *testing.T) {
	r := NewRenderer(RendererConfig{Pretty: true})
	node := vdom.Elem("div", nil, nil,
		vdom.Text("0"),
		vdom.Elem("span", nil, nil, vdom.Text("x")),
	)
	got, err := r.RenderToString(node)
	if err != nil {
		t.Fatal(err)
	}
	want := "<div>\n  0\n  <span>x</span>\n</div>\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestRenderWriterError(t *testing.T) {
	r := NewRenderer(RendererConfig{})
	err := r.RenderToWriter(failingWriter{}, vdom.Elem("div", nil, nil, vdom.Text("x")))
	if err == nil || err.Error() != "disk full" {
		t.Errorf("RenderToWriter() error = %v, want disk full", err)
	}
}

func TestRenderPage(t *testing.T) {
	r := NewRenderer(RendererConfig{})
	var buf bytes.Buffer
	err := r.RenderPage(&buf, PageData{
		Title:       "Counter <1>",
		Body:        vdom.Elem("p", nil, nil, vdom.Text("0")),
		StyleSheets: []string{"/app.css"},
		Meta:        []MetaTag{{Name: "description", Content: "demo"}},
		Scripts:     []ScriptTag{{Src: "/client.js", Defer: true}},
		LivePath:    "/live",
	})
	if err != nil {
		t.Fatalf("RenderPage() error = %v", err)
	}
	html := buf.String()

	for _, want := range []string{
		"<!DOCTYPE html>\n",
		`<html lang="en">`,
		"<title>Counter &lt;1&gt;</title>",
		`<meta name="description" content="demo">`,
		`<link rel="stylesheet" href="/app.css">`,
		`<div id="app" data-live="/live"><p>0</p></div>`,
		`<script src="/client.js" defer></script>`,
		"</html>\n",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("page missing %q\n%s", want, html)
		}
	}
}
