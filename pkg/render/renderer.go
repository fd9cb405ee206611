package render

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/vango-dev/reflow/pkg/vdom"
)

// ErrInvalidName is returned for tag or attribute names that cannot be
// written safely.
var ErrInvalidName = errors.New("render: invalid name")

// RendererConfig configures the HTML renderer.
type RendererConfig struct {
	// Pretty enables indented output. Development only: whitespace between
	// elements is visible in the rendered page.
	Pretty bool

	// Indent is the string used for each level in pretty mode.
	// Default: two spaces.
	Indent string

	// OmitHandlers skips the data-on-* markers.
	OmitHandlers bool
}

// Renderer renders vdom trees as HTML. A Renderer holds no per-render state
// and may be shared.
type Renderer struct {
	config RendererConfig
}

// NewRenderer creates a Renderer.
func NewRenderer(config RendererConfig) *Renderer {
	if config.Indent == "" {
		config.Indent = "  "
	}
	return &Renderer{config: config}
}

// RenderToString renders node to a string.
func (r *Renderer) RenderToString(node vdom.Node) (string, error) {
	var buf bytes.Buffer
	if err := r.RenderToWriter(&buf, node); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderToWriter streams node to w.
func (r *Renderer) RenderToWriter(w io.Writer, node vdom.Node) error {
	ew := &errWriter{w: w}
	r.renderNode(ew, node, 0)
	return ew.err
}

// errWriter remembers the first write or validation error and turns every
// later call into a no-op.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) str(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = io.WriteString(ew.w, s)
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func (ew *errWriter) fail(err error) {
	if ew.err == nil {
		ew.err = err
	}
}

func (r *Renderer) renderNode(w *errWriter, node vdom.Node, depth int) {
	switch node.Kind {
	case vdom.KindText:
		w.str(escapeHTML(node.Text))
	case vdom.KindElement:
		r.renderElement(w, node.Element, depth)
	case vdom.KindNull:
	default:
		w.fail(fmt.Errorf("render: unknown node kind %d", node.Kind))
	}
}

func (r *Renderer) renderElement(w *errWriter, el *vdom.Element, depth int) {
	tag := el.Name
	if !validName(tag) {
		w.fail(fmt.Errorf("%w: tag %q", ErrInvalidName, tag))
		return
	}

	if r.config.Pretty && depth > 0 {
		r.writeIndent(w, depth)
	}

	w.str("<" + tag)
	r.renderAttributes(w, el)

	if isVoidElement(tag) {
		w.str(">")
		if r.config.Pretty {
			w.str("\n")
		}
		return
	}
	w.str(">")

	block := r.config.Pretty && hasContent(el) && !isInlineElement(tag)
	if block {
		w.str("\n")
	}
	for _, child := range el.Children {
		if block && child.Kind == vdom.KindText {
			r.writeIndent(w, depth+1)
			r.renderNode(w, child, depth+1)
			w.str("\n")
			continue
		}
		r.renderNode(w, child, depth+1)
	}
	if block {
		r.writeIndent(w, depth)
	}

	w.str("</" + tag + ">")
	if r.config.Pretty {
		w.str("\n")
	}
}

func hasContent(el *vdom.Element) bool {
	for _, c := range el.Children {
		if !c.IsNull() {
			return true
		}
	}
	return false
}

// renderAttributes writes attributes in first-appearance order with the
// last value written for each key, then the handler markers.
func (r *Renderer) renderAttributes(w *errWriter, el *vdom.Element) {
	seen := make(map[string]bool, len(el.Attrs))
	for _, a := range el.Attrs {
		if seen[a.Key] || a.Key == vdom.KeyAttr {
			continue
		}
		seen[a.Key] = true
		if !validName(a.Key) {
			w.fail(fmt.Errorf("%w: attribute %q", ErrInvalidName, a.Key))
			return
		}

		v, _ := el.Attr(a.Key)
		if on, ok := v.Flag(); ok {
			if on {
				w.str(" " + a.Key)
			}
			continue
		}
		s, _ := v.Str()
		w.printf(` %s="%s"`, a.Key, escapeAttr(s))
	}

	if r.config.OmitHandlers {
		return
	}
	bound := make(map[string]bool, len(el.Handlers))
	for _, h := range el.Handlers {
		if bound[h.Kind] {
			continue
		}
		bound[h.Kind] = true
		if !validName(h.Kind) {
			w.fail(fmt.Errorf("%w: event %q", ErrInvalidName, h.Kind))
			return
		}
		id, _ := el.Handler(h.Kind)
		w.printf(` data-on-%s="%s"`, h.Kind, escapeAttr(id))
	}
}

func (r *Renderer) writeIndent(w *errWriter, depth int) {
	for i := 0; i < depth; i++ {
		w.str(r.config.Indent)
	}
}
