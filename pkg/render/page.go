package render

import (
	"io"

	"github.com/vango-dev/reflow/pkg/vdom"
)

// PageData contains everything needed to render a complete document.
type PageData struct {
	// Body is the rendered view, placed inside the mount element.
	Body vdom.Node

	// Title is the page title.
	Title string

	// Lang is the html lang attribute. Default: "en".
	Lang string

	// Meta contains extra meta tags.
	Meta []MetaTag

	// StyleSheets contains paths to external stylesheets.
	StyleSheets []string

	// Scripts are appended at the end of the body.
	Scripts []ScriptTag

	// MountID is the id of the element that holds Body. Default: "app".
	MountID string

	// LivePath is the WebSocket path of the live session, exposed to client
	// scripts as data-live on the mount element. Empty means static.
	LivePath string
}

// MetaTag represents a meta element.
type MetaTag struct {
	Name    string
	Content string
}

// ScriptTag represents a script element.
type ScriptTag struct {
	Src    string
	Module bool
	Defer  bool
	Inline string
}

// RenderPage renders a complete HTML document.
func (r *Renderer) RenderPage(w io.Writer, page PageData) error {
	lang := page.Lang
	if lang == "" {
		lang = "en"
	}
	mount := page.MountID
	if mount == "" {
		mount = "app"
	}

	ew := &errWriter{w: w}
	ew.str("<!DOCTYPE html>\n")
	ew.printf("<html lang=\"%s\">\n", escapeAttr(lang))

	ew.str("<head>\n")
	ew.str("  <meta charset=\"utf-8\">\n")
	ew.str("  <meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">\n")
	if page.Title != "" {
		ew.printf("  <title>%s</title>\n", escapeHTML(page.Title))
	}
	for _, m := range page.Meta {
		ew.printf("  <meta name=\"%s\" content=\"%s\">\n", escapeAttr(m.Name), escapeAttr(m.Content))
	}
	for _, href := range page.StyleSheets {
		ew.printf("  <link rel=\"stylesheet\" href=\"%s\">\n", escapeAttr(href))
	}
	ew.str("</head>\n")

	ew.str("<body>\n")
	ew.printf("<div id=\"%s\"", escapeAttr(mount))
	if page.LivePath != "" {
		ew.printf(" data-live=\"%s\"", escapeAttr(page.LivePath))
	}
	ew.str(">")
	r.renderNode(ew, page.Body, 0)
	ew.str("</div>\n")

	for _, s := range page.Scripts {
		renderScript(ew, s)
	}
	ew.str("</body>\n</html>\n")
	return ew.err
}

func renderScript(w *errWriter, s ScriptTag) {
	w.str("<script")
	if s.Src != "" {
		w.printf(" src=\"%s\"", escapeAttr(s.Src))
	}
	if s.Module {
		w.str(" type=\"module\"")
	}
	if s.Defer {
		w.str(" defer")
	}
	w.str(">")
	// Inline scripts are trusted content.
	w.str(s.Inline)
	w.str("</script>\n")
}
