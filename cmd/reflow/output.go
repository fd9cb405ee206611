package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vango-dev/reflow/internal/errors"
	"github.com/vango-dev/reflow/pkg/vdom"
)

var (
	styleAdd    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	styleRemove = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	styleChange = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	styleDim    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	styleBold   = lipgloss.NewStyle().Bold(true)
	styleOK     = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
)

var colorOn = true

// setColor switches styled output for this package and for error reports.
func setColor(on bool) {
	colorOn = on
	if on {
		errors.EnableColors()
	} else {
		errors.DisableColors()
	}
}

func paint(s lipgloss.Style, text string) string {
	if !colorOn {
		return text
	}
	return s.Render(text)
}

// success prints a success line.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", paint(styleOK, "✓"), fmt.Sprintf(format, args...))
}

// info prints an indented info line.
func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(format, args...))
}

// printDiff writes d as an indented tree, one operation per line.
func printDiff(w io.Writer, d vdom.Diff, depth int) {
	indent := strings.Repeat("  ", depth)
	switch d.Op {
	case vdom.OpPatchChild:
		fmt.Fprintf(w, "%s%s %s\n", indent, paint(styleChange, "~"), paint(styleDim, fmt.Sprintf("child %d", d.Index)))
		for _, c := range d.Children {
			printDiff(w, c, depth+1)
		}

	case vdom.OpAddChild:
		fmt.Fprintf(w, "%s%s %s %s\n", indent, paint(styleAdd, "+"), paint(styleDim, fmt.Sprintf("child %d", d.Index)), describe(d.Node))

	case vdom.OpReplaceChild:
		fmt.Fprintf(w, "%s%s %s %s\n", indent, paint(styleChange, "="), paint(styleDim, fmt.Sprintf("child %d", d.Index)), describe(d.Node))

	case vdom.OpRemoveChild:
		fmt.Fprintf(w, "%s%s %s\n", indent, paint(styleRemove, "-"), paint(styleDim, fmt.Sprintf("child %d", d.Index)))

	case vdom.OpSetAttribute:
		fmt.Fprintf(w, "%s%s @%s=%s\n", indent, paint(styleAdd, "+"), d.Key, describeValue(d.Value))

	case vdom.OpRemoveAttribute:
		fmt.Fprintf(w, "%s%s @%s\n", indent, paint(styleRemove, "-"), d.Key)

	case vdom.OpSetHandler:
		fmt.Fprintf(w, "%s%s on:%s → %s\n", indent, paint(styleAdd, "+"), d.Kind, d.ID)

	case vdom.OpRemoveHandler:
		fmt.Fprintf(w, "%s%s on:%s (%s)\n", indent, paint(styleRemove, "-"), d.Kind, d.ID)

	default:
		fmt.Fprintf(w, "%s? %s\n", indent, d.Op)
	}
}

func describe(n vdom.Node) string {
	switch n.Kind {
	case vdom.KindText:
		return fmt.Sprintf("%q", n.Text)
	case vdom.KindElement:
		if n.Element == nil {
			return "<nil>"
		}
		s := "<" + n.Element.Name
		if k, ok := n.Element.Key(); ok {
			s += fmt.Sprintf(" key=%q", k)
		}
		return paint(styleBold, s+">")
	default:
		return "null"
	}
}

func describeValue(v vdom.Value) string {
	if b, ok := v.Flag(); ok {
		return fmt.Sprint(b)
	}
	return fmt.Sprintf("%q", v.String())
}

// printStats writes the per-operation counts of d, in opcode order.
func printStats(w io.Writer, d vdom.Diff) {
	counts := vdom.Count(d)
	for op := vdom.OpSetAttribute; op <= vdom.OpRemoveHandler; op++ {
		if n := counts[op]; n > 0 {
			info(w, "%-16s %d", op, n)
		}
	}
}
