package diagnostics

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// Reporter renders Diagnostics against one source file in the Rust-style
// `error[kind]: message` / `--> file:line:col` / caret form.
type Reporter struct {
	filename string
	lines    []string
}

// NewReporter creates a Reporter over filename's source text.
func NewReporter(filename, source string) *Reporter {
	return &Reporter{filename: filename, lines: strings.Split(source, "\n")}
}

// Render formats d, including a source snippet and caret when d carries a
// position.
func (r *Reporter) Render(d *Diagnostic) string {
	var b strings.Builder

	levelColor := color.New(color.FgRed, color.Bold).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	fmt.Fprintf(&b, "%s[%s]: %s\n", levelColor("error"), d.Kind, d.Message)

	if d.Pos == nil {
		return b.String()
	}

	width := lineNumberWidth(d.Pos.Line)
	indent := strings.Repeat(" ", width)

	fmt.Fprintf(&b, "%s %s %s:%d:%d\n", indent, dim("-->"), r.filename, d.Pos.Line, d.Pos.Column)
	fmt.Fprintf(&b, "%s %s\n", indent, dim("│"))

	if d.Pos.Line > 0 && d.Pos.Line <= len(r.lines) {
		fmt.Fprintf(&b, "%s %s %s\n",
			bold(fmt.Sprintf("%*d", width, d.Pos.Line)), dim("│"), r.lines[d.Pos.Line-1])
		marker := strings.Repeat(" ", max0(d.Pos.Column-1)) + levelColor("^")
		fmt.Fprintf(&b, "%s %s %s\n", indent, dim("│"), marker)
	}

	return b.String()
}

func lineNumberWidth(line int) int {
	w := len(fmt.Sprintf("%d", line))
	if w < 3 {
		w = 3
	}
	return w
}

func max0(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
