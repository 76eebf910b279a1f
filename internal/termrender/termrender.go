// Package termrender flattens a render.RenderPlan into ANSI terminal
// frames: one escaped string per screen row, with cursor cells spliced in.
// Selection rectangles are not drawn.
//
// Each line renders once with lipgloss styling, then
// github.com/charmbracelet/x/ansi's Cut/Truncate/Strip slice the
// already-escaped string into before/at/after segments around the cursor
// column, so a reverse-video cursor cell can be inserted without
// re-tokenizing the escape sequences by hand.
package termrender

import (
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/xonecas/editorcore/internal/render"
	"github.com/xonecas/editorcore/internal/theme"
)

// lipglossStyle converts a theme.Style into the equivalent lipgloss.Style,
// mapping Foreground/Background/Bold/Italic/Underline directly.
func lipglossStyle(s theme.Style) lipgloss.Style {
	sty := lipgloss.NewStyle()
	if s.Foreground.IsSet() {
		sty = sty.Foreground(lipgloss.Color(s.Foreground.String()))
	}
	if s.Background.IsSet() {
		sty = sty.Background(lipgloss.Color(s.Background.String()))
	}
	if s.Modifiers&theme.ModBold != 0 {
		sty = sty.Bold(true)
	}
	if s.Modifiers&theme.ModItalic != 0 {
		sty = sty.Italic(true)
	}
	if s.Modifiers&theme.ModUnderline != 0 {
		sty = sty.Underline(true)
	}
	if s.Modifiers&theme.ModStrikethrough != 0 {
		sty = sty.Strikethrough(true)
	}
	return sty
}

// renderGutterLine renders one GutterLine's spans into a plain ANSI string.
func renderGutterLine(gl render.GutterLine, width int) string {
	var b strings.Builder
	for _, span := range gl.Spans {
		b.WriteString(lipglossStyle(span.Style).Render(span.Text))
	}
	out := b.String()
	if width > 0 {
		out = ansi.Truncate(out, width, "")
	}
	return out
}

// renderTextLine renders one RenderLine's spans into a plain ANSI string,
// applying th as a fallback style source for spans whose Highlight names a
// scope not already resolved into a concrete style by the caller.
func renderTextLine(rl render.RenderLine, th *theme.Theme) string {
	var b strings.Builder
	for _, span := range rl.Spans {
		sty := lipgloss.NewStyle()
		if span.HasHighlight && th != nil {
			if resolved, ok := th.Resolve(string(span.Highlight)); ok {
				sty = lipglossStyle(resolved)
			}
		}
		b.WriteString(sty.Render(span.Text))
	}
	return b.String()
}

// spliceCursor inserts a reverse-video cell at col into an already-rendered
// ANSI line, cutting the string around the target column.
func spliceCursor(line string, col int, sty lipgloss.Style) string {
	width := ansi.StringWidth(line)
	if col < 0 {
		return line
	}
	if col >= width {
		pad := strings.Repeat(" ", col-width)
		return line + pad + sty.Render(" ")
	}
	before := ansi.Cut(line, 0, col)
	at := ansi.Cut(line, col, col+1)
	after := ansi.Cut(line, col+1, width)
	return before + sty.Render(ansi.Strip(at)) + after
}

// Frame flattens plan into one ANSI string per screen row, gutter and text
// concatenated, with cursor cells spliced in. selectionStyle is accepted but
// unused: selection rectangles are not drawn.
func Frame(plan render.RenderPlan, th *theme.Theme, cursorStyle, selectionStyle theme.Style) []string {
	rows := make([]string, plan.Viewport.Height)

	gutterByRow := make(map[int]string, len(plan.GutterLines))
	for _, gl := range plan.GutterLines {
		gutterByRow[gl.Row] = renderGutterLine(gl, plan.ContentOffsetX)
	}
	textByRow := make(map[int]string, len(plan.Lines))
	for _, rl := range plan.Lines {
		textByRow[rl.Row] = renderTextLine(rl, th)
	}

	for row := 0; row < plan.Viewport.Height; row++ {
		line := gutterByRow[row] + textByRow[row]
		if plan.Viewport.Width > 0 {
			line = ansi.Truncate(line, plan.Viewport.Width, "")
		}
		rows[row] = line
	}

	csty := lipglossStyle(cursorStyle).Reverse(true)
	for _, c := range plan.Cursors {
		if c.Pos.Row < 0 || c.Pos.Row >= len(rows) {
			continue
		}
		rows[c.Pos.Row] = spliceCursor(rows[c.Pos.Row], plan.ContentOffsetX+c.Pos.Col, csty)
	}

	_ = selectionStyle // selection rectangles are multi-cell; left to a
	// higher layer that owns a full-screen cell buffer.

	return rows
}
