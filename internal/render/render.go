// Package render implements the RenderPlan builder: a pure function from
// (Document, View, TextFormat, Gutter, Annotations, HighlightSource, Theme)
// to a flat, reference-free RenderPlan a backend consumes in any order.
//
// Visual rows are built the way a terminal UI would lay them out directly
// (expandTabs/wrapPlain, per-line highlight block, selection and cursor
// intersection against a segment), except the result is a plain data
// structure instead of an ANSI string — a renderer can turn it into an ANSI
// string, a GPU vertex buffer, or anything else.
package render

import (
	"strings"

	"github.com/xonecas/editorcore/internal/highlightcache"
	"github.com/xonecas/editorcore/internal/rope"
	"github.com/xonecas/editorcore/internal/selection"
	"github.com/xonecas/editorcore/internal/theme"
)

// Rect is an integer-celled rectangle.
type Rect struct {
	X, Y, Width, Height int
}

// Position is a (row, col) cell coordinate.
type Position struct {
	Row, Col int
}

// View is the viewport, scroll offset, and active cursor.
type View struct {
	Viewport     Rect
	Scroll       Position
	ActiveCursor selection.CursorId
}

// TextFormat controls tab/wrap layout.
type TextFormat struct {
	SoftWrap bool
	TabWidth int
}

// GutterConfig toggles gutter components.
type GutterConfig struct {
	ShowLineNumbers bool
	ShowDiagnostic  bool
	ShowDiff        bool
}

// AnnotationKind distinguishes an inline annotation's purpose.
type AnnotationKind int

const (
	AnnotationInlineHint AnnotationKind = iota
	AnnotationWrapMarker
)

// Annotation is a single inline, non-buffer-advancing marker attached to a
// char offset: an inline hint, overlay, or wrapping marker.
type Annotation struct {
	Kind      AnnotationKind
	CharPos   int
	Text      string
	Highlight highlightcache.Highlight
}

// TextAnnotations groups the annotation/overlay inputs to a build.
type TextAnnotations struct {
	Inline   []Annotation
	Overlays []OverlayNode
}

// HighlightSource is the pure interface RenderPlan queries for syntax
// highlights over a byte range.
type HighlightSource interface {
	Highlights(byteRange [2]uint32) []highlightcache.Span
}

// NoHighlights is the degrade-gracefully HighlightSource.
type NoHighlights struct{}

func (NoHighlights) Highlights([2]uint32) []highlightcache.Span { return nil }

// Styles bundles the render styles that travel alongside the structural
// inputs: selection, cursor, active cursor, gutter, gutter-active.
type Styles struct {
	Selection    theme.Style
	Cursor       theme.Style
	ActiveCursor theme.Style
	Gutter       theme.Style
	GutterActive theme.Style
}

// ---------------------------------------------------------------------------
// RenderPlan value types
// ---------------------------------------------------------------------------

// GutterSpan is one cell run within a gutter line.
type GutterSpan struct {
	Col   int
	Text  string
	Style theme.Style
}

// GutterLine is the gutter's contribution to one screen row.
type GutterLine struct {
	Row   int
	Spans []GutterSpan
}

// RenderSpan is one run of cells sharing a highlight, within a text line.
type RenderSpan struct {
	Col          int
	Cols         int
	Text         string
	Highlight    highlightcache.Highlight
	HasHighlight bool
	IsVirtual    bool
}

// RenderLine is one screen row of text content.
type RenderLine struct {
	Row   int
	Spans []RenderSpan
}

// CursorKind distinguishes caret rendering shapes.
type CursorKind int

const (
	CursorBlock CursorKind = iota
	CursorBar
	CursorUnderline
)

// RenderCursor is one visible caret.
type RenderCursor struct {
	ID    selection.CursorId
	Pos   Position
	Kind  CursorKind
	Style theme.Style
}

// RenderSelection is one selection rectangle.
type RenderSelection struct {
	Rect  Rect
	Style theme.Style
}

// OverlayKind distinguishes an OverlayNode's shape.
type OverlayKind int

const (
	OverlayRect OverlayKind = iota
	OverlayText
)

// OverlayNode is a positioned rect or text blob drawn above the main plan —
// messages, popups, hint lists.
type OverlayNode struct {
	Kind  OverlayKind
	Rect  Rect
	Text  string
	Style theme.Style
	// ZIndex breaks ties when multiple overlays target overlapping screen
	// space; higher wins.
	ZIndex int
}

// RenderPlan is the pure, reference-free output of Build.
type RenderPlan struct {
	Viewport       Rect
	Scroll         Position
	ContentOffsetX int

	GutterLines []GutterLine
	Lines       []RenderLine
	Cursors     []RenderCursor
	Selections  []RenderSelection
	Overlays    []OverlayNode
}

// ---------------------------------------------------------------------------
// Build
// ---------------------------------------------------------------------------

// DocumentView is the minimal read-only surface Build needs from a
// document, kept narrow so this package does not depend on
// internal/document — Build's data flow is pure and one-directional, so it
// only ever needs to consume a snapshot of document state by value.
type DocumentView struct {
	Text      rope.Rope
	Selection selection.Selection
}

// Build runs the full RenderPlan construction algorithm against doc.
func Build(doc DocumentView, view View, format TextFormat, gutter GutterConfig, ann TextAnnotations, hl HighlightSource, th *theme.Theme, styles Styles, diagnosticLines, diffLines map[int]bool) RenderPlan {
	plan := RenderPlan{Viewport: view.Viewport, Scroll: view.Scroll}

	gutterWidth := computeGutterWidth(doc.Text.LenLines(), gutter)
	plan.ContentOffsetX = gutterWidth

	if view.Viewport.Height <= 0 {
		plan.Cursors = clipCursors(doc.Selection, view.ActiveCursor, nil)
		return plan
	}

	tabWidth := format.TabWidth
	if tabWidth <= 0 {
		tabWidth = 4
	}
	textWidth := view.Viewport.Width - gutterWidth
	if textWidth < 1 {
		textWidth = 1
	}

	var rows []visRow
	bufLine := view.Scroll.Row
	for bufLine < doc.Text.LenLines() && len(rows) < view.Viewport.Height {
		raw := doc.Text.Line(bufLine)
		expanded := expandTabs(raw, tabWidth)

		segments := []string{expanded}
		if format.SoftWrap {
			segments = wrapPlain(expanded, textWidth)
		}

		runeOff := 0
		for sub, seg := range segments {
			if len(rows) >= view.Viewport.Height {
				break
			}
			segLen := len([]rune(seg))
			rows = append(rows, visRow{
				bufLine: bufLine, subRow: sub,
				segRuneFrom: runeOff, segRuneTo: runeOff + segLen,
				text: seg,
			})
			runeOff += segLen
		}
		bufLine++
	}

	plan.GutterLines = buildGutterLines(rows, gutterWidth, gutter, styles, diagnosticLines, diffLines)
	plan.Lines = buildTextLines(doc.Text, rows, hl, th)
	applyVirtualSpans(doc.Text, rows, ann, plan.Lines)
	plan.Cursors = buildCursors(doc, view, rows, tabWidth, styles)
	plan.Selections = buildSelections(doc, rows, tabWidth, gutterWidth, styles)
	plan.Overlays = buildOverlays(ann)
	return plan
}

func computeGutterWidth(totalLines int, cfg GutterConfig) int {
	if !cfg.ShowLineNumbers && !cfg.ShowDiagnostic && !cfg.ShowDiff {
		return 0
	}
	width := 0
	if cfg.ShowLineNumbers {
		width += digits(totalLines) + 1 // +1 for the trailing space
	}
	if cfg.ShowDiagnostic {
		width++
	}
	if cfg.ShowDiff {
		width++
	}
	return width
}

func digits(n int) int {
	if n < 1 {
		n = 1
	}
	d := 0
	for n > 0 {
		d++
		n /= 10
	}
	if d == 0 {
		d = 1
	}
	return d
}

func expandTabs(s string, tabWidth int) string {
	var b strings.Builder
	col := 0
	for _, r := range s {
		if r == '\t' {
			spaces := tabWidth - (col % tabWidth)
			b.WriteString(strings.Repeat(" ", spaces))
			col += spaces
		} else {
			b.WriteRune(r)
			col++
		}
	}
	return b.String()
}

func wrapPlain(s string, width int) []string {
	if width <= 0 {
		return []string{s}
	}
	runes := []rune(s)
	if len(runes) <= width {
		return []string{s}
	}
	var rows []string
	for len(runes) > 0 {
		end := width
		if end > len(runes) {
			end = len(runes)
		}
		rows = append(rows, string(runes[:end]))
		runes = runes[end:]
	}
	return rows
}
