package render

import (
	"fmt"
	"sort"

	"golang.org/x/text/width"

	"github.com/xonecas/editorcore/internal/highlightcache"
	"github.com/xonecas/editorcore/internal/rope"
	"github.com/xonecas/editorcore/internal/selection"
	"github.com/xonecas/editorcore/internal/theme"
)

// wrapMarkerText is the indent marker emitted at the head of every
// soft-wrapped continuation row.
const wrapMarkerText = "↪"

// runeCols reports a rune's terminal column width, widening East Asian
// wide/fullwidth runes to 2.
func runeCols(r rune) int {
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return 2
	default:
		return 1
	}
}

type visRow struct {
	bufLine     int
	subRow      int
	segRuneFrom int
	segRuneTo   int
	text        string
}

// buildGutterLines emits one GutterLine per screen row, blank on
// continuation (wrapped) rows.
func buildGutterLines(rows []visRow, gutterWidth int, cfg GutterConfig, styles Styles, diagnosticLines, diffLines map[int]bool) []GutterLine {
	if gutterWidth == 0 {
		return nil
	}
	lines := make([]GutterLine, 0, len(rows))
	for i, r := range rows {
		gl := GutterLine{Row: i}
		if r.subRow != 0 {
			gl.Spans = []GutterSpan{{Col: 0, Text: "", Style: styles.Gutter}}
			lines = append(lines, gl)
			continue
		}
		col := 0
		if cfg.ShowLineNumbers {
			digitsWidth := gutterWidth
			if cfg.ShowDiagnostic {
				digitsWidth--
			}
			if cfg.ShowDiff {
				digitsWidth--
			}
			digitsWidth-- // trailing space
			if digitsWidth < 1 {
				digitsWidth = 1
			}
			sty := styles.Gutter
			text := fmt.Sprintf("%*d ", digitsWidth, r.bufLine+1)
			gl.Spans = append(gl.Spans, GutterSpan{Col: col, Text: text, Style: sty})
			col += len(text)
		}
		if cfg.ShowDiagnostic {
			mark := " "
			if diagnosticLines[r.bufLine] {
				mark = "!"
			}
			gl.Spans = append(gl.Spans, GutterSpan{Col: col, Text: mark, Style: styles.Gutter})
			col++
		}
		if cfg.ShowDiff {
			mark := " "
			if diffLines[r.bufLine] {
				mark = "~"
			}
			gl.Spans = append(gl.Spans, GutterSpan{Col: col, Text: mark, Style: styles.Gutter})
			col++
		}
		lines = append(lines, gl)
	}
	return lines
}

// buildTextLines queries hl for each row's byte range, merges adjacent
// spans sharing a highlight, and emits one RenderLine per screen row.
func buildTextLines(text rope.Rope, rows []visRow, hl HighlightSource, th *theme.Theme) []RenderLine {
	lines := make([]RenderLine, 0, len(rows))
	for i, r := range rows {
		lineCharStart := text.LineToChar(r.bufLine)
		segByteStart := text.CharToByte(lineCharStart + r.segRuneFrom)
		segByteEnd := text.CharToByte(lineCharStart + r.segRuneTo)

		var spans []highlightcache.Span
		if hl != nil {
			spans = hl.Highlights([2]uint32{uint32(segByteStart), uint32(segByteEnd)})
		}

		lines = append(lines, RenderLine{Row: i, Spans: buildSpansForSegment(r.text, segByteStart, spans)})
	}
	return lines
}

// buildSpansForSegment slices seg's plain text into RenderSpans according
// to the highlight spans intersecting its byte range, merging adjacent
// spans with identical highlights.
func buildSpansForSegment(seg string, segByteStart int, highlights []highlightcache.Span) []RenderSpan {
	runes := []rune(seg)
	if len(runes) == 0 {
		return nil
	}
	// byteOfRune[i] = byte offset (relative to segByteStart) of rune i.
	byteOfRune := make([]int, len(runes)+1)
	b := 0
	for i, r := range runes {
		byteOfRune[i] = b
		b += runeLen(r)
	}
	byteOfRune[len(runes)] = b

	type labeled struct {
		highlight highlightcache.Highlight
		has       bool
	}
	colLabel := make([]labeled, len(runes))
	for _, hspan := range highlights {
		startRel := int(hspan.Start) - segByteStart
		endRel := int(hspan.End) - segByteStart
		for col := 0; col < len(runes); col++ {
			if byteOfRune[col] >= startRel && byteOfRune[col] < endRel {
				colLabel[col] = labeled{highlight: hspan.Highlight, has: true}
			}
		}
	}

	var spans []RenderSpan
	col := 0
	cellCol := 0
	for col < len(runes) {
		start := col
		startCell := cellCol
		cur := colLabel[col]
		for col < len(runes) && colLabel[col] == cur {
			cellCol += runeCols(runes[col])
			col++
		}
		spans = append(spans, RenderSpan{
			Col:          startCell,
			Cols:         cellCol - startCell,
			Text:         string(runes[start:col]),
			Highlight:    cur.highlight,
			HasHighlight: cur.has,
		})
	}
	return spans
}

func runeLen(r rune) int {
	switch {
	case r < 0x80:
		return 1
	case r < 0x800:
		return 2
	case r < 0x10000:
		return 3
	default:
		return 4
	}
}

// segmentCellWidth returns the cumulative display-cell width of the runes
// in [segRuneFrom, upTo) of a visRow's underlying line text, the same
// east-asian-aware width buildSpansForSegment uses for RenderSpan.Cols, so
// a cursor/selection boundary lands on the same column a span boundary
// would.
func segmentCellWidth(lineRunes []rune, segRuneFrom, upTo int) int {
	cells := 0
	for i := segRuneFrom; i < upTo && i < len(lineRunes); i++ {
		cells += runeCols(lineRunes[i])
	}
	return cells
}

// mapCharToCell finds the (row, col) screen cell a char offset maps to
// among rows, accounting for soft-wrap segmentation and east-asian column
// width.
func mapCharToCell(text rope.Rope, rows []visRow, charPos int) (Position, bool) {
	line := text.CharToLine(charPos)
	lineCharStart := text.LineToChar(line)
	runeInLine := charPos - lineCharStart
	lineRunes := []rune(text.Line(line))

	for i, r := range rows {
		if r.bufLine != line {
			continue
		}
		if runeInLine >= r.segRuneFrom && runeInLine <= r.segRuneTo {
			col := segmentCellWidth(lineRunes, r.segRuneFrom, runeInLine)
			return Position{Row: i, Col: col}, true
		}
	}
	return Position{}, false
}

// buildCursors maps every selection range's head through wrap/tab layout
// into a screen cell.
func buildCursors(doc DocumentView, view View, rows []visRow, tabWidth int, styles Styles) []RenderCursor {
	var cursors []RenderCursor
	for _, rg := range doc.Selection.Ranges() {
		pos, ok := mapCharToCell(doc.Text, rows, rg.Head)
		if !ok {
			continue
		}
		sty := styles.Cursor
		if rg.ID == view.ActiveCursor {
			sty = styles.ActiveCursor
		}
		cursors = append(cursors, RenderCursor{ID: rg.ID, Pos: pos, Kind: CursorBlock, Style: sty})
	}
	return cursors
}

// clipCursors is used for the zero-height viewport edge case.
func clipCursors(sel selection.Selection, active selection.CursorId, _ []visRow) []RenderCursor {
	var out []RenderCursor
	for _, rg := range sel.Ranges() {
		out = append(out, RenderCursor{ID: rg.ID, Pos: Position{Row: -1, Col: -1}, Kind: CursorBlock})
	}
	return out
}

// buildSelections decomposes each non-empty range into row-major rectangles
// covering its spanned screen cells.
func buildSelections(doc DocumentView, rows []visRow, tabWidth, gutterWidth int, styles Styles) []RenderSelection {
	var out []RenderSelection
	for _, rg := range doc.Selection.Ranges() {
		if rg.IsEmpty() {
			continue
		}
		fromPos, fromOK := mapCharToCell(doc.Text, rows, rg.From())
		toPos, toOK := mapCharToCell(doc.Text, rows, rg.To())
		if !fromOK || !toOK {
			continue
		}
		if fromPos.Row == toPos.Row {
			out = append(out, RenderSelection{
				Rect:  Rect{X: gutterWidth + fromPos.Col, Y: fromPos.Row, Width: toPos.Col - fromPos.Col, Height: 1},
				Style: styles.Selection,
			})
			continue
		}
		for row := fromPos.Row; row <= toPos.Row; row++ {
			if row < 0 || row >= len(rows) {
				continue
			}
			startCol := 0
			if row == fromPos.Row {
				startCol = fromPos.Col
			}
			endCol := segmentCellWidth([]rune(rows[row].text), 0, len([]rune(rows[row].text)))
			if row == toPos.Row {
				endCol = toPos.Col
			}
			if endCol <= startCol {
				continue
			}
			out = append(out, RenderSelection{
				Rect:  Rect{X: gutterWidth + startCol, Y: row, Width: endCol - startCol, Height: 1},
				Style: styles.Selection,
			})
		}
	}
	return out
}

// applyVirtualSpans merges auto-generated wrap-continuation markers and the
// caller-supplied inline annotations into lines as is_virtual spans, sorted
// into column order alongside the real text. Virtual spans never advance
// the buffer's character offset — they exist only in screen-cell space.
func applyVirtualSpans(text rope.Rope, rows []visRow, ann TextAnnotations, lines []RenderLine) {
	byRow := make(map[int][]RenderSpan)

	for i, r := range rows {
		if r.subRow == 0 {
			continue
		}
		byRow[i] = append(byRow[i], virtualSpan(0, Annotation{Kind: AnnotationWrapMarker, Text: wrapMarkerText}))
	}

	for _, a := range ann.Inline {
		line := text.CharToLine(a.CharPos)
		lineCharStart := text.LineToChar(line)
		runeInLine := a.CharPos - lineCharStart
		lineRunes := []rune(text.Line(line))
		for i, r := range rows {
			if r.bufLine != line || runeInLine < r.segRuneFrom || runeInLine > r.segRuneTo {
				continue
			}
			col := segmentCellWidth(lineRunes, r.segRuneFrom, runeInLine)
			byRow[i] = append(byRow[i], virtualSpan(col, a))
			break
		}
	}

	for row, extra := range byRow {
		if row < 0 || row >= len(lines) {
			continue
		}
		lines[row].Spans = append(lines[row].Spans, extra...)
		sort.SliceStable(lines[row].Spans, func(i, j int) bool {
			return lines[row].Spans[i].Col < lines[row].Spans[j].Col
		})
	}
}

func virtualSpan(col int, a Annotation) RenderSpan {
	return RenderSpan{
		Col:          col,
		Cols:         len([]rune(a.Text)),
		Text:         a.Text,
		Highlight:    a.Highlight,
		HasHighlight: a.Highlight != "",
		IsVirtual:    true,
	}
}

// buildOverlays copies ann.Overlays in ascending z-index order, so that
// among overlays targeting overlapping screen space, ties are broken by
// push order and the higher z-index (or the later-pushed, for equal
// z-index) renders last and wins.
func buildOverlays(ann TextAnnotations) []OverlayNode {
	if len(ann.Overlays) == 0 {
		return nil
	}
	out := append([]OverlayNode(nil), ann.Overlays...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ZIndex < out[j].ZIndex })
	return out
}
