package termrender

import (
	"strings"
	"testing"

	"github.com/xonecas/editorcore/internal/render"
	"github.com/xonecas/editorcore/internal/selection"
	"github.com/xonecas/editorcore/internal/theme"
)

func TestFrameProducesOneRowPerViewportLine(t *testing.T) {
	plan := render.RenderPlan{
		Viewport: render.Rect{Width: 10, Height: 2},
		Lines: []render.RenderLine{
			{Row: 0, Spans: []render.RenderSpan{{Text: "hi"}}},
			{Row: 1, Spans: []render.RenderSpan{{Text: "there"}}},
		},
	}
	rows := Frame(plan, theme.New("t"), theme.Style{}, theme.Style{})
	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(rows))
	}
	if !strings.Contains(rows[0], "hi") {
		t.Fatalf("rows[0] = %q, want it to contain %q", rows[0], "hi")
	}
}

func TestFrameSplicesCursorOntoRow(t *testing.T) {
	plan := render.RenderPlan{
		Viewport: render.Rect{Width: 10, Height: 1},
		Lines: []render.RenderLine{
			{Row: 0, Spans: []render.RenderSpan{{Text: "abcdef"}}},
		},
		Cursors: []render.RenderCursor{
			{ID: selection.CursorId(1), Pos: render.Position{Row: 0, Col: 2}},
		},
	}
	rows := Frame(plan, theme.New("t"), theme.Style{}, theme.Style{})
	if len(rows) != 1 {
		t.Fatalf("len(rows) = %d, want 1", len(rows))
	}
	if rows[0] == "abcdef" {
		t.Fatal("expected the cursor cell to be styled distinctly from plain text")
	}
}
