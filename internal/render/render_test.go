package render

import (
	"strings"
	"testing"

	"github.com/xonecas/editorcore/internal/rope"
	"github.com/xonecas/editorcore/internal/selection"
)

func docView(text string, sel selection.Selection) DocumentView {
	return DocumentView{Text: rope.New(text), Selection: sel}
}

// TestBuildWrapsLongLineAcrossScreenRows checks that a three-line document
// in a 40x3 viewport with soft wrap on and a 100-char second line still
// produces exactly one RenderLine/GutterLine per screen row, with
// continuation rows carrying a blank gutter and content_offset_x equal to
// the gutter width.
func TestBuildWrapsLongLineAcrossScreenRows(t *testing.T) {
	long := strings.Repeat("x", 100)
	text := "one\n" + long + "\nthree\n"
	sel := selection.PointSelection(0)
	doc := docView(text, sel)

	view := View{Viewport: Rect{X: 0, Y: 0, Width: 40, Height: 3}}
	format := TextFormat{SoftWrap: true, TabWidth: 4}
	gutter := GutterConfig{ShowLineNumbers: true}

	plan := Build(doc, view, format, gutter, TextAnnotations{}, NoHighlights{}, nil, Styles{}, nil, nil)

	if len(plan.Lines) != 3 {
		t.Fatalf("len(Lines) = %d, want 3", len(plan.Lines))
	}
	if len(plan.GutterLines) != 3 {
		t.Fatalf("len(GutterLines) = %d, want 3", len(plan.GutterLines))
	}
	if plan.ContentOffsetX != plan.GutterLines[0].Spans[0].Col+len(plan.GutterLines[0].Spans[0].Text) {
		t.Fatalf("ContentOffsetX = %d, want the computed gutter width", plan.ContentOffsetX)
	}
	// Row 1 is the wrapped continuation of the long second line: its
	// gutter must be blank.
	if len(plan.GutterLines[1].Spans) != 1 || plan.GutterLines[1].Spans[0].Text != "" {
		t.Fatalf("GutterLines[1] = %+v, want a single blank span", plan.GutterLines[1])
	}
}

func TestBuildZeroHeightViewportYieldsNoLines(t *testing.T) {
	sel := selection.PointSelection(2)
	doc := docView("hello", sel)
	view := View{Viewport: Rect{Width: 10, Height: 0}}

	plan := Build(doc, view, TextFormat{}, GutterConfig{}, TextAnnotations{}, NoHighlights{}, nil, Styles{}, nil, nil)

	if len(plan.Lines) != 0 {
		t.Fatalf("len(Lines) = %d, want 0", len(plan.Lines))
	}
	if len(plan.Cursors) != 1 || plan.Cursors[0].Pos != (Position{Row: -1, Col: -1}) {
		t.Fatalf("Cursors = %+v, want a single off-screen sentinel cursor", plan.Cursors)
	}
}

func TestBuildCursorMapsToWrappedRow(t *testing.T) {
	long := strings.Repeat("a", 50)
	sel := selection.PointSelection(45) // lands in the third wrapped segment (chars 40-50)
	doc := docView(long, sel)
	view := View{Viewport: Rect{Width: 20, Height: 5}}
	format := TextFormat{SoftWrap: true, TabWidth: 4}

	plan := Build(doc, view, format, GutterConfig{}, TextAnnotations{}, NoHighlights{}, nil, Styles{}, nil, nil)

	if len(plan.Cursors) != 1 {
		t.Fatalf("len(Cursors) = %d, want 1", len(plan.Cursors))
	}
	if plan.Cursors[0].Pos.Row != 2 {
		t.Fatalf("Cursors[0].Pos.Row = %d, want 2 (third 20-wide wrapped segment)", plan.Cursors[0].Pos.Row)
	}
}

func TestBuildSelectionSpansSingleRow(t *testing.T) {
	ranges := []selection.Range{selection.NewRange(0, 5)}
	sel, err := selection.New(ranges, 0)
	if err != nil {
		t.Fatalf("selection.New: %v", err)
	}
	doc := docView("hello world", sel)
	view := View{Viewport: Rect{Width: 40, Height: 1}}

	plan := Build(doc, view, TextFormat{}, GutterConfig{}, TextAnnotations{}, NoHighlights{}, nil, Styles{}, nil, nil)

	if len(plan.Selections) != 1 {
		t.Fatalf("len(Selections) = %d, want 1", len(plan.Selections))
	}
	if plan.Selections[0].Rect.Width != 5 {
		t.Fatalf("Selections[0].Rect.Width = %d, want 5", plan.Selections[0].Rect.Width)
	}
}

func TestComputeGutterWidthZeroWhenAllDisabled(t *testing.T) {
	if w := computeGutterWidth(100, GutterConfig{}); w != 0 {
		t.Fatalf("computeGutterWidth = %d, want 0", w)
	}
}

func TestExpandTabsAlignsToTabWidth(t *testing.T) {
	got := expandTabs("a\tb", 4)
	if got != "a   b" {
		t.Fatalf("expandTabs = %q, want %q", got, "a   b")
	}
}

// TestBuildEmitsInlineAnnotationAsVirtualSpan checks that an Annotation in
// TextAnnotations.Inline surfaces as a non-buffer-advancing RenderSpan on
// the line it targets, rather than being silently dropped.
func TestBuildEmitsInlineAnnotationAsVirtualSpan(t *testing.T) {
	sel := selection.PointSelection(0)
	doc := docView("hello world\n", sel)
	view := View{Viewport: Rect{Width: 40, Height: 2}}

	ann := TextAnnotations{Inline: []Annotation{
		{Kind: AnnotationInlineHint, CharPos: 5, Text: "<-here"},
	}}
	plan := Build(doc, view, TextFormat{}, GutterConfig{}, ann, NoHighlights{}, nil, Styles{}, nil, nil)

	var found bool
	for _, span := range plan.Lines[0].Spans {
		if span.IsVirtual && span.Text == "<-here" {
			found = true
			if span.Col != 5 {
				t.Fatalf("virtual span Col = %d, want 5", span.Col)
			}
		}
	}
	if !found {
		t.Fatal("expected an IsVirtual span carrying the inline annotation's text")
	}
}

// TestBuildEmitsWrapMarkerOnContinuationRow checks the auto-generated
// wrap-continuation marker (spec §4.10 step 2) appears at the head of a
// soft-wrapped row, and nowhere else.
func TestBuildEmitsWrapMarkerOnContinuationRow(t *testing.T) {
	long := strings.Repeat("x", 80)
	sel := selection.PointSelection(0)
	doc := docView(long+"\n", sel)
	view := View{Viewport: Rect{Width: 40, Height: 2}}
	format := TextFormat{SoftWrap: true, TabWidth: 4}

	plan := Build(doc, view, format, GutterConfig{}, TextAnnotations{}, NoHighlights{}, nil, Styles{}, nil, nil)

	if len(plan.Lines) < 2 {
		t.Fatalf("len(Lines) = %d, want at least 2 wrapped rows", len(plan.Lines))
	}
	for _, span := range plan.Lines[0].Spans {
		if span.IsVirtual {
			t.Fatalf("first row should carry no wrap marker, got %+v", span)
		}
	}
	var marker *RenderSpan
	for i := range plan.Lines[1].Spans {
		if plan.Lines[1].Spans[i].IsVirtual {
			marker = &plan.Lines[1].Spans[i]
		}
	}
	if marker == nil {
		t.Fatal("expected the continuation row to carry a wrap-marker virtual span")
	}
	if marker.Col != 0 {
		t.Fatalf("wrap marker Col = %d, want 0", marker.Col)
	}
}

// TestBuildOverlaysOrderedByZIndexTies checks that among overlays at the
// same z-index, the later-pushed one sorts last (wins the tie).
func TestBuildOverlaysOrderedByZIndexTies(t *testing.T) {
	sel := selection.PointSelection(0)
	doc := docView("hi\n", sel)
	view := View{Viewport: Rect{Width: 40, Height: 2}}

	ann := TextAnnotations{Overlays: []OverlayNode{
		{Kind: OverlayText, Text: "first", ZIndex: 1},
		{Kind: OverlayText, Text: "second", ZIndex: 1},
		{Kind: OverlayText, Text: "background", ZIndex: 0},
	}}
	plan := Build(doc, view, TextFormat{}, GutterConfig{}, ann, NoHighlights{}, nil, Styles{}, nil, nil)

	if len(plan.Overlays) != 3 {
		t.Fatalf("len(Overlays) = %d, want 3", len(plan.Overlays))
	}
	if plan.Overlays[0].Text != "background" {
		t.Fatalf("Overlays[0].Text = %q, want %q (lowest z-index first)", plan.Overlays[0].Text, "background")
	}
	if plan.Overlays[len(plan.Overlays)-1].Text != "second" {
		t.Fatalf("last overlay = %q, want %q (later push wins the z-index tie)", plan.Overlays[len(plan.Overlays)-1].Text, "second")
	}
}
