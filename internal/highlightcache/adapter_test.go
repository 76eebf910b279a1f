package highlightcache

import (
	"context"
	"testing"

	"github.com/xonecas/editorcore/internal/loader"
	"github.com/xonecas/editorcore/internal/queries"
	"github.com/xonecas/editorcore/internal/syntax"
	"github.com/xonecas/editorcore/internal/theme"
)

func newGoAdapter(t *testing.T, src []byte) (*SyntaxHighlightAdapter, *syntax.State) {
	t.Helper()
	ldr := loader.Default(queries.Bundled{})
	cfg := ldr.ConfigByID("go")
	if cfg == nil {
		t.Fatal("loader.Default did not register a \"go\" language")
	}

	syn, err := syntax.New(context.Background(), cfg.Language(), "go", src)
	if err != nil {
		t.Fatalf("syntax.New: %v", err)
	}
	st := syntax.NewState(syn)

	th := theme.New("test")
	th.Set("keyword", theme.Style{})
	th.Set("function", theme.Style{})
	th.Set("string", theme.Style{})

	version := uint64(1)
	return &SyntaxHighlightAdapter{
		State:      st,
		Loader:     ldr,
		Theme:      th,
		Cache:      New(),
		DocVersion: func() uint64 { return version },
	}, st
}

func TestSyntaxHighlightAdapterFindsKeywordAndFunctionCaptures(t *testing.T) {
	src := []byte("package main\n\nfunc main() {}\n")
	adapter, _ := newGoAdapter(t, src)

	spans := adapter.Highlights([2]uint32{0, uint32(len(src))})
	if len(spans) == 0 {
		t.Fatal("expected at least one highlight span for a Go source file")
	}

	var sawKeyword, sawFunction bool
	for _, sp := range spans {
		switch sp.Highlight {
		case "keyword":
			sawKeyword = true
		case "function":
			sawFunction = true
		}
		if sp.Start >= sp.End {
			t.Fatalf("span %+v has non-positive width", sp)
		}
	}
	if !sawKeyword {
		t.Error("expected a \"keyword\" capture (e.g. func/package) in the spans")
	}
	if !sawFunction {
		t.Error("expected a \"function\" capture for main's declaration")
	}
}

func TestSyntaxHighlightAdapterClipsToRequestedRange(t *testing.T) {
	src := []byte("package main\n\nfunc main() {}\n")
	adapter, _ := newGoAdapter(t, src)

	want := [2]uint32{0, 7} // just "package"
	spans := adapter.Highlights(want)
	for _, sp := range spans {
		if sp.Start < want[0] || sp.End > want[1] {
			t.Fatalf("span %+v escapes requested range %v", sp, want)
		}
	}
}

func TestSyntaxHighlightAdapterServesFromCacheOnSecondCall(t *testing.T) {
	src := []byte("package main\n")
	adapter, _ := newGoAdapter(t, src)
	want := [2]uint32{0, uint32(len(src))}

	first := adapter.Highlights(want)
	if adapter.Cache.Len() == 0 {
		t.Fatal("expected the first call to populate the cache")
	}
	second := adapter.Highlights(want)
	if len(first) != len(second) {
		t.Fatalf("cached result length = %d, want %d", len(second), len(first))
	}
}
