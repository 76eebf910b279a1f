package theme

import "testing"

func TestResolveLongestPrefixWins(t *testing.T) {
	th := New("test")
	th.Set("function", Style{Modifiers: ModItalic})
	th.Set("function.builtin", Style{Modifiers: ModBold})

	got, ok := th.Resolve("function.builtin")
	if !ok {
		t.Fatal("expected a match for function.builtin")
	}
	if got.Modifiers != ModBold {
		t.Fatalf("Modifiers = %v, want ModBold (longest-prefix entry)", got.Modifiers)
	}
}

func TestResolveFallsBackToShorterPrefix(t *testing.T) {
	th := New("test")
	th.Set("function", Style{Modifiers: ModItalic})

	got, ok := th.Resolve("function.builtin")
	if !ok {
		t.Fatal("expected function to match as an ancestor scope")
	}
	if got.Modifiers != ModItalic {
		t.Fatalf("Modifiers = %v, want ModItalic", got.Modifiers)
	}
}

func TestResolveRejectsNonDottedPrefixCollision(t *testing.T) {
	th := New("test")
	th.Set("function", Style{Modifiers: ModItalic})

	if _, ok := th.Resolve("functional"); ok {
		t.Fatal("\"function\" should not match \"functional\" as a scope prefix")
	}
}

func TestResolveUnknownScope(t *testing.T) {
	th := New("test")
	if _, ok := th.Resolve("keyword"); ok {
		t.Fatal("expected no match in an empty theme")
	}
}
