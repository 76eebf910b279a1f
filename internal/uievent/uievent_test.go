package uievent

import "testing"

func TestStringRendersPlainRuneBare(t *testing.T) {
	k := Key{Kind: KeyRune, Rune: 'x'}
	if got := k.String(); got != "x" {
		t.Fatalf("String() = %q, want %q", got, "x")
	}
}

func TestStringRendersModifiedKeyWithAngleBrackets(t *testing.T) {
	k := Key{Kind: KeyRune, Rune: 'w', Modifiers: ModCtrl}
	if got := k.String(); got != "<C-w>" {
		t.Fatalf("String() = %q, want %q", got, "<C-w>")
	}
}

func TestStringOrdersModifiersCtrlAltShift(t *testing.T) {
	k := Key{Kind: KeyEscape, Modifiers: ModCtrl | ModAlt | ModShift}
	if got := k.String(); got != "<C-A-S-Esc>" {
		t.Fatalf("String() = %q, want %q", got, "<C-A-S-Esc>")
	}
}

func TestStringRendersNamedKeys(t *testing.T) {
	cases := []struct {
		kind KeyKind
		want string
	}{
		{KeyEnter, "Enter"},
		{KeyEscape, "Esc"},
		{KeyTab, "Tab"},
		{KeyBackspace, "BS"},
		{KeyDelete, "Del"},
		{KeyUp, "Up"},
		{KeyDown, "Down"},
		{KeyLeft, "Left"},
		{KeyRight, "Right"},
		{KeyHome, "Home"},
		{KeyEnd, "End"},
		{KeyPageUp, "PgUp"},
		{KeyPageDown, "PgDn"},
	}
	for _, c := range cases {
		k := Key{Kind: c.kind}
		if got := k.String(); got != c.want {
			t.Fatalf("String() for %v = %q, want %q", c.kind, got, c.want)
		}
	}
}

func TestStringRendersFunctionKeyNumber(t *testing.T) {
	k := Key{Kind: KeyFunction, Rune: 5}
	if got := k.String(); got != "F5" {
		t.Fatalf("String() = %q, want %q", got, "F5")
	}
}

func TestModifiersHasChecksIndividualFlags(t *testing.T) {
	m := ModCtrl | ModShift
	if !m.Has(ModCtrl) {
		t.Fatal("expected Has(ModCtrl) to be true")
	}
	if m.Has(ModAlt) {
		t.Fatal("expected Has(ModAlt) to be false")
	}
}
