package command

import "testing"

func TestTokenizeQuotingAndEscapes(t *testing.T) {
	toks := Tokenize(`write "hello \"world\"" 'raw $x'`)
	if len(toks) != 3 {
		t.Fatalf("len(toks) = %d, want 3: %+v", len(toks), toks)
	}
	if toks[1].Text != `hello "world"` {
		t.Fatalf("toks[1].Text = %q", toks[1].Text)
	}
	if toks[2].Text != "raw $x" {
		t.Fatalf("toks[2].Text = %q", toks[2].Text)
	}
	for _, tok := range toks {
		if !tok.Terminated {
			t.Fatalf("expected all tokens terminated, got %+v", tok)
		}
	}
}

func TestTokenizeUnterminatedQuote(t *testing.T) {
	toks := Tokenize(`write "oops`)
	if len(toks) != 2 {
		t.Fatalf("len(toks) = %d, want 2", len(toks))
	}
	if toks[1].Terminated {
		t.Fatal("expected the dangling-quote token to report Terminated = false")
	}
}

func TestParseFlagsAndPositionals(t *testing.T) {
	sig := Signature{
		MinPositionals: 1,
		MaxPositionals: -1,
		Flags: []Flag{
			{Name: "force", Alias: 'f'},
			{Name: "output", Alias: 'o', Completions: []string{}},
		},
	}
	inv, err := Parse(`--force -o result.txt file1 file2`, sig, true, nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, ok := inv.Flags["force"]; !ok {
		t.Fatal("expected --force flag present")
	}
	if inv.Flags["output"] != "result.txt" {
		t.Fatalf("Flags[output] = %q, want result.txt", inv.Flags["output"])
	}
	if len(inv.Positionals) != 2 || inv.Positionals[0] != "file1" || inv.Positionals[1] != "file2" {
		t.Fatalf("Positionals = %v", inv.Positionals)
	}
}

func TestParseRejectsUnknownFlagWhenValidating(t *testing.T) {
	sig := Signature{MaxPositionals: -1}
	_, err := Parse(`--bogus`, sig, true, nil)
	if err == nil {
		t.Fatal("expected an error for an unknown flag in validating mode")
	}
}

func TestParseRejectsTooFewPositionals(t *testing.T) {
	sig := Signature{MinPositionals: 2, MaxPositionals: -1}
	_, err := Parse(`onlyone`, sig, true, nil)
	if err == nil {
		t.Fatal("expected a TooFewArguments error")
	}
}

func TestDispatchEventUpdateSkipsValidation(t *testing.T) {
	r := NewRegistry()
	var gotEvent Event
	cmd := &Command{
		Name:      "theme",
		Signature: Signature{MinPositionals: 1, MaxPositionals: 1},
		Handler: func(inv Invocation, event Event) error {
			gotEvent = event
			return nil
		},
	}
	if err := r.Register(cmd); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if err := r.DispatchEvent("theme", "", IdentityExpander, EventUpdate); err != nil {
		t.Fatalf("DispatchEvent(Update) with no positionals: %v", err)
	}
	if gotEvent != EventUpdate {
		t.Fatalf("gotEvent = %v, want EventUpdate", gotEvent)
	}
}

func TestDispatchEventValidateEnforcesSignature(t *testing.T) {
	r := NewRegistry()
	cmd := &Command{
		Name:      "theme",
		Signature: Signature{MinPositionals: 1, MaxPositionals: 1},
		Handler:   func(Invocation, Event) error { return nil },
	}
	if err := r.Register(cmd); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if err := r.DispatchEvent("theme", "", IdentityExpander, EventValidate); err == nil {
		t.Fatal("expected a TooFewArguments error on Validate with no positionals")
	}
}

func TestDispatchDefaultsToEventValidate(t *testing.T) {
	r := NewRegistry()
	var gotEvent Event
	cmd := &Command{
		Name: "quit",
		Handler: func(inv Invocation, event Event) error {
			gotEvent = event
			return nil
		},
	}
	if err := r.Register(cmd); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := r.Dispatch("quit", "", IdentityExpander); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if gotEvent != EventValidate {
		t.Fatalf("gotEvent = %v, want EventValidate", gotEvent)
	}
}

type stubCompleter struct{}

func (stubCompleter) CompletePositional(index int, partial string) []string {
	return []string{"alpha", "beta"}
}
func (stubCompleter) CompleteFlagArgument(flag Flag, partial string) []string {
	return flag.Completions
}

func TestCompleteCommandWord(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(&Command{Name: "write", Doc: "write a file"}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := r.Register(&Command{Name: "quit"}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	got := r.Complete("wr", 2)
	if len(got) != 1 || got[0].Text != "write" {
		t.Fatalf("Complete = %+v, want [write]", got)
	}
}

func TestCompletePositionalDispatchesToCompleter(t *testing.T) {
	r := NewRegistry()
	cmd := &Command{
		Name:      "open",
		Signature: Signature{MaxPositionals: -1},
		Completer: stubCompleter{},
	}
	if err := r.Register(cmd); err != nil {
		t.Fatalf("Register: %v", err)
	}

	line := "open "
	got := r.Complete(line, len(line))
	if len(got) != 2 {
		t.Fatalf("Complete = %+v, want 2 candidates", got)
	}
}
